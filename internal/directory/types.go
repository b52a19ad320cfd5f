package directory

// Kind identifies the semantic object kind of a directory recipient as the
// console understands it. It is derived exactly once, when a raw directory
// record is decoded, and never guessed again downstream.
type Kind int

const (
	KindUnknown Kind = iota
	KindSharedMailbox
	KindRoomMailbox
	KindEquipmentMailbox
	KindDistributionGroup
	KindMailSecurityGroup
	KindDynamicDistributionGroup
)

// String returns the string representation of the object kind.
func (k Kind) String() string {
	switch k {
	case KindSharedMailbox:
		return "SharedMailbox"
	case KindRoomMailbox:
		return "RoomMailbox"
	case KindEquipmentMailbox:
		return "EquipmentMailbox"
	case KindDistributionGroup:
		return "DistributionGroup"
	case KindMailSecurityGroup:
		return "MailSecurityGroup"
	case KindDynamicDistributionGroup:
		return "DynamicDistributionGroup"
	default:
		return "Unknown"
	}
}

// IsGroup reports whether the kind is a static mail-enabled group.
func (k Kind) IsGroup() bool {
	return k == KindDistributionGroup || k == KindMailSecurityGroup
}

// IsResourceMailbox reports whether the kind is a room or equipment mailbox.
// Resource mailboxes are the only kinds with a calendar permission view.
func (k Kind) IsResourceMailbox() bool {
	return k == KindRoomMailbox || k == KindEquipmentMailbox
}

// Recipient type detail flag values as stored in msExchRecipientTypeDetails.
const (
	TypeDetailUserMailbox         int64 = 0x1
	TypeDetailSharedMailbox       int64 = 0x4
	TypeDetailRoomMailbox         int64 = 0x10
	TypeDetailEquipmentMailbox    int64 = 0x20
	TypeDetailMailContact         int64 = 0x40
	TypeDetailMailUser            int64 = 0x80
	TypeDetailDistributionGroup   int64 = 0x100 // MailUniversalDistributionGroup
	TypeDetailSecurityGroup       int64 = 0x400 // MailUniversalSecurityGroup
	TypeDetailDynamicDistribution int64 = 0x800 // DynamicDistributionGroup
)

// Recipient type detail strings as the directory reports them.
const (
	TypeDetailsSharedMailbox     = "SharedMailbox"
	TypeDetailsRoomMailbox       = "RoomMailbox"
	TypeDetailsEquipmentMailbox  = "EquipmentMailbox"
	TypeDetailsDistributionGroup = "MailUniversalDistributionGroup"
	TypeDetailsSecurityGroup     = "MailUniversalSecurityGroup"
	TypeDetailsDynamicGroup      = "DynamicDistributionGroup"
)

// Group category flag on the groupType attribute. Matches
// ADS_GROUP_TYPE_SECURITY_ENABLED (0x80000000 as signed int32).
const GroupTypeFlagSecurity int32 = -2147483648

// TypeDetailsName maps a raw recipient type detail value to its string form.
// Unmapped values return the empty string.
func TypeDetailsName(v int64) string {
	switch v {
	case TypeDetailUserMailbox:
		return "UserMailbox"
	case TypeDetailMailContact:
		return "MailContact"
	case TypeDetailMailUser:
		return "MailUser"
	case TypeDetailSharedMailbox:
		return TypeDetailsSharedMailbox
	case TypeDetailRoomMailbox:
		return TypeDetailsRoomMailbox
	case TypeDetailEquipmentMailbox:
		return TypeDetailsEquipmentMailbox
	case TypeDetailDistributionGroup:
		return TypeDetailsDistributionGroup
	case TypeDetailSecurityGroup:
		return TypeDetailsSecurityGroup
	case TypeDetailDynamicDistribution:
		return TypeDetailsDynamicGroup
	default:
		return ""
	}
}

// Recipient is a decoded directory record for a mail-enabled object. The Kind
// is fixed at decode time; Identity is an opaque reference (the entry DN for
// the LDAP adapter) stable enough to be reused across subsequent remote calls.
type Recipient struct {
	Kind        Kind
	Identity    string // opaque remote identity, identity-preserving
	DisplayName string
	PrimarySMTP string
	Alias       string // mail nickname
	GUID        string
	SID         string
	TypeDetails string // raw recipient type detail string
	GroupType   int32  // raw groupType value, groups only
	Description string
}

// PermissionEntry is one trustee entry from a mailbox permission set.
// Inherited and deny entries are reported as-is; callers decide whether an
// entry counts as an effective grant.
type PermissionEntry struct {
	Trustee   string // trustee identity as the directory lists it
	Inherited bool
	Deny      bool
}

// Folder describes one folder of a mailbox, as reported by the folder
// statistics contract. FolderType carries the well-known folder tag
// ("calendar" for the calendar folder).
type Folder struct {
	Name       string
	FolderType string
}

// FolderPermission is one ACL entry on a mailbox folder.
type FolderPermission struct {
	Principal    string
	AccessRights string
	SharingFlags string
}

// Member is one direct member of a static group.
type Member struct {
	Identity    string
	DisplayName string
	PrimarySMTP string
	TypeDetails string
}

// DynamicGroup is the read-only projection of a dynamic distribution group.
// Membership is computed server-side from the recipient filter; there is no
// member mutation path for this kind.
type DynamicGroup struct {
	Name            string
	PrimarySMTP     string
	RecipientFilter string
	Container       string
}

// ClassifyGroup decides between the two static mail-enabled group kinds from
// the raw record fields. Either condition is sufficient for the security
// classification: the detailed recipient type names a mail-enabled universal
// security group, or the groupType carries the security-enabled flag.
func ClassifyGroup(typeDetails string, groupType int32) Kind {
	if typeDetails == TypeDetailsSecurityGroup || groupType&GroupTypeFlagSecurity != 0 {
		return KindMailSecurityGroup
	}
	return KindDistributionGroup
}
