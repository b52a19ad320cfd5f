// Package directory defines the query and mutation contract the console
// consumes from the tenant's remote directory service, plus the decoded record
// types shared by every adapter. The session core is written entirely against
// the Directory interface; tests exercise it with an in-memory fake and
// production wires the LDAP adapter from the ldapdir subpackage.
package directory

import "context"

// Directory is the remote directory service contract. All methods are
// synchronous; "not found" and remote-state conflicts are returned as typed
// errors (see errors.go) and are recoverable at the call site.
type Directory interface {
	// Connect establishes the remote session if not already established.
	// It is idempotent and is called lazily on first need.
	Connect(ctx context.Context) error
	Close() error

	// LookupRecipient resolves a single identity string (DN, SMTP address,
	// GUID, SID, or alias) to a decoded recipient record.
	LookupRecipient(ctx context.Context, identity string) (*Recipient, error)

	// SearchRecipients runs one server-side filtered query matching text
	// case-insensitively against display name, primary address and alias,
	// restricted to the given kinds, capped at limit results (0 = uncapped).
	SearchRecipients(ctx context.Context, kinds []Kind, text string, limit int) ([]Recipient, error)

	// Mailbox permission sets. FullAccess and SendAs are independent rights.
	FullAccessEntries(ctx context.Context, mailbox string) ([]PermissionEntry, error)
	AddFullAccess(ctx context.Context, mailbox, trustee string) error
	RemoveFullAccess(ctx context.Context, mailbox, trustee string) error
	SendAsEntries(ctx context.Context, mailbox string) ([]PermissionEntry, error)
	AddSendAs(ctx context.Context, mailbox, trustee string) error
	RemoveSendAs(ctx context.Context, mailbox, trustee string) error

	// Folder statistics and folder ACLs, used for resource calendar views.
	MailboxFolders(ctx context.Context, mailbox string) ([]Folder, error)
	FolderPermissions(ctx context.Context, mailbox, folder string) ([]FolderPermission, error)

	// Static group membership. Membership is always fetched in full; groups
	// are assumed bounded, unlike search.
	GroupMembers(ctx context.Context, group string) ([]Member, error)
	AddGroupMember(ctx context.Context, group, member string) error
	RemoveGroupMember(ctx context.Context, group, member string) error

	// DynamicGroup fetches the single record backing a dynamic distribution
	// group rule view.
	DynamicGroup(ctx context.Context, identity string) (*DynamicGroup, error)
}
