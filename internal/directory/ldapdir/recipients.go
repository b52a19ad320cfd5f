package ldapdir

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// recipientAttrs are the attributes fetched for every recipient record. The
// record is decoded exactly once, at this boundary.
var recipientAttrs = []string{
	"distinguishedName", "cn", "displayName", "mail", "mailNickname",
	"sAMAccountName", "objectGUID", "objectSid",
	"msExchRecipientTypeDetails", "groupType", "description",
}

// dnRegex matches identity strings that are already distinguished names.
var dnRegex = regexp.MustCompile(`^(?i)(CN|OU|DC|O|C|L|ST)=.+`)

// LookupRecipient resolves one identity string to a decoded recipient record.
// DN, GUID, SID, SMTP address and alias forms are detected and searched with
// the matching server-side filter.
func (c *Client) LookupRecipient(ctx context.Context, identity string) (*directory.Recipient, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, directory.NewError("lookup_recipient", directory.ErrorCategoryValidation, "", "identity cannot be empty", nil)
	}

	baseDN := c.cfg.BaseDN
	scope := ldap.ScopeWholeSubtree
	filter, err := identityFilter(identity)
	if err != nil {
		return nil, directory.NewError("lookup_recipient", directory.ErrorCategoryValidation, identity, err.Error(), err)
	}
	if dnRegex.MatchString(identity) {
		// A DN is its own search base.
		baseDN = identity
		scope = ldap.ScopeBaseObject
		filter = "(objectClass=*)"
	}

	req := ldap.NewSearchRequest(
		baseDN, scope, ldap.NeverDerefAliases,
		2, int(c.cfg.Timeout.Seconds()), false,
		filter, recipientAttrs, nil,
	)

	entries, err := c.search(ctx, req)
	if err != nil {
		return nil, err
	}
	switch len(entries) {
	case 0:
		return nil, directory.NewError("lookup_recipient", directory.ErrorCategoryNotFound, identity, "no such recipient", nil)
	case 1:
		return decodeRecipient(entries[0]), nil
	default:
		return nil, directory.NewError("lookup_recipient", directory.ErrorCategoryValidation, identity, "identity is ambiguous", nil)
	}
}

// SearchRecipients runs one server-side filtered query for the given kinds,
// matching text case-insensitively against display name, primary address and
// alias, capped at limit results.
func (c *Client) SearchRecipients(ctx context.Context, kinds []directory.Kind, text string, limit int) ([]directory.Recipient, error) {
	if len(kinds) == 0 {
		return nil, nil
	}

	escaped := ldap.EscapeFilter(text)
	textTerm := fmt.Sprintf("(|(displayName=*%s*)(mail=*%s*)(mailNickname=*%s*))", escaped, escaped, escaped)

	var kindTerms []string
	for _, k := range kinds {
		term, err := kindTerm(k)
		if err != nil {
			return nil, directory.NewError("search_recipients", directory.ErrorCategoryValidation, "", err.Error(), err)
		}
		kindTerms = append(kindTerms, term)
	}
	kindClause := kindTerms[0]
	if len(kindTerms) > 1 {
		kindClause = fmt.Sprintf("(|%s)", strings.Join(kindTerms, ""))
	}

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		limit, int(c.cfg.Timeout.Seconds()), false,
		fmt.Sprintf("(&%s%s)", kindClause, textTerm),
		recipientAttrs, nil,
	)

	entries, err := c.search(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]directory.Recipient, 0, len(entries))
	for _, e := range entries {
		out = append(out, *decodeRecipient(e))
	}
	return out, nil
}

// identityFilter builds the lookup filter for a non-DN identity string.
func identityFilter(identity string) (string, error) {
	switch {
	case isGUID(identity):
		return guidFilter(identity)
	case isSID(identity):
		return fmt.Sprintf("(objectSid=%s)", ldap.EscapeFilter(identity)), nil
	case strings.Contains(identity, "@"):
		v := ldap.EscapeFilter(identity)
		return fmt.Sprintf("(|(mail=%s)(userPrincipalName=%s)(proxyAddresses=smtp:%s))", v, v, v), nil
	default:
		v := ldap.EscapeFilter(identity)
		return fmt.Sprintf("(|(mailNickname=%s)(sAMAccountName=%s)(cn=%s))", v, v, v), nil
	}
}

// kindTerm maps an object kind to its recipient-type filter term.
func kindTerm(k directory.Kind) (string, error) {
	switch k {
	case directory.KindSharedMailbox:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailSharedMailbox), nil
	case directory.KindRoomMailbox:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailRoomMailbox), nil
	case directory.KindEquipmentMailbox:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailEquipmentMailbox), nil
	case directory.KindDistributionGroup:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailDistributionGroup), nil
	case directory.KindMailSecurityGroup:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailSecurityGroup), nil
	case directory.KindDynamicDistributionGroup:
		return fmt.Sprintf("(msExchRecipientTypeDetails=%d)", directory.TypeDetailDynamicDistribution), nil
	default:
		return "", fmt.Errorf("unsupported search kind %q", k)
	}
}

// decodeRecipient converts a raw directory entry into a recipient record. The
// object kind is derived here, once, from the type detail and groupType fields
// and never re-inspected downstream.
func decodeRecipient(entry *ldap.Entry) *directory.Recipient {
	r := &directory.Recipient{
		Identity:    entry.DN,
		DisplayName: firstNonEmpty(entry.GetAttributeValue("displayName"), entry.GetAttributeValue("cn")),
		PrimarySMTP: entry.GetAttributeValue("mail"),
		Alias:       entry.GetAttributeValue("mailNickname"),
		GUID:        extractGUID(entry),
		SID:         extractSID(entry),
		Description: entry.GetAttributeValue("description"),
	}

	var typeDetail int64
	if v := entry.GetAttributeValue("msExchRecipientTypeDetails"); v != "" {
		typeDetail, _ = strconv.ParseInt(v, 10, 64)
	}
	r.TypeDetails = directory.TypeDetailsName(typeDetail)

	if v := entry.GetAttributeValue("groupType"); v != "" {
		if gt, err := strconv.ParseInt(v, 10, 32); err == nil {
			r.GroupType = int32(gt)
		}
	}

	switch typeDetail {
	case directory.TypeDetailSharedMailbox:
		r.Kind = directory.KindSharedMailbox
	case directory.TypeDetailRoomMailbox:
		r.Kind = directory.KindRoomMailbox
	case directory.TypeDetailEquipmentMailbox:
		r.Kind = directory.KindEquipmentMailbox
	case directory.TypeDetailDistributionGroup, directory.TypeDetailSecurityGroup:
		r.Kind = directory.ClassifyGroup(r.TypeDetails, r.GroupType)
	case directory.TypeDetailDynamicDistribution:
		r.Kind = directory.KindDynamicDistributionGroup
	default:
		r.Kind = directory.KindUnknown
	}

	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
