package ldapdir

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-ldap/ldap/v3"

	"github.com/jtg86/mbxadmin/internal/directory"
)

var memberAttrs = []string{
	"distinguishedName", "cn", "displayName", "mail", "msExchRecipientTypeDetails",
}

// GroupMembers fetches the full direct membership of a static group with one
// paged reverse-link query. Groups are assumed bounded, so no result cap is
// applied.
func (c *Client) GroupMembers(ctx context.Context, group string) ([]directory.Member, error) {
	groupDN, err := c.resolveDN(ctx, group)
	if err != nil {
		return nil, err
	}

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		0, int(c.cfg.Timeout.Seconds()), false,
		fmt.Sprintf("(memberOf=%s)", ldap.EscapeFilter(groupDN)),
		memberAttrs, nil,
	)

	entries, err := c.searchPaged(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]directory.Member, 0, len(entries))
	for _, e := range entries {
		m := directory.Member{
			Identity:    e.DN,
			DisplayName: firstNonEmpty(e.GetAttributeValue("displayName"), e.GetAttributeValue("cn")),
			PrimarySMTP: e.GetAttributeValue("mail"),
		}
		if v := e.GetAttributeValue("msExchRecipientTypeDetails"); v != "" {
			if td, err := strconv.ParseInt(v, 10, 64); err == nil {
				m.TypeDetails = directory.TypeDetailsName(td)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// AddGroupMember adds one member to a static group. Adding an existing member
// comes back from the directory as a conflict.
func (c *Client) AddGroupMember(ctx context.Context, group, member string) error {
	return c.modifyMembership(ctx, "add_group_member", group, member, true)
}

// RemoveGroupMember removes one member from a static group. Removing an absent
// member comes back from the directory as not-found.
func (c *Client) RemoveGroupMember(ctx context.Context, group, member string) error {
	return c.modifyMembership(ctx, "remove_group_member", group, member, false)
}

func (c *Client) modifyMembership(ctx context.Context, op, group, member string, add bool) error {
	groupDN, err := c.resolveDN(ctx, group)
	if err != nil {
		return err
	}
	memberDN, err := c.resolveDN(ctx, member)
	if err != nil {
		return err
	}

	req := ldap.NewModifyRequest(groupDN, nil)
	if add {
		req.Add("member", []string{memberDN})
	} else {
		req.Delete("member", []string{memberDN})
	}
	return c.modify(ctx, op, req)
}

// DynamicGroup fetches the record backing a dynamic distribution group rule
// view. Membership for this kind is computed server-side from the recipient
// filter and is never enumerated.
func (c *Client) DynamicGroup(ctx context.Context, identity string) (*directory.DynamicGroup, error) {
	entry, err := c.fetchEntry(ctx, identity, []string{
		"displayName", "cn", "mail", "msExchQueryFilter", "msExchDynamicDLBaseDN",
	})
	if err != nil {
		return nil, err
	}

	return &directory.DynamicGroup{
		Name:            firstNonEmpty(entry.GetAttributeValue("displayName"), entry.GetAttributeValue("cn")),
		PrimarySMTP:     entry.GetAttributeValue("mail"),
		RecipientFilter: entry.GetAttributeValue("msExchQueryFilter"),
		Container:       entry.GetAttributeValue("msExchDynamicDLBaseDN"),
	}, nil
}
