package session

import (
	"context"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// GroupMembers returns the full direct membership of a static group. Groups
// are assumed bounded, so membership is fetched whole with no cap.
func (s *Session) GroupMembers(ctx context.Context, group string) ([]GroupMemberRow, error) {
	members, err := s.dir.GroupMembers(ctx, group)
	if err != nil {
		return nil, err
	}

	rows := make([]GroupMemberRow, 0, len(members))
	for _, m := range members {
		name := m.DisplayName
		if name == "" {
			name = m.Identity
		}
		rows = append(rows, GroupMemberRow{
			Name:  name,
			Email: m.PrimarySMTP,
			Type:  m.TypeDetails,
		})
	}
	return rows, nil
}

// DynamicGroupRule fetches the rule view of a dynamic distribution group.
func (s *Session) DynamicGroupRule(ctx context.Context, group string) (*DynamicGroupRule, error) {
	g, err := s.dir.DynamicGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	return &DynamicGroupRule{
		Name:            g.Name,
		Email:           g.PrimarySMTP,
		RecipientFilter: g.RecipientFilter,
		Container:       g.Container,
	}, nil
}

// AddGroupMembers adds each resolvable identity to the group, sequentially
// and failure-tolerantly: an unresolved identity is skipped with a warning,
// and a remote failure (commonly "already a member" or a policy block) is
// logged and processing continues. Only a lost connection aborts the batch.
// The group's cached details are invalidated afterwards.
func (s *Session) AddGroupMembers(ctx context.Context, ref ObjectRef, identities []string) (*BatchResult, error) {
	return s.mutateMembership(ctx, "add_member", ref, identities,
		func(member string) error { return s.dir.AddGroupMember(ctx, ref.RemoteIdentity, member) })
}

// RemoveGroupMembers is symmetric to AddGroupMembers; a remote failure
// commonly means the identity was not a member.
func (s *Session) RemoveGroupMembers(ctx context.Context, ref ObjectRef, identities []string) (*BatchResult, error) {
	return s.mutateMembership(ctx, "remove_member", ref, identities,
		func(member string) error { return s.dir.RemoveGroupMember(ctx, ref.RemoteIdentity, member) })
}

func (s *Session) mutateMembership(ctx context.Context, op string, ref ObjectRef, identities []string, call func(member string) error) (*BatchResult, error) {
	if len(identities) == 0 {
		return nil, ErrNoIdentities
	}
	defer s.InvalidateObject(ref)

	res := &BatchResult{}
	for _, identity := range identities {
		r := s.TryResolveRecipient(ctx, identity)
		if r == nil {
			s.aud.Warn(op, ref.DisplayName, identity, "could not resolve identity", nil)
			res.skip(identity)
			continue
		}

		if err := call(r.Identity); err != nil {
			if directory.IsConnection(err) {
				s.aud.Error(op, ref.DisplayName, "directory connection lost", err)
				return res, err
			}
			s.aud.Warn(op, ref.DisplayName, identity, "membership change failed", err)
			res.fail(identity, op, err)
			continue
		}
		s.aud.Action(op, ref.DisplayName, identity, "done")
		res.ok(identity, op)
	}
	return res, nil
}
