package session

import (
	"context"
	"fmt"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// Details builds (or returns the cached) detail view for one object. The
// bundle's populated sections follow the object kind: permission rows for
// mailboxes, calendar rows additionally for resource mailboxes, member rows
// for static groups, the filter rule for dynamic groups. Entries are evicted,
// never patched, on mutation.
func (s *Session) Details(ctx context.Context, ref ObjectRef) (*DetailsBundle, error) {
	key := detailsKey{Kind: ref.Kind, Identity: ref.RemoteIdentity}
	return s.details.GetOrCompute(key, func() (*DetailsBundle, error) {
		return s.buildDetails(ctx, ref)
	})
}

func (s *Session) buildDetails(ctx context.Context, ref ObjectRef) (*DetailsBundle, error) {
	b := &DetailsBundle{Ref: ref, Header: detailHeader(ref)}

	switch {
	case ref.Kind == directory.KindSharedMailbox || ref.Kind.IsResourceMailbox():
		rows, err := s.MailboxAccess(ctx, ref.RemoteIdentity)
		if err != nil {
			return nil, err
		}
		b.Permissions = rows

		if ref.Kind.IsResourceMailbox() && ref.PrimaryEmail != "" {
			cal, err := s.CalendarPermissions(ctx, ref.PrimaryEmail)
			if err != nil {
				return nil, err
			}
			b.Calendar = cal
		}

	case ref.Kind.IsGroup():
		members, err := s.GroupMembers(ctx, ref.RemoteIdentity)
		if err != nil {
			return nil, err
		}
		b.Members = members

	case ref.Kind == directory.KindDynamicDistributionGroup:
		rule, err := s.DynamicGroupRule(ctx, ref.RemoteIdentity)
		if err != nil {
			return nil, err
		}
		b.Rule = rule

	default:
		return nil, fmt.Errorf("no detail view for object kind %q", ref.Kind)
	}

	return b, nil
}

func detailHeader(ref ObjectRef) string {
	if ref.PrimaryEmail == "" {
		return fmt.Sprintf("%s (%s)", ref.DisplayName, ref.Kind)
	}
	return fmt.Sprintf("%s <%s> (%s)", ref.DisplayName, ref.PrimaryEmail, ref.Kind)
}
