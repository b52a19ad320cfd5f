package session

import (
	"context"
	"sort"
	"strings"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// MailboxAccess assembles the permission rows of a mailbox: the distinct
// trustees holding FullAccess and/or SendAs, each resolved, sorted by
// resolved type then display name. FullAccess entries count only when direct
// allow entries; the mailbox's self-principal never appears.
func (s *Session) MailboxAccess(ctx context.Context, mailbox string) ([]PermissionRow, error) {
	fullAccess, err := s.dir.FullAccessEntries(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	sendAs, err := s.dir.SendAsEntries(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	type rights struct{ fullAccess, sendAs bool }
	held := make(map[string]*rights)
	var order []string
	mark := func(trustee string, set func(*rights)) {
		r, ok := held[trustee]
		if !ok {
			r = &rights{}
			held[trustee] = r
			order = append(order, trustee)
		}
		set(r)
	}

	for _, e := range fullAccess {
		if e.Inherited || e.Deny || isSelfPrincipal(e.Trustee) {
			continue
		}
		mark(e.Trustee, func(r *rights) { r.fullAccess = true })
	}
	for _, e := range sendAs {
		if isSelfPrincipal(e.Trustee) {
			continue
		}
		mark(e.Trustee, func(r *rights) { r.sendAs = true })
	}

	rows := make([]PermissionRow, 0, len(order))
	for _, trustee := range order {
		r := held[trustee]
		rows = append(rows, PermissionRow{
			Identity:   s.Resolve(ctx, trustee),
			FullAccess: r.fullAccess,
			SendAs:     r.sendAs,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Identity, rows[j].Identity
		if a.TypeDetails != b.TypeDetails {
			return a.TypeDetails < b.TypeDetails
		}
		return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
	})
	return rows, nil
}

// CalendarPermissions returns the calendar folder ACL of a resource mailbox,
// memoized by the mailbox primary address. The calendar folder is located by
// its folder-type tag, falling back to the first folder; a mailbox with no
// folders yields an empty list.
func (s *Session) CalendarPermissions(ctx context.Context, mailboxPrimaryEmail string) ([]CalendarPermissionRow, error) {
	return s.calendar.GetOrCompute(calendarKey(mailboxPrimaryEmail), func() ([]CalendarPermissionRow, error) {
		return s.fetchCalendarPermissions(ctx, mailboxPrimaryEmail)
	})
}

func (s *Session) fetchCalendarPermissions(ctx context.Context, mailbox string) ([]CalendarPermissionRow, error) {
	folders, err := s.dir.MailboxFolders(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return []CalendarPermissionRow{}, nil
	}

	target := folders[0]
	for _, f := range folders {
		if strings.EqualFold(f.FolderType, "calendar") {
			target = f
			break
		}
	}

	perms, err := s.dir.FolderPermissions(ctx, mailbox, target.Name)
	if err != nil {
		return nil, err
	}

	rows := make([]CalendarPermissionRow, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, CalendarPermissionRow{
			Identity:     s.Resolve(ctx, p.Principal),
			AccessRights: p.AccessRights,
			SharingFlags: p.SharingFlags,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Identity.DisplayName) < strings.ToLower(rows[j].Identity.DisplayName)
	})
	return rows, nil
}

// GrantMailboxRights grants FullAccess and/or SendAs to each resolvable
// identity in the batch. Identities are processed sequentially; an identity
// that fails to resolve is skipped with a warning, and the two rights are
// attempted independently so a FullAccess failure never blocks the SendAs
// attempt. The target's cached details are invalidated afterwards regardless
// of outcome.
func (s *Session) GrantMailboxRights(ctx context.Context, ref ObjectRef, identities []string, doFullAccess, doSendAs bool) (*BatchResult, error) {
	if len(identities) == 0 {
		return nil, ErrNoIdentities
	}
	defer s.InvalidateObject(ref)

	res := &BatchResult{}
	for _, identity := range identities {
		r := s.TryResolveRecipient(ctx, identity)
		if r == nil {
			s.aud.Warn("grant_rights", ref.DisplayName, identity, "could not resolve identity", nil)
			res.skip(identity)
			continue
		}

		if doFullAccess {
			if err := s.applyRight("grant_full_access", ref, identity, res,
				func() error { return s.dir.AddFullAccess(ctx, ref.RemoteIdentity, r.Identity) }); err != nil {
				return res, err
			}
		}
		if doSendAs {
			if err := s.applyRight("grant_send_as", ref, identity, res,
				func() error { return s.dir.AddSendAs(ctx, ref.RemoteIdentity, r.Identity) }); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// RevokeMailboxRights revokes FullAccess and/or SendAs for each token in the
// batch. Tokens may be free-text identities or target ids carried over from
// permission rows; when resolution fails the raw token is passed verbatim as
// the removal target, since removal can still succeed on a stable identity
// string after forward resolution has stopped working.
func (s *Session) RevokeMailboxRights(ctx context.Context, ref ObjectRef, tokens []string, doFullAccess, doSendAs bool) (*BatchResult, error) {
	if len(tokens) == 0 {
		return nil, ErrNoIdentities
	}
	defer s.InvalidateObject(ref)

	res := &BatchResult{}
	for _, token := range tokens {
		target := token
		if r := s.TryResolveRecipient(ctx, token); r != nil {
			target = r.Identity
		} else {
			s.aud.Warn("revoke_rights", ref.DisplayName, token, "identity did not resolve, using raw token as removal target", nil)
		}

		if doFullAccess {
			if err := s.applyRight("revoke_full_access", ref, token, res,
				func() error { return s.dir.RemoveFullAccess(ctx, ref.RemoteIdentity, target) }); err != nil {
				return res, err
			}
		}
		if doSendAs {
			if err := s.applyRight("revoke_send_as", ref, token, res,
				func() error { return s.dir.RemoveSendAs(ctx, ref.RemoteIdentity, target) }); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// applyRight runs one per-identity permission mutation, converting every
// failure except a lost connection into an audit warning. The returned error
// is non-nil only for connection failures, which abort the batch.
func (s *Session) applyRight(op string, ref ObjectRef, identity string, res *BatchResult, call func() error) error {
	err := call()
	if err == nil {
		s.aud.Action(op, ref.DisplayName, identity, "done")
		res.ok(identity, op)
		return nil
	}
	if directory.IsConnection(err) {
		s.aud.Error(op, ref.DisplayName, "directory connection lost", err)
		return err
	}
	s.aud.Warn(op, ref.DisplayName, identity, "mutation failed", err)
	res.fail(identity, op, err)
	return nil
}
