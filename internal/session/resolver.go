package session

import (
	"context"
	"strings"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// Sentinel TypeDetails values for tokens that never hit the directory or
// could not be resolved.
const (
	TypeSystem     = "System"
	TypeSpecial    = "Special"
	TypeUnresolved = "Unresolved"
	TypeUnknown    = "Unknown"
)

// Well-known operating system principals that appear as trustees in
// permission sets but are not directory recipients. Matched case-insensitively.
var systemPrincipals = []string{
	`NT AUTHORITY\SYSTEM`,
	"S-1-5-18",
	`NT AUTHORITY\LocalService`,
	`NT AUTHORITY\NetworkService`,
	"LocalService",
	"NetworkService",
}

// Calendar-sharing pseudo-principals present on every folder ACL.
var specialPrincipals = []string{"Default", "Anonymous"}

// The mailbox's own self-principal. Never shown as a trustee row.
var selfPrincipals = []string{`NT AUTHORITY\SELF`, "S-1-5-10"}

// Resolve turns one free-text identity token into a ResolvedIdentity. It
// never fails: well-known principals short-circuit without a remote call, and
// a failed remote lookup yields TypeDetails "Unresolved" with the raw token
// preserved as TargetId so later removal operations still have a handle.
func (s *Session) Resolve(ctx context.Context, token string) ResolvedIdentity {
	token = strings.TrimSpace(token)
	if token == "" {
		return ResolvedIdentity{TypeDetails: TypeUnknown}
	}
	if matchesAny(token, systemPrincipals) {
		return ResolvedIdentity{DisplayName: token, TypeDetails: TypeSystem, TargetId: token}
	}
	if matchesAny(token, specialPrincipals) {
		return ResolvedIdentity{DisplayName: token, TypeDetails: TypeSpecial, TargetId: token}
	}

	r := s.TryResolveRecipient(ctx, token)
	if r == nil {
		return ResolvedIdentity{DisplayName: token, TypeDetails: TypeUnresolved, TargetId: token}
	}
	return ResolvedIdentity{
		DisplayName:  r.DisplayName,
		PrimaryEmail: r.PrimarySMTP,
		TypeDetails:  r.TypeDetails,
		TargetId:     r.Identity,
	}
}

// TryResolveRecipient looks up one identity in the directory, returning nil
// on any failure (missing, ambiguous, or remote error). Mutation paths use it
// to obtain a canonical identity before grant/revoke.
func (s *Session) TryResolveRecipient(ctx context.Context, identity string) *directory.Recipient {
	r, err := s.dir.LookupRecipient(ctx, identity)
	if err != nil {
		s.log.Debug().Err(err).Str("identity", identity).Msg("identity resolution failed")
		return nil
	}
	return r
}

func isSelfPrincipal(trustee string) bool {
	return matchesAny(trustee, selfPrincipals)
}

func matchesAny(token string, set []string) bool {
	for _, v := range set {
		if strings.EqualFold(token, v) {
			return true
		}
	}
	return false
}
