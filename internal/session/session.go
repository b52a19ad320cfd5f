// Package session implements the directory admin console core: search with
// memoized results, per-object detail assembly, identity resolution, and the
// failure-tolerant permission and membership mutations. A Session owns all
// state (the remote directory handle, the three caches and the audit sink),
// so two sessions never share anything.
package session

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/jtg86/mbxadmin/internal/audit"
	"github.com/jtg86/mbxadmin/internal/directory"
	"github.com/jtg86/mbxadmin/internal/memo"
)

const (
	// DefaultMinSearchLength is the minimum trimmed search text length.
	DefaultMinSearchLength = 3
	// DefaultSearchCap bounds each per-kind search query.
	DefaultSearchCap = 200
)

// ObjectRef is one search result row: the canonical reference to a directory
// object. Kind is fixed when the remote record is decoded; RemoteIdentity is
// opaque and stable enough to be passed back into subsequent remote calls.
type ObjectRef struct {
	Kind           directory.Kind
	DisplayName    string
	PrimaryEmail   string
	RemoteIdentity string
}

// ResolvedIdentity is the outcome of resolving one free-text identity token.
// TypeDetails carries the remote recipient type string, or one of the
// sentinel values "System", "Special", "Unresolved", "Unknown".
type ResolvedIdentity struct {
	DisplayName  string
	PrimaryEmail string
	TypeDetails  string
	TargetId     string
}

// PermissionRow is one trustee holding FullAccess and/or SendAs on a mailbox.
type PermissionRow struct {
	Identity   ResolvedIdentity
	FullAccess bool
	SendAs     bool
}

// CalendarPermissionRow is one ACL entry on a resource mailbox's calendar.
type CalendarPermissionRow struct {
	Identity     ResolvedIdentity
	AccessRights string
	SharingFlags string
}

// GroupMemberRow is one direct member of a static group.
type GroupMemberRow struct {
	Name  string
	Email string
	Type  string
}

// DynamicGroupRule is the read-only projection of a dynamic distribution
// group. This kind has no mutation path; membership is computed server-side.
type DynamicGroupRule struct {
	Name            string
	Email           string
	RecipientFilter string
	Container       string
}

// DetailsBundle is the per-object detail view, populated according to Kind:
// permission rows for mailboxes (plus calendar rows for resource mailboxes),
// member rows for static groups, the rule for dynamic groups.
type DetailsBundle struct {
	Ref    ObjectRef
	Header string

	Permissions []PermissionRow
	Calendar    []CalendarPermissionRow
	Members     []GroupMemberRow
	Rule        *DynamicGroupRule
}

type detailsKey struct {
	Kind     directory.Kind
	Identity string
}

// CacheStats reports hit/miss counters for the console status line.
type CacheStats struct {
	SearchHits, SearchMisses     int64
	DetailsHits, DetailsMisses   int64
	CalendarHits, CalendarMisses int64
}

// Options tune a Session. Zero values select the defaults.
type Options struct {
	MinSearchLength int
	SearchCap       int
}

// Session is the console core. It is built once per operator session and is
// not safe for use from multiple goroutines concurrently, matching the
// single-operator control flow of the console.
type Session struct {
	dir    directory.Directory
	aud    *audit.Sink
	log    zerolog.Logger
	minLen int
	cap    int

	searches *memo.Map[string, []ObjectRef]
	details  *memo.Map[detailsKey, *DetailsBundle]
	calendar *memo.Map[string, []CalendarPermissionRow]
}

// New builds a session over the given directory and audit sink.
func New(dir directory.Directory, aud *audit.Sink, log zerolog.Logger, opts Options) *Session {
	if opts.MinSearchLength <= 0 {
		opts.MinSearchLength = DefaultMinSearchLength
	}
	if opts.SearchCap <= 0 {
		opts.SearchCap = DefaultSearchCap
	}
	return &Session{
		dir:      dir,
		aud:      aud,
		log:      log.With().Str("component", "session").Logger(),
		minLen:   opts.MinSearchLength,
		cap:      opts.SearchCap,
		searches: memo.New[string, []ObjectRef](),
		details:  memo.New[detailsKey, *DetailsBundle](),
		calendar: memo.New[string, []CalendarPermissionRow](),
	}
}

// MinSearchLength returns the configured minimum search text length in
// characters.
func (s *Session) MinSearchLength() int {
	return s.minLen
}

// InvalidateObject evicts the cached detail view of one object, and its
// calendar entry when the object is a resource mailbox. The search cache is
// left alone; object references stay valid across mutations.
func (s *Session) InvalidateObject(ref ObjectRef) {
	s.details.Delete(detailsKey{Kind: ref.Kind, Identity: ref.RemoteIdentity})
	if ref.Kind.IsResourceMailbox() && ref.PrimaryEmail != "" {
		s.calendar.Delete(calendarKey(ref.PrimaryEmail))
	}
}

// ClearCaches empties all three caches.
func (s *Session) ClearCaches() {
	s.searches.Clear()
	s.details.Clear()
	s.calendar.Clear()
	s.aud.Action("clear_caches", "", "", "caches cleared")
}

// Stats returns the cache hit/miss counters.
func (s *Session) Stats() CacheStats {
	var st CacheStats
	st.SearchHits, st.SearchMisses = s.searches.Stats()
	st.DetailsHits, st.DetailsMisses = s.details.Stats()
	st.CalendarHits, st.CalendarMisses = s.calendar.Stats()
	return st
}

func calendarKey(primaryEmail string) string {
	return strings.ToLower(strings.TrimSpace(primaryEmail))
}
