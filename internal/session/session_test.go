package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtg86/mbxadmin/internal/audit"
	"github.com/jtg86/mbxadmin/internal/directory"
)

type testEnv struct {
	dir      *fakeDirectory
	session  *Session
	auditBuf *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := newFakeDirectory()
	buf := &bytes.Buffer{}
	return &testEnv{
		dir:      dir,
		session:  New(dir, audit.NewSink(buf), zerolog.Nop(), Options{}),
		auditBuf: buf,
	}
}

func (e *testEnv) addRecipient(kind directory.Kind, dn, name, smtp, alias, typeDetails string) {
	e.dir.recipients = append(e.dir.recipients, &directory.Recipient{
		Kind:        kind,
		Identity:    dn,
		DisplayName: name,
		PrimarySMTP: smtp,
		Alias:       alias,
		TypeDetails: typeDetails,
	})
}

func (e *testEnv) seedSearchFixtures() {
	e.addRecipient(directory.KindDynamicDistributionGroup, "CN=conf-room-dyn", "conf-room dynamic", "conf-room-dyn@example.com", "conf-room-dyn", "DynamicDistributionGroup")
	e.addRecipient(directory.KindMailSecurityGroup, "CN=conf-room-sec", "conf-room admins", "conf-room-sec@example.com", "conf-room-sec", "MailUniversalSecurityGroup")
	e.addRecipient(directory.KindEquipmentMailbox, "CN=conf-room-projector", "conf-room projector", "conf-room-projector@example.com", "conf-room-prj", "EquipmentMailbox")
	e.addRecipient(directory.KindRoomMailbox, "CN=conf-room-1", "conf-room one", "conf-room-1@example.com", "conf-room-1", "RoomMailbox")
	e.addRecipient(directory.KindDistributionGroup, "CN=conf-room-users", "conf-room users", "conf-room-users@example.com", "conf-room-usr", "MailUniversalDistributionGroup")
	e.addRecipient(directory.KindSharedMailbox, "CN=conf-room-booking", "conf-room booking", "conf-room-booking@example.com", "conf-room-bk", "SharedMailbox")
}

func TestSearch_ShortTextReturnsEmptyWithoutRemoteCall(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()

	refs, err := e.session.Search(context.Background(), "  ab ")
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Zero(t, e.dir.searchCalls)

	// The cache is untouched: a short query is not a miss.
	stats := e.session.Stats()
	assert.Zero(t, stats.SearchHits)
	assert.Zero(t, stats.SearchMisses)

	// The minimum counts characters, not bytes: two runes in four bytes
	// is still too short.
	refs, err = e.session.Search(context.Background(), "üö")
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Zero(t, e.dir.searchCalls)
}

func TestSearch_MergesInFixedKindOrder(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()

	refs, err := e.session.Search(context.Background(), "conf-room")
	require.NoError(t, err)
	require.Len(t, refs, 6)

	kinds := make([]directory.Kind, len(refs))
	for i, r := range refs {
		kinds[i] = r.Kind
	}
	assert.Equal(t, []directory.Kind{
		directory.KindSharedMailbox,
		directory.KindRoomMailbox,
		directory.KindEquipmentMailbox,
		directory.KindDistributionGroup,
		directory.KindMailSecurityGroup,
		directory.KindDynamicDistributionGroup,
	}, kinds)
}

func TestSearch_SecondCallIsMemoized(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()
	ctx := context.Background()

	first, err := e.session.Search(ctx, "conf-room")
	require.NoError(t, err)
	callsAfterFirst := e.dir.searchCalls
	assert.Equal(t, len(searchBuckets), callsAfterFirst)

	second, err := e.session.Search(ctx, "conf-room")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, e.dir.searchCalls)

	stats := e.session.Stats()
	assert.Equal(t, int64(1), stats.SearchHits)
	assert.Equal(t, int64(1), stats.SearchMisses)
}

func TestSearch_BucketFailureContributesNothing(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()
	e.dir.searchErrs[directory.KindSharedMailbox] = directory.NewError("search", directory.ErrorCategoryServer, "", "server is busy", nil)

	refs, err := e.session.Search(context.Background(), "conf-room")
	require.NoError(t, err)
	require.Len(t, refs, 5)
	for _, r := range refs {
		assert.NotEqual(t, directory.KindSharedMailbox, r.Kind)
	}
	assert.Contains(t, e.auditBuf.String(), "WRN")
	assert.Contains(t, e.auditBuf.String(), "SharedMailbox query failed")
}

func TestSearch_ConnectionFailureAbortsAndIsNotCached(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()
	ctx := context.Background()

	e.dir.connErr = connectionError("search")
	_, err := e.session.Search(ctx, "conf-room")
	require.Error(t, err)
	assert.True(t, directory.IsConnection(err))

	// The failure is not poisoned into the cache: once the directory is
	// reachable again the same query recomputes.
	e.dir.connErr = nil
	refs, err := e.session.Search(ctx, "conf-room")
	require.NoError(t, err)
	assert.Len(t, refs, 6)
}

func TestParseIdentities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "mixed separators",
			input:    "a@b.com, alice; bob\ncarl",
			expected: []string{"a@b.com", "alice", "bob", "carl"},
		},
		{
			name:     "alias too short",
			input:    "ab",
			expected: nil,
		},
		{
			name:     "invalid character",
			input:    "a!b",
			expected: nil,
		},
		{
			name:     "duplicates collapse",
			input:    "alice alice bob alice",
			expected: []string{"alice", "bob"},
		},
		{
			name:     "dots underscores hyphens accepted",
			input:    "first.last j_doe x-1a",
			expected: []string{"first.last", "j_doe", "x-1a"},
		},
		{
			name:     "leading separator noise",
			input:    ";;  , alice ,",
			expected: []string{"alice"},
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIdentities(tt.input))
		})
	}
}

func TestResolve(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		got := e.session.Resolve(ctx, "   ")
		assert.Equal(t, ResolvedIdentity{TypeDetails: TypeUnknown}, got)
	})

	t.Run("system principals skip the remote call", func(t *testing.T) {
		before := e.dir.lookupCalls
		for _, token := range []string{`NT AUTHORITY\SYSTEM`, "S-1-5-18", "nt authority\\system"} {
			got := e.session.Resolve(ctx, token)
			assert.Equal(t, TypeSystem, got.TypeDetails)
			assert.Equal(t, token, got.TargetId)
		}
		assert.Equal(t, before, e.dir.lookupCalls)
	})

	t.Run("calendar sharing principals", func(t *testing.T) {
		for _, token := range []string{"Default", "Anonymous", "anonymous"} {
			got := e.session.Resolve(ctx, token)
			assert.Equal(t, TypeSpecial, got.TypeDetails)
		}
	})

	t.Run("resolvable recipient", func(t *testing.T) {
		got := e.session.Resolve(ctx, "alice")
		assert.Equal(t, "Alice A", got.DisplayName)
		assert.Equal(t, "alice@example.com", got.PrimaryEmail)
		assert.Equal(t, "UserMailbox", got.TypeDetails)
		assert.Equal(t, "CN=Alice", got.TargetId)
	})

	t.Run("unresolved keeps the raw token", func(t *testing.T) {
		got := e.session.Resolve(ctx, "nobody-here")
		assert.Equal(t, TypeUnresolved, got.TypeDetails)
		assert.Equal(t, "nobody-here", got.TargetId)
	})
}

func TestMailboxAccess(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	e.addRecipient(directory.KindUnknown, "CN=Bob", "Bob B", "bob@example.com", "bob", "UserMailbox")

	const mailbox = "CN=Finance"
	e.dir.fullAccess[mailbox] = []directory.PermissionEntry{
		{Trustee: "CN=Alice"},
		{Trustee: `NT AUTHORITY\SELF`},
		{Trustee: "CN=Inherited", Inherited: true},
		{Trustee: "CN=Denied", Deny: true},
	}
	e.dir.sendAs[mailbox] = []directory.PermissionEntry{
		{Trustee: "CN=Alice"},
		{Trustee: "CN=Bob"},
		{Trustee: "S-1-5-10"},
	}

	rows, err := e.session.MailboxAccess(context.Background(), mailbox)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// A trustee holding both rights appears exactly once with both flags.
	byName := make(map[string]PermissionRow)
	for _, r := range rows {
		byName[r.Identity.DisplayName] = r
		assert.NotContains(t, strings.ToUpper(r.Identity.TargetId), "SELF")
	}
	alice := byName["Alice A"]
	assert.True(t, alice.FullAccess)
	assert.True(t, alice.SendAs)
	bob := byName["Bob B"]
	assert.False(t, bob.FullAccess)
	assert.True(t, bob.SendAs)
}

func TestMailboxAccess_SortsByTypeThenName(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Zed", "Zed", "zed@example.com", "zed", "UserMailbox")
	e.addRecipient(directory.KindUnknown, "CN=Amy", "Amy", "amy@example.com", "amy", "UserMailbox")

	const mailbox = "CN=Finance"
	e.dir.fullAccess[mailbox] = []directory.PermissionEntry{
		{Trustee: "CN=Zed"},
		{Trustee: "ghost-token"}, // resolves to "Unresolved"
		{Trustee: "CN=Amy"},
	}

	rows, err := e.session.MailboxAccess(context.Background(), mailbox)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// "Unresolved" sorts before "UserMailbox"; names order within a type.
	assert.Equal(t, TypeUnresolved, rows[0].Identity.TypeDetails)
	assert.Equal(t, "Amy", rows[1].Identity.DisplayName)
	assert.Equal(t, "Zed", rows[2].Identity.DisplayName)
}

func TestCalendarPermissions(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindRoomMailbox, "CN=conf-room-1", "conf-room one", "conf-room-1@example.com", "conf-room-1", "RoomMailbox")
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")

	e.dir.folders["conf-room-1@example.com"] = []directory.Folder{
		{Name: "Top of Information Store", FolderType: "root"},
		{Name: "Kalender", FolderType: "Calendar"},
	}
	e.dir.folderACLs["conf-room-1@example.com"] = []directory.FolderPermission{
		{Principal: "Default", AccessRights: "AvailabilityOnly"},
		{Principal: "CN=Alice", AccessRights: "Editor", SharingFlags: "CanViewPrivateItems"},
	}

	ctx := context.Background()
	rows, err := e.session.CalendarPermissions(ctx, "conf-room-1@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// The folder-type tag wins over position, matched case-insensitively.
	assert.Equal(t, "Kalender", e.dir.lastFolder)

	// Sorted by display name: "Alice A" before "Default".
	assert.Equal(t, "Alice A", rows[0].Identity.DisplayName)
	assert.Equal(t, "Editor", rows[0].AccessRights)
	assert.Equal(t, TypeSpecial, rows[1].Identity.TypeDetails)

	// Second call is a cache hit.
	_, err = e.session.CalendarPermissions(ctx, "Conf-Room-1@example.com")
	require.NoError(t, err)
	stats := e.session.Stats()
	assert.Equal(t, int64(1), stats.CalendarHits)
}

func TestCalendarPermissions_FallsBackToFirstFolder(t *testing.T) {
	e := newTestEnv(t)
	e.dir.folders["room@example.com"] = []directory.Folder{
		{Name: "Inbox", FolderType: "inbox"},
		{Name: "Sent", FolderType: "sent"},
	}

	_, err := e.session.CalendarPermissions(context.Background(), "room@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Inbox", e.dir.lastFolder)
}

func TestCalendarPermissions_NoFolders(t *testing.T) {
	e := newTestEnv(t)

	rows, err := e.session.CalendarPermissions(context.Background(), "bare@example.com")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func groupRef() ObjectRef {
	return ObjectRef{
		Kind:           directory.KindDistributionGroup,
		DisplayName:    "conf-room users",
		PrimaryEmail:   "conf-room-users@example.com",
		RemoteIdentity: "CN=conf-room-users",
	}
}

func TestAddGroupMembers_SecondAddWarnsNotFails(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	ctx := context.Background()
	ref := groupRef()

	res, err := e.session.AddGroupMembers(ctx, ref, []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, e.dir.members[ref.RemoteIdentity], 1)

	res, err = e.session.AddGroupMembers(ctx, ref, []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, directory.IsConflict(res.Outcomes[0].Err))
	assert.Len(t, e.dir.members[ref.RemoteIdentity], 1)
	assert.Contains(t, e.auditBuf.String(), "WRN")
}

func TestAddGroupMembers_UnresolvedSkipped(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")

	res, err := e.session.AddGroupMembers(context.Background(), groupRef(), []string{"nobody", "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Succeeded)
	assert.Contains(t, e.auditBuf.String(), "could not resolve identity")
}

func TestRemoveGroupMembers_AbsentMemberWarns(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")

	res, err := e.session.RemoveGroupMembers(context.Background(), groupRef(), []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, directory.IsNotFound(res.Outcomes[0].Err))
}

func TestMutationEvictsDetails(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	ctx := context.Background()
	ref := groupRef()

	before, err := e.session.Details(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, before.Members)

	_, err = e.session.AddGroupMembers(ctx, ref, []string{"alice"})
	require.NoError(t, err)

	after, err := e.session.Details(ctx, ref)
	require.NoError(t, err)
	require.Len(t, after.Members, 1)
	assert.Equal(t, "Alice A", after.Members[0].Name)

	stats := e.session.Stats()
	assert.Equal(t, int64(2), stats.DetailsMisses)
}

func TestMutationEvictsCalendarForResourceMailbox(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	ctx := context.Background()
	// The ref carries the address in display case; the calendar cache key
	// is case-insensitive.
	ref := ObjectRef{Kind: directory.KindRoomMailbox, DisplayName: "conf-room one", PrimaryEmail: "Conf-Room-1@example.com", RemoteIdentity: "CN=conf-room-1"}
	e.dir.folders["conf-room-1@example.com"] = []directory.Folder{{Name: "Calendar", FolderType: "calendar"}}
	e.dir.folderACLs["conf-room-1@example.com"] = []directory.FolderPermission{
		{Principal: "CN=Alice", AccessRights: "Editor"},
	}

	_, err := e.session.CalendarPermissions(ctx, "conf-room-1@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, e.dir.foldersCalls)

	_, err = e.session.GrantMailboxRights(ctx, ref, []string{"alice"}, true, false)
	require.NoError(t, err)

	// The grant evicted the calendar entry; the next read refetches.
	_, err = e.session.CalendarPermissions(ctx, "conf-room-1@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, e.dir.foldersCalls)

	stats := e.session.Stats()
	assert.Zero(t, stats.CalendarHits)
	assert.Equal(t, int64(2), stats.CalendarMisses)
}

func TestGrantMailboxRights_RightsAttemptedIndependently(t *testing.T) {
	e := newTestEnv(t)
	e.addRecipient(directory.KindUnknown, "CN=Alice", "Alice A", "alice@example.com", "alice", "UserMailbox")
	ref := ObjectRef{Kind: directory.KindSharedMailbox, DisplayName: "Finance", PrimaryEmail: "finance@example.com", RemoteIdentity: "CN=Finance"}

	// FullAccess is already present, so that grant conflicts; the SendAs
	// attempt for the same identity must still run.
	e.dir.fullAccess[ref.RemoteIdentity] = []directory.PermissionEntry{{Trustee: "CN=Alice"}}

	res, err := e.session.GrantMailboxRights(context.Background(), ref, []string{"alice"}, true, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, e.dir.sendAs[ref.RemoteIdentity], 1)
	assert.Equal(t, "CN=Alice", e.dir.sendAs[ref.RemoteIdentity][0].Trustee)
}

func TestRevokeMailboxRights_RawTokenFallback(t *testing.T) {
	e := newTestEnv(t)
	ref := ObjectRef{Kind: directory.KindSharedMailbox, DisplayName: "Finance", PrimaryEmail: "finance@example.com", RemoteIdentity: "CN=Finance"}
	e.dir.fullAccess[ref.RemoteIdentity] = []directory.PermissionEntry{{Trustee: "CN=Ghost"}}

	// "CN=Ghost" no longer resolves but is still listed as a trustee; the
	// raw token goes to the removal call verbatim.
	res, err := e.session.RevokeMailboxRights(context.Background(), ref, []string{"CN=Ghost"}, true, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Contains(t, e.dir.removedTargets, "CN=Ghost")
	assert.Empty(t, e.dir.fullAccess[ref.RemoteIdentity])
	assert.Contains(t, e.auditBuf.String(), "using raw token as removal target")
}

func TestMutations_EmptyBatchRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ref := groupRef()

	_, err := e.session.AddGroupMembers(ctx, ref, nil)
	assert.ErrorIs(t, err, ErrNoIdentities)
	_, err = e.session.RemoveGroupMembers(ctx, ref, nil)
	assert.ErrorIs(t, err, ErrNoIdentities)
	_, err = e.session.GrantMailboxRights(ctx, ref, nil, true, false)
	assert.ErrorIs(t, err, ErrNoIdentities)
	_, err = e.session.RevokeMailboxRights(ctx, ref, nil, true, false)
	assert.ErrorIs(t, err, ErrNoIdentities)
}

func TestMutation_ConnectionLossAbortsBatch(t *testing.T) {
	e := newTestEnv(t)
	ref := ObjectRef{Kind: directory.KindSharedMailbox, DisplayName: "Finance", PrimaryEmail: "finance@example.com", RemoteIdentity: "CN=Finance"}

	// The revoke path reaches the removal call even for unresolvable tokens,
	// so a dead connection surfaces as a batch abort rather than a skip.
	e.dir.connErr = connectionError("remove_full_access")
	res, err := e.session.RevokeMailboxRights(context.Background(), ref, []string{"CN=Ghost", "CN=Other"}, true, false)
	require.Error(t, err)
	assert.True(t, directory.IsConnection(err))
	// Processing stopped at the first identity.
	assert.Zero(t, res.Succeeded+res.Failed+res.Skipped)
	assert.Contains(t, e.auditBuf.String(), "ERR")
}

func TestDetails_PerKind(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()
	e.dir.dynamics["CN=conf-room-dyn"] = &directory.DynamicGroup{
		Name:            "conf-room dynamic",
		PrimarySMTP:     "conf-room-dyn@example.com",
		RecipientFilter: "(department=Facilities)",
		Container:       "OU=Rooms",
	}
	e.dir.folders["conf-room-1@example.com"] = []directory.Folder{{Name: "Calendar", FolderType: "calendar"}}
	ctx := context.Background()

	t.Run("shared mailbox carries permission rows", func(t *testing.T) {
		b, err := e.session.Details(ctx, ObjectRef{Kind: directory.KindSharedMailbox, DisplayName: "conf-room booking", PrimaryEmail: "conf-room-booking@example.com", RemoteIdentity: "CN=conf-room-booking"})
		require.NoError(t, err)
		assert.NotNil(t, b.Permissions)
		assert.Nil(t, b.Calendar)
		assert.Contains(t, b.Header, "conf-room booking")
	})

	t.Run("room mailbox adds calendar rows", func(t *testing.T) {
		b, err := e.session.Details(ctx, ObjectRef{Kind: directory.KindRoomMailbox, DisplayName: "conf-room one", PrimaryEmail: "conf-room-1@example.com", RemoteIdentity: "CN=conf-room-1"})
		require.NoError(t, err)
		assert.NotNil(t, b.Calendar)
	})

	t.Run("dynamic group carries the rule", func(t *testing.T) {
		b, err := e.session.Details(ctx, ObjectRef{Kind: directory.KindDynamicDistributionGroup, DisplayName: "conf-room dynamic", PrimaryEmail: "conf-room-dyn@example.com", RemoteIdentity: "CN=conf-room-dyn"})
		require.NoError(t, err)
		require.NotNil(t, b.Rule)
		assert.Equal(t, "(department=Facilities)", b.Rule.RecipientFilter)
		assert.Equal(t, "OU=Rooms", b.Rule.Container)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := e.session.Details(ctx, ObjectRef{Kind: directory.KindUnknown, RemoteIdentity: "CN=x"})
		require.Error(t, err)
	})
}

func TestClearCaches(t *testing.T) {
	e := newTestEnv(t)
	e.seedSearchFixtures()
	ctx := context.Background()

	_, err := e.session.Search(ctx, "conf-room")
	require.NoError(t, err)
	callsBefore := e.dir.searchCalls

	e.session.ClearCaches()
	_, err = e.session.Search(ctx, "conf-room")
	require.NoError(t, err)
	assert.Equal(t, callsBefore*2, e.dir.searchCalls)
}

func TestBatchResultSummary(t *testing.T) {
	res := &BatchResult{}
	res.ok("alice", "add_member")
	res.fail("bob", "add_member", assert.AnError)
	res.skip("ghost")
	assert.Equal(t, "1 succeeded, 1 failed, 1 skipped", res.Summary())
	assert.Len(t, res.Outcomes, 3)
}
