package session

import (
	"context"
	"strings"
	"sync"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// fakeDirectory is an in-memory directory.Directory used by the session
// tests. Identities resolve by DN, primary address, or alias. Mutations
// behave like the remote service: duplicate adds conflict, absent removals
// are not found.
type fakeDirectory struct {
	recipients []*directory.Recipient

	fullAccess map[string][]directory.PermissionEntry // mailbox DN -> entries
	sendAs     map[string][]directory.PermissionEntry
	folders    map[string][]directory.Folder
	folderACLs map[string][]directory.FolderPermission // mailbox DN -> calendar ACL
	members    map[string][]string                     // group DN -> member DNs
	dynamics   map[string]*directory.DynamicGroup

	// connErr, when set, fails every call as a connection error.
	connErr error
	// searchErrs fails the search for a specific leading kind.
	searchErrs map[directory.Kind]error

	mu             sync.Mutex
	searchCalls    int
	lookupCalls    int
	fullListCalls  int
	foldersCalls   int
	removedTargets []string
	lastFolder     string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		fullAccess: make(map[string][]directory.PermissionEntry),
		sendAs:     make(map[string][]directory.PermissionEntry),
		folders:    make(map[string][]directory.Folder),
		folderACLs: make(map[string][]directory.FolderPermission),
		members:    make(map[string][]string),
		dynamics:   make(map[string]*directory.DynamicGroup),
		searchErrs: make(map[directory.Kind]error),
	}
}

func connectionError(op string) error {
	return directory.NewError(op, directory.ErrorCategoryConnection, "", "server is down", nil)
}

func (f *fakeDirectory) Connect(ctx context.Context) error { return f.connErr }
func (f *fakeDirectory) Close() error                      { return nil }

func (f *fakeDirectory) find(identity string) *directory.Recipient {
	for _, r := range f.recipients {
		if strings.EqualFold(r.Identity, identity) ||
			(r.PrimarySMTP != "" && strings.EqualFold(r.PrimarySMTP, identity)) ||
			(r.Alias != "" && strings.EqualFold(r.Alias, identity)) {
			return r
		}
	}
	return nil
}

func (f *fakeDirectory) LookupRecipient(ctx context.Context, identity string) (*directory.Recipient, error) {
	f.lookupCalls++
	if f.connErr != nil {
		return nil, f.connErr
	}
	if r := f.find(identity); r != nil {
		return r, nil
	}
	return nil, directory.NewError("lookup_recipient", directory.ErrorCategoryNotFound, identity, "no such recipient", nil)
}

func (f *fakeDirectory) SearchRecipients(ctx context.Context, kinds []directory.Kind, text string, limit int) ([]directory.Recipient, error) {
	// Search buckets run concurrently; guard the shared counters.
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.connErr != nil {
		return nil, f.connErr
	}
	if err := f.searchErrs[kinds[0]]; err != nil {
		return nil, err
	}

	wanted := make(map[directory.Kind]bool)
	for _, k := range kinds {
		wanted[k] = true
	}
	var out []directory.Recipient
	for _, r := range f.recipients {
		if !wanted[r.Kind] {
			continue
		}
		if !strings.Contains(strings.ToLower(r.DisplayName), strings.ToLower(text)) &&
			!strings.Contains(strings.ToLower(r.PrimarySMTP), strings.ToLower(text)) &&
			!strings.Contains(strings.ToLower(r.Alias), strings.ToLower(text)) {
			continue
		}
		out = append(out, *r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDirectory) FullAccessEntries(ctx context.Context, mailbox string) ([]directory.PermissionEntry, error) {
	f.fullListCalls++
	if f.connErr != nil {
		return nil, f.connErr
	}
	return f.fullAccess[mailbox], nil
}

func (f *fakeDirectory) SendAsEntries(ctx context.Context, mailbox string) ([]directory.PermissionEntry, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	return f.sendAs[mailbox], nil
}

func (f *fakeDirectory) addEntry(set map[string][]directory.PermissionEntry, op, mailbox, trustee string) error {
	if f.connErr != nil {
		return f.connErr
	}
	for _, e := range set[mailbox] {
		if strings.EqualFold(e.Trustee, trustee) {
			return directory.NewError(op, directory.ErrorCategoryConflict, trustee, "attribute or value already exists", nil)
		}
	}
	set[mailbox] = append(set[mailbox], directory.PermissionEntry{Trustee: trustee})
	return nil
}

func (f *fakeDirectory) removeEntry(set map[string][]directory.PermissionEntry, op, mailbox, trustee string) error {
	if f.connErr != nil {
		return f.connErr
	}
	f.removedTargets = append(f.removedTargets, trustee)
	entries := set[mailbox]
	for i, e := range entries {
		if strings.EqualFold(e.Trustee, trustee) {
			set[mailbox] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return directory.NewError(op, directory.ErrorCategoryNotFound, trustee, "requested attribute or value does not exist", nil)
}

func (f *fakeDirectory) AddFullAccess(ctx context.Context, mailbox, trustee string) error {
	return f.addEntry(f.fullAccess, "add_full_access", mailbox, trustee)
}

func (f *fakeDirectory) RemoveFullAccess(ctx context.Context, mailbox, trustee string) error {
	return f.removeEntry(f.fullAccess, "remove_full_access", mailbox, trustee)
}

func (f *fakeDirectory) AddSendAs(ctx context.Context, mailbox, trustee string) error {
	return f.addEntry(f.sendAs, "add_send_as", mailbox, trustee)
}

func (f *fakeDirectory) RemoveSendAs(ctx context.Context, mailbox, trustee string) error {
	return f.removeEntry(f.sendAs, "remove_send_as", mailbox, trustee)
}

func (f *fakeDirectory) MailboxFolders(ctx context.Context, mailbox string) ([]directory.Folder, error) {
	f.foldersCalls++
	if f.connErr != nil {
		return nil, f.connErr
	}
	return f.folders[mailbox], nil
}

func (f *fakeDirectory) FolderPermissions(ctx context.Context, mailbox, folder string) ([]directory.FolderPermission, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	f.lastFolder = folder
	return f.folderACLs[mailbox], nil
}

func (f *fakeDirectory) GroupMembers(ctx context.Context, group string) ([]directory.Member, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	var out []directory.Member
	for _, dn := range f.members[group] {
		m := directory.Member{Identity: dn}
		if r := f.find(dn); r != nil {
			m.DisplayName = r.DisplayName
			m.PrimarySMTP = r.PrimarySMTP
			m.TypeDetails = r.TypeDetails
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeDirectory) AddGroupMember(ctx context.Context, group, member string) error {
	if f.connErr != nil {
		return f.connErr
	}
	for _, dn := range f.members[group] {
		if strings.EqualFold(dn, member) {
			return directory.NewError("add_group_member", directory.ErrorCategoryConflict, member, "already a member", nil)
		}
	}
	f.members[group] = append(f.members[group], member)
	return nil
}

func (f *fakeDirectory) RemoveGroupMember(ctx context.Context, group, member string) error {
	if f.connErr != nil {
		return f.connErr
	}
	f.removedTargets = append(f.removedTargets, member)
	dns := f.members[group]
	for i, dn := range dns {
		if strings.EqualFold(dn, member) {
			f.members[group] = append(dns[:i:i], dns[i+1:]...)
			return nil
		}
	}
	return directory.NewError("remove_group_member", directory.ErrorCategoryNotFound, member, "not a member", nil)
}

func (f *fakeDirectory) DynamicGroup(ctx context.Context, identity string) (*directory.DynamicGroup, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	if g, ok := f.dynamics[identity]; ok {
		return g, nil
	}
	return nil, directory.NewError("dynamic_group", directory.ErrorCategoryNotFound, identity, "no such group", nil)
}

var _ directory.Directory = (*fakeDirectory)(nil)
