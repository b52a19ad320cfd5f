package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtg86/mbxadmin/internal/session"
)

// resultItem wraps an ObjectRef to customize list display.
type resultItem struct {
	session.ObjectRef
}

func (r resultItem) FilterValue() string { return r.DisplayName + " " + r.PrimaryEmail }
func (r resultItem) Title() string {
	return fmt.Sprintf("%s  [%s]", r.DisplayName, r.Kind)
}
func (r resultItem) Description() string {
	if r.PrimaryEmail != "" {
		return r.PrimaryEmail
	}
	return r.RemoteIdentity
}

func refsToItems(refs []session.ObjectRef) []list.Item {
	items := make([]list.Item, len(refs))
	for i, ref := range refs {
		items[i] = resultItem{ref}
	}
	return items
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingBottom(1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)
	flagOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func searchFooter() string {
	return footerStyle.Render("enter: search (min 3 chars)  ctrl+c: quit")
}

func resultsFooter() string {
	return footerStyle.Render("enter: details  /: filter  esc: new search  q: quit")
}

func detailFooter(kind detailKind) string {
	switch kind {
	case detailMailbox:
		return footerStyle.Render("f/s: grant FullAccess/SendAs  F/S: revoke  r: reload  esc: back  q: quit")
	case detailGroup:
		return footerStyle.Render("a: add members  d: remove members  r: reload  esc: back  q: quit")
	default:
		return footerStyle.Render("r: reload  esc: back  q: quit")
	}
}

func inputFooter() string {
	return footerStyle.Render("enter: run  esc: cancel  (identities separated by comma/semicolon/whitespace)")
}

type detailKind int

const (
	detailMailbox detailKind = iota
	detailGroup
	detailDynamic
)

func bundleKind(b *session.DetailsBundle) detailKind {
	switch {
	case b.Rule != nil:
		return detailDynamic
	case b.Ref.Kind.IsGroup():
		return detailGroup
	default:
		return detailMailbox
	}
}

// renderDetails renders one DetailsBundle as plain rows; the populated
// sections follow the object kind.
func renderDetails(b *session.DetailsBundle) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(b.Header))
	sb.WriteString("\n")

	if b.Rule != nil {
		sb.WriteString("Recipient filter:   " + b.Rule.RecipientFilter + "\n")
		sb.WriteString("Recipient container: " + b.Rule.Container + "\n")
		sb.WriteString("\nMembership is computed by the directory; this group has no member list to edit.\n")
		return sb.String()
	}

	if b.Ref.Kind.IsGroup() {
		sb.WriteString(fmt.Sprintf("Members (%d):\n", len(b.Members)))
		for _, m := range b.Members {
			sb.WriteString(fmt.Sprintf("  %-30s  %-30s  %s\n", m.Name, m.Email, m.Type))
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Trustees (%d):\n", len(b.Permissions)))
	for _, row := range b.Permissions {
		sb.WriteString(fmt.Sprintf("  %-30s  %-14s  %s %s\n",
			row.Identity.DisplayName, row.Identity.TypeDetails,
			flag("FullAccess", row.FullAccess), flag("SendAs", row.SendAs)))
	}

	if b.Calendar != nil {
		sb.WriteString(fmt.Sprintf("\nCalendar permissions (%d):\n", len(b.Calendar)))
		for _, row := range b.Calendar {
			sb.WriteString(fmt.Sprintf("  %-30s  %-24s  %s\n",
				row.Identity.DisplayName, row.AccessRights, row.SharingFlags))
		}
	}
	return sb.String()
}

func flag(name string, on bool) string {
	if on {
		return flagOnStyle.Render("[" + name + "]")
	}
	return strings.Repeat(" ", len(name)+2)
}
