// Package tui is the interactive console shell: a search prompt, a result
// list, per-object detail views, and bulk mutation prompts. All directory
// work runs in commands off the update loop; the session core does the rest.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jtg86/mbxadmin/internal/directory"
	"github.com/jtg86/mbxadmin/internal/session"
)

type viewState int

const (
	viewSearch  viewState = iota
	viewResults           // search result list
	viewDetail            // one object's detail rows
	viewInput             // bulk identity input for a pending mutation
)

// pendingAction is the mutation the input view collects identities for.
type pendingAction struct {
	name         string // status/audit label
	member       bool   // membership change, not a rights change
	remove       bool
	doFullAccess bool
	doSendAs     bool
}

type AppModel struct {
	session *session.Session
	Err     error
	status  string

	view     viewState
	selected *session.ObjectRef
	bundle   *session.DetailsBundle
	pending  pendingAction

	searchInput textinput.Model
	identInput  textinput.Model
	resultsList list.Model
	detailView  viewport.Model

	width, height int
}

func NewAppModel(s *session.Session) AppModel {
	si := textinput.New()
	si.Placeholder = "Search mailboxes and groups"
	si.Focus()

	ii := textinput.New()
	ii.Placeholder = "alice@example.com, bob; finance-team"

	rl := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	rl.KeyMap.Quit.SetKeys("q")

	return AppModel{
		session:     s,
		view:        viewSearch,
		searchInput: si,
		identInput:  ii,
		resultsList: rl,
		detailView:  viewport.New(0, 0),
	}
}

func (m *AppModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultsList.SetSize(msg.Width, msg.Height-4)
		m.detailView.Width = msg.Width
		m.detailView.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchDoneMsg:
		if msg.err != nil {
			if directory.IsConnection(msg.err) {
				return m.fatal(msg.err)
			}
			m.status = fmt.Sprintf("Search failed: %v", msg.err)
			return m, nil
		}
		if len(msg.refs) == 0 {
			m.status = fmt.Sprintf("No results for %q", msg.text)
			return m, nil
		}
		m.resultsList.SetItems(refsToItems(msg.refs))
		m.resultsList.Title = fmt.Sprintf("Results for %q (%d)", msg.text, len(msg.refs))
		m.view = viewResults
		m.status = ""
		return m, nil

	case detailsDoneMsg:
		if msg.err != nil {
			if directory.IsConnection(msg.err) {
				return m.fatal(msg.err)
			}
			m.status = fmt.Sprintf("Failed to load details: %v", msg.err)
			return m, nil
		}
		m.bundle = msg.bundle
		m.detailView.SetContent(renderDetails(msg.bundle))
		m.detailView.GotoTop()
		m.view = viewDetail
		m.status = ""
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			if directory.IsConnection(msg.err) {
				return m.fatal(msg.err)
			}
			m.status = fmt.Sprintf("%s aborted: %v", msg.action, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s: %s", msg.action, msg.result.Summary())
		// Reload the detail view; the mutation evicted its cache entry.
		if m.selected != nil {
			return m, m.detailsCmd(*m.selected)
		}
		return m, nil

	case statusMsg:
		if string(msg) == "" {
			m.status = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case viewSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case viewResults:
		m.resultsList, cmd = m.resultsList.Update(msg)
	case viewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case viewInput:
		m.identInput, cmd = m.identInput.Update(msg)
	}
	return m, cmd
}

// fatal records a connection loss and shuts the program down; main reports
// the error after the terminal is restored.
func (m *AppModel) fatal(err error) (tea.Model, tea.Cmd) {
	m.Err = err
	return m, tea.Quit
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewSearch:
		if key == "enter" {
			text := strings.TrimSpace(m.searchInput.Value())
			if utf8.RuneCountInString(text) < m.session.MinSearchLength() {
				m.status = fmt.Sprintf("Type at least %d characters", m.session.MinSearchLength())
				return m, clearStatusAfter(2 * time.Second)
			}
			m.status = "Searching..."
			return m, m.searchCmd(text)
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case viewResults:
		if m.resultsList.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.resultsList, cmd = m.resultsList.Update(msg)
			return m, cmd
		}
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.view = viewSearch
			m.searchInput.Focus()
			return m, textinput.Blink
		case "enter":
			return m.enterDetail()
		}
		var cmd tea.Cmd
		m.resultsList, cmd = m.resultsList.Update(msg)
		return m, cmd

	case viewDetail:
		return m.handleDetailKey(msg)

	case viewInput:
		switch key {
		case "enter":
			text := m.identInput.Value()
			m.identInput.Reset()
			identities := session.ParseIdentities(text)
			if len(identities) == 0 {
				m.status = "No valid identities in input"
				m.view = viewDetail
				return m, clearStatusAfter(2 * time.Second)
			}
			m.view = viewDetail
			m.status = m.pending.name + "..."
			return m, m.mutateCmd(m.pending, identities)
		case "esc":
			m.identInput.Reset()
			m.view = viewDetail
			return m, nil
		}
		var cmd tea.Cmd
		m.identInput, cmd = m.identInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.bundle == nil {
		return m, nil
	}
	kind := bundleKind(m.bundle)

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.bundle = nil
		m.view = viewResults
		return m, nil
	case "r":
		if m.selected != nil {
			m.session.InvalidateObject(*m.selected)
			m.status = "Reloading..."
			return m, m.detailsCmd(*m.selected)
		}
		return m, nil
	case "f":
		if kind == detailMailbox {
			return m.promptIdentities(pendingAction{name: "Grant FullAccess", doFullAccess: true})
		}
	case "s":
		if kind == detailMailbox {
			return m.promptIdentities(pendingAction{name: "Grant SendAs", doSendAs: true})
		}
	case "F":
		if kind == detailMailbox {
			return m.promptIdentities(pendingAction{name: "Revoke FullAccess", remove: true, doFullAccess: true})
		}
	case "S":
		if kind == detailMailbox {
			return m.promptIdentities(pendingAction{name: "Revoke SendAs", remove: true, doSendAs: true})
		}
	case "a":
		if kind == detailGroup {
			return m.promptIdentities(pendingAction{name: "Add members", member: true})
		}
	case "d":
		if kind == detailGroup {
			return m.promptIdentities(pendingAction{name: "Remove members", member: true, remove: true})
		}
	}

	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

func (m *AppModel) enterDetail() (tea.Model, tea.Cmd) {
	selected := m.resultsList.SelectedItem()
	if selected == nil {
		return m, nil
	}
	ref := selected.(resultItem).ObjectRef
	m.selected = &ref
	m.status = "Loading details..."
	return m, m.detailsCmd(ref)
}

func (m *AppModel) promptIdentities(action pendingAction) (tea.Model, tea.Cmd) {
	m.pending = action
	m.identInput.Focus()
	m.view = viewInput
	m.status = ""
	return m, textinput.Blink
}

// Commands

func (m *AppModel) searchCmd(text string) tea.Cmd {
	return func() tea.Msg {
		refs, err := m.session.Search(context.Background(), text)
		return searchDoneMsg{text: text, refs: refs, err: err}
	}
}

func (m *AppModel) detailsCmd(ref session.ObjectRef) tea.Cmd {
	return func() tea.Msg {
		bundle, err := m.session.Details(context.Background(), ref)
		return detailsDoneMsg{bundle: bundle, err: err}
	}
}

func (m *AppModel) mutateCmd(action pendingAction, identities []string) tea.Cmd {
	ref := *m.selected
	return func() tea.Msg {
		ctx := context.Background()
		var res *session.BatchResult
		var err error
		switch {
		case action.member && action.remove:
			res, err = m.session.RemoveGroupMembers(ctx, ref, identities)
		case action.member:
			res, err = m.session.AddGroupMembers(ctx, ref, identities)
		case action.remove:
			res, err = m.session.RevokeMailboxRights(ctx, ref, identities, action.doFullAccess, action.doSendAs)
		default:
			res, err = m.session.GrantMailboxRights(ctx, ref, identities, action.doFullAccess, action.doSendAs)
		}
		return mutationDoneMsg{action: action.name, result: res, err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}

func (m *AppModel) View() string {
	if m.Err != nil {
		return "Error: " + m.Err.Error() + "\n"
	}

	var b strings.Builder
	switch m.view {
	case viewSearch:
		b.WriteString(headerStyle.Render("Directory search"))
		b.WriteString("\n")
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
		b.WriteString(searchFooter())
	case viewResults:
		b.WriteString(m.resultsList.View())
		b.WriteString("\n")
		b.WriteString(resultsFooter())
	case viewDetail:
		b.WriteString(m.detailView.View())
		b.WriteString("\n")
		if m.bundle != nil {
			b.WriteString(detailFooter(bundleKind(m.bundle)))
		}
	case viewInput:
		b.WriteString(headerStyle.Render(m.pending.name))
		b.WriteString("\n")
		b.WriteString(m.identInput.View())
		b.WriteString("\n")
		b.WriteString(inputFooter())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}
