package tui

import "github.com/jtg86/mbxadmin/internal/session"

// Async message types for Bubble Tea commands.

type searchDoneMsg struct {
	text string
	refs []session.ObjectRef
	err  error
}

type detailsDoneMsg struct {
	bundle *session.DetailsBundle
	err    error
}

type mutationDoneMsg struct {
	action string
	result *session.BatchResult
	err    error
}

type statusMsg string
