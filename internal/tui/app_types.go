package tui

import (
	"panel-cli/internal/panel"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAuth
	modalCardForm
	modalIconPicker
	modalConfirmDelete
)

// Card form field order. The icon field is display-only; ctrl+o opens the
// icon picker to change it.
const (
	formFieldName = iota
	formFieldIcon
	formFieldURL
	formFieldDescription
	formFieldCount
)

// cardsLoadedMsg reports the completion of an async list reload. Stale
// completions are already discarded by the store; the query is carried so
// the view can report what the list reflects.
type cardsLoadedMsg struct {
	query string
	err   error
}

type authStatusMsg struct {
	authenticated bool
	err           error
}

// loginDoneMsg carries the action that was parked before the login
// attempt so a successful login can resume it on the event loop.
type loginDoneMsg struct {
	err     error
	pending panel.PendingAction
	hadPend bool
}

type cardSavedMsg struct {
	create bool
	err    error
}

type cardDeletedMsg struct {
	id  string
	err error
}

type reorderDoneMsg struct {
	err error
}

type iconsLoadedMsg struct {
	err error
}

// searchCommitMsg is posted by the debounced search controller once a
// quiet period elapses; the update loop turns it into a reload command.
type searchCommitMsg struct {
	query string
}

type resumedMsg struct {
	err error
}

type flashDoneMsg struct {
	seq int
}
