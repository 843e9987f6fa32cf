package tui

import (
	"context"
	"time"

	"panel-cli/internal/model"
	"panel-cli/internal/panel"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const flashDuration = 2500 * time.Millisecond

type appModel struct {
	ctrl *panel.Controller

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool

	mode panel.ViewMode

	// cards is the display snapshot; the store owns the authoritative list.
	cards  []model.Card
	selIdx int

	loading bool
	spin    spinner.Model

	searchInput textinput.Model
	// searching means the search input has key focus.
	searching bool

	modal modalKind
	// modalForID is the card an edit/delete modal is acting on; empty for add.
	modalForID string

	formInputs [formFieldCount]textinput.Model
	formFocus  int
	formErr    string

	passInput textinput.Model
	authErr   string

	// Icon picker state. Category index 0 is "all".
	iconCats   []string
	iconCatIdx int
	iconQuery  textinput.Model
	iconRows   []iconRow
	iconSel    int

	flash    string
	flashErr bool
	flashSeq int
}

// iconRow is one selectable line in the icon picker, flattened across the
// filtered catalog.
type iconRow struct {
	category string
	entry    model.IconEntry
}

func newAppModel(ctrl *panel.Controller, startMode panel.ViewMode) appModel {
	search := textinput.New()
	search.Placeholder = "search cards"
	search.Prompt = "/ "
	search.CharLimit = 100

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 100

	iconQ := textinput.New()
	iconQ.Placeholder = "filter icons"
	iconQ.CharLimit = 60

	var form [formFieldCount]textinput.Model
	for i := range form {
		form[i] = textinput.New()
		form[i].CharLimit = model.MaxDescriptionLen
	}
	form[formFieldName].Placeholder = "name"
	form[formFieldName].CharLimit = model.MaxNameLen
	form[formFieldIcon].Placeholder = "ctrl+o to pick"
	form[formFieldURL].Placeholder = "https://…"
	form[formFieldDescription].Placeholder = "description (optional)"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	if startMode != panel.ViewList {
		startMode = panel.ViewGrid
	}

	return appModel{
		ctrl:        ctrl,
		mode:        startMode,
		loading:     true,
		spin:        sp,
		searchInput: search,
		passInput:   pass,
		iconQuery:   iconQ,
		formInputs:  form,
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCardsCmd(""), m.authStatusCmd(), m.spin.Tick)
}

// syncCards refreshes the display snapshot from the store and keeps the
// selection on a valid index.
func (m *appModel) syncCards() {
	m.cards = m.ctrl.Store.Cards()
	if m.selIdx >= len(m.cards) {
		m.selIdx = len(m.cards) - 1
	}
	if m.selIdx < 0 {
		m.selIdx = 0
	}
}

func (m *appModel) setFlash(text string, isErr bool) tea.Cmd {
	m.flash = text
	m.flashErr = isErr
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashDoneMsg{seq: seq}
	})
}

func (m appModel) loadCardsCmd(query string) tea.Cmd {
	store := m.ctrl.Store
	return func() tea.Msg {
		_, err := store.Reload(context.Background(), query)
		return cardsLoadedMsg{query: query, err: err}
	}
}

func (m appModel) authStatusCmd() tea.Cmd {
	gate := m.ctrl.Gate
	return func() tea.Msg {
		ok, err := gate.Refresh(context.Background())
		return authStatusMsg{authenticated: ok, err: err}
	}
}

func (m appModel) loginCmd(password string) tea.Cmd {
	gate := m.ctrl.Gate
	return func() tea.Msg {
		// Capture the parked action before Login consumes it, so a
		// successful login can reopen the right modal from the loop.
		pending, had := gate.Pending()
		err := gate.Login(context.Background(), password)
		return loginDoneMsg{err: err, pending: pending, hadPend: had}
	}
}

func (m appModel) createCardCmd(fields model.CardFields) tea.Cmd {
	store := m.ctrl.Store
	return func() tea.Msg {
		_, err := store.Create(context.Background(), fields)
		return cardSavedMsg{create: true, err: err}
	}
}

func (m appModel) updateCardCmd(id string, fields model.CardFields) tea.Cmd {
	store := m.ctrl.Store
	return func() tea.Msg {
		_, err := store.Update(context.Background(), id, fields)
		return cardSavedMsg{err: err}
	}
}

func (m appModel) deleteCardCmd(id string) tea.Cmd {
	store := m.ctrl.Store
	return func() tea.Msg {
		err := store.Delete(context.Background(), id)
		return cardDeletedMsg{id: id, err: err}
	}
}

func (m appModel) reorderCmd(ids []string) tea.Cmd {
	reorder := m.ctrl.Reorder
	return func() tea.Msg {
		err := reorder.OnDropComplete(context.Background(), ids)
		return reorderDoneMsg{err: err}
	}
}

func (m appModel) loadIconsCmd() tea.Cmd {
	icons := m.ctrl.Icons
	return func() tea.Msg {
		_, err := icons.Load(context.Background())
		return iconsLoadedMsg{err: err}
	}
}

func (m appModel) resumeCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.ResumeVisibility(context.Background())
		return resumedMsg{err: err}
	}
}
