package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"panel-cli/internal/api"
	"panel-cli/internal/model"
	"panel-cli/internal/panel"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		return m, nil

	case tea.FocusMsg:
		// The terminal regained focus; mirror the web client's
		// visibilitychange handling: re-check auth, reload the list.
		m.loading = true
		return m, tea.Batch(m.resumeCmd(), m.spin.Tick)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case cardsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, panel.ErrStaleReload) {
				// A newer search already owns the list.
				return m, nil
			}
			m.syncCards()
			return m, m.setFlash(errorText(msg.err), true)
		}
		m.syncCards()
		return m, nil

	case authStatusMsg:
		// The auth badge reads the gate directly; nothing to store here.
		if msg.err != nil {
			return m, m.setFlash(errorText(msg.err), true)
		}
		return m, nil

	case searchCommitMsg:
		m.loading = true
		return m, tea.Batch(m.loadCardsCmd(msg.query), m.spin.Tick)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case cardSavedMsg:
		return m.handleCardSaved(msg)

	case cardDeletedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, panel.ErrAuthRequired) {
				m.modal = modalAuth
				m.passInput.Focus()
				return m, textinput.Blink
			}
			var rerr *panel.ReloadFailedError
			if errors.As(msg.err, &rerr) {
				// The delete landed; only the reload failed.
				m.modal = modalNone
				m.modalForID = ""
				m.syncCards()
				return m, m.setFlash(errorText(msg.err), true)
			}
			m.modal = modalNone
			return m, m.setFlash(errorText(msg.err), true)
		}
		m.modal = modalNone
		m.modalForID = ""
		m.syncCards()
		return m, m.setFlash("card deleted", false)

	case reorderDoneMsg:
		m.syncCards()
		if msg.err != nil {
			if errors.Is(msg.err, panel.ErrAuthRequired) {
				return m, m.setFlash("log in to reorder cards", true)
			}
			return m, m.setFlash(errorText(msg.err), true)
		}
		return m, nil

	case iconsLoadedMsg:
		if msg.err != nil {
			m.modal = modalCardForm
			return m, m.setFlash(errorText(msg.err), true)
		}
		m.iconCats = append([]string{"all"}, m.ctrl.Icons.Categories()...)
		m.iconCatIdx = 0
		m.iconSel = 0
		m.rebuildIconRows()
		return m, nil

	case resumedMsg:
		m.loading = false
		m.syncCards()
		if msg.err != nil {
			return m, m.setFlash(errorText(msg.err), true)
		}
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.ctrl.Search.Stop()
		return m, tea.Quit
	}

	switch m.modal {
	case modalAuth:
		return m.updateAuthKeys(msg)
	case modalCardForm:
		return m.updateFormKeys(msg)
	case modalIconPicker:
		return m.updateIconPickerKeys(msg)
	case modalConfirmDelete:
		return m.updateConfirmKeys(msg)
	}

	if m.searching {
		return m.updateSearchKeys(msg)
	}
	return m.updateBrowseKeys(msg)
}

func (m appModel) updateSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		// Clearing bypasses the debounce and reloads immediately.
		m.ctrl.Search.OnClear()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if v := m.searchInput.Value(); v != before {
		m.ctrl.Search.OnInput(v)
	}
	return m, cmd
}

func (m appModel) updateBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.ctrl.Search.Stop()
		return m, tea.Quit

	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "v":
		if m.mode == panel.ViewGrid {
			m.mode = panel.ViewList
		} else {
			m.mode = panel.ViewGrid
		}
		return m, nil

	case "r":
		m.loading = true
		return m, tea.Batch(m.loadCardsCmd(m.ctrl.Store.Query()), m.spin.Tick)

	case "l":
		if m.ctrl.Gate.IsAuthenticated() {
			return m, m.setFlash("already logged in", false)
		}
		m.modal = modalAuth
		m.authErr = ""
		m.passInput.SetValue("")
		m.passInput.Focus()
		return m, textinput.Blink

	case "a":
		if !m.ctrl.Gate.IsAuthenticated() {
			m.ctrl.Gate.RequireAuth(panel.PendingAction{Kind: panel.ActionAddCard})
			m.modal = modalAuth
			m.authErr = ""
			m.passInput.Focus()
			return m, textinput.Blink
		}
		m.openAddForm()
		return m, textinput.Blink

	case "e", "enter":
		if len(m.cards) == 0 {
			return m, nil
		}
		card := m.cards[m.selIdx]
		if !m.ctrl.Gate.IsAuthenticated() {
			m.ctrl.Gate.RequireAuth(panel.PendingAction{Kind: panel.ActionEditCard, CardID: card.ID})
			m.modal = modalAuth
			m.authErr = ""
			m.passInput.Focus()
			return m, textinput.Blink
		}
		m.openEditForm(card)
		return m, textinput.Blink

	case "d":
		if len(m.cards) == 0 {
			return m, nil
		}
		card := m.cards[m.selIdx]
		if !m.ctrl.Gate.IsAuthenticated() {
			m.ctrl.Gate.RequireAuth(panel.PendingAction{Kind: panel.ActionEditCard, CardID: card.ID})
			m.modal = modalAuth
			m.authErr = ""
			m.passInput.Focus()
			return m, textinput.Blink
		}
		m.modal = modalConfirmDelete
		m.modalForID = card.ID
		return m, nil

	case "[":
		// Reordering is a grid-only affordance.
		if m.mode != panel.ViewGrid {
			return m, nil
		}
		return m.moveSelected(-1)
	case "]":
		if m.mode != panel.ViewGrid {
			return m, nil
		}
		return m.moveSelected(1)

	case "up", "k":
		return m.moveSelection(-m.selectionStride()), nil
	case "down", "j":
		return m.moveSelection(m.selectionStride()), nil
	case "left":
		if m.mode == panel.ViewGrid {
			return m.moveSelection(-1), nil
		}
	case "right":
		if m.mode == panel.ViewGrid {
			return m.moveSelection(1), nil
		}
	case "home", "g":
		m.selIdx = 0
		return m, nil
	case "end", "G":
		if len(m.cards) > 0 {
			m.selIdx = len(m.cards) - 1
		}
		return m, nil
	}

	return m, nil
}

// selectionStride is how far up/down moves: one row in the grid, one card
// in the list.
func (m appModel) selectionStride() int {
	if m.mode == panel.ViewGrid {
		return m.gridColumns()
	}
	return 1
}

func (m appModel) moveSelection(delta int) appModel {
	if len(m.cards) == 0 {
		return m
	}
	next := m.selIdx + delta
	if next < 0 || next >= len(m.cards) {
		return m
	}
	m.selIdx = next
	return m
}

// moveSelected swaps the selected card with its neighbor and submits the
// full resulting sequence. The local swap gives instant feedback; the
// store is updated optimistically by the reorder controller and restored
// by a compensating reload if the server rejects.
func (m appModel) moveSelected(delta int) (tea.Model, tea.Cmd) {
	if len(m.cards) < 2 {
		return m, nil
	}
	j := m.selIdx + delta
	if j < 0 || j >= len(m.cards) {
		return m, nil
	}

	m.cards[m.selIdx], m.cards[j] = m.cards[j], m.cards[m.selIdx]
	m.selIdx = j

	ids := make([]string, len(m.cards))
	for i, c := range m.cards {
		ids[i] = c.ID
	}
	return m, m.reorderCmd(ids)
}

func (m *appModel) openAddForm() {
	m.modal = modalCardForm
	m.modalForID = ""
	m.formErr = ""
	for i := range m.formInputs {
		m.formInputs[i].SetValue("")
		m.formInputs[i].Blur()
	}
	m.formFocus = formFieldName
	m.formInputs[formFieldName].Focus()
}

func (m *appModel) openEditForm(card model.Card) {
	m.modal = modalCardForm
	m.modalForID = card.ID
	m.formErr = ""
	m.formInputs[formFieldName].SetValue(card.Name)
	m.formInputs[formFieldIcon].SetValue(card.Icon)
	m.formInputs[formFieldURL].SetValue(card.URL)
	m.formInputs[formFieldDescription].SetValue(card.Description)
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	m.formFocus = formFieldName
	m.formInputs[formFieldName].Focus()
}

func (m appModel) updateAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		// The parked action, if any, stays parked for a later login.
		m.modal = modalNone
		m.passInput.Blur()
		m.passInput.SetValue("")
		m.authErr = ""
		return m, nil
	case "enter":
		pw := m.passInput.Value()
		if strings.TrimSpace(pw) == "" {
			m.authErr = "password required"
			return m, nil
		}
		m.authErr = ""
		return m, m.loginCmd(pw)
	}

	var cmd tea.Cmd
	m.passInput, cmd = m.passInput.Update(msg)
	return m, cmd
}

func (m appModel) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.authErr = errorText(msg.err)
		m.passInput.SetValue("")
		return m, nil
	}

	m.modal = modalNone
	m.passInput.Blur()
	m.passInput.SetValue("")
	m.authErr = ""
	cmds := []tea.Cmd{m.setFlash("logged in", false)}

	if msg.hadPend {
		switch msg.pending.Kind {
		case panel.ActionAddCard:
			// Preserve anything already typed; the park may have
			// happened mid-form on an expired session.
			if m.formInputs[formFieldName].Value() == "" &&
				m.formInputs[formFieldURL].Value() == "" {
				m.openAddForm()
			} else {
				m.modal = modalCardForm
			}
			cmds = append(cmds, textinput.Blink)
		case panel.ActionEditCard:
			if card, err := m.ctrl.Store.Get(msg.pending.CardID); err == nil {
				m.openEditForm(card)
				cmds = append(cmds, textinput.Blink)
			} else {
				cmds = append(cmds, m.setFlash("card no longer exists", true))
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m appModel) updateFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.modal = modalNone
		m.modalForID = ""
		m.formErr = ""
		return m, nil

	case "tab", "down":
		return m.focusFormField((m.formFocus + 1) % formFieldCount), nil
	case "shift+tab", "up":
		return m.focusFormField((m.formFocus + formFieldCount - 1) % formFieldCount), nil

	case "ctrl+o":
		m.modal = modalIconPicker
		m.iconQuery.SetValue("")
		m.iconQuery.Focus()
		if m.iconCats == nil {
			return m, tea.Batch(m.loadIconsCmd(), textinput.Blink)
		}
		m.iconCatIdx = 0
		m.iconSel = 0
		m.rebuildIconRows()
		return m, textinput.Blink

	case "enter", "ctrl+s":
		fields := model.CardFields{
			Name:        m.formInputs[formFieldName].Value(),
			Icon:        m.formInputs[formFieldIcon].Value(),
			URL:         m.formInputs[formFieldURL].Value(),
			Description: m.formInputs[formFieldDescription].Value(),
		}
		if m.modalForID == "" {
			return m, m.createCardCmd(fields)
		}
		return m, m.updateCardCmd(m.modalForID, fields)
	}

	if m.formFocus == formFieldIcon {
		// Display-only; the picker owns icon choice.
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

func (m appModel) focusFormField(idx int) appModel {
	m.formInputs[m.formFocus].Blur()
	m.formFocus = idx
	m.formInputs[m.formFocus].Focus()
	return m
}

func (m appModel) handleCardSaved(msg cardSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.modal = modalNone
		m.modalForID = ""
		m.formErr = ""
		m.syncCards()
		if msg.create {
			return m, m.setFlash("card added", false)
		}
		return m, m.setFlash("card saved", false)
	}

	var (
		verr model.ValidationError
		rerr *panel.ReloadFailedError
	)
	switch {
	case errors.Is(msg.err, panel.ErrAuthRequired):
		// Session expired mid-form. The intent is parked; the form
		// values stay in place for the resume.
		m.modal = modalAuth
		m.authErr = ""
		m.passInput.Focus()
		return m, textinput.Blink
	case errors.As(msg.err, &rerr):
		// The save landed; only the follow-up reload failed. Closing
		// the form is right, hiding the failure is not.
		m.modal = modalNone
		m.modalForID = ""
		m.formErr = ""
		m.syncCards()
		return m, m.setFlash(errorText(msg.err), true)
	case errors.As(msg.err, &verr):
		m.formErr = verr.Error()
		return m, nil
	default:
		m.formErr = errorText(msg.err)
		return m, nil
	}
}

func (m appModel) updateConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.modal = modalNone
		m.modalForID = ""
		return m, nil
	case "enter", "y":
		return m, m.deleteCardCmd(m.modalForID)
	}
	return m, nil
}

func (m appModel) updateIconPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.ctrl.Icons.ClearSelection()
		m.modal = modalCardForm
		m.iconQuery.Blur()
		return m, nil

	case "left", "shift+tab":
		return m.cycleIconCategory(-1), nil
	case "right", "tab":
		return m.cycleIconCategory(1), nil

	case "up":
		if m.iconSel > 0 {
			m.iconSel--
		}
		return m, nil
	case "down":
		if m.iconSel < len(m.iconRows)-1 {
			m.iconSel++
		}
		return m, nil
	case "pgup":
		m.iconSel -= 5
		if m.iconSel < 0 {
			m.iconSel = 0
		}
		return m, nil
	case "pgdown":
		m.iconSel += 5
		if m.iconSel >= len(m.iconRows) {
			m.iconSel = len(m.iconRows) - 1
		}
		if m.iconSel < 0 {
			m.iconSel = 0
		}
		return m, nil

	case "enter":
		if m.iconSel < 0 || m.iconSel >= len(m.iconRows) {
			return m, nil
		}
		m.ctrl.Icons.Select(m.iconRows[m.iconSel].entry.Name)
		if name, ok := m.ctrl.Icons.Confirm(); ok {
			m.formInputs[formFieldIcon].SetValue(name)
		}
		m.modal = modalCardForm
		m.iconQuery.Blur()
		return m, nil
	}

	before := m.iconQuery.Value()
	var cmd tea.Cmd
	m.iconQuery, cmd = m.iconQuery.Update(msg)
	if m.iconQuery.Value() != before {
		m.iconSel = 0
		m.rebuildIconRows()
	}
	return m, cmd
}

func (m appModel) cycleIconCategory(delta int) appModel {
	if len(m.iconCats) == 0 {
		return m
	}
	m.iconCatIdx = (m.iconCatIdx + delta + len(m.iconCats)) % len(m.iconCats)
	m.iconSel = 0
	m.rebuildIconRows()
	return m
}

// rebuildIconRows flattens the catalog, filtered by the active query and
// category, into selectable rows in stable category order.
func (m *appModel) rebuildIconRows() {
	catalog := m.ctrl.Icons.FilterByQuery(m.iconQuery.Value())

	var active string
	if m.iconCatIdx > 0 && m.iconCatIdx < len(m.iconCats) {
		active = m.iconCats[m.iconCatIdx]
	}

	cats := make([]string, 0, len(catalog))
	for c := range catalog {
		if active != "" && c != active {
			continue
		}
		cats = append(cats, c)
	}
	sort.Strings(cats)

	m.iconRows = m.iconRows[:0]
	for _, c := range cats {
		for _, e := range catalog[c] {
			m.iconRows = append(m.iconRows, iconRow{category: c, entry: e})
		}
	}
	if m.iconSel >= len(m.iconRows) {
		m.iconSel = len(m.iconRows) - 1
	}
	if m.iconSel < 0 {
		m.iconSel = 0
	}
}

// errorText renders any panel error for the flash line or a modal.
func errorText(err error) string {
	var (
		verr model.ValidationError
		rerr *panel.ReloadFailedError
		aerr *api.AuthError
		serr *api.ServerError
		nerr *api.NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, panel.ErrAuthRequired):
		return "login required"
	case errors.Is(err, panel.ErrNotFound):
		return "card not found"
	case errors.As(err, &rerr):
		return rerr.Error()
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &aerr):
		return aerr.Error()
	case errors.As(err, &serr):
		return serr.Message
	case errors.As(err, &nerr):
		return fmt.Sprintf("cannot reach server: %v", nerr.Unwrap())
	default:
		return err.Error()
	}
}
