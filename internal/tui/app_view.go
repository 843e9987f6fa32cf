package tui

import (
	"fmt"
	"strings"

	"panel-cli/internal/panel"

	"github.com/charmbracelet/lipgloss"
)

// cardInnerW is the content width of one grid card.
const cardInnerW = 24

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	if m.modal != modalNone {
		return m.placeCentered(width, height, m.renderModal())
	}

	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	bodyH := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}
	body := m.renderCards(width, bodyH)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) placeCentered(width, height int, s string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}

func (m appModel) renderHeader(width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Panel")

	badge := styleMuted().Render("locked")
	if m.ctrl.Gate.IsAuthenticated() {
		badge = lipgloss.NewStyle().Foreground(colorOK).Render("unlocked")
	}

	mode := styleMuted().Render(string(m.mode))

	var search string
	switch {
	case m.searching:
		search = m.searchInput.View()
	case m.ctrl.Store.Query() != "":
		search = styleMuted().Render("/" + m.ctrl.Store.Query())
	}

	var load string
	if m.loading {
		load = m.spin.View()
	}

	left := title + "  " + mode + "  " + badge
	if load != "" {
		left += "  " + load
	}
	line := left
	if search != "" {
		line += "  " + search
	}
	return truncateLine(line, width) + "\n"
}

func (m appModel) renderFooter(width int) string {
	if m.flash != "" {
		st := lipgloss.NewStyle().Foreground(colorOK)
		if m.flashErr {
			st = styleError()
		}
		return truncateLine(st.Render(m.flash), width)
	}

	help := "/: search   a: add   e: edit   d: delete   [ ]: move   v: view   r: reload   l: login   q: quit"
	if m.mode == panel.ViewList {
		help = "/: search   a: add   e: edit   d: delete   v: view   r: reload   l: login   q: quit"
	}
	if m.searching {
		help = "enter: keep filter   esc: clear"
	}
	return truncateLine(styleMuted().Render(help), width)
}

func (m appModel) renderCards(width, height int) string {
	proj := panel.Project(m.cards, m.ctrl.Store.Query(), m.mode)

	switch proj.Empty {
	case panel.EmptyNoCards:
		return m.placeCentered(width, height,
			styleMuted().Render("No cards yet. Press a to add one."))
	case panel.EmptyNoMatches:
		return m.placeCentered(width, height,
			styleMuted().Render(fmt.Sprintf("No cards match %q.", m.ctrl.Store.Query())))
	}

	if proj.Mode == panel.ViewList {
		return m.renderList(proj, width)
	}
	return m.renderGrid(proj, width)
}

func (m appModel) renderList(proj panel.Projection, width int) string {
	rowW := width - 2
	if rowW < 20 {
		rowW = 20
	}

	var b strings.Builder
	for i, cv := range proj.Cards {
		base := lipgloss.NewStyle()
		meta := styleMuted()
		prefix := "  "
		if i == m.selIdx {
			base = base.Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
			prefix = "> "
		}

		name := renderSegments(cv.Name, base)
		line := prefix + name + "  " + meta.Render(cv.Card.URL)
		b.WriteString(truncateLine(line, rowW))
		b.WriteString("\n")

		if cv.Card.Description != "" {
			desc := "    " + renderSegments(cv.Desc, styleMuted())
			b.WriteString(truncateLine(desc, rowW))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) renderGrid(proj panel.Projection, width int) string {
	cols := m.gridColumns()

	boxes := make([]string, 0, len(proj.Cards))
	for i, cv := range proj.Cards {
		boxes = append(boxes, m.renderCardBox(cv, i == m.selIdx))
	}

	var rows []string
	for start := 0; start < len(boxes); start += cols {
		end := start + cols
		if end > len(boxes) {
			end = len(boxes)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes[start:end]...))
	}
	return strings.Join(rows, "\n")
}

func (m appModel) gridColumns() int {
	width := m.width
	if width <= 0 {
		width = 80
	}
	// Border and padding add 4 columns per card.
	cols := width / (cardInnerW + 4)
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (m appModel) renderCardBox(cv panel.CardView, selected bool) string {
	border := lipgloss.RoundedBorder()
	st := lipgloss.NewStyle().
		Border(border).
		BorderForeground(colorCardBorder).
		Padding(0, 1).
		Width(cardInnerW)
	if selected {
		st = st.BorderForeground(colorSelectedBorder)
	}

	name := truncateLine(renderSegments(cv.Name, lipgloss.NewStyle().Bold(true)), cardInnerW)
	meta := truncateLine(
		lipgloss.NewStyle().Foreground(colorCardMetaFg).Render(cv.Card.Icon+"  "+cv.Card.URL),
		cardInnerW)

	lines := []string{name, meta}
	if cv.Card.Description != "" {
		lines = append(lines, truncateLine(renderSegments(cv.Desc, styleMuted()), cardInnerW))
	}
	return st.Render(strings.Join(lines, "\n"))
}

// renderSegments styles a highlight-segmented string: matched runs get the
// match emphasis on top of the base style.
func renderSegments(segs []panel.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match {
			b.WriteString(styleMatch().Render(s.Text))
		} else {
			b.WriteString(base.Render(s.Text))
		}
	}
	return b.String()
}

func (m appModel) renderModal() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	switch m.modal {
	case modalAuth:
		return m.renderAuthModal(width)
	case modalCardForm:
		return m.renderCardFormModal(width)
	case modalIconPicker:
		return m.renderIconPickerModal(width)
	case modalConfirmDelete:
		return m.renderDeleteConfirm(width)
	}
	return ""
}

func (m appModel) renderAuthModal(width int) string {
	bodyW := modalBodyWidth(width)

	var parts []string
	if pending, ok := m.ctrl.Gate.Pending(); ok {
		what := "add a card"
		if pending.Kind == panel.ActionEditCard {
			what = "edit cards"
		}
		parts = append(parts, styleMuted().Render("Log in to "+what+"."), "")
	}
	parts = append(parts, renderInputLine(bodyW, m.passInput.View()))
	if m.authErr != "" {
		parts = append(parts, "", styleError().Width(bodyW).Render(m.authErr))
	}
	parts = append(parts, "", styleMuted().Render("enter: log in   esc/ctrl+g: cancel"))

	return renderModalBox(width, "Log in", strings.Join(parts, "\n"))
}

func (m appModel) renderCardFormModal(width int) string {
	bodyW := modalBodyWidth(width)
	title := "New card"
	if m.modalForID != "" {
		title = "Edit card"
	}

	labels := [formFieldCount]string{"Name", "Icon", "URL", "Description"}
	labelSt := styleMuted()
	focusSt := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	var parts []string
	for i := 0; i < formFieldCount; i++ {
		lb := labelSt.Render(labels[i])
		if i == m.formFocus {
			lb = focusSt.Render(labels[i])
		}
		parts = append(parts, lb)
		if i == formFieldIcon {
			v := m.formInputs[formFieldIcon].Value()
			if v == "" {
				v = "(none)"
			}
			parts = append(parts, renderInputLine(bodyW, v+"   "+styleMuted().Render("ctrl+o: pick")))
		} else {
			parts = append(parts, renderInputLine(bodyW, m.formInputs[i].View()))
		}
	}
	if m.formErr != "" {
		parts = append(parts, "", styleError().Width(bodyW).Render(m.formErr))
	}
	parts = append(parts, "", styleMuted().Render("tab: next field   enter: save   esc/ctrl+g: cancel"))

	return renderModalBox(width, title, strings.Join(parts, "\n"))
}

func (m appModel) renderIconPickerModal(width int) string {
	bodyW := modalBodyWidth(width)

	var tabs []string
	for i, c := range m.iconCats {
		st := styleMuted()
		if i == m.iconCatIdx {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		tabs = append(tabs, st.Render(c))
	}

	var parts []string
	parts = append(parts, truncateLine(strings.Join(tabs, "  "), bodyW))
	parts = append(parts, renderInputLine(bodyW, m.iconQuery.View()))
	parts = append(parts, "")

	if len(m.iconRows) == 0 {
		parts = append(parts, styleMuted().Render("no icons match"))
	} else {
		// Window the rows around the selection.
		const visible = 8
		start := m.iconSel - visible/2
		if start > len(m.iconRows)-visible {
			start = len(m.iconRows) - visible
		}
		if start < 0 {
			start = 0
		}
		end := start + visible
		if end > len(m.iconRows) {
			end = len(m.iconRows)
		}
		for i := start; i < end; i++ {
			r := m.iconRows[i]
			line := fmt.Sprintf("%-18s %s", r.entry.Name, r.entry.Description)
			if i == m.iconSel {
				line = lipgloss.NewStyle().
					Background(colorSelectedBg).
					Foreground(colorSelectedFg).
					Render(truncateLine("> "+line, bodyW-2))
			} else {
				line = "  " + truncateLine(line, bodyW-2)
			}
			parts = append(parts, line)
		}
	}
	parts = append(parts, "", styleMuted().Render("←/→: category   ↑/↓: move   enter: pick   esc: back"))

	return renderModalBox(width, "Pick icon", strings.Join(parts, "\n"))
}

func (m appModel) renderDeleteConfirm(width int) string {
	name := m.modalForID
	if card, err := m.ctrl.Store.Get(m.modalForID); err == nil {
		name = card.Name
	}
	body := fmt.Sprintf("Delete %q? This cannot be undone.", name)
	help := styleMuted().Render("y/enter: delete   n/esc: keep")
	return renderModalBox(width, "Delete card", body+"\n\n"+help)
}
