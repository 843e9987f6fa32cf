package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// modalBodyWidth is the usable content width inside a modal box for a
// given terminal width.
func modalBodyWidth(width int) int {
	w := width - 10
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

// renderModalBox draws a titled box on the elevated surface background.
// Borders are avoided: some terminals show background artifacts when
// nesting bordered components inside a region with a background color.
func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Width(bodyW).
		Padding(0, 1).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Render(truncateLine(title, bodyW-2))

	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(1, 1).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// renderInputLine renders a text input as exactly one visual line inside a
// modal. If the input view ever contains newlines (or overflows due to
// ANSI/cursor styling), it can trigger wrapping that looks like "newline
// insertion" while typing.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Never exceed the modal body width; terminate ANSI styling to
		// prevent bleed into the surrounding surface.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// truncateLine cuts s to at most width columns (ANSI-aware), appending an
// ellipsis when something was dropped.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}
