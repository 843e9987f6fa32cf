package tui

import (
	"sync/atomic"

	"panel-cli/internal/panel"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive panel over the given service. It blocks until
// the user quits.
func Run(svc panel.Service, startMode panel.ViewMode) error {
	applyColorProfilePreference()
	applyThemePreference()

	// Debounced searches fire on a timer goroutine; post them back onto
	// the event loop instead of reloading from the timer. The program is
	// constructed after the controller, so the sink reads it through an
	// atomic pointer.
	var p atomic.Pointer[tea.Program]
	ctrl := panel.NewController(svc, panel.WithSearchReload(searchSink(&p)))

	m := newAppModel(ctrl, startMode)
	p.Store(tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus()))
	_, err := p.Load().Run()
	ctrl.Search.Stop()
	return err
}

// searchSink posts committed queries back onto the event loop. It can fire
// from a timer goroutine before the program exists; those fires are dropped.
func searchSink(p *atomic.Pointer[tea.Program]) func(string) {
	return func(query string) {
		if prog := p.Load(); prog != nil {
			prog.Send(searchCommitMsg{query: query})
		}
	}
}
