package panel

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period after the last keystroke
// before a reload fires.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchController debounces free-text query input. At most one reload
// fires per quiet window regardless of keystroke rate, and the most
// recent query always wins; superseded keystrokes cancel the pending
// timer outright.
type SearchController struct {
	debounce time.Duration
	reload   func(query string)

	mu    sync.Mutex
	timer *time.Timer
	query string
}

func NewSearchController(debounce time.Duration, reload func(query string)) *SearchController {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &SearchController{debounce: debounce, reload: reload}
}

// OnInput records the latest query and (re)arms the debounce timer.
func (s *SearchController) OnInput(query string) {
	s.mu.Lock()
	s.query = query
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.fire)
		s.mu.Unlock()
		return
	}
	s.timer.Reset(s.debounce)
	s.mu.Unlock()
}

// OnClear cancels any pending timer and reloads the unfiltered list
// immediately, with no debounce.
func (s *SearchController) OnClear() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.query = ""
	s.mu.Unlock()
	s.reload("")
}

// Stop cancels any pending reload without firing it.
func (s *SearchController) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *SearchController) fire() {
	s.mu.Lock()
	query := s.query
	s.mu.Unlock()
	s.reload(query)
}
