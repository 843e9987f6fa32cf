package panel

import (
	"context"
	"time"
)

// Controller owns the application state that the original design kept in
// a global session object: the auth flag, the current list, the pending
// action, and the transient icon selection. Subcomponents receive their
// collaborators explicitly; presentation layers talk to the controller's
// named operations and never reach into each other.
type Controller struct {
	Gate    *AuthGate
	Store   *CardStore
	Icons   *IconPicker
	Search  *SearchController
	Reorder *ReorderController
}

// Option tweaks controller construction.
type Option func(*options)

type options struct {
	searchDebounce time.Duration
	searchReload   func(query string)
}

// WithSearchDebounce overrides the 300ms quiet period (tests).
func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) { o.searchDebounce = d }
}

// WithSearchReload installs the sink that debounced searches feed. The
// default performs a blocking Store.Reload; event-loop frontends install
// a sink that posts back onto their loop instead.
func WithSearchReload(fn func(query string)) Option {
	return func(o *options) { o.searchReload = fn }
}

func NewController(svc Service, opts ...Option) *Controller {
	o := options{searchDebounce: DefaultSearchDebounce}
	for _, opt := range opts {
		opt(&o)
	}

	gate := NewAuthGate(svc)
	store := NewCardStore(svc, gate)

	c := &Controller{
		Gate:    gate,
		Store:   store,
		Icons:   NewIconPicker(svc),
		Reorder: NewReorderController(store, svc, gate),
	}

	reload := o.searchReload
	if reload == nil {
		reload = func(query string) {
			_, _ = store.Reload(context.Background(), query)
		}
	}
	c.Search = NewSearchController(o.searchDebounce, reload)
	return c
}

// ResumeVisibility reconciles with the server after the UI was hidden:
// the auth flag is re-derived and the list reloaded with the last active
// query. Either call may fail independently; the first error wins.
func (c *Controller) ResumeVisibility(ctx context.Context) error {
	_, authErr := c.Gate.Refresh(ctx)
	_, loadErr := c.Store.Reload(ctx, c.Store.Query())
	if authErr != nil {
		return authErr
	}
	return loadErr
}
