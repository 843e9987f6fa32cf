// Package panel is the client-side state layer for the dashboard: an
// in-memory card collection kept consistent with the remote store across
// search filtering, reordering, auth-gated mutation, and icon selection.
// The presentation layers (TUI, CLI) call into this package and never the
// reverse.
package panel

import (
	"context"
	"errors"

	"panel-cli/internal/model"
)

// Service is the remote panel API the core synchronizes against.
// Implemented by *api.Client; tests substitute a fake.
type Service interface {
	AuthStatus(ctx context.Context) (bool, error)
	Login(ctx context.Context, password string) error
	ListCards(ctx context.Context, search string) ([]model.Card, error)
	CreateCard(ctx context.Context, fields model.CardFields) (model.Card, error)
	UpdateCard(ctx context.Context, id string, fields model.CardFields) (model.Card, error)
	DeleteCard(ctx context.Context, id string) error
	ReorderCards(ctx context.Context, orders []model.OrderEntry) error
	Icons(ctx context.Context) (model.IconCatalog, error)
}

// ErrAuthRequired is returned by mutating operations when the session is
// not authenticated. No network I/O has happened; the intended action is
// parked on the AuthGate until a login completes.
var ErrAuthRequired = errors.New("authentication required")

// ErrStaleReload marks a reload whose response arrived after a newer
// reload had already been issued. Its result was discarded.
var ErrStaleReload = errors.New("stale reload discarded")

// ErrNotFound is returned for id lookups that no longer resolve against
// the current list (e.g. the list reloaded underneath an open edit form).
var ErrNotFound = errors.New("card not found")

// ReloadFailedError reports a mutation the server accepted whose
// follow-up reload failed: the change is durable remotely but the local
// list no longer reflects it. Callers must tell the user rather than
// pretend the list is current.
type ReloadFailedError struct {
	Err error
}

func (e *ReloadFailedError) Error() string {
	return "saved, but reloading the list failed: " + e.Err.Error()
}

func (e *ReloadFailedError) Unwrap() error { return e.Err }
