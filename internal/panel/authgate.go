package panel

import (
	"context"
	"sync"
)

// ActionKind names a deferrable mutating intent.
type ActionKind string

const (
	ActionAddCard  ActionKind = "add_card"
	ActionEditCard ActionKind = "edit_card"
)

// PendingAction is a mutating intent parked across a login round-trip.
// At most one exists at a time; a newer deferral overwrites it.
type PendingAction struct {
	Kind   ActionKind
	CardID string
}

// AuthGate tracks authentication state and gates mutating entry points.
type AuthGate struct {
	svc Service

	mu            sync.Mutex
	authenticated bool
	pending       *PendingAction
	resume        func(PendingAction)
}

func NewAuthGate(svc Service) *AuthGate {
	return &AuthGate{svc: svc}
}

// SetResume installs the hook that re-enters the original call path once a
// deferred action's login succeeds (add_card reopens the create form,
// edit_card reopens the edit form for the stored id).
func (g *AuthGate) SetResume(fn func(PendingAction)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resume = fn
}

func (g *AuthGate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// RequireAuth returns true when the caller may proceed immediately.
// Otherwise the action becomes the sole pending action (overwriting any
// previous one) and the caller must abort, expecting a login flow next.
func (g *AuthGate) RequireAuth(action PendingAction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authenticated {
		return true
	}
	g.pending = &action
	return false
}

// Pending reports the currently parked action, if any.
func (g *AuthGate) Pending() (PendingAction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return PendingAction{}, false
	}
	return *g.pending, true
}

// Login performs the credential round-trip. On success the session is
// marked authenticated and any pending action is re-invoked exactly once,
// then cleared. On failure the pending action is kept so a later
// successful login still completes it; the error is retryable.
func (g *AuthGate) Login(ctx context.Context, password string) error {
	if err := g.svc.Login(ctx, password); err != nil {
		return err
	}

	g.mu.Lock()
	g.authenticated = true
	pending := g.pending
	g.pending = nil
	resume := g.resume
	g.mu.Unlock()

	if pending != nil && resume != nil {
		resume(*pending)
	}
	return nil
}

// Refresh re-derives the auth flag from the server. Called on visibility
// resume: a session may have expired server-side while the tab was hidden.
// A failed status check demotes to unauthenticated rather than trusting
// the stale flag.
func (g *AuthGate) Refresh(ctx context.Context) (bool, error) {
	authed, err := g.svc.AuthStatus(ctx)
	g.mu.Lock()
	if err != nil {
		g.authenticated = false
	} else {
		g.authenticated = authed
	}
	current := g.authenticated
	g.mu.Unlock()
	return current, err
}
