package panel

import (
	"context"
	"errors"
	"sync"

	"panel-cli/internal/model"
)

// CardStore owns the authoritative in-memory card list. Mutations are
// validated locally, gated on authentication, committed only after server
// acknowledgment, and followed by a reload of the current query so the
// list reflects authoritative order and server-side normalization.
//
// Completions may race (a debounced reload against a create's follow-up
// reload); each reload carries a sequence number and results older than
// the latest issued are discarded.
type CardStore struct {
	svc  Service
	gate *AuthGate

	mu        sync.Mutex
	cards     []model.Card
	query     string
	reloadSeq uint64
}

func NewCardStore(svc Service, gate *AuthGate) *CardStore {
	return &CardStore{svc: svc, gate: gate}
}

// Cards returns a snapshot of the current list. Callers must not mutate
// the store through it.
func (s *CardStore) Cards() []model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Query returns the query of the most recently issued reload.
func (s *CardStore) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Get resolves a card id against the current list. Ids are looked up at
// use time, never cached as object copies, so an open edit form survives
// a reload underneath it (or learns the card is gone).
func (s *CardStore) Get(id string) (model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Card{}, ErrNotFound
}

// Reload replaces the list wholesale with the server result for query
// (empty = unfiltered). A failed reload clears the list rather than
// retaining stale data. A response that arrives after a newer reload was
// issued is dropped with ErrStaleReload.
func (s *CardStore) Reload(ctx context.Context, query string) ([]model.Card, error) {
	s.mu.Lock()
	s.reloadSeq++
	seq := s.reloadSeq
	s.query = query
	s.mu.Unlock()

	items, err := s.svc.ListCards(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.reloadSeq {
		return nil, ErrStaleReload
	}
	if err != nil {
		s.cards = nil
		return nil, err
	}
	s.cards = items
	out := make([]model.Card, len(items))
	copy(out, items)
	return out, nil
}

// Create validates fields, then persists a new card and reloads the
// current query. Unauthenticated calls return ErrAuthRequired before any
// network I/O, with the add intent parked on the gate.
func (s *CardStore) Create(ctx context.Context, fields model.CardFields) (model.Card, error) {
	if !s.gate.RequireAuth(PendingAction{Kind: ActionAddCard}) {
		return model.Card{}, ErrAuthRequired
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return model.Card{}, err
	}
	card, err := s.svc.CreateCard(ctx, fields)
	if err != nil {
		return model.Card{}, err
	}
	return card, s.reloadAfterMutation(ctx)
}

// Update validates fields, then persists them for id and reloads the
// current query. On server rejection the list is left untouched.
func (s *CardStore) Update(ctx context.Context, id string, fields model.CardFields) (model.Card, error) {
	if !s.gate.RequireAuth(PendingAction{Kind: ActionEditCard, CardID: id}) {
		return model.Card{}, ErrAuthRequired
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return model.Card{}, err
	}
	card, err := s.svc.UpdateCard(ctx, id, fields)
	if err != nil {
		return model.Card{}, err
	}
	return card, s.reloadAfterMutation(ctx)
}

// Delete removes a card after server acknowledgment, then reloads. On
// failure the list is untouched. Deletion happens from the edit form, so
// an unauthenticated call parks an edit intent for the same card.
func (s *CardStore) Delete(ctx context.Context, id string) error {
	if !s.gate.RequireAuth(PendingAction{Kind: ActionEditCard, CardID: id}) {
		return ErrAuthRequired
	}
	if err := s.svc.DeleteCard(ctx, id); err != nil {
		return err
	}
	return s.reloadAfterMutation(ctx)
}

// reloadAfterMutation refreshes the list with the active query once the
// server accepted a change. A lost race against a newer reload is fine;
// any other failure is surfaced as ReloadFailedError because the list no
// longer shows the accepted change.
func (s *CardStore) reloadAfterMutation(ctx context.Context) error {
	if _, err := s.Reload(ctx, s.Query()); err != nil && !errors.Is(err, ErrStaleReload) {
		return &ReloadFailedError{Err: err}
	}
	return nil
}

// currentIDs returns the ids of the list in displayed order.
func (s *CardStore) currentIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.cards))
	for i, c := range s.cards {
		ids[i] = c.ID
	}
	return ids
}

// applyOrder rearranges the in-memory list to match ids and assigns dense
// 1-based order values. Unknown ids are ignored; cards missing from ids
// keep their relative order at the tail. Used for the optimistic half of
// a reorder; the server remains the durable owner.
func (s *CardStore) applyOrder(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]model.Card, len(s.cards))
	for _, c := range s.cards {
		byID[c.ID] = c
	}

	next := make([]model.Card, 0, len(s.cards))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			next = append(next, c)
			seen[id] = true
		}
	}
	for _, c := range s.cards {
		if !seen[c.ID] {
			next = append(next, c)
		}
	}
	for i := range next {
		next[i].Order = i + 1
	}
	s.cards = next
}
