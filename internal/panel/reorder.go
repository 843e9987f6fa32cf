package panel

import (
	"context"

	"panel-cli/internal/model"
)

// ReorderController captures a drop-completed card sequence, applies it
// optimistically, and persists the full order map in one batched call.
// On rejection it discards the optimistic order and reloads the last
// active query, restoring the authoritative order instead of undoing
// per item.
type ReorderController struct {
	store *CardStore
	svc   Service
	gate  *AuthGate
}

func NewReorderController(store *CardStore, svc Service, gate *AuthGate) *ReorderController {
	return &ReorderController{store: store, svc: svc, gate: gate}
}

// OnDropComplete commits the new id sequence. A sequence identical to the
// current order is a no-op. Reorder is only offered in the authenticated
// grid view; a call that slips through unauthenticated is refused without
// network I/O.
func (r *ReorderController) OnDropComplete(ctx context.Context, ids []string) error {
	if !r.gate.IsAuthenticated() {
		return ErrAuthRequired
	}
	if sameSequence(ids, r.store.currentIDs()) {
		return nil
	}

	orders := make([]model.OrderEntry, len(ids))
	for i, id := range ids {
		orders[i] = model.OrderEntry{ID: id, Order: i + 1}
	}

	// Reflect the drop immediately so the UI doesn't snap back during the
	// round trip.
	r.store.applyOrder(ids)

	if err := r.svc.ReorderCards(ctx, orders); err != nil {
		// Compensate by reloading the authoritative order.
		_, _ = r.store.Reload(ctx, r.store.Query())
		return err
	}
	return nil
}

func sameSequence(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
