package panel

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func reorderFixture(t *testing.T) (*fakeService, *CardStore, *ReorderController) {
	t.Helper()
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2), card("c3", "Gitea", 3))
	store, gate := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return svc, store, NewReorderController(store, svc, gate)
}

func TestReorder_AssignsDenseOrderFromSequence(t *testing.T) {
	svc, store, rc := reorderFixture(t)

	if err := rc.OnDropComplete(context.Background(), []string{"c3", "c1", "c2"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	want := map[string]int{"c3": 1, "c1": 2, "c2": 3}
	for _, o := range svc.lastReorder {
		if want[o.ID] != o.Order {
			t.Fatalf("expected order %d for %s; got %d", want[o.ID], o.ID, o.Order)
		}
	}

	// The in-memory list reflects the drop.
	cards := store.Cards()
	if cards[0].ID != "c3" || cards[0].Order != 1 || cards[2].ID != "c2" || cards[2].Order != 3 {
		t.Fatalf("optimistic order not applied: %+v", cards)
	}
}

func TestReorder_IdenticalSequenceIsNoOp(t *testing.T) {
	svc, _, rc := reorderFixture(t)

	if err := rc.OnDropComplete(context.Background(), []string{"c1", "c2", "c3"}); err != nil {
		t.Fatalf("no-op reorder: %v", err)
	}
	if _, _, _, _, reorder := svc.counts(); reorder != 0 {
		t.Fatalf("identical sequence must not hit the network; reorder calls = %d", reorder)
	}
}

func TestReorder_RejectionRestoresViaReload(t *testing.T) {
	svc, store, rc := reorderFixture(t)

	svc.mu.Lock()
	svc.reorderErr = fmt.Errorf("store unavailable")
	svc.mu.Unlock()
	listBefore, _, _, _, _ := svc.counts()

	err := rc.OnDropComplete(context.Background(), []string{"c3", "c1", "c2"})
	if err == nil {
		t.Fatalf("expected reorder failure")
	}

	// Compensation is a full reload of the last active query, not a manual
	// per-item undo.
	listAfter, _, _, _, _ := svc.counts()
	if listAfter != listBefore+1 {
		t.Fatalf("expected one compensating reload; list calls went %d -> %d", listBefore, listAfter)
	}
	cards := store.Cards()
	if cards[0].ID != "c1" || cards[1].ID != "c2" || cards[2].ID != "c3" {
		t.Fatalf("expected authoritative pre-drag order restored; got %+v", cards)
	}
}

func TestReorder_RejectionReloadsLastActiveQuery(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Gitea", 2))
	store, gate := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), "g"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	rc := NewReorderController(store, svc, gate)

	svc.mu.Lock()
	svc.reorderErr = fmt.Errorf("rejected")
	svc.mu.Unlock()
	if err := rc.OnDropComplete(context.Background(), []string{"c2", "c1"}); err == nil {
		t.Fatalf("expected reorder failure")
	}

	svc.mu.Lock()
	last := svc.lastListQuery
	svc.mu.Unlock()
	if last != "g" {
		t.Fatalf("compensating reload must use the last active query; got %q", last)
	}
}

func TestReorder_RequiresAuthentication(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1))
	gate := NewAuthGate(svc)
	store := NewCardStore(svc, gate)
	rc := NewReorderController(store, svc, gate)

	err := rc.OnDropComplete(context.Background(), []string{"c1"})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired; got %v", err)
	}
	if _, _, _, _, reorder := svc.counts(); reorder != 0 {
		t.Fatalf("unauthenticated reorder must not hit the network")
	}
}
