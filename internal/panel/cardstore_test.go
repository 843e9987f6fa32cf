package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"panel-cli/internal/model"
)

func authedStore(t *testing.T, svc *fakeService) (*CardStore, *AuthGate) {
	t.Helper()
	gate := NewAuthGate(svc)
	if err := gate.Login(context.Background(), "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewCardStore(svc, gate), gate
}

func TestReload_ReplacesListWholesale(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2))
	store, _ := authedStore(t, svc)

	cards, err := store.Reload(context.Background(), "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards; got %d", len(cards))
	}

	cards, err = store.Reload(context.Background(), "graf")
	if err != nil {
		t.Fatalf("filtered reload: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "c1" {
		t.Fatalf("expected only c1; got %+v", cards)
	}
	if store.Query() != "graf" {
		t.Fatalf("expected query to stick; got %q", store.Query())
	}
}

func TestReload_FailureClearsList(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1))
	store, _ := authedStore(t, svc)

	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	svc.mu.Lock()
	svc.listErr = fmt.Errorf("boom")
	svc.mu.Unlock()

	if _, err := store.Reload(context.Background(), ""); err == nil {
		t.Fatalf("expected reload failure")
	}
	if got := store.Cards(); len(got) != 0 {
		t.Fatalf("failed reload must clear the list, not keep stale data; got %+v", got)
	}
}

func TestReload_StaleResponseDiscarded(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2))
	store, _ := authedStore(t, svc)

	hold := make(chan struct{})
	staleInFlight := make(chan struct{})
	staleDone := make(chan error, 1)
	svc.mu.Lock()
	svc.onList = func(search string) {
		if search == "stale" {
			close(staleInFlight)
			<-hold
		}
	}
	svc.mu.Unlock()

	go func() {
		_, err := store.Reload(context.Background(), "stale")
		staleDone <- err
	}()

	// The newer reload is issued while the stale one is still in flight
	// and completes first.
	<-staleInFlight
	if _, err := store.Reload(context.Background(), "jelly"); err != nil {
		t.Fatalf("newer reload: %v", err)
	}
	close(hold)

	if err := <-staleDone; !errors.Is(err, ErrStaleReload) {
		t.Fatalf("expected ErrStaleReload; got %v", err)
	}
	got := store.Cards()
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("stale response must not overwrite newer state; got %+v", got)
	}
}

func TestCreate_ThenReloadIncludesExactlyOneNewCard(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	fields := model.CardFields{Name: "Jellyfin", Icon: "bi-film", URL: "https://tv.example.com", Description: "movies"}
	created, err := store.Create(context.Background(), fields)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.ID == "c1" {
		t.Fatalf("expected a fresh unique id; got %q", created.ID)
	}

	cards, err := store.Reload(context.Background(), "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	var matches int
	for _, c := range cards {
		if c.ID == created.ID {
			matches++
			if c.Name != "Jellyfin" || c.Icon != "bi-film" || c.URL != "https://tv.example.com" || c.Description != "movies" {
				t.Fatalf("created card fields mangled: %+v", c)
			}
		}
	}
	if matches != 1 {
		t.Fatalf("expected exactly one new card; found %d", matches)
	}
}

func TestCreate_ReloadFailureIsSurfaced(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// The server accepts the create but the follow-up list fetch fails.
	// The caller must hear about it instead of getting a nil error over a
	// cleared list.
	svc.mu.Lock()
	svc.listErr = fmt.Errorf("boom")
	svc.mu.Unlock()

	fields := model.CardFields{Name: "Jellyfin", Icon: "bi-film", URL: "https://tv.example.com"}
	created, err := store.Create(context.Background(), fields)
	var rerr *ReloadFailedError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ReloadFailedError; got %v", err)
	}
	if created.ID == "" {
		t.Fatalf("create was accepted; expected the created card back")
	}
	if _, create, _, _, _ := svc.counts(); create != 1 {
		t.Fatalf("expected the create to reach the server; calls = %d", create)
	}
	if got := store.Cards(); len(got) != 0 {
		t.Fatalf("failed reload must clear the list, not keep stale data; got %+v", got)
	}
}

func TestDelete_ReloadFailureIsSurfaced(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	svc.mu.Lock()
	svc.listErr = fmt.Errorf("boom")
	svc.mu.Unlock()

	var rerr *ReloadFailedError
	if err := store.Delete(context.Background(), "c1"); !errors.As(err, &rerr) {
		t.Fatalf("expected ReloadFailedError; got %v", err)
	}
	if _, _, _, del, _ := svc.counts(); del != 1 {
		t.Fatalf("expected the delete to reach the server; calls = %d", del)
	}
}

func TestCreate_ValidationFailsBeforeNetwork(t *testing.T) {
	svc := newFakeService()
	store, _ := authedStore(t, svc)

	fields := model.CardFields{Name: strings.Repeat("a", 51), Icon: "bi-server", URL: "https://x.example.com"}
	_, err := store.Create(context.Background(), fields)
	var ve model.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected name validation error; got %v", err)
	}
	if _, create, _, _, _ := svc.counts(); create != 0 {
		t.Fatalf("validation failure must not reach the network; create calls = %d", create)
	}
}

func TestCreate_UnauthenticatedDefersWithoutNetwork(t *testing.T) {
	svc := newFakeService()
	gate := NewAuthGate(svc)
	store := NewCardStore(svc, gate)

	fields := model.CardFields{Name: "Grafana", Icon: "bi-graph-up", URL: "https://g.example.com"}
	_, err := store.Create(context.Background(), fields)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired; got %v", err)
	}
	if _, create, _, _, _ := svc.counts(); create != 0 {
		t.Fatalf("gated call must not reach the network; create calls = %d", create)
	}
	pending, ok := gate.Pending()
	if !ok || pending.Kind != ActionAddCard {
		t.Fatalf("expected parked add_card action; got %+v ok=%v", pending, ok)
	}
}

func TestUpdate_RejectionLeavesListUntouched(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}
	before := store.Cards()

	svc.mu.Lock()
	svc.updateErr = fmt.Errorf("name already exists")
	svc.mu.Unlock()

	fields := model.CardFields{Name: "Jellyfin", Icon: "bi-film", URL: "https://tv.example.com"}
	if _, err := store.Update(context.Background(), "c1", fields); err == nil {
		t.Fatalf("expected server rejection")
	}
	after := store.Cards()
	if len(after) != len(before) {
		t.Fatalf("rejected update must leave the list untouched")
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("rejected update mutated the list: %+v != %+v", after[i], before[i])
		}
	}
}

func TestUpdate_UnchangedFieldsKeepOtherOrders(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2), card("c3", "Gitea", 3))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	orig, err := store.Get("c2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	fields := model.CardFields{Name: orig.Name, Icon: orig.Icon, URL: orig.URL, Description: orig.Description}
	if _, err := store.Update(context.Background(), "c2", fields); err != nil {
		t.Fatalf("update: %v", err)
	}

	for i, want := range []struct {
		id    string
		order int
	}{{"c1", 1}, {"c2", 2}, {"c3", 3}} {
		c, err := store.Get(want.id)
		if err != nil {
			t.Fatalf("get %s: %v", want.id, err)
		}
		if c.Order != want.order {
			t.Fatalf("row %d: expected order %d for %s; got %d", i, want.order, want.id, c.Order)
		}
	}
}

func TestDelete_CommitsOnlyAfterAck(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1), card("c2", "Jellyfin", 2))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	svc.mu.Lock()
	svc.deleteErr = fmt.Errorf("store unavailable")
	svc.mu.Unlock()
	if err := store.Delete(context.Background(), "c1"); err == nil {
		t.Fatalf("expected delete failure")
	}
	if len(store.Cards()) != 2 {
		t.Fatalf("failed delete must leave the list untouched")
	}

	svc.mu.Lock()
	svc.deleteErr = nil
	svc.mu.Unlock()
	if err := store.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cards := store.Cards()
	if len(cards) != 1 || cards[0].ID != "c2" || cards[0].Order != 1 {
		t.Fatalf("expected dense re-packed order after delete; got %+v", cards)
	}
}

func TestGet_AfterReloadUnderneath(t *testing.T) {
	svc := newFakeService(card("c1", "Grafana", 1))
	store, _ := authedStore(t, svc)
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// The card disappears server-side and a reload happens under an open
	// edit form; the id lookup must now fail instead of serving a copy.
	svc.mu.Lock()
	svc.cards = nil
	svc.mu.Unlock()
	if _, err := store.Reload(context.Background(), ""); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := store.Get("c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}
}
