package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"panel-cli/internal/api"
	"panel-cli/internal/model"
)

// The round-trip tests drive the server through the same api.Client the
// panel core uses, so the envelope contract is checked from both sides.

func testServer(t *testing.T) *api.Client {
	t.Helper()
	storage, err := OpenStorage(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	cfg := Config{
		AdminPassword:    "hunter22",
		MaxLoginAttempts: 5,
		LockoutDuration:  5 * time.Minute,
		SessionTTL:       time.Hour,
	}
	srv, err := New(cfg, storage, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL)
}

func login(t *testing.T, c *api.Client) {
	t.Helper()
	if err := c.Login(context.Background(), "hunter22"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRoundTrip_AuthGatesMutations(t *testing.T) {
	c := testServer(t)

	fields := model.CardFields{Name: "Grafana", Icon: "bi-graph-up", URL: "https://g.example.com"}
	_, err := c.CreateCard(context.Background(), fields)
	var se *api.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected rejection for anonymous create; got %v", err)
	}

	authed, err := c.AuthStatus(context.Background())
	if err != nil || authed {
		t.Fatalf("expected anonymous status; got %v authed=%v", err, authed)
	}

	login(t, c)
	authed, err = c.AuthStatus(context.Background())
	if err != nil || !authed {
		t.Fatalf("expected authenticated status; got %v authed=%v", err, authed)
	}
	if _, err := c.CreateCard(context.Background(), fields); err != nil {
		t.Fatalf("authenticated create: %v", err)
	}
}

func TestRoundTrip_WrongPasswordDetails(t *testing.T) {
	c := testServer(t)
	err := c.Login(context.Background(), "nope")
	var ae *api.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError; got %v", err)
	}
	if ae.AttemptsLeft != 4 || ae.Locked {
		t.Fatalf("expected 4 attempts left; got %+v", ae)
	}
}

func TestRoundTrip_CardLifecycle(t *testing.T) {
	c := testServer(t)
	login(t, c)
	ctx := context.Background()

	created, err := c.CreateCard(ctx, model.CardFields{
		Name: "Grafana", Icon: "bi-graph-up", URL: "https://g.example.com", Description: "dashboards",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Order != 1 {
		t.Fatalf("unexpected created card: %+v", created)
	}

	second, err := c.CreateCard(ctx, model.CardFields{
		Name: "Jellyfin", Icon: "bi-film", URL: "https://tv.example.com",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Duplicate names are rejected with the server's message.
	_, err = c.CreateCard(ctx, model.CardFields{
		Name: "grafana", Icon: "bi-server", URL: "https://g2.example.com",
	})
	var se *api.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected duplicate-name rejection; got %v", err)
	}

	updated, err := c.UpdateCard(ctx, created.ID, model.CardFields{
		Name: "Grafana", Icon: "bi-speedometer", URL: "https://g.example.com", Description: "metrics",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Icon != "bi-speedometer" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := c.ReorderCards(ctx, []model.OrderEntry{
		{ID: second.ID, Order: 1}, {ID: created.ID, Order: 2},
	}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	cards, err := c.ListCards(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 2 || cards[0].ID != second.ID || cards[1].Order != 2 {
		t.Fatalf("unexpected order after reorder: %+v", cards)
	}

	if err := c.DeleteCard(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cards, err = c.ListCards(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 1 || cards[0].Order != 1 {
		t.Fatalf("expected re-packed single card; got %+v", cards)
	}
}

func TestRoundTrip_SearchAndIcons(t *testing.T) {
	c := testServer(t)
	login(t, c)
	ctx := context.Background()

	for _, f := range []model.CardFields{
		{Name: "Grafana", Icon: "bi-graph-up", URL: "https://g.example.com", Description: "dashboards"},
		{Name: "Gitea", Icon: "bi-git", URL: "https://git.example.com", Description: "code hosting"},
	} {
		if _, err := c.CreateCard(ctx, f); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	cards, err := c.ListCards(ctx, "dash")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "Grafana" {
		t.Fatalf("unexpected search result: %+v", cards)
	}

	catalog, err := c.Icons(ctx)
	if err != nil {
		t.Fatalf("icons: %v", err)
	}
	if len(catalog) == 0 || len(catalog["general"]) == 0 {
		t.Fatalf("expected embedded catalog; got %v", catalog)
	}
}

func TestValidation_ServerSide(t *testing.T) {
	c := testServer(t)
	login(t, c)

	_, err := c.CreateCard(context.Background(), model.CardFields{
		Name: "NoURL", Icon: "bi-server", URL: "not a url",
	})
	var se *api.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected validation rejection; got %v", err)
	}
}

func TestFilterIcons(t *testing.T) {
	catalog := Icons()

	byCat := FilterIcons(catalog, "security", "")
	if len(byCat) != 1 || len(byCat["security"]) != len(catalog["security"]) {
		t.Fatalf("unexpected category filter: %v", byCat)
	}

	bySearch := FilterIcons(catalog, "", "graph")
	if len(bySearch["monitoring"]) != 2 {
		t.Fatalf("expected bi-graph-up and bi-graph-down; got %v", bySearch)
	}
	for cat, entries := range bySearch {
		if len(entries) == 0 {
			t.Fatalf("empty category %q must be omitted", cat)
		}
	}
}
