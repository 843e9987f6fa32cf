// Package api implements the panel REST contract consumed by the client
// core: auth status/login, card CRUD + reorder, and the icon catalog.
// Every response uses the {success, message?, data?} envelope; transport
// failures and unparsable bodies are reported as NetworkError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"panel-cli/internal/model"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Details *authDetails    `json:"details,omitempty"`
}

type authDetails struct {
	AttemptsLeft *int `json:"attempts_left,omitempty"`
	Locked       bool `json:"locked,omitempty"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a client for the panel API at baseURL. A cookie jar
// holds the session cookie handed out by a successful login.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}
}

// do issues a request and decodes the response envelope. Non-2xx statuses
// with a parsable envelope surface the server's message; everything else
// collapses into a NetworkError with a generic message.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, &NetworkError{Op: op, Err: err}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return envelope{}, &NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return envelope{}, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return envelope{}, &NetworkError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Unparsable body: treat like a transport failure regardless of status.
		return envelope{}, &NetworkError{Op: op, Err: fmt.Errorf("unexpected response (status %d)", resp.StatusCode)}
	}
	return env, nil
}

// AuthStatus reports whether the current session is authenticated.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	env, err := c.do(ctx, "auth status", http.MethodGet, "/api/auth/status", nil, nil)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, &ServerError{Op: "auth status", Message: env.Message}
	}
	var data struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, &NetworkError{Op: "auth status", Err: err}
	}
	return data.Authenticated, nil
}

// Login authenticates with the admin password. Failures come back as
// *AuthError carrying any attempts-left or lockout detail the server sent.
func (c *Client) Login(ctx context.Context, password string) error {
	env, err := c.do(ctx, "login", http.MethodPost, "/api/auth", nil, map[string]string{"password": password})
	if err != nil {
		return err
	}
	if env.Success {
		return nil
	}
	ae := &AuthError{Message: env.Message, AttemptsLeft: -1}
	if env.Details != nil {
		if env.Details.AttemptsLeft != nil {
			ae.AttemptsLeft = *env.Details.AttemptsLeft
		}
		ae.Locked = env.Details.Locked
	}
	return ae
}

// ListCards fetches the card collection, optionally filtered by a search
// query matched against name and description server-side.
func (c *Client) ListCards(ctx context.Context, search string) ([]model.Card, error) {
	var q url.Values
	if strings.TrimSpace(search) != "" {
		q = url.Values{"search": {search}}
	}
	env, err := c.do(ctx, "list cards", http.MethodGet, "/api/cards", q, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &ServerError{Op: "list cards", Message: env.Message}
	}
	var data struct {
		Items []model.Card `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &NetworkError{Op: "list cards", Err: err}
	}
	return data.Items, nil
}

// CreateCard adds a new card and returns the server's copy (with assigned
// id and order).
func (c *Client) CreateCard(ctx context.Context, fields model.CardFields) (model.Card, error) {
	return c.cardMutation(ctx, "create card", http.MethodPost, "/api/cards", fields)
}

// UpdateCard replaces the editable fields of an existing card.
func (c *Client) UpdateCard(ctx context.Context, id string, fields model.CardFields) (model.Card, error) {
	return c.cardMutation(ctx, "update card", http.MethodPut, "/api/cards/"+url.PathEscape(id), fields)
}

func (c *Client) cardMutation(ctx context.Context, op, method, path string, fields model.CardFields) (model.Card, error) {
	env, err := c.do(ctx, op, method, path, nil, fields)
	if err != nil {
		return model.Card{}, err
	}
	if !env.Success {
		return model.Card{}, &ServerError{Op: op, Message: env.Message}
	}
	var card model.Card
	if err := json.Unmarshal(env.Data, &card); err != nil {
		return model.Card{}, &NetworkError{Op: op, Err: err}
	}
	return card, nil
}

// DeleteCard removes a card by id.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	env, err := c.do(ctx, "delete card", http.MethodDelete, "/api/cards/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	if !env.Success {
		return &ServerError{Op: "delete card", Message: env.Message}
	}
	return nil
}

// ReorderCards persists a full order map in one batched call.
func (c *Client) ReorderCards(ctx context.Context, orders []model.OrderEntry) error {
	body := map[string][]model.OrderEntry{"orders": orders}
	env, err := c.do(ctx, "reorder cards", http.MethodPost, "/api/cards/reorder", nil, body)
	if err != nil {
		return err
	}
	if !env.Success {
		return &ServerError{Op: "reorder cards", Message: env.Message}
	}
	return nil
}

// Icons fetches the categorized icon catalog.
func (c *Client) Icons(ctx context.Context) (model.IconCatalog, error) {
	env, err := c.do(ctx, "list icons", http.MethodGet, "/api/icons", nil, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &ServerError{Op: "list icons", Message: env.Message}
	}
	var data struct {
		Categories model.IconCatalog `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &NetworkError{Op: "list icons", Err: err}
	}
	return data.Categories, nil
}

// sessionCookie is the name of the cookie a successful login sets.
const sessionCookie = "panel_session"

// SessionToken returns the current session cookie value, or "" when not
// logged in. Scripted invocations persist it across processes; the
// interactive client keeps it in the jar only.
func (c *Client) SessionToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpc.Jar == nil {
		return ""
	}
	for _, ck := range c.httpc.Jar.Cookies(u) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken seeds the jar with a previously saved session token.
func (c *Client) SetSessionToken(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpc.Jar == nil {
		return
	}
	c.httpc.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookie, Value: token}})
}
