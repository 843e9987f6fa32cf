package panel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"panel-cli/internal/model"
)

// fakeService is an in-memory stand-in for the panel API. Error fields
// force the next matching call to fail; call counters let tests assert
// that gated paths never reach the network.
type fakeService struct {
	mu     sync.Mutex
	cards  []model.Card
	icons  model.IconCatalog
	nextID int

	password string
	authed   bool

	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error
	reorderErr error
	iconsErr   error
	statusErr  error

	listCalls    int
	createCalls  int
	updateCalls  int
	deleteCalls  int
	reorderCalls int
	iconsCalls   int

	lastListQuery string
	lastReorder   []model.OrderEntry

	// onList runs inside ListCards before the result is built; tests use
	// it to stage overlapping reloads.
	onList func(search string)
}

func newFakeService(cards ...model.Card) *fakeService {
	f := &fakeService{password: "admin123", nextID: 100}
	f.cards = append(f.cards, cards...)
	return f
}

func card(id, name string, order int) model.Card {
	return model.Card{
		ID:    id,
		Name:  name,
		Icon:  "bi-server",
		URL:   "https://" + id + ".example.com",
		Order: order,
	}
}

func (f *fakeService) AuthStatus(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return false, f.statusErr
	}
	return f.authed, nil
}

func (f *fakeService) Login(ctx context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return fmt.Errorf("wrong password")
	}
	f.authed = true
	return nil
}

func (f *fakeService) ListCards(ctx context.Context, search string) ([]model.Card, error) {
	f.mu.Lock()
	hook := f.onList
	f.listCalls++
	f.lastListQuery = search
	err := f.listErr
	f.mu.Unlock()

	if hook != nil {
		hook(search)
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(search))
	var out []model.Card
	for _, c := range f.cards {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeService) CreateCard(ctx context.Context, fields model.CardFields) (model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return model.Card{}, f.createErr
	}
	f.nextID++
	c := model.Card{
		ID:          fmt.Sprintf("card-%d", f.nextID),
		Name:        fields.Name,
		Icon:        fields.Icon,
		URL:         fields.URL,
		Description: fields.Description,
		Order:       len(f.cards) + 1,
	}
	f.cards = append(f.cards, c)
	return c, nil
}

func (f *fakeService) UpdateCard(ctx context.Context, id string, fields model.CardFields) (model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return model.Card{}, f.updateErr
	}
	for i, c := range f.cards {
		if c.ID == id {
			c.Name = fields.Name
			c.Icon = fields.Icon
			c.URL = fields.URL
			c.Description = fields.Description
			f.cards[i] = c
			return c, nil
		}
	}
	return model.Card{}, fmt.Errorf("card not found")
}

func (f *fakeService) DeleteCard(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.cards[:0]
	for _, c := range f.cards {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.cards = kept
	for i := range f.cards {
		f.cards[i].Order = i + 1
	}
	return nil
}

func (f *fakeService) ReorderCards(ctx context.Context, orders []model.OrderEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorderCalls++
	f.lastReorder = append([]model.OrderEntry(nil), orders...)
	if f.reorderErr != nil {
		return f.reorderErr
	}
	pos := make(map[string]int, len(orders))
	for _, o := range orders {
		pos[o.ID] = o.Order
	}
	for i, c := range f.cards {
		if p, ok := pos[c.ID]; ok {
			f.cards[i].Order = p
		}
	}
	// Keep server storage sorted by order like the real store does.
	for i := 0; i < len(f.cards); i++ {
		for j := i + 1; j < len(f.cards); j++ {
			if f.cards[j].Order < f.cards[i].Order {
				f.cards[i], f.cards[j] = f.cards[j], f.cards[i]
			}
		}
	}
	return nil
}

func (f *fakeService) Icons(ctx context.Context) (model.IconCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iconsCalls++
	if f.iconsErr != nil {
		return nil, f.iconsErr
	}
	if f.icons == nil {
		f.icons = model.IconCatalog{
			"system":     {{Name: "bi-server", Description: "Server"}, {Name: "bi-database", Description: "Database"}},
			"monitoring": {{Name: "bi-graph-up", Description: "Chart rising"}},
		}
	}
	return f.icons, nil
}

func (f *fakeService) counts() (list, create, update, del, reorder int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.updateCalls, f.deleteCalls, f.reorderCalls
}
