package panel

import (
	"context"
	"sort"
	"strings"
	"sync"

	"panel-cli/internal/model"
)

// IconPicker lazily loads the categorized icon catalog once per session
// and tracks the transient selection of an open picker.
type IconPicker struct {
	svc Service

	mu       sync.Mutex
	catalog  model.IconCatalog
	loaded   bool
	selected string
}

func NewIconPicker(svc Service) *IconPicker {
	return &IconPicker{svc: svc}
}

// Load fetches the catalog at most once; later calls return the cached
// map without a network round-trip. A failed fetch leaves the picker
// unloaded so the next open retries.
func (p *IconPicker) Load(ctx context.Context) (model.IconCatalog, error) {
	p.mu.Lock()
	if p.loaded {
		cat := p.catalog
		p.mu.Unlock()
		return cat, nil
	}
	p.mu.Unlock()

	cat, err := p.svc.Icons(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if !p.loaded {
		p.catalog = cat
		p.loaded = true
	}
	cat = p.catalog
	p.mu.Unlock()
	return cat, nil
}

// Categories lists the loaded category names, sorted for stable display.
func (p *IconPicker) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.catalog))
	for name := range p.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterByCategory restricts the catalog to one category. Empty or "all"
// returns the full catalog.
func (p *IconPicker) FilterByCategory(category string) model.IconCatalog {
	p.mu.Lock()
	defer p.mu.Unlock()

	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, "all") {
		return p.catalog
	}
	entries, ok := p.catalog[category]
	if !ok {
		return model.IconCatalog{}
	}
	return model.IconCatalog{category: entries}
}

// FilterByQuery keeps icons whose name or description contains q
// (case-insensitive). Categories with zero matches are omitted. An empty
// query returns the full catalog.
func (p *IconPicker) FilterByQuery(q string) model.IconCatalog {
	p.mu.Lock()
	defer p.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return p.catalog
	}

	out := model.IconCatalog{}
	for category, entries := range p.catalog {
		var matched []model.IconEntry
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), q) ||
				strings.Contains(strings.ToLower(e.Description), q) {
				matched = append(matched, e)
			}
		}
		if len(matched) > 0 {
			out[category] = matched
		}
	}
	return out
}

// Select marks an icon as the pending pick.
func (p *IconPicker) Select(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = strings.TrimSpace(name)
}

// Selected reports the pending pick without consuming it.
func (p *IconPicker) Selected() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected, p.selected != ""
}

// Confirm returns the pending pick and clears it, so a re-opened picker
// starts unselected. It fails when nothing is selected.
func (p *IconPicker) Confirm() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == "" {
		return "", false
	}
	name := p.selected
	p.selected = ""
	return name, true
}

// ClearSelection drops the pending pick (picker dismissed without
// confirming).
func (p *IconPicker) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = ""
}
