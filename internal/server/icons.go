package server

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"panel-cli/internal/model"
)

// The icon catalog is static for the lifetime of the server; clients
// cache it for the session and there is no invalidation path.

//go:embed icons.json
var iconsJSON []byte

var (
	iconsOnce    sync.Once
	iconsCatalog model.IconCatalog
)

// Icons returns the embedded icon catalog.
func Icons() model.IconCatalog {
	iconsOnce.Do(func() {
		if err := json.Unmarshal(iconsJSON, &iconsCatalog); err != nil {
			// The catalog is compiled in; a decode failure is a build defect.
			panic("server: bad embedded icon catalog: " + err.Error())
		}
	})
	return iconsCatalog
}

// FilterIcons restricts a catalog by category and/or a case-insensitive
// substring search on name and description. Categories left with no
// matches are omitted.
func FilterIcons(catalog model.IconCatalog, category, search string) model.IconCatalog {
	category = strings.TrimSpace(category)
	search = strings.ToLower(strings.TrimSpace(search))

	out := model.IconCatalog{}
	for cat, entries := range catalog {
		if category != "" && cat != category {
			continue
		}
		var matched []model.IconEntry
		for _, e := range entries {
			if search == "" ||
				strings.Contains(strings.ToLower(e.Name), search) ||
				strings.Contains(strings.ToLower(e.Description), search) {
				matched = append(matched, e)
			}
		}
		if len(matched) > 0 {
			out[cat] = matched
		}
	}
	return out
}
