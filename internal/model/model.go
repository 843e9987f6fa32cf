package model

// Card is a user-configured service shortcut on the panel. The server is
// the durable owner; clients hold cards in memory only between reloads.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	// Order is 1-based and dense within the loaded collection.
	Order int `json:"order"`
}

// CardFields carries the user-editable subset of a card for create/update.
type CardFields struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// IconEntry is one pickable icon in the catalog.
type IconEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IconCatalog maps category name to its icons. Immutable once loaded for
// the session.
type IconCatalog map[string][]IconEntry

// OrderEntry is one element of a batched reorder request.
type OrderEntry struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}
