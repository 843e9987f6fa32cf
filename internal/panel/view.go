package panel

import (
	"regexp"
	"strings"

	"panel-cli/internal/model"
)

// ViewMode selects the card presentation.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// EmptyState distinguishes why a projection has no rows.
type EmptyState int

const (
	// EmptyNone: there are cards to show.
	EmptyNone EmptyState = iota
	// EmptyNoCards: nothing configured yet.
	EmptyNoCards
	// EmptyNoMatches: a query is active but matched nothing; the user
	// should refine the search rather than add cards.
	EmptyNoMatches
)

// Segment is a run of text with a match flag; presentation layers decide
// how a matched run is emphasized.
type Segment struct {
	Text  string
	Match bool
}

// CardView is the render instruction for one card.
type CardView struct {
	Card model.Card
	Name []Segment
	Desc []Segment
}

// Projection is a pure function of (cards, query, mode); it owns no state
// and never mutates its inputs.
type Projection struct {
	Mode  ViewMode
	Cards []CardView
	Empty EmptyState
}

// Project builds render data for the given cards: every query occurrence
// in name and description is marked, case-insensitively, with regex
// metacharacters in the query matched literally.
func Project(cards []model.Card, query string, mode ViewMode) Projection {
	p := Projection{Mode: mode, Empty: EmptyNone}
	if len(cards) == 0 {
		if strings.TrimSpace(query) != "" {
			p.Empty = EmptyNoMatches
		} else {
			p.Empty = EmptyNoCards
		}
		return p
	}

	p.Cards = make([]CardView, len(cards))
	for i, c := range cards {
		p.Cards[i] = CardView{
			Card: c,
			Name: Highlight(c.Name, query),
			Desc: Highlight(c.Description, query),
		}
	}
	return p
}

// Highlight splits text into segments with all case-insensitive
// occurrences of query marked. The query is escaped first, so "a.b"
// matches the literal substring "a.b" and not an arbitrary wildcard.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Segment{{Text: text}}
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return []Segment{{Text: text}}
	}

	var segs []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}
