// Package docs serves the built-in help topics embedded in the binary.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one embedded help page. Name is what the user passes to
// `panel docs`; Title comes from the page's first heading.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists the available help topics sorted by name.
func Topics() []Topic {
	entries, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil
	}
	topics := make([]Topic, 0, len(entries))
	for _, p := range entries {
		name := strings.TrimSuffix(path.Base(p), ".md")
		if name == "" {
			continue
		}
		body, err := contentFS.ReadFile(p)
		if err != nil {
			continue
		}
		topics = append(topics, Topic{Name: name, Title: firstHeading(string(body))})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics
}

// Get returns the markdown body for a topic. Lookup is case-insensitive.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// firstHeading extracts the text of the first markdown heading, or "" when
// the page has none.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
