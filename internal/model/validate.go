package model

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLen        = 50
	MaxDescriptionLen = 200
)

// ValidationError reports a single invalid field. It never reaches the
// network: callers check fields before issuing any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func errField(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// Normalize trims surrounding whitespace from every field, mirroring what
// the server does before persisting.
func (f CardFields) Normalize() CardFields {
	return CardFields{
		Name:        strings.TrimSpace(f.Name),
		Icon:        strings.TrimSpace(f.Icon),
		URL:         strings.TrimSpace(f.URL),
		Description: strings.TrimSpace(f.Description),
	}
}

// Validate checks the user-editable card fields and returns the first
// offending field as a ValidationError. Lengths are counted in runes so
// multibyte names get the same budget everywhere.
func (f CardFields) Validate() error {
	if f.Name == "" {
		return errField("name", "name is required")
	}
	if utf8.RuneCountInString(f.Name) > MaxNameLen {
		return errField("name", fmt.Sprintf("name must be at most %d characters", MaxNameLen))
	}
	if f.Icon == "" {
		return errField("icon", "icon is required")
	}
	if f.URL == "" {
		return errField("url", "url is required")
	}
	if !validURL(f.URL) {
		return errField("url", "url must be a valid absolute URL")
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLen {
		return errField("description", fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen))
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
