package config

import (
	"os"
	"path/filepath"
	"strings"
)

// SessionFilePath is where scripted invocations persist the session token
// between processes.
func SessionFilePath() string {
	return filepath.Join(configHome(), "panel", "session")
}

// LoadSession returns the saved session token, or "" when none exists.
func LoadSession(path string) string {
	if path == "" {
		path = SessionFilePath()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// SaveSession stores the session token with owner-only permissions.
func SaveSession(path, token string) error {
	if path == "" {
		path = SessionFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// ClearSession removes the saved token. A missing file is fine.
func ClearSession(path string) error {
	if path == "" {
		path = SessionFilePath()
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
