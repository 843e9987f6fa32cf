// Package config resolves the client configuration: where the panel API
// lives and how the TUI behaves. Values come from the TOML config file,
// overridden by PANEL_* environment variables, overridden by flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultServerURL = "http://127.0.0.1:8787"

// Config is the panel client configuration.
type Config struct {
	// ServerURL is the base URL of the panel API.
	ServerURL string `toml:"server_url"`
	// View is the startup view mode: "grid" or "list".
	View string `toml:"view"`
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// FilePath returns the config file location.
func FilePath() string {
	return filepath.Join(configHome(), "panel", "config.toml")
}

// Load reads the config file at path (FilePath() when empty) and applies
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = FilePath()
	}

	cfg := Config{ServerURL: DefaultServerURL, View: "grid"}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("PANEL_URL")); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PANEL_VIEW")); v != "" {
		cfg.View = v
	}

	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.View != "list" {
		cfg.View = "grid"
	}
	return cfg, nil
}

// Save writes cfg to path (FilePath() when empty), creating the directory
// as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = FilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
