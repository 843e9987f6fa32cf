// Package server is the embedded panel API: sqlite-backed card storage,
// password auth with per-client lockout, and the icon catalog, all behind
// the {success, message?, data?} JSON envelope the client consumes.
package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the `panel serve` configuration, populated from the
// environment (flags may override Addr and DBPath).
type Config struct {
	Addr   string `env:"PANEL_ADDR" envDefault:"127.0.0.1:8787"`
	DBPath string `env:"PANEL_DB" envDefault:"panel.db"`

	AdminPassword string `env:"PANEL_ADMIN_PASSWORD" envDefault:""`

	MaxLoginAttempts int           `env:"PANEL_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutDuration  time.Duration `env:"PANEL_LOCKOUT_DURATION" envDefault:"5m"`
	SessionTTL       time.Duration `env:"PANEL_SESSION_TTL" envDefault:"12h"`
}

// ConfigFromEnv loads and checks the server configuration.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) check() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("PANEL_ADMIN_PASSWORD must be set")
	}
	if len(c.AdminPassword) < 6 {
		return fmt.Errorf("PANEL_ADMIN_PASSWORD must be at least 6 characters")
	}
	if c.MaxLoginAttempts < 1 {
		return fmt.Errorf("PANEL_MAX_LOGIN_ATTEMPTS must be positive")
	}
	return nil
}
