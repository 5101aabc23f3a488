// Package config provides configuration management for the Leapboard
// console. Values are layered: built-in defaults, then leapboard.yaml,
// then LEAPBOARD_* environment variables, then CLI flags.
package config

import (
	"fmt"
	"time"
)

// Config is the root console configuration.
type Config struct {
	// Project is the active project name used to derive table paths.
	Project string `koanf:"project"`
	Verbose bool   `koanf:"verbose"`

	Datastore DatastoreConfig `koanf:"datastore"`
	Server    ServerConfig    `koanf:"server"`
	Settings  SettingsConfig  `koanf:"settings"`
}

// DatastoreConfig holds the remote table store connection settings.
type DatastoreConfig struct {
	BaseURL  string        `koanf:"base_url"`
	Timeout  time.Duration `koanf:"timeout"`
	PageSize int           `koanf:"page_size"`
}

// ServerConfig holds the console server settings.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// SettingsConfig holds the panel-settings store location.
type SettingsConfig struct {
	// Path is the sqlite database file; ":memory:" for ephemeral state.
	Path string `koanf:"path"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"datastore.timeout":   "30s",
		"datastore.page_size": 20,
		"server.port":         8765,
		"settings.path":       ".leapboard/settings.db",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Datastore.BaseURL == "" {
		return fmt.Errorf("datastore.base_url is required")
	}
	if c.Datastore.PageSize < 1 {
		return fmt.Errorf("datastore.page_size must be positive, got %d", c.Datastore.PageSize)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
