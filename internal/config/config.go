// Package config provides configuration management for usercontext.
//
// The config file holds how the store is reached and who is writing to it;
// the database holds the context itself.
//
// Config file locations (priority order):
//  1. $USERCONTEXT_CONFIG
//  2. ./usercontext.yaml
//  3. ~/.config/usercontext/config.yaml
//  4. /etc/usercontext/config.yaml
//
// Environment overrides ($USERCONTEXT_DB, $USERCONTEXT_USER,
// $USERCONTEXT_LOG_LEVEL) are applied on top of the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvDatabasePath = "USERCONTEXT_DB"
	EnvDefaultUser  = "USERCONTEXT_USER"
	EnvLogLevel     = "USERCONTEXT_LOG_LEVEL"
)

const (
	defaultDatabasePath = "./usercontext.db"
	defaultActor        = "assistant"
	defaultServerName   = "usercontext"
	defaultBusyTimeout  = 5 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, "", nil
	}

	cfg, path, err := LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	cfg.ApplyEnv()
	return cfg, path, nil
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	busy := Duration(defaultBusyTimeout)
	return &Config{
		Version: 1,
		Database: DatabaseConfig{
			Path:         defaultDatabasePath,
			MaxOpenConns: 1,
			BusyTimeout:  &busy,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Name: defaultServerName},
		Actor:  defaultActor,
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if c.Database.BusyTimeout == nil {
		c.Database.BusyTimeout = def.Database.BusyTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Server.Name == "" {
		c.Server.Name = def.Server.Name
	}
	if c.Actor == "" {
		c.Actor = def.Actor
	}
}

// ApplyEnv overlays the environment overrides
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvDefaultUser); v != "" {
		c.DefaultUser = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// BusyTimeout returns the configured busy timeout, or the default
func (c *Config) BusyTimeout() time.Duration {
	if c.Database.BusyTimeout == nil {
		return defaultBusyTimeout
	}
	return c.Database.BusyTimeout.Duration()
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s (max %d conns, busy timeout %s)\n",
		c.Database.Path, c.Database.MaxOpenConns, c.BusyTimeout())
	summary += fmt.Sprintf("Log: %s/%s, Actor: %s", c.Log.Level, c.Log.Format, c.Actor)
	if c.DefaultUser != "" {
		summary += fmt.Sprintf(", Default user: %s", c.DefaultUser)
	}
	return summary
}
