package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int            `yaml:"version"`
	Database    DatabaseConfig `yaml:"database"`
	Log         LogConfig      `yaml:"log"`
	Server      ServerConfig   `yaml:"server"`
	Actor       string         `yaml:"actor"`                  // recorded as changed_by in the audit log
	DefaultUser string         `yaml:"default_user,omitempty"` // used when a command omits --user
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path         string    `yaml:"path"`
	MaxOpenConns int       `yaml:"max_open_conns"`
	BusyTimeout  *Duration `yaml:"busy_timeout,omitempty"`
}

// LogConfig selects the log handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ServerConfig holds MCP server settings
type ServerConfig struct {
	Name string `yaml:"name"`
	// HTTPAddr enables the read-only HTTP API and event stream when set
	HTTPAddr string `yaml:"http_addr,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
