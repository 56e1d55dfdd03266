package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Database.Path != "./usercontext.db" {
		t.Errorf("Database.Path = %s, want ./usercontext.db", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Errorf("Database.MaxOpenConns = %d, want 1", cfg.Database.MaxOpenConns)
	}
	if cfg.BusyTimeout() != 5*time.Second {
		t.Errorf("BusyTimeout() = %s, want 5s", cfg.BusyTimeout())
	}
	if cfg.Actor != "assistant" {
		t.Errorf("Actor = %s, want assistant", cfg.Actor)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "/tmp/ctx.db"}}
	cfg.applyDefaults()

	if cfg.Database.Path != "/tmp/ctx.db" {
		t.Errorf("explicit path overwritten: %s", cfg.Database.Path)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
	if cfg.Server.Name != "usercontext" {
		t.Errorf("Server.Name = %s, want usercontext", cfg.Server.Name)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDatabasePath, "/var/lib/ctx.db")
	t.Setenv(EnvDefaultUser, "alice")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Database.Path != "/var/lib/ctx.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.DefaultUser != "alice" {
		t.Errorf("DefaultUser = %s", cfg.DefaultUser)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/data/ctx.db"
	cfg.Log.Format = "json"
	busy := Duration(250 * time.Millisecond)
	cfg.Database.BusyTimeout = &busy

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "busy_timeout: 250ms") {
		t.Errorf("expected duration string in saved config, got:\n%s", data)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Database.Path != "/data/ctx.db" {
		t.Errorf("Database.Path = %s", loaded.Database.Path)
	}
	if loaded.Log.Format != "json" {
		t.Errorf("Log.Format = %s", loaded.Log.Format)
	}
	if loaded.BusyTimeout() != 250*time.Millisecond {
		t.Errorf("BusyTimeout() = %s", loaded.BusyTimeout())
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("database:\n  busy_timeout: forever\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", got, explicit)
	}

	xdg := filepath.Join(tmpDir, "xdg")
	xdgConfig := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if err := EnsureConfigDir(xdgConfig); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdgConfig, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(tmpDir)
	if got := FindConfigPath(); got != xdgConfig {
		t.Errorf("FindConfigPath() = %s, want %s", got, xdgConfig)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	paths := SearchPaths()
	if len(paths) != 3 {
		t.Fatalf("SearchPaths() = %v, want 3 entries", paths)
	}
	want := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	if paths[1] != want {
		t.Errorf("paths[1] = %s, want %s", paths[1], want)
	}
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %s, want %s", got, want)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	v, err := d.MarshalYAML()
	if err != nil {
		t.Fatal(err)
	}
	if v != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", v)
	}
}
