package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "USERCONTEXT_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "usercontext.yaml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "usercontext"

	userConfigFile = "config.yaml"
)

// SearchPaths lists the places a config file may live, highest priority
// first:
//
//	$USERCONTEXT_CONFIG
//	./usercontext.yaml
//	$XDG_CONFIG_HOME/usercontext/config.yaml
//	~/.config/usercontext/config.yaml
//	/etc/usercontext/config.yaml
func SearchPaths() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	for _, root := range userConfigRoots() {
		paths = append(paths, filepath.Join(root, ConfigDirName, userConfigFile))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, userConfigFile))
}

// FindConfigPath returns the first entry of SearchPaths that exists, or ""
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where `config init` writes a new file
func DefaultConfigPath() string {
	if roots := userConfigRoots(); len(roots) > 0 {
		return filepath.Join(roots[0], ConfigDirName, userConfigFile)
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func userConfigRoots() []string {
	var roots []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		roots = append(roots, xdg)
	}
	if home := os.Getenv("HOME"); home != "" {
		roots = append(roots, filepath.Join(home, ".config"))
	}
	return roots
}
