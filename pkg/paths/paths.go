// Package paths provides centralized path handling for cutler.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigPath overrides config file discovery entirely
	EnvConfigPath = "CUTLER_CONFIG"
)

// Default directories and files
const (
	// AppDirName is the directory name for cutler-specific files
	AppDirName = "cutler"

	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.toml"

	// BareConfigFileName is the single-file config variant ("cutler.toml")
	BareConfigFileName = "cutler.toml"

	// SnapshotFileName is the name of the snapshot file, co-located
	// with the configuration file
	SnapshotFileName = "snapshot.json"
)

// ConfigPath returns the path to the configuration file by checking
// several candidate locations, in order:
//
//  1. $CUTLER_CONFIG (used verbatim when set)
//  2. $HOME/.config/cutler/config.toml
//  3. $HOME/.config/cutler.toml
//  4. $XDG_CONFIG_HOME/cutler/config.toml
//  5. $XDG_CONFIG_HOME/cutler.toml
//
// The first existing candidate wins. When none exists the first
// candidate is returned so new configs are created in the preferred
// location.
func ConfigPath() string {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}

	var candidates []string

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", AppDirName, ConfigFileName),
			filepath.Join(home, ".config", BareConfigFileName),
		)
	}

	candidates = append(candidates,
		filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName),
		filepath.Join(xdg.ConfigHome, BareConfigFileName),
	)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	return candidates[0]
}

// SnapshotPath returns the path to the snapshot file for the given
// configuration file. The snapshot always lives next to the config.
func SnapshotPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), SnapshotFileName)
}
