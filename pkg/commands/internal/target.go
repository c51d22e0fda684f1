// Package internal holds the plumbing shared by the command packages.
package internal

import (
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/services"
	"github.com/machlit/cutler/pkg/store"
)

// Loader is the config-loading gate a command goes through, either
// config.Load or config.LoadUnlocked.
type Loader func(path string) (*config.Config, error)

// LoadTarget resolves the config path and store a command operates on.
// An empty path means the discovered default; a nil store means the
// system defaults store.
func LoadTarget(configPath string, st store.Store, load Loader) (*config.Config, store.Store, error) {
	if configPath == "" {
		configPath = paths.ConfigPath()
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if st == nil {
		st = store.NewOS()
	}
	return cfg, st, nil
}

// RestartServices kicks the preference-caching system services.
func RestartServices() {
	services.Restart()
}
