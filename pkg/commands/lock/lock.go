// Package lock flips the advisory lock that guards the configuration
// against mutating commands.
package lock

import (
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
)

// Options defines the options for the Lock and Unlock commands.
type Options struct {
	// ConfigPath is the config to edit. Empty means the discovered
	// default location.
	ConfigPath string
}

func resolve(opts Options) string {
	if opts.ConfigPath != "" {
		return opts.ConfigPath
	}
	return paths.ConfigPath()
}

// Lock sets the lock flag. Locking an already locked config is an
// error, so scripts notice when their assumption about the state was
// wrong.
func Lock(opts Options) error {
	log := logging.GetLogger("commands.lock")
	path := resolve(opts)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cfg.Lock {
		return errors.New(errors.ErrConfigLocked, "config is already locked")
	}
	if err := config.SetLock(path, true); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Config locked")
	return nil
}

// Unlock clears the lock flag.
func Unlock(opts Options) error {
	log := logging.GetLogger("commands.lock")
	path := resolve(opts)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if !cfg.Lock {
		return errors.New(errors.ErrInvalidInput, "config is already unlocked")
	}
	if err := config.SetLock(path, false); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Config unlocked")
	return nil
}
