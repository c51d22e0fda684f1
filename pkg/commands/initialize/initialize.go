// Package initialize writes a starter configuration.
package initialize

import (
	_ "embed"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
)

//go:embed starter.toml
var starterConfig []byte

// Options defines the options for the Init command.
type Options struct {
	// ConfigPath is where to create the config. Empty means the
	// preferred default location.
	ConfigPath string
	// Force overwrites an existing config.
	Force bool
}

// Result reports where the config was written.
type Result struct {
	Path string
}

// Init writes the starter config. An existing file is only replaced
// under Force; callers confirm with the user before setting it.
func Init(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.init")
	log.Debug().Str("command", "Init").Msg("Executing command")

	path := opts.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}

	if config.Exists(path) && !opts.Force {
		return nil, errors.Newf(errors.ErrInvalidInput, "config already exists at %s", path)
	}

	if err := config.Save(path, starterConfig); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("Starter config written")
	return &Result{Path: path}, nil
}

// Starter exposes the template so tests can assert it stays parseable.
func Starter() []byte {
	return starterConfig
}
