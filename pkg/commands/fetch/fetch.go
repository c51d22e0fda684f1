// Package fetch installs a remote configuration as the local one.
package fetch

import (
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/remote"
)

// Options defines the options for the Fetch command.
type Options struct {
	// URL overrides the [remote] url of the existing local config.
	URL string
	// ConfigPath is where the fetched config lands. Empty means the
	// discovered default location.
	ConfigPath string
	// Force overwrites an existing local config. Callers confirm with
	// the user before setting it.
	Force bool
}

// Result reports what was fetched and where it went.
type Result struct {
	URL  string
	Path string
}

// Fetch downloads the remote config and writes it locally. The URL
// comes from the flag when given, otherwise from the local config's
// [remote] table.
func Fetch(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.fetch")
	log.Debug().Str("command", "Fetch").Msg("Executing command")

	path := opts.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}

	url := opts.URL
	if url == "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput,
				"no --url given and no local config to take [remote] from")
		}
		if cfg.Remote == nil || cfg.Remote.URL == "" {
			return nil, errors.New(errors.ErrInvalidInput,
				"no --url given and the local config has no [remote] url")
		}
		url = cfg.Remote.URL
	}

	if config.Exists(path) && !opts.Force {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"config already exists at %s; pass --force or confirm to overwrite", path)
	}

	if err := remote.Install(url, path); err != nil {
		return nil, err
	}

	log.Info().Str("url", url).Str("path", path).Msg("Command finished")
	return &Result{URL: url, Path: path}, nil
}
