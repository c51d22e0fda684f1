// Package remote fetches a shared configuration document over HTTP and
// installs it as the local config.
package remote

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
)

// maxConfigSize bounds how much of a remote response we are willing to
// read. Configs are small; anything bigger is a wrong URL.
const maxConfigSize = 1 << 20

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads the document at url and parses it, returning the raw
// bytes only when they form a valid configuration. Nothing is written
// to disk.
func Fetch(url string) ([]byte, error) {
	logger := logging.GetLogger("remote")
	logger.Info().Str("url", url).Msg("Fetching remote config")

	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetchFailed, "could not reach %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrFetchFailed, "fetching %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigSize+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFetchFailed, "could not read remote config")
	}
	if len(data) > maxConfigSize {
		return nil, errors.Newf(errors.ErrFetchFailed, "remote config at %s exceeds %d bytes", url, maxConfigSize)
	}

	if _, err := config.Parse(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrFetchFailed, fmt.Sprintf("remote document at %s is not a valid config", url))
	}
	return data, nil
}

// Install fetches url and writes the document to path.
func Install(url, path string) error {
	data, err := Fetch(url)
	if err != nil {
		return err
	}
	if err := config.Save(path, data); err != nil {
		return err
	}
	logger := logging.GetLogger("remote")
	logger.Info().Str("path", path).Msg("Remote config installed")
	return nil
}

// Sync refreshes the local config from its [remote] source when
// autosync is enabled. It returns the config to use afterwards, which
// is the freshly fetched one on success and the local one on any fetch
// failure.
func Sync(cfg *config.Config) *config.Config {
	if cfg.Remote == nil || !cfg.Remote.Autosync || cfg.Remote.URL == "" {
		return cfg
	}
	logger := logging.GetLogger("remote")

	if err := Install(cfg.Remote.URL, cfg.Path()); err != nil {
		logger.Warn().Err(err).Msg("Autosync failed, using local config")
		return cfg
	}
	fresh, err := config.Load(cfg.Path())
	if err != nil {
		logger.Warn().Err(err).Msg("Could not reload synced config, using local config")
		return cfg
	}
	return fresh
}
