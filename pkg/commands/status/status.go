// Package status reports how far the live preference store has drifted
// from the configuration. It is strictly read-only.
package status

import (
	"github.com/machlit/cutler/pkg/commands/internal"
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/diff"
	"github.com/machlit/cutler/pkg/domains"
	"github.com/machlit/cutler/pkg/internal/hashutil"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/store"
)

// Options defines the options for the Status command.
type Options struct {
	// ConfigPath is the configuration to report against. Empty means
	// the discovered default location.
	ConfigPath string
	// Store is the preference store to read. Nil means the system
	// defaults store.
	Store store.Store
}

// Result is the full drift report.
type Result struct {
	Domains []diff.DomainReport
	InSync  bool
	// SnapshotPresent reports whether an undo record exists.
	SnapshotPresent bool
	// ConfigDrifted reports whether the config changed since the
	// snapshot was taken.
	ConfigDrifted bool
}

// Status classifies every configured setting against its live value.
// Unknown domains are reported as all-absent, never failed on; a status
// check must work on a machine the config has not been applied to yet.
func Status(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.status")
	log.Debug().Str("command", "Status").Msg("Executing command")

	cfg, st, err := internal.LoadTarget(opts.ConfigPath, opts.Store, config.Load)
	if err != nil {
		return nil, err
	}

	set, err := domains.Collect(cfg.Raw())
	if err != nil {
		return nil, err
	}

	reports, err := diff.Classify(set, st)
	if err != nil {
		return nil, err
	}

	result := &Result{Domains: reports, InSync: true}
	for _, report := range reports {
		if !report.InSync {
			result.InSync = false
			break
		}
	}

	snapPath := paths.SnapshotPath(cfg.Path())
	if snap, err := snapshot.Load(snapPath); err == nil {
		result.SnapshotPresent = true
		if snap.Digest != "" {
			if digest, derr := hashutil.FileDigest(cfg.Path()); derr == nil {
				result.ConfigDrifted = digest != snap.Digest
			}
		}
	}

	return result, nil
}
