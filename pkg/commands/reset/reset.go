// Package reset deletes every managed preference key outright.
//
// Unlike unapply it does not consult the snapshot for originals; it is
// the blunt instrument for when the recorded state itself is suspect.
package reset

import (
	"os"

	"github.com/machlit/cutler/pkg/commands/internal"
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/diff"
	"github.com/machlit/cutler/pkg/domains"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/store"
)

// Options defines the options for the Reset command.
type Options struct {
	// ConfigPath names the configuration whose managed keys to delete.
	// Empty means the discovered default location.
	ConfigPath string
	// Store is the preference store to delete from. Nil means the
	// system defaults store.
	Store store.Store
	// DryRun reports what would be deleted without mutating anything.
	DryRun bool
	// SkipRestart leaves the preference-caching services alone.
	SkipRestart bool
	// Restart restarts the preference-caching services. Nil means the
	// real killall-based restart.
	Restart func()
}

// Result describes what a reset did, or would do under dry run.
type Result struct {
	Deleted int
	Failed  int
	DryRun  bool
}

// Reset deletes every key the configuration manages and removes the
// snapshot. Deletes are best effort; a key that is already absent is
// not an error.
func Reset(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.reset")
	log.Debug().Str("command", "Reset").Msg("Executing command")

	cfg, st, err := internal.LoadTarget(opts.ConfigPath, opts.Store, config.LoadUnlocked)
	if err != nil {
		return nil, err
	}

	set, err := domains.Collect(cfg.Raw())
	if err != nil {
		return nil, err
	}

	// classification resolves effective addresses without failing on
	// domains that never made it to this machine
	reports, err := diff.Classify(set, st)
	if err != nil {
		return nil, err
	}

	result := &Result{DryRun: opts.DryRun}
	for _, report := range reports {
		for _, entry := range report.Entries {
			addr := store.Address(report.Name, entry.Key)
			if opts.DryRun {
				log.Info().Str("setting", addr).Msg("Would delete")
				result.Deleted++
				continue
			}
			if err := st.Delete(report.Name, entry.Key); err != nil {
				log.Error().Err(err).Str("setting", addr).Msg("Delete failed")
				result.Failed++
				continue
			}
			result.Deleted++
		}
	}

	if opts.DryRun {
		return result, nil
	}

	snapPath := paths.SnapshotPath(cfg.Path())
	if snapshot.Exists(snapPath) {
		if err := os.Remove(snapPath); err != nil {
			log.Warn().Err(err).Msg("Could not remove snapshot")
		}
	}

	if result.Deleted > 0 && !opts.SkipRestart {
		restart := opts.Restart
		if restart == nil {
			restart = internal.RestartServices
		}
		restart()
	}

	log.Info().
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("Command finished")
	return result, nil
}
