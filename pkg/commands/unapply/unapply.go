// Package unapply restores the preference state recorded in the
// snapshot, undoing what apply changed.
package unapply

import (
	"github.com/machlit/cutler/pkg/commands/internal"
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/internal/hashutil"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/store"
)

// Options defines the options for the Unapply command.
type Options struct {
	// ConfigPath is the configuration whose snapshot to restore from.
	// Empty means the discovered default location.
	ConfigPath string
	// Store is the preference store to restore into. Nil means the
	// system defaults store.
	Store store.Store
	// DryRun reports what would be restored without mutating anything.
	DryRun bool
	// SkipRestart leaves the preference-caching services alone.
	SkipRestart bool
	// Restart restarts the preference-caching services. Nil means the
	// real killall-based restart.
	Restart func()
}

// Result describes what an unapply run did, or would do under dry run.
type Result struct {
	Restored int
	Deleted  int
	Failed   int
	// ExecRuns is the number of external command executions the
	// snapshot had recorded; those cannot be undone.
	ExecRuns int
	DryRun   bool
}

// Unapply walks the snapshot in reverse order and puts every recorded
// original back: keys with a recorded value are rewritten, keys that
// did not exist before are deleted. A successful run removes the
// snapshot wholesale.
//
// A corrupt snapshot is fatal here; unlike apply there is no safe way
// to continue without a trustworthy undo record.
func Unapply(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.unapply")
	log.Debug().Str("command", "Unapply").Msg("Executing command")

	cfg, st, err := internal.LoadTarget(opts.ConfigPath, opts.Store, config.LoadUnlocked)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.Load(paths.SnapshotPath(cfg.Path()))
	if err != nil {
		return nil, err
	}

	if snap.Digest != "" {
		digest, derr := hashutil.FileDigest(cfg.Path())
		if derr == nil && digest != snap.Digest {
			log.Warn().Msg("Config changed since the snapshot was taken; restoring the recorded state anyway")
		}
	}
	if snap.ExecRunCount > 0 {
		log.Warn().Int("runs", snap.ExecRunCount).
			Msg("External commands were executed; their effects are not undone")
	}

	result := &Result{ExecRuns: snap.ExecRunCount, DryRun: opts.DryRun}

	// newest entries first, so later applies unwind before earlier ones
	var restores, deletes []snapshot.SettingState
	for i := len(snap.Settings) - 1; i >= 0; i-- {
		entry := snap.Settings[i]
		if entry.OriginalValue != nil {
			restores = append(restores, entry)
		} else {
			deletes = append(deletes, entry)
		}
	}

	for _, entry := range restores {
		addr := store.Address(entry.Domain, entry.Key)
		if opts.DryRun {
			log.Info().Str("setting", addr).
				Str("original", entry.OriginalValue.String()).
				Msg("Would restore")
			result.Restored++
			continue
		}
		if err := st.Write(entry.Domain, entry.Key, *entry.OriginalValue); err != nil {
			log.Error().Err(err).Str("setting", addr).Msg("Restore failed")
			result.Failed++
			continue
		}
		log.Info().Str("setting", addr).Msg("Setting restored")
		result.Restored++
	}

	for _, entry := range deletes {
		addr := store.Address(entry.Domain, entry.Key)
		if opts.DryRun {
			log.Info().Str("setting", addr).Msg("Would delete")
			result.Deleted++
			continue
		}
		if err := st.Delete(entry.Domain, entry.Key); err != nil {
			log.Error().Err(err).Str("setting", addr).Msg("Delete failed")
			result.Failed++
			continue
		}
		log.Info().Str("setting", addr).Msg("Setting deleted")
		result.Deleted++
	}

	if opts.DryRun {
		return result, nil
	}

	if err := snap.Delete(); err != nil {
		return result, err
	}

	if result.Restored+result.Deleted > 0 && !opts.SkipRestart {
		restart := opts.Restart
		if restart == nil {
			restart = internal.RestartServices
		}
		restart()
	}

	log.Info().
		Int("restored", result.Restored).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("Command finished")
	return result, nil
}
