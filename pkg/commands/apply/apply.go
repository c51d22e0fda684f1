// Package apply reconciles the live preference store with the
// configuration.
package apply

import (
	"github.com/machlit/cutler/pkg/commands/internal"
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/diff"
	"github.com/machlit/cutler/pkg/domains"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/exec"
	"github.com/machlit/cutler/pkg/internal/hashutil"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/remote"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/store"
)

// CommandMode selects how external [command.*] entries participate in
// an apply run.
type CommandMode int

const (
	// CommandsRegular runs every command not gated behind a flag.
	CommandsRegular CommandMode = iota
	// CommandsOff runs no commands at all.
	CommandsOff
	// CommandsAll runs everything, flagged or not.
	CommandsAll
	// CommandsFlagged runs only flagged commands.
	CommandsFlagged
)

// Options defines the options for the Apply command.
type Options struct {
	// ConfigPath is the configuration file to reconcile from. Empty
	// means the discovered default location.
	ConfigPath string
	// Store is the preference store to reconcile against. Nil means
	// the system defaults store.
	Store store.Store
	// DryRun reports what would change without mutating anything.
	DryRun bool
	// SkipDomainCheck disables the unknown-domain guard.
	SkipDomainCheck bool
	// SkipRestart leaves the preference-caching services alone.
	SkipRestart bool
	// Commands selects external command participation.
	Commands CommandMode
	// Runner executes external commands. Nil means the shell runner.
	Runner *exec.Runner
	// Restart restarts the preference-caching services. Nil means the
	// real killall-based restart.
	Restart func()
}

// Result describes what an apply run did, or would do under dry run.
type Result struct {
	Jobs        []diff.Job
	Applied     int
	Failed      int
	CommandsRun int
	DryRun      bool
}

// Apply loads the configuration, diffs it against the live store and
// writes every delta, recording pre-change originals in the snapshot.
//
// Writes are best effort: one failed write is tallied and logged while
// the rest proceed. The snapshot records every job regardless, since a
// failed write may still have partially landed.
func Apply(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.apply")
	log.Debug().Str("command", "Apply").Msg("Executing command")

	cfg, st, err := internal.LoadTarget(opts.ConfigPath, opts.Store, config.LoadUnlocked)
	if err != nil {
		return nil, err
	}
	cfg = remote.Sync(cfg)

	set, err := domains.Collect(cfg.Raw())
	if err != nil {
		return nil, err
	}

	snapPath := paths.SnapshotPath(cfg.Path())
	snap, suppressCapture := loadOrFresh(snapPath)
	carried := snap.Lookup()

	jobs, err := diff.Compute(set, st, diff.Options{SkipDomainCheck: opts.SkipDomainCheck})
	if err != nil {
		return nil, err
	}

	result := &Result{Jobs: jobs, DryRun: opts.DryRun}

	if opts.DryRun {
		for _, job := range jobs {
			log.Info().
				Str("setting", store.Address(job.Domain, job.Key)).
				Str("desired", job.Desired.String()).
				Msg("Would write")
		}
		result.CommandsRun = runCommands(opts, cfg, snap, true)
		return result, nil
	}

	for _, job := range jobs {
		key := [2]string{job.Domain, job.Key}

		entry, seen := carried[key]
		if !seen {
			entry = snapshot.SettingState{Domain: job.Domain, Key: job.Key}
			if !suppressCapture {
				entry.OriginalValue = job.Current
			}
		}
		delete(carried, key)
		snapUpsert(snap, entry)

		if err := st.Write(job.Domain, job.Key, job.Desired); err != nil {
			log.Error().Err(err).
				Str("setting", store.Address(job.Domain, job.Key)).
				Msg("Write failed")
			result.Failed++
			continue
		}
		log.Info().
			Str("setting", store.Address(job.Domain, job.Key)).
			Str("value", job.Desired.String()).
			Msg("Setting applied")
		result.Applied++
	}

	digest, err := hashutil.FileDigest(cfg.Path())
	if err != nil {
		log.Warn().Err(err).Msg("Could not digest config for snapshot")
	}
	snap.Digest = digest

	result.CommandsRun = runCommands(opts, cfg, snap, false)

	if len(jobs) > 0 || result.CommandsRun > 0 || snapshot.Exists(snapPath) {
		if err := snap.Save(); err != nil {
			return result, err
		}
	}

	if result.Applied > 0 && !opts.SkipRestart {
		restart := opts.Restart
		if restart == nil {
			restart = internal.RestartServices
		}
		restart()
	}

	log.Info().
		Int("applied", result.Applied).
		Int("failed", result.Failed).
		Msg("Command finished")
	return result, nil
}

// loadSnapshot is the test seam for snapshot loading.
var loadSnapshot = snapshot.Load

// loadOrFresh returns the existing snapshot, or a fresh one when none
// exists. Any other load failure (corrupt or unreadable) also yields a
// fresh snapshot, but with original capture suppressed: the broken file
// may hold the real originals, and capturing already-managed live
// values would invent an undo record from post-change state.
func loadOrFresh(path string) (*snapshot.Snapshot, bool) {
	log := logging.GetLogger("commands.apply")

	snap, err := loadSnapshot(path)
	if err == nil {
		return snap, false
	}
	if errors.IsCode(err, errors.ErrSnapshotNotFound) {
		return snapshot.New(path), false
	}
	log.Warn().Err(err).Str("path", path).
		Msg("Snapshot is unusable; continuing without capturing originals")
	return snapshot.New(path), true
}

// snapUpsert replaces the entry for (domain, key) or appends it.
func snapUpsert(snap *snapshot.Snapshot, entry snapshot.SettingState) {
	for i, existing := range snap.Settings {
		if existing.Domain == entry.Domain && existing.Key == entry.Key {
			snap.Settings[i] = entry
			return
		}
	}
	snap.Settings = append(snap.Settings, entry)
}

func runCommands(opts Options, cfg *config.Config, snap *snapshot.Snapshot, dryRun bool) int {
	if opts.Commands == CommandsOff || len(cfg.Command) == 0 {
		return 0
	}

	runner := opts.Runner
	if runner == nil {
		runner = exec.NewRunner(dryRun)
	}

	var mode exec.Mode
	switch opts.Commands {
	case CommandsAll:
		mode = exec.ModeAll
	case CommandsFlagged:
		mode = exec.ModeFlagged
	default:
		mode = exec.ModeRegular
	}

	ran := runner.RunAll(cfg, mode)
	if !dryRun {
		snap.ExecRunCount += ran
	}
	return ran
}
