// Package cutler wires the command-line interface.
package cutler

import (
	"fmt"
	"os"
	osexec "os/exec"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/machlit/cutler/internal/version"
	"github.com/machlit/cutler/pkg/brew"
	"github.com/machlit/cutler/pkg/commands/apply"
	"github.com/machlit/cutler/pkg/commands/fetch"
	"github.com/machlit/cutler/pkg/commands/initialize"
	"github.com/machlit/cutler/pkg/commands/lock"
	"github.com/machlit/cutler/pkg/commands/reset"
	"github.com/machlit/cutler/pkg/commands/status"
	"github.com/machlit/cutler/pkg/commands/unapply"
	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/cookbook"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/exec"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/ui"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		quiet     bool
		dryRun    bool
		acceptAll bool
		noRestart bool
	)

	rootCmd := &cobra.Command{
		Use:     "cutler",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity, quiet)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, MsgFlagQuiet)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVarP(&acceptAll, "accept-all", "y", false, MsgFlagAcceptAll)
	rootCmd.PersistentFlags().BoolVar(&noRestart, "no-restart-services", false, MsgFlagNoRestart)

	rootCmd.AddCommand(
		newApplyCmd(&dryRun, &noRestart, &acceptAll),
		newUnapplyCmd(&dryRun, &noRestart),
		newStatusCmd(),
		newInitCmd(&acceptAll),
		newResetCmd(&dryRun, &acceptAll, &noRestart),
		newExecCmd(&dryRun),
		newLockCmd(),
		newUnlockCmd(),
		newConfigCmd(&acceptAll),
		newFetchCmd(&acceptAll),
		newCookbookCmd(),
		newBrewCmd(&dryRun),
		newVersionCmd(),
	)

	return rootCmd
}

func newApplyCmd(dryRun, noRestart, acceptAll *bool) *cobra.Command {
	var (
		url        string
		noCmd      bool
		allCmd     bool
		flaggedCmd bool
		noDomCheck bool
		withBrew   bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: MsgApplyShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url != "" {
				path := paths.ConfigPath()
				force := false
				if config.Exists(path) {
					if !ui.Confirm(fmt.Sprintf("Overwrite the config at %s?", path), *acceptAll) {
						return errors.New(errors.ErrInvalidInput, "aborted")
					}
					force = true
				}
				if _, err := fetch.Fetch(fetch.Options{URL: url, ConfigPath: path, Force: force}); err != nil {
					return err
				}
			}

			mode := apply.CommandsRegular
			switch {
			case noCmd:
				mode = apply.CommandsOff
			case allCmd:
				mode = apply.CommandsAll
			case flaggedCmd:
				mode = apply.CommandsFlagged
			}

			result, err := apply.Apply(apply.Options{
				DryRun:          *dryRun,
				SkipDomainCheck: noDomCheck,
				SkipRestart:     *noRestart,
				Commands:        mode,
			})
			if err != nil {
				return err
			}
			renderApply(cmd.OutOrStdout(), result)

			if withBrew {
				cfg, err := config.Load(paths.ConfigPath())
				if err != nil {
					return err
				}
				if cfg.Brew == nil {
					return errors.New(errors.ErrInvalidInput, "--brew given but the config has no [brew] table")
				}
				return brew.NewClient().Install(cfg.Brew, *dryRun)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Fetch this remote config before applying")
	cmd.Flags().BoolVar(&noCmd, "no-cmd", false, "Skip external commands")
	cmd.Flags().BoolVar(&allCmd, "all-cmd", false, "Run flagged external commands too")
	cmd.Flags().BoolVar(&flaggedCmd, "flagged-cmd", false, "Run only flagged external commands")
	cmd.Flags().BoolVar(&noDomCheck, "no-dom-check", false, "Skip the unknown-domain guard")
	cmd.Flags().BoolVar(&withBrew, "brew", false, "Also install missing Homebrew packages")
	cmd.MarkFlagsMutuallyExclusive("no-cmd", "all-cmd", "flagged-cmd")

	return cmd
}

func newUnapplyCmd(dryRun, noRestart *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "unapply",
		Short: MsgUnapplyShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := unapply.Unapply(unapply.Options{
				DryRun:      *dryRun,
				SkipRestart: *noRestart,
			})
			if err != nil {
				return err
			}
			renderUnapply(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: MsgStatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := status.Status(status.Options{})
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newInitCmd(acceptAll *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := paths.ConfigPath()
			force := false
			if config.Exists(path) {
				if !ui.Confirm(fmt.Sprintf("Overwrite the config at %s?", path), *acceptAll) {
					return errors.New(errors.ErrInvalidInput, "aborted")
				}
				force = true
			}
			result, err := initialize.Init(initialize.Options{ConfigPath: path, Force: force})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starter config written to %s\n", result.Path)
			return nil
		},
	}
}

func newResetCmd(dryRun, acceptAll, noRestart *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: MsgResetShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !*dryRun && !ui.Confirm("Delete every managed preference key?", *acceptAll) {
				return errors.New(errors.ErrInvalidInput, "aborted")
			}
			result, err := reset.Reset(reset.Options{
				DryRun:      *dryRun,
				SkipRestart: *noRestart,
			})
			if err != nil {
				return err
			}
			if result.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would delete %d settings.\n", result.Deleted)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d settings.\n", result.Deleted)
			return nil
		},
	}
}

func newExecCmd(dryRun *bool) *cobra.Command {
	var (
		all     bool
		flagged bool
	)

	cmd := &cobra.Command{
		Use:   "exec [name]",
		Short: MsgExecShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUnlocked(paths.ConfigPath())
			if err != nil {
				return err
			}
			runner := exec.NewRunner(*dryRun)

			if len(args) == 1 {
				return runner.RunOne(cfg, args[0])
			}

			mode := exec.ModeRegular
			switch {
			case all:
				mode = exec.ModeAll
			case flagged:
				mode = exec.ModeFlagged
			}
			ran := runner.RunAll(cfg, mode)
			fmt.Fprintf(cmd.OutOrStdout(), "Ran %d commands.\n", ran)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Run flagged commands too")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "Run only flagged commands")
	cmd.MarkFlagsMutuallyExclusive("all", "flagged")

	return cmd
}

func newLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: MsgLockShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return lock.Lock(lock.Options{})
		},
	}
}

func newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: MsgUnlockShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return lock.Unlock(lock.Options{})
		},
	}
}

func newConfigCmd(acceptAll *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(paths.ConfigPath())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.Path(), cfg.Raw())
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open the config in $EDITOR",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				editor := os.Getenv("EDITOR")
				if editor == "" {
					editor = "vi"
				}
				edit := osexec.Command(editor, paths.ConfigPath())
				edit.Stdin = os.Stdin
				edit.Stdout = os.Stdout
				edit.Stderr = os.Stderr
				return edit.Run()
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Delete the config and its snapshot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := paths.ConfigPath()
				if !config.Exists(path) {
					return errors.Newf(errors.ErrConfigLoad, "no config file at %s", path)
				}
				if !ui.Confirm(fmt.Sprintf("Delete %s?", path), *acceptAll) {
					return errors.New(errors.ErrInvalidInput, "aborted")
				}
				if err := os.Remove(path); err != nil {
					return err
				}
				snapPath := paths.SnapshotPath(path)
				if snapshot.Exists(snapPath) {
					_ = os.Remove(snapPath)
				}
				return nil
			},
		},
	)

	return cmd
}

func newFetchCmd(acceptAll *bool) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: MsgFetchShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := paths.ConfigPath()
			force := false
			if config.Exists(path) {
				if !ui.Confirm(fmt.Sprintf("Overwrite the config at %s?", path), *acceptAll) {
					return errors.New(errors.ErrInvalidInput, "aborted")
				}
				force = true
			}
			result, err := fetch.Fetch(fetch.Options{URL: url, ConfigPath: path, Force: force})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s to %s\n", result.URL, result.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Remote config URL (defaults to the [remote] table)")
	return cmd
}

func newCookbookCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "cookbook [guide]",
		Short:     MsgCookbookShort,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: cookbook.List(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Available guides:")
				for _, name := range cookbook.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
				return nil
			}
			out, err := cookbook.Render(args[0], 0)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newBrewCmd(dryRun *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brew",
		Short: MsgBrewShort,
	}

	var noDeps bool
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Rewrite the [brew] table from what is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !brew.Installed() {
				return errors.New(errors.ErrBrewFailed, "brew is not installed")
			}
			return brew.NewClient().Backup(paths.ConfigPath(), noDeps)
		},
	}
	backupCmd.Flags().BoolVar(&noDeps, "no-deps", false, "Record no_deps = true in the [brew] table")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install the declared packages that are missing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if !brew.Installed() {
					return errors.New(errors.ErrBrewFailed, "brew is not installed")
				}
				cfg, err := config.Load(paths.ConfigPath())
				if err != nil {
					return err
				}
				if cfg.Brew == nil {
					return errors.New(errors.ErrInvalidInput, "the config has no [brew] table")
				}
				return brew.NewClient().Install(cfg.Brew, *dryRun)
			},
		},
		backupCmd,
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cutler version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
		},
	}
}
