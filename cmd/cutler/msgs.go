package cutler

// Short messages (one-liners)
const (
	MsgRootShort = "Declarative macOS preference management"
	MsgRootLong  = `cutler keeps your macOS preferences described in a single TOML file
and makes the machine match it. Apply writes only what differs and
records the original values, so everything can be undone.`

	MsgApplyShort    = "Apply the configured preferences to the system"
	MsgUnapplyShort  = "Restore the preference state from before apply"
	MsgStatusShort   = "Show how far the system drifted from the config"
	MsgInitShort     = "Create a starter config"
	MsgResetShort    = "Delete every managed preference key"
	MsgExecShort     = "Run the external commands from the config"
	MsgLockShort     = "Lock the config against mutating commands"
	MsgUnlockShort   = "Unlock the config"
	MsgConfigShort   = "Inspect or edit the config file"
	MsgFetchShort    = "Install a remote config as the local one"
	MsgCookbookShort = "Read the built-in guides"
	MsgBrewShort     = "Manage Homebrew packages from the [brew] table"
	MsgVersionShort  = "Print version information"

	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagQuiet     = "Only log errors"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagAcceptAll = "Answer yes to every prompt"
	MsgFlagNoRestart = "Do not restart system services after writes"

	MsgDryRunNotice = "Dry run, no changes were made."
	MsgNothingToDo  = "Everything is already in sync."
)
