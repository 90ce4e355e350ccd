package schematic

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "A declarative project scaffolding engine"
	MsgApplyShort     = "Apply blueprint(s) to the project"
	MsgGenConfigShort = "Generate a default configuration file"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgDryRunNotice   = "\nDRY RUN MODE - No changes were made"
	MsgNoFilesWritten = "No files written."
	MsgFilesFormat    = "\nWrote %d file(s):\n"
	MsgFileItem       = "  ✓ %s\n"
	MsgBlueprintOK    = "✔ %s: %d action(s)\n"
	MsgBlueprintFail  = "✘ %s failed:\n"
	MsgErrorItem      = "    %s\n"

	// Error messages
	MsgErrApply          = "apply failed: %w"
	MsgErrBlueprintsFail = "one or more blueprints failed"
	MsgErrConfigExists   = "config file already exists: %s"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagProjectRoot    = "Project root directory (default: $SCHEMATIC_PROJECT_ROOT, git root, or cwd)"
	MsgFlagContext        = "YAML file with the execution context"
	MsgFlagWrite          = "Write config to file instead of stdout"
	MsgFlagPackageManager = "Override the configured package manager for this run"
)

// Long messages
const (
	MsgRootLong = `schematic generates and evolves project scaffolding from declarative
blueprints. Blueprints describe files to create, manifests to update, and
commands to run; schematic stages every change in memory and only writes to
disk when the whole blueprint succeeds.`

	MsgApplyLong = `Apply runs blueprints against the project. With no arguments every
blueprint in the project's blueprints/ directory is applied in name order;
pass explicit blueprint files to run only those.

Each blueprint stages its changes in an in-memory filesystem. If any action
fails, the blueprint's staged files are discarded and the disk is left
untouched.`

	MsgApplyExample = `  # Apply all blueprints in <root>/blueprints/
  schematic apply

  # Apply specific blueprints with a context file
  schematic apply --context answers.yaml blueprints/20-react.yaml

  # Preview without touching the disk
  schematic apply --dry-run`

	MsgGenConfigLong = `Generate the default configuration with every option commented out.
By default the config is printed to stdout; use --write to create
.schematic.toml in the project root.`
)
