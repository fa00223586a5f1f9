// Package commands contains the CLI command implementations.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/output"
	"github.com/spf13/cobra"
)

// errReported marks errors whose details were already written to the
// user, so Execute only sets the exit code.
var errReported = errors.New("error already reported")

// configKey is the context key for runtime config.
type configKey struct{}

// Config holds runtime configuration for commands.
type Config struct {
	WorkDir    string
	JSONOut    bool
	ConfigPath string
	Color      bool
	Logger     *slog.Logger
}

// getConfig retrieves config from context, or returns defaults.
func getConfig(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey{}).(Config); ok {
		return cfg
	}

	return Config{Logger: slog.Default()}
}

// rootFlags holds the flags of the root command.
type rootFlags struct {
	target string
	except string
	only   string

	setDefault   string
	showDefault  bool
	setExcept    string
	removeExcept string
	showExcept   bool
	showAll      bool

	restore  string
	skipSync bool
	dryRun   bool
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var (
		workDir    string
		jsonOut    bool
		configPath string
		noColor    bool
		verbose    bool
		logLevel   string
		logFormat  string
		flags      rootFlags
	)

	cmd := &cobra.Command{
		Use:     "git-rebase-branch",
		Short:   "Rebase local branches onto a target branch",
		Version: Version,
		Long: `git-rebase-branch rebases every local branch onto a target branch
(default master) in one go.

A run checks out the target, pulls it with --rebase --autostash, returns
to your branch, then checks out and rebases each selected branch onto the
target with --autostash. When all branches are done your starting branch
is checked out again.

If a rebase stops on a conflict the run ends on that branch. Use
'git rebase --abort' to abandon it, or resolve the conflict, stage it and
use 'git rebase --continue'. Branches already rebased stay rebased.

Branch lists given to --except, --only, --set-except and --remove-except
may be comma separated ('br1,br2'), whitespace separated ('br1 br2') or a
JSON array ('["br1", "br2"]').

Settings saved by --set-default and --set-except live in
$XDG_CONFIG_HOME/git-rebase-branch/config.json. To keep them next to the
binary instead, pass --config or set GIT_REBASE_BRANCH_CONFIG to a path in
the tool's directory.

Running two instances against the same repository at once is not
supported.`,
		Example: `  # Rebase all branches onto the default target
  git-rebase-branch

  # Rebase onto develop instead
  git-rebase-branch -t develop

  # Skip some branches
  git-rebase-branch -e 'br1,br2'
  git-rebase-branch -e '["br1", "br2"]'

  # Only rebase these branches
  git-rebase-branch -o 'br1 br2'

  # Make develop the default target
  git-rebase-branch --set-default develop

  # Never rebase these branches
  git-rebase-branch --set-except 'release,legacy'

  # Show what would be rebased
  git-rebase-branch --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logLevel = "debug"
			}

			logger, err := NewLogger(cmd.ErrOrStderr(), logLevel, logFormat)
			if err != nil {
				return err
			}

			// Store config in context for subcommands.
			cfg := Config{
				WorkDir:    workDir,
				JSONOut:    jsonOut,
				ConfigPath: configPath,
				Color:      output.ColorEnabled(noColor),
				Logger:     logger,
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(ctx)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVarP(
		&workDir, "dir", "C", "",
		"run as if git was started in this directory",
	)
	cmd.PersistentFlags().BoolVar(
		&jsonOut, "json", false,
		"output in JSON format (for machine consumption)",
	)
	cmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"path to the config file (default $XDG_CONFIG_HOME/git-rebase-branch/config.json;\n"+
			"point it next to the binary to keep the config with the tool)",
	)
	cmd.PersistentFlags().BoolVar(
		&noColor, "no-color", false,
		"disable colored output",
	)
	cmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"log every git command (same as --log-level debug)",
	)
	cmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn",
		"log level: debug, info, warn or error",
	)
	cmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "text",
		"log format: text or json",
	)

	f := cmd.Flags()
	f.StringVarP(&flags.target, "target", "t", "",
		"branch to rebase onto (default: the configured default)")
	f.StringVarP(&flags.except, "except", "e", "",
		"branches to leave alone, in addition to the configured ones")
	f.StringVarP(&flags.only, "only", "o", "",
		"rebase only these branches")
	f.StringVar(&flags.setDefault, "set-default", "",
		"save the default target branch and exit")
	f.BoolVar(&flags.showDefault, "show-default", false,
		"print the default target branch and exit")
	f.StringVar(&flags.setExcept, "set-except", "",
		"add branches to the saved except list and exit")
	f.StringVar(&flags.removeExcept, "remove-except", "",
		"remove branches from the saved except list and exit")
	f.BoolVar(&flags.showExcept, "show-except", false,
		"print the saved except list and exit")
	f.BoolVar(&flags.showAll, "show-all", false,
		"print the whole saved configuration as JSON and exit")
	f.StringVar(&flags.restore, "restore", "success",
		"when to check out the starting branch again: success or always")
	f.BoolVar(&flags.skipSync, "skip-sync", false,
		"do not pull the target branch from its upstream first")
	f.BoolVar(&flags.dryRun, "dry-run", false,
		"print the branches that would be rebased and exit")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.WithHintf(err,
			"Run '%s --help' for usage.", c.CommandPath())
	})

	// Add subcommands.
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// runRoot dispatches to a config query or mutation if one was requested,
// and to a rebase run otherwise. The config file is read exactly once.
func runRoot(cmd *cobra.Command, flags rootFlags) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)

	store, persisted, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	if action := configAction(cmd, flags); action != nil {
		return action(cmd.OutOrStdout(), store, persisted, cfg)
	}

	return runRebase(cmd, cfg, persisted, flags)
}

// Execute runs the root command with ctx and returns the process exit
// code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if !errors.Is(err, errReported) {
		noColor, _ := cmd.PersistentFlags().GetBool("no-color")
		theme := output.NewTheme(os.Stderr, output.ColorEnabled(noColor))
		output.FormatError(cmd.ErrOrStderr(), err, theme)
	}

	return 1
}
