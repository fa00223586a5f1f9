package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/branch"
	"github.com/roasbeef/rebase-branch/config"
	"github.com/roasbeef/rebase-branch/git"
	"github.com/roasbeef/rebase-branch/output"
	"github.com/roasbeef/rebase-branch/rebase"
	"github.com/spf13/cobra"
)

// runRebase performs a rebase run with the persisted config and the
// command line selections.
func runRebase(cmd *cobra.Command, cfg Config, persisted *config.Config,
	flags rootFlags) error {

	policy, err := rebase.ParseRestorePolicy(flags.restore)
	if err != nil {
		return errors.WithHint(err, "Use --restore success or --restore always.")
	}

	opts := rebase.Options{
		Target:   flags.target,
		Except:   branch.Normalize(flags.except),
		Only:     branch.Normalize(flags.only),
		Restore:  policy,
		SkipSync: flags.skipSync,
		DryRun:   flags.dryRun,
	}

	executor := git.NewShellExecutor(cfg.WorkDir)
	executor.Logger = cfg.Logger

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	var reporter rebase.Reporter = rebase.NopReporter{}
	theme := output.NewTheme(stdout, cfg.Color)
	if !cfg.JSONOut {
		reporter = output.NewTextReporter(stdout, theme)
	}

	orch := rebase.New(executor, persisted, reporter, cfg.Logger)
	res, runErr := orch.Run(cmd.Context(), opts)

	if cfg.JSONOut {
		if err := output.FormatResultJSON(stdout, res, runErr); err != nil {
			return err
		}
		if runErr != nil {
			return errors.Mark(runErr, errReported)
		}

		return nil
	}

	if err := output.FormatResultText(stdout, res, theme); err != nil {
		return err
	}

	if runErr == nil {
		return nil
	}

	output.FormatFailure(stderr, runErr, output.NewTheme(stderr, cfg.Color))

	return errors.Mark(runErr, errReported)
}
