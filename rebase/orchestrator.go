// Package rebase rebases a set of local branches onto a target branch, one
// at a time, against a single shared working tree.
//
// Runs are strictly sequential. Running two orchestrations against the same
// repository at once is unsupported: both would race on the working tree.
package rebase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/branch"
	"github.com/roasbeef/rebase-branch/config"
	"github.com/roasbeef/rebase-branch/git"
)

// ErrRebaseFailed marks every error returned from Run once git has been
// touched.
var ErrRebaseFailed = errors.New("rebase failed")

// RestorePolicy controls whether the starting branch is checked out again
// after a failed run.
type RestorePolicy string

const (
	// RestoreOnSuccess restores the starting branch only after every
	// branch was rebased. A failure leaves the tree on the failing
	// branch so the conflict can be resolved in place.
	RestoreOnSuccess RestorePolicy = "success"

	// RestoreAlways also restores after a failure, unless a rebase is
	// still stopped in the tree.
	RestoreAlways RestorePolicy = "always"
)

// ParseRestorePolicy parses a policy name.
func ParseRestorePolicy(s string) (RestorePolicy, error) {
	switch p := RestorePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RestoreOnSuccess, RestoreAlways:
		return p, nil

	case "":
		return RestoreOnSuccess, nil

	default:
		return "", errors.Newf(
			"unknown restore policy %q (want %q or %q)",
			s, RestoreOnSuccess, RestoreAlways,
		)
	}
}

// Options are the per-run settings derived from the command line.
type Options struct {
	// Target overrides the configured default target when set.
	Target string

	// Except lists branches to skip in addition to the configured ones.
	Except []string

	// Only, when non-empty, restricts the run to these branches.
	Only []string

	// Restore selects the restore policy. Empty means RestoreOnSuccess.
	Restore RestorePolicy

	// SkipSync skips pulling the target branch from its upstream.
	SkipSync bool

	// DryRun only computes the selection.
	DryRun bool
}

// Orchestrator drives the git operations of a run.
type Orchestrator struct {
	git      git.Executor
	cfg      *config.Config
	reporter Reporter
	log      *slog.Logger
}

// New creates an Orchestrator. A nil reporter discards events and a nil
// logger uses slog.Default.
func New(
	executor git.Executor, cfg *config.Config, reporter Reporter,
	logger *slog.Logger,
) *Orchestrator {

	if cfg == nil {
		cfg = config.New()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		git:      executor,
		cfg:      cfg,
		reporter: reporter,
		log:      logger,
	}
}

// ResolveTarget returns the target for opts: the explicit one if given,
// otherwise the configured default.
func (o *Orchestrator) ResolveTarget(opts Options) string {
	if target := strings.TrimSpace(opts.Target); target != "" {
		return target
	}

	if o.cfg.Default != "" {
		return o.cfg.Default
	}

	return config.DefaultTarget
}

// Run performs a full rebase run. The returned Result describes the
// progress made even when an error is returned; completed rebases are
// never rolled back.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{
		Target:   o.ResolveTarget(opts),
		Selected: []string{},
		Branches: []BranchResult{},
		DryRun:   opts.DryRun,
	}

	policy := opts.Restore
	if policy == "" {
		policy = RestoreOnSuccess
	}

	origin, err := o.git.CurrentBranch(ctx)
	if err != nil {
		return res, wrapFailure(err, "determining current branch")
	}
	res.Origin = origin

	o.log.DebugContext(ctx, "starting run",
		"target", res.Target, "origin", origin,
		"restore", string(policy), "dry_run", opts.DryRun)

	if opts.DryRun {
		res.Selected, err = o.selectBranches(ctx, res.Target, opts)
		if err != nil {
			return res, wrapFailure(err, "listing branches")
		}

		o.reporter.Report(Event{
			Kind: EventSelected, Target: res.Target,
			Branches: res.Selected,
		})

		return res, nil
	}

	// From here on the working tree may move. Under RestoreAlways the
	// starting branch is checked out again on the way out, even when ctx
	// was cancelled by an interrupt.
	succeeded := false
	if policy == RestoreAlways {
		defer func() {
			if !succeeded {
				o.restoreAfterFailure(context.WithoutCancel(ctx), res)
			}
		}()
	}

	if !opts.SkipSync {
		if err := o.syncTarget(ctx, res.Target, origin); err != nil {
			return res, err
		}
	}

	res.Selected, err = o.selectBranches(ctx, res.Target, opts)
	if err != nil {
		return res, wrapFailure(err, "listing branches")
	}

	o.reporter.Report(Event{
		Kind: EventSelected, Target: res.Target, Branches: res.Selected,
	})

	for _, name := range res.Selected {
		br, err := o.rebaseBranch(ctx, res.Target, name)
		res.Branches = append(res.Branches, br)
		if err != nil {
			return res, err
		}
	}

	if err := o.git.Checkout(ctx, origin); err != nil {
		return res, wrapFailure(err, "checking out %s", origin)
	}

	res.Restored = true
	succeeded = true

	o.reporter.Report(Event{Kind: EventCompleted, Branch: origin})

	return res, nil
}

// syncTarget brings the target up to date with its upstream and returns to
// the starting branch.
func (o *Orchestrator) syncTarget(ctx context.Context, target, origin string) error {
	o.reporter.Report(Event{Kind: EventCheckoutTarget, Branch: target})
	if err := o.git.Checkout(ctx, target); err != nil {
		return wrapFailure(err, "checking out target %s", target)
	}

	o.reporter.Report(Event{Kind: EventSync, Branch: target})
	if err := o.git.SyncWithUpstream(ctx); err != nil {
		return wrapFailure(err, "syncing %s with its upstream", target)
	}

	o.reporter.Report(Event{Kind: EventCheckoutBack, Branch: origin})
	if err := o.git.Checkout(ctx, origin); err != nil {
		return wrapFailure(err, "checking out %s", origin)
	}

	return nil
}

func (o *Orchestrator) selectBranches(
	ctx context.Context, target string, opts Options,
) ([]string, error) {

	lines, err := o.git.ListBranches(ctx)
	if err != nil {
		return nil, err
	}

	except := branch.MergeExcept(o.cfg.Except, opts.Except)
	selected := branch.Filter(lines, target, except, opts.Only)

	o.log.DebugContext(ctx, "selected branches",
		"all", len(lines), "selected", len(selected),
		"except", except, "only", opts.Only)

	return selected, nil
}

// rebaseBranch checks out name and rebases it onto target.
func (o *Orchestrator) rebaseBranch(
	ctx context.Context, target, name string,
) (BranchResult, error) {

	br := BranchResult{Name: name, Status: StatusFailed}

	o.reporter.Report(Event{Kind: EventCheckout, Branch: name, Target: target})
	if err := o.git.Checkout(ctx, name); err != nil {
		br.Error = err.Error()

		return br, wrapFailure(err, "checking out %s", name)
	}

	if err := o.git.Rebase(ctx, target); err != nil {
		br.Error = err.Error()
		o.reporter.Report(Event{
			Kind: EventRebaseFailed, Branch: name, Target: target,
		})

		return br, wrapFailure(err, "rebasing %s onto %s", name, target)
	}

	br.Status = StatusRebased

	// The stat is informational; a failure to compute it does not fail
	// the branch.
	stat, err := o.git.DiffStat(ctx, target, name)
	if err != nil {
		o.log.WarnContext(ctx, "computing diff stat",
			"branch", name, "err", err)
	} else {
		br.Stat = stat
	}

	o.reporter.Report(Event{
		Kind: EventRebased, Branch: name, Target: target, Stat: br.Stat,
	})

	return br, nil
}

// restoreAfterFailure checks out the starting branch unless a stopped
// rebase would make that unsafe.
func (o *Orchestrator) restoreAfterFailure(ctx context.Context, res *Result) {
	inProgress, err := o.git.RebaseInProgress(ctx)
	if err != nil {
		o.log.WarnContext(ctx, "checking rebase state", "err", err)

		return
	}

	if inProgress {
		o.log.InfoContext(ctx, "rebase stopped, not restoring",
			"origin", res.Origin)

		return
	}

	if err := o.git.Checkout(ctx, res.Origin); err != nil {
		o.log.WarnContext(ctx, "restoring starting branch",
			"origin", res.Origin, "err", err)

		return
	}

	res.Restored = true
	o.reporter.Report(Event{Kind: EventRestored, Branch: res.Origin})
}

// wrapFailure marks err as a rebase failure and attaches the manual
// recovery steps.
func wrapFailure(err error, format string, args ...any) error {
	err = errors.Wrapf(err, format, args...)
	err = errors.Mark(err, ErrRebaseFailed)

	return errors.WithHint(err, recoveryHint)
}

var recoveryHint = fmt.Sprintf(
	"Check for conflicts. Use %q to abort the rebase in the branch,\n"+
		"or resolve the conflicts, stage them and use %q to continue.\n"+
		"Then check out your branch again and re-run.",
	"git rebase --abort", "git rebase --continue",
)
