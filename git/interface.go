// Package git provides an abstraction layer for the git operations used while
// rebasing branches. This enables testing the orchestration without actual
// git repositories.
package git

import (
	"context"
)

// Executor abstracts git operations for testability.
type Executor interface {
	// Run executes a single git command and returns its stdout. A
	// non-zero exit or a spawn failure is returned as a *CommandError.
	Run(ctx context.Context, args ...string) (string, error)

	// CurrentBranch returns the name of the checked out branch. On a
	// detached HEAD the full commit id is returned instead, so the value
	// can always be passed back to Checkout.
	CurrentBranch(ctx context.Context) (string, error)

	// Checkout switches the working tree to the given branch or commit.
	Checkout(ctx context.Context, ref string) error

	// SyncWithUpstream runs pull --rebase --autostash on the checked out
	// branch.
	SyncWithUpstream(ctx context.Context) error

	// ListBranches returns the raw lines of `git branch`, markers
	// included.
	ListBranches(ctx context.Context) ([]string, error)

	// Rebase rebases the checked out branch onto target with autostash.
	Rebase(ctx context.Context, target string) error

	// RebaseInProgress reports whether a rebase has stopped mid-way.
	RebaseInProgress(ctx context.Context) (bool, error)

	// DiffStat summarizes the changes branch carries on top of base.
	DiffStat(ctx context.Context, base, branch string) (*DiffStat, error)
}

// DiffStat is a summary of a three-dot diff between two refs.
type DiffStat struct {
	// Files is the number of files touched.
	Files int `json:"files"`

	// Added is the number of added lines.
	Added int `json:"added"`

	// Deleted is the number of deleted lines.
	Deleted int `json:"deleted"`
}
