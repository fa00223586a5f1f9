package rebase_test

import (
	"context"
	"strings"

	"github.com/roasbeef/rebase-branch/git"
)

// fakeExecutor is an in-memory git.Executor recording every call. It tracks
// the checked out branch and fails calls listed in failOn.
type fakeExecutor struct {
	current    string
	branches   []string
	failOn     map[string]error
	inProgress bool
	calls      []string

	// onSync runs at the start of SyncWithUpstream.
	onSync func()
}

func newFakeExecutor(current string, branches ...string) *fakeExecutor {
	return &fakeExecutor{
		current:  current,
		branches: branches,
		failOn:   make(map[string]error),
	}
}

func (f *fakeExecutor) call(args ...string) error {
	c := strings.Join(args, " ")
	f.calls = append(f.calls, c)

	return f.failOn[c]
}

func (f *fakeExecutor) Run(_ context.Context, args ...string) (string, error) {
	return "", f.call(args...)
}

func (f *fakeExecutor) CurrentBranch(context.Context) (string, error) {
	if err := f.call("current"); err != nil {
		return "", err
	}

	return f.current, nil
}

func (f *fakeExecutor) Checkout(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.call("checkout", ref); err != nil {
		return err
	}

	f.current = ref

	return nil
}

func (f *fakeExecutor) SyncWithUpstream(ctx context.Context) error {
	if f.onSync != nil {
		f.onSync()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return f.call("pull", f.current)
}

// ListBranches renders branches the way `git branch` does, marking the
// current one.
func (f *fakeExecutor) ListBranches(context.Context) ([]string, error) {
	if err := f.call("branch"); err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(f.branches))
	for _, b := range f.branches {
		if b == f.current {
			lines = append(lines, "* "+b)
		} else {
			lines = append(lines, "  "+b)
		}
	}

	return lines, nil
}

func (f *fakeExecutor) Rebase(_ context.Context, target string) error {
	err := f.call("rebase", f.current, target)
	if err != nil {
		f.inProgress = true
	}

	return err
}

func (f *fakeExecutor) RebaseInProgress(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return f.inProgress, nil
}

func (f *fakeExecutor) DiffStat(
	_ context.Context, base, branch string,
) (*git.DiffStat, error) {

	if err := f.call("diffstat", base, branch); err != nil {
		return nil, err
	}

	return &git.DiffStat{Files: 1, Added: 1}, nil
}

var _ git.Executor = (*fakeExecutor)(nil)
