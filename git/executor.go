package git

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// detachedHEAD is what rev-parse --abbrev-ref prints when HEAD points at a
// commit rather than a branch.
const detachedHEAD = "HEAD"

// ShellExecutor implements Executor by shelling out to git.
type ShellExecutor struct {
	// WorkDir is the working directory for git commands.
	// If empty, uses current directory.
	WorkDir string

	// Logger receives a debug record for every git invocation. If nil,
	// slog.Default is used.
	Logger *slog.Logger
}

// NewShellExecutor creates a new ShellExecutor.
func NewShellExecutor(workDir string) *ShellExecutor {
	return &ShellExecutor{WorkDir: workDir}
}

func (e *ShellExecutor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}

	return e.Logger
}

// Run executes a git command and returns stdout.
func (e *ShellExecutor) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.WorkDir != "" {
		cmd.Dir = e.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger().DebugContext(ctx, "running git",
		"args", strings.Join(args, " "), "dir", e.WorkDir)

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     args,
			Stderr:   stderr.String(),
			ExitCode: -1,
			Err:      err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}

		e.logger().DebugContext(ctx, "git failed",
			"args", strings.Join(args, " "),
			"exit_code", cmdErr.ExitCode)

		return "", cmdErr
	}

	return stdout.String(), nil
}

// CurrentBranch returns the checked out branch, or the commit id on a
// detached HEAD.
func (e *ShellExecutor) CurrentBranch(ctx context.Context) (string, error) {
	output, err := e.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(output)
	if name != detachedHEAD {
		return name, nil
	}

	output, err = e.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// Checkout switches to the given branch or commit.
func (e *ShellExecutor) Checkout(ctx context.Context, ref string) error {
	_, err := e.Run(ctx, "checkout", ref)

	return err
}

// SyncWithUpstream rebases the checked out branch onto its upstream.
func (e *ShellExecutor) SyncWithUpstream(ctx context.Context) error {
	_, err := e.Run(ctx, "pull", "--rebase", "--autostash")

	return err
}

// ListBranches returns the non-empty lines of `git branch`.
func (e *ShellExecutor) ListBranches(ctx context.Context) ([]string, error) {
	output, err := e.Run(ctx, "branch", "--no-color")
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// Rebase rebases the checked out branch onto target.
func (e *ShellExecutor) Rebase(ctx context.Context, target string) error {
	_, err := e.Run(ctx, "rebase", target, "--autostash")

	return err
}

// RebaseInProgress reports whether git has a stopped rebase recorded in
// the repository's git dir.
func (e *ShellExecutor) RebaseInProgress(ctx context.Context) (bool, error) {
	for _, name := range []string{"rebase-merge", "rebase-apply"} {
		output, err := e.Run(ctx, "rev-parse", "--git-path", name)
		if err != nil {
			return false, err
		}

		path := strings.TrimSpace(output)
		if !filepath.IsAbs(path) && e.WorkDir != "" {
			path = filepath.Join(e.WorkDir, path)
		}

		_, err = os.Stat(path)
		switch {
		case err == nil:
			return true, nil

		case !os.IsNotExist(err):
			return false, errors.Wrapf(err, "stat %s", path)
		}
	}

	return false, nil
}

// DiffStat summarizes base...branch.
func (e *ShellExecutor) DiffStat(
	ctx context.Context, base, branch string,
) (*DiffStat, error) {

	output, err := e.Run(ctx, "diff", "--no-color", "--no-ext-diff",
		base+"..."+branch)
	if err != nil {
		return nil, err
	}

	return ParseDiffStat(output)
}

// Compile-time check that ShellExecutor implements Executor.
var _ Executor = (*ShellExecutor)(nil)
