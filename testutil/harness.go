// Package testutil provides test helpers for git repository testing.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultBranch is the initial branch of every repo created by the harness.
const DefaultBranch = "master"

// GitTestRepo creates a temporary git repository for testing.
type GitTestRepo struct {
	t   *testing.T
	Dir string
}

// NewGitTestRepo creates a new test repo with git initialized.
func NewGitTestRepo(t *testing.T) *GitTestRepo {
	t.Helper()

	repo := newEmptyRepo(t)
	repo.Git("-c", "init.defaultBranch="+DefaultBranch, "init")
	repo.configure()

	return repo
}

// NewClonedTestRepos creates a bare upstream repository holding a single
// commit on DefaultBranch and returns two independent clones of it. The
// first is meant to be operated on, the second to push upstream changes
// the first has not yet seen.
func NewClonedTestRepos(t *testing.T) (*GitTestRepo, *GitTestRepo) {
	t.Helper()

	bare := newEmptyRepo(t)
	bare.Git("-c", "init.defaultBranch="+DefaultBranch, "init", "--bare")

	seed := cloneRepo(t, bare.Dir)
	seed.Git("symbolic-ref", "HEAD", "refs/heads/"+DefaultBranch)
	seed.WriteFile("README", "seed\n")
	seed.CommitAll("Initial commit")
	seed.Git("push", "-u", "origin", DefaultBranch)

	local := cloneRepo(t, bare.Dir)
	peer := cloneRepo(t, bare.Dir)

	return local, peer
}

func newEmptyRepo(t *testing.T) *GitTestRepo {
	t.Helper()

	dir, err := os.MkdirTemp("", "rebase-branch-test-*")
	require.NoError(t, err)

	repo := &GitTestRepo{t: t, Dir: dir}
	t.Cleanup(repo.cleanup)

	return repo
}

func cloneRepo(t *testing.T, remote string) *GitTestRepo {
	t.Helper()

	repo := newEmptyRepo(t)
	repo.Git("clone", "--quiet", remote, ".")
	repo.configure()

	return repo
}

func (r *GitTestRepo) configure() {
	r.t.Helper()

	r.Git("config", "user.email", "test@test.com")
	r.Git("config", "user.name", "Test User")
	r.Git("config", "commit.gpgsign", "false")
}

func (r *GitTestRepo) cleanup() {
	os.RemoveAll(r.Dir)
}

// Git runs a git command in the test repo.
func (r *GitTestRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}

	return string(out)
}

// GitMayFail runs a git command that may fail, returning the error.
func (r *GitTestRepo) GitMayFail(args ...string) (string, error) {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()

	return string(out), err
}

// WriteFile creates or overwrites a file in the repo.
func (r *GitTestRepo) WriteFile(path, content string) {
	r.t.Helper()

	fullPath := filepath.Join(r.Dir, path)
	dir := filepath.Dir(fullPath)

	err := os.MkdirAll(dir, 0755)
	require.NoError(r.t, err)

	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(r.t, err)
}

// ReadFile reads a file from the repo.
func (r *GitTestRepo) ReadFile(path string) string {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Dir, path))
	require.NoError(r.t, err)

	return string(data)
}

// CommitAll stages and commits all changes.
func (r *GitTestRepo) CommitAll(msg string) {
	r.t.Helper()

	r.Git("add", "-A")
	r.Git("commit", "-m", msg)
}

// CommitFile writes a single file and commits it.
func (r *GitTestRepo) CommitFile(path, content, msg string) {
	r.t.Helper()

	r.WriteFile(path, content)
	r.CommitAll(msg)
}

// CreateBranch creates a branch at HEAD and checks it out.
func (r *GitTestRepo) CreateBranch(name string) {
	r.t.Helper()

	r.Git("checkout", "-b", name)
}

// CheckoutBranch switches to an existing branch.
func (r *GitTestRepo) CheckoutBranch(name string) {
	r.t.Helper()

	r.Git("checkout", name)
}

// CurrentBranch returns the checked out branch name.
func (r *GitTestRepo) CurrentBranch() string {
	r.t.Helper()

	return strings.TrimSpace(r.Git("rev-parse", "--abbrev-ref", "HEAD"))
}

// Rev resolves a ref to its full commit id.
func (r *GitTestRepo) Rev(ref string) string {
	r.t.Helper()

	return strings.TrimSpace(r.Git("rev-parse", ref))
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (r *GitTestRepo) IsAncestor(ancestor, descendant string) bool {
	r.t.Helper()

	_, err := r.GitMayFail("merge-base", "--is-ancestor", ancestor, descendant)

	return err == nil
}

// RebaseInProgress reports whether a rebase is stopped in the repo.
func (r *GitTestRepo) RebaseInProgress() bool {
	r.t.Helper()

	for _, name := range []string{"rebase-merge", "rebase-apply"} {
		path := strings.TrimSpace(r.Git("rev-parse", "--git-path", name))
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Dir, path)
		}

		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	return false
}
