package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/commands"
	"github.com/roasbeef/rebase-branch/config"
	"github.com/roasbeef/rebase-branch/output"
	"github.com/roasbeef/rebase-branch/testutil"
	"github.com/stretchr/testify/require"
)

// runCmd executes the root command with args and returns stdout, stderr
// and the error. A private config file is always used.
func runCmd(t *testing.T, configPath string, args ...string) (string, string,
	error) {

	t.Helper()

	cmd := commands.NewRootCmd()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath, "--no-color"},
		args...))

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "config.json")
}

func TestNewRootCmd(t *testing.T) {
	cmd := commands.NewRootCmd()
	require.NotNil(t, cmd)
	require.Equal(t, "git-rebase-branch", cmd.Use)

	cmdNames := make(map[string]bool)
	for _, c := range cmd.Commands() {
		cmdNames[c.Name()] = true
	}
	require.True(t, cmdNames["version"])

	for _, name := range []string{
		"target", "except", "only", "set-default", "show-default",
		"set-except", "remove-except", "show-except", "show-all",
		"restore", "skip-sync", "dry-run",
	} {
		require.NotNil(t, cmd.Flags().Lookup(name), name)
	}

	for short, long := range map[string]string{
		"t": "target", "e": "except", "o": "only",
	} {
		flag := cmd.Flags().ShorthandLookup(short)
		require.NotNil(t, flag, short)
		require.Equal(t, long, flag.Name)
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := runCmd(t, tempConfig(t), "version")
	require.NoError(t, err)
	require.Equal(t, "git-rebase-branch "+commands.Version+"\n", stdout)
}

func TestHelpOutput(t *testing.T) {
	stdout, _, err := runCmd(t, tempConfig(t), "--help")
	require.NoError(t, err)
	require.Contains(t, stdout, "--set-default")
	require.Contains(t, stdout, "git rebase --abort")
	require.Contains(t, stdout, `'["br1", "br2"]'`)
	require.Contains(t, stdout, "next to the binary")
	require.Contains(t, stdout, "GIT_REBASE_BRANCH_CONFIG")
}

func TestUnknownFlag(t *testing.T) {
	_, _, err := runCmd(t, tempConfig(t), "--bogus")
	require.Error(t, err)
	require.Contains(t, errors.FlattenHints(err), "--help")
}

func TestPositionalArgsRejected(t *testing.T) {
	_, _, err := runCmd(t, tempConfig(t), "develop")
	require.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	path := tempConfig(t)

	t.Run("show defaults on first run", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--show-default")
		require.NoError(t, err)
		require.Equal(t, "master\n", stdout)

		stdout, _, err = runCmd(t, path, "--show-all")
		require.NoError(t, err)
		require.Equal(t, `{"default":"master","except":[]}`+"\n", stdout)

		// Queries never create the file.
		_, err = os.Stat(path)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("set default", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--set-default", "develop")
		require.NoError(t, err)
		require.Equal(t, "default branch has been set to develop\n", stdout)

		stdout, _, err = runCmd(t, path, "--show-default")
		require.NoError(t, err)
		require.Equal(t, "develop\n", stdout)
	})

	t.Run("empty default rejected", func(t *testing.T) {
		_, _, err := runCmd(t, path, "--set-default", " ")
		require.Error(t, err)
		require.True(t, errors.Is(err, config.ErrEmptyBranch))

		stdout, _, err := runCmd(t, path, "--show-default")
		require.NoError(t, err)
		require.Equal(t, "develop\n", stdout)
	})

	t.Run("set except in every list form", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--set-except", "br1,br2")
		require.NoError(t, err)
		require.Equal(t, "added to except list: br1, br2\n", stdout)

		_, _, err = runCmd(t, path, "--set-except", `["br2", "br3"]`)
		require.NoError(t, err)

		_, _, err = runCmd(t, path, "--set-except", "br3 br4")
		require.NoError(t, err)

		stdout, _, err = runCmd(t, path, "--show-except")
		require.NoError(t, err)
		require.Equal(t, "br1\nbr2\nbr3\nbr4\n", stdout)
	})

	t.Run("set except unchanged", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--set-except", "br1")
		require.NoError(t, err)
		require.Equal(t, "except list unchanged\n", stdout)
	})

	t.Run("remove except", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--remove-except", "br2 br4 nope")
		require.NoError(t, err)
		require.Equal(t, "removed from except list: br2, br4\n", stdout)

		stdout, _, err = runCmd(t, path, "--show-except", "--json")
		require.NoError(t, err)
		require.Equal(t, `["br1","br3"]`+"\n", stdout)
	})

	t.Run("show all", func(t *testing.T) {
		stdout, _, err := runCmd(t, path, "--show-all")
		require.NoError(t, err)
		require.Equal(t,
			`{"default":"develop","except":["br1","br3"]}`+"\n", stdout)
	})
}

func TestConfigFlagPrecedence(t *testing.T) {
	path := tempConfig(t)

	// A set beats a show, and only one action runs.
	stdout, _, err := runCmd(t, path,
		"--show-default", "--set-default", "develop",
		"--set-except", "br1")
	require.NoError(t, err)
	require.Equal(t, "default branch has been set to develop\n", stdout)

	stdout, _, err = runCmd(t, path, "--show-except", "--show-all")
	require.NoError(t, err)
	require.Empty(t, stdout)
}

func TestConfigCorrupt(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, _, err := runCmd(t, path, "--show-default")
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrConfigIO))
	require.Contains(t, errors.FlattenHints(err), path)
}

// setupRepo returns a local clone with feature-a and feature-b, and a peer
// that has pushed one commit local has not seen.
func setupRepo(t *testing.T) (*testutil.GitTestRepo, *testutil.GitTestRepo) {
	t.Helper()

	local, peer := testutil.NewClonedTestRepos(t)

	local.CreateBranch("feature-a")
	local.CommitFile("a.txt", "a\n", "feature a")

	local.CheckoutBranch(testutil.DefaultBranch)
	local.CreateBranch("feature-b")
	local.CommitFile("b.txt", "b\n", "feature b")

	peer.CommitFile("upstream.txt", "upstream\n", "upstream commit")
	peer.Git("push", "origin", testutil.DefaultBranch)

	return local, peer
}

func TestRunRebase(t *testing.T) {
	local, peer := setupRepo(t)

	stdout, stderr, err := runCmd(t, tempConfig(t), "-C", local.Dir)
	require.NoError(t, err)
	require.Empty(t, stderr)

	require.Contains(t, stdout, "checkout to master\n")
	require.Contains(t, stdout, "execute git pull --rebase --autostash\n")
	require.Contains(t, stdout, "checkout back to feature-b\n")
	require.Contains(t, stdout, "[feature-a] --> checkout to feature-a\n")
	require.Contains(t, stdout, "[feature-a] --> rebase master completed")
	require.Contains(t, stdout, "~~~ All Completed ~~~")

	upstream := peer.Rev("HEAD")
	require.True(t, local.IsAncestor(upstream, "feature-a"))
	require.True(t, local.IsAncestor(upstream, "feature-b"))
	require.Equal(t, "feature-b", local.CurrentBranch())
}

func TestRunRebaseExcept(t *testing.T) {
	local, peer := setupRepo(t)
	path := tempConfig(t)

	_, _, err := runCmd(t, path, "--set-except", "feature-a")
	require.NoError(t, err)

	stdout, _, err := runCmd(t, path, "-C", local.Dir)
	require.NoError(t, err)
	require.Contains(t, stdout, "1 branch(es) to rebase onto master: feature-b")

	upstream := peer.Rev("HEAD")
	require.False(t, local.IsAncestor(upstream, "feature-a"))
	require.True(t, local.IsAncestor(upstream, "feature-b"))

	// The CLI list is unioned with the persisted one.
	_, _, err = runCmd(t, path, "-C", local.Dir, "-e", "feature-b")
	require.NoError(t, err)
}

func TestRunRebaseOnlyJSON(t *testing.T) {
	local, peer := setupRepo(t)

	stdout, _, err := runCmd(t, tempConfig(t),
		"-C", local.Dir, "--json", "-o", `["feature-a"]`)
	require.NoError(t, err)

	var got output.ResultOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.True(t, got.Success)
	require.Equal(t, "master", got.Target)
	require.Equal(t, []string{"feature-a"}, got.Selected)
	require.Len(t, got.Branches, 1)
	require.True(t, got.Restored)

	require.True(t, local.IsAncestor(peer.Rev("HEAD"), "feature-a"))
}

func TestRunRebaseDryRun(t *testing.T) {
	local, peer := setupRepo(t)
	before := local.Rev("feature-a")

	stdout, _, err := runCmd(t, tempConfig(t), "-C", local.Dir, "--dry-run")
	require.NoError(t, err)
	require.Equal(t, "2 branch(es) to rebase onto master: feature-a, feature-b\n"+
		"Dry run: nothing was changed. Current branch is feature-b.\n",
		stdout)

	require.Equal(t, before, local.Rev("feature-a"))
	require.False(t, local.IsAncestor(peer.Rev("HEAD"), "master"))
}

func TestRunRebaseTargetFromConfig(t *testing.T) {
	local, _ := setupRepo(t)
	path := tempConfig(t)

	_, _, err := runCmd(t, path, "--set-default", "feature-b")
	require.NoError(t, err)

	stdout, _, err := runCmd(t, path,
		"-C", local.Dir, "--skip-sync", "-e", "master")
	require.NoError(t, err)
	require.Contains(t, stdout,
		"1 branch(es) to rebase onto feature-b: feature-a")
	require.NotContains(t, stdout, "git pull")

	require.True(t, local.IsAncestor("feature-b", "feature-a"))
}

func TestRunRebaseConflict(t *testing.T) {
	local, _ := setupRepo(t)

	local.CheckoutBranch(testutil.DefaultBranch)
	local.Git("pull", "--rebase")
	local.CommitFile("a.txt", "conflict\n", "conflicting master commit")
	local.CheckoutBranch("feature-b")

	stdout, stderr, err := runCmd(t, tempConfig(t),
		"-C", local.Dir, "--skip-sync")
	require.Error(t, err)

	require.Contains(t, stdout, "[feature-a] --> rebase master failed")
	require.Contains(t, stdout, "Not attempted: feature-b")
	require.Contains(t, stderr, "Rebase failed, please check for conflicts.")
	require.Contains(t, stderr, "git rebase --abort")
	require.Contains(t, stderr, "git rebase --continue")
	require.Contains(t, stderr, "Details:")

	require.True(t, local.RebaseInProgress())
	local.Git("rebase", "--abort")
}

func TestRunRebaseBadRestore(t *testing.T) {
	_, _, err := runCmd(t, tempConfig(t), "--restore", "sometimes")
	require.Error(t, err)
	require.Contains(t, errors.FlattenHints(err), "--restore always")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := commands.NewLogger(&buf, "debug", "json")
	require.NoError(t, err)

	logger.Debug("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "value", entry["key"])
	require.Equal(t, "git-rebase-branch", entry["component"])

	buf.Reset()
	logger, err = commands.NewLogger(&buf, "", "")
	require.NoError(t, err)
	logger.Info("quiet")
	require.Empty(t, buf.String())

	_, err = commands.NewLogger(&buf, "loud", "text")
	require.Error(t, err)

	_, err = commands.NewLogger(&buf, "info", "xml")
	require.Error(t, err)
}
