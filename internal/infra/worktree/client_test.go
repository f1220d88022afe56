package worktree

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/runner"
)

// setupTestRepo creates a temporary git repository for testing.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	repoRoot := t.TempDir()
	for _, args := range [][]string{
		{"init", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	} {
		runGit(t, repoRoot, args...)
	}

	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "README.md"), []byte("# Test"), 0o644))
	runGit(t, repoRoot, "add", ".")
	runGit(t, repoRoot, "commit", "-m", "Initial commit")

	return repoRoot
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
	return string(out)
}

type failingRunner struct{}

func (failingRunner) Run(_, _ string) error { return errors.New("exit status 1") }

func TestClient_Path(t *testing.T) {
	client := NewClient("/repo", nil)
	assert.Equal(t, filepath.Join("/repo", ".upfyn", "worktrees", "fix-login-bug"), client.Path("fix-login-bug"))
}

func TestClient_Create_NewBranch(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, nil)

	path, _, err := client.Create("fix-login-bug")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoRoot, ".upfyn", "worktrees", "fix-login-bug"), path)
	assert.FileExists(t, filepath.Join(path, "README.md"))
	assert.Equal(t, "task/fix-login-bug\n", runGit(t, path, "rev-parse", "--abbrev-ref", "HEAD"))
}

func TestClient_Create_Idempotent(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, nil)

	path1, created, err := client.Create("same")
	require.NoError(t, err)
	assert.True(t, created)
	marker := filepath.Join(path1, "work-in-progress.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep"), 0o644))

	path2, created, err := client.Create("same")

	require.NoError(t, err)
	assert.False(t, created, "a reused worktree must be reported as not created")
	assert.Equal(t, path1, path2)
	assert.FileExists(t, marker, "existing worktree must be reused, not recreated")
}

func TestClient_Create_StaleBranchAndPartialDir(t *testing.T) {
	repoRoot := setupTestRepo(t)
	runGit(t, repoRoot, "branch", "task/stale")
	partial := filepath.Join(repoRoot, ".upfyn", "worktrees", "stale")
	require.NoError(t, os.MkdirAll(partial, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(partial, "junk"), []byte("x"), 0o644))

	client := NewClient(repoRoot, nil)
	path, _, err := client.Create("stale")

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(path, "junk"))
	assert.FileExists(t, filepath.Join(path, ".git"))
}

func TestClient_Create_OrphanedWorktree(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, nil)

	path, _, err := client.Create("orphan")
	require.NoError(t, err)

	// Directory removed behind git's back; registration remains
	require.NoError(t, os.RemoveAll(path))

	path2, created, err := client.Create("orphan")
	require.NoError(t, err, "Create should recover from an orphaned registration")
	assert.True(t, created)
	assert.Equal(t, path, path2)
	assert.DirExists(t, path2)
}

func TestClient_Create_MasterFallback(t *testing.T) {
	repoRoot := t.TempDir()
	runGit(t, repoRoot, "init", "-b", "master")
	runGit(t, repoRoot, "config", "user.email", "test@example.com")
	runGit(t, repoRoot, "config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "a.txt"), []byte("a"), 0o644))
	runGit(t, repoRoot, "add", ".")
	runGit(t, repoRoot, "commit", "-m", "init")

	client := NewClient(repoRoot, nil)
	path, _, err := client.Create("on-master")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "a.txt"))
}

func TestClient_Create_NotARepo(t *testing.T) {
	client := NewClient(t.TempDir(), nil)

	_, _, err := client.Create("anything")

	assert.ErrorIs(t, err, domain.ErrWorktreeCreation)
}

func TestClient_Initialize_CopyFiles(t *testing.T) {
	repoRoot := setupTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, ".env"), []byte("SECRET=1"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "config", "local.json"), []byte("{}"), 0o644))

	client := NewClient(repoRoot, nil)
	wtPath, _, err := client.Create("copy")
	require.NoError(t, err)

	warnings := client.Initialize(wtPath, []string{".env", "missing.txt", "config/local.json", "config"}, "")

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "missing.txt")
	assert.Contains(t, warnings[0], "not found in project root")
	assert.Contains(t, warnings[1], "is a directory")

	content, err := os.ReadFile(filepath.Join(wtPath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "SECRET=1", string(content))
	assert.FileExists(t, filepath.Join(wtPath, "config", "local.json"))
}

func TestClient_Initialize_ExactlyOneWarningForMissingFile(t *testing.T) {
	repoRoot := setupTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, ".env"), []byte("A=1"), 0o600))
	client := NewClient(repoRoot, nil)
	wtPath, _, err := client.Create("env")
	require.NoError(t, err)

	warnings := client.Initialize(wtPath, domain.SplitCopyFiles(".env,missing.txt"), "")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing.txt")
	assert.FileExists(t, filepath.Join(wtPath, ".env"))
}

func TestClient_Initialize_InitScript(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, runner.NewClient(0))
	wtPath, _, err := client.Create("script")
	require.NoError(t, err)

	warnings := client.Initialize(wtPath, nil, "echo 'test' > setup_test.txt")

	assert.Empty(t, warnings)
	content, err := os.ReadFile(filepath.Join(wtPath, "setup_test.txt"))
	require.NoError(t, err)
	assert.Equal(t, "test\n", string(content))
}

func TestClient_Initialize_InitScriptFailure(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, failingRunner{})
	wtPath, _, err := client.Create("fails")
	require.NoError(t, err)

	warnings := client.Initialize(wtPath, nil, "false")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "init_script failed")
}

func TestClient_Remove(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, nil)
	path, _, err := client.Create("remove-me")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "dirty.txt"), []byte("x"), 0o644))

	warnings := client.Remove("remove-me")

	assert.Empty(t, warnings)
	assert.NoDirExists(t, path)
	// The branch is preserved
	runGit(t, repoRoot, "rev-parse", "--verify", "task/remove-me")
}

func TestClient_Remove_NotFound(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client := NewClient(repoRoot, nil)

	warnings := client.Remove("never-created")

	assert.NotEmpty(t, warnings)
}

func TestClient_Create_GitTimeout(t *testing.T) {
	repoRoot := setupTestRepo(t)
	hooks := filepath.Join(repoRoot, "hooks")
	require.NoError(t, os.MkdirAll(hooks, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hooks, "post-checkout"), []byte("#!/bin/sh\nexec sleep 10\n"), 0o755))
	runGit(t, repoRoot, "config", "core.hooksPath", hooks)

	client := NewClient(repoRoot, nil)
	client.gitTimeout = 500 * time.Millisecond

	start := time.Now()
	_, created, err := client.Create("hangs")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorktreeCreation)
	assert.False(t, created)
	assert.Less(t, time.Since(start), 8*time.Second)
}
