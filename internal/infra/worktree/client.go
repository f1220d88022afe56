// Package worktree provides git worktree operations.
package worktree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// DefaultGitTimeout bounds every git call made by the client.
const DefaultGitTimeout = 2 * time.Minute

// ScriptRunner runs the project init script inside a new worktree.
type ScriptRunner interface {
	Run(dir, script string) error
}

// Client manages the task worktrees of one repository.
type Client struct {
	runner     ScriptRunner
	repoRoot   string // Main repository root
	gitTimeout time.Duration
}

// NewClient creates a new worktree client.
// Worktrees are created under <repoRoot>/.upfyn/worktrees.
func NewClient(repoRoot string, runner ScriptRunner) *Client {
	return &Client{
		repoRoot:   repoRoot,
		runner:     runner,
		gitTimeout: DefaultGitTimeout,
	}
}

// Ensure Client implements domain.WorktreeManager interface.
var _ domain.WorktreeManager = (*Client)(nil)

// Path returns the worktree path for slug.
func (c *Client) Path(slug string) string {
	return domain.WorktreePath(c.repoRoot, slug)
}

// Create creates a worktree for slug on a fresh task/<slug> branch cut from the main line.
// An existing valid worktree at the same path is returned unchanged with
// created false; callers must not remove a worktree they did not create.
func (c *Client) Create(slug string) (path string, created bool, err error) {
	path = c.Path(slug)

	// A worktree has its own .git file pointing at the common dir
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return path, false, nil
	}

	// Leftovers of a failed attempt
	if err := os.RemoveAll(path); err != nil {
		return "", false, fmt.Errorf("%w: remove partial worktree: %v", domain.ErrWorktreeCreation, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", false, fmt.Errorf("%w: create worktrees dir: %v", domain.ErrWorktreeCreation, err)
	}

	mainBranch := c.detectMainBranch()
	branch := domain.BranchName(slug)

	// Stale branch from a previous failed attempt; absence is fine
	_, _ = c.git("branch", "-D", branch)

	args := []string{"worktree", "add", path, "-b", branch, mainBranch}
	out, err := c.git(args...)
	if err != nil {
		if !strings.Contains(out, "already registered") {
			return "", false, fmt.Errorf("%w: %v: %s", domain.ErrWorktreeCreation, err, strings.TrimSpace(out))
		}
		// Registered but the directory is gone: prune and retry once
		if pruneOut, pruneErr := c.git("worktree", "prune"); pruneErr != nil {
			return "", false, fmt.Errorf("%w: prune stale worktrees: %v: %s", domain.ErrWorktreeCreation, pruneErr, strings.TrimSpace(pruneOut))
		}
		_, _ = c.git("branch", "-D", branch)
		if out, err = c.git(args...); err != nil {
			return "", false, fmt.Errorf("%w: after prune: %v: %s", domain.ErrWorktreeCreation, err, strings.TrimSpace(out))
		}
	}

	return path, true, nil
}

// Initialize copies the listed files from the repository root into the worktree
// and runs initScript there. Problems are returned as warnings.
func (c *Client) Initialize(worktreePath string, copyFiles []string, initScript string) []string {
	var warnings []string

	for _, name := range copyFiles {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src := filepath.Join(c.repoRoot, name)
		dst := filepath.Join(worktreePath, name)

		info, err := os.Stat(src)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("copy_files: '%s' not found in project root, skipping", name))
			continue
		}
		if info.IsDir() {
			warnings = append(warnings, fmt.Sprintf("copy_files: '%s' is a directory, only individual files are supported", name))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to create directory for '%s': %v", name, err))
			continue
		}
		if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to copy '%s' to worktree: %v", name, err))
		}
	}

	if script := strings.TrimSpace(initScript); script != "" && c.runner != nil {
		if err := c.runner.Run(worktreePath, script); err != nil {
			warnings = append(warnings, fmt.Sprintf("init_script failed: %v", err))
		}
	}

	return warnings
}

// Remove force-removes the worktree for slug, falling back to prune.
// The task branch is kept.
func (c *Client) Remove(slug string) []string {
	path := c.Path(slug)
	out, err := c.git("worktree", "remove", path, "--force")
	if err == nil {
		return nil
	}
	warnings := []string{fmt.Sprintf("worktree remove %s: %s", slug, firstLine(out, err))}
	if pruneOut, pruneErr := c.git("worktree", "prune"); pruneErr != nil {
		warnings = append(warnings, fmt.Sprintf("worktree prune: %s", firstLine(pruneOut, pruneErr)))
	}
	return warnings
}

// detectMainBranch returns main, else master, else the current branch.
func (c *Client) detectMainBranch() string {
	for _, b := range []string{"main", "master"} {
		if _, err := c.git("rev-parse", "--verify", "--quiet", b); err == nil {
			return b
		}
	}
	out, err := c.git("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "HEAD"
	}
	return strings.TrimSpace(out)
}

// git runs a git command in the repository root, killing it after gitTimeout.
func (c *Client) git(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.repoRoot
	// Hooks spawned by git may hold the output pipe open after the kill.
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return string(out), fmt.Errorf("git %s timed out after %s: %w", args[0], c.gitTimeout, ctx.Err())
	}
	return string(out), err
}

func firstLine(out string, err error) string {
	if s := strings.TrimSpace(out); s != "" {
		line, _, _ := strings.Cut(s, "\n")
		return line
	}
	return err.Error()
}

func copyFile(src, dst string, perm os.FileMode) (err error) {
	in, err := os.Open(src) //nolint:gosec // path comes from project config
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // destination inside the worktree
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
