// Package git provides git operations.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Client provides git operations.
type Client struct {
	repoRoot string // Main repository root (parent of the common .git)
}

// NewClient creates a new git client by detecting the repository root from the given directory.
// It handles both regular repositories and worktrees.
func NewClient(dir string) (*Client, error) {
	repoRoot, err := findGitRoot(dir)
	if err != nil {
		return nil, err
	}
	return &Client{repoRoot: repoRoot}, nil
}

// Ensure Client implements domain.Git interface.
var _ domain.Git = (*Client)(nil)

// RepoRoot returns the repository root directory.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// Diff returns `git diff base target`, or its diffstat when stat is true.
func (c *Client) Diff(ctx context.Context, base, target string, stat bool) (string, error) {
	args := []string{"diff", base, target}
	if stat {
		args = append(args, "--stat")
	}
	//nolint:gosec // refs are passed as arguments, not through a shell
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to diff %s..%s: %w: %s", base, target, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// RemoteURL returns the first configured URL of the named remote.
func (c *Client) RemoteURL(remote string) (string, error) {
	repo, err := gogit.PlainOpen(c.repoRoot)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	r, err := repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", remote, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no url", remote)
	}
	return urls[0], nil
}

// findGitRoot returns the main repository root (parent of the common .git
// directory) for dir. This works both in the main repository and inside worktrees.
func findGitRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--git-common-dir")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", domain.ErrNotGitRepository
	}
	gitDir := strings.TrimSpace(string(out))

	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	return filepath.Dir(filepath.Clean(gitDir)), nil
}
