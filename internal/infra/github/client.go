// Package github implements the pull-request workflow through the gh CLI.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Client runs git and gh in the repository root.
type Client struct {
	executor domain.CommandExecutor
	repoRoot string
}

// NewClient creates a PR client for the repository at repoRoot.
func NewClient(executor domain.CommandExecutor, repoRoot string) *Client {
	return &Client{executor: executor, repoRoot: repoRoot}
}

// Ensure Client implements domain.PRService interface.
var _ domain.PRService = (*Client)(nil)

// Status returns the live state of PR number. Any failure is PRStateUnknown.
func (c *Client) Status(ctx context.Context, number int) domain.PRState {
	if number <= 0 {
		return domain.PRStateUnknown
	}
	out, err := c.executor.Execute(ctx, c.gh("pr", "view", strconv.Itoa(number), "--json", "state"))
	if err != nil {
		return domain.PRStateUnknown
	}
	var view struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(out, &view); err != nil {
		return domain.PRStateUnknown
	}
	return domain.ParsePRState(view.State)
}

// Create pushes head to origin and opens a PR against the default base.
func (c *Client) Create(ctx context.Context, title, body, head string) (*domain.PullRequest, error) {
	if out, err := c.executor.Execute(ctx, domain.NewCommand(c.repoRoot, "git", "push", "-u", "origin", head)); err != nil {
		return nil, fmt.Errorf("%w: git push: %v: %s", domain.ErrPRCreation, err, strings.TrimSpace(string(out)))
	}

	out, err := c.executor.Execute(ctx, c.gh("pr", "create",
		"--title", title,
		"--body", body,
		"--head", head,
	))
	if err != nil {
		return nil, fmt.Errorf("%w: gh pr create: %v: %s", domain.ErrPRCreation, err, strings.TrimSpace(string(out)))
	}

	url := lastLine(string(out))
	return &domain.PullRequest{URL: url, Number: numberFromURL(url)}, nil
}

// gh builds a gh invocation whose stdout is parsed; gh writes update
// notices and progress to stderr.
func (c *Client) gh(args ...string) *domain.ExecCommand {
	cmd := domain.NewCommand(c.repoRoot, "gh", args...)
	cmd.StdoutOnly = true
	return cmd
}

// lastLine returns the last non-empty line; gh prints the PR URL last.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// numberFromURL parses the trailing path segment, or 0.
func numberFromURL(url string) int {
	i := strings.LastIndex(url, "/")
	n, err := strconv.Atoi(url[i+1:])
	if err != nil {
		return 0
	}
	return n
}
