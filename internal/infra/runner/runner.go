// Package runner provides script execution functionality.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const waitDelay = 2 * time.Second

// Client runs shell scripts with a bounded timeout.
type Client struct {
	timeout time.Duration
}

// NewClient creates a new script runner client.
func NewClient(timeout time.Duration) *Client {
	return &Client{timeout: timeout}
}

// Run executes a script in a directory via sh -c.
func (c *Client) Run(dir, script string) error {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// G204: script comes from the project config file
	cmd := exec.CommandContext(ctx, "sh", "-c", script) //nolint:gosec // script from trusted config
	cmd.Dir = dir
	// Background children of the script may hold the output pipe open.
	cmd.WaitDelay = waitDelay

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("execute script: %w: %s", err, string(out))
	}

	return nil
}
