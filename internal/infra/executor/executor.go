// Package executor provides command execution functionality.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// DefaultTimeout bounds every external call made through the executor.
const DefaultTimeout = 2 * time.Minute

// Client implements domain.CommandExecutor interface.
type Client struct {
	timeout time.Duration
}

// NewClient creates a new command executor client.
// A zero timeout uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{timeout: timeout}
}

// Ensure Client implements domain.CommandExecutor and domain.AgentLocator interfaces.
var (
	_ domain.CommandExecutor = (*Client)(nil)
	_ domain.AgentLocator    = (*Client)(nil)
)

// Execute runs the command and returns its combined output, or only stdout
// when cmd.StdoutOnly is set and the command succeeds.
// The command is killed when the timeout elapses.
func (c *Client) Execute(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// #nosec G204 - cmd.Program and cmd.Args come from trusted UseCase code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	var (
		out []byte
		err error
	)
	if cmd.StdoutOnly {
		var stderr bytes.Buffer
		execCmd.Stderr = &stderr
		out, err = execCmd.Output()
		if err != nil {
			out = append(out, stderr.Bytes()...)
		}
	} else {
		out, err = execCmd.CombinedOutput()
	}
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("%s timed out after %s: %w", cmd.Program, c.timeout, ctx.Err())
	}
	return out, err
}

// IsAvailable reports whether command is found on PATH.
func (c *Client) IsAvailable(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
