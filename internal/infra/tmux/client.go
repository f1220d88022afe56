// Package tmux provides the tmux session backend.
package tmux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/sessiondir"
)

// DefaultServer is the private tmux server name (tmux -L).
const DefaultServer = "upfyn"

// commandTimeout bounds every non-interactive tmux invocation.
const commandTimeout = 10 * time.Second

// RunFunc runs an interactive command attached to the current terminal.
// It is used to allow testing of the Attach method.
type RunFunc func(cmd *exec.Cmd) error

// Client manages agent sessions on a private tmux server.
// Fields are ordered to minimize memory padding.
type Client struct {
	runFunc  RunFunc           // Runs attach (default: (*exec.Cmd).Run)
	sessions *sessiondir.Store // Bookkeeping dirs shared with the other backends
	server   string            // tmux -L server name
}

// NewClient creates a new tmux client on the given server name.
func NewClient(server string, sessions *sessiondir.Store) *Client {
	if server == "" {
		server = DefaultServer
	}
	return &Client{
		server:   server,
		sessions: sessions,
		runFunc:  func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// SetRunFunc sets the attach runner for testing purposes.
func (c *Client) SetRunFunc(fn RunFunc) {
	c.runFunc = fn
}

// Ensure Client implements domain.SessionBackend interface.
var _ domain.SessionBackend = (*Client)(nil)

// Available reports whether tmux is installed.
func Available() bool {
	return exec.Command("tmux", "-V").Run() == nil
}

// Kind returns domain.BackendTmux.
func (c *Client) Kind() domain.BackendKind {
	return domain.BackendTmux
}

// Capabilities reports that tmux sessions accept input and can be attached.
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Input: true, Attach: true}
}

// Spawn creates a detached session running req in a clean agent environment.
func (c *Client) Spawn(ctx context.Context, req domain.SpawnRequest) error {
	commandLine := req.CommandLine()
	script := fmt.Sprintf("unset %s 2>/dev/null; %s", strings.Join(domain.NestedAgentEnv, " "), commandLine)

	// tmux -L <server> new-session -d -s <name> -c <dir> sh -c <script>
	out, err := c.tmux(ctx,
		"new-session",
		"-d",
		"-s", req.Name,
		"-c", req.Dir,
		"sh", "-c", script,
	)
	if err != nil {
		return fmt.Errorf("%w: tmux new-session: %v: %s", domain.ErrSpawnFailure, err, strings.TrimSpace(out))
	}

	// Recorded so the session can be routed back to this backend
	if err := c.sessions.Prepare(req.Name, domain.BackendTmux, commandLine, false); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}
	return nil
}

// Exists checks if a session is running.
func (c *Client) Exists(name string) bool {
	// Exit code 1 means the session doesn't exist; any other failure
	// (no server, no tmux) means the same for our purposes
	_, err := c.tmux(context.Background(), "has-session", "-t", name)
	return err == nil
}

// Capture returns the last lines of the session pane, or "" on failure.
func (c *Client) Capture(name string, lines int) string {
	// -p: print to stdout; -S -<lines>: start <lines> lines back
	out, err := c.tmux(context.Background(),
		"capture-pane",
		"-t", name,
		"-p",
		"-S", fmt.Sprintf("-%d", lines),
	)
	if err != nil {
		return ""
	}
	return out
}

// SendKeys types text into the session followed by Enter.
func (c *Client) SendKeys(name, text string) error {
	// Keys are user input but tmux send-keys passes them as a single argument
	if out, err := c.tmux(context.Background(), "send-keys", "-t", name, text, "Enter"); err != nil {
		return fmt.Errorf("send keys: %w: %s", err, strings.TrimSpace(out))
	}
	return nil
}

// Kill terminates the session and removes its bookkeeping directory.
// Child processes of each pane get SIGTERM first so agents are not orphaned.
func (c *Client) Kill(name string) []string {
	var warnings []string

	if c.Exists(name) {
		if out, err := c.tmux(context.Background(), "list-panes", "-t", name, "-F", "#{pane_pid}"); err == nil {
			for _, pid := range strings.Fields(out) {
				// The process might have already exited or have no children
				_ = exec.Command("pkill", "-TERM", "-P", pid).Run() //nolint:gosec // pid from tmux output
			}
		}
		if out, err := c.tmux(context.Background(), "kill-session", "-t", name); err != nil && c.Exists(name) {
			warnings = append(warnings, fmt.Sprintf("tmux kill-session %s: %s", name, strings.TrimSpace(out)))
		}
	}

	if c.sessions.Has(name) {
		if err := c.sessions.Remove(name); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

// List returns the sessions on the private server.
func (c *Client) List() []domain.SessionInfo {
	out, err := c.tmux(context.Background(),
		"list-sessions",
		"-F", "#{session_name}\t#{session_activity}\t#{session_created}",
	)
	if err != nil {
		return nil
	}
	return parseSessionList(out)
}

// Attach connects the current terminal to the session until the user detaches.
func (c *Client) Attach(name string) error {
	if !c.Exists(name) {
		return domain.ErrNoSession
	}

	// #nosec G204 - session name comes from the task record
	cmd := exec.Command("tmux", "-L", c.server, "attach", "-t", name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := c.runFunc(cmd); err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	return nil
}

func (c *Client) tmux(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	// #nosec G204 - args are built by this package; names follow the session naming scheme
	cmd := exec.CommandContext(ctx, "tmux", append([]string{"-L", c.server}, args...)...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// parseSessionList parses `name\tactivity\tcreated` lines (unix seconds).
func parseSessionList(output string) []domain.SessionInfo {
	var sessions []domain.SessionInfo
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		info := domain.SessionInfo{Name: fields[0], Backend: domain.BackendTmux}
		if len(fields) > 1 {
			info.LastActivity = parseUnix(fields[1])
		}
		if len(fields) > 2 {
			info.Created = parseUnix(fields[2])
		}
		sessions = append(sessions, info)
	}
	return sessions
}

func parseUnix(s string) time.Time {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

