// Package shellproc provides the detached background-process session backend.
//
// It is the fallback when neither tmux nor Windows Terminal is available:
// the agent runs in its own process group with output appended to the
// session log, and liveness is the alive marker plus a process probe.
package shellproc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/sessiondir"
)

// Client runs sessions as detached shell processes.
type Client struct {
	sessions *sessiondir.Store
	windows  bool
}

// NewClient creates a new shell backend client.
func NewClient(sessions *sessiondir.Store) *Client {
	return &Client{sessions: sessions, windows: runtime.GOOS == "windows"}
}

// Ensure Client implements domain.SessionBackend interface.
var _ domain.SessionBackend = (*Client)(nil)

// Kind returns domain.BackendShell.
func (c *Client) Kind() domain.BackendKind {
	return domain.BackendShell
}

// Capabilities reports no input injection and no attach.
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{}
}

// Spawn starts the command detached, appending output to the session log.
// The alive marker is removed when the process exits.
func (c *Client) Spawn(_ context.Context, req domain.SpawnRequest) error {
	commandLine := c.commandLine(req)
	if err := c.sessions.Prepare(req.Name, domain.BackendShell, commandLine, true); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}

	logFile, err := os.OpenFile(c.sessions.LogPath(req.Name), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open log: %v", domain.ErrSpawnFailure, err)
	}

	shell, args := c.shellArgs(commandLine)
	// #nosec G204 - command line is built from the agent catalogue
	cmd := exec.Command(shell, args...)
	cmd.Dir = req.Dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return fmt.Errorf("%w: start %s: %v", domain.ErrSpawnFailure, shell, err)
	}
	pid := cmd.Process.Pid

	if err := c.sessions.SetPID(req.Name, pid); err != nil {
		_ = terminate(pid)
		_ = logFile.Close()
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}
	if err := c.sessions.MarkAlive(req.Name); err != nil {
		_ = terminate(pid)
		_ = logFile.Close()
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}

	// Reap the child so it does not linger as a zombie while we run
	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
		c.sessions.ClearAliveFor(req.Name, pid)
	}()

	return nil
}

// Exists reports whether the session is marked alive and its process still runs.
// A stale marker is removed.
func (c *Client) Exists(name string) bool {
	if !c.sessions.IsAlive(name) {
		return false
	}
	pid, ok := c.sessions.PID(name)
	if ok && processAlive(pid) {
		return true
	}
	c.sessions.ClearAlive(name)
	return false
}

// Capture returns the tail of the session log, or "" without one.
func (c *Client) Capture(name string, lines int) string {
	out, _ := c.sessions.Tail(name, lines)
	return out
}

// SendKeys is a no-op: the detached process has no attached stdin.
func (c *Client) SendKeys(_, _ string) error {
	return nil
}

// Kill terminates the process group and removes the session directory.
func (c *Client) Kill(name string) []string {
	var warnings []string
	if pid, ok := c.sessions.PID(name); ok && processAlive(pid) {
		if err := terminate(pid); err != nil {
			warnings = append(warnings, fmt.Sprintf("terminate %d: %v", pid, err))
		}
	}
	if err := c.sessions.Remove(name); err != nil {
		warnings = append(warnings, err.Error())
	}
	return warnings
}

// List returns alive sessions created by this backend.
func (c *Client) List() []domain.SessionInfo {
	infos := c.sessions.List(domain.BackendShell)
	live := infos[:0]
	for _, info := range infos {
		if c.Exists(info.Name) {
			live = append(live, info)
		}
	}
	return live
}

// Attach is unsupported for background processes.
func (c *Client) Attach(_ string) error {
	return domain.ErrAttachUnsupported
}

func (c *Client) commandLine(req domain.SpawnRequest) string {
	if !c.windows {
		return req.CommandLine()
	}
	var b strings.Builder
	b.WriteString(req.Command)
	for _, a := range req.Args {
		b.WriteByte(' ')
		b.WriteString(domain.CmdQuote(a))
	}
	return b.String()
}

// shellArgs wraps commandLine so nested agent variables are cleared first.
func (c *Client) shellArgs(commandLine string) (string, []string) {
	if c.windows {
		var b strings.Builder
		for _, env := range domain.NestedAgentEnv {
			b.WriteString("set " + env + "= && ")
		}
		b.WriteString(domain.CmdSingleLine(commandLine))
		return "cmd", []string{"/c", b.String()}
	}
	script := fmt.Sprintf("unset %s 2>/dev/null; %s", strings.Join(domain.NestedAgentEnv, " "), commandLine)
	return "sh", []string{"-c", script}
}
