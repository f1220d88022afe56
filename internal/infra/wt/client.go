// Package wt provides the Windows Terminal tab session backend.
//
// A session is a new terminal tab running a generated run.cmd wrapper.
// There is no programmatic input or attach; liveness is tracked with the
// alive marker in the session directory.
package wt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/sessiondir"
)

// CaptureHint is returned by Capture when the session has no log file.
const CaptureHint = "  Session running in a separate terminal tab.\n  Switch to that tab to interact with the agent.\n"

// StartFunc starts a detached process and returns its pid.
type StartFunc func(program string, args ...string) (int, error)

// Client launches sessions in Windows Terminal tabs.
type Client struct {
	start    StartFunc
	sessions *sessiondir.Store
}

// NewClient creates a new Windows Terminal client.
func NewClient(sessions *sessiondir.Store) *Client {
	return &Client{sessions: sessions, start: startDetached}
}

// SetStartFunc replaces the process starter for testing purposes.
func (c *Client) SetStartFunc(fn StartFunc) {
	c.start = fn
}

// Ensure Client implements domain.SessionBackend interface.
var _ domain.SessionBackend = (*Client)(nil)

// Available reports whether wt.exe is on PATH.
func Available() bool {
	_, err := exec.LookPath("wt.exe")
	return err == nil
}

// Kind returns domain.BackendWT.
func (c *Client) Kind() domain.BackendKind {
	return domain.BackendWT
}

// Capabilities reports no input injection and no attach.
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{}
}

// Spawn writes the wrapper script and opens it in a new tab.
// Falls back to a plain console window when wt.exe cannot be started.
func (c *Client) Spawn(_ context.Context, req domain.SpawnRequest) error {
	commandLine := commandLine(req)
	if err := c.sessions.Prepare(req.Name, domain.BackendWT, commandLine, true); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}

	wrapper := filepath.Join(c.sessions.Dir(req.Name), "run.cmd")
	if err := os.WriteFile(wrapper, []byte(wrapperScript(req.Dir, commandLine)), 0o600); err != nil {
		return fmt.Errorf("%w: write wrapper: %v", domain.ErrSpawnFailure, err)
	}
	quoted := `"` + wrapper + `"`

	pid, err := c.start("wt.exe", "-w", "0", "nt", "--title", req.Name, "--", "cmd", "/c", quoted)
	if err != nil {
		var fallbackErr error
		pid, fallbackErr = c.start("cmd", "/c", "start", "", "cmd", "/c", quoted)
		if fallbackErr != nil {
			return fmt.Errorf("%w: wt.exe: %v; cmd start: %v", domain.ErrSpawnFailure, err, fallbackErr)
		}
	}

	if pid > 0 {
		if err := c.sessions.SetPID(req.Name, pid); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
		}
	}
	if err := c.sessions.MarkAlive(req.Name); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailure, err)
	}
	return nil
}

// Exists reports whether the alive marker is present.
func (c *Client) Exists(name string) bool {
	return c.sessions.IsAlive(name)
}

// Capture returns the tail of the session log, or CaptureHint without one.
func (c *Client) Capture(name string, lines int) string {
	out, ok := c.sessions.Tail(name, lines)
	if !ok {
		return CaptureHint
	}
	return out
}

// SendKeys is a no-op: terminal tabs accept no programmatic input.
func (c *Client) SendKeys(_, _ string) error {
	return nil
}

// Kill terminates the process tree and removes the session directory.
func (c *Client) Kill(name string) []string {
	var warnings []string
	if pid, ok := c.sessions.PID(name); ok {
		// #nosec G204 - pid read from our own bookkeeping file
		if out, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/T", "/F").CombinedOutput(); err != nil {
			// The process may already be gone
			warnings = append(warnings, fmt.Sprintf("taskkill %d: %s", pid, strings.TrimSpace(string(out))))
		}
	}
	if err := c.sessions.Remove(name); err != nil {
		warnings = append(warnings, err.Error())
	}
	return warnings
}

// List returns alive sessions created by this backend.
func (c *Client) List() []domain.SessionInfo {
	return c.sessions.List(domain.BackendWT)
}

// Attach is unsupported; the user switches tabs.
func (c *Client) Attach(_ string) error {
	return domain.ErrAttachUnsupported
}

// commandLine joins the command with cmd.exe-quoted arguments.
func commandLine(req domain.SpawnRequest) string {
	var b strings.Builder
	b.WriteString(req.Command)
	for _, a := range req.Args {
		b.WriteByte(' ')
		b.WriteString(domain.CmdQuote(a))
	}
	return b.String()
}

// wrapperScript renders run.cmd: clear nested agent variables, cd, run, pause.
// The agent invocation is always a single batch line.
func wrapperScript(dir, commandLine string) string {
	commandLine = domain.CmdSingleLine(commandLine)
	program, _, _ := strings.Cut(commandLine, `"`)
	lines := []string{"@echo off"}
	for _, env := range domain.NestedAgentEnv {
		lines = append(lines, "set "+env+"=")
	}
	lines = append(lines,
		fmt.Sprintf(`cd /d "%s"`, strings.ReplaceAll(dir, "/", `\`)),
		"echo.",
		fmt.Sprintf("echo [Upfyn Agents] Running: %s...", strings.TrimSpace(program)),
		"echo.",
		commandLine,
		"echo.",
		"echo [Upfyn Agents] Agent session ended.",
		"pause",
	)
	return strings.Join(lines, "\r\n") + "\r\n"
}

func startDetached(program string, args ...string) (int, error) {
	// #nosec G204 - fixed launcher programs with generated arguments
	cmd := exec.Command(program, args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
