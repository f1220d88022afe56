package domain

import (
	"strings"
	"time"
)

// BackendKind tags the substrate a session was created on.
// The tag is recorded per session and every later operation on the
// session is routed through the same backend.
type BackendKind string

const (
	BackendTmux  BackendKind = "tmux"  // Persistent terminal multiplexer
	BackendWT    BackendKind = "wt"    // Windows Terminal tab
	BackendShell BackendKind = "shell" // Detached background process
)

// ParseBackendKind parses a recorded backend tag.
func ParseBackendKind(s string) (BackendKind, bool) {
	switch k := BackendKind(strings.TrimSpace(s)); k {
	case BackendTmux, BackendWT, BackendShell:
		return k, true
	default:
		return "", false
	}
}

// Capabilities describes what a backend can do beyond spawn/exists/kill.
type Capabilities struct {
	Input  bool // Live input injection (send keys)
	Attach bool // Interactive attach from the current terminal
}

// SpawnRequest describes a session to launch.
type SpawnRequest struct {
	Name    string   // Session name, unique per host
	Dir     string   // Working directory
	Command string   // Shell command line
	Args    []string // Extra arguments, quoted and appended to Command
}

// CommandLine returns Command with Args appended, each single-quoted.
func (r SpawnRequest) CommandLine() string {
	var b strings.Builder
	b.WriteString(r.Command)
	for _, a := range r.Args {
		b.WriteByte(' ')
		b.WriteString(ShellQuote(a))
	}
	return b.String()
}

// NestedAgentEnv lists environment variables that make an agent believe it
// already runs inside a supervising agent session. They are cleared before launch.
var NestedAgentEnv = []string{"CLAUDECODE", "CLAUDE_CODE_SESSION"}

// SessionInfo is one entry of the merged session listing.
type SessionInfo struct {
	Created      time.Time
	LastActivity time.Time
	Name         string
	Backend      BackendKind
}

// Acceptance prompt detection.
var acceptanceRules = []struct {
	phrase string
	reply  string
}{
	{"Yes, I accept", "y"},
	{"Do you want to proceed", "y"},
	{"accept the risks", "yes"},
}

// AcceptanceReply scans captured output for a known confirmation phrase and
// returns the acknowledgement to send.
func AcceptanceReply(output string) (string, bool) {
	for _, r := range acceptanceRules {
		if strings.Contains(output, r.phrase) {
			return r.reply, true
		}
	}
	return "", false
}
