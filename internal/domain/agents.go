package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Agent describes a coding agent CLI that can be launched in a session.
type Agent struct {
	Name        string // Catalogue name stored on tasks
	Command     string // Executable looked up on PATH
	Description string
}

// DefaultAgentName is used when a task names an agent that is not in the catalogue.
const DefaultAgentName = "claude"

var knownAgents = []Agent{
	{Name: "claude", Command: "claude", Description: "Anthropic's Claude Code CLI"},
	{Name: "aider", Command: "aider", Description: "AI pair programming in your terminal"},
	{Name: "codex", Command: "codex", Description: "OpenAI's Codex CLI"},
	{Name: "gh-copilot", Command: "gh", Description: "GitHub Copilot CLI"},
	{Name: "opencode", Command: "opencode", Description: "AI-powered coding assistant"},
	{Name: "cline", Command: "cline", Description: "AI coding assistant for VS Code"},
	{Name: "q", Command: "q", Description: "Amazon Q Developer CLI"},
}

// KnownAgents returns the agent catalogue in preference order.
func KnownAgents() []Agent {
	out := make([]Agent, len(knownAgents))
	copy(out, knownAgents)
	return out
}

// FindAgent looks up an agent by catalogue name.
func FindAgent(name string) (Agent, bool) {
	for _, a := range knownAgents {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}

// ResolveAgent returns the named agent, falling back to claude.
func ResolveAgent(name string) Agent {
	if a, ok := FindAgent(name); ok {
		return a
	}
	a, _ := FindAgent(DefaultAgentName)
	return a
}

// PresentsAcceptancePrompt reports whether the agent shows an interactive
// confirmation gate on startup that the acceptance watcher can answer.
func (a Agent) PresentsAcceptancePrompt() bool {
	return a.Name == "claude"
}

// InteractiveCommand builds the shell command line that starts the agent with prompt.
// When windows is true the command is quoted for cmd.exe.
func (a Agent) InteractiveCommand(prompt string, windows bool) string {
	q := ShellQuote(prompt)
	if windows {
		q = CmdQuote(prompt)
	}
	switch a.Name {
	case "claude":
		return "claude --dangerously-skip-permissions " + q
	case "aider":
		return "aider --message " + q
	case "gh-copilot":
		return "gh copilot suggest " + q
	case "q":
		return "q chat " + q
	default:
		return fmt.Sprintf("%s %s", a.Command, q)
	}
}

// ShellQuote single-quotes s for POSIX sh.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

var cmdLineBreaks = regexp.MustCompile(`[\r\n]+`)

// CmdSingleLine replaces each run of line breaks with a space.
// cmd.exe ends a command at the first line break, even inside quotes.
func CmdSingleLine(s string) string {
	return cmdLineBreaks.ReplaceAllString(s, " ")
}

// CmdQuote double-quotes s for cmd.exe. Line breaks become spaces.
func CmdQuote(s string) string {
	return `"` + strings.ReplaceAll(CmdSingleLine(s), `"`, `""`) + `"`
}

// AgentStatus pairs an agent with its availability on PATH.
type AgentStatus struct {
	Agent     Agent
	Available bool
}

const (
	planningPromptHead = "Plan the implementation for: "
	planningPromptTail = "Analyze the codebase and create a detailed plan. Do NOT implement yet."

	// ProceedInstruction is sent to a live planning session when the task moves to running.
	ProceedInstruction = "proceed with implementation"
)

// PlanningPrompt builds the prompt used when a task enters planning.
func PlanningPrompt(title, description string) string {
	var b strings.Builder
	b.WriteString(planningPromptHead)
	b.WriteString(title)
	b.WriteString("\n\n")
	if d := strings.TrimSpace(description); d != "" {
		b.WriteString("Details: ")
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	b.WriteString(planningPromptTail)
	return b.String()
}
