package domain

import (
	"crypto/md5" //nolint:gosec // used for a stable file name, not for security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// OrchestrationDir is the per-repository directory holding worktrees and project config.
	OrchestrationDir = ".upfyn"
	// AppName names the global config directory.
	AppName = "upfyn-agents"
	// SlugMaxLen caps the slug length.
	SlugMaxLen = 20
	// ShortIDLen is the task id prefix length used in session names.
	ShortIDLen = 8
	// BranchPrefix prefixes every task branch.
	BranchPrefix = "task/"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a title into a filesystem and branch safe short form.
// Runs of non-alphanumerics collapse to a single '-', leading and trailing
// separators are trimmed and the result is capped at SlugMaxLen.
// Every caller that derives a worktree path, branch or session name must use it.
func Slug(title string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > SlugMaxLen {
		s = strings.TrimRight(s[:SlugMaxLen], "-")
	}
	return s
}

// ShortID returns the first ShortIDLen characters of a task id.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[:ShortIDLen]
	}
	return id
}

// BranchName returns the branch name for a slug.
// Format: task/<slug>
func BranchName(slug string) string {
	return BranchPrefix + slug
}

var sessionUnsafeRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// SessionProject normalizes a project name for use inside a session name.
// tmux rewrites '.' and ':' in session names, so both become '-', as does any
// run of other separators; "--" never appears so the name stays parseable.
func SessionProject(project string) string {
	s := strings.Trim(sessionUnsafeRun.ReplaceAllString(project, "-"), "-")
	if s == "" {
		return "project"
	}
	return s
}

// SessionName returns the session name for a task.
// Format: task-<id8>--<project>--<slug>, with the project normalized by SessionProject.
func SessionName(taskID, project, slug string) string {
	return fmt.Sprintf("task-%s--%s--%s", ShortID(taskID), SessionProject(project), slug)
}

var sessionTaskPattern = regexp.MustCompile(`^task-([^-]+)`)

// ParseSessionTaskID extracts the task id prefix from a session name.
func ParseSessionTaskID(sessionName string) (string, bool) {
	m := sessionTaskPattern.FindStringSubmatch(sessionName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseSessionProject extracts the project name from a session name.
func ParseSessionProject(sessionName string) (string, bool) {
	parts := strings.Split(sessionName, "--")
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// RepoOrchestrationDir returns <repoRoot>/.upfyn.
func RepoOrchestrationDir(repoRoot string) string {
	return filepath.Join(repoRoot, OrchestrationDir)
}

// WorktreesDir returns the directory holding all task worktrees of a repository.
func WorktreesDir(repoRoot string) string {
	return filepath.Join(repoRoot, OrchestrationDir, "worktrees")
}

// WorktreePath returns the worktree path for a slug.
func WorktreePath(repoRoot, slug string) string {
	return filepath.Join(WorktreesDir(repoRoot), slug)
}

// ProjectConfigPath returns <repoRoot>/.upfyn/config.toml.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, OrchestrationDir, ConfigFileName)
}

// ProjectDBPath returns the project database path inside the global config dir.
// Projects are keyed by a stable hash of their path.
func ProjectDBPath(configDir, projectPath string) string {
	sum := md5.Sum([]byte(projectPath)) //nolint:gosec // not used for security
	return filepath.Join(configDir, "projects", hex.EncodeToString(sum[:])[:16]+".db")
}

// IndexDBPath returns the global project index database path.
func IndexDBPath(configDir string) string {
	return filepath.Join(configDir, "index.db")
}

// SessionsDir returns the directory holding session bookkeeping directories.
func SessionsDir(configDir string) string {
	return filepath.Join(configDir, "sessions")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(configDir string) string {
	return filepath.Join(configDir, "logs", "upfyn.log")
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(configDir, taskID string) string {
	return filepath.Join(configDir, "logs", fmt.Sprintf("task-%s.log", ShortID(taskID)))
}
