package shared

import (
	"path/filepath"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// WorktreeSlug returns the slug the task's worktree was created under.
// The recorded path wins over the title so that a renamed task still
// addresses the worktree it owns.
func WorktreeSlug(task *domain.Task) string {
	if task.WorktreePath != "" {
		return filepath.Base(task.WorktreePath)
	}
	return task.Slug()
}

// Teardown kills the task's session and removes its worktree.
// Both steps are best-effort; their problems come back as warnings.
func Teardown(sessions domain.SessionManager, worktrees domain.WorktreeManager, task *domain.Task) []string {
	var warnings []string
	if task.HasSession() {
		warnings = append(warnings, sessions.Kill(task.SessionName)...)
	}
	if task.HasWorktree() {
		warnings = append(warnings, worktrees.Remove(WorktreeSlug(task))...)
	}
	return warnings
}

// UseWindowsQuoting reports whether agent command lines go through cmd.exe.
func UseWindowsQuoting(goos string, active domain.BackendKind) bool {
	return goos == "windows" && active != domain.BackendTmux
}
