package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

func TestStartPlanning_Execute_Success(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.config.Project = &domain.ProjectConfig{CopyFiles: ".env,missing.txt", InitScript: "make deps"}
	f.worktrees.InitWarnings = []string{"copy_files: 'missing.txt' not found in project root, skipping"}
	uc := f.newStartPlanning(nil)

	// Execute
	out, err := uc.Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	// Assert
	require.NoError(t, err)
	task := f.stored(testTaskID)
	assert.Equal(t, domain.StatusPlanning, task.Status)
	assert.Equal(t, "/repo/.upfyn/worktrees/fix-login-bug", task.WorktreePath)
	assert.Equal(t, "task/fix-login-bug", task.BranchName)
	assert.Regexp(t, regexp.MustCompile(`^task-[0-9a-f]{8}--acme--fix-login-bug$`), task.SessionName)
	assert.Equal(t, testNow, task.UpdatedAt)
	assert.Equal(t, task, out.Task)
	assert.Equal(t, f.worktrees.InitWarnings, out.Warnings)
	assert.False(t, out.Watching)

	assert.Equal(t, []string{"fix-login-bug"}, f.worktrees.Created)
	require.Len(t, f.worktrees.Initialized, 1)
	assert.Equal(t, []string{".env", "missing.txt"}, f.worktrees.Initialized[0].CopyFiles)
	assert.Equal(t, "make deps", f.worktrees.Initialized[0].InitScript)

	spawned := f.sessions.Spawned()
	require.Len(t, spawned, 1)
	assert.Equal(t, task.SessionName, spawned[0].Name)
	assert.Equal(t, task.WorktreePath, spawned[0].Dir)
	assert.Equal(t,
		"claude --dangerously-skip-permissions 'Plan the implementation for: Fix login bug\n\n"+
			"Analyze the codebase and create a detailed plan. Do NOT implement yet.'",
		spawned[0].Command)
	assert.True(t, f.logger.Has("WARN", "missing.txt"))
}

func TestStartPlanning_Execute_ByPrefix(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)

	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: "1a2b"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanning, f.stored(testTaskID).Status)
}

func TestStartPlanning_Execute_SameTitleDistinctSessions(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.addTask(otherTaskID, "Fix login bug", domain.StatusBacklog)
	uc := f.newStartPlanning(nil)

	// Execute
	_, err1 := uc.Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})
	_, err2 := uc.Execute(context.Background(), StartPlanningInput{TaskID: otherTaskID})

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, f.stored(testTaskID).SessionName, f.stored(otherTaskID).SessionName)
}

func TestStartPlanning_Execute_AgentCommands(t *testing.T) {
	tests := []struct {
		agent string
		goos  string
		want  string
	}{
		{"aider", "linux", "aider --message 'Plan the implementation for: it\n"},
		{"q", "linux", "q chat 'Plan the implementation for: it\n"},
		{"codex", "windows", "codex \"Plan the implementation for: it\n"},
	}

	for _, tt := range tests {
		t.Run(tt.agent, func(t *testing.T) {
			f := newFixture()
			task := domain.NewTask(testTaskID, "it", tt.agent, "p1", testNow)
			f.tasks.Add(task)
			f.sessions.ActiveKind = domain.BackendShell
			uc := f.newStartPlanning(nil)
			uc.goos = tt.goos

			_, err := uc.Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

			require.NoError(t, err)
			cmd := f.sessions.Spawned()[0].Command
			assert.Contains(t, cmd, tt.want)
		})
	}
}

func TestStartPlanning_Execute_StartsWatcherForClaude(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	watcher := f.newWatcher(WatcherTiming{InitialDelay: time.Millisecond, Interval: time.Millisecond, Attempts: 3, Lines: 10})
	f.sessions.CaptureFunc = func(string, int) string { return "Yes, I accept" }

	// Execute
	out, err := f.newStartPlanning(watcher).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})
	require.NoError(t, err)
	watcher.Wait()

	// Assert
	assert.True(t, out.Watching)
	sent := f.sessions.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "y", sent[0].Text)
}

func TestStartPlanning_Execute_NoWatcherWithoutInput(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.sessions.DefaultCaps = domain.Capabilities{}
	watcher := f.newWatcher(DefaultWatcherTiming())

	out, err := f.newStartPlanning(watcher).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	require.NoError(t, err)
	assert.False(t, out.Watching)
	assert.False(t, watcher.Running(out.Task.SessionName))
}

func TestStartPlanning_Execute_InvalidStatus(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusPlanning, domain.StatusRunning, domain.StatusReview, domain.StatusDone} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			before := f.addTask(testTaskID, "Fix login bug", status)

			_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, before, f.stored(testTaskID))
			assert.Empty(t, f.worktrees.Created)
		})
	}
}

func TestStartPlanning_Execute_WorktreeFailure(t *testing.T) {
	// Setup
	f := newFixture()
	before := f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.worktrees.CreateErr = fmt.Errorf("%w: fatal: invalid reference", domain.ErrWorktreeCreation)

	// Execute
	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	// Assert
	assert.ErrorIs(t, err, domain.ErrWorktreeCreation)
	assert.Equal(t, before, f.stored(testTaskID))
	assert.Empty(t, f.sessions.Spawned())
}

func TestStartPlanning_Execute_SpawnFailure(t *testing.T) {
	// Setup
	f := newFixture()
	before := f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.sessions.SpawnErr = fmt.Errorf("%w: duplicate session", domain.ErrSpawnFailure)

	// Execute
	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	// Assert
	assert.ErrorIs(t, err, domain.ErrSpawnFailure)
	assert.Equal(t, before, f.stored(testTaskID))
	assert.Equal(t, []string{"fix-login-bug"}, f.worktrees.Removed)
	assert.Zero(t, f.tasks.Updates)
}

func TestStartPlanning_Execute_SpawnFailureKeepsReusedWorktree(t *testing.T) {
	// Setup
	f := newFixture()
	// Another task with the same slug already owns the checkout
	f.worktrees.Existing = map[string]bool{"fix-login-bug": true}
	before := f.addTask(testTaskID, "Fix login bug!", domain.StatusBacklog)
	f.sessions.SpawnErr = fmt.Errorf("%w: boom", domain.ErrSpawnFailure)

	// Execute
	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	// Assert
	assert.ErrorIs(t, err, domain.ErrSpawnFailure)
	assert.Equal(t, before, f.stored(testTaskID))
	assert.Empty(t, f.worktrees.Removed, "a reused worktree must survive a failed spawn")
}

func TestStartPlanning_Execute_UpdateFailureKeepsReusedWorktree(t *testing.T) {
	// Setup
	f := newFixture()
	f.worktrees.Existing = map[string]bool{"fix-login-bug": true}
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.tasks.UpdateErr = errors.New("database is locked")

	// Execute
	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	// Assert
	require.Error(t, err)
	assert.Len(t, f.sessions.Killed(), 1)
	assert.Empty(t, f.worktrees.Removed)
}

func TestStartPlanning_Execute_UpdateFailureRollsBack(t *testing.T) {
	// Setup
	f := newFixture()
	before := f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.tasks.UpdateErr = errors.New("database is locked")
	watcher := f.newWatcher(WatcherTiming{InitialDelay: time.Hour, Attempts: 1})

	// Execute
	_, err := f.newStartPlanning(watcher).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})
	watcher.Wait()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update task")
	assert.Equal(t, before, f.stored(testTaskID))
	assert.Len(t, f.sessions.Killed(), 1)
	assert.Equal(t, []string{"fix-login-bug"}, f.worktrees.Removed)
}

func TestStartPlanning_Execute_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: "nope-nope"})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStartPlanning_Execute_ConfigError(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusBacklog)
	f.config.LoadErr = errors.New("parse config.toml")

	_, err := f.newStartPlanning(nil).Execute(context.Background(), StartPlanningInput{TaskID: testTaskID})

	require.Error(t, err)
	assert.Empty(t, f.worktrees.Created)
}
