package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task     *domain.Task // The deleted task
	Warnings []string
}

// DeleteTask removes a task in any status. The session and worktree are torn
// down best-effort; the repository cascades the task's connections.
type DeleteTask struct {
	tasks     domain.TaskRepository
	sessions  domain.SessionManager
	worktrees domain.WorktreeManager
	logger    domain.Logger
	watcher   *AcceptanceWatcher
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(
	tasks domain.TaskRepository,
	sessions domain.SessionManager,
	worktrees domain.WorktreeManager,
	logger domain.Logger,
	watcher *AcceptanceWatcher,
) *DeleteTask {
	return &DeleteTask{
		tasks:     tasks,
		sessions:  sessions,
		worktrees: worktrees,
		logger:    logger,
		watcher:   watcher,
	}
}

// Execute deletes the task.
func (uc *DeleteTask) Execute(_ context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	if uc.watcher != nil && task.HasSession() {
		uc.watcher.Stop(task.SessionName)
	}
	warnings := shared.Teardown(uc.sessions, uc.worktrees, task)
	for _, w := range warnings {
		uc.logger.Warn(task.ID, "task", w)
	}

	if err := uc.tasks.Delete(task.ID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	uc.logger.Info(task.ID, "task", "deleted")
	return &DeleteTaskOutput{Task: task, Warnings: warnings}, nil
}
