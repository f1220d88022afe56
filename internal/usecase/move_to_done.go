package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// MoveToDoneInput contains the parameters for completing a task.
type MoveToDoneInput struct {
	TaskID  string
	Confirm bool // Proceed even though the PR is still open
}

// MoveToDoneOutput contains the result of the done transition.
type MoveToDoneOutput struct {
	Task     *domain.Task
	PRState  domain.PRState // Empty when the task has no PR
	Warnings []string       // Teardown problems and PR status uncertainty
}

// MoveToDone completes a review task. A task whose PR is still open needs
// explicit confirmation. Session and worktree teardown is best-effort; the
// branch is kept.
type MoveToDone struct {
	tasks     domain.TaskRepository
	sessions  domain.SessionManager
	worktrees domain.WorktreeManager
	prs       domain.PRService
	clock     domain.Clock
	logger    domain.Logger
	watcher   *AcceptanceWatcher
}

// NewMoveToDone creates a new MoveToDone use case.
func NewMoveToDone(
	tasks domain.TaskRepository,
	sessions domain.SessionManager,
	worktrees domain.WorktreeManager,
	prs domain.PRService,
	clock domain.Clock,
	logger domain.Logger,
	watcher *AcceptanceWatcher,
) *MoveToDone {
	return &MoveToDone{
		tasks:     tasks,
		sessions:  sessions,
		worktrees: worktrees,
		prs:       prs,
		clock:     clock,
		logger:    logger,
		watcher:   watcher,
	}
}

// Execute runs the review → done transition.
// It returns domain.ErrConfirmationRequired, with the task untouched, when the
// PR is open and in.Confirm is false.
func (uc *MoveToDone) Execute(ctx context.Context, in MoveToDoneInput) (*MoveToDoneOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusReview {
		return nil, fmt.Errorf("%s → %s: %w", task.Status, domain.StatusDone, domain.ErrInvalidTransition)
	}

	out := &MoveToDoneOutput{}
	if task.HasPR() {
		out.PRState = uc.prs.Status(ctx, task.PRNumber)
		switch out.PRState {
		case domain.PRStateOpen:
			if !in.Confirm {
				return nil, fmt.Errorf("PR #%d is still open: %w", task.PRNumber, domain.ErrConfirmationRequired)
			}
		case domain.PRStateUnknown:
			out.Warnings = append(out.Warnings, fmt.Sprintf("could not verify PR #%d status", task.PRNumber))
		}
	}

	if uc.watcher != nil && task.HasSession() {
		uc.watcher.Stop(task.SessionName)
	}
	out.Warnings = append(out.Warnings, shared.Teardown(uc.sessions, uc.worktrees, task)...)
	for _, w := range out.Warnings {
		uc.logger.Warn(task.ID, "task", w)
	}

	next := task.Clone()
	next.ClearRuntime()
	next.Status = domain.StatusDone
	next.UpdatedAt = uc.clock.Now()
	if err := uc.tasks.Update(next); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	uc.logger.Info(task.ID, "task", "done")
	out.Task = next
	return out, nil
}
