package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// ResumeTaskInput contains the parameters for resuming a task.
type ResumeTaskInput struct {
	TaskID string
}

// ResumeTaskOutput contains the resumed task.
type ResumeTaskOutput struct {
	Task *domain.Task
}

// ResumeTask moves a review task back to running. It has no side effects
// beyond the status change.
type ResumeTask struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewResumeTask creates a new ResumeTask use case.
func NewResumeTask(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *ResumeTask {
	return &ResumeTask{tasks: tasks, clock: clock, logger: logger}
}

// Execute runs the review → running transition.
func (uc *ResumeTask) Execute(_ context.Context, in ResumeTaskInput) (*ResumeTaskOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	prev, ok := task.Status.Previous()
	if !ok {
		return nil, fmt.Errorf("%s has no previous status: %w", task.Status, domain.ErrInvalidTransition)
	}

	next := task.Clone()
	next.Status = prev
	next.UpdatedAt = uc.clock.Now()
	if err := uc.tasks.Update(next); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	uc.logger.Info(task.ID, "task", "resumed")
	return &ResumeTaskOutput{Task: next}, nil
}
