package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// StartRunningInput contains the parameters for moving a task into running.
type StartRunningInput struct {
	TaskID string
}

// StartRunningOutput contains the result of the running transition.
type StartRunningOutput struct {
	Task       *domain.Task
	Warnings   []string
	Instructed bool // The proceed instruction reached the live session
}

// StartRunning moves a planning task into running. When its session is live
// and accepts input, the agent is told to proceed with implementation.
// Only the status changes.
type StartRunning struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
	clock    domain.Clock
	logger   domain.Logger
}

// NewStartRunning creates a new StartRunning use case.
func NewStartRunning(tasks domain.TaskRepository, sessions domain.SessionManager, clock domain.Clock, logger domain.Logger) *StartRunning {
	return &StartRunning{tasks: tasks, sessions: sessions, clock: clock, logger: logger}
}

// Execute runs the planning → running transition.
func (uc *StartRunning) Execute(_ context.Context, in StartRunningInput) (*StartRunningOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusPlanning {
		return nil, fmt.Errorf("%s → %s: %w", task.Status, domain.StatusRunning, domain.ErrInvalidTransition)
	}

	out := &StartRunningOutput{}
	name := task.SessionName
	if task.HasSession() && uc.sessions.Exists(name) && uc.sessions.Capabilities(name).Input {
		if err := uc.sessions.SendKeys(name, domain.ProceedInstruction); err != nil {
			msg := fmt.Sprintf("send proceed instruction: %v", err)
			uc.logger.Warn(task.ID, "session", msg)
			out.Warnings = append(out.Warnings, msg)
		} else {
			out.Instructed = true
		}
	}

	next := task.Clone()
	next.Status = domain.StatusRunning
	next.UpdatedAt = uc.clock.Now()
	if err := uc.tasks.Update(next); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	uc.logger.Info(task.ID, "task", "running")
	out.Task = next
	return out, nil
}
