package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Status domain.Status // Only tasks in this status (empty = all)
}

// TaskItem is a task together with its session liveness.
type TaskItem struct {
	Task         *domain.Task
	SessionAlive bool
}

// ListTasksOutput contains the listed tasks in creation order.
type ListTasksOutput struct {
	Items []TaskItem
}

// ListTasks lists tasks. Read failures degrade to an empty list.
type ListTasks struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
	logger   domain.Logger
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, sessions domain.SessionManager, logger domain.Logger) *ListTasks {
	return &ListTasks{tasks: tasks, sessions: sessions, logger: logger}
}

// Execute returns the tasks matching the input.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	if in.Status != "" && !in.Status.IsValid() {
		return nil, fmt.Errorf("%q: %w", in.Status, domain.ErrInvalidStatus)
	}

	tasks, err := uc.tasks.List()
	if err != nil {
		uc.logger.Warn("", "store", fmt.Sprintf("list tasks: %v", err))
		return &ListTasksOutput{}, nil
	}

	out := &ListTasksOutput{}
	for _, t := range tasks {
		if in.Status != "" && t.Status != in.Status {
			continue
		}
		out.Items = append(out.Items, TaskItem{
			Task:         t,
			SessionAlive: t.HasSession() && uc.sessions.Exists(t.SessionName),
		})
	}
	return out, nil
}
