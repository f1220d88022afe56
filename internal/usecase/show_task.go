package usecase

import (
	"context"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string
}

// ShowTaskOutput contains the task and its live state.
type ShowTaskOutput struct {
	Task         *domain.Task
	PRState      domain.PRState // Empty when the task has no PR
	Connections  []domain.Connection
	SessionAlive bool
	Capabilities domain.Capabilities
}

// ShowTask returns a task with session liveness, PR state and connections.
type ShowTask struct {
	tasks    domain.TaskRepository
	conns    domain.ConnectionRepository
	sessions domain.SessionManager
	prs      domain.PRService
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, conns domain.ConnectionRepository, sessions domain.SessionManager, prs domain.PRService) *ShowTask {
	return &ShowTask{tasks: tasks, conns: conns, sessions: sessions, prs: prs}
}

// Execute looks the task up.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	out := &ShowTaskOutput{Task: task}
	if task.HasSession() && uc.sessions.Exists(task.SessionName) {
		out.SessionAlive = true
		out.Capabilities = uc.sessions.Capabilities(task.SessionName)
	}
	if task.HasPR() {
		out.PRState = uc.prs.Status(ctx, task.PRNumber)
	}
	if conns, err := uc.conns.ListConnections(); err == nil {
		for _, c := range conns {
			if c.Touches(task.ID) {
				out.Connections = append(out.Connections, c)
			}
		}
	}
	return out, nil
}
