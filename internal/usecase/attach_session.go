package usecase

import (
	"context"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// AttachSessionInput contains the parameters for attaching to a session.
type AttachSessionInput struct {
	TaskID string
}

// AttachSession connects the terminal to a task's session.
type AttachSession struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
}

// NewAttachSession creates a new AttachSession use case.
func NewAttachSession(tasks domain.TaskRepository, sessions domain.SessionManager) *AttachSession {
	return &AttachSession{tasks: tasks, sessions: sessions}
}

// Execute attaches to the session. It blocks until the user detaches.
func (uc *AttachSession) Execute(_ context.Context, in AttachSessionInput) error {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return err
	}
	if !task.HasSession() || !uc.sessions.Exists(task.SessionName) {
		return domain.ErrNoSession
	}
	if !uc.sessions.Capabilities(task.SessionName).Attach {
		return domain.ErrAttachUnsupported
	}
	return uc.sessions.Attach(task.SessionName)
}
