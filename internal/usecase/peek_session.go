package usecase

import (
	"context"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// DefaultPeekLines is the number of lines captured when none is requested.
const DefaultPeekLines = 50

// PeekSessionInput contains the parameters for peeking at a session.
type PeekSessionInput struct {
	TaskID string
	Lines  int // Lines to capture (0 = DefaultPeekLines)
}

// PeekSessionOutput contains the captured output.
type PeekSessionOutput struct {
	SessionName string
	Output      string
}

// PeekSession captures the recent output of a task's session.
type PeekSession struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
}

// NewPeekSession creates a new PeekSession use case.
func NewPeekSession(tasks domain.TaskRepository, sessions domain.SessionManager) *PeekSession {
	return &PeekSession{tasks: tasks, sessions: sessions}
}

// Execute captures the session output.
func (uc *PeekSession) Execute(_ context.Context, in PeekSessionInput) (*PeekSessionOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.HasSession() || !uc.sessions.Exists(task.SessionName) {
		return nil, domain.ErrNoSession
	}

	lines := in.Lines
	if lines <= 0 {
		lines = DefaultPeekLines
	}
	return &PeekSessionOutput{
		SessionName: task.SessionName,
		Output:      uc.sessions.Capture(task.SessionName, lines),
	}, nil
}
