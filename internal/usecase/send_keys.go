package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// SendKeysInput contains the parameters for sending input to a session.
type SendKeysInput struct {
	TaskID string
	Text   string // Sent followed by Enter
}

// SendKeys injects text into a task's live session.
type SendKeys struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
	logger   domain.Logger
}

// NewSendKeys creates a new SendKeys use case.
func NewSendKeys(tasks domain.TaskRepository, sessions domain.SessionManager, logger domain.Logger) *SendKeys {
	return &SendKeys{tasks: tasks, sessions: sessions, logger: logger}
}

// Execute sends the text.
// It returns domain.ErrInputUnsupported when the session's backend cannot inject input.
func (uc *SendKeys) Execute(_ context.Context, in SendKeysInput) error {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return err
	}
	if !task.HasSession() || !uc.sessions.Exists(task.SessionName) {
		return domain.ErrNoSession
	}
	if !uc.sessions.Capabilities(task.SessionName).Input {
		return domain.ErrInputUnsupported
	}
	if err := uc.sessions.SendKeys(task.SessionName, in.Text); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	uc.logger.Debug(task.ID, "session", fmt.Sprintf("sent %q", in.Text))
	return nil
}
