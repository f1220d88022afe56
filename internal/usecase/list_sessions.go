package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// SessionItem is a live session, annotated with its task when known.
type SessionItem struct {
	Task    *domain.Task // nil when the session belongs to no known task
	Project string
	Info    domain.SessionInfo
}

// ListSessionsOutput contains the merged session listing.
type ListSessionsOutput struct {
	Sessions []SessionItem
}

// ListSessions merges the sessions of every backend and maps them to tasks.
type ListSessions struct {
	tasks    domain.TaskRepository
	sessions domain.SessionManager
	logger   domain.Logger
}

// NewListSessions creates a new ListSessions use case.
func NewListSessions(tasks domain.TaskRepository, sessions domain.SessionManager, logger domain.Logger) *ListSessions {
	return &ListSessions{tasks: tasks, sessions: sessions, logger: logger}
}

// Execute lists the sessions.
func (uc *ListSessions) Execute(_ context.Context) (*ListSessionsOutput, error) {
	tasks, err := uc.tasks.List()
	if err != nil {
		uc.logger.Warn("", "store", fmt.Sprintf("list tasks: %v", err))
	}

	out := &ListSessionsOutput{}
	for _, info := range uc.sessions.List() {
		item := SessionItem{Info: info}
		item.Project, _ = domain.ParseSessionProject(info.Name)
		if prefix, ok := domain.ParseSessionTaskID(info.Name); ok {
			item.Task = taskByPrefix(tasks, prefix)
		}
		out.Sessions = append(out.Sessions, item)
	}
	return out, nil
}

func taskByPrefix(tasks []*domain.Task, prefix string) *domain.Task {
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, prefix) {
			return t
		}
	}
	return nil
}
