package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// AddConnectionInput contains the endpoints and label of a new connection.
type AddConnectionInput struct {
	From  string // Task id or unique prefix
	To    string // Task id or unique prefix
	Label string
}

// AddConnectionOutput contains the created connection.
type AddConnectionOutput struct {
	Connection domain.Connection
}

// AddConnection links two tasks with a labeled directed edge.
type AddConnection struct {
	tasks domain.TaskRepository
	conns domain.ConnectionRepository
	newID func() string
}

// NewAddConnection creates a new AddConnection use case.
func NewAddConnection(tasks domain.TaskRepository, conns domain.ConnectionRepository, newID func() string) *AddConnection {
	return &AddConnection{tasks: tasks, conns: conns, newID: newID}
}

// Execute creates the connection.
func (uc *AddConnection) Execute(_ context.Context, in AddConnectionInput) (*AddConnectionOutput, error) {
	from, err := shared.ResolveTask(uc.tasks, in.From)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := shared.ResolveTask(uc.tasks, in.To)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if from.ID == to.ID {
		return nil, domain.ErrSelfConnection
	}

	conn := domain.Connection{
		ID:         uc.newID(),
		FromTaskID: from.ID,
		ToTaskID:   to.ID,
		Label:      strings.TrimSpace(in.Label),
	}
	if err := uc.conns.InsertConnection(&conn); err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}
	return &AddConnectionOutput{Connection: conn}, nil
}

// RemoveConnectionInput identifies the connection to remove.
type RemoveConnectionInput struct {
	ID string
}

// RemoveConnection deletes a connection.
type RemoveConnection struct {
	conns domain.ConnectionRepository
}

// NewRemoveConnection creates a new RemoveConnection use case.
func NewRemoveConnection(conns domain.ConnectionRepository) *RemoveConnection {
	return &RemoveConnection{conns: conns}
}

// Execute deletes the connection. Unknown ids fail with domain.ErrConnectionNotFound.
func (uc *RemoveConnection) Execute(_ context.Context, in RemoveConnectionInput) error {
	return uc.conns.DeleteConnection(strings.TrimSpace(in.ID))
}

// ListConnectionsInput optionally restricts the listing to one task.
type ListConnectionsInput struct {
	TaskID string // Task id or unique prefix (empty = all)
}

// ListConnectionsOutput contains the connections.
type ListConnectionsOutput struct {
	Connections []domain.Connection
}

// ListConnections lists task connections.
type ListConnections struct {
	tasks domain.TaskRepository
	conns domain.ConnectionRepository
}

// NewListConnections creates a new ListConnections use case.
func NewListConnections(tasks domain.TaskRepository, conns domain.ConnectionRepository) *ListConnections {
	return &ListConnections{tasks: tasks, conns: conns}
}

// Execute lists the connections.
func (uc *ListConnections) Execute(_ context.Context, in ListConnectionsInput) (*ListConnectionsOutput, error) {
	conns, err := uc.conns.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	if in.TaskID == "" {
		return &ListConnectionsOutput{Connections: conns}, nil
	}

	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	out := &ListConnectionsOutput{}
	for _, c := range conns {
		if c.Touches(task.ID) {
			out.Connections = append(out.Connections, c)
		}
	}
	return out, nil
}
