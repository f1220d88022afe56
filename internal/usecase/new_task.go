package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// NewTaskInput contains the parameters for creating a new task.
type NewTaskInput struct {
	Title       string // Task title (required)
	Description string // Task description (optional)
	Agent       string // Agent name (optional, empty = configured default)
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task *domain.Task
}

// NewTask is the use case for creating a new backlog task.
type NewTask struct {
	tasks     domain.TaskRepository
	config    domain.ConfigLoader
	clock     domain.Clock
	logger    domain.Logger
	newID     func() string
	projectID string
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(
	tasks domain.TaskRepository,
	config domain.ConfigLoader,
	clock domain.Clock,
	logger domain.Logger,
	newID func() string,
	projectID string,
) *NewTask {
	return &NewTask{
		tasks:     tasks,
		config:    config,
		clock:     clock,
		logger:    logger,
		newID:     newID,
		projectID: projectID,
	}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(_ context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}

	agent := strings.TrimSpace(in.Agent)
	if agent == "" {
		settings, err := uc.config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		agent = settings.DefaultAgent
	}
	if _, ok := domain.FindAgent(agent); !ok {
		return nil, fmt.Errorf("%q: %w", agent, domain.ErrAgentNotFound)
	}

	task := domain.NewTask(uc.newID(), in.Title, agent, uc.projectID, uc.clock.Now())
	task.Description = strings.TrimSpace(in.Description)
	if err := uc.tasks.Insert(task); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	uc.logger.Info(task.ID, "task", fmt.Sprintf("created: %s", task.Title))
	return &NewTaskOutput{Task: task}, nil
}
