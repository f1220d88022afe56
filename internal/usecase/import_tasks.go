package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// ImportTasksInput contains the markdown to import.
type ImportTasksInput struct {
	Content string
}

// ImportTasksOutput contains the created tasks.
type ImportTasksOutput struct {
	Tasks []*domain.Task
}

// ImportTasks creates backlog tasks from a markdown file with one
// frontmatter block per task. Every draft is validated before any task is created.
type ImportTasks struct {
	newTask *NewTask
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(newTask *NewTask) *ImportTasks {
	return &ImportTasks{newTask: newTask}
}

// Execute parses the content and creates the tasks in file order.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}
	for i, d := range drafts {
		if d.Agent == "" {
			continue
		}
		if _, ok := domain.FindAgent(d.Agent); !ok {
			return nil, fmt.Errorf("task %d: %q: %w", i+1, d.Agent, domain.ErrAgentNotFound)
		}
	}

	out := &ImportTasksOutput{}
	for i, d := range drafts {
		created, err := uc.newTask.Execute(ctx, NewTaskInput{Title: d.Title, Description: d.Description, Agent: d.Agent})
		if err != nil {
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
		out.Tasks = append(out.Tasks, created.Task)
	}
	return out, nil
}
