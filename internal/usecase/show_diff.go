package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// ShowDiffInput contains the parameters for showing a task diff.
type ShowDiffInput struct {
	TaskID string
	Stat   bool // Diffstat only
}

// ShowDiffOutput contains the diff.
type ShowDiffOutput struct {
	Base   string
	Branch string
	Diff   string
}

// ShowDiff compares a task branch with the configured base branch.
type ShowDiff struct {
	tasks  domain.TaskRepository
	git    domain.Git
	config domain.ConfigLoader
}

// NewShowDiff creates a new ShowDiff use case.
func NewShowDiff(tasks domain.TaskRepository, git domain.Git, config domain.ConfigLoader) *ShowDiff {
	return &ShowDiff{tasks: tasks, git: git, config: config}
}

// Execute returns the diff. Backlog tasks have no branch yet.
func (uc *ShowDiff) Execute(ctx context.Context, in ShowDiffInput) (*ShowDiffOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.BranchName == "" {
		return nil, domain.ErrNoBranch
	}
	settings, err := uc.config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	diff, err := uc.git.Diff(ctx, settings.BaseBranch, task.BranchName, in.Stat)
	if err != nil {
		return nil, err
	}
	return &ShowDiffOutput{Base: settings.BaseBranch, Branch: task.BranchName, Diff: diff}, nil
}
