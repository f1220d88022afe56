package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// MoveToReviewInput contains the parameters for moving a task into review.
// Fields are ordered to minimize memory padding.
type MoveToReviewInput struct {
	TaskID   string
	Title    string // PR title; defaults to the task title
	Body     string // PR body; defaults to the task description
	CreatePR bool   // Open a pull request before transitioning
}

// MoveToReviewOutput contains the result of the review transition.
type MoveToReviewOutput struct {
	Task *domain.Task
	PR   *domain.PullRequest // nil when no PR was requested
}

// MoveToReview moves a running task into review, optionally opening a PR.
// When a PR is requested the task only moves once the PR exists.
type MoveToReview struct {
	tasks  domain.TaskRepository
	prs    domain.PRService
	clock  domain.Clock
	logger domain.Logger
}

// NewMoveToReview creates a new MoveToReview use case.
func NewMoveToReview(tasks domain.TaskRepository, prs domain.PRService, clock domain.Clock, logger domain.Logger) *MoveToReview {
	return &MoveToReview{tasks: tasks, prs: prs, clock: clock, logger: logger}
}

// Execute runs the running → review transition.
func (uc *MoveToReview) Execute(ctx context.Context, in MoveToReviewInput) (*MoveToReviewOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusRunning {
		return nil, fmt.Errorf("%s → %s: %w", task.Status, domain.StatusReview, domain.ErrInvalidTransition)
	}

	next := task.Clone()
	out := &MoveToReviewOutput{}
	if in.CreatePR {
		if task.BranchName == "" {
			return nil, domain.ErrNoBranch
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = task.Title
		}
		pr, err := uc.prs.Create(ctx, title, in.Body, task.BranchName)
		if err != nil {
			uc.logger.Error(task.ID, "pr", err.Error())
			return nil, err
		}
		next.PRNumber = pr.Number
		next.PRURL = pr.URL
		out.PR = pr
		uc.logger.Info(task.ID, "pr", fmt.Sprintf("opened PR #%d %s", pr.Number, pr.URL))
	}

	next.Status = domain.StatusReview
	next.UpdatedAt = uc.clock.Now()
	if err := uc.tasks.Update(next); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	uc.logger.Info(task.ID, "task", "in review")
	out.Task = next
	return out, nil
}
