package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// AdvanceTaskInput contains the parameters for advancing a task one step.
// The PR and confirmation fields only apply to the matching transition.
// Fields are ordered to minimize memory padding.
type AdvanceTaskInput struct {
	TaskID   string
	PRTitle  string
	PRBody   string
	CreatePR bool
	Confirm  bool
}

// AdvanceTaskOutput reports the transition taken. Exactly one of the
// per-transition outputs is set.
type AdvanceTaskOutput struct {
	Planning *StartPlanningOutput
	Running  *StartRunningOutput
	Review   *MoveToReviewOutput
	Done     *MoveToDoneOutput
	From     domain.Status
	To       domain.Status
}

// Task returns the updated task of whichever transition ran.
func (o *AdvanceTaskOutput) Task() *domain.Task {
	switch {
	case o.Planning != nil:
		return o.Planning.Task
	case o.Running != nil:
		return o.Running.Task
	case o.Review != nil:
		return o.Review.Task
	case o.Done != nil:
		return o.Done.Task
	default:
		return nil
	}
}

// Warnings returns the warnings of whichever transition ran.
func (o *AdvanceTaskOutput) Warnings() []string {
	switch {
	case o.Planning != nil:
		return o.Planning.Warnings
	case o.Running != nil:
		return o.Running.Warnings
	case o.Done != nil:
		return o.Done.Warnings
	default:
		return nil
	}
}

// AdvanceTask moves a task exactly one step forward along the lifecycle and
// dispatches to the transition handler for that step.
type AdvanceTask struct {
	tasks    domain.TaskRepository
	planning *StartPlanning
	running  *StartRunning
	review   *MoveToReview
	done     *MoveToDone
}

// NewAdvanceTask creates a new AdvanceTask use case.
func NewAdvanceTask(
	tasks domain.TaskRepository,
	planning *StartPlanning,
	running *StartRunning,
	review *MoveToReview,
	done *MoveToDone,
) *AdvanceTask {
	return &AdvanceTask{tasks: tasks, planning: planning, running: running, review: review, done: done}
}

// Execute advances the task.
func (uc *AdvanceTask) Execute(ctx context.Context, in AdvanceTaskInput) (*AdvanceTaskOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	to, ok := task.Status.Next()
	if !ok {
		return nil, fmt.Errorf("%s is the last status: %w", task.Status, domain.ErrInvalidTransition)
	}

	out := &AdvanceTaskOutput{From: task.Status, To: to}
	switch to {
	case domain.StatusPlanning:
		out.Planning, err = uc.planning.Execute(ctx, StartPlanningInput{TaskID: task.ID})
	case domain.StatusRunning:
		out.Running, err = uc.running.Execute(ctx, StartRunningInput{TaskID: task.ID})
	case domain.StatusReview:
		out.Review, err = uc.review.Execute(ctx, MoveToReviewInput{
			TaskID:   task.ID,
			CreatePR: in.CreatePR,
			Title:    in.PRTitle,
			Body:     in.PRBody,
		})
	case domain.StatusDone:
		out.Done, err = uc.done.Execute(ctx, MoveToDoneInput{TaskID: task.ID, Confirm: in.Confirm})
	default:
		err = fmt.Errorf("%s → %s: %w", task.Status, to, domain.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
