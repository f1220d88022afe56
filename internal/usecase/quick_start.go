package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// QuickStartInput contains the parameters for a quick start.
type QuickStartInput struct {
	TaskID string
}

// QuickStartOutput contains the results of both transitions.
type QuickStartOutput struct {
	Planning *StartPlanningOutput
	Running  *StartRunningOutput
}

// QuickStart takes a backlog task straight to running. The proceed
// instruction is only sent after the acceptance watch for the new session
// has finished, so it cannot land on the confirmation prompt.
type QuickStart struct {
	planning *StartPlanning
	running  *StartRunning
	watcher  *AcceptanceWatcher
}

// NewQuickStart creates a new QuickStart use case.
func NewQuickStart(planning *StartPlanning, running *StartRunning, watcher *AcceptanceWatcher) *QuickStart {
	return &QuickStart{planning: planning, running: running, watcher: watcher}
}

// Execute runs backlog → planning → running.
// If ctx ends while waiting for the watcher the task stays in planning.
func (uc *QuickStart) Execute(ctx context.Context, in QuickStartInput) (*QuickStartOutput, error) {
	planned, err := uc.planning.Execute(ctx, StartPlanningInput(in))
	if err != nil {
		return nil, err
	}
	out := &QuickStartOutput{Planning: planned}

	if planned.Watching && uc.watcher != nil {
		if err := uc.watcher.WaitFor(ctx, planned.Task.SessionName); err != nil {
			return out, fmt.Errorf("wait for acceptance watcher: %w", err)
		}
	}

	out.Running, err = uc.running.Execute(ctx, StartRunningInput{TaskID: planned.Task.ID})
	if err != nil {
		return out, err
	}
	return out, nil
}

// Task returns the final task state.
func (o *QuickStartOutput) Task() *domain.Task {
	if o.Running != nil {
		return o.Running.Task
	}
	if o.Planning != nil {
		return o.Planning.Task
	}
	return nil
}
