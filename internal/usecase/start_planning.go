// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"runtime"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// StartPlanningInput contains the parameters for moving a task into planning.
type StartPlanningInput struct {
	TaskID string // Task id or unique prefix
}

// StartPlanningOutput contains the result of the planning transition.
type StartPlanningOutput struct {
	Task     *domain.Task
	Warnings []string // Worktree initialization problems
	Watching bool     // Acceptance watcher started
}

// StartPlanning moves a backlog task into planning: it creates and seeds the
// worktree, launches the agent with the planning prompt and persists the result.
// Nothing is persisted unless every side effect succeeded.
type StartPlanning struct {
	tasks       domain.TaskRepository
	sessions    domain.SessionManager
	worktrees   domain.WorktreeManager
	config      domain.ConfigLoader
	clock       domain.Clock
	logger      domain.Logger
	watcher     *AcceptanceWatcher
	projectName string
	goos        string
}

// NewStartPlanning creates a new StartPlanning use case.
// watcher may be nil to disable acceptance watching.
func NewStartPlanning(
	tasks domain.TaskRepository,
	sessions domain.SessionManager,
	worktrees domain.WorktreeManager,
	config domain.ConfigLoader,
	clock domain.Clock,
	logger domain.Logger,
	watcher *AcceptanceWatcher,
	projectName string,
) *StartPlanning {
	return &StartPlanning{
		tasks:       tasks,
		sessions:    sessions,
		worktrees:   worktrees,
		config:      config,
		clock:       clock,
		logger:      logger,
		watcher:     watcher,
		projectName: projectName,
		goos:        runtime.GOOS,
	}
}

// Execute runs the backlog → planning transition.
func (uc *StartPlanning) Execute(ctx context.Context, in StartPlanningInput) (*StartPlanningOutput, error) {
	task, err := shared.ResolveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusBacklog {
		return nil, fmt.Errorf("%s → %s: %w", task.Status, domain.StatusPlanning, domain.ErrInvalidTransition)
	}

	settings, err := uc.config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	next := task.Clone()
	slug := next.Slug()

	wtPath, created, err := uc.worktrees.Create(slug)
	if err != nil {
		uc.logger.Error(task.ID, "worktree", err.Error())
		return nil, err
	}
	warnings := uc.worktrees.Initialize(wtPath, settings.CopyFiles, settings.InitScript)
	for _, w := range warnings {
		uc.logger.Warn(task.ID, "worktree", w)
	}

	agent := domain.ResolveAgent(task.Agent)
	name := domain.SessionName(task.ID, uc.projectName, slug)
	windows := shared.UseWindowsQuoting(uc.goos, uc.sessions.Active())
	req := domain.SpawnRequest{
		Name:    name,
		Dir:     wtPath,
		Command: agent.InteractiveCommand(domain.PlanningPrompt(task.Title, task.Description), windows),
	}
	if err := uc.sessions.Spawn(ctx, req); err != nil {
		uc.logger.Error(task.ID, "session", err.Error())
		uc.rollbackWorktree(task.ID, slug, created)
		return nil, err
	}

	watching := uc.watcher != nil && agent.PresentsAcceptancePrompt() && uc.sessions.Capabilities(name).Input
	if watching {
		uc.watcher.Watch(context.WithoutCancel(ctx), task.ID, name)
	}

	next.Status = domain.StatusPlanning
	next.SessionName = name
	next.WorktreePath = wtPath
	next.BranchName = domain.BranchName(slug)
	next.UpdatedAt = uc.clock.Now()
	if err := uc.tasks.Update(next); err != nil {
		if watching {
			uc.watcher.Stop(name)
		}
		for _, w := range uc.sessions.Kill(name) {
			uc.logger.Warn(task.ID, "session", w)
		}
		uc.rollbackWorktree(task.ID, slug, created)
		return nil, fmt.Errorf("update task: %w", err)
	}

	uc.logger.Info(task.ID, "task", fmt.Sprintf("planning with %s in session %s", agent.Name, name))
	return &StartPlanningOutput{Task: next, Warnings: warnings, Watching: watching}, nil
}

// rollbackWorktree removes the worktree only if this transition created it.
// A reused worktree may hold another task's work.
func (uc *StartPlanning) rollbackWorktree(taskID, slug string, created bool) {
	if !created {
		uc.logger.Info(taskID, "worktree", "keeping reused worktree "+slug)
		return
	}
	for _, w := range uc.worktrees.Remove(slug) {
		uc.logger.Warn(taskID, "worktree", w)
	}
}
