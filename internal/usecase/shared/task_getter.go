// Package shared provides shared utilities for use cases.
package shared

import (
	"fmt"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// MinPrefixLen is the shortest task id prefix accepted by ResolveTask.
const MinPrefixLen = 4

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := repo.Get(taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// ResolveTask looks a task up by full id, falling back to a unique id prefix
// of at least MinPrefixLen characters.
func ResolveTask(repo domain.TaskRepository, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrTaskNotFound
	}
	task, err := repo.Get(ref)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task != nil {
		return task, nil
	}
	if len(ref) < MinPrefixLen {
		return nil, fmt.Errorf("%q: %w", ref, domain.ErrTaskNotFound)
	}

	tasks, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var match *domain.Task
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%q: %w", ref, domain.ErrAmbiguousTaskID)
		}
		match = t
	}
	if match == nil {
		return nil, fmt.Errorf("%q: %w", ref, domain.ErrTaskNotFound)
	}
	return match, nil
}
