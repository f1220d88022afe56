package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrAmbiguousTaskID      = errors.New("task id prefix matches more than one task")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNoSession            = errors.New("no running session")
	ErrNoBranch             = errors.New("task has no branch")
	ErrAttachUnsupported    = errors.New("session backend does not support attach")
	ErrInputUnsupported     = errors.New("session backend does not support input")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrNotGitRepository     = errors.New("not a git repository (or any of the parent directories)")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConfigExists         = errors.New("config file already exists")
	ErrEmptyFile            = errors.New("file is empty")
	ErrNoTasksInFile        = errors.New("no tasks found in file")

	// User-visible failures of side-effecting transitions.
	// They are wrapped with the diagnostic output of the failed command.
	ErrSpawnFailure     = errors.New("spawn failure")
	ErrWorktreeCreation = errors.New("worktree creation failure")
	ErrPRCreation       = errors.New("pr creation failure")
)

// ErrSelfConnection is returned when a connection would link a task to itself.
var ErrSelfConnection = errors.New("cannot connect a task to itself")
