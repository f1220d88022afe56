package domain

import (
	"context"
	"time"
)

// TaskRepository manages task persistence.
// Write paths fail visibly; callers treat read failures as empty results.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(id string) (*Task, error)

	// List returns all tasks ordered by creation time.
	List() ([]*Task, error)

	// Insert stores a new task.
	Insert(task *Task) error

	// Update replaces the stored row keyed by task.ID.
	Update(task *Task) error

	// Delete removes a task and cascades to its connections.
	Delete(id string) error
}

// ConnectionRepository manages task connections.
type ConnectionRepository interface {
	InsertConnection(conn *Connection) error
	DeleteConnection(id string) error
	ListConnections() ([]Connection, error)
}

// ProjectRepository manages the global project index.
type ProjectRepository interface {
	// UpsertProject inserts or updates a project keyed by its path.
	UpsertProject(project *Project) error

	// GetProjectByPath returns the project registered at path. Returns nil if not found.
	GetProjectByPath(path string) (*Project, error)

	// ListProjects returns projects, most recently opened first.
	ListProjects() ([]*Project, error)
}

// SessionBackend is one session substrate (tmux, Windows Terminal tab, detached shell).
// Only Spawn reports failures; the rest degrade to empty/false.
type SessionBackend interface {
	// Kind returns the backend tag recorded for sessions it creates.
	Kind() BackendKind

	// Capabilities reports optional features of the backend.
	Capabilities() Capabilities

	// Spawn launches a session. Returns an error wrapping ErrSpawnFailure.
	Spawn(ctx context.Context, req SpawnRequest) error

	// Exists reports whether the session is alive on this backend.
	Exists(name string) bool

	// Capture returns the last lines of session output, newest at the end.
	Capture(name string, lines int) string

	// SendKeys injects text followed by Enter. A no-op without Capabilities.Input.
	SendKeys(name, text string) error

	// Kill terminates the session and removes its bookkeeping directory.
	// Failures are returned as warnings.
	Kill(name string) []string

	// List enumerates live sessions known to this backend.
	List() []SessionInfo

	// Attach connects the current terminal to the session.
	Attach(name string) error
}

// SessionManager is the uniform view over all backends.
// Spawn goes to the active backend chosen at startup; every other
// per-session operation is routed by the backend tag recorded for that session.
type SessionManager interface {
	// Active returns the backend used for new sessions.
	Active() BackendKind

	// Spawn launches a session on the active backend.
	Spawn(ctx context.Context, req SpawnRequest) error

	// Exists is true if any backend reports the session alive.
	Exists(name string) bool

	// Capture returns the last lines of output, or "" if unknown.
	Capture(name string, lines int) string

	// Capabilities returns the capabilities of the backend owning name.
	Capabilities(name string) Capabilities

	// SendKeys injects text. A no-op for backends without input support;
	// callers check Capabilities first when they need to know.
	SendKeys(name, text string) error

	// Kill terminates the session on every backend. Never fails the caller.
	Kill(name string) []string

	// List returns the merged session view, de-duplicated by name.
	List() []SessionInfo

	// Attach connects to a session. Returns ErrAttachUnsupported for non-interactive backends.
	Attach(name string) error
}

// WorktreeManager manages branch-scoped checkouts of one repository.
type WorktreeManager interface {
	// Path returns the deterministic worktree path for a slug.
	Path(slug string) string

	// Create creates (or reuses) the worktree for slug on branch task/<slug>.
	// created is false when an existing worktree was reused.
	// Returns an error wrapping ErrWorktreeCreation.
	Create(slug string) (path string, created bool, err error)

	// Initialize seeds the worktree with copied files and runs the init script.
	// It never fails; problems are returned as warnings.
	Initialize(worktreePath string, copyFiles []string, initScript string) []string

	// Remove removes the worktree, falling back to prune. Never fails the caller.
	Remove(slug string) []string
}

// PRService wraps the hosted review service CLI.
type PRService interface {
	// Status returns the PR state; any failure maps to PRStateUnknown.
	Status(ctx context.Context, number int) PRState

	// Create pushes head and opens a PR. Returns an error wrapping ErrPRCreation.
	Create(ctx context.Context, title, body, head string) (*PullRequest, error)
}

// Git provides repository queries.
type Git interface {
	// RepoRoot returns the repository root directory.
	RepoRoot() string

	// Diff returns the diff between two refs, or the diffstat when stat is true.
	Diff(ctx context.Context, base, target string, stat bool) (string, error)

	// RemoteURL returns the first URL of the named remote.
	RemoteURL(remote string) (string, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged settings (global + project).
	Load() (*Settings, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)

	// LoadProject returns only the project configuration (nil if absent).
	LoadProject() (*ProjectConfig, error)
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	GlobalConfigInfo() ConfigInfo
	ProjectConfigInfo() ConfigInfo

	// InitProjectConfig writes the project template. Returns ErrConfigExists if present.
	InitProjectConfig() (string, error)

	// InitGlobalConfig writes the global defaults. Returns ErrConfigExists if present.
	InitGlobalConfig() (string, error)
}

// AgentLocator reports whether an agent command is installed.
type AgentLocator interface {
	IsAvailable(command string) bool
}

// Logger writes task-scoped and global log entries.
// An empty taskID logs globally.
type Logger interface {
	Info(taskID, category, msg string)
	Debug(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// Execute runs the command and returns its combined output (stdout only on
	// success when cmd.StdoutOnly is set).
	Execute(ctx context.Context, cmd *ExecCommand) ([]byte, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
