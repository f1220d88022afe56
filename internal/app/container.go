// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/config"
	"github.com/upfyn/upfyn-agents/internal/infra/executor"
	"github.com/upfyn/upfyn-agents/internal/infra/git"
	"github.com/upfyn/upfyn-agents/internal/infra/github"
	"github.com/upfyn/upfyn-agents/internal/infra/logging"
	"github.com/upfyn/upfyn-agents/internal/infra/runner"
	"github.com/upfyn/upfyn-agents/internal/infra/session"
	"github.com/upfyn/upfyn-agents/internal/infra/sessiondir"
	"github.com/upfyn/upfyn-agents/internal/infra/shellproc"
	"github.com/upfyn/upfyn-agents/internal/infra/sqlitestore"
	"github.com/upfyn/upfyn-agents/internal/infra/tmux"
	"github.com/upfyn/upfyn-agents/internal/infra/worktree"
	"github.com/upfyn/upfyn-agents/internal/infra/wt"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// initScriptTimeout bounds the worktree init script.
const initScriptTimeout = 10 * time.Minute

// Config holds the application paths.
type Config struct {
	RepoRoot    string // Root directory of the git repository
	ConfigDir   string // Global config directory (config, databases, logs, sessions)
	ProjectName string // Basename of RepoRoot, embedded in session names
	ProjectDB   string // Path to this project's task database
	SessionsDir string // Session bookkeeping root
}

// newConfig creates a new Config for the repository at repoRoot.
func newConfig(configDir, repoRoot string) Config {
	return Config{
		RepoRoot:    repoRoot,
		ConfigDir:   configDir,
		ProjectName: filepath.Base(repoRoot),
		ProjectDB:   domain.ProjectDBPath(configDir, repoRoot),
		SessionsDir: domain.SessionsDir(configDir),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks         domain.TaskRepository
	Connections   domain.ConnectionRepository
	Projects      domain.ProjectRepository
	Clock         domain.Clock
	Git           domain.Git
	Worktrees     domain.WorktreeManager
	Sessions      domain.SessionManager
	PRs           domain.PRService
	Agents        domain.AgentLocator
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger

	// NewID generates task, connection and project identifiers.
	NewID func() string

	// Pointer fields
	Console *slog.Logger
	Watcher *usecase.AcceptanceWatcher

	closers []io.Closer

	// Configuration
	Config    Config
	ProjectID string // Id of the current repository in the project index
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string) (*Container, error) {
	gitClient, err := git.NewClient(dir)
	if err != nil {
		return nil, err
	}

	configDir, err := config.DefaultConfigDir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	cfg := newConfig(configDir, gitClient.RepoRoot())

	configLoader := config.NewLoader(cfg.ConfigDir, cfg.RepoRoot)
	console := logging.NewConsole(os.Stderr, slog.LevelInfo)
	settings, err := configLoader.Load()
	if err != nil {
		console.Warn("using default configuration", "err", err)
		settings = domain.Merge(nil, nil)
	}

	fileLogger := logging.New(cfg.ConfigDir, logging.ParseLevel(settings.LogLevel))

	projectStore, err := sqlitestore.OpenProjectAt(cfg.ProjectDB)
	if err != nil {
		_ = fileLogger.Close()
		return nil, fmt.Errorf("open project store: %w", err)
	}
	indexStore, err := sqlitestore.OpenIndex(cfg.ConfigDir)
	if err != nil {
		_ = projectStore.Close()
		_ = fileLogger.Close()
		return nil, fmt.Errorf("open project index: %w", err)
	}

	// Session backends share one bookkeeping root
	sessionDirs := sessiondir.New(cfg.SessionsDir)
	active := session.Select(session.HostProbe(tmux.Available, wt.Available))
	sessions, err := session.NewSet(active, sessionDirs,
		tmux.NewClient(tmux.DefaultServer, sessionDirs),
		wt.NewClient(sessionDirs),
		shellproc.NewClient(sessionDirs),
	)
	if err != nil {
		_ = indexStore.Close()
		_ = projectStore.Close()
		_ = fileLogger.Close()
		return nil, err
	}
	fileLogger.Debug("", "session", fmt.Sprintf("active backend: %s", active))

	exec := executor.NewClient(executor.DefaultTimeout)

	c := &Container{
		Tasks:         projectStore,
		Connections:   projectStore,
		Projects:      indexStore,
		Clock:         domain.RealClock{},
		Git:           gitClient,
		Worktrees:     worktree.NewClient(cfg.RepoRoot, runner.NewClient(initScriptTimeout)),
		Sessions:      sessions,
		PRs:           github.NewClient(exec, cfg.RepoRoot),
		Agents:        exec,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(cfg.ConfigDir, cfg.RepoRoot),
		Logger:        fileLogger,
		NewID:         uuid.NewString,
		Console:       console,
		Watcher:       usecase.NewAcceptanceWatcher(sessions, fileLogger, usecase.DefaultWatcherTiming()),
		closers:       []io.Closer{projectStore, indexStore, fileLogger},
		Config:        cfg,
	}
	c.register()
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, tasks domain.TaskRepository, sessions domain.SessionManager, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Tasks:    tasks,
		Sessions: sessions,
		Clock:    clock,
		Logger:   logger,
		NewID:    uuid.NewString,
		Console:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
	}
}

// register records the repository in the project index. Failures only cost
// the project listing, so they are logged and otherwise ignored.
func (c *Container) register() {
	out, err := c.RegisterProjectUseCase().Execute(context.Background())
	if err != nil {
		c.Logger.Warn("", "project", fmt.Sprintf("register project: %v", err))
		return
	}
	c.ProjectID = out.Project.ID
}

// Close stops pending watchers and releases stores and log files.
func (c *Container) Close() error {
	if c.Watcher != nil {
		c.Watcher.StopAll()
	}
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UseCase factory methods

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Tasks, c.ConfigLoader, c.Clock, c.Logger, c.NewID, c.ProjectID)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.NewTaskUseCase())
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks, c.Sessions, c.Logger)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks, c.Connections, c.Sessions, c.PRs)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.Sessions, c.Worktrees, c.Logger, c.Watcher)
}

// StartPlanningUseCase returns a new StartPlanning use case.
func (c *Container) StartPlanningUseCase() *usecase.StartPlanning {
	return usecase.NewStartPlanning(c.Tasks, c.Sessions, c.Worktrees, c.ConfigLoader, c.Clock, c.Logger, c.Watcher, c.Config.ProjectName)
}

// StartRunningUseCase returns a new StartRunning use case.
func (c *Container) StartRunningUseCase() *usecase.StartRunning {
	return usecase.NewStartRunning(c.Tasks, c.Sessions, c.Clock, c.Logger)
}

// MoveToReviewUseCase returns a new MoveToReview use case.
func (c *Container) MoveToReviewUseCase() *usecase.MoveToReview {
	return usecase.NewMoveToReview(c.Tasks, c.PRs, c.Clock, c.Logger)
}

// MoveToDoneUseCase returns a new MoveToDone use case.
func (c *Container) MoveToDoneUseCase() *usecase.MoveToDone {
	return usecase.NewMoveToDone(c.Tasks, c.Sessions, c.Worktrees, c.PRs, c.Clock, c.Logger, c.Watcher)
}

// ResumeTaskUseCase returns a new ResumeTask use case.
func (c *Container) ResumeTaskUseCase() *usecase.ResumeTask {
	return usecase.NewResumeTask(c.Tasks, c.Clock, c.Logger)
}

// AdvanceTaskUseCase returns a new AdvanceTask use case.
func (c *Container) AdvanceTaskUseCase() *usecase.AdvanceTask {
	return usecase.NewAdvanceTask(c.Tasks,
		c.StartPlanningUseCase(),
		c.StartRunningUseCase(),
		c.MoveToReviewUseCase(),
		c.MoveToDoneUseCase(),
	)
}

// QuickStartUseCase returns a new QuickStart use case.
func (c *Container) QuickStartUseCase() *usecase.QuickStart {
	return usecase.NewQuickStart(c.StartPlanningUseCase(), c.StartRunningUseCase(), c.Watcher)
}

// PeekSessionUseCase returns a new PeekSession use case.
func (c *Container) PeekSessionUseCase() *usecase.PeekSession {
	return usecase.NewPeekSession(c.Tasks, c.Sessions)
}

// SendKeysUseCase returns a new SendKeys use case.
func (c *Container) SendKeysUseCase() *usecase.SendKeys {
	return usecase.NewSendKeys(c.Tasks, c.Sessions, c.Logger)
}

// AttachSessionUseCase returns a new AttachSession use case.
func (c *Container) AttachSessionUseCase() *usecase.AttachSession {
	return usecase.NewAttachSession(c.Tasks, c.Sessions)
}

// ListSessionsUseCase returns a new ListSessions use case.
func (c *Container) ListSessionsUseCase() *usecase.ListSessions {
	return usecase.NewListSessions(c.Tasks, c.Sessions, c.Logger)
}

// ShowDiffUseCase returns a new ShowDiff use case.
func (c *Container) ShowDiffUseCase() *usecase.ShowDiff {
	return usecase.NewShowDiff(c.Tasks, c.Git, c.ConfigLoader)
}

// ListAgentsUseCase returns a new ListAgents use case.
func (c *Container) ListAgentsUseCase() *usecase.ListAgents {
	return usecase.NewListAgents(c.Agents, c.ConfigLoader)
}

// RegisterProjectUseCase returns a new RegisterProject use case.
func (c *Container) RegisterProjectUseCase() *usecase.RegisterProject {
	return usecase.NewRegisterProject(c.Projects, c.Git, c.ConfigLoader, c.Clock, c.NewID)
}

// ListProjectsUseCase returns a new ListProjects use case.
func (c *Container) ListProjectsUseCase() *usecase.ListProjects {
	return usecase.NewListProjects(c.Projects)
}

// AddConnectionUseCase returns a new AddConnection use case.
func (c *Container) AddConnectionUseCase() *usecase.AddConnection {
	return usecase.NewAddConnection(c.Tasks, c.Connections, c.NewID)
}

// RemoveConnectionUseCase returns a new RemoveConnection use case.
func (c *Container) RemoveConnectionUseCase() *usecase.RemoveConnection {
	return usecase.NewRemoveConnection(c.Connections)
}

// ListConnectionsUseCase returns a new ListConnections use case.
func (c *Container) ListConnectionsUseCase() *usecase.ListConnections {
	return usecase.NewListConnections(c.Tasks, c.Connections)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigLoader, c.ConfigManager)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
