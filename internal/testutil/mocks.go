// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.Clock                = (*MockClock)(nil)
	_ domain.TaskRepository       = (*MockTaskRepository)(nil)
	_ domain.ConnectionRepository = (*MockConnectionRepository)(nil)
	_ domain.ProjectRepository    = (*MockProjectRepository)(nil)
	_ domain.SessionManager       = (*MockSessionManager)(nil)
	_ domain.WorktreeManager      = (*MockWorktreeManager)(nil)
	_ domain.PRService            = (*MockPRService)(nil)
	_ domain.Git                  = (*MockGit)(nil)
	_ domain.ConfigLoader         = (*MockConfigLoader)(nil)
	_ domain.ConfigManager        = (*MockConfigManager)(nil)
	_ domain.Logger               = (*MockLogger)(nil)
	_ domain.AgentLocator         = (*MockAgentLocator)(nil)
	_ domain.CommandExecutor      = (*FakeExecutor)(nil)
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskRepository is a test double for domain.TaskRepository.
// Stored tasks are copies, so callers cannot mutate them behind the repository's back.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks     map[string]*domain.Task
	GetErr    error
	ListErr   error
	InsertErr error
	UpdateErr error
	DeleteErr error
	Deleted   []string
	Updates   int
}

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{Tasks: make(map[string]*domain.Task)}
}

// Add stores a task directly, bypassing error injection.
func (m *MockTaskRepository) Add(task *domain.Task) {
	m.Tasks[task.ID] = task.Clone()
}

// Get retrieves a copy of a task by ID.
func (m *MockTaskRepository) Get(id string) (*domain.Task, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	return task.Clone(), nil
}

// List returns copies of all tasks ordered by creation time.
func (m *MockTaskRepository) List() ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		tasks = append(tasks, t.Clone())
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// Insert stores a new task.
func (m *MockTaskRepository) Insert(task *domain.Task) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Tasks[task.ID] = task.Clone()
	return nil
}

// Update replaces a stored task.
func (m *MockTaskRepository) Update(task *domain.Task) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	m.Updates++
	m.Tasks[task.ID] = task.Clone()
	return nil
}

// Delete removes a task.
func (m *MockTaskRepository) Delete(id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Tasks, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockConnectionRepository is a test double for domain.ConnectionRepository.
type MockConnectionRepository struct {
	InsertErr   error
	DeleteErr   error
	ListErr     error
	Connections []domain.Connection
}

// InsertConnection stores a connection.
func (m *MockConnectionRepository) InsertConnection(conn *domain.Connection) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Connections = append(m.Connections, *conn)
	return nil
}

// DeleteConnection removes a connection by id.
func (m *MockConnectionRepository) DeleteConnection(id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, c := range m.Connections {
		if c.ID == id {
			m.Connections = append(m.Connections[:i], m.Connections[i+1:]...)
			return nil
		}
	}
	return domain.ErrConnectionNotFound
}

// ListConnections returns all connections.
func (m *MockConnectionRepository) ListConnections() ([]domain.Connection, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Connection, len(m.Connections))
	copy(out, m.Connections)
	return out, nil
}

// MockProjectRepository is a test double for domain.ProjectRepository.
type MockProjectRepository struct {
	Projects  map[string]*domain.Project // keyed by path
	UpsertErr error
	GetErr    error
	ListErr   error
}

// NewMockProjectRepository creates a new MockProjectRepository.
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{Projects: make(map[string]*domain.Project)}
}

// UpsertProject inserts or updates a project, keeping the existing id.
func (m *MockProjectRepository) UpsertProject(project *domain.Project) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	p := *project
	if existing, ok := m.Projects[p.Path]; ok {
		p.ID = existing.ID
	}
	m.Projects[p.Path] = &p
	return nil
}

// GetProjectByPath returns the project at path, or nil.
func (m *MockProjectRepository) GetProjectByPath(path string) (*domain.Project, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.Projects[path]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// ListProjects returns projects, most recently opened first.
func (m *MockProjectRepository) ListProjects() ([]*domain.Project, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*domain.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastOpened.After(out[j].LastOpened) })
	return out, nil
}

// SentKeys records one SendKeys call.
type SentKeys struct {
	Name string
	Text string
}

// MockSessionManager is a test double for domain.SessionManager.
// It is safe for concurrent use so watcher goroutines can drive it.
type MockSessionManager struct {
	Live        map[string]bool
	Outputs     map[string]string
	Caps        map[string]domain.Capabilities
	CaptureFunc func(name string, lines int) string
	SpawnErr    error
	SendErr     error
	AttachErr   error
	ActiveKind  domain.BackendKind
	Sessions    []domain.SessionInfo
	KillWarns   []string
	spawned     []domain.SpawnRequest
	sent        []SentKeys
	killed      []string
	attached    []string
	captures    int
	mu          sync.Mutex
	DefaultCaps domain.Capabilities
}

// NewMockSessionManager creates a tmux-like mock with full capabilities.
func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		Live:        make(map[string]bool),
		Outputs:     make(map[string]string),
		Caps:        make(map[string]domain.Capabilities),
		ActiveKind:  domain.BackendTmux,
		DefaultCaps: domain.Capabilities{Input: true, Attach: true},
	}
}

// Active returns the configured backend kind.
func (m *MockSessionManager) Active() domain.BackendKind {
	return m.ActiveKind
}

// Spawn records the request and marks the session live.
func (m *MockSessionManager) Spawn(_ context.Context, req domain.SpawnRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spawned = append(m.spawned, req)
	if m.SpawnErr != nil {
		return m.SpawnErr
	}
	m.Live[req.Name] = true
	return nil
}

// SetLive marks a session live or dead.
func (m *MockSessionManager) SetLive(name string, live bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live {
		m.Live[name] = true
		return
	}
	delete(m.Live, name)
}

// Exists reports whether the session is live.
func (m *MockSessionManager) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Live[name]
}

// Capture returns CaptureFunc's output, or the configured output.
func (m *MockSessionManager) Capture(name string, lines int) string {
	m.mu.Lock()
	m.captures++
	fn := m.CaptureFunc
	out := m.Outputs[name]
	m.mu.Unlock()
	if fn != nil {
		return fn(name, lines)
	}
	return out
}

// Captures returns the number of Capture calls.
func (m *MockSessionManager) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

// Capabilities returns the per-session capabilities or DefaultCaps.
func (m *MockSessionManager) Capabilities(name string) domain.Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Caps[name]; ok {
		return c
	}
	return m.DefaultCaps
}

// SendKeys records the keys.
func (m *MockSessionManager) SendKeys(name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, SentKeys{Name: name, Text: text})
	return nil
}

// Kill records the kill and marks the session dead.
func (m *MockSessionManager) Kill(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.killed = append(m.killed, name)
	delete(m.Live, name)
	return m.KillWarns
}

// List returns the configured sessions.
func (m *MockSessionManager) List() []domain.SessionInfo {
	return m.Sessions
}

// Attach records the attach.
func (m *MockSessionManager) Attach(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AttachErr != nil {
		return m.AttachErr
	}
	m.attached = append(m.attached, name)
	return nil
}

// Spawned returns the recorded spawn requests.
func (m *MockSessionManager) Spawned() []domain.SpawnRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SpawnRequest(nil), m.spawned...)
}

// Sent returns the recorded SendKeys calls.
func (m *MockSessionManager) Sent() []SentKeys {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentKeys(nil), m.sent...)
}

// Killed returns the recorded Kill calls.
func (m *MockSessionManager) Killed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.killed...)
}

// Attached returns the recorded Attach calls.
func (m *MockSessionManager) Attached() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attached...)
}

// InitCall records one WorktreeManager.Initialize call.
type InitCall struct {
	Path       string
	InitScript string
	CopyFiles  []string
}

// MockWorktreeManager is a test double for domain.WorktreeManager.
type MockWorktreeManager struct {
	CreateErr      error
	Existing       map[string]bool // Slugs whose worktree already exists
	RepoRoot       string
	Created        []string
	Removed        []string
	Initialized    []InitCall
	InitWarnings   []string
	RemoveWarnings []string
}

// NewMockWorktreeManager creates a mock rooted at /repo.
func NewMockWorktreeManager() *MockWorktreeManager {
	return &MockWorktreeManager{RepoRoot: "/repo"}
}

// Path returns the deterministic worktree path.
func (m *MockWorktreeManager) Path(slug string) string {
	return domain.WorktreePath(m.RepoRoot, slug)
}

// Create records the slug and returns its path.
// Slugs in Existing, or created before, are reported as reused.
func (m *MockWorktreeManager) Create(slug string) (string, bool, error) {
	if m.CreateErr != nil {
		return "", false, m.CreateErr
	}
	if m.Existing[slug] {
		return m.Path(slug), false, nil
	}
	if m.Existing == nil {
		m.Existing = make(map[string]bool)
	}
	m.Existing[slug] = true
	m.Created = append(m.Created, slug)
	return m.Path(slug), true, nil
}

// Initialize records the call and returns InitWarnings.
func (m *MockWorktreeManager) Initialize(path string, copyFiles []string, initScript string) []string {
	m.Initialized = append(m.Initialized, InitCall{Path: path, CopyFiles: copyFiles, InitScript: initScript})
	return m.InitWarnings
}

// Remove records the slug and returns RemoveWarnings.
func (m *MockWorktreeManager) Remove(slug string) []string {
	m.Removed = append(m.Removed, slug)
	return m.RemoveWarnings
}

// PRCall records one PRService.Create call.
type PRCall struct {
	Title string
	Body  string
	Head  string
}

// MockPRService is a test double for domain.PRService.
type MockPRService struct {
	States    map[int]domain.PRState
	CreateErr error
	PR        *domain.PullRequest
	Created   []PRCall
	Checked   []int
}

// Status returns the configured state, unknown by default.
func (m *MockPRService) Status(_ context.Context, number int) domain.PRState {
	m.Checked = append(m.Checked, number)
	if s, ok := m.States[number]; ok {
		return s
	}
	return domain.PRStateUnknown
}

// Create records the call and returns PR.
func (m *MockPRService) Create(_ context.Context, title, body, head string) (*domain.PullRequest, error) {
	m.Created = append(m.Created, PRCall{Title: title, Body: body, Head: head})
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.PR == nil {
		return &domain.PullRequest{URL: "https://github.com/org/repo/pull/1", Number: 1}, nil
	}
	pr := *m.PR
	return &pr, nil
}

// DiffCall records one Git.Diff call.
type DiffCall struct {
	Base   string
	Target string
	Stat   bool
}

// MockGit is a test double for domain.Git.
type MockGit struct {
	DiffErr    error
	RemoteErr  error
	Root       string
	DiffOutput string
	Remote     string
	Diffs      []DiffCall
}

// RepoRoot returns the configured root.
func (m *MockGit) RepoRoot() string {
	return m.Root
}

// Diff records the call and returns DiffOutput.
func (m *MockGit) Diff(_ context.Context, base, target string, stat bool) (string, error) {
	m.Diffs = append(m.Diffs, DiffCall{Base: base, Target: target, Stat: stat})
	if m.DiffErr != nil {
		return "", m.DiffErr
	}
	return m.DiffOutput, nil
}

// RemoteURL returns the configured remote URL.
func (m *MockGit) RemoteURL(_ string) (string, error) {
	if m.RemoteErr != nil {
		return "", m.RemoteErr
	}
	return m.Remote, nil
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Global  *domain.Config
	Project *domain.ProjectConfig
	LoadErr error
}

// NewMockConfigLoader returns a loader serving the built-in defaults.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Global: domain.NewDefaultConfig()}
}

// Load returns the merged settings.
func (m *MockConfigLoader) Load() (*domain.Settings, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return domain.Merge(m.Global, m.Project), nil
}

// LoadGlobal returns the global config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Global, nil
}

// LoadProject returns the project config.
func (m *MockConfigLoader) LoadProject() (*domain.ProjectConfig, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Project, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitErr     error
	Global      domain.ConfigInfo
	Project     domain.ConfigInfo
	InitCalls   int
	GlobalCalls int
}

// GlobalConfigInfo returns Global.
func (m *MockConfigManager) GlobalConfigInfo() domain.ConfigInfo {
	return m.Global
}

// ProjectConfigInfo returns Project.
func (m *MockConfigManager) ProjectConfigInfo() domain.ConfigInfo {
	return m.Project
}

// InitProjectConfig records the call.
func (m *MockConfigManager) InitProjectConfig() (string, error) {
	m.InitCalls++
	return m.Project.Path, m.InitErr
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig() (string, error) {
	m.GlobalCalls++
	return m.Global.Path, m.InitErr
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger records log calls. Safe for concurrent use.
type MockLogger struct {
	entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("INFO", taskID, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Entries returns the recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.entries...)
}

// Has reports whether an entry at level contains substr.
func (m *MockLogger) Has(level, substr string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MockAgentLocator is a test double for domain.AgentLocator.
type MockAgentLocator struct {
	Available map[string]bool
}

// IsAvailable reports the configured availability.
func (m *MockAgentLocator) IsAvailable(command string) bool {
	return m.Available[command]
}

// FakeExecutor replays canned outputs by call index and records every command.
type FakeExecutor struct {
	Outputs  [][]byte
	Errs     []error
	Commands []*domain.ExecCommand
}

// Execute records cmd and returns the output and error configured for this call.
func (f *FakeExecutor) Execute(_ context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	i := len(f.Commands)
	f.Commands = append(f.Commands, cmd)
	var (
		out []byte
		err error
	)
	if i < len(f.Outputs) {
		out = f.Outputs[i]
	}
	if i < len(f.Errs) {
		err = f.Errs[i]
	}
	return out, err
}
