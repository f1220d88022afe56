package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/testutil"
)

const (
	taskA = "1a2b3c4d-0000-4000-8000-000000000001"
	taskB = "9f8e7d6c-0000-4000-8000-000000000002"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type testDeps struct {
	tasks     *testutil.MockTaskRepository
	sessions  *testutil.MockSessionManager
	worktrees *testutil.MockWorktreeManager
	prs       *testutil.MockPRService
}

// newTestModel creates a board over mock dependencies. File watching is off.
func newTestModel() (*Model, *testDeps) {
	d := &testDeps{
		tasks:     testutil.NewMockTaskRepository(),
		sessions:  testutil.NewMockSessionManager(),
		worktrees: testutil.NewMockWorktreeManager(),
		prs:       &testutil.MockPRService{States: map[int]domain.PRState{}},
	}
	c := app.NewWithDeps(
		app.Config{RepoRoot: "/repo", ProjectName: "acme"},
		d.tasks,
		d.sessions,
		&testutil.MockClock{NowTime: testNow},
		&testutil.MockLogger{},
	)
	c.Connections = &testutil.MockConnectionRepository{}
	c.Projects = testutil.NewMockProjectRepository()
	c.Worktrees = d.worktrees
	c.PRs = d.prs
	c.Git = &testutil.MockGit{Root: "/repo"}
	c.ConfigLoader = testutil.NewMockConfigLoader()
	c.ConfigManager = &testutil.MockConfigManager{}
	c.Agents = &testutil.MockAgentLocator{Available: map[string]bool{"claude": true}}
	c.NewID = func() string { return taskB }
	return New(c), d
}

// addTask stores a task with the runtime fields its status implies.
func (d *testDeps) addTask(id, title string, status domain.Status) *domain.Task {
	task := domain.NewTask(id, title, "claude", "p1", testNow.Add(-2*time.Hour))
	task.Status = status
	if status != domain.StatusBacklog {
		task.BranchName = domain.BranchName(task.Slug())
	}
	if status.IsActive() {
		task.SessionName = domain.SessionName(id, "acme", task.Slug())
		task.WorktreePath = d.worktrees.Path(task.Slug())
	}
	d.tasks.Add(task)
	return task
}

// load runs the task load synchronously.
func load(m *Model) {
	m.Update(m.loadTasks()())
}

// press sends a key to the model and returns the resulting command.
func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}
