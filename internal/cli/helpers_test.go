package cli

import (
	"time"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/testutil"
)

const (
	taskA = "1a2b3c4d-0000-4000-8000-000000000001"
	taskB = "9f8e7d6c-0000-4000-8000-000000000002"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// testDeps are the doubles behind a test container.
type testDeps struct {
	tasks     *testutil.MockTaskRepository
	conns     *testutil.MockConnectionRepository
	projects  *testutil.MockProjectRepository
	sessions  *testutil.MockSessionManager
	worktrees *testutil.MockWorktreeManager
	prs       *testutil.MockPRService
	git       *testutil.MockGit
	config    *testutil.MockConfigLoader
	manager   *testutil.MockConfigManager
	logger    *testutil.MockLogger
}

// newTestContainer creates an app.Container with mock dependencies.
func newTestContainer() (*app.Container, *testDeps) {
	d := &testDeps{
		tasks:     testutil.NewMockTaskRepository(),
		conns:     &testutil.MockConnectionRepository{},
		projects:  testutil.NewMockProjectRepository(),
		sessions:  testutil.NewMockSessionManager(),
		worktrees: testutil.NewMockWorktreeManager(),
		prs:       &testutil.MockPRService{States: map[int]domain.PRState{}},
		git:       &testutil.MockGit{Root: "/repo"},
		config:    testutil.NewMockConfigLoader(),
		manager:   &testutil.MockConfigManager{},
		logger:    &testutil.MockLogger{},
	}
	c := app.NewWithDeps(
		app.Config{RepoRoot: "/repo", ProjectName: "acme"},
		d.tasks,
		d.sessions,
		&testutil.MockClock{NowTime: testNow},
		d.logger,
	)
	c.Connections = d.conns
	c.Projects = d.projects
	c.Worktrees = d.worktrees
	c.PRs = d.prs
	c.Git = d.git
	c.ConfigLoader = d.config
	c.ConfigManager = d.manager
	c.Agents = &testutil.MockAgentLocator{Available: map[string]bool{"claude": true}}
	ids := []string{taskA, taskB, "conn-1"}
	c.NewID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return c, d
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

// stubPrompter answers questions with canned values.
type stubPrompter struct {
	err      error
	title    string
	body     string
	asked    []string
	confirm  bool
	editedPR bool
}

func (p *stubPrompter) Confirm(title, _ string) (bool, error) {
	p.asked = append(p.asked, title)
	return p.confirm, p.err
}

func (p *stubPrompter) PRDetails(title, body string) (string, string, error) {
	p.editedPR = true
	if p.title != "" {
		title = p.title
	}
	if p.body != "" {
		body = p.body
	}
	return title, body, p.err
}

// usePrompter swaps the prompter for the duration of the test.
func usePrompter(t interface{ Cleanup(func()) }, p prompter) {
	orig := newPrompter
	newPrompter = func() prompter { return p }
	t.Cleanup(func() { newPrompter = orig })
}
