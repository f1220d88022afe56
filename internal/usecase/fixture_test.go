package usecase

import (
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/testutil"
)

const (
	testProject = "acme"
	testTaskID  = "1a2b3c4d-0000-4000-8000-000000000001"
	otherTaskID = "9f8e7d6c-0000-4000-8000-000000000002"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// fixture bundles the doubles shared by use case tests.
type fixture struct {
	tasks     *testutil.MockTaskRepository
	conns     *testutil.MockConnectionRepository
	projects  *testutil.MockProjectRepository
	sessions  *testutil.MockSessionManager
	worktrees *testutil.MockWorktreeManager
	prs       *testutil.MockPRService
	git       *testutil.MockGit
	config    *testutil.MockConfigLoader
	logger    *testutil.MockLogger
	clock     *testutil.MockClock
	ids       []string
}

func newFixture() *fixture {
	return &fixture{
		tasks:     testutil.NewMockTaskRepository(),
		conns:     &testutil.MockConnectionRepository{},
		projects:  testutil.NewMockProjectRepository(),
		sessions:  testutil.NewMockSessionManager(),
		worktrees: testutil.NewMockWorktreeManager(),
		prs:       &testutil.MockPRService{States: map[int]domain.PRState{}},
		git:       &testutil.MockGit{Root: "/repo"},
		config:    testutil.NewMockConfigLoader(),
		logger:    &testutil.MockLogger{},
		clock:     &testutil.MockClock{NowTime: testNow},
		ids:       []string{testTaskID, otherTaskID, "c0ffee00-0000-4000-8000-000000000003"},
	}
}

// newID hands out the fixture ids in order.
func (f *fixture) newID() string {
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id
}

// addTask stores a task with the given status. Active tasks carry the
// runtime fields that the planning transition would have set.
func (f *fixture) addTask(id, title string, status domain.Status) *domain.Task {
	task := domain.NewTask(id, title, "claude", "p1", testNow.Add(-time.Hour))
	task.Status = status
	if status != domain.StatusBacklog {
		task.BranchName = domain.BranchName(task.Slug())
	}
	if status.IsActive() {
		task.SessionName = domain.SessionName(id, testProject, task.Slug())
		task.WorktreePath = f.worktrees.Path(task.Slug())
	}
	f.tasks.Add(task)
	return task
}

func (f *fixture) stored(id string) *domain.Task {
	return f.tasks.Tasks[id]
}

func (f *fixture) newStartPlanning(watcher *AcceptanceWatcher) *StartPlanning {
	uc := NewStartPlanning(f.tasks, f.sessions, f.worktrees, f.config, f.clock, f.logger, watcher, testProject)
	uc.goos = "linux"
	return uc
}

func (f *fixture) newStartRunning() *StartRunning {
	return NewStartRunning(f.tasks, f.sessions, f.clock, f.logger)
}

func (f *fixture) newMoveToReview() *MoveToReview {
	return NewMoveToReview(f.tasks, f.prs, f.clock, f.logger)
}

func (f *fixture) newMoveToDone(watcher *AcceptanceWatcher) *MoveToDone {
	return NewMoveToDone(f.tasks, f.sessions, f.worktrees, f.prs, f.clock, f.logger, watcher)
}

func (f *fixture) newWatcher(timing WatcherTiming) *AcceptanceWatcher {
	return NewAcceptanceWatcher(f.sessions, f.logger, timing)
}
