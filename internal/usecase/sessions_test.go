package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

func TestPeekSession_Execute(t *testing.T) {
	tests := []struct {
		name      string
		lines     int
		wantLines int
	}{
		{"default", 0, DefaultPeekLines},
		{"explicit", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newFixture()
			task := f.addTask(testTaskID, "Fix login bug", domain.StatusPlanning)
			f.sessions.SetLive(task.SessionName, true)
			var gotLines int
			f.sessions.CaptureFunc = func(_ string, lines int) string {
				gotLines = lines
				return "thinking..."
			}

			// Execute
			out, err := NewPeekSession(f.tasks, f.sessions).Execute(context.Background(), PeekSessionInput{TaskID: testTaskID, Lines: tt.lines})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "thinking...", out.Output)
			assert.Equal(t, task.SessionName, out.SessionName)
			assert.Equal(t, tt.wantLines, gotLines)
		})
	}
}

func TestPeekSession_Execute_NoSession(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Planned but dead", domain.StatusPlanning)
	f.addTask(otherTaskID, "Backlog", domain.StatusBacklog)
	uc := NewPeekSession(f.tasks, f.sessions)

	_, err1 := uc.Execute(context.Background(), PeekSessionInput{TaskID: testTaskID})
	_, err2 := uc.Execute(context.Background(), PeekSessionInput{TaskID: otherTaskID})

	assert.ErrorIs(t, err1, domain.ErrNoSession)
	assert.ErrorIs(t, err2, domain.ErrNoSession)
}

func TestSendKeys_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)
	f.sessions.SetLive(task.SessionName, true)

	// Execute
	err := NewSendKeys(f.tasks, f.sessions, f.logger).Execute(context.Background(), SendKeysInput{TaskID: testTaskID, Text: "run the tests"})

	// Assert
	require.NoError(t, err)
	sent := f.sessions.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "run the tests", sent[0].Text)
}

func TestSendKeys_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		live    bool
		caps    domain.Capabilities
		sendErr error
		wantErr error
	}{
		{name: "no session", live: false, caps: domain.Capabilities{Input: true}, wantErr: domain.ErrNoSession},
		{name: "no input", live: true, caps: domain.Capabilities{}, wantErr: domain.ErrInputUnsupported},
		{name: "send fails", live: true, caps: domain.Capabilities{Input: true}, sendErr: errors.New("pane gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			task := f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)
			f.sessions.SetLive(task.SessionName, tt.live)
			f.sessions.Caps[task.SessionName] = tt.caps
			f.sessions.SendErr = tt.sendErr

			err := NewSendKeys(f.tasks, f.sessions, f.logger).Execute(context.Background(), SendKeysInput{TaskID: testTaskID, Text: "x"})

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, f.sessions.Sent())
		})
	}
}

func TestAttachSession_Execute(t *testing.T) {
	f := newFixture()
	task := f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)
	f.sessions.SetLive(task.SessionName, true)

	err := NewAttachSession(f.tasks, f.sessions).Execute(context.Background(), AttachSessionInput{TaskID: testTaskID})

	require.NoError(t, err)
	assert.Equal(t, []string{task.SessionName}, f.sessions.Attached())
}

func TestAttachSession_Execute_Unsupported(t *testing.T) {
	f := newFixture()
	task := f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)
	f.sessions.SetLive(task.SessionName, true)
	f.sessions.Caps[task.SessionName] = domain.Capabilities{}

	err := NewAttachSession(f.tasks, f.sessions).Execute(context.Background(), AttachSessionInput{TaskID: testTaskID})

	assert.ErrorIs(t, err, domain.ErrAttachUnsupported)
	assert.Empty(t, f.sessions.Attached())
}

func TestAttachSession_Execute_NoSession(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)

	err := NewAttachSession(f.tasks, f.sessions).Execute(context.Background(), AttachSessionInput{TaskID: testTaskID})

	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestListSessions_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.addTask(testTaskID, "Fix login bug", domain.StatusRunning)
	f.sessions.Sessions = []domain.SessionInfo{
		{Name: task.SessionName, Backend: domain.BackendTmux, Created: testNow},
		{Name: "task-deadbeef--other--thing", Backend: domain.BackendShell, Created: testNow.Add(time.Minute)},
		{Name: "scratch", Backend: domain.BackendTmux},
	}
	uc := NewListSessions(f.tasks, f.sessions, f.logger)

	// Execute
	out, err := uc.Execute(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, out.Sessions, 3)
	require.NotNil(t, out.Sessions[0].Task)
	assert.Equal(t, testTaskID, out.Sessions[0].Task.ID)
	assert.Equal(t, "acme", out.Sessions[0].Project)
	assert.Nil(t, out.Sessions[1].Task)
	assert.Equal(t, "other", out.Sessions[1].Project)
	assert.Equal(t, domain.BackendShell, out.Sessions[1].Info.Backend)
	assert.Nil(t, out.Sessions[2].Task)
	assert.Empty(t, out.Sessions[2].Project)
}

func TestListSessions_Execute_TaskReadError(t *testing.T) {
	f := newFixture()
	f.tasks.ListErr = errors.New("locked")
	f.sessions.Sessions = []domain.SessionInfo{{Name: "task-1a2b3c4d--acme--x"}}

	out, err := NewListSessions(f.tasks, f.sessions, f.logger).Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, out.Sessions, 1)
	assert.Nil(t, out.Sessions[0].Task)
	assert.True(t, f.logger.Has("WARN", "locked"))
}

func TestShowDiff_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusReview)
	f.config.Global.Worktree.BaseBranch = "develop"
	f.git.DiffOutput = " login.go | 4 ++--\n"

	// Execute
	out, err := NewShowDiff(f.tasks, f.git, f.config).Execute(context.Background(), ShowDiffInput{TaskID: testTaskID, Stat: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, " login.go | 4 ++--\n", out.Diff)
	assert.Equal(t, "develop", out.Base)
	assert.Equal(t, "task/fix-login-bug", out.Branch)
	require.Len(t, f.git.Diffs, 1)
	assert.Equal(t, "develop", f.git.Diffs[0].Base)
	assert.Equal(t, "task/fix-login-bug", f.git.Diffs[0].Target)
	assert.True(t, f.git.Diffs[0].Stat)
}

func TestShowDiff_Execute_Backlog(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Idle", domain.StatusBacklog)

	_, err := NewShowDiff(f.tasks, f.git, f.config).Execute(context.Background(), ShowDiffInput{TaskID: testTaskID})

	assert.ErrorIs(t, err, domain.ErrNoBranch)
	assert.Empty(t, f.git.Diffs)
}

func TestShowDiff_Execute_DoneTaskKeepsBranch(t *testing.T) {
	f := newFixture()
	f.addTask(testTaskID, "Fix login bug", domain.StatusDone)

	_, err := NewShowDiff(f.tasks, f.git, f.config).Execute(context.Background(), ShowDiffInput{TaskID: testTaskID})

	require.NoError(t, err)
	assert.Equal(t, "task/fix-login-bug", f.git.Diffs[0].Target)
}
