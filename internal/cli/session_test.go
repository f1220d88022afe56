package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/testutil"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

func TestPeekCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantLines int
	}{
		{name: "default lines", args: nil, wantLines: usecase.DefaultPeekLines},
		{name: "explicit lines", args: []string{"-n", "5"}, wantLines: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			c, d := newTestContainer()
			task := d.addTask(taskA, "Fix login bug", domain.StatusRunning)
			d.sessions.SetLive(task.SessionName, true)
			var gotLines int
			d.sessions.CaptureFunc = func(_ string, lines int) string {
				gotLines = lines
				return "building...\n\n"
			}

			cmd := newPeekCommand(c)
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetArgs(append([]string{"1a2b"}, tt.args...))

			// Execute
			err := cmd.Execute()

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "building...\n", buf.String())
			assert.Equal(t, tt.wantLines, gotLines)
		})
	}
}

func TestPeekCommand_NoSession(t *testing.T) {
	// Setup
	c, d := newTestContainer()
	d.addTask(taskA, "Fix login bug", domain.StatusBacklog)

	cmd := newPeekCommand(c)
	cmd.SetArgs([]string{"1a2b"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSendCommand(t *testing.T) {
	// Setup
	c, d := newTestContainer()
	task := d.addTask(taskA, "Fix login bug", domain.StatusRunning)
	d.sessions.SetLive(task.SessionName, true)

	cmd := newSendCommand(c)
	cmd.SetArgs([]string{"1a2b", "run", "the", "tests"})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []testutil.SentKeys{{Name: task.SessionName, Text: "run the tests"}}, d.sessions.Sent())
}

func TestSendCommand_InputUnsupported(t *testing.T) {
	// Setup
	c, d := newTestContainer()
	task := d.addTask(taskA, "Fix login bug", domain.StatusRunning)
	d.sessions.SetLive(task.SessionName, true)
	d.sessions.Caps[task.SessionName] = domain.Capabilities{}

	cmd := newSendCommand(c)
	cmd.SetArgs([]string{"1a2b", "hello"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorIs(t, err, domain.ErrInputUnsupported)
	assert.Empty(t, d.sessions.Sent())
}

func TestAttachCommand(t *testing.T) {
	tests := []struct {
		wantErr error
		caps    *domain.Capabilities
		name    string
		live    bool
	}{
		{name: "attachable", live: true},
		{name: "no attach capability", live: true, caps: &domain.Capabilities{Input: true}, wantErr: domain.ErrAttachUnsupported},
		{name: "dead session", live: false, wantErr: domain.ErrNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			c, d := newTestContainer()
			task := d.addTask(taskA, "Fix login bug", domain.StatusPlanning)
			d.sessions.SetLive(task.SessionName, tt.live)
			if tt.caps != nil {
				d.sessions.Caps[task.SessionName] = *tt.caps
			}

			cmd := newAttachCommand(c)
			cmd.SetArgs([]string{"1a2b"})

			// Execute
			err := cmd.Execute()

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, d.sessions.Attached())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{task.SessionName}, d.sessions.Attached())
		})
	}
}

func TestSessionsCommand(t *testing.T) {
	// Setup
	c, d := newTestContainer()
	task := d.addTask(taskA, "Fix login bug", domain.StatusRunning)
	d.sessions.Sessions = []domain.SessionInfo{
		{Name: task.SessionName, Backend: domain.BackendTmux, Created: testNow.Add(-3 * time.Minute)},
		{Name: "scratch"},
	}

	cmd := newSessionsCommand(c)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, task.SessionName)
	assert.Contains(t, out, "1a2b3c4d Running")
	assert.Contains(t, out, "3m")
	assert.Contains(t, out, "scratch")
	assert.Contains(t, out, "?")
}

func TestSessionsCommand_Empty(t *testing.T) {
	// Setup
	c, _ := newTestContainer()
	cmd := newSessionsCommand(c)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "No sessions.\n", buf.String())
}
