package github

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/executor"
	"github.com/upfyn/upfyn-agents/internal/testutil"
)

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   domain.PRState
	}{
		{"open", `{"state":"OPEN"}`, nil, domain.PRStateOpen},
		{"merged", `{"state":"MERGED"}`, nil, domain.PRStateMerged},
		{"closed", `{"state":"CLOSED"}`, nil, domain.PRStateClosed},
		{"unexpected state", `{"state":"DRAFT"}`, nil, domain.PRStateUnknown},
		{"bad json", `not json`, nil, domain.PRStateUnknown},
		{"gh failure", ``, errors.New("exit status 1"), domain.PRStateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			exec := &testutil.FakeExecutor{Outputs: [][]byte{[]byte(tt.output)}, Errs: []error{tt.err}}
			client := NewClient(exec, "/repo")

			// Execute
			got := client.Status(context.Background(), 12)

			// Assert
			assert.Equal(t, tt.want, got)
			require.Len(t, exec.Commands, 1)
			assert.Equal(t, "gh", exec.Commands[0].Program)
			assert.Equal(t, []string{"pr", "view", "12", "--json", "state"}, exec.Commands[0].Args)
			assert.Equal(t, "/repo", exec.Commands[0].Dir)
			assert.True(t, exec.Commands[0].StdoutOnly)
		})
	}
}

// installFakeGh puts a gh script on PATH that runs body.
func installFakeGh(t *testing.T, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gh"), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestClient_Status_IgnoresStderrNotice(t *testing.T) {
	// Setup
	installFakeGh(t, `echo "A new release of gh is available: 2.40.0 -> 2.62.0" >&2
echo '{"state":"OPEN"}'`)
	client := NewClient(executor.NewClient(0), t.TempDir())

	// Execute
	got := client.Status(context.Background(), 12)

	// Assert
	assert.Equal(t, domain.PRStateOpen, got)
}

func TestClient_Create_URLFromStdout(t *testing.T) {
	// Setup
	installFakeGh(t, `echo "https://github.com/upfyn/demo/pull/42"
echo "Warning: 1 uncommitted change" >&2`)
	exec := &pushThenReal{real: executor.NewClient(0)}
	client := NewClient(exec, t.TempDir())

	// Execute
	pr, err := client.Create(context.Background(), "Fix login", "Body", "task/fix")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "https://github.com/upfyn/demo/pull/42", pr.URL)
}

// pushThenReal answers git push without a remote and runs everything else.
type pushThenReal struct {
	real domain.CommandExecutor
}

func (p *pushThenReal) Execute(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	if cmd.Program == "git" {
		return nil, nil
	}
	return p.real.Execute(ctx, cmd)
}

func TestClient_Status_NoPR(t *testing.T) {
	exec := &testutil.FakeExecutor{}
	client := NewClient(exec, "/repo")

	assert.Equal(t, domain.PRStateUnknown, client.Status(context.Background(), 0))
	assert.Empty(t, exec.Commands)
}

func TestClient_Create(t *testing.T) {
	// Setup
	exec := &testutil.FakeExecutor{Outputs: [][]byte{
		[]byte("branch 'task/fix' set up to track 'origin/task/fix'.\n"),
		[]byte("Creating pull request for task/fix into main\n\nhttps://github.com/upfyn/demo/pull/42\n"),
	}}
	client := NewClient(exec, "/repo")

	// Execute
	pr, err := client.Create(context.Background(), "Fix login", "Body", "task/fix")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "https://github.com/upfyn/demo/pull/42", pr.URL)
	require.Len(t, exec.Commands, 2)
	assert.Equal(t, "git", exec.Commands[0].Program)
	assert.Equal(t, []string{"push", "-u", "origin", "task/fix"}, exec.Commands[0].Args)
	assert.Equal(t, []string{"pr", "create", "--title", "Fix login", "--body", "Body", "--head", "task/fix"}, exec.Commands[1].Args)
}

func TestClient_Create_PushFails(t *testing.T) {
	exec := &testutil.FakeExecutor{
		Outputs: [][]byte{[]byte("fatal: no remote")},
		Errs:    []error{errors.New("exit status 128")},
	}
	client := NewClient(exec, "/repo")

	_, err := client.Create(context.Background(), "t", "b", "task/x")

	assert.ErrorIs(t, err, domain.ErrPRCreation)
	assert.Contains(t, err.Error(), "fatal: no remote")
	assert.Len(t, exec.Commands, 1)
}

func TestClient_Create_GhFails(t *testing.T) {
	exec := &testutil.FakeExecutor{
		Outputs: [][]byte{nil, []byte("a pull request already exists")},
		Errs:    []error{nil, errors.New("exit status 1")},
	}
	client := NewClient(exec, "/repo")

	_, err := client.Create(context.Background(), "t", "b", "task/x")

	assert.ErrorIs(t, err, domain.ErrPRCreation)
	assert.Contains(t, err.Error(), "already exists")
}

func TestNumberFromURL(t *testing.T) {
	assert.Equal(t, 7, numberFromURL("https://github.com/a/b/pull/7"))
	assert.Equal(t, 0, numberFromURL("https://github.com/a/b/pull/"))
	assert.Equal(t, 0, numberFromURL("garbage"))
}
