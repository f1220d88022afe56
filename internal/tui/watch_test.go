package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func waitChange(t *testing.T, ch <-chan struct{}) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func TestChangeWatcher_DatabaseWrite(t *testing.T) {
	// Setup
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "acme.db")
	cw, err := newChangeWatcher(dbPath, "", testDebounce)
	require.NoError(t, err)
	defer cw.Close()

	// Execute
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("x"), 0o644))

	// Assert
	assert.True(t, waitChange(t, cw.Changes()))
}

func TestChangeWatcher_NewSessionDirectory(t *testing.T) {
	// Setup
	sessions := t.TempDir()
	cw, err := newChangeWatcher("", sessions, testDebounce)
	require.NoError(t, err)
	defer cw.Close()

	// Execute
	require.NoError(t, os.Mkdir(filepath.Join(sessions, "upfyn-acme-1a2b"), 0o755))

	// Assert
	assert.True(t, waitChange(t, cw.Changes()))
}

func TestChangeWatcher_NothingToWatch(t *testing.T) {
	_, err := newChangeWatcher("", "", testDebounce)
	assert.ErrorIs(t, err, errNothingToWatch)
}

func TestChangeWatcher_Relevant(t *testing.T) {
	cw := &changeWatcher{
		dbDir:       "/cfg/projects",
		dbBase:      "acme.db",
		sessionsDir: "/cfg/sessions",
	}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"db write", fsnotify.Event{Name: "/cfg/projects/acme.db", Op: fsnotify.Write}, true},
		{"wal write", fsnotify.Event{Name: "/cfg/projects/acme.db-wal", Op: fsnotify.Write}, true},
		{"other project", fsnotify.Event{Name: "/cfg/projects/other.db", Op: fsnotify.Write}, false},
		{"chmod", fsnotify.Event{Name: "/cfg/projects/acme.db", Op: fsnotify.Chmod}, false},
		{"session removed", fsnotify.Event{Name: "/cfg/sessions/s1", Op: fsnotify.Remove}, true},
		{"session status", fsnotify.Event{Name: "/cfg/sessions/s1/status", Op: fsnotify.Write}, true},
		{"session log", fsnotify.Event{Name: "/cfg/sessions/s1/log", Op: fsnotify.Write}, false},
		{"unrelated", fsnotify.Event{Name: "/tmp/x", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cw.relevant(tt.ev))
		})
	}
}

func TestWaitForChange(t *testing.T) {
	// Setup
	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	// Execute & Assert
	assert.Equal(t, MsgStoreChanged{}, waitForChange(ch)())

	close(ch)
	assert.Nil(t, waitForChange(ch)())
}
