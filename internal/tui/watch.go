package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// refreshDebounce coalesces bursts of writes (SQLite WAL, session bookkeeping)
// into a single reload.
const refreshDebounce = 200 * time.Millisecond

var errNothingToWatch = errors.New("no directory to watch")

// changeWatcher reports writes to the project database and to session
// bookkeeping directories. Session log output is ignored.
type changeWatcher struct {
	w           *fsnotify.Watcher
	changes     chan struct{}
	dbDir       string
	dbBase      string
	sessionsDir string
	debounce    time.Duration
}

// newChangeWatcher watches the directory of dbPath and sessionsDir.
// Either may be empty; it fails when neither can be watched.
func newChangeWatcher(dbPath, sessionsDir string, debounce time.Duration) (*changeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	cw := &changeWatcher{
		w:           w,
		changes:  make(chan struct{}, 1),
		debounce: debounce,
	}
	if sessionsDir != "" {
		cw.sessionsDir = filepath.Clean(sessionsDir)
	}

	watched := 0
	if dbPath != "" {
		cw.dbDir = filepath.Dir(dbPath)
		cw.dbBase = filepath.Base(dbPath)
		if w.Add(cw.dbDir) == nil {
			watched++
		}
	}
	if cw.sessionsDir != "" && w.Add(cw.sessionsDir) == nil {
		watched++
		entries, _ := os.ReadDir(cw.sessionsDir)
		for _, e := range entries {
			if e.IsDir() {
				_ = w.Add(filepath.Join(cw.sessionsDir, e.Name()))
			}
		}
	}
	if watched == 0 {
		_ = w.Close()
		return nil, errNothingToWatch
	}

	go cw.loop()
	return cw, nil
}

// Changes delivers one value per debounced burst of changes.
// It is closed when the watcher is closed.
func (cw *changeWatcher) Changes() <-chan struct{} {
	return cw.changes
}

// Close stops watching.
func (cw *changeWatcher) Close() error {
	return cw.w.Close()
}

func (cw *changeWatcher) loop() {
	defer close(cw.changes)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C
		case _, ok := <-cw.w.Errors:
			if !ok {
				return
			}
		case <-fire:
			fire = nil
			select {
			case cw.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (cw *changeWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	dir := filepath.Dir(ev.Name)
	switch {
	case cw.dbBase != "" && dir == cw.dbDir && strings.HasPrefix(filepath.Base(ev.Name), cw.dbBase):
		return true
	case cw.sessionsDir != "" && dir == cw.sessionsDir:
		// A session directory appeared or went away
		if ev.Has(fsnotify.Create) {
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				_ = cw.w.Add(ev.Name)
			}
		}
		return true
	case cw.sessionsDir != "" && filepath.Dir(dir) == cw.sessionsDir:
		return filepath.Base(ev.Name) != "log"
	}
	return false
}

// waitForChange returns a command that blocks until the next change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return MsgStoreChanged{}
	}
}
