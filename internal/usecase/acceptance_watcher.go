package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// WatcherTiming bounds one acceptance watch.
type WatcherTiming struct {
	InitialDelay time.Duration // Wait before the first capture
	Interval     time.Duration // Wait between captures
	Attempts     int           // Maximum number of captures
	Lines        int           // Lines captured per attempt
}

// DefaultWatcherTiming returns the timing used for real sessions.
func DefaultWatcherTiming() WatcherTiming {
	return WatcherTiming{
		InitialDelay: 3 * time.Second,
		Interval:     2 * time.Second,
		Attempts:     30,
		Lines:        10,
	}
}

type watch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// AcceptanceWatcher answers an agent's startup confirmation prompt.
// Each watch runs on its own goroutine keyed by session name; it only
// captures output and sends at most one reply, so it never touches task state.
type AcceptanceWatcher struct {
	sessions domain.SessionManager
	logger   domain.Logger
	watches  map[string]*watch
	timing   WatcherTiming
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewAcceptanceWatcher creates a new AcceptanceWatcher.
func NewAcceptanceWatcher(sessions domain.SessionManager, logger domain.Logger, timing WatcherTiming) *AcceptanceWatcher {
	return &AcceptanceWatcher{
		sessions: sessions,
		logger:   logger,
		timing:   timing,
		watches:  make(map[string]*watch),
	}
}

// Watch starts watching a session. A watch already running for the same
// session is cancelled first. The watch ends when ctx is cancelled, Stop is
// called, the session disappears, a reply is sent, or the attempts run out.
func (w *AcceptanceWatcher) Watch(ctx context.Context, taskID, name string) {
	ctx, cancel := context.WithCancel(ctx)
	entry := &watch{cancel: cancel, done: make(chan struct{})}

	w.mu.Lock()
	if old, ok := w.watches[name]; ok {
		old.cancel()
	}
	w.watches[name] = entry
	timing := w.timing
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer close(entry.done)
		defer w.forget(name, entry)
		w.run(ctx, timing, taskID, name)
	}()
}

// Stop cancels the watch for a session, if any.
func (w *AcceptanceWatcher) Stop(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry, ok := w.watches[name]; ok {
		entry.cancel()
		delete(w.watches, name)
	}
}

// StopAll cancels every running watch.
func (w *AcceptanceWatcher) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, entry := range w.watches {
		entry.cancel()
		delete(w.watches, name)
	}
}

// Running reports whether a watch is active for the session.
func (w *AcceptanceWatcher) Running(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watches[name]
	return ok
}

// WaitFor blocks until the watch for name finishes or ctx is done.
// It returns immediately when no watch is running.
func (w *AcceptanceWatcher) WaitFor(ctx context.Context, name string) error {
	w.mu.Lock()
	entry, ok := w.watches[name]
	w.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-entry.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every watch has finished.
func (w *AcceptanceWatcher) Wait() {
	w.wg.Wait()
}

func (w *AcceptanceWatcher) forget(name string, entry *watch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watches[name] == entry {
		delete(w.watches, name)
	}
	entry.cancel()
}

func (w *AcceptanceWatcher) run(ctx context.Context, timing WatcherTiming, taskID, name string) {
	if !sleep(ctx, timing.InitialDelay) {
		return
	}
	for attempt := 0; attempt < timing.Attempts; attempt++ {
		if attempt > 0 && !sleep(ctx, timing.Interval) {
			return
		}
		if !w.sessions.Exists(name) {
			w.log(taskID, "DEBUG", fmt.Sprintf("session %s ended before an acceptance prompt appeared", name))
			return
		}
		reply, ok := domain.AcceptanceReply(w.sessions.Capture(name, timing.Lines))
		if !ok {
			continue
		}
		if err := w.sessions.SendKeys(name, reply); err != nil {
			w.log(taskID, "WARN", fmt.Sprintf("answer acceptance prompt in %s: %v", name, err))
			return
		}
		w.log(taskID, "INFO", fmt.Sprintf("answered acceptance prompt in %s with %q", name, reply))
		return
	}
	w.log(taskID, "DEBUG", fmt.Sprintf("no acceptance prompt in %s after %d attempts", name, timing.Attempts))
}

func (w *AcceptanceWatcher) log(taskID, level, msg string) {
	if w.logger == nil {
		return
	}
	switch level {
	case "WARN":
		w.logger.Warn(taskID, "watcher", msg)
	case "INFO":
		w.logger.Info(taskID, "watcher", msg)
	default:
		w.logger.Debug(taskID, "watcher", msg)
	}
}

// sleep waits for d or until ctx is done. It reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
