// Package logging provides the file logger used by the orchestrator and the
// console logger used for CLI diagnostics.
//
// File entries go to <configDir>/logs/upfyn.log and, when scoped to a task,
// also to <configDir>/logs/task-<id8>.log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger appends formatted entries to the global and per-task log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	now        func() time.Time
	globalFile *os.File
	taskFiles  map[string]*os.File
	configDir  string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a Logger rooted at configDir.
// An empty configDir disables file logging.
func New(configDir string, level slog.Level) *Logger {
	return &Logger{
		now:       time.Now,
		configDir: configDir,
		level:     level,
		taskFiles: make(map[string]*os.File),
	}
}

// ParseLevel parses a config level string. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewConsole returns a slog logger rendering through charmbracelet/log.
func NewConsole(w io.Writer, level slog.Level) *slog.Logger {
	h := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "upfyn",
		Level:           charmlog.Level(level),
	})
	return slog.New(h)
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) {
	l.write(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) {
	l.write(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID, category, msg string) {
	l.write(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID, category, msg string) {
	l.write(slog.LevelError, taskID, category, msg)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if l.globalFile != nil {
		errs = append(errs, l.globalFile.Close())
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		errs = append(errs, f.Close())
		delete(l.taskFiles, id)
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Logger) write(level slog.Level, taskID, category, msg string) {
	if l.configDir == "" || level < l.level {
		return
	}
	entry := formatEntry(l.now(), level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, err := l.fileLocked(""); err == nil {
		_, _ = io.WriteString(f, entry)
	}
	if taskID != "" {
		if f, err := l.fileLocked(taskID); err == nil {
			_, _ = io.WriteString(f, entry)
		}
	}
}

// fileLocked returns the open file for taskID ("" = global). l.mu must be held.
func (l *Logger) fileLocked(taskID string) (*os.File, error) {
	key := domain.ShortID(taskID)
	if taskID == "" && l.globalFile != nil {
		return l.globalFile, nil
	}
	if f, ok := l.taskFiles[key]; ok && taskID != "" {
		return f, nil
	}

	path := domain.GlobalLogPath(l.configDir)
	if taskID != "" {
		path = domain.TaskLogPath(l.configDir, taskID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // log files are readable by the owner's group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if taskID == "" {
		l.globalFile = f
	} else {
		l.taskFiles[key] = f
	}
	return f, nil
}

// formatEntry renders one line.
// Format: [2025-12-30 09:32:51] [INFO] [task-1a2b3c4d] [category] message
func formatEntry(t time.Time, level slog.Level, taskID, category, msg string) string {
	scope := "global"
	if taskID != "" {
		scope = "task-" + domain.ShortID(taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"), levelName(level), scope, category, msg)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
