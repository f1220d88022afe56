// Package sessiondir manages the on-disk bookkeeping directory of agent sessions.
//
// Layout: <configDir>/sessions/<name>/ containing
//
//	cmd      the command line the session runs
//	backend  the backend tag that created it
//	log      captured output (file based backends)
//	pid      process id (file based backends)
//	alive    present while the process runs
package sessiondir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

const (
	fileCmd     = "cmd"
	fileBackend = "backend"
	fileLog     = "log"
	filePID     = "pid"
	fileAlive   = "alive"
)

// Store reads and writes session directories under one root.
type Store struct {
	root string
}

// New creates a store rooted at dir (typically domain.SessionsDir(configDir)).
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the sessions root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory of a session.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// LogPath returns the output log of a session.
func (s *Store) LogPath(name string) string {
	return filepath.Join(s.Dir(name), fileLog)
}

// Has reports whether the session directory exists.
func (s *Store) Has(name string) bool {
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// Prepare creates the session directory and records the command and backend tag.
// When withLog is true the log file is truncated.
func (s *Store) Prepare(name string, kind domain.BackendKind, commandLine string, withLog bool) error {
	dir := s.Dir(name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := s.write(name, fileCmd, commandLine); err != nil {
		return err
	}
	if err := s.write(name, fileBackend, string(kind)); err != nil {
		return err
	}
	if withLog {
		return s.write(name, fileLog, "")
	}
	return nil
}

// Backend returns the backend tag recorded for a session.
func (s *Store) Backend(name string) (domain.BackendKind, bool) {
	data, err := os.ReadFile(filepath.Join(s.Dir(name), fileBackend))
	if err != nil {
		return "", false
	}
	return domain.ParseBackendKind(string(data))
}

// Command returns the recorded command line.
func (s *Store) Command(name string) string {
	data, err := os.ReadFile(filepath.Join(s.Dir(name), fileCmd))
	if err != nil {
		return ""
	}
	return string(data)
}

// SetPID records the session process id.
func (s *Store) SetPID(name string, pid int) error {
	return s.write(name, filePID, strconv.Itoa(pid))
}

// PID returns the recorded process id.
func (s *Store) PID(name string) (int, bool) {
	data, err := os.ReadFile(filepath.Join(s.Dir(name), filePID))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// MarkAlive creates the alive marker.
func (s *Store) MarkAlive(name string) error {
	return s.write(name, fileAlive, "1")
}

// IsAlive reports whether the alive marker is present.
func (s *Store) IsAlive(name string) bool {
	_, err := os.Stat(filepath.Join(s.Dir(name), fileAlive))
	return err == nil
}

// ClearAlive removes the alive marker.
func (s *Store) ClearAlive(name string) {
	_ = os.Remove(filepath.Join(s.Dir(name), fileAlive))
}

// ClearAliveFor removes the alive marker only if the recorded pid is still pid.
// A reaper of an old process must not clear the marker of a respawned session.
func (s *Store) ClearAliveFor(name string, pid int) {
	if current, ok := s.PID(name); ok && current != pid {
		return
	}
	s.ClearAlive(name)
}

// Tail returns the last lines of the session log.
// ok is false when the log file does not exist.
func (s *Store) Tail(name string, lines int) (out string, ok bool) {
	data, err := os.ReadFile(s.LogPath(name))
	if err != nil {
		return "", false
	}
	return lastLines(string(data), lines), true
}

// Remove deletes the session directory.
func (s *Store) Remove(name string) error {
	if err := os.RemoveAll(s.Dir(name)); err != nil {
		return fmt.Errorf("remove session dir: %w", err)
	}
	return nil
}

// List returns alive sessions recorded with the given backend tag.
// An empty kind matches every backend.
func (s *Store) List(kind domain.BackendKind) []domain.SessionInfo {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil
	}
	now := time.Now()
	var out []domain.SessionInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		backend, ok := s.Backend(name)
		if !ok || (kind != "" && backend != kind) || !s.IsAlive(name) {
			continue
		}
		created := now
		if info, err := e.Info(); err == nil {
			created = info.ModTime()
		}
		lastActivity := now
		if info, err := os.Stat(s.LogPath(name)); err == nil {
			lastActivity = info.ModTime()
		}
		out = append(out, domain.SessionInfo{
			Name:         name,
			Backend:      backend,
			Created:      created,
			LastActivity: lastActivity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) write(name, file, content string) error {
	path := filepath.Join(s.Dir(name), file)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("session %s not prepared: %w", name, err)
		}
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

// lastLines returns at most n trailing lines of s.
func lastLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	s = strings.TrimRight(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
