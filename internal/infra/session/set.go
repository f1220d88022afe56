// Package session combines the session backends behind domain.SessionManager.
//
// New sessions go to the backend chosen once at startup. Every later
// operation on a session is routed by the backend tag recorded in its
// bookkeeping directory, so a session keeps working even if a different
// backend would be chosen today.
package session

import (
	"context"
	"fmt"
	"runtime"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/infra/sessiondir"
)

// Probe reports which backends are usable on this host.
type Probe struct {
	HasTmux bool
	HasWT   bool
	GOOS    string
}

// Select picks the backend for new sessions: tmux, else Windows Terminal
// on windows, else a detached shell.
func Select(p Probe) domain.BackendKind {
	switch {
	case p.HasTmux:
		return domain.BackendTmux
	case p.GOOS == "windows" && p.HasWT:
		return domain.BackendWT
	default:
		return domain.BackendShell
	}
}

// HostProbe returns a probe for the current host using the given availability checks.
func HostProbe(hasTmux, hasWT func() bool) Probe {
	p := Probe{GOOS: runtime.GOOS, HasTmux: hasTmux()}
	if p.GOOS == "windows" {
		p.HasWT = hasWT()
	}
	return p
}

// Set dispatches session operations to the tmux, wt and shell backends.
type Set struct {
	backends map[domain.BackendKind]domain.SessionBackend
	sessions *sessiondir.Store
	active   domain.BackendKind
}

// NewSet creates a set with active as the backend for new sessions.
// tmux is consulted for sessions without a recorded tag.
func NewSet(active domain.BackendKind, sessions *sessiondir.Store, backends ...domain.SessionBackend) (*Set, error) {
	s := &Set{
		active:   active,
		sessions: sessions,
		backends: make(map[domain.BackendKind]domain.SessionBackend, len(backends)),
	}
	for _, b := range backends {
		s.backends[b.Kind()] = b
	}
	if _, ok := s.backends[active]; !ok {
		return nil, fmt.Errorf("no %s backend registered", active)
	}
	return s, nil
}

// Ensure Set implements domain.SessionManager interface.
var _ domain.SessionManager = (*Set)(nil)

// Active returns the backend used for new sessions.
func (s *Set) Active() domain.BackendKind {
	return s.active
}

// Spawn launches the session on the active backend.
func (s *Set) Spawn(ctx context.Context, req domain.SpawnRequest) error {
	return s.backends[s.active].Spawn(ctx, req)
}

// Exists is true if any backend reports the session alive.
func (s *Set) Exists(name string) bool {
	for _, kind := range []domain.BackendKind{domain.BackendTmux, domain.BackendWT, domain.BackendShell} {
		if b, ok := s.backends[kind]; ok && b.Exists(name) {
			return true
		}
	}
	return false
}

// Capture returns output from the owning backend.
// Untagged sessions try tmux first, then the shell log.
func (s *Set) Capture(name string, lines int) string {
	if b := s.owner(name); b != nil {
		return b.Capture(name, lines)
	}
	if b, ok := s.backends[domain.BackendTmux]; ok {
		if out := b.Capture(name, lines); out != "" {
			return out
		}
	}
	if b, ok := s.backends[domain.BackendShell]; ok {
		return b.Capture(name, lines)
	}
	return ""
}

// Capabilities returns the capabilities of the owning backend.
func (s *Set) Capabilities(name string) domain.Capabilities {
	if b := s.owner(name); b != nil {
		return b.Capabilities()
	}
	return domain.Capabilities{}
}

// SendKeys injects text when the owning backend supports input.
func (s *Set) SendKeys(name, text string) error {
	b := s.owner(name)
	if b == nil || !b.Capabilities().Input {
		return nil
	}
	return b.SendKeys(name, text)
}

// Kill terminates the session wherever it lives and removes its directory.
// The tagged owner goes first so its pid bookkeeping is still on disk.
func (s *Set) Kill(name string) []string {
	var warnings []string
	if kind, ok := s.sessions.Backend(name); ok && kind != domain.BackendTmux {
		if b, ok := s.backends[kind]; ok {
			warnings = append(warnings, b.Kill(name)...)
		}
	}
	if b, ok := s.backends[domain.BackendTmux]; ok {
		warnings = append(warnings, b.Kill(name)...)
	}
	if s.sessions.Has(name) {
		if err := s.sessions.Remove(name); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

// List merges all backends; tmux entries win on duplicate names.
func (s *Set) List() []domain.SessionInfo {
	var out []domain.SessionInfo
	seen := make(map[string]bool)
	for _, kind := range []domain.BackendKind{domain.BackendTmux, domain.BackendWT, domain.BackendShell} {
		b, ok := s.backends[kind]
		if !ok {
			continue
		}
		for _, info := range b.List() {
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			out = append(out, info)
		}
	}
	return out
}

// Attach connects to the session. Only tmux sessions can be attached.
func (s *Set) Attach(name string) error {
	b := s.owner(name)
	if b == nil {
		return domain.ErrNoSession
	}
	if !b.Capabilities().Attach {
		return domain.ErrAttachUnsupported
	}
	return b.Attach(name)
}

// owner resolves the backend for name: the recorded tag, else a live tmux session.
func (s *Set) owner(name string) domain.SessionBackend {
	if kind, ok := s.sessions.Backend(name); ok {
		if b, ok := s.backends[kind]; ok {
			return b
		}
	}
	if b, ok := s.backends[domain.BackendTmux]; ok && b.Exists(name) {
		return b
	}
	return nil
}
