package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusBacklog  Status = "backlog"  // Created, no worktree or session yet
	StatusPlanning Status = "planning" // Worktree created, agent analysing
	StatusRunning  Status = "running"  // Agent implementing
	StatusReview   Status = "review"   // Work complete, optionally with a PR
	StatusDone     Status = "done"     // Session and worktree torn down
)

// Columns is the fixed order of the lifecycle.
// The orchestrator only ever advances one step along it.
var Columns = []Status{
	StatusBacklog,
	StatusPlanning,
	StatusRunning,
	StatusReview,
	StatusDone,
}

// AllStatuses returns all valid status values in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(Columns))
	copy(out, Columns)
	return out
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Index returns the position of the status in Columns, or -1.
func (s Status) Index() int {
	for i, c := range Columns {
		if c == s {
			return i
		}
	}
	return -1
}

// Next returns the status one step forward.
// ok is false for done and for unknown statuses.
func (s Status) Next() (Status, bool) {
	i := s.Index()
	if i < 0 || i >= len(Columns)-1 {
		return "", false
	}
	return Columns[i+1], true
}

// Previous returns the single backward edge of the lifecycle (review → running).
func (s Status) Previous() (Status, bool) {
	if s == StatusReview {
		return StatusRunning, true
	}
	return "", false
}

// CanTransitionTo reports whether target is reachable in one step.
//
//	backlog → planning → running → review → done
//	                        ↑         │
//	                        └─resume──┘
func (s Status) CanTransitionTo(target Status) bool {
	if next, ok := s.Next(); ok && next == target {
		return true
	}
	if prev, ok := s.Previous(); ok && prev == target {
		return true
	}
	return false
}

// IsActive returns true for statuses that own a worktree.
func (s Status) IsActive() bool {
	return s == StatusPlanning || s == StatusRunning || s == StatusReview
}

// IsTerminal returns true if the status is the end of the lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusPlanning:
		return "Planning"
	case StatusRunning:
		return "Running"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	return s.Index() >= 0
}
