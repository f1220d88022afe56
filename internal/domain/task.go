// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Task represents a unit of orchestrated work.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt    time.Time // Creation time
	UpdatedAt    time.Time // Last mutation time
	ID           string    // Opaque unique identifier (uuid)
	Title        string    // Title (required)
	Description  string    // Description (optional)
	Status       Status    // Current lifecycle status
	Agent        string    // Assigned agent name
	ProjectID    string    // Owning project
	SessionName  string    // Session handle (empty when no session)
	WorktreePath string    // Worktree path (empty when no worktree)
	BranchName   string    // Branch name (set once the task leaves backlog)
	PRURL        string    // Pull request URL (empty if no PR)
	HTMLContent  string    // Rendered content owned by the presentation layer
	CanvasX      float64   // Canvas coordinate owned by the presentation layer
	CanvasY      float64   // Canvas coordinate owned by the presentation layer
	PRNumber     int       // Pull request number (0 = no PR)
}

// NewTask creates a backlog task with no session, worktree or branch.
func NewTask(id, title, agent, projectID string, now time.Time) *Task {
	return &Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Status:    StatusBacklog,
		Agent:     agent,
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ShortID returns the id prefix used in session names and log tags.
func (t *Task) ShortID() string {
	return ShortID(t.ID)
}

// Slug returns the normalized title used for worktree, branch and session naming.
// Titles without any alphanumerics fall back to the short id.
func (t *Task) Slug() string {
	if s := Slug(t.Title); s != "" {
		return s
	}
	return t.ShortID()
}

// HasSession returns true if the task carries a session handle.
func (t *Task) HasSession() bool {
	return t.SessionName != ""
}

// HasWorktree returns true if the task carries a worktree path.
func (t *Task) HasWorktree() bool {
	return t.WorktreePath != ""
}

// HasPR returns true if a pull request was recorded for the task.
func (t *Task) HasPR() bool {
	return t.PRNumber > 0
}

// ClearRuntime drops the session handle and worktree path.
// The branch and PR fields are kept.
func (t *Task) ClearRuntime() {
	t.SessionName = ""
	t.WorktreePath = ""
}

// Clone returns a copy of the task.
// Transition handlers mutate a clone so that a failed transition leaves
// the caller's task untouched.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// Project registers a filesystem path as an orchestration root.
type Project struct {
	LastOpened   time.Time
	ID           string
	Name         string
	Path         string // Unique key
	GithubURL    string
	DefaultAgent string
}

// Connection is a labeled directed edge between two tasks.
type Connection struct {
	ID         string
	FromTaskID string
	ToTaskID   string
	Label      string
}

// Touches returns true if the connection has taskID as an endpoint.
func (c Connection) Touches(taskID string) bool {
	return c.FromTaskID == taskID || c.ToTaskID == taskID
}
