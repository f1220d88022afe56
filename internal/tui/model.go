package tui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

const (
	previewLines    = 20
	previewInterval = 2 * time.Second

	// quickStartTimeout bounds the wait for the acceptance prompt in quick start.
	quickStartTimeout = 90 * time.Second
)

// Model is the bubbletea model of the task board.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	changes   *changeWatcher
	err       error

	// Board state
	columns [][]usecase.TaskItem // One per domain.Columns entry
	cursor  []int                // Selected row per column

	// Components
	keys       KeyMap
	styles     Styles
	help       help.Model
	preview    viewport.Model
	titleInput textinput.Model

	notice        string // Warnings of the last action
	previewTaskID string
	focusTaskID   string // Selected after the next load
	confirmTaskID string
	confirmPrompt string

	// Numeric state (smaller types last)
	mode          Mode
	confirmAction ConfirmAction
	column        int
	width         int
	height        int
}

// New creates a board for the container's project.
// Board refresh on disk changes is best-effort.
func New(c *app.Container) *Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	theme := domain.DefaultTheme()
	if c.ConfigLoader != nil {
		if settings, err := c.ConfigLoader.Load(); err == nil {
			theme = settings.Theme
		}
	}

	m := &Model{
		container:  c,
		columns:    make([][]usecase.TaskItem, len(domain.Columns)),
		cursor:     make([]int, len(domain.Columns)),
		keys:       DefaultKeyMap(),
		styles:     NewStyles(theme),
		help:       help.New(),
		preview:    viewport.New(0, 0),
		titleInput: ti,
		mode:       ModeNormal,
	}

	if c.Config.ProjectDB != "" || c.Config.SessionsDir != "" {
		cw, err := newChangeWatcher(c.Config.ProjectDB, c.Config.SessionsDir, refreshDebounce)
		if err != nil {
			c.Logger.Debug("", "tui", "file watch disabled: "+err.Error())
		} else {
			m.changes = cw
		}
	}
	return m
}

// Close releases the file watcher.
func (m *Model) Close() {
	if m.changes != nil {
		_ = m.changes.Close()
	}
}

// Init loads the tasks and starts the refresh loops.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTasks(), previewTick()}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes.Changes()))
	}
	return tea.Batch(cmds...)
}

// SelectedItem returns the selected task, or nil when the focused column is empty.
func (m *Model) SelectedItem() *usecase.TaskItem {
	col := m.columns[m.column]
	if len(col) == 0 {
		return nil
	}
	return &col[m.cursor[m.column]]
}

// SelectedTask returns the selected task, or nil.
func (m *Model) SelectedTask() *domain.Task {
	if it := m.SelectedItem(); it != nil {
		return it.Task
	}
	return nil
}

// setItems distributes tasks into their columns, keeping the selection in range.
func (m *Model) setItems(items []usecase.TaskItem) {
	columns := make([][]usecase.TaskItem, len(domain.Columns))
	for _, it := range items {
		if i := it.Task.Status.Index(); i >= 0 {
			columns[i] = append(columns[i], it)
		}
	}
	m.columns = columns
	for i := range m.cursor {
		m.cursor[i] = clamp(m.cursor[i], 0, len(columns[i])-1)
	}
}

// focus selects the task with the given id, moving to its column.
func (m *Model) focus(taskID string) {
	for ci, col := range m.columns {
		for ri, it := range col {
			if it.Task.ID == taskID {
				m.column, m.cursor[ci] = ci, ri
				return
			}
		}
	}
}

func (m *Model) moveRow(delta int) {
	n := len(m.columns[m.column])
	m.cursor[m.column] = clamp(m.cursor[m.column]+delta, 0, n-1)
}

func (m *Model) moveColumn(delta int) {
	m.column = clamp(m.column+delta, 0, len(m.columns)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// loadTasks returns a command that loads tasks from the repository.
func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ListTasksUseCase().Execute(context.Background(), usecase.ListTasksInput{})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksLoaded{Items: out.Items}
	}
}

// loadPreview captures the selected task's session output.
func (m *Model) loadPreview() tea.Cmd {
	it := m.SelectedItem()
	if it == nil || !it.SessionAlive {
		return nil
	}
	taskID := it.Task.ID
	return func() tea.Msg {
		out, err := m.container.PeekSessionUseCase().Execute(context.Background(), usecase.PeekSessionInput{
			TaskID: taskID,
			Lines:  previewLines,
		})
		if err != nil {
			return MsgPreviewLoaded{TaskID: taskID}
		}
		return MsgPreviewLoaded{TaskID: taskID, Output: out.Output}
	}
}

func previewTick() tea.Cmd {
	return tea.Tick(previewInterval, func(time.Time) tea.Msg {
		return MsgPreviewTick{}
	})
}

// advance moves a task one status forward.
func (m *Model) advance(in usecase.AdvanceTaskInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.AdvanceTaskUseCase().Execute(context.Background(), in)
		if errors.Is(err, domain.ErrConfirmationRequired) {
			return MsgNeedsConfirm{TaskID: in.TaskID, Action: ConfirmDone, Reason: err.Error()}
		}
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTransitioned{Task: out.Task(), From: out.From, To: out.To, Warnings: out.Warnings()}
	}
}

// quickStart takes a backlog task straight to running.
func (m *Model) quickStart(taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickStartTimeout)
		defer cancel()
		out, err := m.container.QuickStartUseCase().Execute(ctx, usecase.QuickStartInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		warnings := append(append([]string(nil), out.Planning.Warnings...), out.Running.Warnings...)
		return MsgTransitioned{Task: out.Task(), From: domain.StatusBacklog, To: domain.StatusRunning, Warnings: warnings}
	}
}

// resume moves a review task back to running.
func (m *Model) resume(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ResumeTaskUseCase().Execute(context.Background(), usecase.ResumeTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTransitioned{Task: out.Task, From: domain.StatusReview, To: domain.StatusRunning}
	}
}

// createTask creates a backlog task with the default agent.
func (m *Model) createTask(title string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.NewTaskUseCase().Execute(context.Background(), usecase.NewTaskInput{Title: title})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{Task: out.Task}
	}
}

// deleteTask deletes a task in any status.
func (m *Model) deleteTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.DeleteTaskUseCase().Execute(context.Background(), usecase.DeleteTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{TaskID: taskID, Warnings: out.Warnings}
	}
}

// attachToSession suspends the board while the task's session is attached.
func (m *Model) attachToSession(taskID string) tea.Cmd {
	return tea.Exec(&sessionAttachCmd{container: m.container, taskID: taskID}, func(err error) tea.Msg {
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgReloadTasks{}
	})
}

// sessionAttachCmd implements tea.ExecCommand for attaching to a session.
// The session backends attach on the process's own terminal.
type sessionAttachCmd struct {
	container *app.Container
	taskID    string
}

func (c *sessionAttachCmd) Run() error {
	return c.container.AttachSessionUseCase().Execute(context.Background(), usecase.AttachSessionInput{TaskID: c.taskID})
}

func (c *sessionAttachCmd) SetStdin(io.Reader)  {}
func (c *sessionAttachCmd) SetStdout(io.Writer) {}
func (c *sessionAttachCmd) SetStderr(io.Writer) {}
