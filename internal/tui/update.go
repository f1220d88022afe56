package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayoutSizes()
		return m, nil

	case MsgTasksLoaded:
		m.setItems(msg.Items)
		if m.focusTaskID != "" {
			m.focus(m.focusTaskID)
			m.focusTaskID = ""
		}
		return m, m.selectionChanged()

	case MsgPreviewLoaded:
		if it := m.SelectedItem(); it != nil && it.Task.ID == msg.TaskID {
			m.previewTaskID = msg.TaskID
			m.preview.SetContent(strings.TrimRight(msg.Output, "\n"))
			m.preview.GotoBottom()
		}
		return m, nil

	case MsgPreviewTick:
		return m, tea.Batch(m.loadPreview(), previewTick())

	case MsgTransitioned:
		m.resetConfirm()
		m.err = nil
		m.notice = strings.Join(msg.Warnings, "; ")
		if msg.Task != nil {
			m.focusTaskID = msg.Task.ID
		}
		return m, m.loadTasks()

	case MsgTaskCreated:
		m.mode = ModeNormal
		m.titleInput.Reset()
		m.titleInput.Blur()
		m.err = nil
		m.notice = ""
		if msg.Task != nil {
			m.focusTaskID = msg.Task.ID
		}
		return m, m.loadTasks()

	case MsgTaskDeleted:
		m.resetConfirm()
		m.err = nil
		m.notice = strings.Join(msg.Warnings, "; ")
		return m, m.loadTasks()

	case MsgNeedsConfirm:
		m.mode = ModeConfirm
		m.confirmAction = msg.Action
		m.confirmTaskID = msg.TaskID
		m.confirmPrompt = msg.Reason
		if msg.Action == ConfirmDone {
			m.confirmPrompt = msg.Reason + ". Mark as done anyway?"
		}
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.resetConfirm()
		return m, nil

	case MsgReloadTasks:
		return m, m.loadTasks()

	case MsgStoreChanged:
		cmds := []tea.Cmd{m.loadTasks()}
		if m.changes != nil {
			cmds = append(cmds, waitForChange(m.changes.Changes()))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// handleKeyMsg dispatches key events by mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeInputTitle:
		return m.handleInputTitleMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeNormal:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

// handleNormalMode handles keys on the board.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.err = nil
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
		return m, m.selectionChanged()

	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
		return m, m.selectionChanged()

	case key.Matches(msg, m.keys.Left):
		m.moveColumn(-1)
		return m, m.selectionChanged()

	case key.Matches(msg, m.keys.Right):
		m.moveColumn(1)
		return m, m.selectionChanged()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputTitle
		m.titleInput.Reset()
		return m, m.titleInput.Focus()

	case key.Matches(msg, m.keys.Advance):
		return m.handleAdvance()

	case key.Matches(msg, m.keys.Start):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		if task.Status != domain.StatusBacklog {
			m.err = fmt.Errorf("quick start needs a backlog task, %s is %s", task.ShortID(), task.Status)
			return m, nil
		}
		m.notice = "Starting " + task.ShortID() + "..."
		return m, m.quickStart(task.ID)

	case key.Matches(msg, m.keys.Resume):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.resume(task.ID)

	case key.Matches(msg, m.keys.Delete):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		m.askConfirm(ConfirmDelete, task.ID, fmt.Sprintf("Delete %s %q?", task.ShortID(), task.Title))
		return m, nil

	case key.Matches(msg, m.keys.Attach):
		it := m.SelectedItem()
		if it == nil {
			return m, nil
		}
		if !it.SessionAlive {
			m.err = fmt.Errorf("task %s: %w", it.Task.ShortID(), domain.ErrNoSession)
			return m, nil
		}
		return m, m.attachToSession(it.Task.ID)
	}

	return m, nil
}

// handleAdvance moves the selected task one status forward.
// Moving into review asks whether to open a pull request first.
func (m *Model) handleAdvance() (tea.Model, tea.Cmd) {
	task := m.SelectedTask()
	if task == nil {
		return m, nil
	}
	switch task.Status {
	case domain.StatusDone:
		m.notice = task.ShortID() + " is already done"
		return m, nil
	case domain.StatusRunning:
		m.askConfirm(ConfirmPR, task.ID, fmt.Sprintf("Open a pull request for %q?", task.Title))
		return m, nil
	}
	return m, m.advance(usecase.AdvanceTaskInput{TaskID: task.ID})
}

// handleConfirmMode handles keys while a question is shown.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.resetConfirm()
		return m, nil

	case key.Matches(msg, m.keys.Deny):
		if m.confirmAction == ConfirmPR {
			// Move into review without a PR
			taskID := m.confirmTaskID
			m.resetConfirm()
			return m, m.advance(usecase.AdvanceTaskInput{TaskID: taskID})
		}
		m.resetConfirm()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		taskID := m.confirmTaskID
		action := m.confirmAction
		m.resetConfirm()
		switch action {
		case ConfirmNone:
			// Nothing to confirm
		case ConfirmDelete:
			return m, m.deleteTask(taskID)
		case ConfirmPR:
			in := usecase.AdvanceTaskInput{TaskID: taskID, CreatePR: true}
			if task := m.taskByID(taskID); task != nil {
				in.PRTitle = task.Title
				in.PRBody = task.Description
			}
			return m, m.advance(in)
		case ConfirmDone:
			return m, m.advance(usecase.AdvanceTaskInput{TaskID: taskID, Confirm: true})
		}
	}

	return m, nil
}

// handleInputTitleMode handles keys in title input mode.
func (m *Model) handleInputTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.titleInput.Reset()
		m.titleInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			return m, nil
		}
		return m, m.createTask(title)
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

// handleHelpMode closes the help on any of the dismiss keys.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help):
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) askConfirm(action ConfirmAction, taskID, prompt string) {
	m.mode = ModeConfirm
	m.confirmAction = action
	m.confirmTaskID = taskID
	m.confirmPrompt = prompt
}

func (m *Model) resetConfirm() {
	m.mode = ModeNormal
	m.confirmAction = ConfirmNone
	m.confirmTaskID = ""
	m.confirmPrompt = ""
}

// selectionChanged clears a stale preview and captures the new one.
func (m *Model) selectionChanged() tea.Cmd {
	it := m.SelectedItem()
	if it == nil || it.Task.ID != m.previewTaskID {
		m.previewTaskID = ""
		m.preview.SetContent("")
	}
	return m.loadPreview()
}

func (m *Model) taskByID(id string) *domain.Task {
	for _, col := range m.columns {
		for _, it := range col {
			if it.Task.ID == id {
				return it.Task
			}
		}
	}
	return nil
}

// updateLayoutSizes sizes the preview below the columns.
func (m *Model) updateLayoutSizes() {
	m.preview.Width = max(m.width-4, 0)
	m.preview.Height = max(m.height/3, 3)
	m.titleInput.Width = max(m.width/2, 20)
}
