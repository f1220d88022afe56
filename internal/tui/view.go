package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

const (
	minColumnWidth = 18
	liveMarker     = "●"
)

// View renders the board.
func (m *Model) View() string {
	if m.mode == ModeHelp {
		return m.styles.App.Render(m.viewHelp())
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewColumns())
	b.WriteString("\n")
	b.WriteString(m.viewPreview())

	switch m.mode {
	case ModeNormal, ModeHelp:
		// No overlay
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	case ModeInputTitle:
		b.WriteString("\n")
		b.WriteString(m.viewTitleInput())
	}

	if msg := m.viewMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return m.styles.App.Render(b.String())
}

// viewHeader renders the title and the per-status counts.
func (m *Model) viewHeader() string {
	title := m.styles.HeaderText.Render("upfyn")
	total := 0
	for _, col := range m.columns {
		total += len(col)
	}
	counts := m.styles.HeaderMuted.Render(fmt.Sprintf("%d tasks", total))
	return m.styles.Header.Render(title + "  " + counts)
}

// viewColumns renders one column per status side by side.
func (m *Model) viewColumns() string {
	width := m.columnWidth()
	rendered := make([]string, len(domain.Columns))
	for i, status := range domain.Columns {
		rendered[i] = m.viewColumn(i, status, width)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) columnWidth() int {
	// Border and padding take four cells per column.
	w := (m.width-2)/len(domain.Columns) - 4
	return max(w, minColumnWidth)
}

func (m *Model) viewColumn(index int, status domain.Status, width int) string {
	items := m.columns[index]
	focused := index == m.column

	var b strings.Builder
	header := fmt.Sprintf("%s (%d)", status.Display(), len(items))
	b.WriteString(m.styles.ColumnHeader.Render(header))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(m.styles.PreviewEmpty.Render("empty"))
	}
	for row, it := range items {
		selected := focused && row == m.cursor[index]
		b.WriteString(m.renderCard(it, selected, width))
		b.WriteString("\n")
	}

	style := m.styles.Column
	if focused {
		style = m.styles.ColumnFocused
	}
	return style.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// renderCard renders a task as a title line and a meta line.
func (m *Model) renderCard(it usecase.TaskItem, selected bool, width int) string {
	task := it.Task
	title := truncate(task.Title, width-2)

	titleStyle := m.styles.Card
	prefix := "  "
	if selected {
		titleStyle = m.styles.CardSelected
		prefix = "> "
	}

	meta := task.ShortID() + " " + task.Agent
	if task.HasPR() {
		meta += fmt.Sprintf(" #%d", task.PRNumber)
	}
	metaLine := "  " + m.styles.CardMeta.Render(truncate(meta, width-6))
	if it.SessionAlive {
		metaLine += " " + m.styles.CardLive.Render(liveMarker)
	}

	return titleStyle.Render(prefix+title) + "\n" + metaLine
}

// viewPreview renders the captured output of the selected task's session.
func (m *Model) viewPreview() string {
	it := m.SelectedItem()
	var body string
	switch {
	case it == nil:
		body = m.styles.PreviewEmpty.Render("No task selected")
	case !it.SessionAlive:
		body = m.styles.PreviewEmpty.Render("No running session")
	case m.previewTaskID != it.Task.ID:
		body = m.styles.PreviewEmpty.Render("Loading...")
	default:
		body = m.preview.View()
	}

	title := "Session"
	if it != nil {
		title = fmt.Sprintf("Session %s", it.Task.ShortID())
		if it.Task.SessionName != "" {
			title += " " + m.styles.HeaderMuted.Render(it.Task.SessionName)
		}
	}
	return m.styles.Preview.Render(m.styles.PreviewTitle.Render(title) + "\n" + body)
}

// viewConfirmDialog renders the yes/no question.
func (m *Model) viewConfirmDialog() string {
	options := "[y] yes  [n] no  [esc] cancel"
	if m.confirmAction == ConfirmPR {
		options = "[y] open PR  [n] review without PR  [esc] cancel"
	}
	content := m.styles.DialogTitle.Render(m.confirmPrompt) + "\n" + m.styles.HeaderMuted.Render(options)
	return m.styles.Dialog.Render(content)
}

// viewTitleInput renders the new task prompt.
func (m *Model) viewTitleInput() string {
	content := m.styles.InputPrompt.Render("New task") + "\n" + m.titleInput.View()
	return m.styles.Dialog.Render(content)
}

func (m *Model) viewMessage() string {
	if m.err != nil {
		return m.styles.ErrorMsg.Render("Error: " + m.err.Error())
	}
	if m.notice != "" {
		return m.styles.Notice.Render(m.notice)
	}
	return ""
}

// viewFooter renders the short key help.
func (m *Model) viewFooter() string {
	return m.styles.Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// viewHelp renders the full key help.
func (m *Model) viewHelp() string {
	title := m.styles.HeaderText.Render("Keys")
	return title + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		m.styles.HeaderMuted.Render("esc or ? to close")
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
