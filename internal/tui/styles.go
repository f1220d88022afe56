package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Colors holds the fixed colors that the theme does not cover.
var Colors = struct {
	Error   lipgloss.Color
	Warning lipgloss.Color

	// Status badges
	Backlog  lipgloss.Color
	Planning lipgloss.Color
	Running  lipgloss.Color
	Review   lipgloss.Color
	Done     lipgloss.Color
}{
	Error:   lipgloss.Color("#D63031"),
	Warning: lipgloss.Color("#FDCB6E"),

	Backlog:  lipgloss.Color("#74B9FF"),
	Planning: lipgloss.Color("#A29BFE"),
	Running:  lipgloss.Color("#FDCB6E"),
	Review:   lipgloss.Color("#FD79A8"),
	Done:     lipgloss.Color("#00B894"),
}

// Styles contains all the lipgloss styles for the board.
type Styles struct {
	App lipgloss.Style

	// Header
	Header      lipgloss.Style
	HeaderText  lipgloss.Style
	HeaderMuted lipgloss.Style

	// Columns
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnHeader  lipgloss.Style

	// Cards
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardMeta     lipgloss.Style
	CardLive     lipgloss.Style

	// Session preview
	Preview      lipgloss.Style
	PreviewTitle lipgloss.Style
	PreviewEmpty lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	InputPrompt lipgloss.Style

	// Messages
	ErrorMsg lipgloss.Style
	Notice   lipgloss.Style

	// Footer
	Footer lipgloss.Style

	statuses map[domain.Status]lipgloss.Style
}

// DefaultStyles returns the styles of the default theme.
func DefaultStyles() Styles {
	return NewStyles(domain.DefaultTheme())
}

// NewStyles builds the styles from a theme. Empty theme colors fall back to the defaults.
func NewStyles(theme domain.ThemeConfig) Styles {
	theme = withDefaults(theme)
	selected := lipgloss.Color(theme.ColorSelected)
	normal := lipgloss.Color(theme.ColorNormal)
	dimmed := lipgloss.Color(theme.ColorDimmed)
	text := lipgloss.Color(theme.ColorText)
	accent := lipgloss.Color(theme.ColorAccent)
	desc := lipgloss.Color(theme.ColorDescription)
	columnHeader := lipgloss.Color(theme.ColorColumnHeader)

	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimmed).
		Padding(0, 1)

	s := Styles{
		App: lipgloss.NewStyle().Padding(0, 1),

		Header:      lipgloss.NewStyle().MarginBottom(1),
		HeaderText:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		HeaderMuted: lipgloss.NewStyle().Foreground(dimmed),

		Column:        column,
		ColumnFocused: column.BorderForeground(normal),
		ColumnHeader:  lipgloss.NewStyle().Bold(true).Foreground(columnHeader),

		Card:         lipgloss.NewStyle().Foreground(text),
		CardSelected: lipgloss.NewStyle().Foreground(selected).Bold(true),
		CardMeta:     lipgloss.NewStyle().Foreground(desc),
		CardLive:     lipgloss.NewStyle().Foreground(Colors.Done),

		Preview: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(dimmed),
		PreviewTitle: lipgloss.NewStyle().Bold(true).Foreground(accent),
		PreviewEmpty: lipgloss.NewStyle().Foreground(dimmed).Italic(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		DialogTitle: lipgloss.NewStyle().Bold(true).Foreground(selected),
		InputPrompt: lipgloss.NewStyle().Foreground(accent),

		ErrorMsg: lipgloss.NewStyle().Foreground(Colors.Error),
		Notice:   lipgloss.NewStyle().Foreground(Colors.Warning),

		Footer: lipgloss.NewStyle().Foreground(dimmed).MarginTop(1),
	}

	s.statuses = map[domain.Status]lipgloss.Style{
		domain.StatusBacklog:  lipgloss.NewStyle().Foreground(Colors.Backlog),
		domain.StatusPlanning: lipgloss.NewStyle().Foreground(Colors.Planning),
		domain.StatusRunning:  lipgloss.NewStyle().Foreground(Colors.Running),
		domain.StatusReview:   lipgloss.NewStyle().Foreground(Colors.Review),
		domain.StatusDone:     lipgloss.NewStyle().Foreground(Colors.Done),
	}
	return s
}

// StatusStyle returns the badge style of a status.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	if st, ok := s.statuses[status]; ok {
		return st
	}
	return s.CardMeta
}

func withDefaults(theme domain.ThemeConfig) domain.ThemeConfig {
	def := domain.DefaultTheme()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return domain.ThemeConfig{
		ColorSelected:     pick(theme.ColorSelected, def.ColorSelected),
		ColorNormal:       pick(theme.ColorNormal, def.ColorNormal),
		ColorDimmed:       pick(theme.ColorDimmed, def.ColorDimmed),
		ColorText:         pick(theme.ColorText, def.ColorText),
		ColorAccent:       pick(theme.ColorAccent, def.ColorAccent),
		ColorDescription:  pick(theme.ColorDescription, def.ColorDescription),
		ColorColumnHeader: pick(theme.ColorColumnHeader, def.ColorColumnHeader),
	}
}
