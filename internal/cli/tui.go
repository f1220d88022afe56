package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/tui"
)

// newTUICommand creates the tui command for launching the interactive board.
// Running upfyn without arguments does the same.
func newTUICommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the task board",
		Long: `Launch the interactive task board.

Tasks are shown in one column per status. The board refreshes when the task
database or a session changes on disk.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}
	return cmd
}

// launchTUI runs the board until the user quits.
func launchTUI(c *app.Container) error {
	model := tui.New(c)
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
