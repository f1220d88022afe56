package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
)

// newListAgentsCommand creates the agents command.
func newListAgentsCommand(c *app.Container) *cobra.Command {
	var installed bool

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List supported agents",
		Long: `List the supported coding agents and whether each is installed.

The default agent is marked with *.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListAgentsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout(), table.Row{"", "Name", "Command", "Installed", "Description"})
			for _, a := range out.Agents {
				if installed && !a.Available {
					continue
				}
				mark := ""
				if a.Agent.Name == out.Default {
					mark = "*"
				}
				tw.AppendRow(table.Row{mark, a.Agent.Name, a.Agent.Command, yesNo(a.Available), a.Agent.Description})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&installed, "installed", false, "Only show installed agents")

	return cmd
}
