package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// newProjectsCommand creates the projects command.
func newProjectsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List registered projects",
		Long: `List every repository upfyn has been used in, most recently opened first.

A repository is registered whenever upfyn runs inside it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListProjectsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Projects) == 0 {
				_, _ = fmt.Fprintln(w, "No projects.")
				return nil
			}

			tw := newTable(w, table.Row{"Name", "Path", "Agent", "GitHub", "Last opened"})
			for _, p := range out.Projects {
				tw.AppendRow(table.Row{p.Name, p.Path, p.DefaultAgent, p.GithubURL, p.LastOpened.Local().Format("2006-01-02 15:04")})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

// newLinkCommand creates the link command.
func newLinkCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <from> <to> [label]",
		Short: "Connect two tasks",
		Long: `Create a directed, labeled connection between two tasks.

Examples:
  upfyn link 1a2b 9f8e blocks`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.AddConnectionInput{From: args[0], To: args[1]}
			if len(args) == 3 {
				in.Label = args[2]
			}
			out, err := c.AddConnectionUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created connection %s\n", out.Connection.ID)
			return nil
		},
	}
	return cmd
}

// newUnlinkCommand creates the unlink command.
func newUnlinkCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlink <connection-id>",
		Short: "Remove a task connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.RemoveConnectionUseCase().Execute(cmd.Context(), usecase.RemoveConnectionInput{ID: args[0]}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed connection %s\n", args[0])
			return nil
		},
	}
	return cmd
}

// newLinksCommand creates the links command.
func newLinksCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links [id]",
		Short: "List task connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ListConnectionsInput{}
			if len(args) == 1 {
				in.TaskID = args[0]
			}
			out, err := c.ListConnectionsUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Connections) == 0 {
				_, _ = fmt.Fprintln(w, "No connections.")
				return nil
			}

			tw := newTable(w, table.Row{"ID", "From", "To", "Label"})
			for _, conn := range out.Connections {
				tw.AppendRow(table.Row{conn.ID, domain.ShortID(conn.FromTaskID), domain.ShortID(conn.ToTaskID), strings.TrimSpace(conn.Label)})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}
