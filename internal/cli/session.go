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

// newPeekCommand creates the peek command.
func newPeekCommand(c *app.Container) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "peek <id>",
		Short: "Show recent session output",
		Long: `Show the most recent output of a task's agent session.

Sessions running in a separate terminal tab only have output when the
agent's log was captured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.PeekSessionUseCase().Execute(cmd.Context(), usecase.PeekSessionInput{
				TaskID: args[0],
				Lines:  lines,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out.Output, "\n"))
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", usecase.DefaultPeekLines, "Number of lines to show")

	return cmd
}

// newSendCommand creates the send command.
func newSendCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <id> <text>...",
		Short: "Send input to a session",
		Long: `Type text into a task's agent session, followed by Enter.

Only sessions on a multiplexer backend accept input.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.SendKeysUseCase().Execute(cmd.Context(), usecase.SendKeysInput{
				TaskID: args[0],
				Text:   strings.Join(args[1:], " "),
			})
		},
	}
	return cmd
}

// newAttachCommand creates the attach command for attaching to a session.
func newAttachCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <id>",
		Short: "Attach to a running session",
		Long: `Attach the current terminal to a task's agent session.

Detach with the multiplexer's detach key (Ctrl-b d by default).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.AttachSessionUseCase().Execute(cmd.Context(), usecase.AttachSessionInput{TaskID: args[0]})
		},
	}
	return cmd
}

// newSessionsCommand creates the sessions command.
func newSessionsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List live agent sessions on every backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListSessionsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Sessions) == 0 {
				_, _ = fmt.Fprintln(w, "No sessions.")
				return nil
			}

			now := c.Clock.Now()
			tw := newTable(w, table.Row{"Session", "Backend", "Project", "Task", "Age"})
			for _, s := range out.Sessions {
				task := "-"
				if s.Task != nil {
					task = fmt.Sprintf("%s %s", s.Task.ShortID(), s.Task.Status.Display())
				}
				age := "-"
				if !s.Info.Created.IsZero() {
					age = formatDuration(now.Sub(s.Info.Created))
				}
				tw.AppendRow(table.Row{s.Info.Name, string(backendOrUnknown(s.Info.Backend)), s.Project, task, age})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func backendOrUnknown(k domain.BackendKind) domain.BackendKind {
	if k == "" {
		return "?"
	}
	return k
}
