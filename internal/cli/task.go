package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Description string
		Agent       string
	}

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a new task",
		Long: `Create a new backlog task.

No worktree, branch or session exists until the task is advanced into planning.

Examples:
  # Create a task for the default agent
  upfyn new "Fix login bug"

  # Create a task with a description for aider
  upfyn new "Add dark mode" --body "Follow the system theme" --agent aider`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.NewTaskUseCase().Execute(cmd.Context(), usecase.NewTaskInput{
				Title:       strings.Join(args, " "),
				Description: opts.Description,
				Agent:       opts.Agent,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", out.Task.ShortID(), out.Task.Agent)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().StringVarP(&opts.Agent, "agent", "a", "", "Agent to run (default: configured default_agent)")

	return cmd
}

// newImportCommand creates the import command for creating tasks from a file.
func newImportCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Create tasks from a markdown file",
		Long: `Create backlog tasks from a markdown file.

Each task is a frontmatter block followed by its description:

  ---
  title: Fix login bug
  agent: aider
  ---
  Users get logged out after five minutes.

  ---
  title: Add dark mode
  ---

Every block is validated before any task is created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			out, err := c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{Content: string(content)})
			if out != nil {
				for _, t := range out.Tasks {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", t.ShortID(), t.Title)
				}
			}
			return err
		},
	}
	return cmd
}

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks in creation order.

Use --status to show a single column of the board
(backlog, planning, running, review, done).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{
				Status: domain.Status(status),
			})
			if err != nil {
				return err
			}
			printTaskList(cmd.OutOrStdout(), out.Items, c.Clock)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status")

	return cmd
}

// printTaskList prints tasks as a table.
func printTaskList(w io.Writer, items []usecase.TaskItem, clock domain.Clock) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := newTable(w, table.Row{"ID", "Status", "Agent", "Session", "Age", "Title"})
	now := clock.Now()
	for _, it := range items {
		t := it.Task
		tw.AppendRow(table.Row{
			t.ShortID(),
			t.Status.Display(),
			t.Agent,
			yesNo(it.SessionAlive),
			formatDuration(now.Sub(t.CreatedAt)),
			t.Title,
		})
	}
	tw.Render()
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Long: `Show a task with its session, worktree, pull request and connections.

The id may be any unique prefix of at least four characters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}
			printTaskDetails(cmd.OutOrStdout(), out, raw)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the description without markdown rendering")

	return cmd
}

// printTaskDetails prints task details.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput, raw bool) {
	t := out.Task
	_, _ = fmt.Fprintf(w, "Task %s: %s\n\n", t.ShortID(), t.Title)
	_, _ = fmt.Fprintf(w, "ID:       %s\n", t.ID)
	_, _ = fmt.Fprintf(w, "Status:   %s\n", t.Status.Display())
	_, _ = fmt.Fprintf(w, "Agent:    %s\n", t.Agent)
	_, _ = fmt.Fprintf(w, "Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(w, "Updated:  %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	if t.BranchName != "" {
		_, _ = fmt.Fprintf(w, "Branch:   %s\n", t.BranchName)
	}
	if t.WorktreePath != "" {
		_, _ = fmt.Fprintf(w, "Worktree: %s\n", t.WorktreePath)
	}
	if t.SessionName != "" {
		state := "stopped"
		if out.SessionAlive {
			state = "running"
		}
		_, _ = fmt.Fprintf(w, "Session:  %s (%s)\n", t.SessionName, state)
	}
	if t.HasPR() {
		_, _ = fmt.Fprintf(w, "PR:       #%d %s (%s)\n", t.PRNumber, t.PRURL, out.PRState)
	}

	if len(out.Connections) > 0 {
		_, _ = fmt.Fprintln(w, "\nConnections:")
		for _, conn := range out.Connections {
			dir, other := "->", conn.ToTaskID
			if conn.ToTaskID == t.ID {
				dir, other = "<-", conn.FromTaskID
			}
			label := ""
			if conn.Label != "" {
				label = " [" + conn.Label + "]"
			}
			_, _ = fmt.Fprintf(w, "  %s %s%s\n", dir, domain.ShortID(other), label)
		}
	}

	if t.Description != "" {
		_, _ = fmt.Fprintln(w)
		if raw {
			_, _ = fmt.Fprintln(w, t.Description)
		} else {
			_, _ = fmt.Fprintln(w, renderMarkdown(t.Description, 80))
		}
	}
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long: `Delete a task in any status.

Its session is killed and its worktree removed. The branch is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				show, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
				if err != nil {
					return err
				}
				ok, err := newPrompter().Confirm(
					fmt.Sprintf("Delete task %s?", show.Task.ShortID()),
					show.Task.Title,
				)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", out.Task.ShortID())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// newDiffCommand creates the diff command.
func newDiffCommand(c *app.Container) *cobra.Command {
	var stat bool

	cmd := &cobra.Command{
		Use:   "diff <id>",
		Short: "Show the diff of a task branch",
		Long:  `Show the diff between the configured base branch and the task branch.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowDiffUseCase().Execute(cmd.Context(), usecase.ShowDiffInput{TaskID: args[0], Stat: stat})
			if err != nil {
				return err
			}
			if out.Diff == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No changes between %s and %s\n", out.Base, out.Branch)
				return nil
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Diff)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stat, "stat", false, "Show a diffstat only")

	return cmd
}
