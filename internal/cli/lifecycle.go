package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
	"github.com/upfyn/upfyn-agents/internal/usecase/shared"
)

// defaultWaitTimeout bounds how long the CLI keeps the acceptance watcher alive.
const defaultWaitTimeout = 90 * time.Second

// newAdvanceCommand creates the advance command.
func newAdvanceCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Body        string
		WaitTimeout time.Duration
		PR          bool
		Yes         bool
		NoWait      bool
	}

	cmd := &cobra.Command{
		Use:   "advance <id>",
		Short: "Move a task to its next status",
		Long: `Move a task one step along backlog → planning → running → review → done.

  backlog → planning  creates the worktree and branch and starts the agent
                      with a planning prompt
  planning → running  tells the agent to proceed with implementation
  running → review    optionally opens a pull request (asks unless --pr is given)
  review → done       kills the session and removes the worktree; asks for
                      confirmation while the PR is still open (unless --yes)

After entering planning the command waits for the agent's confirmation
prompt to be answered. Use --no-wait to return immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := shared.ResolveTask(c.Tasks, args[0])
			if err != nil {
				return err
			}

			in := usecase.AdvanceTaskInput{TaskID: task.ID, Confirm: opts.Yes}
			if next, ok := task.Status.Next(); ok && next == domain.StatusReview {
				if err := askPR(cmd, task, &in, opts.PR, opts.Title, opts.Body); err != nil {
					return err
				}
			}

			out, err := c.AdvanceTaskUseCase().Execute(cmd.Context(), in)
			if errors.Is(err, domain.ErrConfirmationRequired) && !opts.Yes {
				ok, perr := newPrompter().Confirm(err.Error(), "Mark the task done anyway?")
				if perr != nil || !ok {
					return err
				}
				in.Confirm = true
				out, err = c.AdvanceTaskUseCase().Execute(cmd.Context(), in)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printWarnings(cmd.ErrOrStderr(), out.Warnings())
			_, _ = fmt.Fprintf(w, "Task %s: %s → %s\n", task.ShortID(), out.From.Display(), out.To.Display())
			printTransitionDetails(w, out)

			if out.Planning != nil && out.Planning.Watching && !opts.NoWait {
				waitForWatcher(cmd, c, out.Planning.Task.SessionName, opts.WaitTimeout)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.PR, "pr", false, "Open a pull request when moving into review")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Pull request title (default: task title)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "Pull request body (default: task description)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Complete the task even if its PR is still open")
	cmd.Flags().BoolVar(&opts.NoWait, "no-wait", false, "Do not wait for the agent confirmation prompt")
	cmd.Flags().DurationVar(&opts.WaitTimeout, "wait-timeout", defaultWaitTimeout, "Maximum time to wait for the agent confirmation prompt")

	return cmd
}

// askPR fills the PR fields of in, asking the user for whatever flags left open.
// The body defaults to the task description unless --body was given, even empty.
// Without a terminal and without --pr no PR is opened.
func askPR(cmd *cobra.Command, task *domain.Task, in *usecase.AdvanceTaskInput, pr bool, title, body string) error {
	if !cmd.Flags().Changed("body") {
		body = task.Description
	}
	in.PRTitle, in.PRBody = title, body
	if cmd.Flags().Changed("pr") {
		in.CreatePR = pr
		return nil
	}

	p := newPrompter()
	ok, err := p.Confirm("Open a pull request?", fmt.Sprintf("Pushes %s and opens a PR with gh.", task.BranchName))
	if errors.Is(err, errNotInteractive) {
		return nil
	}
	if err != nil {
		return err
	}
	in.CreatePR = ok
	if !ok || cmd.Flags().Changed("title") {
		return nil
	}

	in.PRTitle, in.PRBody, err = p.PRDetails(task.Title, body)
	return err
}

func printTransitionDetails(w io.Writer, out *usecase.AdvanceTaskOutput) {
	switch {
	case out.Planning != nil:
		t := out.Planning.Task
		_, _ = fmt.Fprintf(w, "  session:  %s\n  worktree: %s\n  branch:   %s\n", t.SessionName, t.WorktreePath, t.BranchName)
	case out.Running != nil:
		if out.Running.Instructed {
			_, _ = fmt.Fprintln(w, "  agent instructed to proceed with implementation")
		}
	case out.Review != nil && out.Review.PR != nil:
		_, _ = fmt.Fprintf(w, "  PR #%d: %s\n", out.Review.PR.Number, out.Review.PR.URL)
	case out.Done != nil && out.Done.PRState != "":
		_, _ = fmt.Fprintf(w, "  PR state: %s\n", out.Done.PRState)
	}
}

// waitForWatcher keeps the process alive until the acceptance prompt was
// answered or the timeout elapsed.
func waitForWatcher(cmd *cobra.Command, c *app.Container, sessionName string, timeout time.Duration) {
	if c.Watcher == nil {
		return
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for the agent confirmation prompt...")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := c.Watcher.WaitFor(ctx, sessionName); err != nil {
		c.Watcher.Stop(sessionName)
		c.Console.Warn("stopped waiting for confirmation prompt", "session", sessionName, "err", err)
	}
}

// newStartCommand creates the start command.
func newStartCommand(c *app.Container) *cobra.Command {
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Take a backlog task straight to running",
		Long: `Start planning for a backlog task and immediately move it to running.

The proceed instruction is sent only after the agent's confirmation
prompt has been answered (bounded by --wait-timeout).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), waitTimeout)
			defer cancel()

			out, err := c.QuickStartUseCase().Execute(ctx, usecase.QuickStartInput{TaskID: args[0]})
			if out != nil && out.Planning != nil {
				printWarnings(cmd.ErrOrStderr(), out.Planning.Warnings)
			}
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), out.Running.Warnings)

			t := out.Task()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Started task %s (session: %s, worktree: %s)\n",
				t.ShortID(), t.SessionName, t.WorktreePath)
			return nil
		},
	}

	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", defaultWaitTimeout, "Maximum time to wait for the agent confirmation prompt")

	return cmd
}

// newResumeCommand creates the resume command.
func newResumeCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <id>",
		Short: "Move a review task back to running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ResumeTaskUseCase().Execute(cmd.Context(), usecase.ResumeTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s: Review → Running\n", out.Task.ShortID())
			return nil
		},
	}
	return cmd
}
