// Package cli provides the command-line interface for upfyn.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupTask    = "task"
	groupSession = "session"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for upfyn.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "upfyn",
		Short: "Run coding agents on parallel tasks",
		Long: `upfyn orchestrates AI coding agents across tasks.

Every task gets its own git worktree, branch and agent session, and moves
along backlog → planning → running → review → done. Sessions run on tmux
when it is installed, in Windows Terminal tabs on Windows, and as detached
background processes otherwise.

Run without arguments to open the task board.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if c == nil {
				return domain.ErrNotGitRepository
			}
			return launchTUIFunc(c)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSession, Title: "Session Management:"},
	)

	withGroup := func(id string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = id
			root.AddCommand(cmd)
		}
	}

	withGroup(groupSetup,
		newConfigCommand(c),
		newListAgentsCommand(c),
		newProjectsCommand(c),
	)
	withGroup(groupTask,
		newNewCommand(c),
		newImportCommand(c),
		newListCommand(c),
		newShowCommand(c),
		newRmCommand(c),
		newAdvanceCommand(c),
		newStartCommand(c),
		newResumeCommand(c),
		newLinkCommand(c),
		newUnlinkCommand(c),
		newLinksCommand(c),
		newTUICommand(c),
	)
	withGroup(groupSession,
		newPeekCommand(c),
		newSendCommand(c),
		newAttachCommand(c),
		newSessionsCommand(c),
		newDiffCommand(c),
	)

	return root
}
