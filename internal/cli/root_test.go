package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	// Setup
	c, _ := newTestContainer()

	// Execute
	root := NewRootCommand(c, "1.2.3")

	// Assert
	assert.Equal(t, "upfyn", root.Use)
	assert.Equal(t, "1.2.3", root.Version)
	for _, name := range []string{
		"new", "import", "list", "show", "rm", "diff",
		"advance", "start", "resume",
		"peek", "send", "attach", "sessions",
		"agents", "projects", "link", "unlink", "links",
		"config", "tui",
	} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.GroupID, name)
	}
}

func TestNewRootCommand_NoArgsLaunchesTUI(t *testing.T) {
	// Setup
	c, _ := newTestContainer()
	var launched *app.Container
	orig := launchTUIFunc
	launchTUIFunc = func(c *app.Container) error {
		launched = c
		return nil
	}
	t.Cleanup(func() { launchTUIFunc = orig })

	root := NewRootCommand(c, "dev")
	root.SetArgs([]string{})

	// Execute
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Same(t, c, launched)
}

func TestNewRootCommand_NoRepository(t *testing.T) {
	// Setup
	root := NewRootCommand(nil, "dev")
	root.SetArgs([]string{})

	// Execute
	err := root.Execute()

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestNewRootCommand_VersionWithoutRepository(t *testing.T) {
	// Setup
	root := NewRootCommand(nil, "1.2.3")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--version"})

	// Execute
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1.2.3")
}

func TestNewRootCommand_ListAlias(t *testing.T) {
	// Setup
	c, d := newTestContainer()
	d.addTask(taskA, "Fix login bug", domain.StatusBacklog)
	root := NewRootCommand(c, "dev")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"ls"})

	// Execute
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Fix login bug")
}
