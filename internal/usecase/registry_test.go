package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/testutil"
)

func TestListAgents_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.config.Global.DefaultAgent = "aider"
	locator := &testutil.MockAgentLocator{Available: map[string]bool{"claude": true, "gh": true}}

	// Execute
	out, err := NewListAgents(locator, f.config).Execute(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "aider", out.Default)
	require.Len(t, out.Agents, len(domain.KnownAgents()))
	available := map[string]bool{}
	for _, a := range out.Agents {
		available[a.Agent.Name] = a.Available
	}
	assert.True(t, available["claude"])
	assert.True(t, available["gh-copilot"])
	assert.False(t, available["aider"])
}

func TestRegisterProject_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.git.Root = "/home/dev/acme"
	f.git.Remote = "git@github.com:acme/app.git"
	uc := NewRegisterProject(f.projects, f.git, f.config, f.clock, f.newID)

	// Execute
	out, err := uc.Execute(context.Background())

	// Assert
	require.NoError(t, err)
	p := out.Project
	assert.Equal(t, testTaskID, p.ID)
	assert.Equal(t, "acme", p.Name)
	assert.Equal(t, "/home/dev/acme", p.Path)
	assert.Equal(t, "https://github.com/acme/app", p.GithubURL)
	assert.Equal(t, "claude", p.DefaultAgent)
	assert.Equal(t, testNow, p.LastOpened)
}

func TestRegisterProject_Execute_KeepsIDAndPrefersConfiguredURL(t *testing.T) {
	// Setup
	f := newFixture()
	f.git.Root = "/home/dev/acme"
	f.git.RemoteErr = errors.New("no origin")
	f.config.Project = &domain.ProjectConfig{GithubURL: "https://github.com/acme/fork"}
	uc := NewRegisterProject(f.projects, f.git, f.config, f.clock, f.newID)
	first, err := uc.Execute(context.Background())
	require.NoError(t, err)

	// Execute
	f.clock.NowTime = testNow.Add(time.Hour)
	second, err := uc.Execute(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, first.Project.ID, second.Project.ID)
	assert.Equal(t, "https://github.com/acme/fork", second.Project.GithubURL)
	assert.Equal(t, testNow.Add(time.Hour), second.Project.LastOpened)
	assert.Len(t, f.projects.Projects, 1)
}

func TestRegisterProject_Execute_UpsertError(t *testing.T) {
	f := newFixture()
	f.projects.UpsertErr = errors.New("readonly")

	_, err := NewRegisterProject(f.projects, f.git, f.config, f.clock, f.newID).Execute(context.Background())

	assert.Error(t, err)
}

func TestListProjects_Execute(t *testing.T) {
	f := newFixture()
	f.projects.Projects["/a"] = &domain.Project{ID: "a", Path: "/a", LastOpened: testNow.Add(-time.Hour)}
	f.projects.Projects["/b"] = &domain.Project{ID: "b", Path: "/b", LastOpened: testNow}

	out, err := NewListProjects(f.projects).Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, out.Projects, 2)
	assert.Equal(t, "b", out.Projects[0].ID)
}

func TestAddConnection_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "One", domain.StatusBacklog)
	f.addTask(otherTaskID, "Two", domain.StatusBacklog)
	f.ids = []string{"conn-1"}
	uc := NewAddConnection(f.tasks, f.conns, f.newID)

	// Execute
	out, err := uc.Execute(context.Background(), AddConnectionInput{From: "1a2b", To: "9f8e", Label: " blocks "})

	// Assert
	require.NoError(t, err)
	want := domain.Connection{ID: "conn-1", FromTaskID: testTaskID, ToTaskID: otherTaskID, Label: "blocks"}
	assert.Equal(t, want, out.Connection)
	assert.Equal(t, []domain.Connection{want}, f.conns.Connections)
}

func TestAddConnection_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"self", testTaskID, "1a2b3c", domain.ErrSelfConnection},
		{"unknown from", "ffff0000", otherTaskID, domain.ErrTaskNotFound},
		{"unknown to", testTaskID, "ffff0000", domain.ErrTaskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.addTask(testTaskID, "One", domain.StatusBacklog)
			f.addTask(otherTaskID, "Two", domain.StatusBacklog)

			_, err := NewAddConnection(f.tasks, f.conns, f.newID).Execute(context.Background(), AddConnectionInput{From: tt.from, To: tt.to})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.conns.Connections)
		})
	}
}

func TestRemoveConnection_Execute(t *testing.T) {
	f := newFixture()
	f.conns.Connections = []domain.Connection{{ID: "c1"}, {ID: "c2"}}
	uc := NewRemoveConnection(f.conns)

	require.NoError(t, uc.Execute(context.Background(), RemoveConnectionInput{ID: "c1"}))
	assert.ErrorIs(t, uc.Execute(context.Background(), RemoveConnectionInput{ID: "c1"}), domain.ErrConnectionNotFound)
	assert.Equal(t, []domain.Connection{{ID: "c2"}}, f.conns.Connections)
}

func TestListConnections_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.addTask(testTaskID, "One", domain.StatusBacklog)
	f.conns.Connections = []domain.Connection{
		{ID: "c1", FromTaskID: testTaskID, ToTaskID: otherTaskID},
		{ID: "c2", FromTaskID: otherTaskID, ToTaskID: "x"},
	}
	uc := NewListConnections(f.tasks, f.conns)

	// Execute
	all, err := uc.Execute(context.Background(), ListConnectionsInput{})
	require.NoError(t, err)
	one, err := uc.Execute(context.Background(), ListConnectionsInput{TaskID: "1a2b"})
	require.NoError(t, err)

	// Assert
	assert.Len(t, all.Connections, 2)
	require.Len(t, one.Connections, 1)
	assert.Equal(t, "c1", one.Connections[0].ID)
}

func TestShowConfig_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	f.config.Project = &domain.ProjectConfig{BaseBranch: "trunk"}
	manager := &testutil.MockConfigManager{
		Global:  domain.ConfigInfo{Path: "/cfg/config.toml"},
		Project: domain.ConfigInfo{Path: "/repo/.upfyn/config.toml", Exists: true, Content: "base_branch = \"trunk\"\n"},
	}

	// Execute
	out, err := NewShowConfig(f.config, manager).Execute(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "trunk", out.Settings.BaseBranch)
	assert.False(t, out.GlobalConfig.Exists)
	assert.True(t, out.ProjectConfig.Exists)
}

func TestShowConfig_Execute_LoadError(t *testing.T) {
	f := newFixture()
	f.config.LoadErr = errors.New("parse /cfg/config.toml: expected value")

	_, err := NewShowConfig(f.config, &testutil.MockConfigManager{}).Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestInitConfig_Execute(t *testing.T) {
	manager := &testutil.MockConfigManager{
		Global:  domain.ConfigInfo{Path: "/cfg/config.toml"},
		Project: domain.ConfigInfo{Path: "/repo/.upfyn/config.toml"},
	}
	uc := NewInitConfig(manager)

	project, err := uc.Execute(context.Background(), InitConfigInput{})
	require.NoError(t, err)
	global, err := uc.Execute(context.Background(), InitConfigInput{Global: true})
	require.NoError(t, err)

	assert.Equal(t, "/repo/.upfyn/config.toml", project.Path)
	assert.Equal(t, "/cfg/config.toml", global.Path)
	assert.Equal(t, 1, manager.InitCalls)
	assert.Equal(t, 1, manager.GlobalCalls)
}

func TestInitConfig_Execute_Exists(t *testing.T) {
	manager := &testutil.MockConfigManager{InitErr: domain.ErrConfigExists}

	_, err := NewInitConfig(manager).Execute(context.Background(), InitConfigInput{})

	assert.ErrorIs(t, err, domain.ErrConfigExists)
}
