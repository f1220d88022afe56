package sqlitestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

func TestIndexStore_Upsert(t *testing.T) {
	store, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertProject(&domain.Project{
		ID: "p1", Name: "acme", Path: "/work/acme", DefaultAgent: "claude", LastOpened: first,
	}))

	// Same path, new id and metadata: the row is refreshed, the id kept
	require.NoError(t, store.UpsertProject(&domain.Project{
		ID: "p2", Name: "acme", Path: "/work/acme", GithubURL: "https://github.com/upfyn/acme",
		DefaultAgent: "aider", LastOpened: first.Add(time.Hour),
	}))

	got, err := store.GetProjectByPath("/work/acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "aider", got.DefaultAgent)
	assert.Equal(t, "https://github.com/upfyn/acme", got.GithubURL)
	assert.True(t, first.Add(time.Hour).Equal(got.LastOpened))

	projects, err := store.ListProjects()
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestIndexStore_ListProjects_RecentFirst(t *testing.T) {
	store, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	require.NoError(t, store.UpsertProject(&domain.Project{ID: "old", Name: "old", Path: "/old", LastOpened: now.Add(-time.Hour)}))
	require.NoError(t, store.UpsertProject(&domain.Project{ID: "new", Name: "new", Path: "/new", LastOpened: now}))

	projects, err := store.ListProjects()

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "new", projects[0].Name)
	assert.Equal(t, "old", projects[1].Name)
}

func TestIndexStore_GetProjectByPath_NotFound(t *testing.T) {
	store, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetProjectByPath("/nowhere")
	require.NoError(t, err)
	assert.Nil(t, got)
}
