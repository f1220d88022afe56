package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// RegisterProjectOutput contains the registered project.
type RegisterProjectOutput struct {
	Project *domain.Project
}

// RegisterProject upserts the current repository in the global project index.
type RegisterProject struct {
	projects domain.ProjectRepository
	git      domain.Git
	config   domain.ConfigLoader
	clock    domain.Clock
	newID    func() string
}

// NewRegisterProject creates a new RegisterProject use case.
func NewRegisterProject(
	projects domain.ProjectRepository,
	git domain.Git,
	config domain.ConfigLoader,
	clock domain.Clock,
	newID func() string,
) *RegisterProject {
	return &RegisterProject{projects: projects, git: git, config: config, clock: clock, newID: newID}
}

// Execute registers the repository and returns the stored project.
// An already registered path keeps its id.
func (uc *RegisterProject) Execute(_ context.Context) (*RegisterProjectOutput, error) {
	root := uc.git.RepoRoot()
	settings, err := uc.config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	githubURL := strings.TrimSpace(settings.GithubURL)
	if githubURL == "" {
		if remote, err := uc.git.RemoteURL("origin"); err == nil {
			githubURL = domain.RepositoryWebURL(remote)
		}
	}

	project := &domain.Project{
		ID:           uc.newID(),
		Name:         filepath.Base(root),
		Path:         root,
		GithubURL:    githubURL,
		DefaultAgent: settings.DefaultAgent,
		LastOpened:   uc.clock.Now(),
	}
	if err := uc.projects.UpsertProject(project); err != nil {
		return nil, fmt.Errorf("upsert project: %w", err)
	}

	stored, err := uc.projects.GetProjectByPath(root)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if stored == nil {
		stored = project
	}
	return &RegisterProjectOutput{Project: stored}, nil
}

// ListProjectsOutput contains the registered projects.
type ListProjectsOutput struct {
	Projects []*domain.Project
}

// ListProjects lists registered projects, most recently opened first.
type ListProjects struct {
	projects domain.ProjectRepository
}

// NewListProjects creates a new ListProjects use case.
func NewListProjects(projects domain.ProjectRepository) *ListProjects {
	return &ListProjects{projects: projects}
}

// Execute lists the projects.
func (uc *ListProjects) Execute(_ context.Context) (*ListProjectsOutput, error) {
	projects, err := uc.projects.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &ListProjectsOutput{Projects: projects}, nil
}
