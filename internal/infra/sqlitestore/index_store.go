package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

var indexSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		github_url TEXT,
		default_agent TEXT,
		last_opened TEXT NOT NULL
	)`,
}

// IndexStore is the global registry of projects.
type IndexStore struct {
	db *sql.DB
}

// OpenIndex opens <configDir>/index.db.
func OpenIndex(configDir string) (*IndexStore, error) {
	db, err := open(domain.IndexDBPath(configDir), indexSchema)
	if err != nil {
		return nil, err
	}
	return &IndexStore{db: db}, nil
}

// Ensure IndexStore implements domain.ProjectRepository interface.
var _ domain.ProjectRepository = (*IndexStore)(nil)

// Close closes the database.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// UpsertProject inserts a project or refreshes the row registered at the same path.
// The ID of an existing row is kept.
func (s *IndexStore) UpsertProject(p *domain.Project) error {
	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, path, github_url, default_agent, last_opened)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			github_url = excluded.github_url,
			default_agent = excluded.default_agent,
			last_opened = excluded.last_opened`,
		p.ID, p.Name, p.Path, nullString(p.GithubURL), nullString(p.DefaultAgent), formatTime(p.LastOpened),
	)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// GetProjectByPath returns the project registered at path, or nil.
func (s *IndexStore) GetProjectByPath(path string) (*domain.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE path = ?`, path)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return p, nil
}

// ListProjects returns projects, most recently opened first.
func (s *IndexStore) ListProjects() ([]*domain.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY last_opened DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const projectColumns = `id, name, path, COALESCE(github_url, ''), COALESCE(default_agent, ''), last_opened`

func scanProject(row scanner) (*domain.Project, error) {
	var (
		p          domain.Project
		lastOpened string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &p.GithubURL, &p.DefaultAgent, &lastOpened); err != nil {
		return nil, err
	}
	p.LastOpened = parseTime(lastOpened)
	return &p, nil
}
