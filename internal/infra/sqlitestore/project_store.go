package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

var projectSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'backlog',
		agent TEXT NOT NULL,
		project_id TEXT NOT NULL,
		session_name TEXT,
		worktree_path TEXT,
		branch_name TEXT,
		pr_number INTEGER,
		pr_url TEXT,
		canvas_x REAL DEFAULT 0.0,
		canvas_y REAL DEFAULT 0.0,
		html_content TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	`CREATE TABLE IF NOT EXISTS task_connections (
		id TEXT PRIMARY KEY,
		from_task_id TEXT NOT NULL,
		to_task_id TEXT NOT NULL,
		label TEXT DEFAULT '',
		FOREIGN KEY (from_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
		FOREIGN KEY (to_task_id) REFERENCES tasks(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conn_from ON task_connections(from_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conn_to ON task_connections(to_task_id)`,
}

const taskColumns = `id, title, COALESCE(description, ''), status, agent, project_id,
	COALESCE(session_name, ''), COALESCE(worktree_path, ''), COALESCE(branch_name, ''),
	COALESCE(pr_number, 0), COALESCE(pr_url, ''),
	COALESCE(canvas_x, 0), COALESCE(canvas_y, 0), COALESCE(html_content, ''),
	created_at, updated_at`

// ProjectStore holds the tasks and connections of one project.
type ProjectStore struct {
	db   *sql.DB
	path string
}

// OpenProject opens the database of the project at projectPath.
func OpenProject(configDir, projectPath string) (*ProjectStore, error) {
	return OpenProjectAt(domain.ProjectDBPath(configDir, projectPath))
}

// OpenProjectAt opens a project database at an explicit file path.
func OpenProjectAt(path string) (*ProjectStore, error) {
	db, err := open(path, projectSchema)
	if err != nil {
		return nil, err
	}
	return &ProjectStore{db: db, path: path}, nil
}

// Ensure ProjectStore implements the repository interfaces.
var (
	_ domain.TaskRepository       = (*ProjectStore)(nil)
	_ domain.ConnectionRepository = (*ProjectStore)(nil)
)

// Path returns the database file path.
func (s *ProjectStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *ProjectStore) Close() error {
	return s.db.Close()
}

// Get retrieves a task by ID. Returns nil if not found.
func (s *ProjectStore) Get(id string) (*domain.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// List returns all tasks ordered by creation time.
func (s *ProjectStore) List() ([]*domain.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Insert stores a new task.
func (s *ProjectStore) Insert(t *domain.Task) error {
	_, err := s.db.Exec(`
		INSERT INTO tasks (id, title, description, status, agent, project_id,
			session_name, worktree_path, branch_name, pr_number, pr_url,
			canvas_x, canvas_y, html_content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, nullString(t.Description), string(t.Status), t.Agent, t.ProjectID,
		nullString(t.SessionName), nullString(t.WorktreePath), nullString(t.BranchName),
		nullInt(t.PRNumber), nullString(t.PRURL),
		t.CanvasX, t.CanvasY, nullString(t.HTMLContent),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update replaces the stored row keyed by task.ID.
func (s *ProjectStore) Update(t *domain.Task) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET
			title = ?, description = ?, status = ?, agent = ?,
			session_name = ?, worktree_path = ?, branch_name = ?,
			pr_number = ?, pr_url = ?,
			canvas_x = ?, canvas_y = ?, html_content = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, nullString(t.Description), string(t.Status), t.Agent,
		nullString(t.SessionName), nullString(t.WorktreePath), nullString(t.BranchName),
		nullInt(t.PRNumber), nullString(t.PRURL),
		t.CanvasX, t.CanvasY, nullString(t.HTMLContent), formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its connections.
func (s *ProjectStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM task_connections WHERE from_task_id = ? OR to_task_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete connections: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertConnection stores a connection between two existing tasks.
func (s *ProjectStore) InsertConnection(c *domain.Connection) error {
	_, err := s.db.Exec(`INSERT INTO task_connections (id, from_task_id, to_task_id, label) VALUES (?, ?, ?, ?)`,
		c.ID, c.FromTaskID, c.ToTaskID, c.Label)
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	return nil
}

// DeleteConnection removes a connection by ID.
func (s *ProjectStore) DeleteConnection(id string) error {
	res, err := s.db.Exec(`DELETE FROM task_connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}

// ListConnections returns all connections.
func (s *ProjectStore) ListConnections() ([]domain.Connection, error) {
	rows, err := s.db.Query(`SELECT id, from_task_id, to_task_id, COALESCE(label, '') FROM task_connections ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var c domain.Connection
		if err := rows.Scan(&c.ID, &c.FromTaskID, &c.ToTaskID, &c.Label); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                domain.Task
		status           string
		created, updated string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &t.Agent, &t.ProjectID,
		&t.SessionName, &t.WorktreePath, &t.BranchName,
		&t.PRNumber, &t.PRURL,
		&t.CanvasX, &t.CanvasY, &t.HTMLContent,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}
