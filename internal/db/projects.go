package db

import (
	"context"
	"database/sql"

	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

// ProjectSummary is a project with counts for list views
type ProjectSummary struct {
	models.Project
	OpenTasks int
	Recurring int
	NextDue   string // earliest open due date, empty when none
}

// CreateProject creates a new project
func (db *DB) CreateProject(ctx context.Context, title, description string) (*models.Project, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO projects (title, description) VALUES (?, ?)
	`, title, description)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetProject(ctx, id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// ListProjects returns all projects with open task counts. Tasks whose
// status is terminal are not counted.
func (db *DB) ListProjects(ctx context.Context, terminal models.Status) ([]ProjectSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.title, p.description, p.created_at, p.updated_at,
			COUNT(t.id),
			COALESCE(SUM(t.is_recurring), 0),
			MIN(t.due_date)
		FROM projects p
		LEFT JOIN tasks t ON t.project_id = p.id AND t.status != ?
		GROUP BY p.id
		ORDER BY p.updated_at DESC, p.id DESC
	`, terminal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ProjectSummary
	for rows.Next() {
		var (
			p       ProjectSummary
			nextDue sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt,
			&p.OpenTasks, &p.Recurring, &nextDue); err != nil {
			return nil, err
		}
		if nextDue.Valid {
			if d, err := recurrence.ParseDate(nextDue.String); err == nil {
				p.NextDue = d.Format(recurrence.DateLayout)
			}
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates a project
func (db *DB) UpdateProject(ctx context.Context, id int64, title, description string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE projects SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, title, description, id)
	return err
}

// DeleteProject deletes a project and all its tasks
func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}
