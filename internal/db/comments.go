package db

import (
	"context"
	"strings"

	"github.com/tgienger/cadence/internal/models"
)

// AddComment attaches a note to a task
func (db *DB) AddComment(ctx context.Context, taskID int64, content string) (*models.Comment, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO comments (task_id, content) VALUES (?, ?)
	`, taskID, strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	c := &models.Comment{}
	err = db.QueryRowContext(ctx, `
		SELECT id, task_id, content, created_at FROM comments WHERE id = ?
	`, id).Scan(&c.ID, &c.TaskID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "comment", id)
	}
	return c, nil
}

// ListComments returns a task's comments, oldest first
func (db *DB) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, task_id, content, created_at
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment deletes a comment
func (db *DB) DeleteComment(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	return err
}
