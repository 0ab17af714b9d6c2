package db

import (
	"context"
	"fmt"

	"github.com/tgienger/cadence/internal/models"
)

type subtaskRepo struct {
	q querier
}

// AddSubtask appends a checklist entry to a task
func (db *DB) AddSubtask(ctx context.Context, taskID int64, title string) (*models.Subtask, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO subtasks (task_id, title, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM subtasks WHERE task_id = ?))
	`, taskID, title, taskID)
	if err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	st := &models.Subtask{}
	err = db.QueryRowContext(ctx, `
		SELECT id, task_id, title, completed, position FROM subtasks WHERE id = ?
	`, id).Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.Position)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// SetSubtaskCompleted marks a subtask done or open
func (db *DB) SetSubtaskCompleted(ctx context.Context, id int64, completed bool) error {
	res, err := db.ExecContext(ctx, "UPDATE subtasks SET completed = ? WHERE id = ?", completed, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("subtask %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSubtask removes a subtask
func (db *DB) DeleteSubtask(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM subtasks WHERE id = ?", id)
	return err
}

// ListSubtasks returns the subtasks of a task in display order
func (db *DB) ListSubtasks(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	return subtaskRepo{q: db.DB}.list(ctx, taskID)
}

func (r subtaskRepo) list(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, task_id, title, completed, position
		FROM subtasks WHERE task_id = ?
		ORDER BY position ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []models.Subtask
	for rows.Next() {
		var st models.Subtask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.Position); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}
