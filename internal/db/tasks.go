package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

const taskColumns = `
	t.id, t.project_id, t.series_id, t.title, t.description, t.notes, t.assignee, t.priority,
	t.status, t.due_date, t.completed_at, t.completed_by, t.created_by,
	t.is_recurring, t.recurrence_pattern, t.recurrence_interval, t.recurrence_base_date,
	t.recurrence_start_date, t.recurrence_end_date, t.recurrence_week_days, t.recurrence_day_of_month,
	t.created_at, t.updated_at`

// TaskFilter narrows ListTasks. Zero fields do not filter.
type TaskFilter struct {
	ProjectID     int64
	Search        string
	Status        models.Status
	ExcludeStatus models.Status
	Assignee      string
	SeriesID      string
	DueOnOrBefore *time.Time
}

// taskRepo runs task queries against a connection or a transaction
type taskRepo struct {
	q querier
}

func (db *DB) tasks() taskRepo {
	return taskRepo{q: db.DB}
}

// CreateTask inserts t and returns the stored task with its new ID
func (db *DB) CreateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	return db.tasks().CreateTask(ctx, t)
}

// UpdateTask writes every column of t. Subtasks are managed separately.
func (db *DB) UpdateTask(ctx context.Context, t models.Task) error {
	return db.tasks().UpdateTask(ctx, t)
}

// GetTask retrieves a task by ID with its subtasks
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return db.tasks().get(ctx, id)
}

// ListTasks returns tasks matching f, earliest due first, undated last
func (db *DB) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	return db.tasks().list(ctx, f)
}

// DeleteTask deletes a task with its subtasks and comments
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

// ListSeries returns every occurrence that shares seriesID, oldest due first
func (db *DB) ListSeries(ctx context.Context, seriesID string) ([]models.Task, error) {
	if seriesID == "" {
		return nil, nil
	}
	return db.tasks().list(ctx, TaskFilter{SeriesID: seriesID})
}

// StopSeries removes the recurrence rule from every occurrence of the series
// that is not in the terminal status, so completing them spawns nothing.
// It returns how many tasks were changed.
func (db *DB) StopSeries(ctx context.Context, seriesID string, terminal models.Status) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET is_recurring = 0, updated_at = CURRENT_TIMESTAMP
		WHERE series_id = ? AND status != ? AND is_recurring = 1
	`, seriesID, terminal)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r taskRepo) CreateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	cols := taskValues(t)
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (
			project_id, series_id, title, description, notes, assignee, priority,
			status, due_date, completed_at, completed_by, created_by,
			is_recurring, recurrence_pattern, recurrence_interval, recurrence_base_date,
			recurrence_start_date, recurrence_end_date, recurrence_week_days, recurrence_day_of_month
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cols...)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.get(ctx, id)
}

func (r taskRepo) UpdateTask(ctx context.Context, t models.Task) error {
	args := append(taskValues(t), t.ID)
	res, err := r.q.ExecContext(ctx, `
		UPDATE tasks SET
			project_id = ?, series_id = ?, title = ?, description = ?, notes = ?, assignee = ?, priority = ?,
			status = ?, due_date = ?, completed_at = ?, completed_by = ?, created_by = ?,
			is_recurring = ?, recurrence_pattern = ?, recurrence_interval = ?, recurrence_base_date = ?,
			recurrence_start_date = ?, recurrence_end_date = ?, recurrence_week_days = ?, recurrence_day_of_month = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r taskRepo) get(ctx context.Context, id int64) (*models.Task, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.id = ?", id)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err, "task", id)
	}

	subtasks, err := subtaskRepo{q: r.q}.list(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Subtasks = subtasks

	return &t, nil
}

func (r taskRepo) list(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks t WHERE 1 = 1"
	var args []any

	if f.ProjectID != 0 {
		query += " AND t.project_id = ?"
		args = append(args, f.ProjectID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		query += " AND (t.title LIKE ? OR t.description LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Status != "" {
		query += " AND t.status = ?"
		args = append(args, f.Status)
	}
	if f.ExcludeStatus != "" {
		query += " AND t.status != ?"
		args = append(args, f.ExcludeStatus)
	}
	if f.Assignee != "" {
		query += " AND t.assignee = ?"
		args = append(args, f.Assignee)
	}
	if f.SeriesID != "" {
		query += " AND t.series_id = ?"
		args = append(args, f.SeriesID)
	}
	if f.DueOnOrBefore != nil {
		query += " AND t.due_date IS NOT NULL AND t.due_date <= ?"
		args = append(args, f.DueOnOrBefore.Format(recurrence.DateLayout))
	}

	query += " ORDER BY t.due_date IS NULL, t.due_date ASC, t.priority DESC, t.id ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load subtasks for each task
	subs := subtaskRepo{q: r.q}
	for i := range tasks {
		st, err := subs.list(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Subtasks = st
	}

	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t                     models.Task
		due, completedAt      sql.NullString
		startDate, endDate    sql.NullString
		dayOfMonth            sql.NullInt64
		weekDays, status      string
		isRecurring, interval int
		pattern, baseDate     string
	)
	err := s.Scan(&t.ID, &t.ProjectID, &t.SeriesID, &t.Title, &t.Description, &t.Notes, &t.Assignee, &t.Priority,
		&status, &due, &completedAt, &t.CompletedBy, &t.CreatedBy,
		&isRecurring, &pattern, &interval, &baseDate,
		&startDate, &endDate, &weekDays, &dayOfMonth,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Status = models.Status(status)

	if due.Valid {
		if d, err := recurrence.ParseDate(due.String); err == nil {
			t.DueDate = &d
		}
	}
	if completedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			t.CompletedAt = &ts
		}
	}

	f := recurrence.Fields{
		IsRecurring: isRecurring != 0,
		Pattern:     pattern,
		Interval:    interval,
		BaseDate:    baseDate,
		WeekDays:    recurrence.ParseWeekDays(weekDays),
	}
	if startDate.Valid {
		f.StartDate = &startDate.String
	}
	if endDate.Valid {
		f.EndDate = &endDate.String
	}
	if dayOfMonth.Valid {
		dom := int(dayOfMonth.Int64)
		f.DayOfMonth = &dom
	}
	t.Recurrence = f.Rule()

	return t, nil
}

// taskValues returns the insert/update column values of t in schema order
func taskValues(t models.Task) []any {
	var due, completedAt any
	if t.DueDate != nil {
		due = t.DueDate.Format(recurrence.DateLayout)
	}
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(time.RFC3339Nano)
	}

	f := recurrence.FieldsOf(t.Recurrence)
	var startDate, endDate, dayOfMonth any
	if f.StartDate != nil {
		startDate = *f.StartDate
	}
	if f.EndDate != nil {
		endDate = *f.EndDate
	}
	if f.DayOfMonth != nil {
		dayOfMonth = *f.DayOfMonth
	}
	var weekDays string
	if t.Recurrence != nil {
		weekDays = recurrence.FormatWeekDays(t.Recurrence.WeekDays)
	}

	return []any{
		t.ProjectID, t.SeriesID, t.Title, t.Description, t.Notes, t.Assignee, t.Priority,
		string(t.Status), due, completedAt, t.CompletedBy, t.CreatedBy,
		f.IsRecurring, f.Pattern, f.Interval, f.BaseDate,
		startDate, endDate, weekDays, dayOfMonth,
	}
}
