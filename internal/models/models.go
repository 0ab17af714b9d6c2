package models

import (
	"time"

	"github.com/tgienger/cadence/internal/recurrence"
)

// Project groups tasks, usually one per client folder
type Project struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status identifies a task state. Which status is terminal is decided by
// the configured status set, never by the identifier text.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
)

// Comment represents a comment on a task
type Comment struct {
	ID        int64
	TaskID    int64
	Content   string
	CreatedAt time.Time
}

// Subtask is a checklist entry on a task
type Subtask struct {
	ID        int64
	TaskID    int64
	Title     string
	Completed bool
	Position  int
}

// Task represents a single task
type Task struct {
	ID          int64
	ProjectID   int64
	SeriesID    string // shared by every occurrence of a recurring task
	Title       string
	Description string
	Notes       string
	Assignee    string
	Priority    int
	Status      Status
	DueDate     *time.Time // calendar date, local midnight
	CompletedAt *time.Time
	CompletedBy string
	CreatedBy   string
	Recurrence  *recurrence.Rule
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Subtasks    []Subtask // populated when loading tasks
	Comments    []Comment // populated when loading task details
}

// IsRecurring reports whether completing the task spawns a successor
func (t *Task) IsRecurring() bool {
	return t.Recurrence != nil
}

// IncompleteSubtasks counts subtasks that are not completed
func (t *Task) IncompleteSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if !st.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can mutate without aliasing
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	if t.Recurrence != nil {
		r := t.Recurrence.Clone()
		c.Recurrence = &r
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	if t.Comments != nil {
		c.Comments = append([]Comment(nil), t.Comments...)
	}
	return c
}
