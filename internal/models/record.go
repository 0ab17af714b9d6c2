package models

import (
	"time"

	"github.com/tgienger/cadence/internal/recurrence"
)

// SubtaskRecord is the serialized form of a subtask
type SubtaskRecord struct {
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Record is the plain serializable form of a task used for export.
type Record struct {
	ID          int64           `json:"id" yaml:"id"`
	ProjectID   int64           `json:"projectId" yaml:"projectId"`
	SeriesID    string          `json:"seriesId,omitempty" yaml:"seriesId,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Assignee    string          `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Priority    int             `json:"priority" yaml:"priority"`
	Status      string          `json:"status" yaml:"status"`
	DueDate     string          `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CompletedAt string          `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	Subtasks    []SubtaskRecord `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`

	recurrence.Fields `yaml:",inline"`
}

// ToRecord flattens a task for serialization
func ToRecord(t Task) Record {
	r := Record{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		SeriesID:    t.SeriesID,
		Name:        t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Priority:    t.Priority,
		Status:      string(t.Status),
		Fields:      recurrence.FieldsOf(t.Recurrence),
	}
	if t.DueDate != nil {
		r.DueDate = t.DueDate.Format(recurrence.DateLayout)
	}
	if t.CompletedAt != nil {
		r.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	for _, st := range t.Subtasks {
		r.Subtasks = append(r.Subtasks, SubtaskRecord{Title: st.Title, Completed: st.Completed})
	}
	return r
}

// FromRecord rebuilds a task. Unparseable dates are dropped; a malformed
// recurrence date yields a rule that never fires again.
func FromRecord(r Record) Task {
	t := Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		SeriesID:    r.SeriesID,
		Title:       r.Name,
		Description: r.Description,
		Assignee:    r.Assignee,
		Priority:    r.Priority,
		Status:      Status(r.Status),
		Recurrence:  r.Fields.Rule(),
	}
	if r.DueDate != "" {
		if d, err := recurrence.ParseDate(r.DueDate); err == nil {
			t.DueDate = &d
		}
	}
	if r.CompletedAt != "" {
		if ts, err := time.Parse(time.RFC3339, r.CompletedAt); err == nil {
			t.CompletedAt = &ts
		}
	}
	for i, st := range r.Subtasks {
		t.Subtasks = append(t.Subtasks, Subtask{Title: st.Title, Completed: st.Completed, Position: i})
	}
	return t
}
