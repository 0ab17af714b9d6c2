package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

// Outcome classifies a status change request
type Outcome int

const (
	// Applied means the new status was persisted.
	Applied Outcome = iota
	// ConfirmationRequired means completion was held because of open
	// subtasks. Nothing was written; re-issue the request confirmed.
	ConfirmationRequired
	// Unchanged means the task already had the requested status.
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case ConfirmationRequired:
		return "confirmation required"
	case Unchanged:
		return "unchanged"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result reports what a status change did
type Result struct {
	Outcome Outcome
	// Task is the task after the request. On ConfirmationRequired,
	// Unchanged or error it is the task as passed in.
	Task models.Task
	// Successor is the next occurrence, set when a recurring task was
	// completed and its series continues.
	Successor *models.Task
	// OpenSubtasks is the number of incomplete subtasks behind a hold.
	OpenSubtasks int
	// SeriesEnded is set when a recurring task was completed but its rule
	// produced no further occurrence.
	SeriesEnded bool
}

// Controller orchestrates status changes against a Store.
type Controller struct {
	guard     Guard
	scheduler recurrence.Scheduler
	store     Store

	Clock       Clock
	Logger      *slog.Logger
	NewSeriesID func() string
}

// NewController wires a controller. Clock, Logger and NewSeriesID default
// to wall time, slog.Default and random UUIDs.
func NewController(store Store, statuses StatusSet, scheduler recurrence.Scheduler) *Controller {
	return &Controller{
		guard:       Guard{Statuses: statuses},
		scheduler:   scheduler,
		store:       store,
		Clock:       realClock{},
		Logger:      slog.Default(),
		NewSeriesID: func() string { return uuid.NewString() },
	}
}

// Statuses returns the status catalog the controller enforces
func (c *Controller) Statuses() StatusSet {
	return c.guard.Statuses
}

// Complete requests the terminal status for t
func (c *Controller) Complete(ctx context.Context, actor string, t models.Task, confirmed bool) (Result, error) {
	return c.RequestStatusChange(ctx, actor, t, c.guard.Statuses.Terminal(), confirmed)
}

// RequestStatusChange moves t to next on behalf of actor. A completion held
// by open subtasks is applied only when confirmed is true. Completing a
// recurring task also creates its next occurrence; the task update and the
// successor are written together or not at all.
func (c *Controller) RequestStatusChange(ctx context.Context, actor string, t models.Task, next models.Status, confirmed bool) (Result, error) {
	verdict, err := c.guard.Evaluate(t, next)
	if err != nil {
		return Result{Task: t}, err
	}
	if t.Status == next {
		return Result{Outcome: Unchanged, Task: t}, nil
	}
	if verdict.Decision == HoldForConfirmation && !confirmed {
		return Result{Outcome: ConfirmationRequired, Task: t, OpenSubtasks: verdict.OpenSubtasks}, nil
	}

	statuses := c.guard.Statuses
	completing := !statuses.IsTerminal(t.Status) && statuses.IsTerminal(next)

	updated := t.Clone()
	updated.Status = next
	if completing {
		now := c.Clock.Now()
		updated.CompletedAt = &now
		updated.CompletedBy = actor
	} else if !statuses.IsTerminal(next) {
		updated.CompletedAt = nil
		updated.CompletedBy = ""
	}

	res := Result{Outcome: Applied, OpenSubtasks: verdict.OpenSubtasks}
	var successor *models.Task
	if completing && updated.IsRecurring() {
		if updated.SeriesID == "" {
			updated.SeriesID = c.NewSeriesID()
		}
		if due, ok := c.nextDueDate(updated); ok {
			s := c.successorOf(updated, due, actor)
			successor = &s
		} else {
			res.SeriesEnded = true
		}
	}

	created, err := c.persist(ctx, t, updated, successor)
	if err != nil {
		c.Logger.ErrorContext(ctx, "status change not persisted",
			"task_id", t.ID, "from", t.Status, "to", next, "error", err)
		return Result{Task: t}, err
	}

	res.Task = updated
	res.Successor = created
	c.logResult(ctx, actor, t, res)
	return res, nil
}

// nextDueDate picks the anchor the rule asks for and schedules from it. A
// scheduled-anchor task without a due date has nothing to count from.
func (c *Controller) nextDueDate(t models.Task) (time.Time, bool) {
	var anchor time.Time
	switch t.Recurrence.Anchor {
	case recurrence.AnchorCompletion:
		if t.CompletedAt != nil {
			anchor = *t.CompletedAt
		}
	default:
		if t.DueDate != nil {
			anchor = *t.DueDate
		}
	}
	if anchor.IsZero() {
		return time.Time{}, false
	}
	return c.scheduler.NextDueDate(*t.Recurrence, anchor)
}

// successorOf clones the definition of a completed task into a fresh,
// open occurrence. Subtasks and comments stay with the completed task.
func (c *Controller) successorOf(t models.Task, due time.Time, actor string) models.Task {
	rule := t.Recurrence.Clone()
	return models.Task{
		ProjectID:   t.ProjectID,
		SeriesID:    t.SeriesID,
		Title:       t.Title,
		Description: t.Description,
		Notes:       t.Notes,
		Assignee:    t.Assignee,
		Priority:    t.Priority,
		Status:      c.guard.Statuses.Initial(),
		DueDate:     &due,
		CreatedBy:   actor,
		Recurrence:  &rule,
	}
}

// persist writes the updated task and the optional successor. Without a
// transactional store a failed create rolls the task back to prev.
func (c *Controller) persist(ctx context.Context, prev, updated models.Task, successor *models.Task) (*models.Task, error) {
	if tx, ok := c.store.(Transactor); ok {
		var created *models.Task
		err := tx.InTx(ctx, func(s Store) error {
			var err error
			created, err = write(ctx, s, updated, successor)
			return err
		})
		if err != nil {
			return nil, err
		}
		return created, nil
	}

	if err := c.store.UpdateTask(ctx, updated); err != nil {
		return nil, fmt.Errorf("update task %d: %w", updated.ID, err)
	}
	if successor == nil {
		return nil, nil
	}
	created, err := c.store.CreateTask(ctx, *successor)
	if err != nil {
		err = fmt.Errorf("create successor of task %d: %w", updated.ID, err)
		if rbErr := c.store.UpdateTask(ctx, prev); rbErr != nil {
			return nil, errors.Join(err, fmt.Errorf("roll back task %d: %w", prev.ID, rbErr))
		}
		return nil, err
	}
	return created, nil
}

func write(ctx context.Context, s Store, updated models.Task, successor *models.Task) (*models.Task, error) {
	if err := s.UpdateTask(ctx, updated); err != nil {
		return nil, fmt.Errorf("update task %d: %w", updated.ID, err)
	}
	if successor == nil {
		return nil, nil
	}
	created, err := s.CreateTask(ctx, *successor)
	if err != nil {
		return nil, fmt.Errorf("create successor of task %d: %w", updated.ID, err)
	}
	return created, nil
}

func (c *Controller) logResult(ctx context.Context, actor string, prev models.Task, res Result) {
	c.Logger.InfoContext(ctx, "task status changed",
		"task_id", prev.ID, "actor", actor, "from", prev.Status, "to", res.Task.Status)
	switch {
	case res.Successor != nil:
		c.Logger.InfoContext(ctx, "next occurrence created",
			"task_id", prev.ID, "successor_id", res.Successor.ID, "series_id", res.Successor.SeriesID,
			"due", res.Successor.DueDate.Format(recurrence.DateLayout))
	case res.SeriesEnded:
		c.Logger.InfoContext(ctx, "recurring series ended", "task_id", prev.ID, "series_id", res.Task.SeriesID)
	}
}
