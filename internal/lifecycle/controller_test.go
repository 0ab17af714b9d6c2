package lifecycle

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

const actor = "alex"

func day(s string) time.Time {
	d, err := recurrence.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(s string) time.Time {
	d := day(s)
	return d.Add(14 * time.Hour)
}

func dueOn(s string) *time.Time {
	d := day(s)
	return &d
}

func newTestController(store Store, now time.Time) *Controller {
	c := NewController(store, DefaultStatuses(), recurrence.Scheduler{WeeklyByWeekDays: true})
	c.Clock = NewFixedClock(now)
	c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	c.NewSeriesID = func() string { return "series-1" }
	return c
}

func recurringTask(rule recurrence.Rule, due string) models.Task {
	return models.Task{
		ProjectID:   7,
		Title:       "File quarterly payroll",
		Description: "Client ACME",
		Notes:       "use the new portal",
		Assignee:    "sam",
		Priority:    3,
		Status:      models.StatusTodo,
		DueDate:     dueOn(due),
		Recurrence:  &rule,
	}
}

func TestRequestStatusChange_ScheduledAnchorUsesDueDate(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Daily, 3, recurrence.AnchorScheduled), "2025-01-15"))
	c := newTestController(store, at("2025-01-16"))

	res, err := c.RequestStatusChange(context.Background(), actor, task, models.StatusCompleted, false)
	require.NoError(t, err)

	assert.Equal(t, Applied, res.Outcome)
	require.NotNil(t, res.Successor)
	assert.Equal(t, "2025-01-18", res.Successor.DueDate.Format(recurrence.DateLayout))
}

func TestRequestStatusChange_CompletionAnchor(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Weekly, 2, recurrence.AnchorCompletion), "2025-03-01"))
	c := newTestController(store, at("2025-03-10"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)

	require.NotNil(t, res.Successor)
	assert.Equal(t, "2025-03-24", res.Successor.DueDate.Format(recurrence.DateLayout))
}

func TestRequestStatusChange_AnchorModeChangesResult(t *testing.T) {
	results := map[recurrence.Anchor]string{}
	for _, anchor := range []recurrence.Anchor{recurrence.AnchorScheduled, recurrence.AnchorCompletion} {
		store := newMemStore()
		task := store.put(recurringTask(recurrence.New(recurrence.Daily, 3, anchor), "2025-01-15"))
		c := newTestController(store, at("2025-01-16"))

		res, err := c.Complete(context.Background(), actor, task, false)
		require.NoError(t, err)
		require.NotNil(t, res.Successor)
		results[anchor] = res.Successor.DueDate.Format(recurrence.DateLayout)
	}

	assert.Equal(t, "2025-01-18", results[recurrence.AnchorScheduled])
	assert.Equal(t, "2025-01-19", results[recurrence.AnchorCompletion])
}

func TestRequestStatusChange_SeriesEndsAtEndDate(t *testing.T) {
	rule := recurrence.New(recurrence.Monthly, 1, recurrence.AnchorScheduled)
	rule.EndDate = dueOn("2025-05-01")

	store := newMemStore()
	task := store.put(recurringTask(rule, "2025-04-20"))
	c := newTestController(store, at("2025-04-20"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)

	assert.Equal(t, Applied, res.Outcome)
	assert.Nil(t, res.Successor)
	assert.True(t, res.SeriesEnded)
	assert.Equal(t, 0, store.creates)
	assert.Len(t, store.all(), 1)
	assert.Equal(t, models.StatusCompleted, store.get(task.ID).Status)
}

func TestRequestStatusChange_HeldCompletionNeedsConfirmation(t *testing.T) {
	rule := recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled)
	base := recurringTask(rule, "2025-02-03")
	base.Subtasks = []models.Subtask{
		{ID: 1, Title: "collect timesheets"},
		{ID: 2, Title: "approve"},
		{ID: 3, Title: "notify", Completed: true},
	}

	store := newMemStore()
	task := store.put(base)
	before, err := json.Marshal(task)
	require.NoError(t, err)

	c := newTestController(store, at("2025-02-03"))

	res, err := c.RequestStatusChange(context.Background(), actor, task, models.StatusCompleted, false)
	require.NoError(t, err)
	assert.Equal(t, ConfirmationRequired, res.Outcome)
	assert.Equal(t, 2, res.OpenSubtasks)
	assert.Nil(t, res.Successor)
	assert.Equal(t, 0, store.updates)
	assert.Equal(t, 0, store.creates)

	after, err := json.Marshal(res.Task)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	stored, err := json.Marshal(store.get(task.ID))
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(stored))

	res, err = c.RequestStatusChange(context.Background(), actor, task, models.StatusCompleted, true)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, models.StatusCompleted, res.Task.Status)
	require.NotNil(t, res.Task.CompletedAt)
	assert.Equal(t, at("2025-02-03"), *res.Task.CompletedAt)
	assert.Equal(t, actor, res.Task.CompletedBy)
	require.NotNil(t, res.Successor)
	assert.Equal(t, "2025-02-04", res.Successor.DueDate.Format(recurrence.DateLayout))
	assert.Len(t, res.Task.Subtasks, 3)
}

func TestRequestStatusChange_NoSubtasksProceeds(t *testing.T) {
	store := newMemStore()
	task := store.put(models.Task{Title: "call client", Status: models.StatusInProgress})
	c := newTestController(store, at("2025-02-03"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Nil(t, res.Successor)
	assert.False(t, res.SeriesEnded)
	assert.Equal(t, models.StatusCompleted, store.get(task.ID).Status)
}

func TestRequestStatusChange_NonTerminalIgnoresSubtasks(t *testing.T) {
	store := newMemStore()
	task := store.put(models.Task{
		Title:    "prepare return",
		Status:   models.StatusTodo,
		Subtasks: []models.Subtask{{Title: "gather receipts"}},
	})
	c := newTestController(store, at("2025-02-03"))

	res, err := c.RequestStatusChange(context.Background(), actor, task, models.StatusBlocked, false)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, models.StatusBlocked, res.Task.Status)
	assert.Nil(t, res.Task.CompletedAt)
}

func TestRequestStatusChange_ReopenClearsCompletion(t *testing.T) {
	store := newMemStore()
	completedAt := at("2025-01-10")
	task := store.put(models.Task{
		Title:       "send invoice",
		Status:      models.StatusCompleted,
		CompletedAt: &completedAt,
		CompletedBy: actor,
		Recurrence:  ptrRule(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled)),
		DueDate:     dueOn("2025-01-10"),
		Subtasks:    []models.Subtask{{Title: "open"}},
	})
	c := newTestController(store, at("2025-01-11"))

	res, err := c.RequestStatusChange(context.Background(), actor, task, models.StatusTodo, false)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Nil(t, res.Task.CompletedAt)
	assert.Empty(t, res.Task.CompletedBy)
	assert.Nil(t, res.Successor)
	assert.Equal(t, 0, store.creates)
}

func TestRequestStatusChange_SameStatusIsNoop(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01"))
	task.Status = models.StatusCompleted
	c := newTestController(store, at("2025-01-02"))

	res, err := c.Complete(context.Background(), actor, task, true)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Nil(t, res.Successor)
	assert.Equal(t, 0, store.updates)
}

func TestRequestStatusChange_UnknownStatus(t *testing.T) {
	store := newMemStore()
	task := store.put(models.Task{Title: "x", Status: models.StatusTodo})
	c := newTestController(store, at("2025-01-02"))

	res, err := c.RequestStatusChange(context.Background(), actor, task, "Done", false)
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, task.Status, res.Task.Status)
	assert.Equal(t, 0, store.updates)
}

func TestRequestStatusChange_SuccessorCopiesDefinition(t *testing.T) {
	rule := recurrence.New(recurrence.Weekly, 1, recurrence.AnchorScheduled)
	rule.WeekDays = []time.Weekday{time.Monday, time.Thursday}
	base := recurringTask(rule, "2025-03-10")
	base.Subtasks = []models.Subtask{{Title: "done already", Completed: true}}
	base.Comments = []models.Comment{{Content: "hi"}}

	store := newMemStore()
	task := store.put(base)
	c := newTestController(store, at("2025-03-10"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	s := res.Successor
	require.NotNil(t, s)

	assert.NotEqual(t, task.ID, s.ID)
	assert.Equal(t, task.Title, s.Title)
	assert.Equal(t, task.Description, s.Description)
	assert.Equal(t, task.Assignee, s.Assignee)
	assert.Equal(t, task.Priority, s.Priority)
	assert.Equal(t, task.ProjectID, s.ProjectID)
	assert.Equal(t, models.StatusTodo, s.Status)
	assert.Equal(t, "2025-03-13", s.DueDate.Format(recurrence.DateLayout))
	assert.Nil(t, s.CompletedAt)
	assert.Empty(t, s.Subtasks)
	assert.Empty(t, s.Comments)
	assert.Equal(t, actor, s.CreatedBy)
	require.NotNil(t, s.Recurrence)
	assert.True(t, rule.Equal(*s.Recurrence))

	// The successor's rule is its own copy.
	s.Recurrence.WeekDays[0] = time.Sunday
	assert.Equal(t, time.Monday, store.get(task.ID).Recurrence.WeekDays[0])
}

func TestRequestStatusChange_SeriesID(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01"))
	c := newTestController(store, at("2025-01-01"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	assert.Equal(t, "series-1", res.Task.SeriesID)
	assert.Equal(t, "series-1", res.Successor.SeriesID)
	assert.Equal(t, "series-1", store.get(task.ID).SeriesID)

	c.NewSeriesID = func() string { return "series-2" }
	res, err = c.Complete(context.Background(), actor, *res.Successor, false)
	require.NoError(t, err)
	assert.Equal(t, "series-1", res.Successor.SeriesID)
}

func TestRequestStatusChange_ScheduledAnchorWithoutDueDate(t *testing.T) {
	store := newMemStore()
	task := recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01")
	task.DueDate = nil
	task = store.put(task)
	c := newTestController(store, at("2025-01-01"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	assert.True(t, res.SeriesEnded)
	assert.Nil(t, res.Successor)
}

func TestRequestStatusChange_BrokenRuleEndsSeries(t *testing.T) {
	bad := "31-31-2025"
	rule := recurrence.Fields{IsRecurring: true, Pattern: "daily", Interval: 1, EndDate: &bad}.Rule()

	store := newMemStore()
	task := recurringTask(*rule, "2025-01-01")
	task = store.put(task)
	c := newTestController(store, at("2025-01-01"))

	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.True(t, res.SeriesEnded)
}

func TestRequestStatusChange_RollsBackWhenSuccessorFails(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01"))
	store.failCreate = true
	c := newTestController(store, at("2025-01-01"))

	res, err := c.Complete(context.Background(), actor, task, false)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, task.Status, res.Task.Status)
	assert.Nil(t, res.Successor)

	stored := store.get(task.ID)
	assert.Equal(t, models.StatusTodo, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	assert.Empty(t, stored.SeriesID)
}

func TestRequestStatusChange_TransactionalStoreAppliesNothingOnFailure(t *testing.T) {
	mem := newMemStore()
	task := mem.put(recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01"))
	mem.failCreate = true
	c := newTestController(txStore{mem}, at("2025-01-01"))

	_, err := c.Complete(context.Background(), actor, task, false)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, models.StatusTodo, mem.get(task.ID).Status)
	assert.Len(t, mem.all(), 1)

	mem.failCreate = false
	res, err := c.Complete(context.Background(), actor, task, false)
	require.NoError(t, err)
	require.NotNil(t, res.Successor)
	assert.Len(t, mem.all(), 2)
}

func TestRequestStatusChange_UpdateFailure(t *testing.T) {
	store := newMemStore()
	task := store.put(recurringTask(recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled), "2025-01-01"))
	store.failUpdate = true
	c := newTestController(store, at("2025-01-01"))

	_, err := c.Complete(context.Background(), actor, task, false)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 0, store.creates)
}

func ptrRule(r recurrence.Rule) *recurrence.Rule { return &r }
