package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := recurrence.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func seedProject(t *testing.T, db *DB) *models.Project {
	t.Helper()
	p, err := db.CreateProject(context.Background(), "Bookkeeping", "monthly clients")
	require.NoError(t, err)
	return p
}

func TestTasks_RoundTripRecurrence(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	rule := recurrence.New(recurrence.Weekly, 2, recurrence.AnchorCompletion)
	rule.WeekDays = []time.Weekday{time.Monday, time.Thursday}
	rule.EndDate = day(t, "2025-12-31")
	rule = rule.Normalize()

	created, err := db.CreateTask(ctx, models.Task{
		ProjectID:  p.ID,
		Title:      "Reconcile bank feed",
		Status:     models.StatusTodo,
		DueDate:    day(t, "2025-03-10"),
		CreatedBy:  "alex",
		Recurrence: &rule,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reconcile bank feed", got.Title)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Equal(t, "2025-03-10", got.DueDate.Format(recurrence.DateLayout))
	assert.Equal(t, "alex", got.CreatedBy)
	require.NotNil(t, got.Recurrence)
	assert.True(t, rule.Equal(*got.Recurrence))
	assert.Nil(t, got.CompletedAt)
}

func TestTasks_NonRecurringHasNoRule(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	created, err := db.CreateTask(ctx, models.Task{ProjectID: p.ID, Title: "One-off", Status: models.StatusTodo})
	require.NoError(t, err)
	assert.Nil(t, created.Recurrence)
	assert.Nil(t, created.DueDate)
}

func TestTasks_BrokenRuleSurvivesUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	rule := recurrence.New(recurrence.Daily, 1, recurrence.AnchorScheduled)
	created, err := db.CreateTask(ctx, models.Task{
		ProjectID: p.ID, Title: "Payroll", Status: models.StatusTodo,
		DueDate: day(t, "2025-03-03"), Recurrence: &rule,
	})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE tasks SET recurrence_end_date = 'garbage' WHERE id = ?`, created.ID)
	require.NoError(t, err)

	loaded, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Recurrence)
	require.True(t, loaded.Recurrence.Broken())

	loaded.Title = "Payroll run"
	require.NoError(t, db.UpdateTask(ctx, *loaded))

	again, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Payroll run", again.Title)
	require.NotNil(t, again.Recurrence)
	assert.True(t, again.Recurrence.Broken())

	var end string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT recurrence_end_date FROM tasks WHERE id = ?`, created.ID).Scan(&end))
	assert.Equal(t, "garbage", end)

	// complete, reopen, complete: the series never continues
	c := lifecycle.NewController(db, lifecycle.DefaultStatuses(), recurrence.Scheduler{WeeklyByWeekDays: true})
	c.Clock = lifecycle.NewFixedClock(day(t, "2025-03-03").Add(9 * time.Hour))
	c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for i := 0; i < 2; i++ {
		cur, err := db.GetTask(ctx, created.ID)
		require.NoError(t, err)
		res, err := c.Complete(ctx, "alex", *cur, false)
		require.NoError(t, err)
		assert.Nil(t, res.Successor)
		assert.True(t, res.SeriesEnded)

		_, err = c.RequestStatusChange(ctx, "alex", res.Task, models.StatusTodo, false)
		require.NoError(t, err)
	}

	tasks, err := db.ListTasks(ctx, TaskFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestTasks_UpdateMissing(t *testing.T) {
	db := openTestDB(t)
	err := db.UpdateTask(context.Background(), models.Task{ID: 99, Title: "ghost", Status: models.StatusTodo})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetTask(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasks_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	for _, tk := range []models.Task{
		{ProjectID: p.ID, Title: "Later", Status: models.StatusTodo, DueDate: day(t, "2025-04-01")},
		{ProjectID: p.ID, Title: "Undated", Status: models.StatusTodo},
		{ProjectID: p.ID, Title: "Soon", Status: models.StatusInProgress, DueDate: day(t, "2025-03-01"), Assignee: "sam"},
		{ProjectID: p.ID, Title: "Done", Status: models.StatusCompleted, DueDate: day(t, "2025-02-01")},
	} {
		_, err := db.CreateTask(ctx, tk)
		require.NoError(t, err)
	}

	all, err := db.ListTasks(ctx, TaskFilter{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"Done", "Soon", "Later", "Undated"}, titles(all))

	open, err := db.ListTasks(ctx, TaskFilter{ProjectID: p.ID, ExcludeStatus: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soon", "Later", "Undated"}, titles(open))

	due, err := db.ListTasks(ctx, TaskFilter{ExcludeStatus: models.StatusCompleted, DueOnOrBefore: day(t, "2025-03-15")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soon"}, titles(due))

	mine, err := db.ListTasks(ctx, TaskFilter{Assignee: "sam"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soon"}, titles(mine))

	found, err := db.ListTasks(ctx, TaskFilter{Search: "late"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Later"}, titles(found))
}

func TestSubtasks(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	task, err := db.CreateTask(ctx, models.Task{ProjectID: p.ID, Title: "Payroll", Status: models.StatusTodo})
	require.NoError(t, err)

	first, err := db.AddSubtask(ctx, task.ID, "Collect timesheets")
	require.NoError(t, err)
	second, err := db.AddSubtask(ctx, task.ID, "Submit")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	require.NoError(t, db.SetSubtaskCompleted(ctx, first.ID, true))
	assert.ErrorIs(t, db.SetSubtaskCompleted(ctx, 404, true), ErrNotFound)

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 2)
	assert.True(t, got.Subtasks[0].Completed)
	assert.Equal(t, 1, got.IncompleteSubtasks())

	require.NoError(t, db.DeleteTask(ctx, task.ID))
	subs, err := db.ListSubtasks(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)
	task, err := db.CreateTask(ctx, models.Task{ProjectID: p.ID, Title: "Payroll", Status: models.StatusTodo})
	require.NoError(t, err)

	c, err := db.AddComment(ctx, task.ID, "  waiting on client  ")
	require.NoError(t, err)
	assert.Equal(t, "waiting on client", c.Content)

	list, err := db.ListComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, db.DeleteComment(ctx, c.ID))
	list, err = db.ListComments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjects_Summary(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)
	empty, err := db.CreateProject(ctx, "Empty", "")
	require.NoError(t, err)

	rule := recurrence.New(recurrence.Monthly, 1, recurrence.AnchorScheduled)
	for _, tk := range []models.Task{
		{ProjectID: p.ID, Title: "A", Status: models.StatusTodo, DueDate: day(t, "2025-05-01"), Recurrence: &rule},
		{ProjectID: p.ID, Title: "B", Status: models.StatusTodo, DueDate: day(t, "2025-04-15")},
		{ProjectID: p.ID, Title: "C", Status: models.StatusCompleted, DueDate: day(t, "2025-01-01")},
	} {
		_, err := db.CreateTask(ctx, tk)
		require.NoError(t, err)
	}

	projects, err := db.ListProjects(ctx, models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	byID := map[int64]ProjectSummary{}
	for _, s := range projects {
		byID[s.ID] = s
	}
	assert.Equal(t, 2, byID[p.ID].OpenTasks)
	assert.Equal(t, 1, byID[p.ID].Recurring)
	assert.Equal(t, "2025-04-15", byID[p.ID].NextDue)
	assert.Equal(t, 0, byID[empty.ID].OpenTasks)
	assert.Empty(t, byID[empty.ID].NextDue)

	require.NoError(t, db.UpdateProject(ctx, empty.ID, "Renamed", "x"))
	got, err := db.GetProject(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	require.NoError(t, db.DeleteProject(ctx, p.ID))
	left, err := db.ListTasks(ctx, TaskFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)
	task, err := db.CreateTask(ctx, models.Task{ProjectID: p.ID, Title: "Payroll", Status: models.StatusTodo})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.InTx(ctx, func(s lifecycle.Store) error {
		changed := *task
		changed.Status = models.StatusCompleted
		if err := s.UpdateTask(ctx, changed); err != nil {
			return err
		}
		if _, err := s.CreateTask(ctx, models.Task{ProjectID: p.ID, Title: "Payroll", Status: models.StatusTodo}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, got.Status)

	all, err := db.ListTasks(ctx, TaskFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestController_CompletesSeriesInSQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p := seedProject(t, db)

	rule := recurrence.New(recurrence.Monthly, 1, recurrence.AnchorScheduled)
	rule.DayOfMonth = 31
	task, err := db.CreateTask(ctx, models.Task{
		ProjectID:  p.ID,
		Title:      "Close the books",
		Status:     models.StatusInProgress,
		DueDate:    day(t, "2025-01-31"),
		Recurrence: &rule,
	})
	require.NoError(t, err)

	c := lifecycle.NewController(db, lifecycle.DefaultStatuses(), recurrence.Scheduler{WeeklyByWeekDays: true})
	c.Clock = lifecycle.NewFixedClock(day(t, "2025-02-02").Add(9 * time.Hour))
	c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	res, err := c.Complete(ctx, "alex", *task, false)
	require.NoError(t, err)
	require.Equal(t, lifecycle.Applied, res.Outcome)
	require.NotNil(t, res.Successor)

	done, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "alex", done.CompletedBy)
	require.NotNil(t, done.CompletedAt)
	assert.NotEmpty(t, done.SeriesID)

	next, err := db.GetTask(ctx, res.Successor.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", next.DueDate.Format(recurrence.DateLayout))
	assert.Equal(t, models.StatusTodo, next.Status)
	assert.Equal(t, done.SeriesID, next.SeriesID)

	series, err := db.ListSeries(ctx, done.SeriesID)
	require.NoError(t, err)
	assert.Len(t, series, 2)

	n, err := db.StopSeries(ctx, done.SeriesID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stopped, err := db.GetTask(ctx, next.ID)
	require.NoError(t, err)
	assert.Nil(t, stopped.Recurrence)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	v, err := db.GetSetting(ctx, "last_project")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, db.SetSetting(ctx, "last_project", "3"))
	require.NoError(t, db.SetSetting(ctx, "last_project", "4"))
	v, err = db.GetSetting(ctx, "last_project")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.Title
	}
	return out
}
