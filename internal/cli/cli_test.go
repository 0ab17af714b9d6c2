package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
)

type harness struct {
	t   *testing.T
	dir string
	now time.Time
}

func newHarness(t *testing.T) *harness {
	t.Setenv("CADENCE_ACTOR", "alex")
	return &harness{
		t:   t,
		dir: t.TempDir(),
		now: time.Date(2025, 2, 3, 9, 0, 0, 0, time.Local),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root, a := newRoot("test")
	a.newController = func(a *app) *lifecycle.Controller {
		c := defaultController(a)
		c.Clock = lifecycle.NewFixedClock(h.now)
		return c
	}

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(h.dir, "config.yaml"),
		"--db", filepath.Join(h.dir, "cadence.db"),
	}, args...))

	err := root.ExecuteContext(context.Background())
	require.NoError(h.t, a.close())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestRecurringTaskLifecycle(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("project", "add", "Clients"), "Created project #1 Clients")

	out := h.mustRun("task", "add", "--project", "1", "--due", "2025-01-31", "--repeat", "monthly", "--day", "31", "Close", "books")
	assert.Contains(t, out, "Created task #1 Close books")
	assert.Contains(t, out, "Repeats on the 31st every month")

	assert.Contains(t, h.mustRun("subtask", "add", "1", "Reconcile", "bank"), "Added subtask #1 to task #1")

	out = h.mustRun("task", "done", "1")
	assert.Contains(t, out, "Task #1 has 1 open subtask(s)")

	out = h.mustRun("task", "done", "1", "--yes")
	assert.Contains(t, out, "Task #1 is now Completed")
	assert.Contains(t, out, "Next occurrence #2 due 2025-02-28")

	out = h.mustRun("task", "done", "1")
	assert.Contains(t, out, "already Completed")

	out = h.mustRun("task", "list")
	assert.Contains(t, out, "2025-02-28")
	assert.NotContains(t, out, "2025-01-31")

	out = h.mustRun("task", "show", "1")
	assert.Contains(t, out, "by alex")
	assert.Contains(t, out, "[ ] Reconcile bank")

	out = h.mustRun("series", "show", "2")
	assert.Contains(t, out, "2025-01-31")
	assert.Contains(t, out, "2025-02-28")

	out = h.mustRun("recur", "preview", "2", "-n", "2")
	assert.Contains(t, out, "2025-03-31")
	assert.Contains(t, out, "2025-04-30")

	out = h.mustRun("series", "stop", "2")
	assert.Contains(t, out, "1 open task(s) no longer repeat")

	out = h.mustRun("task", "done", "2")
	assert.Contains(t, out, "Task #2 is now Completed")
	assert.NotContains(t, out, "Next occurrence")

	out = h.mustRun("task", "export", "--all", "--format", "json")
	var records []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.True(t, records[0].IsRecurring)
	assert.Equal(t, "completed", records[0].Status)
	assert.NotEmpty(t, records[0].SeriesID)
	assert.Equal(t, records[0].SeriesID, records[1].SeriesID)
	assert.False(t, records[1].IsRecurring)
}

func TestTaskStatus_Reopen(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Home")
	h.mustRun("task", "add", "-p", "1", "Fix fence")

	assert.Contains(t, h.mustRun("task", "status", "1", "in-progress"), "is now In Progress")
	assert.Contains(t, h.mustRun("task", "status", "1", "completed"), "is now Completed")
	assert.Contains(t, h.mustRun("task", "status", "1", "todo"), "is now To Do")

	out := h.mustRun("task", "show", "1")
	assert.NotContains(t, out, "Done:")

	_, err := h.run("task", "status", "1", "archived")
	assert.ErrorIs(t, err, lifecycle.ErrUnknownStatus)
}

func TestRecurSetAndClear(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Home")
	h.mustRun("task", "add", "-p", "1", "--due", "2025-02-03", "Water plants")

	out := h.mustRun("recur", "set", "1", "weekly", "--on", "mon,thu")
	assert.Contains(t, out, "Repeats on Monday and Thursday every week")

	out = h.mustRun("recur", "preview", "1", "-n", "3")
	assert.Contains(t, out, "Thu 2025-02-06")
	assert.Contains(t, out, "Mon 2025-02-10")
	assert.Contains(t, out, "Thu 2025-02-13")

	assert.Contains(t, h.mustRun("recur", "clear", "1"), "no longer repeats")
	assert.Contains(t, h.mustRun("recur", "clear", "1"), "does not repeat")

	_, err := h.run("recur", "set", "1", "fortnightly")
	assert.Error(t, err)
}

func TestAgenda(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Home")
	h.mustRun("task", "add", "-p", "1", "--due", "today", "Take out bins")
	h.mustRun("task", "add", "-p", "1", "--due", "tomorrow", "Call plumber")

	out := h.mustRun("agenda")
	assert.Contains(t, out, "Today (1)")
	assert.Contains(t, out, "Take out bins")
	assert.Contains(t, out, "Upcoming (1)")
	assert.Contains(t, out, "Call plumber")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "show")
	assert.Contains(t, out, "weekly_by_weekdays: true")
	assert.Contains(t, out, "actor: alex")

	assert.Contains(t, h.mustRun("config", "init"), "Wrote")
	_, err := os.Stat(filepath.Join(h.dir, "config.yaml"))
	require.NoError(t, err)

	_, err = h.run("config", "init")
	assert.ErrorIs(t, err, os.ErrExist)
	h.mustRun("config", "init", "--force")

	_, err = os.Stat(filepath.Join(h.dir, "cadence.db"))
	assert.True(t, os.IsNotExist(err), "config commands must not create the database")
}

func TestProjectList(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("project", "list"), "No projects")

	h.mustRun("project", "add", "Clients")
	h.mustRun("task", "add", "-p", "1", "--due", "2025-03-01", "Invoice")

	out := h.mustRun("project", "list")
	assert.Contains(t, out, "Clients")
	assert.Contains(t, out, "2025-03-01")
}

func TestTaskAdd_UnknownProject(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("task", "add", "-p", "9", "Orphan")
	assert.Error(t, err)
}
