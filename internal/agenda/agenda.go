// Package agenda summarizes what is overdue, due today and coming up.
package agenda

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

// Lister is the part of the task store the agenda reads
type Lister interface {
	ListTasks(ctx context.Context, f db.TaskFilter) ([]models.Task, error)
}

// Entry is one open task in the digest
type Entry struct {
	Task models.Task
	// Days is the due date relative to the digest date; negative is overdue.
	Days int
	// Repeats describes the recurrence, empty for one-off tasks.
	Repeats string
	// Then is the occurrence after this one, when the rule yields one.
	Then *time.Time
}

// Digest groups open tasks by due date
type Digest struct {
	Date     time.Time
	Overdue  []Entry
	Today    []Entry
	Upcoming []Entry
}

// Empty reports whether nothing is due within the horizon
func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.Today) == 0 && len(d.Upcoming) == 0
}

// Builder assembles digests
type Builder struct {
	Tasks     Lister
	Statuses  lifecycle.StatusSet
	Scheduler recurrence.Scheduler
	// HorizonDays is how many days after today count as upcoming
	HorizonDays int
}

// Build collects every non-terminal task due on or before now + horizon
func (b Builder) Build(ctx context.Context, now time.Time) (Digest, error) {
	today := recurrence.Day(now)
	through := today.AddDate(0, 0, b.HorizonDays)

	tasks, err := b.Tasks.ListTasks(ctx, db.TaskFilter{
		ExcludeStatus: b.Statuses.Terminal(),
		DueOnOrBefore: &through,
	})
	if err != nil {
		return Digest{}, fmt.Errorf("list due tasks: %w", err)
	}

	d := Digest{Date: today}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		e := Entry{Task: t, Days: daysBetween(today, *t.DueDate)}
		if t.Recurrence != nil {
			e.Repeats = recurrence.Describe(*t.Recurrence, *t.DueDate)
			if t.Recurrence.Anchor != recurrence.AnchorCompletion {
				if next, ok := b.Scheduler.NextDueDate(*t.Recurrence, *t.DueDate); ok {
					e.Then = &next
				}
			}
		}
		switch {
		case e.Days < 0:
			d.Overdue = append(d.Overdue, e)
		case e.Days == 0:
			d.Today = append(d.Today, e)
		default:
			d.Upcoming = append(d.Upcoming, e)
		}
	}
	return d, nil
}

// daysBetween counts calendar days from a to b, ignoring DST shifts
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Render writes d as plain text
func Render(w io.Writer, d Digest, statuses lifecycle.StatusSet) error {
	if _, err := fmt.Fprintf(w, "Agenda for %s\n", d.Date.Format("Mon Jan 2, 2006")); err != nil {
		return err
	}
	if d.Empty() {
		_, err := fmt.Fprintln(w, "\nNothing due.")
		return err
	}

	sections := []struct {
		title   string
		entries []Entry
	}{
		{"Overdue", d.Overdue},
		{"Today", d.Today},
		{"Upcoming", d.Upcoming},
	}
	for _, s := range sections {
		if len(s.entries) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s (%d)\n", s.title, len(s.entries)); err != nil {
			return err
		}
		for _, e := range s.entries {
			if _, err := fmt.Fprintf(w, "  #%-4d %s  %-30s [%s]%s\n",
				e.Task.ID, e.Task.DueDate.Format(recurrence.DateLayout), e.Task.Title,
				statuses.Label(e.Task.Status), when(e.Days)); err != nil {
				return err
			}
			if e.Repeats != "" {
				line := "         " + e.Repeats
				if e.Then != nil {
					line += ", then " + e.Then.Format(recurrence.DateLayout)
				}
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func when(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf(" %d days late", -days)
	case days == -1:
		return " 1 day late"
	case days == 1:
		return " tomorrow"
	case days > 1:
		return fmt.Sprintf(" in %d days", days)
	}
	return ""
}
