// Package recurrence models repeating task schedules and computes the due
// date of the next occurrence.
package recurrence

import (
	"slices"
	"time"
)

// Pattern selects the unit a rule repeats in
type Pattern string

const (
	Daily        Pattern = "daily"
	Weekly       Pattern = "weekly"
	WeekdaysOnly Pattern = "weekdaysOnly"
	Monthly      Pattern = "monthly"
	Yearly       Pattern = "yearly"
	Custom       Pattern = "custom"
)

// Valid reports whether p is a known pattern
func (p Pattern) Valid() bool {
	switch p {
	case Daily, Weekly, WeekdaysOnly, Monthly, Yearly, Custom:
		return true
	}
	return false
}

// Anchor selects the base date for the next occurrence
type Anchor string

const (
	// AnchorScheduled bases the next occurrence on the completed task's due date.
	AnchorScheduled Anchor = "scheduled"
	// AnchorCompletion bases it on the day the task was marked complete.
	AnchorCompletion Anchor = "completed"
)

// Rule describes how a task repeats. The zero value is not usable; build
// rules with New or Fields.Rule.
type Rule struct {
	Pattern    Pattern
	Interval   int
	Anchor     Anchor
	StartDate  *time.Time
	EndDate    *time.Time
	WeekDays   []time.Weekday
	DayOfMonth int // 0 = not set

	broken bool
	// unparsed start / end text, written back as-is so a broken rule stays broken
	badStart, badEnd string
}

// New returns a normalized rule
func New(pattern Pattern, interval int, anchor Anchor) Rule {
	r := Rule{Pattern: pattern, Interval: interval, Anchor: anchor}
	return r.Normalize()
}

// Normalize coerces out-of-range values instead of rejecting them: interval
// below 1 becomes 1, day of month is clamped into [1,31], invalid weekdays are
// dropped. Dates are truncated to local midnight.
func (r Rule) Normalize() Rule {
	if r.Interval < 1 {
		r.Interval = 1
	}
	if r.DayOfMonth < 0 {
		r.DayOfMonth = 1
	}
	if r.DayOfMonth > 31 {
		r.DayOfMonth = 31
	}
	if r.Anchor != AnchorCompletion {
		r.Anchor = AnchorScheduled
	}
	if !r.Pattern.Valid() {
		r.broken = true
	}
	if r.StartDate != nil {
		d := Day(*r.StartDate)
		r.StartDate = &d
	}
	if r.EndDate != nil {
		d := Day(*r.EndDate)
		r.EndDate = &d
	}

	days := make([]time.Weekday, 0, len(r.WeekDays))
	for _, wd := range r.WeekDays {
		if wd < time.Sunday || wd > time.Saturday || slices.Contains(days, wd) {
			continue
		}
		days = append(days, wd)
	}
	slices.Sort(days)
	r.WeekDays = days
	return r
}

// WithDefaultsFrom fills the weekday and day-of-month targets from the due
// date when a weekly or monthly rule was created without them.
func (r Rule) WithDefaultsFrom(due time.Time) Rule {
	if due.IsZero() {
		return r
	}
	switch r.Pattern {
	case Weekly:
		if len(r.WeekDays) == 0 {
			r.WeekDays = []time.Weekday{due.Weekday()}
		}
	case Monthly:
		if r.DayOfMonth == 0 {
			r.DayOfMonth = due.Day()
		}
	}
	return r
}

// Broken reports whether the rule was built from unusable data. A broken
// rule never produces another occurrence.
func (r Rule) Broken() bool {
	return r.broken
}

// Exhausted reports whether the rule can never produce an occurrence
// because its end date precedes its start date.
func (r Rule) Exhausted() bool {
	return r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate)
}

// Equal compares two rules field by field
func (r Rule) Equal(o Rule) bool {
	return r.Pattern == o.Pattern &&
		r.Interval == o.Interval &&
		r.Anchor == o.Anchor &&
		equalDate(r.StartDate, o.StartDate) &&
		equalDate(r.EndDate, o.EndDate) &&
		slices.Equal(r.WeekDays, o.WeekDays) &&
		r.DayOfMonth == o.DayOfMonth &&
		r.broken == o.broken &&
		r.badStart == o.badStart &&
		r.badEnd == o.badEnd
}

// Clone returns a deep copy
func (r Rule) Clone() Rule {
	c := r
	if r.StartDate != nil {
		d := *r.StartDate
		c.StartDate = &d
	}
	if r.EndDate != nil {
		d := *r.EndDate
		c.EndDate = &d
	}
	c.WeekDays = slices.Clone(r.WeekDays)
	return c
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Day truncates t to midnight of its calendar day in the local zone.
func Day(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
