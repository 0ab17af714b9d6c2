package recurrence

import (
	"slices"
	"time"
)

// maxScan caps every day-by-day search. A week has seven candidates, so any
// scan that has not matched by then never will.
const maxScan = 7

// Scheduler computes occurrence dates. The zero value reproduces the
// original arithmetic: weekly rules ignore their weekdays and
// weekdays-only rules ignore their interval.
type Scheduler struct {
	// WeeklyByWeekDays makes weekly rules land on their selected weekdays
	// rather than on anchor + interval weeks.
	WeeklyByWeekDays bool
	// BusinessDayInterval makes weekdays-only rules advance Interval
	// business days instead of one.
	BusinessDayInterval bool
}

// NextDueDate returns the due date following anchor, or false when the
// series has ended or the rule is unusable.
func (s Scheduler) NextDueDate(r Rule, anchor time.Time) (time.Time, bool) {
	if r.Broken() || r.Exhausted() || anchor.IsZero() {
		return time.Time{}, false
	}
	r = r.Normalize()
	if r.Broken() {
		return time.Time{}, false
	}

	base := Day(anchor)
	var next time.Time
	ok := true

	switch r.Pattern {
	case Daily, Custom:
		next = base.AddDate(0, 0, r.Interval)
	case Weekly:
		if s.WeeklyByWeekDays && len(r.WeekDays) > 0 {
			next, ok = nextWeekDay(base, r.WeekDays, r.Interval)
		} else {
			next = base.AddDate(0, 0, 7*r.Interval)
		}
	case WeekdaysOnly:
		n := 1
		if s.BusinessDayInterval {
			n = r.Interval
		}
		next, ok = addBusinessDays(base, n)
	case Monthly:
		next = addMonthsClamped(base, r.Interval, targetDay(r, base))
	case Yearly:
		next = addMonthsClamped(base, 12*r.Interval, targetDay(r, base))
	default:
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// Preview lists up to n upcoming due dates, each computed from the previous
// one as if every occurrence were completed on schedule.
func (s Scheduler) Preview(r Rule, anchor time.Time, n int) []time.Time {
	var out []time.Time
	cur := anchor
	for i := 0; i < n; i++ {
		next, ok := s.NextDueDate(r, cur)
		if !ok {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}

// nextWeekDay finds the next selected weekday. With an interval of one that
// is the first one later in the anchor's week; otherwise, and when none is
// left this week, it is the first one in the week interval weeks ahead.
func nextWeekDay(base time.Time, days []time.Weekday, interval int) (time.Time, bool) {
	var d time.Time
	if interval == 1 {
		d = base
		for i := 0; i < maxScan; i++ {
			d = d.AddDate(0, 0, 1)
			if d.Weekday() == time.Sunday {
				break
			}
			if slices.Contains(days, d.Weekday()) {
				return d, true
			}
		}
	}

	weekStart := base.AddDate(0, 0, -int(base.Weekday())+7*interval)
	for i := 0; i < maxScan; i++ {
		d = weekStart.AddDate(0, 0, i)
		if slices.Contains(days, d.Weekday()) {
			return d, true
		}
	}
	return time.Time{}, false
}

func addBusinessDays(base time.Time, n int) (time.Time, bool) {
	d := base
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		skipped := 0
		for isWeekend(d) {
			if skipped == 2 {
				return time.Time{}, false
			}
			d = d.AddDate(0, 0, 1)
			skipped++
		}
	}
	return d, true
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

func targetDay(r Rule, base time.Time) int {
	if r.DayOfMonth > 0 {
		return r.DayOfMonth
	}
	return base.Day()
}

// addMonthsClamped moves base forward by months and lands on day, or on the
// last day of the target month when it is shorter.
func addMonthsClamped(base time.Time, months, day int) time.Time {
	first := time.Date(base.Year(), base.Month()+time.Month(months), 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(day, last), 0, 0, 0, 0, time.Local)
}
