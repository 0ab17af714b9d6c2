package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders a rule as a one-line human summary. due supplies the
// weekday and day of month when the rule does not name them.
func Describe(r Rule, due time.Time) string {
	if r.Broken() {
		return "Repeats (invalid rule)"
	}
	r = r.Normalize()

	var s string
	if r.Anchor == AnchorCompletion {
		s = describeAfterCompletion(r)
	} else {
		s = describeScheduled(r, due)
	}

	if r.EndDate != nil {
		s += ", until " + r.EndDate.Format("Jan 2, 2006")
	}
	return s
}

func describeAfterCompletion(r Rule) string {
	var unit string
	switch r.Pattern {
	case Daily, Custom:
		unit = "day"
	case Weekly:
		unit = "week"
	case WeekdaysOnly:
		unit = "weekday"
	case Monthly:
		unit = "month"
	case Yearly:
		unit = "year"
	default:
		return "Repeats after completion"
	}
	return fmt.Sprintf("Repeats %s after completion", plural(r.Interval, unit))
}

func describeScheduled(r Rule, due time.Time) string {
	if due.IsZero() {
		due = time.Now()
	}
	switch r.Pattern {
	case Daily, Custom:
		if r.Interval == 1 {
			return "Repeats every day"
		}
		return fmt.Sprintf("Repeats every %d days", r.Interval)
	case WeekdaysOnly:
		return "Repeats every weekday (Monday-Friday)"
	case Weekly:
		days := r.WeekDays
		if len(days) == 0 {
			days = []time.Weekday{due.Weekday()}
		}
		names := make([]string, len(days))
		for i, d := range days {
			names[i] = d.String()
		}
		return "Repeats on " + joinList(names) + every(r.Interval, "week")
	case Monthly:
		return "Repeats on the " + ordinal(targetDay(r, due)) + every(r.Interval, "month")
	case Yearly:
		return "Repeats on " + due.Month().String() + " " + ordinal(targetDay(r, due)) + every(r.Interval, "year")
	}
	return "Repeats"
}

func every(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf(" every %d %ss", n, unit)
	}
	return " every " + unit
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func ordinal(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
