package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/cadence/internal/recurrence"
)

// ruleFlags collects the recurrence options shared by task add and recur set
type ruleFlags struct {
	pattern         string
	every           int
	on              []string
	day             int
	afterCompletion bool
	from            string
	until           string
}

// register adds the flags to cmd. An empty patternFlag leaves the pattern
// to a positional argument.
func (f *ruleFlags) register(cmd *cobra.Command, patternFlag string) {
	fs := cmd.Flags()
	if patternFlag != "" {
		fs.StringVar(&f.pattern, patternFlag, "", "daily, weekly, weekdaysOnly, monthly, yearly or custom")
	}
	fs.IntVar(&f.every, "every", 1, "repeat every N units")
	fs.StringSliceVar(&f.on, "on", nil, "weekdays for weekly rules, e.g. mon,wed,fri")
	fs.IntVar(&f.day, "day", 0, "day of month for monthly and yearly rules")
	fs.BoolVar(&f.afterCompletion, "after-completion", false, "count from the completion date instead of the due date")
	fs.StringVar(&f.from, "from", "", "first date the rule applies (YYYY-MM-DD)")
	fs.StringVar(&f.until, "until", "", "last date an occurrence may fall on (YYYY-MM-DD)")
}

// rule builds the rule, or nil when no pattern was given. due fills in
// weekday and day-of-month defaults.
func (f *ruleFlags) rule(due *time.Time) (*recurrence.Rule, error) {
	if f.pattern == "" {
		return nil, nil
	}
	pattern := recurrence.Pattern(f.pattern)
	if strings.EqualFold(f.pattern, "weekdays") || strings.EqualFold(f.pattern, "weekdaysonly") {
		pattern = recurrence.WeekdaysOnly
	}
	if !pattern.Valid() {
		return nil, fmt.Errorf("unknown pattern %q", f.pattern)
	}

	anchor := recurrence.AnchorScheduled
	if f.afterCompletion {
		anchor = recurrence.AnchorCompletion
	}
	r := recurrence.New(pattern, f.every, anchor)

	if len(f.on) > 0 {
		days, ok := recurrence.ParseWeekDayNames(f.on)
		if !ok {
			return nil, fmt.Errorf("invalid weekdays %q", strings.Join(f.on, ","))
		}
		r.WeekDays = days
	}
	r.DayOfMonth = f.day

	if f.from != "" {
		d, err := recurrence.ParseDate(f.from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date: %w", err)
		}
		r.StartDate = &d
	}
	if f.until != "" {
		d, err := recurrence.ParseDate(f.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until date: %w", err)
		}
		r.EndDate = &d
	}

	r = r.Normalize()
	if due != nil {
		r = r.WithDefaultsFrom(*due)
	}
	return &r, nil
}

// parseDue parses an optional due date flag
func parseDue(s string) (*time.Time, error) {
	return recurrence.ParseDue(s, time.Now())
}
