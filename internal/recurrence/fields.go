package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Fields is the flat, serializable form of a task's recurrence settings.
type Fields struct {
	IsRecurring bool    `json:"isRecurring" yaml:"isRecurring"`
	Pattern     string  `json:"recurrencePattern,omitempty" yaml:"recurrencePattern,omitempty"`
	Interval    int     `json:"recurrenceInterval,omitempty" yaml:"recurrenceInterval,omitempty"`
	BaseDate    string  `json:"recurrenceBaseDate,omitempty" yaml:"recurrenceBaseDate,omitempty"`
	StartDate   *string `json:"recurrenceStartDate,omitempty" yaml:"recurrenceStartDate,omitempty"`
	EndDate     *string `json:"recurrenceEndDate,omitempty" yaml:"recurrenceEndDate,omitempty"`
	WeekDays    []int   `json:"recurrenceWeekDays,omitempty" yaml:"recurrenceWeekDays,omitempty"`
	DayOfMonth  *int    `json:"recurrenceDayOfMonth,omitempty" yaml:"recurrenceDayOfMonth,omitempty"`
}

// FieldsOf flattens r. A nil rule yields non-recurring fields.
func FieldsOf(r *Rule) Fields {
	if r == nil {
		return Fields{}
	}
	f := Fields{
		IsRecurring: true,
		Pattern:     string(r.Pattern),
		Interval:    r.Interval,
		BaseDate:    string(r.Anchor),
	}
	f.StartDate = formatDate(r.StartDate, r.badStart)
	f.EndDate = formatDate(r.EndDate, r.badEnd)
	for _, d := range r.WeekDays {
		f.WeekDays = append(f.WeekDays, int(d))
	}
	if r.DayOfMonth > 0 {
		dom := r.DayOfMonth
		f.DayOfMonth = &dom
	}
	return f
}

// formatDate renders d, falling back to the text that failed to parse
func formatDate(d *time.Time, unparsed string) *string {
	var s string
	switch {
	case d != nil:
		s = d.Format(DateLayout)
	case unparsed != "":
		s = unparsed
	default:
		return nil
	}
	return &s
}

// Rule rebuilds the rule described by f, or nil when f is not recurring.
// Unparseable dates or an unknown pattern produce a broken rule rather than
// an error so that bad data stops the series instead of failing the caller.
// Blank dates count as unset.
func (f Fields) Rule() *Rule {
	if !f.IsRecurring {
		return nil
	}
	r := Rule{
		Pattern:  Pattern(f.Pattern),
		Interval: f.Interval,
		Anchor:   Anchor(f.BaseDate),
	}
	if f.Pattern == "weekdays" {
		r.Pattern = WeekdaysOnly
	}
	if f.BaseDate == "completion" {
		r.Anchor = AnchorCompletion
	}
	if f.StartDate != nil && strings.TrimSpace(*f.StartDate) != "" {
		d, err := ParseDate(*f.StartDate)
		if err != nil {
			r.broken, r.badStart = true, *f.StartDate
		} else {
			r.StartDate = &d
		}
	}
	if f.EndDate != nil && strings.TrimSpace(*f.EndDate) != "" {
		d, err := ParseDate(*f.EndDate)
		if err != nil {
			r.broken, r.badEnd = true, *f.EndDate
		} else {
			r.EndDate = &d
		}
	}
	for _, d := range f.WeekDays {
		r.WeekDays = append(r.WeekDays, time.Weekday(d))
	}
	if f.DayOfMonth != nil {
		r.DayOfMonth = *f.DayOfMonth
		if r.DayOfMonth == 0 {
			r.DayOfMonth = 1
		}
	}

	r = r.Normalize()
	return &r
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// local calendar day it names.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// ParseDue parses a due date as typed by a user: empty for none, "today",
// "tomorrow", or anything ParseDate accepts.
func ParseDue(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d := Day(now)
	switch strings.ToLower(s) {
	case "today":
	case "tomorrow":
		d = d.AddDate(0, 0, 1)
	default:
		var err error
		if d, err = ParseDate(s); err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", s, err)
		}
	}
	return &d, nil
}

// FormatWeekDays encodes weekdays as a comma separated list of indices
func FormatWeekDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// ParseWeekDays decodes FormatWeekDays output, skipping entries that are
// not integers.
func ParseWeekDays(s string) []int {
	var days []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		days = append(days, n)
	}
	return days
}

// ParseWeekDayNames accepts names ("mon", "Tuesday") or indices ("1").
func ParseWeekDayNames(items []string) ([]time.Weekday, bool) {
	var out []time.Weekday
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if n, err := strconv.Atoi(item); err == nil {
			out = append(out, time.Weekday(n))
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if item == name || (len(item) >= 3 && strings.HasPrefix(name, item)) {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}
