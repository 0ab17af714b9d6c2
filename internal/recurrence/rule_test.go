package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CoercesOutOfRange(t *testing.T) {
	r := Rule{
		Pattern:    Weekly,
		Interval:   0,
		DayOfMonth: 45,
		WeekDays:   []time.Weekday{5, 1, 9, 1, -1},
	}.Normalize()

	assert.Equal(t, 1, r.Interval)
	assert.Equal(t, 31, r.DayOfMonth)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, r.WeekDays)
	assert.Equal(t, AnchorScheduled, r.Anchor)
	assert.False(t, r.Broken())

	neg := Rule{Pattern: Daily, Interval: -4, DayOfMonth: -2}.Normalize()
	assert.Equal(t, 1, neg.Interval)
	assert.Equal(t, 1, neg.DayOfMonth)
}

func TestWithDefaultsFrom(t *testing.T) {
	due := date("2025-03-13") // Thursday

	w := New(Weekly, 1, AnchorScheduled).WithDefaultsFrom(due)
	assert.Equal(t, []time.Weekday{time.Thursday}, w.WeekDays)

	m := New(Monthly, 1, AnchorScheduled).WithDefaultsFrom(due)
	assert.Equal(t, 13, m.DayOfMonth)

	keep := New(Monthly, 1, AnchorScheduled)
	keep.DayOfMonth = 2
	assert.Equal(t, 2, keep.WithDefaultsFrom(due).DayOfMonth)
}

func TestFields_RoundTrip(t *testing.T) {
	r := New(Weekly, 2, AnchorCompletion)
	r.StartDate = ptr(date("2025-01-01"))
	r.EndDate = ptr(date("2025-12-31"))
	r.WeekDays = []time.Weekday{time.Tuesday, time.Thursday}
	r = r.Normalize()

	back := FieldsOf(&r).Rule()
	require.NotNil(t, back)
	assert.True(t, r.Equal(*back))
}

func TestFields_BrokenRuleStaysBroken(t *testing.T) {
	bad := "31/12/2025"
	r := Fields{IsRecurring: true, Pattern: "daily", Interval: 1, EndDate: &bad}.Rule()
	require.NotNil(t, r)
	require.True(t, r.Broken())
	assert.Nil(t, r.EndDate)

	f := FieldsOf(r)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, bad, *f.EndDate)
	assert.Nil(t, f.StartDate)

	back := f.Rule()
	assert.True(t, back.Broken())
	assert.True(t, r.Equal(*back))

	c := r.Clone()
	assert.True(t, FieldsOf(&c).Rule().Broken())
}

func TestFields_BlankDateIsUnset(t *testing.T) {
	blank := " "
	r := Fields{IsRecurring: true, Pattern: "daily", Interval: 1, StartDate: &blank}.Rule()
	require.NotNil(t, r)
	assert.False(t, r.Broken())
	assert.Nil(t, r.StartDate)
}

func TestFields_WireNames(t *testing.T) {
	r := New(Monthly, 1, AnchorCompletion)
	r.DayOfMonth = 15

	raw, err := json.Marshal(FieldsOf(&r))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, true, m["isRecurring"])
	assert.Equal(t, "monthly", m["recurrencePattern"])
	assert.Equal(t, float64(1), m["recurrenceInterval"])
	assert.Equal(t, "completed", m["recurrenceBaseDate"])
	assert.Equal(t, float64(15), m["recurrenceDayOfMonth"])
}

func TestFields_NotRecurring(t *testing.T) {
	assert.Nil(t, Fields{}.Rule())
	assert.False(t, FieldsOf(nil).IsRecurring)
}

func TestFields_LegacyValues(t *testing.T) {
	r := Fields{IsRecurring: true, Pattern: "weekdays", BaseDate: "completion"}.Rule()
	require.NotNil(t, r)
	assert.Equal(t, WeekdaysOnly, r.Pattern)
	assert.Equal(t, AnchorCompletion, r.Anchor)
	assert.Equal(t, 1, r.Interval)
}

func TestFields_CoercesDayOfMonth(t *testing.T) {
	zero, big := 0, 40
	assert.Equal(t, 1, Fields{IsRecurring: true, Pattern: "monthly", DayOfMonth: &zero}.Rule().DayOfMonth)
	assert.Equal(t, 31, Fields{IsRecurring: true, Pattern: "monthly", DayOfMonth: &big}.Rule().DayOfMonth)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", ymd(d))

	d, err = ParseDate(time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local).Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", ymd(d))

	_, err = ParseDate("15/01/2025")
	assert.Error(t, err)
}

func TestParseDue(t *testing.T) {
	now := time.Date(2025, 1, 31, 18, 0, 0, 0, time.Local)

	d, err := ParseDue("", now)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDue("Today", now)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-01-31", ymd(*d))

	d, err = ParseDue(" tomorrow ", now)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-02-01", ymd(*d))

	d, err = ParseDue("2025-03-04", now)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-03-04", ymd(*d))

	_, err = ParseDue("next week", now)
	assert.ErrorContains(t, err, `invalid due date "next week"`)
}

func TestWeekDayCodecs(t *testing.T) {
	assert.Equal(t, "1,3,5", FormatWeekDays([]time.Weekday{1, 3, 5}))

	assert.Equal(t, []int{1, 3}, ParseWeekDays("1, 3,x"))
	assert.Empty(t, ParseWeekDays(""))

	names, ok := ParseWeekDayNames([]string{"mon", "Wednesday", "5"})
	require.True(t, ok)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, names)

	_, ok = ParseWeekDayNames([]string{"funday"})
	assert.False(t, ok)
}
