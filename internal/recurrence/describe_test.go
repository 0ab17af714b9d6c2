package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	due := date("2025-03-04") // Tuesday

	weekly := New(Weekly, 2, AnchorScheduled)
	weekly.WeekDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	monthly := New(Monthly, 1, AnchorScheduled)
	monthly.DayOfMonth = 31

	until := New(Daily, 1, AnchorScheduled)
	until.EndDate = ptr(date("2025-12-31"))

	cases := []struct {
		name string
		rule Rule
		want string
	}{
		{"daily", New(Daily, 1, AnchorScheduled), "Repeats every day"},
		{"every n days", New(Daily, 3, AnchorScheduled), "Repeats every 3 days"},
		{"weekdays", New(WeekdaysOnly, 1, AnchorScheduled), "Repeats every weekday (Monday-Friday)"},
		{"weekly from due", New(Weekly, 1, AnchorScheduled), "Repeats on Tuesday every week"},
		{"weekly days", weekly, "Repeats on Monday, Wednesday, and Friday every 2 weeks"},
		{"monthly", monthly, "Repeats on the 31st every month"},
		{"yearly", New(Yearly, 1, AnchorScheduled), "Repeats on March 4th every year"},
		{"after completion", New(Weekly, 2, AnchorCompletion), "Repeats 2 weeks after completion"},
		{"after completion single", New(WeekdaysOnly, 1, AnchorCompletion), "Repeats 1 weekday after completion"},
		{"until", until, "Repeats every day, until Dec 31, 2025"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Describe(c.rule, due))
		})
	}
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "22nd", ordinal(22))
	assert.Equal(t, "23rd", ordinal(23))
}
