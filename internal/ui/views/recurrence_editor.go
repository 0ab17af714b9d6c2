package views

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/keys"
	"github.com/tgienger/cadence/internal/ui/styles"
)

type editorAction int

const (
	editorNone editorAction = iota
	editorCancel
	editorSave
	editorClear
)

var patterns = []recurrence.Pattern{
	recurrence.Daily,
	recurrence.Weekly,
	recurrence.WeekdaysOnly,
	recurrence.Monthly,
	recurrence.Yearly,
	recurrence.Custom,
}

var patternLabels = map[recurrence.Pattern]string{
	recurrence.Daily:        "Daily",
	recurrence.Weekly:       "Weekly",
	recurrence.WeekdaysOnly: "Weekdays",
	recurrence.Monthly:      "Monthly",
	recurrence.Yearly:       "Yearly",
	recurrence.Custom:       "Every N days",
}

// editor rows
const (
	rowPattern = iota
	rowInterval
	rowWeekDays
	rowDayOfMonth
	rowAnchor
	rowFrom
	rowUntil
	rowSave
	rowCount
)

var (
	errInterval   = errors.New("interval must be a whole number")
	errDayOfMonth = errors.New("day of month must be 1-31")
	errEndBefore  = errors.New("until is before from")
)

// recurrenceEditor edits the repeat rule of one task
type recurrenceEditor struct {
	styles    *styles.Styles
	scheduler recurrence.Scheduler
	task      models.Task
	today     time.Time

	row        int
	pattern    int
	weekDays   [7]bool
	weekCursor int
	completion bool
	interval   textinput.Model
	dayOfMonth textinput.Model
	from       textinput.Model
	until      textinput.Model
}

func newRecurrenceEditor(s *styles.Styles, scheduler recurrence.Scheduler, t models.Task, today time.Time) *recurrenceEditor {
	input := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		return in
	}

	e := &recurrenceEditor{
		styles:     s,
		scheduler:  scheduler,
		task:       t.Clone(),
		today:      today,
		interval:   input("1", 3),
		dayOfMonth: input("from due date", 2),
		from:       input("YYYY-MM-DD", 10),
		until:      input("YYYY-MM-DD", 10),
	}
	e.interval.SetValue("1")

	if t.Recurrence != nil {
		r := *t.Recurrence
		e.pattern = max(slices.Index(patterns, r.Pattern), 0)
		e.interval.SetValue(strconv.Itoa(r.Interval))
		for _, d := range r.WeekDays {
			e.weekDays[d] = true
		}
		if r.DayOfMonth > 0 {
			e.dayOfMonth.SetValue(strconv.Itoa(r.DayOfMonth))
		}
		e.completion = r.Anchor == recurrence.AnchorCompletion
		if r.StartDate != nil {
			e.from.SetValue(r.StartDate.Format(recurrence.DateLayout))
		}
		if r.EndDate != nil {
			e.until.SetValue(r.EndDate.Format(recurrence.DateLayout))
		}
	} else if t.DueDate != nil {
		e.weekDays[t.DueDate.Weekday()] = true
	}
	return e
}

func (e *recurrenceEditor) currentPattern() recurrence.Pattern {
	return patterns[e.pattern]
}

// rule builds the rule the editor currently describes
func (e *recurrenceEditor) rule() (recurrence.Rule, error) {
	r := recurrence.Rule{Pattern: e.currentPattern(), Anchor: recurrence.AnchorScheduled}
	if e.completion {
		r.Anchor = recurrence.AnchorCompletion
	}

	n, err := strconv.Atoi(strings.TrimSpace(e.interval.Value()))
	if err != nil {
		return r, errInterval
	}
	r.Interval = n

	switch r.Pattern {
	case recurrence.Weekly:
		for d, on := range e.weekDays {
			if on {
				r.WeekDays = append(r.WeekDays, time.Weekday(d))
			}
		}
	case recurrence.Monthly:
		if s := strings.TrimSpace(e.dayOfMonth.Value()); s != "" {
			dom, err := strconv.Atoi(s)
			if err != nil || dom < 1 || dom > 31 {
				return r, errDayOfMonth
			}
			r.DayOfMonth = dom
		}
	}

	for _, f := range []struct {
		in  textinput.Model
		out **time.Time
	}{{e.from, &r.StartDate}, {e.until, &r.EndDate}} {
		s := strings.TrimSpace(f.in.Value())
		if s == "" {
			continue
		}
		d, err := recurrence.ParseDate(s)
		if err != nil {
			return r, fmt.Errorf("invalid date %q", s)
		}
		*f.out = &d
	}

	r = r.Normalize()
	if e.task.DueDate != nil {
		r = r.WithDefaultsFrom(*e.task.DueDate)
	}
	if r.Exhausted() {
		return r, errEndBefore
	}
	return r, nil
}

func (e *recurrenceEditor) focus() {
	e.interval.Blur()
	e.dayOfMonth.Blur()
	e.from.Blur()
	e.until.Blur()
	switch e.row {
	case rowInterval:
		e.interval.Focus()
	case rowDayOfMonth:
		e.dayOfMonth.Focus()
	case rowFrom:
		e.from.Focus()
	case rowUntil:
		e.until.Focus()
	}
}

// skips reports whether a row does not apply to the chosen pattern
func (e *recurrenceEditor) skips(row int) bool {
	switch row {
	case rowWeekDays:
		return e.currentPattern() != recurrence.Weekly
	case rowDayOfMonth:
		return e.currentPattern() != recurrence.Monthly
	case rowInterval:
		return e.currentPattern() == recurrence.WeekdaysOnly && !e.completion
	}
	return false
}

func (e *recurrenceEditor) move(dir int) {
	for {
		e.row = (e.row + dir + rowCount) % rowCount
		if !e.skips(e.row) {
			break
		}
	}
	e.focus()
}

func (e *recurrenceEditor) update(msg tea.KeyMsg, km keys.KeyMap) (editorAction, tea.Cmd) {
	switch {
	case key.Matches(msg, km.Back):
		return editorCancel, nil
	case key.Matches(msg, km.Save):
		return editorSave, nil
	case msg.String() == "ctrl+r":
		return editorClear, nil
	case key.Matches(msg, km.Tab), msg.String() == "down":
		e.move(1)
		return editorNone, nil
	case msg.String() == "shift+tab", msg.String() == "up":
		e.move(-1)
		return editorNone, nil
	case key.Matches(msg, km.Enter):
		if e.row == rowSave {
			return editorSave, nil
		}
		e.move(1)
		return editorNone, nil
	}

	switch e.row {
	case rowPattern:
		switch {
		case key.Matches(msg, km.Left):
			e.pattern = (e.pattern + len(patterns) - 1) % len(patterns)
		case key.Matches(msg, km.Right), key.Matches(msg, km.Toggle):
			e.pattern = (e.pattern + 1) % len(patterns)
		}
		return editorNone, nil
	case rowWeekDays:
		switch {
		case key.Matches(msg, km.Left):
			e.weekCursor = (e.weekCursor + 6) % 7
		case key.Matches(msg, km.Right):
			e.weekCursor = (e.weekCursor + 1) % 7
		case key.Matches(msg, km.Toggle):
			e.weekDays[e.weekCursor] = !e.weekDays[e.weekCursor]
		}
		return editorNone, nil
	case rowAnchor:
		if key.Matches(msg, km.Left) || key.Matches(msg, km.Right) || key.Matches(msg, km.Toggle) {
			e.completion = !e.completion
		}
		return editorNone, nil
	}

	var cmd tea.Cmd
	switch e.row {
	case rowInterval:
		e.interval, cmd = e.interval.Update(msg)
	case rowDayOfMonth:
		e.dayOfMonth, cmd = e.dayOfMonth.Update(msg)
	case rowFrom:
		e.from, cmd = e.from.Update(msg)
	case rowUntil:
		e.until, cmd = e.until.Update(msg)
	}
	return editorNone, cmd
}

// preview renders the summary and upcoming dates of the rule being edited
func (e *recurrenceEditor) preview() []string {
	s := e.styles
	r, err := e.rule()
	if err != nil {
		return []string{s.FlashError.UnsetPadding().Render(err.Error())}
	}

	var anchor time.Time
	if e.task.DueDate != nil {
		anchor = *e.task.DueDate
	}
	lines := []string{s.Repeat.Render("↻ " + recurrence.Describe(r, anchor))}
	if r.Anchor == recurrence.AnchorCompletion {
		anchor = e.today
	}
	if anchor.IsZero() {
		return append(lines, s.TitleMuted.Render("The task needs a due date before it can repeat on schedule"))
	}

	dates := e.scheduler.Preview(r, anchor, previewCount+2)
	if len(dates) == 0 {
		return append(lines, s.TitleMuted.Render("No occurrences after "+anchor.Format("Jan 2")))
	}
	var parts []string
	for _, d := range dates {
		parts = append(parts, d.Format("Mon Jan 2"))
	}
	return append(lines, s.TitleMuted.Render("Next: "+strings.Join(parts, ", ")))
}

func (e *recurrenceEditor) view(width int) string {
	s := e.styles
	inputWidth := clamp(styles.ContentWidth(width)-24, 12, 30)

	label := func(row int, text string) string {
		l := lipgloss.NewStyle().Width(14)
		if row == e.row {
			return l.Foreground(styles.Current.Primary).Bold(true).Render(text)
		}
		return l.Render(text)
	}
	field := func(row int, in textinput.Model) string {
		st := s.Input
		if row == e.row {
			st = s.InputFocused
		}
		return st.Width(inputWidth).Render(in.View())
	}
	choice := func(row int, text string) string {
		if row == e.row {
			return s.ButtonFocused.Render("◀ " + text + " ▶")
		}
		return s.Button.Render(text)
	}

	rows := []string{
		s.Title.Render("Repeat: " + e.task.Title),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, label(rowPattern, "Pattern"), choice(rowPattern, patternLabels[e.currentPattern()])),
	}
	if !e.skips(rowInterval) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, label(rowInterval, "Every"), field(rowInterval, e.interval)))
	}
	if !e.skips(rowWeekDays) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, label(rowWeekDays, "On"), e.renderWeekDays()))
	}
	if !e.skips(rowDayOfMonth) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, label(rowDayOfMonth, "Day of month"), field(rowDayOfMonth, e.dayOfMonth)))
	}
	anchor := "Due date"
	if e.completion {
		anchor = "Completion"
	}
	btnStyle := s.Button
	if e.row == rowSave {
		btnStyle = s.ButtonFocused
	}
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center, label(rowAnchor, "Count from"), choice(rowAnchor, anchor)),
		lipgloss.JoinHorizontal(lipgloss.Center, label(rowFrom, "From"), field(rowFrom, e.from)),
		lipgloss.JoinHorizontal(lipgloss.Center, label(rowUntil, "Until"), field(rowUntil, e.until)),
		"",
	)
	rows = append(rows, e.preview()...)
	rows = append(rows,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→/space: change • Ctrl+S: save • Ctrl+R: stop repeating • Esc: cancel"),
	)
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (e *recurrenceEditor) renderWeekDays() string {
	s := e.styles
	var days []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		text := d.String()[:2]
		st := s.TitleMuted
		if e.weekDays[d] {
			st = s.Badge
		}
		if e.row == rowWeekDays && int(d) == e.weekCursor {
			st = st.Underline(true).Reverse(true)
		}
		days = append(days, st.Render(text))
	}
	return strings.Join(days, " ")
}
