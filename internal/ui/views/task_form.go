package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/keys"
	"github.com/tgienger/cadence/internal/ui/styles"
)

var errTitleRequired = errors.New("title is required")

type formAction int

const (
	formNone formAction = iota
	formCancel
	formSave
)

// form field order
const (
	fieldTitle = iota
	fieldDesc
	fieldNotes
	fieldPriority
	fieldDue
	fieldAssignee
	fieldSave
	fieldCount
)

// taskForm edits the plain fields of a task
type taskForm struct {
	styles   *styles.Styles
	isNew    bool
	orig     models.Task
	focusIdx int
	cmd      tea.Cmd

	title    textinput.Model
	desc     textarea.Model
	notes    textarea.Model
	priority textinput.Model
	due      textinput.Model
	assignee textinput.Model
}

func newTaskForm(s *styles.Styles) taskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	notes := textarea.New()
	notes.Placeholder = "Notes"
	notes.CharLimit = 5000
	notes.SetWidth(50)
	notes.SetHeight(4)
	notes.ShowLineNumbers = false

	priority := textinput.New()
	priority.Placeholder = "0-10"
	priority.CharLimit = 2

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD, today, tomorrow"
	due.CharLimit = 25

	assignee := textinput.New()
	assignee.Placeholder = "Who does it"
	assignee.CharLimit = 100

	return taskForm{
		styles:   s,
		title:    title,
		desc:     desc,
		notes:    notes,
		priority: priority,
		due:      due,
		assignee: assignee,
	}
}

func (f *taskForm) setWidth(w int) {
	f.desc.SetWidth(w)
	f.notes.SetWidth(w)
}

func (f *taskForm) startNew() {
	f.isNew = true
	f.orig = models.Task{}
	f.focusIdx = fieldTitle
	f.title.Reset()
	f.desc.Reset()
	f.notes.Reset()
	f.priority.SetValue("0")
	f.due.Reset()
	f.assignee.Reset()
	f.updateFocus()
}

func (f *taskForm) startEdit(t models.Task) {
	f.isNew = false
	f.orig = t.Clone()
	f.focusIdx = fieldTitle
	f.title.SetValue(t.Title)
	f.desc.SetValue(t.Description)
	f.notes.SetValue(t.Notes)
	f.priority.SetValue(strconv.Itoa(t.Priority))
	f.due.Reset()
	if t.DueDate != nil {
		f.due.SetValue(t.DueDate.Format(recurrence.DateLayout))
	}
	f.assignee.SetValue(t.Assignee)
	f.updateFocus()
}

func (f *taskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.notes.Blur()
	f.priority.Blur()
	f.due.Blur()
	f.assignee.Blur()

	switch f.focusIdx {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldNotes:
		f.notes.Focus()
	case fieldPriority:
		f.priority.Focus()
	case fieldDue:
		f.due.Focus()
	case fieldAssignee:
		f.assignee.Focus()
	}
}

// update routes a key to the focused field. f.cmd holds the field's command.
func (f *taskForm) update(msg tea.KeyMsg, km keys.KeyMap) formAction {
	f.cmd = nil
	switch {
	case key.Matches(msg, km.Back):
		return formCancel
	case key.Matches(msg, km.Save):
		return formSave
	case key.Matches(msg, km.Tab):
		f.focusIdx = (f.focusIdx + 1) % fieldCount
		f.updateFocus()
		return formNone
	case msg.String() == "shift+tab":
		f.focusIdx = (f.focusIdx + fieldCount - 1) % fieldCount
		f.updateFocus()
		return formNone
	case key.Matches(msg, km.Enter):
		switch f.focusIdx {
		case fieldSave:
			return formSave
		case fieldDesc, fieldNotes:
			// newline in textareas
		default:
			f.focusIdx++
			f.updateFocus()
			return formNone
		}
	}

	switch f.focusIdx {
	case fieldTitle:
		f.title, f.cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, f.cmd = f.desc.Update(msg)
	case fieldNotes:
		f.notes, f.cmd = f.notes.Update(msg)
	case fieldPriority:
		f.priority, f.cmd = f.priority.Update(msg)
	case fieldDue:
		f.due, f.cmd = f.due.Update(msg)
	case fieldAssignee:
		f.assignee, f.cmd = f.assignee.Update(msg)
	}
	return formNone
}

// task applies the form to the task being edited
func (f *taskForm) task(now time.Time) (models.Task, error) {
	t := f.orig.Clone()
	t.Title = strings.TrimSpace(f.title.Value())
	if t.Title == "" {
		return t, errTitleRequired
	}
	t.Description = strings.TrimSpace(f.desc.Value())
	t.Notes = strings.TrimSpace(f.notes.Value())
	t.Assignee = strings.TrimSpace(f.assignee.Value())

	priority, err := strconv.Atoi(strings.TrimSpace(f.priority.Value()))
	if err != nil {
		priority = 0
	}
	t.Priority = clamp(priority, 0, 10)

	due, err := recurrence.ParseDue(f.due.Value(), now)
	if err != nil {
		return t, err
	}
	t.DueDate = due
	return t, nil
}

func (f *taskForm) view(width int) string {
	s := f.styles

	heading := "New Task"
	if !f.isNew {
		heading = fmt.Sprintf("Edit Task #%d", f.orig.ID)
	}

	style := func(idx int) lipgloss.Style {
		if idx == f.focusIdx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if f.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(styles.ContentWidth(width)-6, 20, 50)

	rows := []string{
		s.Title.Render(heading),
		"",
		"Title:",
		style(fieldTitle).Width(inputWidth).Render(f.title.View()),
		"Description:",
		style(fieldDesc).Render(f.desc.View()),
		"Notes:",
		style(fieldNotes).Render(f.notes.View()),
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, "Priority:", style(fieldPriority).Width(8).Render(f.priority.View())),
			"  ",
			lipgloss.JoinVertical(lipgloss.Left, "Due:", style(fieldDue).Width(inputWidth-12).Render(f.due.View())),
		),
		"Assignee:",
		style(fieldAssignee).Width(inputWidth).Render(f.assignee.View()),
	}
	if !f.isNew && f.orig.IsRecurring() {
		rows = append(rows, s.Repeat.Render("↻ repeats; press r on the task to change"))
	}
	rows = append(rows,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
