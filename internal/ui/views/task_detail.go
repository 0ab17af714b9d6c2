package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/styles"
)

// previewCount is how many upcoming dates the detail view lists
const previewCount = 3

// taskDetail is the read view of one task with its subtasks and comments
type taskDetail struct {
	task     *models.Task
	comments []models.Comment

	subCursor      int
	addingSubtask  bool
	subtaskInput   textinput.Model
	commentFocused bool
	comment        textarea.Model
}

type taskLoadedMsg struct {
	task *models.Task
}

type commentsLoadedMsg struct {
	taskID   int64
	comments []models.Comment
}

func newTaskDetail() taskDetail {
	sub := textinput.New()
	sub.Placeholder = "New subtask"
	sub.CharLimit = 200

	comment := textarea.New()
	comment.Placeholder = "Add a comment..."
	comment.CharLimit = 2000
	comment.SetWidth(50)
	comment.SetHeight(3)
	comment.ShowLineNumbers = false

	return taskDetail{subtaskInput: sub, comment: comment}
}

func (d *taskDetail) open(env Env, t models.Task) tea.Cmd {
	t = t.Clone()
	d.task = &t
	d.comments = nil
	d.subCursor = 0
	d.addingSubtask = false
	d.commentFocused = false
	d.comment.Reset()
	return d.reload(env)
}

// reload fetches the task and its comments again
func (d *taskDetail) reload(env Env) tea.Cmd {
	if d.task == nil {
		return nil
	}
	id := d.task.ID
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			t, err := env.DB.GetTask(ctx, id)
			if err != nil {
				return env.fail(err, "load task", "task", id)
			}
			return taskLoadedMsg{task: t}
		},
		func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			comments, err := env.DB.ListComments(ctx, id)
			if err != nil {
				return env.fail(err, "load comments", "task", id)
			}
			return commentsLoadedMsg{taskID: id, comments: comments}
		},
	)
}

func (d *taskDetail) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case taskLoadedMsg:
		if d.task != nil && msg.task.ID == d.task.ID {
			d.task = msg.task
			d.subCursor = clamp(d.subCursor, 0, max(len(d.task.Subtasks)-1, 0))
		}
	case commentsLoadedMsg:
		if d.task != nil && msg.taskID == d.task.ID {
			d.comments = msg.comments
		}
	}
	return nil
}

func (v *TaskListView) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &v.detail
	env := v.env

	if d.commentFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			d.commentFocused = false
			d.comment.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Save):
			return v, v.submitComment()
		}
		var cmd tea.Cmd
		d.comment, cmd = d.comment.Update(msg)
		return v, cmd
	}

	if d.addingSubtask {
		switch {
		case key.Matches(msg, v.keys.Back):
			d.addingSubtask = false
			d.subtaskInput.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			return v, v.submitSubtask()
		}
		var cmd tea.Cmd
		d.subtaskInput, cmd = d.subtaskInput.Update(msg)
		return v, cmd
	}

	t := *d.task
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeList
		d.task = nil
		return v, v.loadTasks
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Edit):
		v.returnToDetail = true
		v.mode = modeEditing
		v.form.startEdit(t)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.deleteTarget = t
		v.returnToDetail = true
		v.mode = modeConfirmDelete
		return v, nil
	case key.Matches(msg, v.keys.Complete):
		return v, v.toggleComplete(t)
	case key.Matches(msg, v.keys.Status):
		return v, v.changeStatus(t, v.statuses.Next(t.Status), false)
	case key.Matches(msg, v.keys.Recurrence):
		v.openRecurrence(t)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Up):
		if d.subCursor > 0 {
			d.subCursor--
		}
	case key.Matches(msg, v.keys.Down):
		if d.subCursor < len(t.Subtasks)-1 {
			d.subCursor++
		}
	case key.Matches(msg, v.keys.Toggle):
		if d.subCursor < len(t.Subtasks) {
			st := t.Subtasks[d.subCursor]
			return v, func() tea.Msg {
				ctx, cancel := opContext()
				defer cancel()
				if err := env.DB.SetSubtaskCompleted(ctx, st.ID, !st.Completed); err != nil {
					return env.fail(err, "toggle subtask", "subtask", st.ID)
				}
				t, err := env.DB.GetTask(ctx, st.TaskID)
				if err != nil {
					return env.fail(err, "load task", "task", st.TaskID)
				}
				return taskLoadedMsg{task: t}
			}
		}
	case msg.String() == "a":
		d.addingSubtask = true
		d.subtaskInput.Reset()
		d.subtaskInput.Focus()
		return v, textinput.Blink
	case msg.String() == "c":
		d.commentFocused = true
		d.comment.Focus()
		return v, textarea.Blink
	}
	return v, nil
}

func (v *TaskListView) submitSubtask() tea.Cmd {
	d := &v.detail
	title := strings.TrimSpace(d.subtaskInput.Value())
	d.addingSubtask = false
	d.subtaskInput.Blur()
	if title == "" || d.task == nil {
		return nil
	}
	env := v.env
	id := d.task.ID
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if _, err := env.DB.AddSubtask(ctx, id, title); err != nil {
			return env.fail(err, "add subtask", "task", id)
		}
		t, err := env.DB.GetTask(ctx, id)
		if err != nil {
			return env.fail(err, "load task", "task", id)
		}
		return taskLoadedMsg{task: t}
	}
}

// submitComment adds the typed comment to the open task
func (v *TaskListView) submitComment() tea.Cmd {
	d := &v.detail
	content := strings.TrimSpace(d.comment.Value())
	if content == "" || d.task == nil {
		return nil
	}
	d.comment.Reset()
	d.commentFocused = false
	d.comment.Blur()

	env := v.env
	id := d.task.ID
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if _, err := env.DB.AddComment(ctx, id, content); err != nil {
			return env.fail(err, "add comment", "task", id)
		}
		comments, err := env.DB.ListComments(ctx, id)
		if err != nil {
			return env.fail(err, "load comments", "task", id)
		}
		return commentsLoadedMsg{taskID: id, comments: comments}
	}
}

// repeatLines describes the rule and lists the next few due dates
func (v *TaskListView) repeatLines(t models.Task) []string {
	s := v.styles
	if !t.IsRecurring() {
		return []string{s.TitleMuted.Render("Does not repeat (r to set)")}
	}

	r := *t.Recurrence
	var anchor time.Time
	if t.DueDate != nil {
		anchor = *t.DueDate
	}
	lines := []string{s.Repeat.Render("↻ " + recurrence.Describe(r, anchor))}

	if r.Anchor == recurrence.AnchorCompletion {
		anchor = v.today()
	}
	if anchor.IsZero() {
		return append(lines, s.TitleMuted.Render("Set a due date to schedule the next occurrence"))
	}
	dates := v.env.Scheduler.Preview(r, anchor, previewCount)
	if len(dates) == 0 {
		return append(lines, s.TitleMuted.Render("No further occurrences"))
	}
	var parts []string
	for _, d := range dates {
		parts = append(parts, d.Format("Mon Jan 2"))
	}
	prefix := "Next: "
	if r.Anchor == recurrence.AnchorCompletion {
		prefix = "If done today: "
	}
	return append(lines, s.TitleMuted.Render(prefix+strings.Join(parts, ", ")))
}

func (v *TaskListView) renderDetail() string {
	d := &v.detail
	if d.task == nil {
		return ""
	}
	s := v.styles
	t := *d.task
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	label := s.TitleMuted
	para := lipgloss.NewStyle().Width(textWidth)

	status := s.Badge.Render(v.statuses.Label(t.Status))
	if t.CompletedAt != nil {
		status += s.TitleMuted.Render(fmt.Sprintf("  %s by %s",
			t.CompletedAt.Local().Format("Jan 2 3:04 PM"), t.CompletedBy))
	}

	facts := []string{"Due " + dueLabel(s, t.DueDate, v.today())}
	if t.Priority > 0 {
		facts = append(facts, s.TaskPriority.Render(fmt.Sprintf("priority %d", t.Priority)))
	}
	if t.Assignee != "" {
		facts = append(facts, "@"+t.Assignee)
	}
	if t.CreatedBy != "" {
		facts = append(facts, s.TitleMuted.Render("created by "+t.CreatedBy))
	}

	var subtasks []string
	for i, st := range t.Subtasks {
		box := "[ ] "
		if st.Completed {
			box = "[x] "
		}
		row := s.ListItem
		if i == d.subCursor {
			row = s.ListSelected
		}
		subtasks = append(subtasks, row.Render(box+st.Title))
	}
	if len(subtasks) == 0 {
		subtasks = append(subtasks, s.TitleMuted.Render("No subtasks"))
	}
	if d.addingSubtask {
		subtasks = append(subtasks, s.InputFocused.Width(textWidth).Render(d.subtaskInput.View()))
	}

	desc := t.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}
	notes := t.Notes
	if notes == "" {
		notes = s.TitleMuted.Render("No notes")
	}

	var comments []string
	for _, c := range d.comments {
		comments = append(comments, lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render(c.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")),
			para.Render(c.Content),
		))
	}
	if len(comments) == 0 {
		comments = append(comments, s.TitleMuted.Render("No comments yet"))
	}

	commentStyle := s.Input
	if d.commentFocused {
		commentStyle = s.InputFocused
	}

	var help string
	switch {
	case d.commentFocused:
		help = fmt.Sprintf("%s submit • %s cancel", s.HelpKey.Render("ctrl+s"), s.HelpKey.Render("esc"))
	case d.addingSubtask:
		help = fmt.Sprintf("%s add • %s cancel", s.HelpKey.Render("↵"), s.HelpKey.Render("esc"))
	default:
		help = fmt.Sprintf("%s done • %s status • %s repeat • %s subtask • %s toggle • %s comment • %s edit • %s back",
			s.HelpKey.Render("x"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("c"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("esc"),
		)
	}

	rows := []string{
		s.Title.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)),
		status,
		strings.Join(facts, " • "),
		"",
		label.Render("Repeat"),
	}
	rows = append(rows, v.repeatLines(t)...)
	rows = append(rows, "", label.Render("Subtasks"))
	rows = append(rows, subtasks...)
	rows = append(rows,
		"",
		label.Render("Description"),
		para.Render(desc),
		"",
		label.Render("Notes"),
		para.Render(notes),
		"",
		label.Render("Comments"),
	)
	rows = append(rows, comments...)
	rows = append(rows,
		commentStyle.Render(d.comment.View()),
		v.renderFlash(),
		s.Help.Render(help),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}
