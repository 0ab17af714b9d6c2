package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/keys"
	"github.com/tgienger/cadence/internal/ui/styles"
)

// FocusArea represents which part of the header or list has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusStatusDropdown
	FocusTaskList
)

type taskMode int

const (
	modeList taskMode = iota
	modeStatusFilter
	modeEditing
	modeDetail
	modeRecurrence
	modeConfirmDelete
	modeConfirmComplete
)

// pendingChange is a completion held until the user confirms it
type pendingChange struct {
	task models.Task
	next models.Status
	open int
}

// TaskListView shows the tasks of one project
type TaskListView struct {
	env      Env
	project  models.Project
	statuses lifecycle.StatusSet
	tasks    []models.Task
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	mode        taskMode
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// "" shows every non-terminal status
	statusFilter   models.Status
	statusCursor   int
	showingDone    bool
	preDoneFilter  models.Status
	showHelpPopup  bool
	flash          string
	flashIsError   bool
	pending        *pendingChange
	deleteTarget   models.Task
	returnToDetail bool

	form   taskForm
	detail taskDetail
	rules  *recurrenceEditor

	// now is swapped in tests
	now func() time.Time
}

// NewTaskListView creates the task list for project
func NewTaskListView(env Env, project models.Project) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	s := styles.NewStyles()
	return &TaskListView{
		env:         env,
		project:     project,
		statuses:    env.Controller.Statuses(),
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		searchInput: search,
		form:        newTaskForm(s),
		detail:      newTaskDetail(),
		now:         time.Now,
	}
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type statusChangedMsg struct {
	res lifecycle.Result
}

type taskSavedMsg struct {
	task    models.Task
	created bool
}

type taskDeletedMsg struct {
	task models.Task
}

func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) filter() db.TaskFilter {
	f := db.TaskFilter{
		ProjectID: v.project.ID,
		Search:    strings.TrimSpace(v.searchInput.Value()),
		Status:    v.statusFilter,
	}
	if v.showingDone {
		f.Status = v.statuses.Terminal()
	} else if f.Status == "" {
		f.ExcludeStatus = v.statuses.Terminal()
	}
	return f
}

func (v *TaskListView) loadTasks() tea.Msg {
	ctx, cancel := opContext()
	defer cancel()
	tasks, err := v.env.DB.ListTasks(ctx, v.filter())
	if err != nil {
		return v.env.fail(err, "list tasks", "project", v.project.ID)
	}
	return tasksLoadedMsg{tasks: tasks}
}

// current returns the task under the cursor
func (v *TaskListView) current() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) today() time.Time {
	return recurrence.Day(v.now())
}

// changeStatus asks the controller to move t to next
func (v *TaskListView) changeStatus(t models.Task, next models.Status, confirmed bool) tea.Cmd {
	env := v.env
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		res, err := env.Controller.RequestStatusChange(ctx, env.Actor, t, next, confirmed)
		if err != nil {
			return env.fail(err, "change status", "task", t.ID, "to", next)
		}
		return statusChangedMsg{res: res}
	}
}

// toggleComplete completes an open task or reopens a finished one
func (v *TaskListView) toggleComplete(t models.Task) tea.Cmd {
	next := v.statuses.Terminal()
	if v.statuses.IsTerminal(t.Status) {
		next = v.statuses.Initial()
	}
	return v.changeStatus(t, next, false)
}

func (v *TaskListView) setFlash(msg string, isErr bool) {
	v.flash = msg
	v.flashIsError = isErr
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.form.setWidth(inputWidth)
		v.detail.comment.SetWidth(inputWidth)
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.ensureVisible()
		return v, nil

	case errMsg:
		v.setFlash(msg.err.Error(), true)
		return v, nil

	case statusChangedMsg:
		return v, v.handleStatusChanged(msg.res)

	case taskSavedMsg:
		verb := "Updated"
		if msg.created {
			verb = "Created"
		}
		v.setFlash(fmt.Sprintf("%s #%d %s", verb, msg.task.ID, msg.task.Title), false)
		if v.mode == modeDetail {
			return v, tea.Batch(v.loadTasks, v.detail.reload(v.env))
		}
		return v, v.loadTasks

	case taskDeletedMsg:
		v.setFlash(fmt.Sprintf("Deleted #%d %s", msg.task.ID, msg.task.Title), false)
		return v, v.loadTasks

	case taskLoadedMsg, commentsLoadedMsg:
		return v, v.detail.handle(msg)

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		v.flash = ""

		switch v.mode {
		case modeConfirmDelete:
			return v.updateConfirmDelete(msg)
		case modeConfirmComplete:
			return v.updateConfirmComplete(msg)
		case modeEditing:
			return v.updateEditing(msg)
		case modeDetail:
			return v.updateDetail(msg)
		case modeRecurrence:
			return v.updateRecurrence(msg)
		case modeStatusFilter:
			return v.updateStatusDropdown(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) handleStatusChanged(res lifecycle.Result) tea.Cmd {
	t := res.Task
	switch res.Outcome {
	case lifecycle.ConfirmationRequired:
		v.pending = &pendingChange{task: t, next: v.statuses.Terminal(), open: res.OpenSubtasks}
		v.returnToDetail = v.mode == modeDetail
		v.mode = modeConfirmComplete
		return nil
	case lifecycle.Unchanged:
		v.setFlash(fmt.Sprintf("#%d is already %s", t.ID, v.statuses.Label(t.Status)), false)
		return nil
	}

	msg := fmt.Sprintf("#%d %s is now %s", t.ID, t.Title, v.statuses.Label(t.Status))
	switch {
	case res.Successor != nil && res.Successor.DueDate != nil:
		msg += fmt.Sprintf(". Next occurrence due %s", res.Successor.DueDate.Format("Mon Jan 2"))
	case res.Successor != nil:
		msg += ". Next occurrence created"
	case res.SeriesEnded:
		msg += ". The series has ended"
	}
	v.setFlash(msg, false)

	cmds := []tea.Cmd{v.loadTasks}
	if v.mode == modeDetail {
		cmds = append(cmds, v.detail.reload(v.env))
	}
	return tea.Batch(cmds...)
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing in the search box takes every key
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.loadTasks
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			return v, tea.Batch(cmd, v.loadTasks)
		}
	}

	t, ok := v.current()
	onTask := ok && v.focus == FocusTaskList

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, func() tea.Msg { return BackToProjects{} }
		case FocusStatusDropdown:
			v.openStatusDropdown()
			return v, nil
		case FocusTaskList:
			if ok {
				v.mode = modeDetail
				return v, v.detail.open(v.env, t)
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.mode = modeEditing
		v.form.startNew()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if onTask {
			v.returnToDetail = false
			v.mode = modeEditing
			v.form.startEdit(t)
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Delete):
		if onTask {
			v.deleteTarget = t
			v.returnToDetail = false
			v.mode = modeConfirmDelete
		}
		return v, nil

	case key.Matches(msg, v.keys.Complete):
		if onTask {
			return v, v.toggleComplete(t)
		}

	case key.Matches(msg, v.keys.Status):
		if onTask {
			return v, v.changeStatus(t, v.statuses.Next(t.Status), false)
		}

	case key.Matches(msg, v.keys.Recurrence):
		if onTask {
			v.openRecurrence(t)
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusStatusDropdown
		v.openStatusDropdown()
		return v, nil

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		if v.showingDone {
			v.showingDone = false
			v.statusFilter = v.preDoneFilter
		} else {
			v.preDoneFilter = v.statusFilter
			v.showingDone = true
			v.statusFilter = ""
		}
		v.cursor = 0
		v.scrollY = 0
		return v, v.loadTasks
	}

	return v, nil
}

// filterOptions lists the dropdown entries; the first is "All"
func (v *TaskListView) filterOptions() []lifecycle.StatusDef {
	var opts []lifecycle.StatusDef
	for _, d := range v.statuses.All() {
		if !d.Terminal {
			opts = append(opts, d)
		}
	}
	return opts
}

func (v *TaskListView) openStatusDropdown() {
	v.mode = modeStatusFilter
	v.statusCursor = 0
	for i, d := range v.filterOptions() {
		if d.ID == v.statusFilter {
			v.statusCursor = i + 1
		}
	}
}

func (v *TaskListView) updateStatusDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := v.filterOptions()
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeList
	case key.Matches(msg, v.keys.Up):
		if v.statusCursor > 0 {
			v.statusCursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.statusCursor < len(opts) {
			v.statusCursor++
		}
	case key.Matches(msg, v.keys.Enter):
		v.statusFilter = ""
		if v.statusCursor > 0 {
			v.statusFilter = opts[v.statusCursor-1].ID
		}
		v.showingDone = false
		v.mode = modeList
		v.cursor = 0
		v.scrollY = 0
		return v, v.loadTasks
	}
	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = modeList
		t := v.deleteTarget
		env := v.env
		return v, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			if err := env.DB.DeleteTask(ctx, t.ID); err != nil {
				return env.fail(err, "delete task", "task", t.ID)
			}
			env.Logger.Info("task deleted", "task", t.ID)
			return taskDeletedMsg{task: t}
		}
	case "n", "N", "esc":
		v.mode = modeList
		if v.returnToDetail {
			v.mode = modeDetail
		}
	}
	return v, nil
}

func (v *TaskListView) updateConfirmComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := v.pending
	back := modeList
	if v.returnToDetail {
		back = modeDetail
	}
	switch msg.String() {
	case "y", "Y":
		v.pending = nil
		v.mode = back
		return v, v.changeStatus(p.task, p.next, true)
	case "n", "N", "esc":
		v.pending = nil
		v.mode = back
		v.setFlash(fmt.Sprintf("#%d left as %s", p.task.ID, v.statuses.Label(p.task.Status)), false)
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	back := modeList
	if !v.form.isNew && v.returnToDetail {
		back = modeDetail
	}
	switch v.form.update(msg, v.keys) {
	case formCancel:
		v.mode = back
		return v, nil
	case formSave:
		t, err := v.form.task(v.now())
		if err != nil {
			v.setFlash(err.Error(), true)
			return v, nil
		}
		v.mode = back
		return v, v.saveTask(t, v.form.isNew)
	}
	return v, v.form.cmd
}

// saveTask creates or updates t. New tasks get the project, the initial
// status and the current actor.
func (v *TaskListView) saveTask(t models.Task, created bool) tea.Cmd {
	env := v.env
	projectID := v.project.ID
	initial := v.statuses.Initial()
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if created {
			t.ProjectID = projectID
			t.Status = initial
			t.CreatedBy = env.Actor
			stored, err := env.DB.CreateTask(ctx, t)
			if err != nil {
				return env.fail(err, "create task")
			}
			env.Logger.Info("task created", "task", stored.ID, "title", stored.Title)
			return taskSavedMsg{task: *stored, created: true}
		}
		if err := env.DB.UpdateTask(ctx, t); err != nil {
			return env.fail(err, "update task", "task", t.ID)
		}
		return taskSavedMsg{task: t}
	}
}

func (v *TaskListView) openRecurrence(t models.Task) {
	v.returnToDetail = v.mode == modeDetail
	v.mode = modeRecurrence
	v.rules = newRecurrenceEditor(v.styles, v.env.Scheduler, t, v.today())
}

func (v *TaskListView) updateRecurrence(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	back := modeList
	if v.returnToDetail {
		back = modeDetail
	}
	action, cmd := v.rules.update(msg, v.keys)
	switch action {
	case editorCancel:
		v.mode = back
	case editorSave, editorClear:
		t := v.rules.task.Clone()
		t.Recurrence = nil
		if action == editorSave {
			rule, err := v.rules.rule()
			if err != nil {
				// the editor preview already shows the problem
				return v, nil
			}
			t.Recurrence = &rule
			if t.SeriesID == "" {
				t.SeriesID = v.env.Controller.NewSeriesID()
			}
		}
		v.mode = back
		return v, v.saveTask(t, false)
	}
	return v, cmd
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + 4) % 4)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

// Each task item is 2 lines + 1 margin
const taskItemHeight = 3

func (v *TaskListView) visibleItems() int {
	return max((v.height-12)/taskItemHeight, 1)
}

func (v *TaskListView) ensureVisible() {
	n := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+n {
		v.scrollY = v.cursor - n + 1
	}
}

func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	switch v.mode {
	case modeConfirmDelete:
		return v.renderDeleteConfirm()
	case modeConfirmComplete:
		return v.renderCompleteConfirm()
	case modeEditing:
		return placeCenter(v.form.view(v.width), v.width, v.height)
	case modeDetail:
		return v.renderDetail()
	case modeRecurrence:
		return placeCenter(v.rules.view(v.width), v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderFlash())
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderFlash() string {
	if v.flash == "" {
		return ""
	}
	if v.flashIsError {
		return v.styles.FlashError.Render(v.flash) + "\n"
	}
	return v.styles.Flash.Render(v.flash) + "\n"
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(contentWidth-8, 10, 30)).Render(v.searchInput.View())

	filterStyle := s.Button
	if v.focus == FocusStatusDropdown {
		filterStyle = s.ButtonFocused
	}
	filterLabel := "Open"
	if v.statusFilter != "" {
		filterLabel = v.statuses.Label(v.statusFilter)
	}
	if !isNarrow {
		filterLabel = "Status: " + filterLabel
	}
	filterBtn := filterStyle.Render(filterLabel + " ▼")

	titleText := v.project.Title
	if v.showingDone {
		titleText += " (" + v.statuses.Label(v.statuses.Terminal()) + ")"
	}
	title := s.Title.Render(titleText)

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, filterBtn)
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backStyle.Render("← Projects"), "  ", searchBox, "  ", filterBtn,
		)
	}

	if v.mode == modeStatusFilter {
		header += "\n" + v.renderStatusDropdown()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, header)
}

func (v *TaskListView) renderStatusDropdown() string {
	s := v.styles
	row := func(i int, label string) string {
		if i == v.statusCursor {
			return s.ListSelected.Render(label)
		}
		return s.ListItem.Render(label)
	}

	items := []string{row(0, "All open")}
	for i, d := range v.filterOptions() {
		items = append(items, row(i+1, d.Label))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	if len(v.tasks) == 0 {
		return v.styles.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	end := min(v.scrollY+v.visibleItems(), len(v.tasks))
	var items []string
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(t models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	line := s.ListItem
	if selected {
		line = s.ListSelected
	}

	title := t.Title
	if v.statuses.IsTerminal(t.Status) {
		title = s.TaskDone.Render(title)
	}
	if t.Priority > 0 {
		title = s.TaskPriority.Render(fmt.Sprintf("[%d]", t.Priority)) + " " + title
	}
	title += " " + s.Badge.Render(v.statuses.Label(t.Status))

	meta := []string{dueLabel(s, t.DueDate, v.today())}
	if t.IsRecurring() {
		anchor := time.Time{}
		if t.DueDate != nil {
			anchor = *t.DueDate
		}
		meta = append(meta, s.Repeat.Render("↻ "+recurrence.Describe(*t.Recurrence, anchor)))
	}
	if n := len(t.Subtasks); n > 0 {
		meta = append(meta, fmt.Sprintf("%d/%d subtasks", n-t.IncompleteSubtasks(), n))
	}
	if t.Assignee != "" {
		meta = append(meta, "@"+t.Assignee)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		line.Width(width).Render(title),
		line.Width(width).MaxHeight(1).Render(strings.Join(meta, " • ")),
	) + "\n"
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	if w := styles.ContentWidth(v.width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s view • %s new • %s done • %s status • %s repeat • %s filter • %s more",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("x"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("f"),
			s.HelpKey.Render("?"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles

	completedLabel := "show finished tasks"
	if v.showingDone {
		completedLabel = "back to open tasks"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("↵")+"      view task",
		s.HelpKey.Render("n")+"      new task",
		s.HelpKey.Render("e")+"      edit task",
		s.HelpKey.Render("d")+"      delete task",
		s.HelpKey.Render("x")+"      complete / reopen",
		s.HelpKey.Render("s")+"      next status",
		s.HelpKey.Render("r")+"      repeat settings",
		s.HelpKey.Render("/")+"      search",
		s.HelpKey.Render("f")+"      filter by status",
		s.HelpKey.Render("c")+"      "+completedLabel,
		s.HelpKey.Render("esc")+"    back",
		s.HelpKey.Render("q")+"      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)
	return placeCenter(s.FilterBar.Render(content), v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	note := fmt.Sprintf("%q will be removed with its subtasks and comments.", v.deleteTarget.Title)
	if v.deleteTarget.IsRecurring() {
		note += " No further occurrences will be created."
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Width(clamp(styles.ContentWidth(v.width)-8, 20, 60)).Render(note),
		"",
		confirmButtons(s),
	)
	return placeCenter(content, v.width, v.height)
}

func (v *TaskListView) renderCompleteConfirm() string {
	s := v.styles
	p := v.pending
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Warning).Render("Complete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q has %d open subtask(s).", p.task.Title, p.open)),
		s.TitleMuted.Render("Mark it "+v.statuses.Label(p.next)+" anyway?"),
		"",
		confirmButtons(s),
	)
	return placeCenter(content, v.width, v.height)
}
