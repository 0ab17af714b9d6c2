package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/ui/keys"
	"github.com/tgienger/cadence/internal/ui/styles"
)

type projectRow struct {
	db.ProjectSummary
}

func (r projectRow) FilterValue() string { return r.Title + " " + r.Description }

// summary is the dimmed second line of a row
func (r projectRow) summary() string {
	parts := []string{fmt.Sprintf("%d open", r.OpenTasks)}
	if r.Recurring > 0 {
		parts = append(parts, fmt.Sprintf("↻ %d", r.Recurring))
	}
	if r.NextDue != "" {
		parts = append(parts, "next due "+r.NextDue)
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	return strings.Join(parts, " • ")
}

type projectRowDelegate struct {
	styles *styles.Styles
	width  int
}

func (d *projectRowDelegate) Height() int                         { return 2 }
func (d *projectRowDelegate) Spacing() int                        { return 1 }
func (d *projectRowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d *projectRowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(projectRow)
	if !ok {
		return
	}
	st := d.styles.ListItem
	if index == m.Index() {
		st = d.styles.ListSelected
	}
	w2 := max(d.width-4, 20)
	fmt.Fprintln(w, st.Width(w2).Render(row.Title))
	fmt.Fprint(w, st.Foreground(styles.Current.Muted).Width(w2).MaxHeight(1).Render(row.summary()))
}

type projectMode int

const (
	projectBrowse projectMode = iota
	projectCreate
	projectRename
	projectConfirmDelete
	projectHelp
)

// projectForm edits a project's title and description
type projectForm struct {
	title textinput.Model
	desc  textinput.Model
	focus int // 0 title, 1 description, 2 button
}

func newProjectForm() projectForm {
	title := textinput.New()
	title.Placeholder = "Client or project name"
	title.CharLimit = 100
	desc := textinput.New()
	desc.Placeholder = "Notes (optional)"
	desc.CharLimit = 200
	return projectForm{title: title, desc: desc}
}

func (f *projectForm) reset(title, desc string) {
	f.title.SetValue(title)
	f.title.CursorEnd()
	f.desc.SetValue(desc)
	f.desc.CursorEnd()
	f.setFocus(0)
}

func (f *projectForm) setFocus(i int) {
	f.focus = (i + 3) % 3
	f.title.Blur()
	f.desc.Blur()
	switch f.focus {
	case 0:
		f.title.Focus()
	case 1:
		f.desc.Focus()
	}
}

func (f *projectForm) values() (string, string) {
	return strings.TrimSpace(f.title.Value()), strings.TrimSpace(f.desc.Value())
}

// ProjectListView is the landing screen listing every project
type ProjectListView struct {
	env      Env
	styles   *styles.Styles
	keys     keys.KeyMap
	list     list.Model
	delegate *projectRowDelegate
	width    int
	height   int

	mode    projectMode
	loaded  bool
	err     error
	form    projectForm
	target  db.ProjectSummary
	flash   string
	editing int64
}

func NewProjectListView(env Env) *ProjectListView {
	s := styles.NewStyles()
	delegate := &projectRowDelegate{styles: s, width: 80}

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Projects"
	l.Styles.Title = s.Title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return &ProjectListView{
		env:      env,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		list:     l,
		delegate: delegate,
		form:     newProjectForm(),
	}
}

type projectsLoadedMsg struct {
	projects []db.ProjectSummary
}

type projectSavedMsg struct {
	project models.Project
}

// SelectedProject asks the app to open a project's task list
type SelectedProject struct {
	Project models.Project
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	ctx, cancel := opContext()
	defer cancel()
	projects, err := v.env.DB.ListProjects(ctx, v.env.Controller.Statuses().Terminal())
	if err != nil {
		return v.env.fail(err, "list projects")
	}
	return projectsLoadedMsg{projects: projects}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		w := styles.ContentWidth(msg.Width)
		v.delegate.width = w
		v.list.SetSize(w-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		rows := make([]list.Item, 0, len(msg.projects))
		for _, p := range msg.projects {
			rows = append(rows, projectRow{p})
		}
		v.list.SetItems(rows)
		v.loaded, v.err = true, nil
		return v, nil

	case projectSavedMsg:
		v.flash = fmt.Sprintf("Renamed to %q", msg.project.Title)
		return v, v.loadProjects

	case errMsg:
		v.loaded, v.err = true, msg.err
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case projectHelp:
			v.mode = projectBrowse
			return v, nil
		case projectConfirmDelete:
			return v.updateConfirmDelete(msg)
		case projectCreate, projectRename:
			return v.updateForm(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}
		v.flash = ""
		if handled, cmd := v.handleBrowseKey(msg); handled {
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) handleBrowseKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	row, selected := v.list.SelectedItem().(projectRow)
	switch {
	case key.Matches(msg, v.keys.Quit):
		return true, tea.Quit
	case key.Matches(msg, v.keys.Back):
		// esc clears an applied filter
		return v.list.FilterState() != list.FilterApplied, nil
	case msg.String() == "?":
		v.mode = projectHelp
		return true, nil
	case key.Matches(msg, v.keys.New):
		v.mode = projectCreate
		v.form.reset("", "")
		return true, textinput.Blink
	case !selected:
		return false, nil
	case key.Matches(msg, v.keys.Enter):
		p := row.Project
		return true, func() tea.Msg { return SelectedProject{Project: p} }
	case key.Matches(msg, v.keys.Edit):
		v.mode = projectRename
		v.editing = row.ID
		v.form.reset(row.Title, row.Description)
		return true, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.mode = projectConfirmDelete
		v.target = row.ProjectSummary
		return true, nil
	}
	return false, nil
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = projectBrowse
		id, title := v.target.ID, v.target.Title
		return v, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			if err := v.env.DB.DeleteProject(ctx, id); err != nil {
				return v.env.fail(err, "delete project", "project", id)
			}
			v.env.Logger.Info("project deleted", "project", id, "title", title)
			return v.loadProjects()
		}
	case "n", "N", "esc":
		v.mode = projectBrowse
	}
	return v, nil
}

func (v *ProjectListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = projectBrowse
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.submitForm()
	case msg.String() == "shift+tab":
		v.form.setFocus(v.form.focus - 1)
		return v, nil
	case key.Matches(msg, v.keys.Tab):
		v.form.setFocus(v.form.focus + 1)
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if v.form.focus == 2 {
			return v, v.submitForm()
		}
		v.form.setFocus(v.form.focus + 1)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.form.focus {
	case 0:
		v.form.title, cmd = v.form.title.Update(msg)
	case 1:
		v.form.desc, cmd = v.form.desc.Update(msg)
	}
	return v, cmd
}

// submitForm creates or renames a project. A blank title keeps the form open.
func (v *ProjectListView) submitForm() tea.Cmd {
	title, desc := v.form.values()
	if title == "" {
		return nil
	}
	mode, id := v.mode, v.editing
	v.mode = projectBrowse

	if mode == projectRename {
		return func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			if err := v.env.DB.UpdateProject(ctx, id, title, desc); err != nil {
				return v.env.fail(err, "rename project", "project", id)
			}
			return projectSavedMsg{project: models.Project{ID: id, Title: title, Description: desc}}
		}
	}
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		project, err := v.env.DB.CreateProject(ctx, title, desc)
		if err != nil {
			return v.env.fail(err, "create project")
		}
		v.env.Logger.Info("project created", "project", project.ID, "title", project.Title)
		return SelectedProject{Project: *project}
	}
}

func (v *ProjectListView) View() string {
	switch v.mode {
	case projectHelp:
		return v.renderHelpPopup()
	case projectConfirmDelete:
		return v.renderDeleteConfirm()
	case projectCreate, projectRename:
		return v.renderForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	if len(v.list.Items()) == 0 && v.err == nil {
		return v.renderEmpty()
	}

	var b strings.Builder
	b.WriteString(v.list.View())
	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.FlashError.Render(v.err.Error()) + "\n")
	case v.flash != "":
		b.WriteString(v.styles.Flash.Render(v.flash) + "\n")
	}
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	return placeCenter(lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("Nothing here yet"),
		"",
		s.TitleMuted.Render("Press n to add a client or project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	), v.width, v.height)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	heading, button := "New Project", " Create "
	if v.mode == projectRename {
		heading, button = "Edit Project", " Save "
	}

	field := func(i int) lipgloss.Style {
		if v.form.focus == i {
			return s.InputFocused
		}
		return s.Input
	}
	btn := s.Button
	if v.form.focus == 2 {
		btn = s.ButtonFocused
	}

	w := clamp(styles.ContentWidth(v.width)-6, 20, 50)
	return placeCenter(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		s.FormLabel.Render("Title"),
		field(0).Width(w).Render(v.form.title.View()),
		"",
		s.FormLabel.Render("Description"),
		field(1).Width(w).Render(v.form.desc.View()),
		"",
		btn.Render(button),
		"",
		s.TitleMuted.Render("tab next • ctrl+s save • esc cancel"),
	), v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	s := v.styles
	if w := styles.ContentWidth(v.width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	pairs := [][2]string{{"↵", "open"}, {"n", "new"}, {"e", "edit"}, {"d", "del"}, {"/", "filter"}, {"q", "quit"}}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = s.HelpKey.Render(p[0]) + " " + p[1]
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	line := func(k, desc string) string {
		return s.HelpKey.Render(fmt.Sprintf("%-6s", k)) + " " + desc
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Projects"),
		"",
		line("↵", "open the task board"),
		line("n", "new project"),
		line("e", "edit title and description"),
		line("d", "delete project and its tasks"),
		line("/", "filter by name"),
		line("q", "quit"),
		"",
		s.TitleMuted.Render("any key closes this"),
	)
	return placeCenter(s.FilterBar.Render(content), v.width, v.height)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	return placeCenter(lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its %d open task(s) will be removed.",
			v.target.Title, v.target.OpenTasks)),
		"",
		confirmButtons(s),
	), v.width, v.height)
}
