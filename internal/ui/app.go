package ui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/ui/views"
)

// Env carries the store, controller and settings into the views
type Env = views.Env

// lastProjectKey remembers the project open when the app was closed
const lastProjectKey = "last_project_id"

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

type App struct {
	env         Env
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	width       int
	height      int
}

// NewApp creates the root model
func NewApp(env Env) *App {
	return &App{
		env:         env,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(env),
	}
}

func (a *App) Init() tea.Cmd {
	if p := a.lastProject(); p != nil {
		return a.openProject(*p)
	}
	return a.projectList.Init()
}

// lastProject returns the remembered project, or nil when there is none or
// it has been deleted since
func (a *App) lastProject() *models.Project {
	ctx := context.Background()
	value, err := a.env.DB.GetSetting(ctx, lastProjectKey)
	if err != nil || value == "" {
		return nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	p, err := a.env.DB.GetProject(ctx, id)
	if err != nil {
		a.env.Logger.Debug("last project unavailable", "project", id, "error", err)
		return nil
	}
	return p
}

func (a *App) remember(value string) {
	if err := a.env.DB.SetSetting(context.Background(), lastProjectKey, value); err != nil {
		a.env.Logger.Warn("save setting", "key", lastProjectKey, "error", err)
	}
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.env, project)
	a.remember(strconv.FormatInt(project.ID, 10))
	a.env.Logger.Debug("project opened", "project", project.ID)
	return tea.Batch(a.taskList.Init(), a.resize)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// the project list persists behind the task list
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.taskList = nil
		a.remember("")
		return a, tea.Batch(a.projectList.Init(), a.resize)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewTasks && a.taskList != nil {
		return a.taskList.View()
	}
	return a.projectList.View()
}
