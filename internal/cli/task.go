package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect and move tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskShowCmd(a),
		newTaskStatusCmd(a),
		newTaskDoneCmd(a),
		newTaskCommentCmd(a),
		newTaskDeleteCmd(a),
		newTaskExportCmd(a),
	)
	return cmd
}

func newTaskAddCmd(a *app) *cobra.Command {
	var (
		projectID   int64
		description string
		notes       string
		assignee    string
		priority    int
		due         string
		rf          ruleFlags
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.db.GetProject(ctx, projectID); err != nil {
				return err
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			rule, err := rf.rule(dueDate)
			if err != nil {
				return err
			}

			t := models.Task{
				ProjectID:   projectID,
				Title:       strings.Join(args, " "),
				Description: description,
				Notes:       notes,
				Assignee:    assignee,
				Priority:    priority,
				Status:      a.statuses.Initial(),
				DueDate:     dueDate,
				CreatedBy:   a.cfg.Actor,
				Recurrence:  rule,
			}
			if rule != nil {
				t.SeriesID = a.ctl.NewSeriesID()
			}

			created, err := a.db.CreateTask(ctx, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %s\n", created.ID, created.Title)
			if created.Recurrence != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", describe(*created))
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "project id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority (higher first)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD, today, tomorrow)")
	rf.register(cmd, "repeat")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var (
		projectID int64
		status    string
		assignee  string
		search    string
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, earliest due first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := db.TaskFilter{
				ProjectID: projectID,
				Status:    models.Status(status),
				Assignee:  assignee,
				Search:    search,
			}
			if !all && status == "" {
				f.ExcludeStatus = a.statuses.Terminal()
			}
			tasks, err := a.db.ListTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			return renderTasks(cmd.OutOrStdout(), tasks, a.statuses)
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "only this project")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only this status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "only this assignee")
	cmd.Flags().StringVar(&search, "search", "", "match title or description")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func newTaskShowCmd(a *app) *cobra.Command {
	var upcoming int
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with subtasks, comments and upcoming dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.task(ctx, args[0])
			if err != nil {
				return err
			}
			comments, err := a.db.ListComments(ctx, t.ID)
			if err != nil {
				return err
			}
			t.Comments = comments

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "#%d %s\n", t.ID, t.Title)
			fmt.Fprintf(w, "Status:   %s\n", a.statuses.Label(t.Status))
			if t.DueDate != nil {
				fmt.Fprintf(w, "Due:      %s\n", t.DueDate.Format(recurrence.DateLayout))
			}
			if t.Assignee != "" {
				fmt.Fprintf(w, "Assignee: %s\n", t.Assignee)
			}
			if t.CompletedAt != nil {
				fmt.Fprintf(w, "Done:     %s by %s\n", t.CompletedAt.Format("2006-01-02 15:04"), t.CompletedBy)
			}
			if t.Description != "" {
				fmt.Fprintf(w, "\n%s\n", t.Description)
			}
			if t.Notes != "" {
				fmt.Fprintf(w, "\nNotes: %s\n", t.Notes)
			}
			if t.Recurrence != nil {
				fmt.Fprintf(w, "\n%s\n", describe(*t))
				if t.DueDate != nil && t.Recurrence.Anchor == recurrence.AnchorScheduled && upcoming > 0 {
					for _, d := range a.cfg.Scheduler().Preview(*t.Recurrence, *t.DueDate, upcoming) {
						fmt.Fprintf(w, "  next: %s\n", d.Format("Mon 2006-01-02"))
					}
				}
			}
			if len(t.Subtasks) > 0 {
				fmt.Fprintf(w, "\nSubtasks (%d open)\n", t.IncompleteSubtasks())
				for _, st := range t.Subtasks {
					mark := " "
					if st.Completed {
						mark = "x"
					}
					fmt.Fprintf(w, "  [%s] %s (#%d)\n", mark, st.Title, st.ID)
				}
			}
			if len(t.Comments) > 0 {
				fmt.Fprintln(w, "\nComments")
				for _, c := range t.Comments {
					fmt.Fprintf(w, "  %s  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Content)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&upcoming, "upcoming", "n", 3, "number of future occurrences to list")
	return cmd
}

func newTaskStatusCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Move a task to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeStatus(cmd, args[0], models.Status(args[1]), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "complete even with open subtasks")
	return cmd
}

func newTaskDoneCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeStatus(cmd, args[0], a.statuses.Terminal(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "complete even with open subtasks")
	return cmd
}

func (a *app) changeStatus(cmd *cobra.Command, arg string, next models.Status, confirmed bool) error {
	ctx := cmd.Context()
	t, err := a.task(ctx, arg)
	if err != nil {
		return err
	}

	res, err := a.ctl.RequestStatusChange(ctx, a.cfg.Actor, *t, next, confirmed)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch res.Outcome {
	case lifecycle.Unchanged:
		fmt.Fprintf(w, "Task #%d is already %s\n", t.ID, a.statuses.Label(next))
	case lifecycle.ConfirmationRequired:
		fmt.Fprintf(w, "Task #%d has %d open subtask(s). Re-run with --yes to mark it %s anyway.\n",
			t.ID, res.OpenSubtasks, a.statuses.Label(next))
	case lifecycle.Applied:
		fmt.Fprintf(w, "Task #%d is now %s\n", t.ID, a.statuses.Label(res.Task.Status))
		if s := res.Successor; s != nil {
			fmt.Fprintf(w, "Next occurrence #%d due %s\n", s.ID, s.DueDate.Format(recurrence.DateLayout))
		}
		if res.SeriesEnded {
			fmt.Fprintln(w, "The series has ended; no further occurrence was created.")
		}
	}
	return nil
}

func newTaskCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <task-id> <text>",
		Short: "Add a comment to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := a.db.AddComment(cmd.Context(), t.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment #%d to task #%d\n", c.ID, t.ID)
			return nil
		},
	}
}

func newTaskDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task with its subtasks and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.db.DeleteTask(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", t.ID)
			return nil
		},
	}
}

func newTaskExportCmd(a *app) *cobra.Command {
	var (
		projectID int64
		format    string
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as YAML or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := db.TaskFilter{ProjectID: projectID}
			if !all {
				f.ExcludeStatus = a.statuses.Terminal()
			}
			tasks, err := a.db.ListTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			records := make([]models.Record, 0, len(tasks))
			for _, t := range tasks {
				records = append(records, models.ToRecord(t))
			}
			return writeRecords(cmd.OutOrStdout(), format, records)
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "only this project")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "yaml or json")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func writeRecords(w io.Writer, format string, records []models.Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want yaml or json)", format)
}

func renderTasks(w io.Writer, tasks []models.Task, statuses lifecycle.StatusSet) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "DUE", "STATUS", "TITLE", "REPEATS")
	for _, task := range tasks {
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.Format(recurrence.DateLayout)
		}
		repeats := ""
		if task.Recurrence != nil {
			repeats = describe(task)
		}
		title := task.Title
		if open := task.IncompleteSubtasks(); open > 0 {
			title += fmt.Sprintf(" (%d/%d)", len(task.Subtasks)-open, len(task.Subtasks))
		}
		t.Row(strconv.FormatInt(task.ID, 10), due, statuses.Label(task.Status), title, repeats)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// describe summarizes a task's recurrence
func describe(t models.Task) string {
	var due time.Time
	if t.DueDate != nil {
		due = *t.DueDate
	}
	return recurrence.Describe(*t.Recurrence, due)
}
