package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectAddCmd(a), newProjectListCmd(a))
	return cmd
}

func newProjectAddCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.db.CreateProject(cmd.Context(), strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project #%d %s\n", p.ID, p.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func newProjectListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with open task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.db.ListProjects(cmd.Context(), a.statuses.Terminal())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects. Create one with: cadence project add <title>")
				return nil
			}
			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("ID", "TITLE", "OPEN", "RECURRING", "NEXT DUE")
			for _, p := range projects {
				next := p.NextDue
				if next == "" {
					next = "-"
				}
				t.Row(strconv.FormatInt(p.ID, 10), p.Title, strconv.Itoa(p.OpenTasks), strconv.Itoa(p.Recurring), next)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}
