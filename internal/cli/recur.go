package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/cadence/internal/recurrence"
)

func newRecurCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recur",
		Short: "Set, clear or preview a task's recurrence",
	}
	cmd.AddCommand(newRecurSetCmd(a), newRecurClearCmd(a), newRecurPreviewCmd(a))
	return cmd
}

func newRecurSetCmd(a *app) *cobra.Command {
	var rf ruleFlags
	cmd := &cobra.Command{
		Use:   "set <task-id> <pattern>",
		Short: "Make a task repeat",
		Example: `  cadence recur set 4 weekly --on mon,thu
  cadence recur set 7 monthly --day 31 --until 2026-12-31
  cadence recur set 9 daily --every 3 --after-completion`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.task(ctx, args[0])
			if err != nil {
				return err
			}
			rf.pattern = args[1]
			rule, err := rf.rule(t.DueDate)
			if err != nil {
				return err
			}

			t.Recurrence = rule
			if t.SeriesID == "" {
				t.SeriesID = a.ctl.NewSeriesID()
			}
			if err := a.db.UpdateTask(ctx, *t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d: %s\n", t.ID, describe(*t))
			if t.DueDate == nil && rule.Anchor == recurrence.AnchorScheduled {
				fmt.Fprintln(cmd.OutOrStdout(), "Note: the task has no due date, so completing it will not schedule another occurrence.")
			}
			return nil
		},
	}
	rf.register(cmd, "")
	return cmd
}

func newRecurClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <task-id>",
		Short: "Stop a task from repeating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t.Recurrence == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Task #%d does not repeat\n", t.ID)
				return nil
			}
			t.Recurrence = nil
			if err := a.db.UpdateTask(cmd.Context(), *t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d no longer repeats\n", t.ID)
			return nil
		},
	}
}

func newRecurPreviewCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "preview <task-id>",
		Short: "List the next due dates a task would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t.Recurrence == nil {
				return fmt.Errorf("task #%d does not repeat", t.ID)
			}

			anchor := t.DueDate
			if t.Recurrence.Anchor == recurrence.AnchorCompletion {
				// Assume it gets done today.
				today := recurrence.Day(a.ctl.Clock.Now())
				anchor = &today
			}
			if anchor == nil {
				return errors.New("task has no due date to count from")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", describe(*t))
			dates := a.cfg.Scheduler().Preview(*t.Recurrence, *anchor, count)
			if len(dates) == 0 {
				fmt.Fprintln(w, "No further occurrences.")
			}
			for _, d := range dates {
				fmt.Fprintf(w, "  %s\n", d.Format("Mon 2006-01-02"))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of dates to list")
	return cmd
}
