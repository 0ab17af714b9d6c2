package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Inspect or stop the occurrences of a recurring task",
	}
	cmd.AddCommand(newSeriesShowCmd(a), newSeriesStopCmd(a))
	return cmd
}

func newSeriesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "List every occurrence in the task's series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t.SeriesID == "" {
				return fmt.Errorf("task #%d is not part of a series", t.ID)
			}
			tasks, err := a.db.ListSeries(cmd.Context(), t.SeriesID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Series %s\n", t.SeriesID)
			return renderTasks(cmd.OutOrStdout(), tasks, a.statuses)
		},
	}
}

func newSeriesStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <task-id>",
		Short: "Stop the series so no further occurrences are created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t.SeriesID == "" {
				return fmt.Errorf("task #%d is not part of a series", t.ID)
			}
			n, err := a.db.StopSeries(cmd.Context(), t.SeriesID, a.statuses.Terminal())
			if err != nil {
				return err
			}
			a.logger.Info("series stopped", "series_id", t.SeriesID, "tasks", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped series %s (%d open task(s) no longer repeat)\n", t.SeriesID, n)
			return nil
		},
	}
}
