package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/cadence/internal/agenda"
)

func newAgendaCmd(a *app) *cobra.Command {
	var (
		days     int
		watch    bool
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show overdue, today's and upcoming tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Agenda.HorizonDays
			}
			if schedule == "" {
				schedule = a.cfg.Agenda.Schedule
			}
			b := agenda.Builder{
				Tasks:       a.db,
				Statuses:    a.statuses,
				Scheduler:   a.cfg.Scheduler(),
				HorizonDays: days,
			}
			run := func(ctx context.Context) error {
				d, err := b.Build(ctx, time.Now())
				if err != nil {
					return err
				}
				return agenda.Render(cmd.OutOrStdout(), d, a.statuses)
			}

			if err := run(cmd.Context()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			next, err := agenda.NextRun(schedule, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching (%s), next run %s. Ctrl+C to stop.\n",
				schedule, next.Format("Mon Jan 2 15:04"))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return agenda.Watch(ctx, schedule, a.logger, func(ctx context.Context) error {
				fmt.Fprintln(cmd.OutOrStdout())
				return run(ctx)
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "how many days ahead count as upcoming")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and print the agenda on a schedule")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression for --watch (default from config)")
	return cmd
}
