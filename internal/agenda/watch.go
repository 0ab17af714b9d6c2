package agenda

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// NextRun returns the first time after now that schedule fires
func NextRun(schedule string, now time.Time) (time.Time, error) {
	s, err := rcron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	return s.Next(now), nil
}

// Watch calls run on every tick of the cron schedule until ctx is done.
// Runs never overlap; a tick that arrives while run is busy is skipped.
func Watch(ctx context.Context, schedule string, logger *slog.Logger, run func(context.Context) error) error {
	c := rcron.New(rcron.WithChain(rcron.SkipIfStillRunning(rcron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		if err := run(ctx); err != nil {
			logger.ErrorContext(ctx, "agenda run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.InfoContext(ctx, "agenda watch started", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.InfoContext(ctx, "agenda watch stopped")
	return nil
}
