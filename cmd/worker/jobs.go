package main

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/app"
	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/scheduler"
)

// rolloverJob moves the configured user's overdue tasks onto today. The
// handler records the run date, so a restart on the same day is a no-op.
func rolloverJob(c *app.Container) scheduler.Job {
	return func(ctx context.Context) error {
		result, err := c.RolloverHandler.Handle(ctx, commands.RolloverCommand{UserID: c.Config.UserUUID()})
		if err != nil {
			return fmt.Errorf("rollover: %w", err)
		}
		if result.Skipped {
			c.Logger.Debug("rollover already ran", "date", domain.FormatDate(result.Date))
			return nil
		}
		failed := commands.Failed(result.Items)
		c.Logger.Info("rollover completed",
			"date", domain.FormatDate(result.Date),
			"moved", len(result.Items)-len(failed),
			"failed", len(failed),
		)
		return c.FlushOutbox(ctx)
	}
}

func outboxCleanupJob(c *app.Container) scheduler.Job {
	return func(ctx context.Context) error {
		deleted, err := c.OutboxRepo.DeleteOld(ctx, c.Config.OutboxRetentionDays)
		if err != nil {
			return fmt.Errorf("outbox cleanup: %w", err)
		}
		if deleted > 0 {
			c.Logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", c.Config.OutboxRetentionDays)
		}
		return nil
	}
}

func outboxStatsJob(c *app.Container) scheduler.Job {
	return func(ctx context.Context) error {
		stats := c.OutboxProcessor().GetStats()
		c.Logger.Info("outbox stats",
			"running", stats.IsRunning,
			"published", stats.PublishedCount,
			"failed", stats.FailedCount,
			"dead", stats.DeadCount,
			"lag_seconds", stats.LagSeconds,
			"last_error", stats.LastError,
		)
		return nil
	}
}

// registerJobs schedules the worker's recurring jobs in the planner's time
// zone.
func registerJobs(s *scheduler.Scheduler, c *app.Container) error {
	cfg := c.Config
	if cfg.RolloverSchedule != "" {
		if _, err := s.Add("rollover", cfg.RolloverSchedule, rolloverJob(c)); err != nil {
			return err
		}
	}
	if cfg.OutboxCleanupInterval > 0 {
		if _, err := s.Every("outbox-cleanup", cfg.OutboxCleanupInterval, outboxCleanupJob(c)); err != nil {
			return err
		}
	}
	if cfg.OutboxStatsInterval > 0 {
		if _, err := s.Every("outbox-stats", cfg.OutboxStatsInterval, outboxStatsJob(c)); err != nil {
			return err
		}
	}
	return nil
}

func plannerLocation(c *app.Container) *time.Location {
	return c.Planner.Config().Loc()
}
