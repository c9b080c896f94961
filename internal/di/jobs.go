// Package di provides dependency injection for scheduler jobs.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/pricesync/internal/config"
	"github.com/aristath/pricesync/internal/scheduler"
	"github.com/rs/zerolog"
)

// checkDatabaseSchedule runs the integrity check daily at 03:00
const checkDatabaseSchedule = "0 0 3 * * *"

// RegisterJobs creates the background jobs and registers them with sched.
// The price refresh job is only scheduled when PRICE_REFRESH_SCHEDULE is set.
// ctx bounds running refreshes; cancel it on shutdown.
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	priceRefresh := scheduler.NewPriceRefreshJob(ctx, container.PositionRepo, container.PriceService)
	priceRefresh.SetLogger(log.With().Str("job", "price_refresh").Logger())
	if container.EventManager != nil {
		priceRefresh.SetErrorReporter(container.EventManager)
	}
	instances.PriceRefresh = priceRefresh

	var db scheduler.DatabaseChecker
	if container.DB != nil {
		db = container.DB
	}
	checkDatabase := scheduler.NewCheckDatabaseJob(db)
	checkDatabase.SetLogger(log.With().Str("job", "check_database").Logger())
	instances.CheckDatabase = checkDatabase

	if sched == nil {
		return instances, nil
	}

	if cfg.PriceRefreshSchedule != "" {
		if err := sched.AddJob(cfg.PriceRefreshSchedule, priceRefresh); err != nil {
			return nil, fmt.Errorf("failed to schedule price refresh %q: %w", cfg.PriceRefreshSchedule, err)
		}
	} else {
		log.Info().Msg("PRICE_REFRESH_SCHEDULE not set, scheduled price refresh disabled")
	}

	if err := sched.AddJob(checkDatabaseSchedule, checkDatabase); err != nil {
		return nil, fmt.Errorf("failed to schedule database check: %w", err)
	}

	return instances, nil
}
