package scheduler

import (
	"context"
	"fmt"

	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/rs/zerolog"
)

// TickerSource lists the tickers to keep fresh
type TickerSource interface {
	Tickers() ([]string, error)
}

// PriceRefresher runs a refresh on whichever provider path is available
type PriceRefresher interface {
	Refresh(ctx context.Context, tickers []string) (*prices.RefreshSummary, error)
}

// ErrorReporter publishes failures of unattended runs
type ErrorReporter interface {
	EmitError(module string, err error, context map[string]interface{})
}

// PriceRefreshJob refreshes the price of every held ticker and applies it to positions
type PriceRefreshJob struct {
	ctx       context.Context
	tickers   TickerSource
	refresher PriceRefresher
	errors    ErrorReporter
	log       zerolog.Logger
}

// NewPriceRefreshJob creates a new PriceRefreshJob. Canceling ctx interrupts a
// running refresh between batches.
func NewPriceRefreshJob(ctx context.Context, tickers TickerSource, refresher PriceRefresher) *PriceRefreshJob {
	return &PriceRefreshJob{
		ctx:       ctx,
		tickers:   tickers,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *PriceRefreshJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// SetErrorReporter publishes failed runs, e.g. to the event stream
func (j *PriceRefreshJob) SetErrorReporter(errors ErrorReporter) {
	j.errors = errors
}

// Name returns the job name
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run executes the price refresh job
func (j *PriceRefreshJob) Run() error {
	err := j.run()
	if err != nil && j.errors != nil {
		j.errors.EmitError("scheduler", err, map[string]interface{}{"job": j.Name()})
	}
	return err
}

func (j *PriceRefreshJob) run() error {
	tickers, err := j.tickers.Tickers()
	if err != nil {
		return fmt.Errorf("failed to list position tickers: %w", err)
	}
	if len(tickers) == 0 {
		j.log.Debug().Msg("No positions, skipping price refresh")
		return nil
	}

	summary, err := j.refresher.Refresh(j.ctx, tickers)
	if summary == nil {
		return fmt.Errorf("price refresh failed: %w", err)
	}

	j.log.Info().
		Int("tickers", len(tickers)).
		Int("prices", len(summary.Prices)).
		Int("updated", summary.UpdatedCount).
		Int("skipped", summary.SkippedCount).
		Msg("Scheduled price refresh completed")

	if err != nil {
		return fmt.Errorf("price refresh interrupted: %w", err)
	}
	return nil
}
