package prices

import (
	"context"
	"errors"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
)

// PriceApplier writes refreshed prices onto owned positions.
type PriceApplier interface {
	ApplyPrices(results []domain.BatchResult) (updated, skipped int, err error)
}

// CacheReader reads cached prices.
type CacheReader interface {
	Read(tickers []string) ([]domain.PriceCacheEntry, error)
}

// RefreshSummary is the outcome of a bulk refresh as reported to the caller.
type RefreshSummary struct {
	Prices       []domain.BatchResult `json:"prices"`
	UpdatedCount int                  `json:"updatedCount"`
	SkippedCount int                  `json:"skippedCount"`
}

// Service exposes the price operations used by handlers, the scheduler and the CLI.
type Service struct {
	refresher *Refresher
	cache     CacheReader
	applier   PriceApplier
	log       zerolog.Logger
}

// NewService creates a new prices service. applier may be nil, in which case
// refreshes only write the cache.
func NewService(refresher *Refresher, cache CacheReader, applier PriceApplier, log zerolog.Logger) *Service {
	return &Service{
		refresher: refresher,
		cache:     cache,
		applier:   applier,
		log:       log.With().Str("service", "prices").Logger(),
	}
}

// HasAPIKey reports whether the keyed refresh path can be used.
func (s *Service) HasAPIKey() bool {
	return s.refresher.HasAPIKey()
}

// Fetch refreshes tickers through the keyless provider and applies the prices.
func (s *Service) Fetch(ctx context.Context, tickers []string) (*RefreshSummary, error) {
	results, err := s.refresher.RefreshFallback(ctx, tickers)
	return s.apply(results, err)
}

// FetchKeyed refreshes tickers through the keyed provider and applies the prices.
// It returns domain.ErrMissingAPIKey without contacting any provider when no key is set.
func (s *Service) FetchKeyed(ctx context.Context, tickers []string) (*RefreshSummary, error) {
	results, err := s.refresher.RefreshKeyed(ctx, tickers)
	if errors.Is(err, domain.ErrMissingAPIKey) {
		return nil, err
	}
	return s.apply(results, err)
}

// Refresh picks the keyed path when a key is configured and the keyless one otherwise.
func (s *Service) Refresh(ctx context.Context, tickers []string) (*RefreshSummary, error) {
	if s.HasAPIKey() {
		return s.FetchKeyed(ctx, tickers)
	}
	return s.Fetch(ctx, tickers)
}

// GetCached returns cached entries for tickers without contacting a provider.
func (s *Service) GetCached(tickers []string) ([]domain.PriceCacheEntry, error) {
	return s.cache.Read(tickers)
}

// apply runs the caller-side application step. Partial results from an
// interrupted run are still applied; refreshErr is passed through.
func (s *Service) apply(results []domain.BatchResult, refreshErr error) (*RefreshSummary, error) {
	if results == nil {
		results = []domain.BatchResult{}
	}
	summary := &RefreshSummary{Prices: results}

	if s.applier != nil && len(results) > 0 {
		updated, skipped, err := s.applier.ApplyPrices(results)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to apply refreshed prices to positions")
		}
		summary.UpdatedCount = updated
		summary.SkippedCount = skipped
	}

	s.log.Info().
		Int("prices", len(results)).
		Int("updated", summary.UpdatedCount).
		Int("skipped", summary.SkippedCount).
		Msg("Price refresh applied")

	return summary, refreshErr
}
