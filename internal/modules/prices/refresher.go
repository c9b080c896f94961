package prices

import (
	"context"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/events"
	"github.com/aristath/pricesync/internal/modules/symbols"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBatchSize keeps one batch under the keyed provider's per-minute
	// credit budget with room for the FX request.
	DefaultBatchSize = 7
	// DefaultBatchDelay lets the provider's credit window reset between batches.
	DefaultBatchDelay = 62 * time.Second

	providerKeyed    = "twelvedata"
	providerFallback = "yahoo"
	eventModule      = "prices"
)

// PriceCache persists the last known EUR price per ticker.
type PriceCache interface {
	Upsert(ticker string, priceEUR decimal.Decimal, changePercent decimal.NullDecimal) error
}

// EventEmitter publishes refresh progress.
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RefresherConfig holds the batching parameters.
type RefresherConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Refresher fetches quotes for ticker lists, converts them to EUR and writes the cache.
// A run is strictly sequential; provider requests are never issued in parallel.
type Refresher struct {
	mapper     *symbols.Mapper
	keyed      domain.BatchQuoteProvider
	fallback   domain.QuoteProvider
	converter  domain.EURConverter
	cache      PriceCache
	events     EventEmitter
	batchSize  int
	batchDelay time.Duration
	sleep      SleepFunc
	now        func() time.Time
	log        zerolog.Logger
}

// NewRefresher creates a new price refresher. events may be nil.
func NewRefresher(
	cfg RefresherConfig,
	mapper *symbols.Mapper,
	keyed domain.BatchQuoteProvider,
	fallback domain.QuoteProvider,
	converter domain.EURConverter,
	cache PriceCache,
	emitter EventEmitter,
	log zerolog.Logger,
) *Refresher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	return &Refresher{
		mapper:     mapper,
		keyed:      keyed,
		fallback:   fallback,
		converter:  converter,
		cache:      cache,
		events:     emitter,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		sleep:      sleepContext,
		now:        time.Now,
		log:        log.With().Str("service", "price_refresher").Logger(),
	}
}

// SetSleep replaces the inter-batch pause.
func (r *Refresher) SetSleep(fn SleepFunc) {
	r.sleep = fn
}

// HasAPIKey reports whether the keyed path is usable.
func (r *Refresher) HasAPIKey() bool {
	return r.keyed != nil && r.keyed.HasAPIKey()
}

// RefreshKeyed refreshes tickers through the keyed provider in batches, pausing
// between batches. Tickers keep caller order and are not deduplicated.
//
// A missing key fails before any request. After that nothing fails the run:
// a failed batch contributes no results and the loop moves on. If ctx ends while
// waiting between batches, the results gathered so far are returned with ctx.Err().
func (r *Refresher) RefreshKeyed(ctx context.Context, tickers []string) ([]domain.BatchResult, error) {
	if !r.HasAPIKey() {
		return nil, domain.ErrMissingAPIKey
	}

	runID := uuid.New().String()
	started := r.now()
	batches := partition(tickers, r.batchSize)
	log := r.log.With().Str("run_id", runID).Logger()

	log.Info().
		Int("tickers", len(tickers)).
		Int("batches", len(batches)).
		Msg("Starting keyed price refresh")
	r.emit(&events.RefreshStartedData{RunID: runID, Provider: providerKeyed, Tickers: len(tickers), Batches: len(batches)})

	results := make([]domain.BatchResult, 0, len(tickers))
	for i, batch := range batches {
		batchResults, err := r.refreshBatch(ctx, batch)
		results = append(results, batchResults...)

		completed := &events.BatchCompletedData{
			RunID:     runID,
			Batch:     i + 1,
			Batches:   len(batches),
			Requested: len(batch),
			Received:  len(batchResults),
		}
		if err != nil {
			completed.Error = err.Error()
			log.Warn().Err(err).Int("batch", i+1).Strs("tickers", batch).Msg("Batch request failed, continuing")
		}
		r.emit(completed)

		if i == len(batches)-1 {
			break
		}

		r.emit(&events.BatchWaitingData{
			RunID:     runID,
			NextBatch: i + 2,
			Seconds:   r.batchDelay.Seconds(),
			ResumeAt:  r.now().Add(r.batchDelay),
		})
		log.Debug().Dur("delay", r.batchDelay).Int("next_batch", i+2).Msg("Waiting for rate limit window")

		if err := r.sleep(ctx, r.batchDelay); err != nil {
			log.Warn().Err(err).Int("completed_batches", i+1).Msg("Price refresh interrupted")
			r.finish(runID, providerKeyed, len(tickers), len(results), started, true)
			return results, err
		}
	}

	r.finish(runID, providerKeyed, len(tickers), len(results), started, false)
	return results, nil
}

// refreshBatch issues one request for the batch and caches every valid quote.
// A dispatched request is allowed to complete even if ctx is canceled meanwhile.
func (r *Refresher) refreshBatch(ctx context.Context, batch []string) ([]domain.BatchResult, error) {
	requestSymbols := make([]string, len(batch))
	for i, ticker := range batch {
		requestSymbols[i] = r.mapper.Map(ticker).RequestSymbol()
	}

	ctx = context.WithoutCancel(ctx)
	quotes, err := r.keyed.Quotes(ctx, requestSymbols)
	if err != nil {
		return nil, err
	}

	results := make([]domain.BatchResult, 0, len(batch))
	for i, ticker := range batch {
		quote, ok := quotes[requestSymbols[i]]
		if !ok || !quote.Valid() {
			r.log.Debug().Str("ticker", ticker).Str("symbol", requestSymbols[i]).Msg("No quote for ticker")
			continue
		}
		results = append(results, r.record(ctx, ticker, quote))
	}
	return results, nil
}

// RefreshFallback refreshes tickers one request at a time through the keyless
// provider. There is no batching and no pause. Failed tickers are skipped.
func (r *Refresher) RefreshFallback(ctx context.Context, tickers []string) ([]domain.BatchResult, error) {
	runID := uuid.New().String()
	started := r.now()
	log := r.log.With().Str("run_id", runID).Logger()

	log.Info().Int("tickers", len(tickers)).Msg("Starting fallback price refresh")
	r.emit(&events.RefreshStartedData{RunID: runID, Provider: providerFallback, Tickers: len(tickers), Batches: len(tickers)})

	results := make([]domain.BatchResult, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("fetched", len(results)).Msg("Price refresh interrupted")
			r.finish(runID, providerFallback, len(tickers), len(results), started, true)
			return results, err
		}

		detail, err := r.fallback.Quote(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch quote")
			continue
		}
		if !detail.Valid() {
			log.Warn().Str("ticker", ticker).Msg("Quote has no usable price")
			continue
		}
		results = append(results, r.record(ctx, ticker, detail.Quote))
	}

	r.finish(runID, providerFallback, len(tickers), len(results), started, false)
	return results, nil
}

// record converts the quote, writes the cache and builds the result.
// A cache write failure is logged; the fetched price is still reported.
func (r *Refresher) record(ctx context.Context, ticker string, quote domain.Quote) domain.BatchResult {
	priceEUR := r.converter.EURPrice(ctx, quote)
	change := quote.ChangePercent()

	if err := r.cache.Upsert(ticker, priceEUR, decimal.NewNullDecimal(change)); err != nil {
		r.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to update price cache")
	}

	return domain.BatchResult{
		Ticker:        ticker,
		Price:         quote.Price,
		ChangePercent: change,
		Currency:      quote.Currency,
		PriceEUR:      priceEUR,
	}
}

func (r *Refresher) finish(runID, provider string, requested, fetched int, started time.Time, canceled bool) {
	elapsed := r.now().Sub(started)
	r.log.Info().
		Str("run_id", runID).
		Str("provider", provider).
		Int("requested", requested).
		Int("fetched", fetched).
		Dur("elapsed", elapsed).
		Msg("Price refresh finished")
	r.emit(&events.RefreshCompletedData{
		RunID:      runID,
		Provider:   provider,
		Requested:  requested,
		Fetched:    fetched,
		DurationMs: elapsed.Milliseconds(),
		Canceled:   canceled,
	})
}

func (r *Refresher) emit(data events.EventData) {
	if r.events != nil {
		r.events.Emit(eventModule, data)
	}
}

// partition splits tickers into consecutive chunks of at most size.
func partition(tickers []string, size int) [][]string {
	if len(tickers) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(tickers)+size-1)/size)
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		chunks = append(chunks, tickers[start:end])
	}
	return chunks
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
