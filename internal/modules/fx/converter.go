// Package fx normalizes quotes into EUR.
package fx

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Pair is the rate the converter fetches: USD per 1 EUR.
const Pair = "EUR/USD"

const (
	// DefaultTTL is how long a fetched rate is served before refetching.
	DefaultTTL = time.Hour
)

// DefaultFallbackRate is used until a rate has been fetched successfully.
var DefaultFallbackRate = decimal.RequireFromString("1.08")

// RateState is the converter's cached EUR/USD rate.
type RateState struct {
	Rate      decimal.Decimal
	FetchedAt time.Time
}

func (s RateState) known() bool {
	return s.Rate.IsPositive()
}

// Converter converts quotes to EUR using a cached EUR/USD rate.
type Converter struct {
	provider domain.ExchangeRateProvider
	ttl      time.Duration
	fallback decimal.Decimal
	now      func() time.Time
	log      zerolog.Logger

	mu    sync.RWMutex
	state RateState
	group singleflight.Group
}

// NewConverter creates a converter. A nil provider always uses the fallback rate.
func NewConverter(provider domain.ExchangeRateProvider, ttl time.Duration, fallback decimal.Decimal, log zerolog.Logger) *Converter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if !fallback.IsPositive() {
		fallback = DefaultFallbackRate
	}
	return &Converter{
		provider: provider,
		ttl:      ttl,
		fallback: fallback,
		now:      time.Now,
		log:      log.With().Str("service", "fx").Logger(),
	}
}

// SetClock replaces the converter's time source.
func (c *Converter) SetClock(now func() time.Time) {
	c.now = now
}

// State returns a snapshot of the cached rate.
func (c *Converter) State() RateState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// EURPrice returns the quote's price in EUR. It never fails: an unreachable
// rate source degrades to the last known rate, then to the fallback.
func (c *Converter) EURPrice(ctx context.Context, quote domain.Quote) decimal.Decimal {
	switch quote.Currency {
	case domain.CurrencyEUR:
		return quote.Price
	case domain.CurrencyUSD:
		return quote.Price.Div(c.Rate(ctx))
	default:
		// No conversion table beyond USD
		return quote.Price
	}
}

// Rate returns the EUR/USD rate, refreshing it when the cached value has expired.
func (c *Converter) Rate(ctx context.Context) decimal.Decimal {
	state := c.State()
	if state.known() && c.now().Sub(state.FetchedAt) < c.ttl {
		return state.Rate
	}

	v, _, _ := c.group.Do(Pair, func() (interface{}, error) {
		return c.refresh(ctx), nil
	})
	return v.(decimal.Decimal)
}

func (c *Converter) refresh(ctx context.Context) decimal.Decimal {
	// Another caller may have refreshed while we waited on the group
	state := c.State()
	if state.known() && c.now().Sub(state.FetchedAt) < c.ttl {
		return state.Rate
	}

	if c.provider != nil {
		rate, err := c.provider.ExchangeRate(ctx, Pair)
		if err == nil && rate.IsPositive() {
			c.mu.Lock()
			c.state = RateState{Rate: rate, FetchedAt: c.now()}
			c.mu.Unlock()
			c.log.Debug().Str("rate", rate.String()).Msg("Refreshed EUR/USD rate")
			return rate
		}
		c.log.Warn().Err(err).Msg("Failed to fetch EUR/USD rate, using fallback")
	}

	if state.known() {
		return state.Rate
	}
	return c.fallback
}

// StaticEUR converts with a fixed EUR/USD rate, for paths that do not warrant an FX request.
func StaticEUR(quote domain.Quote, eurUSD decimal.Decimal) decimal.Decimal {
	if quote.Currency == domain.CurrencyUSD && eurUSD.IsPositive() {
		return quote.Price.Div(eurUSD)
	}
	return quote.Price
}
