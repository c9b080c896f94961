package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// BatchQuoteProvider fetches quotes for many provider symbols in one request.
// The returned map is keyed by the requested symbol; symbols without a usable
// quote are absent. A non-nil error means the whole request yielded nothing.
type BatchQuoteProvider interface {
	HasAPIKey() bool
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// QuoteProvider fetches a single quote with instrument metadata.
type QuoteProvider interface {
	Quote(ctx context.Context, ticker string) (*QuoteDetail, error)
}

// SymbolSearcher searches the provider's symbol universe.
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]SearchCandidate, error)
}

// ExchangeRateProvider returns the rate for a currency pair such as "EUR/USD".
type ExchangeRateProvider interface {
	ExchangeRate(ctx context.Context, pair string) (decimal.Decimal, error)
}

// EURConverter normalizes a quote into EUR. It never fails.
type EURConverter interface {
	EURPrice(ctx context.Context, quote Quote) decimal.Decimal
}
