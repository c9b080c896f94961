// Package domain provides core domain models and types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency codes the subsystem knows how to convert
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// InstrumentClass classifies a resolved security
type InstrumentClass string

const (
	ClassStock  InstrumentClass = "Stock"
	ClassETF    InstrumentClass = "ETF"
	ClassCrypto InstrumentClass = "Crypto"
	ClassBond   InstrumentClass = "Bond"
	ClassFund   InstrumentClass = "Fund"
)

// LookupKind selects how an identifier is resolved
type LookupKind string

const (
	LookupWKN    LookupKind = "wkn"
	LookupTicker LookupKind = "ticker"
)

var hundred = decimal.NewFromInt(100)

// Quote is raw provider output for one ticker. Request-scoped, never persisted as-is.
type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Currency      string          `json:"currency"`
}

// ChangePercent returns (price - previousClose) / previousClose * 100,
// or zero when the previous close is unknown.
func (q Quote) ChangePercent() decimal.Decimal {
	if q.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return q.Price.Sub(q.PreviousClose).Div(q.PreviousClose).Mul(hundred)
}

// Valid reports whether the quote carries a usable price.
func (q Quote) Valid() bool {
	return q.Price.IsPositive()
}

// QuoteDetail is a quote plus the instrument metadata the keyless provider returns alongside it.
type QuoteDetail struct {
	Quote
	Name           string `json:"name"`
	InstrumentType string `json:"instrument_type"`
	Exchange       string `json:"exchange"`
}

// SearchCandidate is one hit of a provider symbol search.
type SearchCandidate struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	QuoteType string `json:"quote_type"`
	Exchange  string `json:"exchange"`
}

// ResolvedSecurity is the result of identifier resolution. CurrentPrice is always EUR.
type ResolvedSecurity struct {
	Name            string          `json:"name"`
	Ticker          string          `json:"ticker"`
	Identifier      string          `json:"identifier,omitempty"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	Currency        string          `json:"currency"`
	InstrumentClass InstrumentClass `json:"instrumentClass"`
	Exchange        string          `json:"exchange"`
}

// BatchResult is one successfully refreshed ticker.
type BatchResult struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Currency      string          `json:"currency"`
	PriceEUR      decimal.Decimal `json:"priceEur"`
}

// PriceCacheEntry is the persisted last known price of a ticker.
type PriceCacheEntry struct {
	Ticker        string              `json:"ticker"`
	Price         decimal.Decimal     `json:"price"`
	ChangePercent decimal.NullDecimal `json:"changePercent"`
	Currency      string              `json:"currency"`
	LastUpdated   time.Time           `json:"lastUpdated"`
}

// Position is a holding row owned by the dashboard. The refresher only ever touches its price.
type Position struct {
	ID           int64               `json:"id"`
	Ticker       string              `json:"ticker"`
	Name         string              `json:"name"`
	CurrentPrice decimal.NullDecimal `json:"currentPrice"`
	AutoUpdate   bool                `json:"autoUpdate"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}
