// Package twelvedata provides a client for the Twelve Data market data API.
// Twelve Data is the keyed quote provider: batch quotes and exchange rates are
// billed in credits against a per-minute budget, so callers batch requests.
package twelvedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/httpx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.twelvedata.com"

// quoteResponse is one symbol's entry in a /quote response.
// Prices arrive as strings; error entries carry code/status instead.
type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`

	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r quoteResponse) isError() bool {
	return r.Status == "error" || r.Code != 0
}

// exchangeRateResponse is the /exchange_rate payload.
type exchangeRateResponse struct {
	Symbol    string          `json:"symbol"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp int64           `json:"timestamp"`

	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client is the Twelve Data API client.
type Client struct {
	baseURL string
	apiKey  func() string
	http    *httpx.Client
	log     zerolog.Logger
}

// NewClient creates a new Twelve Data client.
// apiKey is consulted on every request so a rotated key applies immediately.
func NewClient(baseURL string, apiKey func() string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if apiKey == nil {
		apiKey = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpx.New(timeout),
		log:     log.With().Str("client", "twelvedata").Logger(),
	}
}

// HasAPIKey reports whether a key is currently configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey() != ""
}

// Quotes fetches quotes for all symbols in a single request.
// Symbols whose entry is missing, carries an error code or has no parsable close
// are logged and left out of the result; they never fail the batch.
// The returned error is reserved for a missing key and request-level failures.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	key := c.apiKey()
	if key == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if len(symbols) == 0 {
		return map[string]domain.Quote{}, nil
	}

	unique := uniqueSymbols(symbols)

	params := url.Values{}
	params.Set("symbol", strings.Join(unique, ","))
	params.Set("apikey", key)

	body, err := c.http.Get(ctx, c.baseURL+"/quote?"+params.Encode())
	if err != nil {
		c.log.Warn().Err(err).Strs("symbols", unique).Msg("Quote request failed")
		return nil, fmt.Errorf("twelvedata quote request failed: %w", err)
	}

	entries, err := splitQuoteBody(body, unique)
	if err != nil {
		c.log.Warn().Err(err).Strs("symbols", unique).Msg("Quote request rejected")
		return nil, err
	}

	quotes := make(map[string]domain.Quote, len(unique))
	for _, symbol := range unique {
		entry, ok := entries[symbol]
		if !ok {
			c.log.Warn().Str("symbol", symbol).Msg("Symbol missing from quote response")
			continue
		}
		if entry.isError() {
			c.log.Warn().
				Str("symbol", symbol).
				Int("code", entry.Code).
				Str("message", entry.Message).
				Msg("Provider returned error for symbol")
			continue
		}

		quote, err := entry.toQuote(symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Malformed quote, skipping")
			continue
		}
		quotes[symbol] = quote
	}

	c.log.Debug().
		Int("requested", len(unique)).
		Int("received", len(quotes)).
		Msg("Fetched quotes")

	return quotes, nil
}

// ExchangeRate returns the rate for a pair like "EUR/USD" (units of quote currency per base unit).
func (c *Client) ExchangeRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	key := c.apiKey()
	if key == "" {
		return decimal.Zero, domain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("symbol", pair)
	params.Set("apikey", key)

	body, err := c.http.Get(ctx, c.baseURL+"/exchange_rate?"+params.Encode())
	if err != nil {
		return decimal.Zero, fmt.Errorf("twelvedata exchange rate request failed: %w", err)
	}

	var resp exchangeRateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode exchange rate: %w", err)
	}
	if resp.Status == "error" || resp.Code != 0 {
		return decimal.Zero, fmt.Errorf("twelvedata error %d: %s", resp.Code, resp.Message)
	}
	if !resp.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid exchange rate %s for %s", resp.Rate, pair)
	}

	c.log.Info().Str("pair", pair).Str("rate", resp.Rate.String()).Msg("Fetched rate")
	return resp.Rate, nil
}

// splitQuoteBody normalizes the two response shapes: a single-symbol request returns
// the quote object itself, a multi-symbol request returns an object keyed by symbol.
func splitQuoteBody(body []byte, symbols []string) (map[string]quoteResponse, error) {
	if len(symbols) == 1 {
		var single quoteResponse
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("failed to decode quote response: %w", err)
		}
		return map[string]quoteResponse{symbols[0]: single}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	// A request-level error (bad key, exhausted credits) comes back as a single error object.
	if status, ok := raw["status"]; ok && bytes.Equal(bytes.TrimSpace(status), []byte(`"error"`)) {
		var top quoteResponse
		_ = json.Unmarshal(body, &top)
		return nil, fmt.Errorf("twelvedata error %d: %s", top.Code, top.Message)
	}

	entries := make(map[string]quoteResponse, len(raw))
	for symbol, msg := range raw {
		var entry quoteResponse
		if err := json.Unmarshal(msg, &entry); err != nil {
			// Leave it out; the caller reports it as missing
			continue
		}
		entries[symbol] = entry
	}
	return entries, nil
}

func (r quoteResponse) toQuote(symbol string) (domain.Quote, error) {
	price, err := decimal.NewFromString(r.Close)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("invalid close %q: %w", r.Close, err)
	}
	if !price.IsPositive() {
		return domain.Quote{}, fmt.Errorf("non-positive close %s", price)
	}

	previousClose := decimal.Zero
	if r.PreviousClose != "" {
		if pc, err := decimal.NewFromString(r.PreviousClose); err == nil {
			previousClose = pc
		}
	}

	return domain.Quote{
		Ticker:        symbol,
		Price:         price,
		PreviousClose: previousClose,
		Currency:      r.currency(symbol),
	}, nil
}

// currency returns the quote currency. Crypto pairs omit "currency"; their quote
// currency is the second half of the pair.
func (r quoteResponse) currency(symbol string) string {
	if r.Currency != "" {
		return strings.ToUpper(r.Currency)
	}
	pair := symbol
	if i := strings.Index(pair, ":"); i >= 0 {
		pair = pair[:i]
	}
	if i := strings.Index(pair, "/"); i >= 0 {
		return strings.ToUpper(pair[i+1:])
	}
	return domain.CurrencyUSD
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
