// Package yahoo provides a client for the keyless Yahoo Finance endpoints.
// It is used for identifier resolution and as the fallback quote source.
package yahoo

import (
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

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	// Yahoo rejects requests without a browser-like agent.
	userAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	searchLimit = 10
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta chartMeta `json:"meta"`
}

type chartMeta struct {
	Symbol             string           `json:"symbol"`
	Currency           string           `json:"currency"`
	ExchangeName       string           `json:"exchangeName"`
	FullExchangeName   string           `json:"fullExchangeName"`
	InstrumentType     string           `json:"instrumentType"`
	LongName           string           `json:"longName"`
	ShortName          string           `json:"shortName"`
	RegularMarketPrice *decimal.Decimal `json:"regularMarketPrice"`
	PreviousClose      *decimal.Decimal `json:"previousClose"`
	ChartPreviousClose *decimal.Decimal `json:"chartPreviousClose"`
}

type searchResponse struct {
	Quotes []searchQuote `json:"quotes"`
}

type searchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
	Exchange  string `json:"exchange"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Client is the Yahoo Finance client.
type Client struct {
	baseURL string
	http    *httpx.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	h := httpx.New(timeout)
	h.UserAgent = userAgent
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    h,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// Quote fetches the latest price and instrument metadata for a Yahoo ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*domain.QuoteDetail, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("Chart request failed")
		return nil, fmt.Errorf("yahoo quote %s: %w", ticker, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chart for %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error for %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil || !meta.RegularMarketPrice.IsPositive() {
		return nil, fmt.Errorf("no market price for %s", ticker)
	}

	previousClose := decimal.Zero
	switch {
	case meta.PreviousClose != nil:
		previousClose = *meta.PreviousClose
	case meta.ChartPreviousClose != nil:
		previousClose = *meta.ChartPreviousClose
	}

	currency := strings.ToUpper(meta.Currency)
	if currency == "" {
		currency = domain.CurrencyUSD
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}

	return &domain.QuoteDetail{
		Quote: domain.Quote{
			Ticker:        ticker,
			Price:         *meta.RegularMarketPrice,
			PreviousClose: previousClose,
			Currency:      currency,
		},
		Name:           name,
		InstrumentType: meta.InstrumentType,
		Exchange:       meta.ExchangeName,
	}, nil
}

// Search returns candidates for a free-text query, in provider relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", fmt.Sprintf("%d", searchLimit))
	params.Set("newsCount", "0")

	body, err := c.http.Get(ctx, c.baseURL+"/v1/finance/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("yahoo search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	candidates := make([]domain.SearchCandidate, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		candidates = append(candidates, domain.SearchCandidate{
			Symbol:    q.Symbol,
			Name:      name,
			QuoteType: q.QuoteType,
			Exchange:  q.Exchange,
		})
	}

	c.log.Debug().Str("query", query).Int("candidates", len(candidates)).Msg("Search completed")
	return candidates, nil
}
