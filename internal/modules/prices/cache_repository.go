// Package prices refreshes live prices in rate-limit-safe batches and persists
// the last known EUR price per ticker.
package prices

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CacheRepository handles price_cache database operations.
// It is the only writer of the table; writes are last-write-wins by ticker.
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewCacheRepository creates a new price cache repository
func NewCacheRepository(db *sql.DB, log zerolog.Logger) *CacheRepository {
	return &CacheRepository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "price_cache").Logger(),
	}
}

// Upsert stores the EUR price for ticker, creating the entry on first write.
func (r *CacheRepository) Upsert(ticker string, priceEUR decimal.Decimal, changePercent decimal.NullDecimal) error {
	if ticker == "" {
		return fmt.Errorf("ticker is required")
	}

	var change interface{}
	if changePercent.Valid {
		change = changePercent.Decimal.String()
	}

	_, err := r.db.Exec(`
		INSERT INTO price_cache (ticker, price, change_percent, currency, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			price = excluded.price,
			change_percent = excluded.change_percent,
			currency = excluded.currency,
			last_updated = excluded.last_updated
	`, ticker, priceEUR.String(), change, domain.CurrencyEUR, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert cached price for %s: %w", ticker, err)
	}

	r.log.Debug().Str("ticker", ticker).Str("price_eur", priceEUR.String()).Msg("Cached price")
	return nil
}

// Read returns the cached entries for tickers, in ticker order. Tickers with no
// entry are omitted. No provider is contacted.
func (r *CacheRepository) Read(tickers []string) ([]domain.PriceCacheEntry, error) {
	if len(tickers) == 0 {
		return []domain.PriceCacheEntry{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}

	rows, err := r.db.Query(`
		SELECT ticker, price, change_percent, currency, last_updated
		FROM price_cache
		WHERE ticker IN (`+placeholders+`)
		ORDER BY ticker
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price cache: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.PriceCacheEntry, 0, len(tickers))
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price cache: %w", err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (domain.PriceCacheEntry, error) {
	var (
		entry       domain.PriceCacheEntry
		price       string
		change      sql.NullString
		lastUpdated int64
	)
	if err := rows.Scan(&entry.Ticker, &price, &change, &entry.Currency, &lastUpdated); err != nil {
		return entry, fmt.Errorf("failed to scan cached price: %w", err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return entry, fmt.Errorf("invalid cached price for %s: %w", entry.Ticker, err)
	}
	entry.Price = p

	if change.Valid {
		c, err := decimal.NewFromString(change.String)
		if err != nil {
			return entry, fmt.Errorf("invalid cached change for %s: %w", entry.Ticker, err)
		}
		entry.ChangePercent = decimal.NewNullDecimal(c)
	}

	entry.LastUpdated = time.Unix(lastUpdated, 0).UTC()
	return entry, nil
}
