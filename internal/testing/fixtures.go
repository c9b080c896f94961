package testing

import (
	"testing"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/modules/portfolio"
	"github.com/shopspring/decimal"
)

// NewPositionFixtures returns a mix of auto-updated and manually priced positions
func NewPositionFixtures() []domain.Position {
	return []domain.Position{
		{
			Ticker:       "AAPL",
			Name:         "Apple Inc.",
			CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("180.00")),
			AutoUpdate:   true,
		},
		{
			Ticker:       "EUNL.DE",
			Name:         "iShares Core MSCI World UCITS ETF",
			CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("95.10")),
			AutoUpdate:   true,
		},
		{
			Ticker:     "BTCE.DE",
			Name:       "BTCetc Physical Bitcoin",
			AutoUpdate: true,
		},
		{
			// Manually priced: refreshes never overwrite it
			Ticker:       "PRIVATE-FUND",
			Name:         "Private Fund",
			CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("1000")),
			AutoUpdate:   false,
		},
	}
}

// SeedPositions inserts positions through the repository and returns them with IDs
func SeedPositions(t *testing.T, repo *portfolio.PositionRepository, positions []domain.Position) []domain.Position {
	t.Helper()

	seeded := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		created, err := repo.Create(p)
		if err != nil {
			t.Fatalf("Failed to seed position %s: %v", p.Ticker, err)
		}
		seeded = append(seeded, *created)
	}
	return seeded
}
