package portfolio

import (
	"fmt"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
)

// Service applies refreshed prices to positions.
type Service struct {
	positionRepo PositionRepositoryInterface
	log          zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(positionRepo PositionRepositoryInterface, log zerolog.Logger) *Service {
	return &Service{
		positionRepo: positionRepo,
		log:          log.With().Str("service", "portfolio").Logger(),
	}
}

// ApplyPrices writes each result's EUR price onto the positions holding its ticker.
// Positions with AutoUpdate off keep their manually entered price and are counted
// as skipped. Counts are per position row.
func (s *Service) ApplyPrices(results []domain.BatchResult) (updated, skipped int, err error) {
	if len(results) == 0 {
		return 0, 0, nil
	}

	// Last result wins when a ticker was refreshed twice
	latest := make(map[string]domain.BatchResult, len(results))
	tickers := make([]string, 0, len(results))
	for _, res := range results {
		if _, seen := latest[res.Ticker]; !seen {
			tickers = append(tickers, res.Ticker)
		}
		latest[res.Ticker] = res
	}

	positions, err := s.positionRepo.GetByTickers(tickers)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load positions: %w", err)
	}

	for _, pos := range positions {
		res, ok := latest[pos.Ticker]
		if !ok {
			continue
		}
		if !pos.AutoUpdate {
			skipped++
			s.log.Debug().Int64("position_id", pos.ID).Str("ticker", pos.Ticker).Msg("Manual price, skipping")
			continue
		}
		if err := s.positionRepo.UpdatePrice(pos.ID, res.PriceEUR); err != nil {
			s.log.Warn().Err(err).Int64("position_id", pos.ID).Str("ticker", pos.Ticker).Msg("Failed to update position price")
			continue
		}
		updated++
	}

	s.log.Info().Int("updated", updated).Int("skipped", skipped).Msg("Applied prices to positions")
	return updated, skipped, nil
}
