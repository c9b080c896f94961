// Package lookup resolves a WKN or ticker into a priced security.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/modules/fx"
	"github.com/aristath/pricesync/internal/modules/symbols"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrInvalidIdentifier is returned for an empty identifier or an unknown lookup kind.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Service resolves identifiers against the WKN directory and the keyless provider.
// Prices are converted with a fixed EUR/USD rate; a lookup never issues an FX request.
type Service struct {
	directory *symbols.Directory
	quotes    domain.QuoteProvider
	searcher  domain.SymbolSearcher
	eurUSD    decimal.Decimal
	log       zerolog.Logger
}

// NewService creates a new lookup service
func NewService(
	directory *symbols.Directory,
	quotes domain.QuoteProvider,
	searcher domain.SymbolSearcher,
	eurUSD decimal.Decimal,
	log zerolog.Logger,
) *Service {
	if !eurUSD.IsPositive() {
		eurUSD = fx.DefaultFallbackRate
	}
	return &Service{
		directory: directory,
		quotes:    quotes,
		searcher:  searcher,
		eurUSD:    eurUSD,
		log:       log.With().Str("service", "lookup").Logger(),
	}
}

// Resolve dispatches on kind.
func (s *Service) Resolve(ctx context.Context, identifier string, kind domain.LookupKind) (*domain.ResolvedSecurity, error) {
	switch kind {
	case domain.LookupWKN:
		return s.ByWKN(ctx, identifier)
	case domain.LookupTicker:
		return s.ByTicker(ctx, identifier)
	default:
		return nil, fmt.Errorf("%w: unknown lookup kind %q", ErrInvalidIdentifier, kind)
	}
}

// ByWKN resolves a WKN through the directory, then provider search.
// A security that is found but cannot be priced is returned with price 0.
func (s *Service) ByWKN(ctx context.Context, wkn string) (*domain.ResolvedSecurity, error) {
	code := symbols.NormalizeCode(wkn)
	if code == "" {
		return nil, fmt.Errorf("%w: empty WKN", ErrInvalidIdentifier)
	}

	if entry, ok := s.directory.Lookup(code); ok {
		s.log.Debug().Str("wkn", code).Str("ticker", entry.Ticker).Msg("WKN found in directory")
		resolved := &domain.ResolvedSecurity{
			Name:            entry.Name,
			Ticker:          entry.Ticker,
			Identifier:      code,
			Currency:        domain.CurrencyEUR,
			InstrumentClass: entry.InstrumentClass,
			Exchange:        symbols.ExchangeForTicker(entry.Ticker),
		}
		s.price(ctx, resolved)
		return resolved, nil
	}

	candidate, ok := s.search(ctx, code)
	if !ok {
		s.log.Info().Str("wkn", code).Msg("WKN not found")
		return nil, fmt.Errorf("%w: no security found for WKN %s", domain.ErrNotFound, code)
	}

	resolved := &domain.ResolvedSecurity{
		Name:            candidate.Name,
		Ticker:          candidate.Symbol,
		Identifier:      code,
		Currency:        domain.CurrencyEUR,
		InstrumentClass: classify(candidate.QuoteType),
		Exchange:        symbols.ExchangeForTicker(candidate.Symbol),
	}
	if detail := s.price(ctx, resolved); detail != nil && detail.InstrumentType != "" {
		resolved.InstrumentClass = classify(detail.InstrumentType)
	}
	if resolved.Name == "" {
		resolved.Name = resolved.Ticker
	}
	return resolved, nil
}

// ByTicker resolves a ticker directly. Unlike ByWKN, a missing quote is an error.
func (s *Service) ByTicker(ctx context.Context, ticker string) (*domain.ResolvedSecurity, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidIdentifier)
	}

	detail, err := s.quotes.Quote(ctx, ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Ticker lookup failed")
		return nil, fmt.Errorf("%w for %s: %v", domain.ErrQuoteUnavailable, ticker, err)
	}
	if detail == nil || !detail.Valid() {
		return nil, fmt.Errorf("%w for %s: no price", domain.ErrQuoteUnavailable, ticker)
	}

	name := detail.Name
	if name == "" {
		name = ticker
	}
	exchange := detail.Exchange
	if exchange == "" {
		exchange = symbols.ExchangeForTicker(ticker)
	}

	return &domain.ResolvedSecurity{
		Name:            name,
		Ticker:          ticker,
		CurrentPrice:    fx.StaticEUR(detail.Quote, s.eurUSD),
		Currency:        domain.CurrencyEUR,
		InstrumentClass: classify(detail.InstrumentType),
		Exchange:        exchange,
	}, nil
}

// price fills in the EUR price and exchange from a live quote. On failure the
// security keeps price 0 and its suffix-derived exchange.
func (s *Service) price(ctx context.Context, resolved *domain.ResolvedSecurity) *domain.QuoteDetail {
	detail, err := s.quotes.Quote(ctx, resolved.Ticker)
	if err != nil || detail == nil || !detail.Valid() {
		s.log.Warn().Err(err).Str("ticker", resolved.Ticker).Msg("No live quote, returning without price")
		resolved.CurrentPrice = decimal.Zero
		return nil
	}

	resolved.CurrentPrice = fx.StaticEUR(detail.Quote, s.eurUSD)
	if detail.Exchange != "" {
		resolved.Exchange = detail.Exchange
	}
	if resolved.Name == "" {
		resolved.Name = detail.Name
	}
	return detail
}

// search queries the provider by code, then by code+".DE" when the first query
// has no hits. German listings are preferred over the provider's first hit.
func (s *Service) search(ctx context.Context, code string) (domain.SearchCandidate, bool) {
	for _, query := range []string{code, code + ".DE"} {
		candidates, err := s.searcher.Search(ctx, query)
		if err != nil {
			s.log.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
			continue
		}
		if len(candidates) == 0 {
			continue
		}
		for _, c := range candidates {
			if symbols.IsGermanListing(c.Symbol) {
				return c, true
			}
		}
		return candidates[0], true
	}
	return domain.SearchCandidate{}, false
}

// classify maps provider instrument types onto instrument classes. Anything
// unrecognized is a stock.
func classify(instrumentType string) domain.InstrumentClass {
	switch strings.ToUpper(strings.TrimSpace(instrumentType)) {
	case "ETF", "ETP":
		return domain.ClassETF
	case "CRYPTOCURRENCY", "CRYPTO":
		return domain.ClassCrypto
	case "MUTUALFUND", "FUND", "MONEYMARKET":
		return domain.ClassFund
	case "BOND":
		return domain.ClassBond
	default:
		return domain.ClassStock
	}
}
