/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server, the scheduler and the CLI for access to services.
 */
package di

import (
	"github.com/aristath/pricesync/internal/clients/twelvedata"
	"github.com/aristath/pricesync/internal/clients/yahoo"
	"github.com/aristath/pricesync/internal/database"
	"github.com/aristath/pricesync/internal/events"
	"github.com/aristath/pricesync/internal/modules/fx"
	"github.com/aristath/pricesync/internal/modules/lookup"
	"github.com/aristath/pricesync/internal/modules/portfolio"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/aristath/pricesync/internal/modules/symbols"
	"github.com/aristath/pricesync/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Database: a single SQLite file holding price_cache and positions
 * - Clients: the keyed batch provider and the keyless quote/search provider
 * - Repositories: price cache and positions
 * - Services: FX conversion, refresh, lookup and price application
 */
type Container struct {
	// Database
	DB *database.DB // price_cache + positions

	// Clients - External API integrations
	TwelveDataClient *twelvedata.Client // Keyed batch quotes and EUR/USD rate
	YahooClient      *yahoo.Client      // Keyless single quotes and symbol search

	// Lookup tables
	SymbolMapper *symbols.Mapper    // Ticker to provider symbol overrides
	WKNDirectory *symbols.Directory // Built-in WKN directory

	// Repositories - Data access layer
	PriceCacheRepo *prices.CacheRepository       // Last known EUR price per ticker
	PositionRepo   *portfolio.PositionRepository // Owned positions (only prices are written)

	// Services - Business logic layer
	EventBus         *events.Bus        // Event bus for pub/sub
	EventManager     *events.Manager    // Event manager (wraps bus)
	FXConverter      *fx.Converter      // Cached EUR/USD conversion
	Refresher        *prices.Refresher  // Batched and single-ticker refresh
	PriceService     *prices.Service    // Refresh + apply + cache reads
	PortfolioService *portfolio.Service // Applies refreshed prices to positions
	LookupService    *lookup.Service    // WKN and ticker resolution
}

// JobInstances holds the background jobs so they can be triggered manually
type JobInstances struct {
	PriceRefresh  *scheduler.PriceRefreshJob
	CheckDatabase *scheduler.CheckDatabaseJob
}
