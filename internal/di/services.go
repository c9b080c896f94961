// Package di provides dependency injection for clients and services.
package di

import (
	"fmt"

	"github.com/aristath/pricesync/internal/clients/twelvedata"
	"github.com/aristath/pricesync/internal/clients/yahoo"
	"github.com/aristath/pricesync/internal/config"
	"github.com/aristath/pricesync/internal/events"
	"github.com/aristath/pricesync/internal/modules/fx"
	"github.com/aristath/pricesync/internal/modules/lookup"
	"github.com/aristath/pricesync/internal/modules/portfolio"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/aristath/pricesync/internal/modules/symbols"
	"github.com/rs/zerolog"
)

// InitializeServices creates clients and services and stores them in the container.
// Repositories must be initialized first.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.PriceCacheRepo == nil || container.PositionRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	// ==========================================
	// STEP 1: Lookup tables
	// ==========================================
	mapper, err := symbols.LoadMapper(cfg.SymbolOverridesFile)
	if err != nil {
		return err
	}
	container.SymbolMapper = mapper

	directory, err := symbols.LoadDirectory(cfg.WKNDirectoryFile)
	if err != nil {
		return err
	}
	container.WKNDirectory = directory

	// ==========================================
	// STEP 2: Clients
	// ==========================================
	// The key is read through cfg on every request, never copied
	container.TwelveDataClient = twelvedata.NewClient(cfg.TwelveDataBaseURL, cfg.APIKey, cfg.HTTPTimeout, log)
	container.YahooClient = yahoo.NewClient(cfg.YahooBaseURL, cfg.HTTPTimeout, log)

	// ==========================================
	// STEP 3: Events
	// ==========================================
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	// ==========================================
	// STEP 4: Services
	// ==========================================
	container.FXConverter = fx.NewConverter(container.TwelveDataClient, cfg.FXCacheTTL, cfg.FXFallbackRate, log)

	container.PortfolioService = portfolio.NewService(container.PositionRepo, log)

	container.Refresher = prices.NewRefresher(
		prices.RefresherConfig{
			BatchSize:  cfg.PriceBatchSize,
			BatchDelay: cfg.PriceBatchDelay,
		},
		container.SymbolMapper,
		container.TwelveDataClient,
		container.YahooClient,
		container.FXConverter,
		container.PriceCacheRepo,
		container.EventManager,
		log,
	)

	container.PriceService = prices.NewService(
		container.Refresher,
		container.PriceCacheRepo,
		container.PortfolioService,
		log,
	)

	// Lookups use the configured fallback rate and never issue an FX request
	container.LookupService = lookup.NewService(
		container.WKNDirectory,
		container.YahooClient,
		container.YahooClient,
		cfg.FXFallbackRate,
		log,
	)

	log.Info().
		Int("wkn_directory", container.WKNDirectory.Len()).
		Bool("twelve_data_key", container.TwelveDataClient.HasAPIKey()).
		Msg("Services initialized")

	return nil
}
