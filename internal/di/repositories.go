// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/aristath/pricesync/internal/modules/portfolio"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.DB == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	// Price cache (unique key ticker)
	container.PriceCacheRepo = prices.NewCacheRepository(container.DB.Conn(), log)

	// Position repository (the refresher only ever writes current_price)
	container.PositionRepo = portfolio.NewPositionRepository(container.DB.Conn(), log)

	log.Info().Msg("Repositories initialized")

	return nil
}
