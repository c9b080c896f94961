// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/pricesync/internal/config"
	"github.com/aristath/pricesync/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "pricesync",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pricesync database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate pricesync database: %w", err)
	}
	container.DB = db

	log.Info().Str("path", db.Path()).Msg("Database initialized")

	return container, nil
}
