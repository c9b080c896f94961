// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// APIKeyEnv is the environment variable holding the Twelve Data API key.
const APIKeyEnv = "TWELVE_DATA_API_KEY"

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding pricesync.db (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	TwelveDataBaseURL string
	YahooBaseURL      string
	HTTPTimeout       time.Duration

	// Batching for the keyed provider. The free tier allows 8 credits per minute;
	// 7 quotes per batch leave one credit for the EUR/USD rate.
	PriceBatchSize  int
	PriceBatchDelay time.Duration

	FXCacheTTL     time.Duration
	FXFallbackRate decimal.Decimal

	// Optional JSON files extending the built-in lookup tables.
	WKNDirectoryFile    string
	SymbolOverridesFile string

	// Cron spec for the background refresh job; empty disables it.
	PriceRefreshSchedule string

	// apiKey is looked up on every call so a rotated key takes effect without a restart.
	apiKey func() string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PRICESYNC_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("GO_PORT", 8001),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		TwelveDataBaseURL:    getEnv("TWELVE_DATA_BASE_URL", "https://api.twelvedata.com"),
		YahooBaseURL:         getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		HTTPTimeout:          getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		PriceBatchSize:       getEnvAsInt("PRICE_BATCH_SIZE", 7),
		PriceBatchDelay:      getEnvAsDuration("PRICE_BATCH_DELAY", 62*time.Second),
		FXCacheTTL:           getEnvAsDuration("FX_CACHE_TTL", time.Hour),
		FXFallbackRate:       getEnvAsDecimal("FX_FALLBACK_RATE", decimal.RequireFromString("1.08")),
		WKNDirectoryFile:     getEnv("WKN_DIRECTORY_FILE", ""),
		SymbolOverridesFile:  getEnv("SYMBOL_OVERRIDES_FILE", ""),
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", ""),
		apiKey:               func() string { return os.Getenv(APIKeyEnv) },
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.PriceBatchSize <= 0 {
		return fmt.Errorf("PRICE_BATCH_SIZE must be positive, got %d", c.PriceBatchSize)
	}
	if c.PriceBatchDelay < 0 {
		return fmt.Errorf("PRICE_BATCH_DELAY must not be negative, got %s", c.PriceBatchDelay)
	}
	if !c.FXFallbackRate.IsPositive() {
		return fmt.Errorf("FX_FALLBACK_RATE must be positive, got %s", c.FXFallbackRate)
	}
	// The Twelve Data key is optional: without it only the keyless provider is used.
	return nil
}

// APIKey returns the current Twelve Data API key, or "" when none is configured.
func (c *Config) APIKey() string {
	if c.apiKey == nil {
		return ""
	}
	return c.apiKey()
}

// SetAPIKeySource replaces the key lookup. Used by tests and the CLI --api-key flag.
func (c *Config) SetAPIKeySource(fn func() string) {
	c.apiKey = fn
}

// DatabasePath returns the path of the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pricesync.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
