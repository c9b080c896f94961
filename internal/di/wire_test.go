package di

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/pricesync/internal/config"
	"github.com/aristath/pricesync/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:           t.TempDir(),
		TwelveDataBaseURL: "http://127.0.0.1:1",
		YahooBaseURL:      "http://127.0.0.1:1",
		HTTPTimeout:       time.Second,
		PriceBatchSize:    7,
		PriceBatchDelay:   62 * time.Second,
		FXCacheTTL:        time.Hour,
		FXFallbackRate:    decimal.RequireFromString("1.08"),
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(func() { _ = container.Close() })

	// Verify container is fully populated
	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.PriceCacheRepo)
	assert.NotNil(t, container.PositionRepo)
	assert.NotNil(t, container.TwelveDataClient)
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.EventManager)
	assert.NotNil(t, container.FXConverter)
	assert.NotNil(t, container.Refresher)
	assert.NotNil(t, container.PriceService)
	assert.NotNil(t, container.PortfolioService)
	assert.NotNil(t, container.LookupService)
	assert.Greater(t, container.WKNDirectory.Len(), 0)

	// Without a key only the fallback path is available
	assert.False(t, container.PriceService.HasAPIKey())
}

func TestWire_APIKeyIsReadPerCall(t *testing.T) {
	cfg := testConfig(t)
	key := ""
	cfg.SetAPIKeySource(func() string { return key })

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.False(t, container.PriceService.HasAPIKey())
	key = "rotated"
	assert.True(t, container.PriceService.HasAPIKey())
}

func TestWire_BadOverridesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SymbolOverridesFile = cfg.DataDir + "/missing.json"

	container, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestInitializeRepositories_RequiresDatabase(t *testing.T) {
	assert.Error(t, InitializeRepositories(nil, zerolog.Nop()))
	assert.Error(t, InitializeRepositories(&Container{}, zerolog.Nop()))
}

func TestInitializeServices_RequiresRepositories(t *testing.T) {
	assert.Error(t, InitializeServices(&Container{}, testConfig(t), zerolog.Nop()))
}

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t)
	cfg.PriceRefreshSchedule = "@every 30m"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	sched := scheduler.New(zerolog.Nop())
	jobs, err := RegisterJobs(context.Background(), container, cfg, sched, zerolog.Nop())
	require.NoError(t, err)

	assert.NotNil(t, jobs.PriceRefresh)
	assert.NotNil(t, jobs.CheckDatabase)
	assert.Equal(t, 2, sched.Entries())

	// No positions yet: the refresh is a no-op
	assert.NoError(t, jobs.PriceRefresh.Run())
	assert.NoError(t, jobs.CheckDatabase.Run())
}

func TestRegisterJobs_ScheduleDisabled(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	sched := scheduler.New(zerolog.Nop())
	_, err = RegisterJobs(context.Background(), container, cfg, sched, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, sched.Entries())
}

func TestRegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.PriceRefreshSchedule = "whenever"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	_, err = RegisterJobs(context.Background(), container, cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	assert.Error(t, err)
}
