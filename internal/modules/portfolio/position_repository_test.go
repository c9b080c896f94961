package portfolio

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDBForPositions(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE positions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			current_price TEXT,
			auto_update INTEGER NOT NULL DEFAULT 1,
			updated_at INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_positions_ticker ON positions(ticker)`)
	require.NoError(t, err)
	return db
}

func newTestRepository(t *testing.T) *PositionRepository {
	repo := NewPositionRepository(setupTestDBForPositions(t), zerolog.New(nil).Level(zerolog.Disabled))
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }
	return repo
}

func createPosition(t *testing.T, repo *PositionRepository, ticker string, autoUpdate bool, price string) *domain.Position {
	t.Helper()
	pos := domain.Position{Ticker: ticker, Name: ticker + " holding", AutoUpdate: autoUpdate}
	if price != "" {
		pos.CurrentPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	created, err := repo.Create(pos)
	require.NoError(t, err)
	return created
}

func TestPositionRepository_CreateAndGetAll(t *testing.T) {
	repo := newTestRepository(t)

	created := createPosition(t, repo, "AAPL", true, "150.5")
	assert.NotZero(t, created.ID)

	positions, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.Equal(t, created.ID, pos.ID)
	assert.Equal(t, "AAPL", pos.Ticker)
	assert.Equal(t, "AAPL holding", pos.Name)
	require.True(t, pos.CurrentPrice.Valid)
	assert.True(t, pos.CurrentPrice.Decimal.Equal(decimal.RequireFromString("150.5")))
	assert.True(t, pos.AutoUpdate)
	assert.Equal(t, int64(1700000000), pos.UpdatedAt.Unix())
}

func TestPositionRepository_CreateWithoutPrice(t *testing.T) {
	repo := newTestRepository(t)
	createPosition(t, repo, "SAP.DE", false, "")

	positions, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.False(t, positions[0].CurrentPrice.Valid)
	assert.False(t, positions[0].AutoUpdate)
}

func TestPositionRepository_CreateRequiresTicker(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Create(domain.Position{Ticker: " "})
	assert.Error(t, err)
}

func TestPositionRepository_GetByTickers(t *testing.T) {
	repo := newTestRepository(t)
	createPosition(t, repo, "AAPL", true, "")
	createPosition(t, repo, "MSFT", true, "")
	createPosition(t, repo, "AAPL", false, "100")

	positions, err := repo.GetByTickers([]string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.True(t, positions[0].AutoUpdate)
	assert.False(t, positions[1].AutoUpdate)

	none, err := repo.GetByTickers(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPositionRepository_Tickers(t *testing.T) {
	repo := newTestRepository(t)
	createPosition(t, repo, "MSFT", true, "")
	createPosition(t, repo, "AAPL", true, "")
	createPosition(t, repo, "MSFT", false, "")

	tickers, err := repo.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "AAPL"}, tickers)
}

func TestPositionRepository_UpdatePrice(t *testing.T) {
	repo := newTestRepository(t)
	pos := createPosition(t, repo, "AAPL", true, "")

	repo.now = func() time.Time { return time.Unix(1700000500, 0) }
	require.NoError(t, repo.UpdatePrice(pos.ID, decimal.RequireFromString("175.93")))

	positions, err := repo.GetByTickers([]string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].CurrentPrice.Decimal.Equal(decimal.RequireFromString("175.93")))
	assert.Equal(t, int64(1700000500), positions[0].UpdatedAt.Unix())
}

func TestPositionRepository_UpdatePriceUnknownID(t *testing.T) {
	repo := newTestRepository(t)
	assert.Error(t, repo.UpdatePrice(42, decimal.NewFromInt(1)))
}
