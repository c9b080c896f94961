// Package portfolio owns the position rows that refreshed prices are applied to.
package portfolio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PositionRepositoryInterface defines the position operations the service needs
type PositionRepositoryInterface interface {
	GetByTickers(tickers []string) ([]domain.Position, error)
	UpdatePrice(id int64, price decimal.Decimal) error
}

// PositionRepository handles position database operations
type PositionRepository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "position").Logger(),
	}
}

const positionColumns = `id, ticker, name, current_price, auto_update, updated_at`

// GetAll returns all positions ordered by id
func (r *PositionRepository) GetAll() ([]domain.Position, error) {
	rows, err := r.db.Query(`SELECT ` + positionColumns + ` FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// GetByTickers returns every position holding one of tickers, ordered by id.
// Several rows may share a ticker.
func (r *PositionRepository) GetByTickers(tickers []string) ([]domain.Position, error) {
	if len(tickers) == 0 {
		return []domain.Position{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}

	rows, err := r.db.Query(`SELECT `+positionColumns+` FROM positions WHERE ticker IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions by ticker: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// Tickers returns the distinct tickers held, in first-added order.
func (r *PositionRepository) Tickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT ticker FROM positions GROUP BY ticker ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query position tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}
	return tickers, nil
}

// UpdatePrice sets the current price of a position.
func (r *PositionRepository) UpdatePrice(id int64, price decimal.Decimal) error {
	result, err := r.db.Exec(`UPDATE positions SET current_price = ?, updated_at = ? WHERE id = ?`,
		price.String(), r.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update price of position %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("position %d not found", id)
	}
	return nil
}

// Create inserts a position and returns it with its assigned id.
func (r *PositionRepository) Create(pos domain.Position) (*domain.Position, error) {
	if strings.TrimSpace(pos.Ticker) == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	var price interface{}
	if pos.CurrentPrice.Valid {
		price = pos.CurrentPrice.Decimal.String()
	}
	now := r.now()

	result, err := r.db.Exec(`INSERT INTO positions (ticker, name, current_price, auto_update, updated_at) VALUES (?, ?, ?, ?, ?)`,
		pos.Ticker, pos.Name, price, boolToInt(pos.AutoUpdate), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get position id: %w", err)
	}

	pos.ID = id
	pos.UpdatedAt = time.Unix(now.Unix(), 0).UTC()
	r.log.Debug().Int64("id", id).Str("ticker", pos.Ticker).Msg("Created position")
	return &pos, nil
}

func scanPositions(rows *sql.Rows) ([]domain.Position, error) {
	positions := []domain.Position{}
	for rows.Next() {
		var (
			pos        domain.Position
			price      sql.NullString
			autoUpdate int
			updatedAt  int64
		)
		if err := rows.Scan(&pos.ID, &pos.Ticker, &pos.Name, &price, &autoUpdate, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if price.Valid {
			p, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("invalid price for position %d: %w", pos.ID, err)
			}
			pos.CurrentPrice = decimal.NewNullDecimal(p)
		}
		pos.AutoUpdate = autoUpdate != 0
		pos.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
