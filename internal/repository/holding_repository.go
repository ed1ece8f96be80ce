package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/shopspring/decimal"
)

// HoldingRepository provides data access methods for the holding table.
// Quantity and average cost are only ever written by the recalculation engine;
// the price columns are refreshed opportunistically from the quote cache.
type HoldingRepository struct {
	db DBTX
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db DBTX) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{db: tx}
}

const holdingColumns = `id, user_id, symbol, quantity, average_cost, current_price, daily_change, last_price_update, notes, created_at, updated_at`

// ListByUser retrieves all holdings for a user, sorted by symbol.
func (r *HoldingRepository) ListByUser(userID string) ([]model.Holding, error) {
	rows, err := r.db.Query(`
		SELECT `+holdingColumns+`
		FROM holding
		WHERE user_id = ?
		ORDER BY symbol ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		h, err := scanHolding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

// Find retrieves the holding for a (user, symbol) pair.
func (r *HoldingRepository) Find(userID, symbol string) (model.Holding, error) {
	row := r.db.QueryRow(`
		SELECT `+holdingColumns+`
		FROM holding
		WHERE user_id = ? AND symbol = ?`, userID, symbol)

	h, err := scanHolding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// Upsert writes the derived quantity and average cost for a (user, symbol)
// pair, creating the row on first buy. Cached price columns are left
// untouched so a recalculation does not discard known prices.
func (r *HoldingRepository) Upsert(userID, symbol string, quantity, averageCost decimal.Decimal) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(`
		INSERT INTO holding (id, user_id, symbol, quantity, average_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			average_cost = excluded.average_cost,
			updated_at = excluded.updated_at`,
		uuid.New().String(), userID, symbol, quantity.String(), averageCost.String(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}
	return nil
}

// Delete removes the holding row for a fully liquidated position.
func (r *HoldingRepository) Delete(userID, symbol string) error {
	if _, err := r.db.Exec(`DELETE FROM holding WHERE user_id = ? AND symbol = ?`, userID, symbol); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// UpdatePrice refreshes the cached price columns for a (user, symbol) pair.
func (r *HoldingRepository) UpdatePrice(userID, symbol string, price, dailyChange decimal.Decimal, fetchedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE holding
		SET current_price = ?, daily_change = ?, last_price_update = ?
		WHERE user_id = ? AND symbol = ?`,
		price.String(), dailyChange.String(), fetchedAt.UTC().Format(time.RFC3339), userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to update holding price: %w", err)
	}
	return nil
}

// TotalCurrentValue sums quantity * current_price over the user's holdings
// that have a cached price. Holdings without price data contribute nothing;
// callers that need completeness information should count them separately.
func (r *HoldingRepository) TotalCurrentValue(userID string) (decimal.Decimal, error) {
	rows, err := r.db.Query(`
		SELECT quantity, current_price
		FROM holding
		WHERE user_id = ? AND current_price IS NOT NULL`, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query holding values: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var qtyStr, priceStr string
		if err := rows.Scan(&qtyStr, &priceStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan holding value: %w", err)
		}
		qty, err := ParseDecimal(qtyStr)
		if err != nil {
			return decimal.Zero, err
		}
		price, err := ParseDecimal(priceStr)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(qty.Mul(price))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating holding values: %w", err)
	}
	return total, nil
}

func scanHolding(scan func(dest ...any) error) (model.Holding, error) {
	var (
		h                     model.Holding
		qtyStr, avgStr        string
		price, change         sql.NullString
		lastUpdate            sql.NullString
		notes                 sql.NullString
		createdStr, updatedStr string
	)

	if err := scan(&h.ID, &h.UserID, &h.Symbol, &qtyStr, &avgStr, &price, &change, &lastUpdate, &notes, &createdStr, &updatedStr); err != nil {
		return model.Holding{}, err
	}

	var err error
	if h.Quantity, err = ParseDecimal(qtyStr); err != nil {
		return model.Holding{}, err
	}
	if h.AverageCost, err = ParseDecimal(avgStr); err != nil {
		return model.Holding{}, err
	}
	if h.CurrentPrice, err = parseNullDecimal(price); err != nil {
		return model.Holding{}, err
	}
	if h.DailyChange, err = parseNullDecimal(change); err != nil {
		return model.Holding{}, err
	}
	if h.LastPriceUpdate, err = parseNullTime(lastUpdate); err != nil {
		return model.Holding{}, err
	}
	if h.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Holding{}, err
	}
	if h.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return model.Holding{}, err
	}
	h.Notes = notes.String

	return h, nil
}
