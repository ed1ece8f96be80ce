package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/shopspring/decimal"
)

// HistoryRepository provides data access methods for the
// account_balance_history table: one balance snapshot per account per
// calendar date, upserted by the daily snapshot job.
type HistoryRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new HistoryRepository with the provided database connection.
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *HistoryRepository) WithTx(tx *sql.Tx) *HistoryRepository {
	return &HistoryRepository{db: tx}
}

// Upsert writes the snapshot for (account, date), replacing any existing row
// for that date. The unique constraint guarantees at most one row per
// account per day.
func (r *HistoryRepository) Upsert(accountID string, date time.Time, balance decimal.Decimal) error {
	_, err := r.db.Exec(`
		INSERT INTO account_balance_history (id, account_id, date, balance, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id, date) DO UPDATE SET
			balance = excluded.balance,
			recorded_at = excluded.recorded_at`,
		uuid.New().String(),
		accountID,
		date.Format("2006-01-02"),
		balance.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance history: %w", err)
	}
	return nil
}

// FindExact returns the snapshot balance for the exact date, or found=false
// when no snapshot exists for that date.
func (r *HistoryRepository) FindExact(accountID string, date time.Time) (decimal.Decimal, bool, error) {
	row := r.db.QueryRow(`
		SELECT balance FROM account_balance_history
		WHERE account_id = ? AND date = ?`,
		accountID, date.Format("2006-01-02"))

	return scanBalance(row)
}

// FindNearestPrior returns the most recent snapshot at or before the date, or
// found=false when the account has no snapshot that early. Used only when the
// nearest-prior baseline policy is configured.
func (r *HistoryRepository) FindNearestPrior(accountID string, date time.Time) (decimal.Decimal, bool, error) {
	row := r.db.QueryRow(`
		SELECT balance FROM account_balance_history
		WHERE account_id = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1`,
		accountID, date.Format("2006-01-02"))

	return scanBalance(row)
}

// ListByAccount retrieves snapshots within [start, end], date ascending.
func (r *HistoryRepository) ListByAccount(accountID string, start, end time.Time) ([]model.BalanceHistory, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, date, balance, recorded_at
		FROM account_balance_history
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		accountID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var entries []model.BalanceHistory
	for rows.Next() {
		var (
			h                   model.BalanceHistory
			balanceStr          string
			dateStr, recordedAt string
		)
		if err := rows.Scan(&h.ID, &h.AccountID, &dateStr, &balanceStr, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}
		if h.Balance, err = ParseDecimal(balanceStr); err != nil {
			return nil, err
		}
		if h.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if h.RecordedAt, err = ParseTime(recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance history: %w", err)
	}
	return entries, nil
}

func scanBalance(row *sql.Row) (decimal.Decimal, bool, error) {
	var balanceStr string
	err := row.Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to scan balance: %w", err)
	}
	balance, err := ParseDecimal(balanceStr)
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, true, nil
}
