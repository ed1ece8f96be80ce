package repository

import (
	"database/sql"
	"fmt"

	"github.com/lifedash/portfolio-engine/internal/model"
)

// LedgerRepository provides data access methods for the account_transaction
// table. Ledger entries are immutable: they are inserted when a trade is
// committed or reversed, and never updated or deleted individually.
type LedgerRepository struct {
	db DBTX
}

// NewLedgerRepository creates a new LedgerRepository with the provided database connection.
func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *LedgerRepository) WithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

const ledgerColumns = `id, account_id, transaction_date, amount, old_balance, new_balance, type, description, related_stock_transaction_id, created_at`

// Insert persists a new ledger entry.
func (r *LedgerRepository) Insert(e *model.AccountTransaction) error {
	var related any
	if e.StockTransactionID != "" {
		related = e.StockTransactionID
	}

	_, err := r.db.Exec(`
		INSERT INTO account_transaction (id, account_id, transaction_date, amount, old_balance, new_balance, type, description, related_stock_transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.AccountID,
		e.Date.Format("2006-01-02"),
		e.Amount.String(),
		e.OldBalance.String(),
		e.NewBalance.String(),
		e.Type,
		e.Description,
		related,
		e.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// ListByAccount retrieves ledger entries for an account, newest first.
func (r *LedgerRepository) ListByAccount(accountID string) ([]model.AccountTransaction, error) {
	rows, err := r.db.Query(`
		SELECT `+ledgerColumns+`
		FROM account_transaction
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	return collectLedgerEntries(rows)
}

// FindByStockTransaction retrieves the ledger entries linked to a stock
// transaction, in insertion order. Trade reversal uses this to apply the
// exact inverse amounts.
func (r *LedgerRepository) FindByStockTransaction(stockTransactionID string) ([]model.AccountTransaction, error) {
	rows, err := r.db.Query(`
		SELECT `+ledgerColumns+`
		FROM account_transaction
		WHERE related_stock_transaction_id = ?
		ORDER BY created_at ASC, id ASC`, stockTransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked ledger entries: %w", err)
	}
	defer rows.Close()

	return collectLedgerEntries(rows)
}

func collectLedgerEntries(rows *sql.Rows) ([]model.AccountTransaction, error) {
	var entries []model.AccountTransaction
	for rows.Next() {
		var (
			e                              model.AccountTransaction
			amountStr, oldStr, newStr      string
			dateStr, createdStr            string
			description, related           sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &dateStr, &amountStr, &oldStr, &newStr, &e.Type, &description, &related, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		var err error
		if e.Amount, err = ParseDecimal(amountStr); err != nil {
			return nil, err
		}
		if e.OldBalance, err = ParseDecimal(oldStr); err != nil {
			return nil, err
		}
		if e.NewBalance, err = ParseDecimal(newStr); err != nil {
			return nil, err
		}
		if e.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = ParseTime(createdStr); err != nil {
			return nil, err
		}
		e.Description = description.String
		e.StockTransactionID = related.String

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}
