package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionRepository provides data access methods for the stock_transaction
// table. Transactions are the canonical trade history; rows are inserted and
// occasionally deleted (trade reversal), never updated.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

const transactionColumns = `id, user_id, symbol, type, quantity, price_per_share, total_cost, transaction_date, account_id, created_at`

// Insert persists a new stock transaction.
func (r *TransactionRepository) Insert(t *model.Transaction) error {
	var accountID any
	if t.AccountID != "" {
		accountID = t.AccountID
	}

	_, err := r.db.Exec(`
		INSERT INTO stock_transaction (id, user_id, symbol, type, quantity, price_per_share, total_cost, transaction_date, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.UserID,
		t.Symbol,
		t.Type,
		t.Quantity.String(),
		t.PricePerShare.String(),
		t.TotalCost.String(),
		t.Date.Format("2006-01-02"),
		accountID,
		t.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock transaction: %w", err)
	}
	return nil
}

// Get retrieves a single transaction by ID.
func (r *TransactionRepository) Get(id string) (model.Transaction, error) {
	row := r.db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM stock_transaction
		WHERE id = ?`, id)

	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to get stock transaction: %w", err)
	}
	return t, nil
}

// Delete removes a transaction row. Used only by trade reversal; regular
// transactions are never deleted in place.
func (r *TransactionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM stock_transaction WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// ListByUser retrieves all transactions for a user in replay order:
// transaction date ascending, ties broken by insertion time and then by ID.
// This ordering is a fixed contract; holding recalculation depends on it
// being deterministic.
func (r *TransactionRepository) ListByUser(userID string) ([]model.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT `+transactionColumns+`
		FROM stock_transaction
		WHERE user_id = ?
		ORDER BY transaction_date ASC, created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByUserDescending retrieves all transactions for a user, newest first,
// for display purposes.
func (r *TransactionRepository) ListByUserDescending(userID string) ([]model.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT `+transactionColumns+`
		FROM stock_transaction
		WHERE user_id = ?
		ORDER BY transaction_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// NetFlow sums the signed cash impact of trades with a transaction date
// strictly after start and at or before end: buys add their total cost, sells
// subtract their proceeds. This is the net-investment adjustment used by
// period-return calculations.
func (r *TransactionRepository) NetFlow(userID string, start, end time.Time) (decimal.Decimal, error) {
	rows, err := r.db.Query(`
		SELECT type, total_cost
		FROM stock_transaction
		WHERE user_id = ?
		AND transaction_date > ?
		AND transaction_date <= ?`,
		userID,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query net flow: %w", err)
	}
	defer rows.Close()

	net := decimal.Zero
	for rows.Next() {
		var txType, costStr string
		if err := rows.Scan(&txType, &costStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan net flow row: %w", err)
		}
		cost, err := ParseDecimal(costStr)
		if err != nil {
			return decimal.Zero, err
		}
		switch txType {
		case model.TransactionBuy:
			net = net.Add(cost)
		case model.TransactionSell:
			net = net.Sub(cost)
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating net flow rows: %w", err)
	}
	return net, nil
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var (
		t                            model.Transaction
		qtyStr, priceStr, costStr    string
		dateStr, createdStr          string
		accountID                    sql.NullString
	)

	if err := scan(&t.ID, &t.UserID, &t.Symbol, &t.Type, &qtyStr, &priceStr, &costStr, &dateStr, &accountID, &createdStr); err != nil {
		return model.Transaction{}, err
	}

	var err error
	if t.Quantity, err = ParseDecimal(qtyStr); err != nil {
		return model.Transaction{}, err
	}
	if t.PricePerShare, err = ParseDecimal(priceStr); err != nil {
		return model.Transaction{}, err
	}
	if t.TotalCost, err = ParseDecimal(costStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Transaction{}, err
	}
	t.AccountID = accountID.String

	return t, nil
}
