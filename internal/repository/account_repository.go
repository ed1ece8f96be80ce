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

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: tx}
}

const accountColumns = `id, name, type, balance, allow_negative, is_manual, notes, created_at, updated_at`

// Insert persists a new account.
func (r *AccountRepository) Insert(a *model.Account) error {
	_, err := r.db.Exec(`
		INSERT INTO account (id, name, type, balance, allow_negative, is_manual, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Type, a.Balance.String(), a.AllowNegative, a.IsManual, a.Notes,
		a.CreatedAt.UTC().Format(time.RFC3339), a.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID.
func (r *AccountRepository) Get(id string) (model.Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM account WHERE id = ?`, id)

	a, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// List retrieves all accounts, oldest first.
func (r *AccountRepository) List() ([]model.Account, error) {
	rows, err := r.db.Query(`SELECT ` + accountColumns + ` FROM account ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// FindByType retrieves all accounts of the given type, oldest first.
func (r *AccountRepository) FindByType(accountType string) ([]model.Account, error) {
	rows, err := r.db.Query(`SELECT `+accountColumns+` FROM account WHERE type = ? ORDER BY created_at ASC, id ASC`, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by type: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// DefaultCash returns the oldest CASH account, the designated target for
// trade cash effects when a trade names no account.
func (r *AccountRepository) DefaultCash() (model.Account, error) {
	accounts, err := r.FindByType(model.AccountCash)
	if err != nil {
		return model.Account{}, err
	}
	if len(accounts) == 0 {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	return accounts[0], nil
}

// UpdateBalance sets the stored balance for an account.
func (r *AccountRepository) UpdateBalance(id string, balance decimal.Decimal) error {
	res, err := r.db.Exec(`
		UPDATE account SET balance = ?, updated_at = ? WHERE id = ?`,
		balance.String(), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Update persists name, type, balance and notes changes.
func (r *AccountRepository) Update(a *model.Account) error {
	res, err := r.db.Exec(`
		UPDATE account SET name = ?, type = ?, balance = ?, allow_negative = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.Type, a.Balance.String(), a.AllowNegative, a.Notes,
		time.Now().UTC().Format(time.RFC3339), a.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Delete removes an account and, via foreign keys, its ledger and history rows.
func (r *AccountRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM account WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func scanAccount(scan func(dest ...any) error) (model.Account, error) {
	var (
		a                      model.Account
		balanceStr             string
		notes                  sql.NullString
		createdStr, updatedStr string
	)

	if err := scan(&a.ID, &a.Name, &a.Type, &balanceStr, &a.AllowNegative, &a.IsManual, &notes, &createdStr, &updatedStr); err != nil {
		return model.Account{}, err
	}

	var err error
	if a.Balance, err = ParseDecimal(balanceStr); err != nil {
		return model.Account{}, err
	}
	if a.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Account{}, err
	}
	if a.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return model.Account{}, err
	}
	a.Notes = notes.String

	return a, nil
}
