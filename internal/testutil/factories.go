package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/model"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("Invalid decimal literal %q: %v", v, err)
	}
	return d
}

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	cash := testutil.NewAccount().WithBalance("1000").Build(t, db)
//	stock := testutil.NewAccount().OfType(model.AccountStockPortfolio).Build(t, db)
type AccountBuilder struct {
	ID            string
	Name          string
	Type          string
	Balance       string
	AllowNegative bool
	IsManual      bool
}

// NewAccount creates an AccountBuilder with sensible defaults: a zero-balance
// system cash account.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:      MakeID(),
		Name:    "Test Cash",
		Type:    model.AccountCash,
		Balance: "0",
	}
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// OfType sets the account type.
func (b *AccountBuilder) OfType(accountType string) *AccountBuilder {
	b.Type = accountType
	return b
}

// WithBalance sets the opening balance.
func (b *AccountBuilder) WithBalance(balance string) *AccountBuilder {
	b.Balance = balance
	return b
}

// AllowingNegative lets the account go below zero.
func (b *AccountBuilder) AllowingNegative() *AccountBuilder {
	b.AllowNegative = true
	return b
}

// Manual marks the account as user-created (deletable).
func (b *AccountBuilder) Manual() *AccountBuilder {
	b.IsManual = true
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO account (id, name, type, balance, allow_negative, is_manual)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Type, b.Balance, b.AllowNegative, b.IsManual)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:            b.ID,
		Name:          b.Name,
		Type:          b.Type,
		Balance:       Dec(t, b.Balance),
		AllowNegative: b.AllowNegative,
		IsManual:      b.IsManual,
	}
}

// TransactionBuilder provides a fluent interface for creating test stock
// transactions directly in the database, bypassing the trade service.
//
// Example usage:
//
//	testutil.NewTransaction("AAPL").Buy("10", "100").On("2024-01-02").Build(t, db)
type TransactionBuilder struct {
	ID        string
	UserID    string
	Symbol    string
	Type      string
	Quantity  string
	Price     string
	Date      string
	AccountID string
	CreatedAt time.Time
}

// NewTransaction creates a TransactionBuilder for the default user: a buy of
// 10 shares at 100, dated a week ago.
func NewTransaction(symbol string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:        MakeID(),
		UserID:    model.DefaultUserID,
		Symbol:    symbol,
		Type:      model.TransactionBuy,
		Quantity:  "10",
		Price:     "100",
		Date:      time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02"),
		CreatedAt: time.Now().UTC(),
	}
}

// ForUser sets the owning user.
func (b *TransactionBuilder) ForUser(userID string) *TransactionBuilder {
	b.UserID = userID
	return b
}

// Buy makes the transaction a buy of quantity at price.
func (b *TransactionBuilder) Buy(quantity, price string) *TransactionBuilder {
	b.Type = model.TransactionBuy
	b.Quantity = quantity
	b.Price = price
	return b
}

// Sell makes the transaction a sell of quantity at price.
func (b *TransactionBuilder) Sell(quantity, price string) *TransactionBuilder {
	b.Type = model.TransactionSell
	b.Quantity = quantity
	b.Price = price
	return b
}

// On sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) On(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// CreatedAtTime sets the row creation timestamp, used to exercise replay
// ordering between same-day transactions.
func (b *TransactionBuilder) CreatedAtTime(created time.Time) *TransactionBuilder {
	b.CreatedAt = created
	return b
}

// ForAccount links the transaction to a settlement account.
func (b *TransactionBuilder) ForAccount(accountID string) *TransactionBuilder {
	b.AccountID = accountID
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	quantity := Dec(t, b.Quantity)
	price := Dec(t, b.Price)
	totalCost := quantity.Mul(price).Round(2)

	var accountID any
	if b.AccountID != "" {
		accountID = b.AccountID
	}

	_, err := db.Exec(`
		INSERT INTO stock_transaction
			(id, user_id, symbol, type, quantity, price_per_share, total_cost, transaction_date, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Symbol, b.Type, quantity.String(), price.String(),
		totalCost.String(), b.Date, accountID, b.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"))
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		t.Fatalf("Invalid transaction date %q: %v", b.Date, err)
	}

	return model.Transaction{
		ID:            b.ID,
		UserID:        b.UserID,
		Symbol:        b.Symbol,
		Type:          b.Type,
		Quantity:      quantity,
		PricePerShare: price,
		TotalCost:     totalCost,
		Date:          date,
		AccountID:     b.AccountID,
		CreatedAt:     b.CreatedAt,
	}
}

// SnapshotBalance writes a balance-history row for an account and date.
func SnapshotBalance(t *testing.T, db *sql.DB, accountID, date, balance string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO account_balance_history (id, account_id, date, balance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, date) DO UPDATE SET balance = excluded.balance`,
		MakeID(), accountID, date, balance)
	if err != nil {
		t.Fatalf("Failed to create balance snapshot: %v", err)
	}
}
