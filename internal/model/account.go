package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types.
const (
	AccountCash           = "CASH"
	AccountStockPortfolio = "STOCK_PORTFOLIO"
	AccountRetirement     = "RETIREMENT"
	AccountOther          = "OTHER"
)

// Account is a balance container. For STOCK_PORTFOLIO accounts the stored
// balance is advisory only; the authoritative value is the sum of
// quantity * currentPrice over the user's holdings, computed on read.
type Account struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	AllowNegative bool            `json:"allowNegative"`
	IsManual      bool            `json:"isManual"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt,omitempty"`
}

// Ledger entry types.
const (
	LedgerDebit  = "DEBIT"
	LedgerCredit = "CREDIT"
)

// AccountTransaction is an immutable ledger entry recording a single balance
// change. Entries capture the before/after balance and, for entries caused by
// stock trades, a back-reference to the originating transaction so the trade
// can be reversed exactly. Rows are inserted, never mutated.
type AccountTransaction struct {
	ID                 string          `json:"id"`
	AccountID          string          `json:"accountId"`
	Date               time.Time       `json:"transactionDate"`
	Amount             decimal.Decimal `json:"amount"`
	OldBalance         decimal.Decimal `json:"oldBalance"`
	NewBalance         decimal.Decimal `json:"newBalance"`
	Type               string          `json:"type"`
	Description        string          `json:"description,omitempty"`
	StockTransactionID string          `json:"relatedStockTransactionId,omitempty"`
	CreatedAt          time.Time       `json:"createdAt,omitempty"`
}

// BalanceHistory is one balance snapshot per account per calendar date,
// written by the daily snapshot job and read back as the baseline for
// period-return calculations. At most one row exists per (account, date).
type BalanceHistory struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	Date       time.Time       `json:"date"`
	Balance    decimal.Decimal `json:"balance"`
	RecordedAt time.Time       `json:"recordedAt,omitempty"`
}
