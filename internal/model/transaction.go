package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types for stock trades.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Transaction represents a single buy or sell of a stock position.
// Transactions are the canonical source of truth: holdings and ledger entries
// are derived from them, never the reverse. Rows are append-only; deleting a
// transaction goes through trade reversal, which re-derives holdings from the
// remaining history.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Symbol        string          `json:"symbol"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Date          time.Time       `json:"transactionDate"`
	AccountID     string          `json:"accountId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}
