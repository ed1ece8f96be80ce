package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest describes a trade to execute. Exactly one of
// Quantity or DollarAmount must be set; when DollarAmount is given the
// quantity is derived from the resolved price. PricePerShare is optional:
// when omitted the price is resolved from the quote cache (or the historical
// close for back-dated trades).
type CreateTransactionRequest struct {
	Symbol        string           `json:"symbol"`
	Type          string           `json:"type"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	DollarAmount  *decimal.Decimal `json:"dollarAmount,omitempty"`
	PricePerShare *decimal.Decimal `json:"pricePerShare,omitempty"`
	Date          string           `json:"date"`
	AccountID     string           `json:"accountId,omitempty"`
}
