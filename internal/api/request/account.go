package request

import "github.com/shopspring/decimal"

// CreateAccountRequest describes a new account. Balance is the opening
// balance and defaults to zero.
type CreateAccountRequest struct {
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	AllowNegative bool             `json:"allowNegative"`
}

// UpdateAccountRequest carries a partial account update. Nil fields are
// left unchanged; setting Balance records a same-day history snapshot.
type UpdateAccountRequest struct {
	Name          *string          `json:"name,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	AllowNegative *bool            `json:"allowNegative,omitempty"`
}
