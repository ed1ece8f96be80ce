package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents the current position in one symbol for one user.
// Quantity and average cost are always derived by replaying the user's
// transaction history in date order; a holding row disappears entirely when
// the position is fully liquidated.
//
// The price columns are a hydration cache: they mirror the quote cache and may
// be nil when no price has ever been fetched for the symbol.
type Holding struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Symbol          string           `json:"symbol"`
	Quantity        decimal.Decimal  `json:"quantity"`
	AverageCost     decimal.Decimal  `json:"averageCost"`
	CurrentPrice    *decimal.Decimal `json:"currentPrice,omitempty"`
	DailyChange     *decimal.Decimal `json:"dailyChange,omitempty"`
	LastPriceUpdate *time.Time       `json:"lastPriceUpdate,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"createdAt,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt,omitempty"`
}

// CostBasis returns the remaining cost basis of the position.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// CurrentValue returns quantity times the cached current price.
// The second return is false when no price is cached; callers must report the
// position as unpriced rather than treating the value as zero.
func (h Holding) CurrentValue() (decimal.Decimal, bool) {
	if h.CurrentPrice == nil {
		return decimal.Zero, false
	}
	return h.Quantity.Mul(*h.CurrentPrice), true
}
