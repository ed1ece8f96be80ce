package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionPerformance is the per-symbol slice of a portfolio summary.
// HasCurrentData is false when no price is cached for the symbol; in that case
// the valuation fields are zero and the position is excluded from the
// portfolio's current value rather than silently counted at zero.
type PositionPerformance struct {
	Symbol          string           `json:"symbol"`
	Quantity        decimal.Decimal  `json:"quantity"`
	AverageCost     decimal.Decimal  `json:"averageCost"`
	CostBasis       decimal.Decimal  `json:"costBasis"`
	CurrentPrice    decimal.Decimal  `json:"currentPrice"`
	CurrentValue    decimal.Decimal  `json:"currentValue"`
	GainLoss        decimal.Decimal  `json:"gainLoss"`
	GainLossPct     decimal.Decimal  `json:"gainLossPct"`
	DailyChange     decimal.Decimal  `json:"dailyChange"`
	HasCurrentData  bool             `json:"hasCurrentData"`
	PriceIsStale    bool             `json:"priceIsStale"`
	LastPriceUpdate *time.Time       `json:"lastPriceUpdate,omitempty"`
}

// PeriodReturn is a net-investment-adjusted return over one time window.
// Nil GainLoss/Percentage means the return is unavailable (no baseline
// snapshot exists for the window start) and must not be displayed as zero.
type PeriodReturn struct {
	GainLoss   *decimal.Decimal `json:"gainLoss"`
	Percentage *decimal.Decimal `json:"percentage"`
}

// Available reports whether the return could be computed.
func (p PeriodReturn) Available() bool { return p.GainLoss != nil }

// PortfolioSummary is the assembled portfolio view: cost basis, market value
// over priced positions, daily change, and period returns for several windows.
type PortfolioSummary struct {
	UserID               string                `json:"userId"`
	TotalInvestment      decimal.Decimal       `json:"totalInvestment"`
	CurrentValue         decimal.Decimal       `json:"currentValue"`
	TotalGainLoss        decimal.Decimal       `json:"totalGainLoss"`
	TotalGainLossPct     decimal.Decimal       `json:"totalGainLossPct"`
	DailyChange          decimal.Decimal       `json:"dailyChange"`
	DailyChangePct       decimal.Decimal       `json:"dailyChangePct"`
	Return7d             PeriodReturn          `json:"return7d"`
	Return1m             PeriodReturn          `json:"return1m"`
	Return3m             PeriodReturn          `json:"return3m"`
	ReturnYTD            PeriodReturn          `json:"returnYtd"`
	Positions            []PositionPerformance `json:"positions"`
	TotalPositions       int                   `json:"totalPositions"`
	PositionsWithoutData int                   `json:"positionsWithoutData"`
	LastUpdated          time.Time             `json:"lastUpdated"`
}
