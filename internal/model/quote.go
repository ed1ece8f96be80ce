package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known market data for one symbol. FetchedAt is
// monotonically non-decreasing per symbol; a quote older than the cache TTL is
// considered stale but is still served (flagged) when the upstream provider
// cannot be reached or the call budget is exhausted.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	DailyChange   decimal.Decimal `json:"dailyChange"`
	PercentChange decimal.Decimal `json:"percentChange"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	FetchedAt     time.Time       `json:"fetchedAt"`
	MarketOpen    bool            `json:"marketOpen"`
}
