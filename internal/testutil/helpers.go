package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
	"github.com/lifedash/portfolio-engine/internal/repository"
	"github.com/lifedash/portfolio-engine/internal/service"
)

// StubQuotes is a canned quote source for service tests. It satisfies both
// service.PriceSource and service.QuoteSource. Symbols absent from Prices
// behave as unavailable.
type StubQuotes struct {
	Prices       map[string]decimal.Decimal
	DailyChanges map[string]decimal.Decimal
	Historical   map[string]decimal.Decimal
	Stale        bool
}

// NewStubQuotes creates an empty stub; add prices via SetPrice.
func NewStubQuotes() *StubQuotes {
	return &StubQuotes{
		Prices:       make(map[string]decimal.Decimal),
		DailyChanges: make(map[string]decimal.Decimal),
		Historical:   make(map[string]decimal.Decimal),
	}
}

// SetPrice sets the current price (and optional daily change) for a symbol.
func (s *StubQuotes) SetPrice(symbol, price, dailyChange string) *StubQuotes {
	s.Prices[symbol] = decimal.RequireFromString(price)
	s.DailyChanges[symbol] = decimal.RequireFromString(dailyChange)
	return s
}

// SetHistorical sets the historical close returned for a symbol.
func (s *StubQuotes) SetHistorical(symbol, price string) *StubQuotes {
	s.Historical[symbol] = decimal.RequireFromString(price)
	return s
}

// Get returns the canned quote for a symbol.
func (s *StubQuotes) Get(_ context.Context, symbol string) (model.Quote, bool, error) {
	price, ok := s.Prices[symbol]
	if !ok {
		return model.Quote{}, false, apperrors.ErrQuoteUnavailable
	}
	return model.Quote{
		Symbol:      symbol,
		Price:       price,
		DailyChange: s.DailyChanges[symbol],
		FetchedAt:   time.Now().UTC(),
	}, s.Stale, nil
}

// GetBatch returns canned quotes for a symbol list.
func (s *StubQuotes) GetBatch(ctx context.Context, symbols []string) map[string]quotecache.Result {
	results := make(map[string]quotecache.Result, len(symbols))
	for _, symbol := range symbols {
		q, stale, err := s.Get(ctx, symbol)
		if err != nil {
			results[symbol] = quotecache.Result{Unavailable: true}
			continue
		}
		results[symbol] = quotecache.Result{Quote: q, Stale: stale}
	}
	return results
}

// HistoricalClose returns the canned historical close for a symbol.
func (s *StubQuotes) HistoricalClose(_ context.Context, symbol string, _ time.Time) (decimal.Decimal, error) {
	price, ok := s.Historical[symbol]
	if !ok {
		return decimal.Zero, apperrors.ErrQuoteUnavailable
	}
	return price, nil
}

func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	return service.NewHoldingService(
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
	)
}

func NewTestTradeService(t *testing.T, db *sql.DB, quotes service.PriceSource) *service.TradeService {
	t.Helper()

	return service.NewTradeService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		NewTestHoldingService(t, db),
		quotes,
		false,
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB, baselinePolicy string) *service.SnapshotService {
	t.Helper()

	return service.NewSnapshotService(
		repository.NewAccountRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewHistoryRepository(db),
		baselinePolicy,
	)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, quotes service.QuoteSource, baselinePolicy string) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewAccountRepository(db),
		NewTestSnapshotService(t, db, baselinePolicy),
		quotes,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	return service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewHistoryRepository(db),
	)
}
