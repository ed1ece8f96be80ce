package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
	"github.com/lifedash/portfolio-engine/internal/repository"
)

// QuoteSource provides batch quote lookups for portfolio valuation.
// *quotecache.Cache satisfies this interface.
type QuoteSource interface {
	Get(ctx context.Context, symbol string) (model.Quote, bool, error)
	GetBatch(ctx context.Context, symbols []string) map[string]quotecache.Result
}

// marketIndices are the tickers shown on the dashboard header.
var marketIndices = []string{"^DJI", "^IXIC", "^GSPC", "BTC-USD", "GC=F"}

// PortfolioService assembles the portfolio summary: valuation over priced
// positions, daily movement, and net-investment-adjusted period returns.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	accountRepo     *repository.AccountRepository
	snapshots       *SnapshotService
	quotes          QuoteSource
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	accountRepo *repository.AccountRepository,
	snapshots *SnapshotService,
	quotes QuoteSource,
) *PortfolioService {
	return &PortfolioService{
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		accountRepo:     accountRepo,
		snapshots:       snapshots,
		quotes:          quotes,
	}
}

// Summary builds the full portfolio view for a user.
//
// Total investment is the cost basis of all holdings. Current value sums only
// positions with price data; unpriced positions are counted separately so the
// caller can surface "no data" instead of a misleading low total. Period
// returns compare against snapshotted baselines and subtract net investment,
// so depositing cash never shows up as market gain.
//
// As a side effect the cached prices are written back to the holding rows and
// the stock portfolio account balance is synced to the computed value.
func (s *PortfolioService) Summary(ctx context.Context, userID string) (*model.PortfolioSummary, error) {
	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes := s.quotes.GetBatch(ctx, symbols)

	summary := &model.PortfolioSummary{
		UserID:         userID,
		TotalPositions: len(holdings),
		Positions:      make([]model.PositionPerformance, 0, len(holdings)),
		LastUpdated:    time.Now().UTC(),
	}

	for _, h := range holdings {
		pos := model.PositionPerformance{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
			CostBasis:   h.CostBasis(),
		}
		summary.TotalInvestment = summary.TotalInvestment.Add(pos.CostBasis)

		res, ok := quotes[h.Symbol]
		if !ok || res.Unavailable {
			summary.PositionsWithoutData++
			summary.Positions = append(summary.Positions, pos)
			continue
		}

		quote := res.Quote
		pos.HasCurrentData = true
		pos.PriceIsStale = res.Stale
		pos.CurrentPrice = quote.Price
		pos.CurrentValue = h.Quantity.Mul(quote.Price)
		pos.GainLoss = pos.CurrentValue.Sub(pos.CostBasis)
		if pos.CostBasis.IsPositive() {
			pos.GainLossPct = pos.GainLoss.Div(pos.CostBasis).Mul(decimal.NewFromInt(100)).Round(2)
		}
		pos.DailyChange = h.Quantity.Mul(quote.DailyChange)
		fetchedAt := quote.FetchedAt
		pos.LastPriceUpdate = &fetchedAt

		summary.CurrentValue = summary.CurrentValue.Add(pos.CurrentValue)
		summary.DailyChange = summary.DailyChange.Add(pos.DailyChange)
		summary.Positions = append(summary.Positions, pos)

		if err := s.holdingRepo.UpdatePrice(userID, h.Symbol, quote.Price, quote.DailyChange, quote.FetchedAt); err != nil {
			log.Printf("portfolio: failed to write price back to holding %s: %v", h.Symbol, err)
		}
	}

	summary.TotalGainLoss = summary.CurrentValue.Sub(summary.TotalInvestment)
	if summary.TotalInvestment.IsPositive() {
		summary.TotalGainLossPct = summary.TotalGainLoss.Div(summary.TotalInvestment).Mul(decimal.NewFromInt(100)).Round(2)
	}
	previousValue := summary.CurrentValue.Sub(summary.DailyChange)
	if previousValue.IsPositive() {
		summary.DailyChangePct = summary.DailyChange.Div(previousValue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	s.syncStockAccount(summary.CurrentValue)

	now := time.Now().UTC()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	summary.Return7d = s.periodReturn(userID, now.AddDate(0, 0, -7), summary.CurrentValue)
	summary.Return1m = s.periodReturn(userID, now.AddDate(0, -1, 0), summary.CurrentValue)
	summary.Return3m = s.periodReturn(userID, now.AddDate(0, -3, 0), summary.CurrentValue)
	summary.ReturnYTD = s.periodReturn(userID, startOfYear, summary.CurrentValue)

	return summary, nil
}

// RefreshPrices invalidates nothing but forces a fresh summary, which in turn
// re-fetches any expired quotes and writes them back to the holding rows.
func (s *PortfolioService) RefreshPrices(ctx context.Context, userID string) (*model.PortfolioSummary, error) {
	return s.Summary(ctx, userID)
}

// Indices returns quotes for the dashboard's market indices. Unavailable
// indices are omitted rather than failing the whole response.
func (s *PortfolioService) Indices(ctx context.Context) []model.Quote {
	results := s.quotes.GetBatch(ctx, marketIndices)
	out := make([]model.Quote, 0, len(marketIndices))
	for _, symbol := range marketIndices {
		if res, ok := results[symbol]; ok && !res.Unavailable {
			out = append(out, res.Quote)
		}
	}
	return out
}

// periodReturn computes the net-investment-adjusted return since a baseline
// date. The baseline is the stock portfolio account's snapshotted balance;
// the net flow is the sum of buys minus sells strictly after the baseline
// date. A missing baseline or a non-positive denominator yields an
// unavailable return, never a fabricated zero.
func (s *PortfolioService) periodReturn(userID string, baselineDate time.Time, currentValue decimal.Decimal) model.PeriodReturn {
	stockAccount, err := s.stockAccount()
	if err != nil {
		return model.PeriodReturn{}
	}

	baseline, err := s.snapshots.BalanceAsOf(stockAccount.ID, baselineDate)
	if err != nil {
		if !errors.Is(err, apperrors.ErrBaselineUnavailable) {
			log.Printf("portfolio: baseline lookup failed for %s: %v", baselineDate.Format("2006-01-02"), err)
		}
		return model.PeriodReturn{}
	}

	netFlow, err := s.transactionRepo.NetFlow(userID, baselineDate, time.Now().UTC())
	if err != nil {
		log.Printf("portfolio: net flow query failed: %v", err)
		return model.PeriodReturn{}
	}

	gain := currentValue.Sub(baseline).Sub(netFlow)
	denominator := baseline.Add(netFlow)
	if !denominator.IsPositive() {
		return model.PeriodReturn{}
	}
	pct := gain.Div(denominator).Mul(decimal.NewFromInt(100)).Round(2)

	return model.PeriodReturn{GainLoss: &gain, Percentage: &pct}
}

// syncStockAccount keeps the advisory balance of the stock portfolio account
// aligned with the last computed market value.
func (s *PortfolioService) syncStockAccount(currentValue decimal.Decimal) {
	account, err := s.stockAccount()
	if err != nil {
		return
	}
	if account.Balance.Equal(currentValue) {
		return
	}
	if err := s.accountRepo.UpdateBalance(account.ID, currentValue); err != nil {
		log.Printf("portfolio: failed to sync stock account balance: %v", err)
	}
}

func (s *PortfolioService) stockAccount() (model.Account, error) {
	accounts, err := s.accountRepo.FindByType(model.AccountStockPortfolio)
	if err != nil {
		return model.Account{}, err
	}
	if len(accounts) == 0 {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	return accounts[0], nil
}
