package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
)

// SnapshotService records daily balance snapshots and serves them back as
// baselines for period-return calculations.
type SnapshotService struct {
	accountRepo *repository.AccountRepository
	holdingRepo *repository.HoldingRepository
	historyRepo *repository.HistoryRepository

	// baselinePolicy controls BalanceAsOf lookups: exact requires a snapshot
	// on the requested date, nearest-prior falls back to the most recent
	// earlier snapshot.
	baselinePolicy string
}

// NewSnapshotService creates a new SnapshotService with the provided dependencies.
func NewSnapshotService(
	accountRepo *repository.AccountRepository,
	holdingRepo *repository.HoldingRepository,
	historyRepo *repository.HistoryRepository,
	baselinePolicy string,
) *SnapshotService {
	return &SnapshotService{
		accountRepo:    accountRepo,
		holdingRepo:    holdingRepo,
		historyRepo:    historyRepo,
		baselinePolicy: baselinePolicy,
	}
}

// SnapshotAll writes one balance snapshot per account for the given date,
// overwriting any snapshot already recorded for that date. The stock
// portfolio account is valued from holdings times cached prices; positions
// with no cached price contribute nothing rather than a guessed zero cost.
func (s *SnapshotService) SnapshotAll(date time.Time) error {
	accounts, err := s.accountRepo.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts for snapshot: %w", err)
	}

	for _, account := range accounts {
		balance := account.Balance
		if account.Type == model.AccountStockPortfolio {
			balance, err = s.holdingRepo.TotalCurrentValue(model.DefaultUserID)
			if err != nil {
				return fmt.Errorf("failed to value stock portfolio: %w", err)
			}
		}

		if err := s.historyRepo.Upsert(account.ID, date, balance); err != nil {
			return fmt.Errorf("failed to snapshot account %s: %w", account.Name, err)
		}
	}

	return nil
}

// BalanceAsOf returns the snapshotted balance of an account on a date.
// Under the exact policy a missing snapshot yields ErrBaselineUnavailable;
// under nearest-prior the most recent earlier snapshot is used, and the error
// only occurs when no snapshot precedes the date at all.
func (s *SnapshotService) BalanceAsOf(accountID string, date time.Time) (decimal.Decimal, error) {
	balance, found, err := s.historyRepo.FindExact(accountID, date)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return balance, nil
	}

	if s.baselinePolicy == config.BaselineNearestPrior {
		balance, found, err = s.historyRepo.FindNearestPrior(accountID, date)
		if err != nil {
			return decimal.Zero, err
		}
		if found {
			return balance, nil
		}
	}

	return decimal.Zero, fmt.Errorf("account %s on %s: %w",
		accountID, date.Format("2006-01-02"), apperrors.ErrBaselineUnavailable)
}
