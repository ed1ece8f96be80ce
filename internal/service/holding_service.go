package service

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
)

// HoldingService derives holdings from the transaction history. Holdings are
// never edited in place: every change to the history triggers a full replay,
// which makes the derivation idempotent and self-healing.
type HoldingService struct {
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
}

// NewHoldingService creates a new HoldingService with the provided repository dependencies.
func NewHoldingService(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
) *HoldingService {
	return &HoldingService{
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
	}
}

// Recalculate replays the user's full transaction history and rewrites the
// holding rows to match. Returns the number of holdings written. Positions
// that replay to zero quantity are deleted.
func (s *HoldingService) Recalculate(userID string) (int, error) {
	return s.replay(s.transactionRepo, s.holdingRepo, userID)
}

// RecalculateTx is Recalculate scoped to an open transaction, so a trade and
// the holding update it implies commit or roll back together.
func (s *HoldingService) RecalculateTx(tx *sql.Tx, userID string) (int, error) {
	return s.replay(s.transactionRepo.WithTx(tx), s.holdingRepo.WithTx(tx), userID)
}

// ListHoldings returns the user's current holdings.
func (s *HoldingService) ListHoldings(userID string) ([]model.Holding, error) {
	return s.holdingRepo.ListByUser(userID)
}

// GetHolding returns the user's holding in one symbol.
func (s *HoldingService) GetHolding(userID, symbol string) (model.Holding, error) {
	return s.holdingRepo.Find(userID, symbol)
}

// position is the running state of the replay fold for one symbol.
type position struct {
	quantity decimal.Decimal
	cost     decimal.Decimal
}

// replay folds the ordered transaction history into per-symbol positions and
// reconciles the holding table against the result.
//
// A buy adds its quantity and total cost to the running position. A sell
// removes quantity at the current average cost, which leaves the average of
// the remaining shares unchanged. A sell exceeding the quantity accumulated
// so far fails the whole replay: the history itself is contradictory and
// writing any derived state from it would be a guess.
func (s *HoldingService) replay(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	userID string,
) (int, error) {
	transactions, err := transactionRepo.ListByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions for replay: %w", err)
	}

	positions := make(map[string]*position)
	for _, t := range transactions {
		p := positions[t.Symbol]
		if p == nil {
			p = &position{}
			positions[t.Symbol] = p
		}

		switch t.Type {
		case model.TransactionBuy:
			p.quantity = p.quantity.Add(t.Quantity)
			p.cost = p.cost.Add(t.TotalCost)
		case model.TransactionSell:
			if t.Quantity.GreaterThan(p.quantity) {
				return 0, fmt.Errorf("sell of %s %s on %s exceeds %s held: %w",
					t.Quantity, t.Symbol, t.Date.Format("2006-01-02"), p.quantity,
					apperrors.ErrInconsistentHistory)
			}
			avg := averageCost(p.cost, p.quantity)
			p.quantity = p.quantity.Sub(t.Quantity)
			p.cost = p.cost.Sub(t.Quantity.Mul(avg))
			if p.quantity.IsZero() {
				p.cost = decimal.Zero
			}
		default:
			return 0, fmt.Errorf("transaction %s: %w", t.ID, apperrors.ErrInvalidTransactionType)
		}
	}

	existing, err := holdingRepo.ListByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load holdings for reconciliation: %w", err)
	}

	written := 0
	for symbol, p := range positions {
		if !p.quantity.IsPositive() {
			continue
		}
		if err := holdingRepo.Upsert(userID, symbol, p.quantity, averageCost(p.cost, p.quantity)); err != nil {
			return written, fmt.Errorf("failed to write holding for %s: %w", symbol, err)
		}
		written++
	}

	for _, h := range existing {
		if p, ok := positions[h.Symbol]; ok && p.quantity.IsPositive() {
			continue
		}
		if err := holdingRepo.Delete(userID, h.Symbol); err != nil {
			return written, fmt.Errorf("failed to remove liquidated holding %s: %w", h.Symbol, err)
		}
	}

	return written, nil
}

// averageCost is the weighted average cost per share, rounded to 4 decimal
// places, half up. Zero quantity yields zero rather than dividing.
func averageCost(cost, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return cost.DivRound(quantity, 4)
}
