package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
)

// PriceSource resolves prices for trades that do not carry an explicit price.
// *quotecache.Cache satisfies this interface.
type PriceSource interface {
	Get(ctx context.Context, symbol string) (model.Quote, bool, error)
	HistoricalClose(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)
}

// TradeService executes and reverses stock trades. Every trade is one
// database transaction covering the stock transaction row, the cash account
// balance change, the ledger entry and the holding recalculation; a failure
// at any step rolls all of it back.
type TradeService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	accountRepo     *repository.AccountRepository
	ledgerRepo      *repository.LedgerRepository
	holdings        *HoldingService
	prices          PriceSource

	// allowNegativeCash is the deployment-wide override; individual accounts
	// can also opt in via their allow_negative flag.
	allowNegativeCash bool
}

// NewTradeService creates a new TradeService with the provided dependencies.
func NewTradeService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	accountRepo *repository.AccountRepository,
	ledgerRepo *repository.LedgerRepository,
	holdings *HoldingService,
	prices PriceSource,
	allowNegativeCash bool,
) *TradeService {
	return &TradeService{
		db:                db,
		transactionRepo:   transactionRepo,
		holdingRepo:       holdingRepo,
		accountRepo:       accountRepo,
		ledgerRepo:        ledgerRepo,
		holdings:          holdings,
		prices:            prices,
		allowNegativeCash: allowNegativeCash,
	}
}

// ExecuteTrade records a buy or sell, moves the cash, writes the ledger entry
// and recalculates holdings, all within a single database transaction.
//
// Price resolution, in order: explicit pricePerShare from the request, the
// current quote for trades dated today, the historical close for back-dated
// trades. Dollar-amount requests derive the share quantity from the resolved
// price at 6 decimal places.
func (s *TradeService) ExecuteTrade(ctx context.Context, userID string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidDate, req.Date)
	}

	price, err := s.resolvePrice(ctx, req, date)
	if err != nil {
		return nil, err
	}

	var quantity decimal.Decimal
	if req.Quantity != nil {
		quantity = *req.Quantity
	} else {
		quantity = req.DollarAmount.DivRound(price, 6)
	}
	if !quantity.IsPositive() {
		return nil, apperrors.ErrNonPositiveQuantity
	}

	account, hasAccount, err := s.resolveAccount(req.AccountID)
	if err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Symbol:        req.Symbol,
		Type:          req.Type,
		Quantity:      quantity,
		PricePerShare: price,
		TotalCost:     quantity.Mul(price).Round(2),
		Date:          date,
		CreatedAt:     time.Now().UTC(),
	}
	if hasAccount {
		transaction.AccountID = account.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin trade transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if req.Type == model.TransactionSell {
		if err := s.checkSellQuantity(tx, userID, req.Symbol, quantity); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.WithTx(tx).Insert(transaction); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if hasAccount {
		if err := s.applyCashMovement(tx, account.ID, transaction); err != nil {
			return nil, err
		}
	}

	if _, err := s.holdings.RecalculateTx(tx, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trade: %w", err)
	}

	return transaction, nil
}

// ReverseTrade undoes a recorded trade: the linked ledger entries are
// compensated with inverse entries, the cash balance is restored, the stock
// transaction row is deleted and holdings are recalculated from the remaining
// history. All within one database transaction.
//
// If removing the transaction would leave later sells exceeding the held
// quantity, the replay fails and the reversal rolls back, so the history can
// never be left contradictory.
func (s *TradeService) ReverseTrade(ctx context.Context, transactionID string) error {
	transaction, err := s.transactionRepo.Get(transactionID)
	if err != nil {
		return err
	}

	entries, err := s.ledgerRepo.FindByStockTransaction(transactionID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	accountRepo := s.accountRepo.WithTx(tx)
	ledgerRepo := s.ledgerRepo.WithTx(tx)

	for _, entry := range entries {
		account, err := accountRepo.Get(entry.AccountID)
		if err != nil {
			return err
		}

		// A DEBIT took money out, so the compensation credits it back.
		compType := model.LedgerCredit
		newBalance := account.Balance.Add(entry.Amount)
		if entry.Type == model.LedgerCredit {
			compType = model.LedgerDebit
			newBalance = account.Balance.Sub(entry.Amount)
		}

		if err := accountRepo.UpdateBalance(account.ID, newBalance); err != nil {
			return fmt.Errorf("failed to restore balance on %s: %w", account.ID, err)
		}

		compensation := &model.AccountTransaction{
			ID:                 uuid.New().String(),
			AccountID:          entry.AccountID,
			Date:               time.Now().UTC(),
			Amount:             entry.Amount,
			OldBalance:         account.Balance,
			NewBalance:         newBalance,
			Type:               compType,
			Description:        "REVERSAL: " + entry.Description,
			StockTransactionID: transactionID,
			CreatedAt:          time.Now().UTC(),
		}
		if err := ledgerRepo.Insert(compensation); err != nil {
			return fmt.Errorf("failed to record compensating entry: %w", err)
		}
	}

	if err := s.transactionRepo.WithTx(tx).Delete(transactionID); err != nil {
		return err
	}

	if _, err := s.holdings.RecalculateTx(tx, transaction.UserID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reversal: %w", err)
	}

	return nil
}

// ListTransactions returns the user's transactions, most recent first.
func (s *TradeService) ListTransactions(userID string) ([]model.Transaction, error) {
	return s.transactionRepo.ListByUserDescending(userID)
}

// GetTransaction returns a single transaction by ID.
func (s *TradeService) GetTransaction(id string) (model.Transaction, error) {
	return s.transactionRepo.Get(id)
}

// resolvePrice picks the price per share for a trade request.
func (s *TradeService) resolvePrice(ctx context.Context, req request.CreateTransactionRequest, date time.Time) (decimal.Decimal, error) {
	if req.PricePerShare != nil {
		if !req.PricePerShare.IsPositive() {
			return decimal.Zero, apperrors.ErrNonPositivePrice
		}
		return *req.PricePerShare, nil
	}

	today := time.Now().UTC().Format("2006-01-02")
	if date.Format("2006-01-02") == today {
		quote, _, err := s.prices.Get(ctx, req.Symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot price trade for %s: %w", req.Symbol, err)
		}
		return quote.Price, nil
	}

	price, err := s.prices.HistoricalClose(ctx, req.Symbol, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot price back-dated trade for %s: %w", req.Symbol, err)
	}
	return price, nil
}

// resolveAccount picks the cash account a trade settles against. An explicit
// account ID must exist; with no ID the oldest cash account is used, and a
// deployment with no cash account at all settles trades without a ledger.
func (s *TradeService) resolveAccount(accountID string) (model.Account, bool, error) {
	if accountID != "" {
		account, err := s.accountRepo.Get(accountID)
		if err != nil {
			return model.Account{}, false, err
		}
		return account, true, nil
	}

	account, err := s.accountRepo.DefaultCash()
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, err
	}
	return account, true, nil
}

// checkSellQuantity rejects sells that exceed the currently held quantity.
func (s *TradeService) checkSellQuantity(tx *sql.Tx, userID, symbol string, quantity decimal.Decimal) error {
	holding, err := s.holdingRepo.WithTx(tx).Find(userID, symbol)
	if errors.Is(err, apperrors.ErrHoldingNotFound) {
		return fmt.Errorf("no position in %s: %w", symbol, apperrors.ErrInsufficientQuantity)
	}
	if err != nil {
		return err
	}
	if quantity.GreaterThan(holding.Quantity) {
		return fmt.Errorf("sell of %s exceeds %s held in %s: %w",
			quantity, holding.Quantity, symbol, apperrors.ErrInsufficientQuantity)
	}
	return nil
}

// applyCashMovement debits or credits the settlement account inside the trade
// transaction and records the ledger entry, with the before and after balance
// captured on the entry itself.
func (s *TradeService) applyCashMovement(tx *sql.Tx, accountID string, transaction *model.Transaction) error {
	accountRepo := s.accountRepo.WithTx(tx)

	account, err := accountRepo.Get(accountID)
	if err != nil {
		return err
	}

	var entryType string
	var newBalance decimal.Decimal
	if transaction.Type == model.TransactionBuy {
		entryType = model.LedgerDebit
		newBalance = account.Balance.Sub(transaction.TotalCost)
		if newBalance.IsNegative() && !account.AllowNegative && !s.allowNegativeCash {
			return fmt.Errorf("buy of %s costs %s but %s holds %s: %w",
				transaction.Symbol, transaction.TotalCost, account.Name, account.Balance,
				apperrors.ErrInsufficientFunds)
		}
	} else {
		entryType = model.LedgerCredit
		newBalance = account.Balance.Add(transaction.TotalCost)
	}

	if err := accountRepo.UpdateBalance(account.ID, newBalance); err != nil {
		return fmt.Errorf("failed to update balance on %s: %w", account.ID, err)
	}

	entry := &model.AccountTransaction{
		ID:         uuid.New().String(),
		AccountID:  account.ID,
		Date:       transaction.Date,
		Amount:     transaction.TotalCost,
		OldBalance: account.Balance,
		NewBalance: newBalance,
		Type:       entryType,
		Description: fmt.Sprintf("%s %s %s @ $%s",
			transaction.Type, transaction.Quantity, transaction.Symbol, transaction.PricePerShare),
		StockTransactionID: transaction.ID,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.ledgerRepo.WithTx(tx).Insert(entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return nil
}
