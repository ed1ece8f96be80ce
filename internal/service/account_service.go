package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
)

// AccountService manages balance accounts and their history. The CASH and
// STOCK_PORTFOLIO accounts created at startup are system accounts and cannot
// be deleted; accounts created through the API are manual.
type AccountService struct {
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
	historyRepo *repository.HistoryRepository
}

// NewAccountService creates a new AccountService with the provided repository dependencies.
func NewAccountService(
	accountRepo *repository.AccountRepository,
	ledgerRepo *repository.LedgerRepository,
	historyRepo *repository.HistoryRepository,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		historyRepo: historyRepo,
	}
}

// EnsureSystemAccounts creates the CASH and STOCK_PORTFOLIO system accounts
// if no account of the respective type exists yet. Called once at startup;
// running it again is a no-op.
func (s *AccountService) EnsureSystemAccounts() error {
	defaults := []model.Account{
		{Name: "Main Cash", Type: model.AccountCash},
		{Name: "Stock Portfolio", Type: model.AccountStockPortfolio},
	}

	for _, def := range defaults {
		existing, err := s.accountRepo.FindByType(def.Type)
		if err != nil {
			return fmt.Errorf("failed to check for %s account: %w", def.Type, err)
		}
		if len(existing) > 0 {
			continue
		}

		def.ID = uuid.New().String()
		def.Balance = decimal.Zero
		if err := s.accountRepo.Insert(&def); err != nil {
			return fmt.Errorf("failed to create %s account: %w", def.Type, err)
		}
	}

	return nil
}

// CreateAccount creates a manual account. A non-zero opening balance is also
// recorded as a same-day history snapshot so period returns have a baseline
// from day one.
func (s *AccountService) CreateAccount(req request.CreateAccountRequest) (*model.Account, error) {
	account := &model.Account{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Type:          req.Type,
		Balance:       decimal.Zero,
		AllowNegative: req.AllowNegative,
		IsManual:      true,
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}

	if err := s.accountRepo.Insert(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if !account.Balance.IsZero() {
		if err := s.historyRepo.Upsert(account.ID, time.Now().UTC(), account.Balance); err != nil {
			return nil, fmt.Errorf("failed to record opening balance snapshot: %w", err)
		}
	}

	return account, nil
}

// GetAccount returns one account by ID.
func (s *AccountService) GetAccount(id string) (model.Account, error) {
	return s.accountRepo.Get(id)
}

// ListAccounts returns all accounts.
func (s *AccountService) ListAccounts() ([]model.Account, error) {
	return s.accountRepo.List()
}

// UpdateAccount applies a partial update. Setting the balance writes a
// same-day history snapshot: a manual balance correction is a legitimate
// baseline for period returns, unlike an unrecorded drift.
func (s *AccountService) UpdateAccount(id string, req request.UpdateAccountRequest) (model.Account, error) {
	account, err := s.accountRepo.Get(id)
	if err != nil {
		return model.Account{}, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.AllowNegative != nil {
		account.AllowNegative = *req.AllowNegative
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}

	if err := s.accountRepo.Update(&account); err != nil {
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}

	if req.Balance != nil {
		if err := s.historyRepo.Upsert(account.ID, time.Now().UTC(), account.Balance); err != nil {
			return model.Account{}, fmt.Errorf("failed to record balance snapshot: %w", err)
		}
	}

	return account, nil
}

// DeleteAccount removes a manual account. System accounts are protected:
// trades and snapshots depend on them existing.
func (s *AccountService) DeleteAccount(id string) error {
	account, err := s.accountRepo.Get(id)
	if err != nil {
		return err
	}
	if !account.IsManual {
		return fmt.Errorf("%s is a system account: %w", account.Name, apperrors.ErrAccountProtected)
	}
	return s.accountRepo.Delete(id)
}

// Ledger returns the account's ledger entries, most recent first.
func (s *AccountService) Ledger(accountID string) ([]model.AccountTransaction, error) {
	if _, err := s.accountRepo.Get(accountID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByAccount(accountID)
}

// History returns the account's balance snapshots over a date range.
// A zero start means from the beginning; a zero end means up to today.
func (s *AccountService) History(accountID string, start, end time.Time) ([]model.BalanceHistory, error) {
	if _, err := s.accountRepo.Get(accountID); err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return s.historyRepo.ListByAccount(accountID, start, end)
}
