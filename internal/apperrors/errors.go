package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrHoldingNotFound indicates that no holding exists for the given user and symbol.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrTransactionNotFound indicates that a stock transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrLedgerEntryNotFound indicates that no ledger entry is linked to a stock transaction.
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")

	// ErrSettingNotFound indicates that a global setting key has not been stored.
	ErrSettingNotFound = errors.New("setting not found")
)

// Validation errors represent malformed requests.
// These are rejected before any state change.
var (
	// ErrInvalidSymbol indicates a symbol that does not match the accepted ticker format.
	ErrInvalidSymbol = errors.New("invalid symbol format")

	// ErrInvalidTransactionType indicates a trade type other than BUY or SELL.
	ErrInvalidTransactionType = errors.New("transaction type must be BUY or SELL")

	// ErrNonPositiveQuantity indicates a zero or negative trade quantity.
	ErrNonPositiveQuantity = errors.New("quantity must be positive")

	// ErrNonPositivePrice indicates a zero or negative price per share.
	ErrNonPositivePrice = errors.New("price must be positive")

	// ErrNonPositiveAmount indicates a zero or negative dollar amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidDate indicates an unparseable or missing date parameter.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAccountType indicates an unknown account type.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Business logic errors represent constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientQuantity indicates that a sell exceeds the quantity currently held.
	// The transaction is rejected; holdings never go negative.
	ErrInsufficientQuantity = errors.New("insufficient quantity for sale")

	// ErrInsufficientFunds indicates that a buy would take the cash account below
	// zero and the account does not allow a negative balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountProtected indicates an attempt to delete or retype a system account.
	ErrAccountProtected = errors.New("account is protected")

	// ErrBaselineUnavailable indicates that no balance snapshot exists for a
	// period's start date. The period return is reported as unavailable rather
	// than computed against a substituted value.
	ErrBaselineUnavailable = errors.New("no baseline snapshot for period start")
)

// Upstream and data integrity errors.
var (
	// ErrQuoteUnavailable indicates that no price is known for a symbol: the
	// upstream fetch failed or was rate-limited and nothing is cached. Read
	// paths degrade to a "no data" marker; this error never becomes a 5xx.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrRateLimited indicates the upstream call budget for the current window
	// is exhausted. Internal to the quote cache; callers see stale data or
	// ErrQuoteUnavailable instead.
	ErrRateLimited = errors.New("upstream call budget exhausted")

	// ErrInconsistentHistory indicates that transaction replay encountered a
	// sell exceeding the quantity accumulated so far. The history is corrupt or
	// out of order; the recalculation for that symbol fails rather than patching.
	ErrInconsistentHistory = errors.New("inconsistent transaction history")
)
