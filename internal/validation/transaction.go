package validation

import (
	"strings"
	"time"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/model"
)

// ValidateCreateTransaction validates a trade request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - symbol: Must be a plausible ticker symbol
//   - type: Must be BUY or SELL
//   - date: Must be in YYYY-MM-DD format, not in the future
//   - exactly one of quantity or dollarAmount, positive
//
// Optional fields (validated if provided):
//   - pricePerShare: Must be positive
//   - accountId: Must be a valid UUID
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	} else if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if req.Type != model.TransactionBuy && req.Type != model.TransactionSell {
		errors["type"] = "type must be BUY or SELL"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if date, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	} else if date.After(time.Now().UTC()) {
		errors["date"] = "date cannot be in the future"
	}

	switch {
	case req.Quantity == nil && req.DollarAmount == nil:
		errors["quantity"] = "either quantity or dollarAmount is required"
	case req.Quantity != nil && req.DollarAmount != nil:
		errors["quantity"] = "quantity and dollarAmount are mutually exclusive"
	case req.Quantity != nil && !req.Quantity.IsPositive():
		errors["quantity"] = "quantity must be positive"
	case req.DollarAmount != nil && !req.DollarAmount.IsPositive():
		errors["dollarAmount"] = "dollarAmount must be positive"
	}

	if req.PricePerShare != nil && !req.PricePerShare.IsPositive() {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if req.AccountID != "" {
		if err := ValidateUUID(req.AccountID); err != nil {
			errors["accountId"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
