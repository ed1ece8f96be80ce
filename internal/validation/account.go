package validation

import (
	"fmt"
	"strings"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/model"
)

var validAccountTypes = map[string]bool{
	model.AccountCash:           true,
	model.AccountStockPortfolio: true,
	model.AccountRetirement:     true,
	model.AccountOther:          true,
}

// ValidateCreateAccount validates an account creation request.
func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !validAccountTypes[req.Type] {
		errors["type"] = fmt.Sprintf("invalid account type: %s", req.Type)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateAccount validates a partial account update.
func ValidateUpdateAccount(req request.UpdateAccountRequest) error {
	errors := make(map[string]string)

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors["name"] = "name cannot be empty"
	}

	if req.Name == nil && req.Balance == nil && req.AllowNegative == nil {
		errors["request"] = "at least one field must be provided"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
