package validation

import (
	"strings"

	"github.com/lifedash/portfolio-engine/internal/api/request"
)

// ValidateSetMarketToken validates a token rotation request.
func ValidateSetMarketToken(req request.SetMarketTokenRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return &Error{Fields: map[string]string{"token": "token is required"}}
	}
	return nil
}
