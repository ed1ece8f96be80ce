package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID   = fmt.Errorf("invalid UUID format")
	ErrInvalidSymbol = fmt.Errorf("invalid ticker symbol")
)

// symbolPattern matches exchange ticker symbols: uppercase letters and
// digits with optional dot or dash separators (e.g. AAPL, BRK.B, BTC-USD).
// A leading caret and an equals sign admit index and futures tickers
// (^GSPC, GC=F), which the quote endpoint must accept.
var symbolPattern = regexp.MustCompile(`^\^?[A-Z][A-Z0-9.\-=]{0,11}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSymbol checks if a string is a plausible ticker symbol.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}
	return nil
}
