package validation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/validation"
)

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "MSFT", "BRK.B", "BTC-USD", "A", "^GSPC", "^DJI", "^IXIC", "GC=F"}
	for _, s := range valid {
		if err := validation.ValidateSymbol(s); err != nil {
			t.Errorf("Expected %s to be valid, got %v", s, err)
		}
	}

	invalid := []string{"", "aapl", "123", "TOOLONGSYMBOL", ".AAPL", "AA PL", "^^DJI", "^"}
	for _, s := range invalid {
		if err := validation.ValidateSymbol(s); err == nil {
			t.Errorf("Expected '%s' to be rejected", s)
		}
	}
}

func TestValidateCreateTransaction(t *testing.T) {
	base := request.CreateTransactionRequest{
		Symbol:        "AAPL",
		Type:          "BUY",
		Quantity:      decPtr("10"),
		PricePerShare: decPtr("150"),
		Date:          "2024-01-10",
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := validation.ValidateCreateTransaction(base); err != nil {
			t.Errorf("Expected valid request, got %v", err)
		}
	})

	t.Run("accepts dollarAmount instead of quantity", func(t *testing.T) {
		req := base
		req.Quantity = nil
		req.DollarAmount = decPtr("1500")
		if err := validation.ValidateCreateTransaction(req); err != nil {
			t.Errorf("Expected valid request, got %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*request.CreateTransactionRequest)
		field  string
	}{
		{"missing symbol", func(r *request.CreateTransactionRequest) { r.Symbol = "" }, "symbol"},
		{"bad symbol", func(r *request.CreateTransactionRequest) { r.Symbol = "aapl" }, "symbol"},
		{"bad type", func(r *request.CreateTransactionRequest) { r.Type = "HOLD" }, "type"},
		{"missing date", func(r *request.CreateTransactionRequest) { r.Date = "" }, "date"},
		{"bad date", func(r *request.CreateTransactionRequest) { r.Date = "01/10/2024" }, "date"},
		{"future date", func(r *request.CreateTransactionRequest) { r.Date = "2099-01-01" }, "date"},
		{"no quantity or amount", func(r *request.CreateTransactionRequest) { r.Quantity = nil }, "quantity"},
		{"both quantity and amount", func(r *request.CreateTransactionRequest) { r.DollarAmount = decPtr("100") }, "quantity"},
		{"negative quantity", func(r *request.CreateTransactionRequest) { r.Quantity = decPtr("-5") }, "quantity"},
		{"zero price", func(r *request.CreateTransactionRequest) { r.PricePerShare = decPtr("0") }, "pricePerShare"},
		{"bad account id", func(r *request.CreateTransactionRequest) { r.AccountID = "not-a-uuid" }, "accountId"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			err := validation.ValidateCreateTransaction(req)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			var vErr *validation.Error
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *validation.Error, got %T", err)
			}
			if _, ok := vErr.Fields[tc.field]; !ok {
				t.Errorf("Expected error on field %s, got %v", tc.field, vErr.Fields)
			}
		})
	}
}

func TestValidateCreateAccount(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		req := request.CreateAccountRequest{Name: "Main Cash", Type: "CASH"}
		if err := validation.ValidateCreateAccount(req); err != nil {
			t.Errorf("Expected valid request, got %v", err)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		req := request.CreateAccountRequest{Name: "Crypto", Type: "CRYPTO"}
		if err := validation.ValidateCreateAccount(req); err == nil {
			t.Error("Expected validation error for unknown account type")
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		req := request.CreateAccountRequest{Name: "  ", Type: "CASH"}
		if err := validation.ValidateCreateAccount(req); err == nil {
			t.Error("Expected validation error for empty name")
		}
	})
}
