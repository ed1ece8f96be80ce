package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB, *testutil.StubQuotes) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	quotes := testutil.NewStubQuotes()
	ts := testutil.NewTestTradeService(t, db, quotes)
	return NewTransactionHandler(ts), db, quotes
}

// withUUIDParam plants a chi route context so handlers can read the uuid URL param.
func withUUIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uuid", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("returns empty array when no transactions exist", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/transaction", nil)
		w := httptest.NewRecorder()

		handler.ListTransactions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d transactions", len(response))
		}
	})

	t.Run("returns all transactions successfully", func(t *testing.T) {
		handler, db, _ := setupTransactionHandler(t)

		tx1 := testutil.NewTransaction("AAPL").Build(t, db)
		tx2 := testutil.NewTransaction("MSFT").Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/transaction", nil)
		w := httptest.NewRecorder()

		handler.ListTransactions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected 2 transactions, got %d", len(response))
		}

		found := make(map[string]bool)
		for _, tx := range response {
			found[tx.ID] = true
		}

		if !found[tx1.ID] {
			t.Error("Expected to find tx1 in response")
		}
		if !found[tx2.ID] {
			t.Error("Expected to find tx2 in response")
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, db, _ := setupTransactionHandler(t)
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/transaction", nil)
		w := httptest.NewRecorder()

		handler.ListTransactions(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")

	t.Run("executes a buy with explicit price", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		body := fmt.Sprintf(`{"symbol":"AAPL","type":"BUY","quantity":"10","pricePerShare":"150","date":%q}`, today)
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected transaction ID, got empty string")
		}
		if !response.TotalCost.Equal(testutil.Dec(t, "1500")) {
			t.Errorf("Expected total cost 1500, got %s", response.TotalCost)
		}
	})

	t.Run("resolves price from quote source when omitted", func(t *testing.T) {
		handler, _, quotes := setupTransactionHandler(t)
		quotes.SetPrice("AAPL", "180", "0")

		body := fmt.Sprintf(`{"symbol":"AAPL","type":"BUY","quantity":"5","date":%q}`, today)
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if !response.PricePerShare.Equal(testutil.Dec(t, "180")) {
			t.Errorf("Expected price 180, got %s", response.PricePerShare)
		}
	})

	t.Run("returns 400 when validation fails", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		body := fmt.Sprintf(`{"type":"BUY","quantity":"10","pricePerShare":"150","date":%q}`, today)
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/transaction", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 when selling more than held", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		body := fmt.Sprintf(`{"symbol":"AAPL","type":"SELL","quantity":"10","pricePerShare":"150","date":%q}`, today)
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns transaction by ID", func(t *testing.T) {
		handler, db, _ := setupTransactionHandler(t)

		tx := testutil.NewTransaction("AAPL").Build(t, db)

		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/transaction/"+tx.ID, nil), tx.ID)
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID != tx.ID {
			t.Errorf("Expected ID %s, got %s", tx.ID, response.ID)
		}
	})

	t.Run("returns 404 when transaction does not exist", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		id := testutil.MakeID()
		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/transaction/"+id, nil), id)
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("reverses a trade and removes the transaction", func(t *testing.T) {
		handler, db, _ := setupTransactionHandler(t)

		tx := testutil.NewTransaction("AAPL").Build(t, db)

		req := withUUIDParam(httptest.NewRequest(http.MethodDelete, "/api/transaction/"+tx.ID, nil), tx.ID)
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM stock_transaction WHERE id = ?", tx.ID).Scan(&count); err != nil {
			t.Fatalf("Failed to count transactions: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected transaction to be deleted, found %d rows", count)
		}
	})

	t.Run("returns 404 when transaction does not exist", func(t *testing.T) {
		handler, _, _ := setupTransactionHandler(t)

		id := testutil.MakeID()
		req := withUUIDParam(httptest.NewRequest(http.MethodDelete, "/api/transaction/"+id, nil), id)
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
