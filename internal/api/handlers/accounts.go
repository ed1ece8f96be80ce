package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/service"
	"github.com/lifedash/portfolio-engine/internal/validation"
)

// AccountHandler handles HTTP requests for account endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the accountService.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependency.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// ListAccounts handles GET requests to retrieve all accounts.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of Account
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, _ *http.Request) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET requests to retrieve a single account.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with Account
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// CreateAccount handles POST requests to create a manual account.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// UpdateAccount handles PUT requests for a partial account update.
//
// Endpoint: PUT /api/account/{uuid}
// Request Body: UpdateAccountRequest (all fields optional, at least one required)
// Response: 200 OK with the updated Account
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// UpdateBalance handles PUT requests to set an account balance directly.
// The correction is snapshotted the same day so period returns see it as a
// legitimate baseline.
//
// Endpoint: PUT /api/account/{uuid}/balance
// Request Body: {"balance": "1234.56"}
// Response: 200 OK with the updated Account
func (h *AccountHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	body, err := parseJSON[struct {
		Balance decimal.Decimal `json:"balance"`
	}](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(chi.URLParam(r, "uuid"), request.UpdateAccountRequest{
		Balance: &body.Balance,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// DeleteAccount handles DELETE requests to remove a manual account.
//
// Endpoint: DELETE /api/account/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the account does not exist
// Error: 409 Conflict if the account is a protected system account
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.DeleteAccount(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Ledger handles GET requests for an account's ledger entries, most recent
// first.
//
// Endpoint: GET /api/account/{uuid}/ledger
// Response: 200 OK with array of AccountTransaction
func (h *AccountHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accountService.Ledger(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}

// History handles GET requests for an account's balance snapshots. Optional
// start and end query parameters (YYYY-MM-DD) bound the range.
//
// Endpoint: GET /api/account/{uuid}/history
// Response: 200 OK with array of BalanceHistory
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	var err error

	if s := r.URL.Query().Get("start"); s != "" {
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid start date", err.Error())
			return
		}
	}
	if e := r.URL.Query().Get("end"); e != "" {
		end, err = time.Parse("2006-01-02", e)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid end date", err.Error())
			return
		}
	}

	history, err := h.accountService.History(chi.URLParam(r, "uuid"), start, end)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
