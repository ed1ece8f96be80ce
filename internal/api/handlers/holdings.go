package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/service"
	"github.com/lifedash/portfolio-engine/internal/validation"
)

// HoldingHandler handles HTTP requests for holding endpoints. Holdings are
// derived state: creating or removing one goes through the trade service as
// a synthetic transaction, never by editing the holding row directly.
type HoldingHandler struct {
	holdingService *service.HoldingService
	tradeService   *service.TradeService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependencies.
func NewHoldingHandler(holdingService *service.HoldingService, tradeService *service.TradeService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
		tradeService:   tradeService,
	}
}

// ListHoldings handles GET requests for the user's current holdings,
// including the cached price columns.
//
// Endpoint: GET /api/holding
// Response: 200 OK with array of Holding
func (h *HoldingHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.ListHoldings(userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// CreateHolding handles POST requests to open or extend a position. The
// request is executed as a buy, so cash, ledger and holdings stay consistent.
//
// Endpoint: POST /api/holding
// Request Body: CreateTransactionRequest (type defaults to BUY)
// Response: 201 Created with the resulting Transaction
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict on insufficient funds
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Type == "" {
		req.Type = model.TransactionBuy
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.tradeService.ExecuteTrade(r.Context(), userID(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// DeleteHolding handles DELETE requests to liquidate a position in full. The
// entire quantity is sold at the current market price as a regular trade.
//
// Endpoint: DELETE /api/holding/{symbol}
// Response: 200 OK with the liquidating Transaction
// Error: 404 Not Found if the holding does not exist or no price is available
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid symbol", err.Error())
		return
	}

	holding, err := h.holdingService.GetHolding(userID(r), symbol)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	req := request.CreateTransactionRequest{
		Symbol:   symbol,
		Type:     model.TransactionSell,
		Quantity: &holding.Quantity,
		Date:     time.Now().UTC().Format("2006-01-02"),
	}
	if holding.CurrentPrice != nil {
		req.PricePerShare = holding.CurrentPrice
	}

	transaction, err := h.tradeService.ExecuteTrade(r.Context(), userID(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}
