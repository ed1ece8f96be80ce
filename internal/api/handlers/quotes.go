package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
	"github.com/lifedash/portfolio-engine/internal/validation"
)

// QuoteHandler handles HTTP requests for market quote endpoints.
type QuoteHandler struct {
	cache *quotecache.Cache
}

// NewQuoteHandler creates a new QuoteHandler backed by the quote cache.
func NewQuoteHandler(cache *quotecache.Cache) *QuoteHandler {
	return &QuoteHandler{
		cache: cache,
	}
}

// QuoteResponse wraps a quote with a staleness marker so callers can tell a
// live price from one served past its freshness window.
type QuoteResponse struct {
	model.Quote
	Stale bool `json:"stale"`
}

// GetQuote handles GET requests for a single symbol quote.
//
// Endpoint: GET /api/quote/{symbol}
// Response: 200 OK with QuoteResponse
// Error: 400 Bad Request if the symbol is malformed
// Error: 404 Not Found if no quote can be served
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid symbol", err.Error())
		return
	}

	quote, stale, err := h.cache.Get(r.Context(), symbol)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, QuoteResponse{Quote: quote, Stale: stale})
}
