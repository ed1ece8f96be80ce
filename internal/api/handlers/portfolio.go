package handlers

import (
	"net/http"

	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio summary endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Summary handles GET requests for the assembled portfolio view: valuation,
// per-position performance and period returns.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if assembly fails
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.Summary(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Refresh handles POST requests to re-fetch expired prices and rebuild the
// summary.
//
// Endpoint: POST /api/portfolio/refresh
// Response: 200 OK with the refreshed PortfolioSummary
func (h *PortfolioHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.RefreshPrices(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Indices handles GET requests for the dashboard's market index quotes.
// Indices with no available data are omitted from the response.
//
// Endpoint: GET /api/portfolio/indices
// Response: 200 OK with array of Quote
func (h *PortfolioHandler) Indices(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.Indices(r.Context()))
}
