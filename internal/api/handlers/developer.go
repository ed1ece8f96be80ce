package handlers

import (
	"net/http"

	"github.com/lifedash/portfolio-engine/internal/api/request"
	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/service"
	"github.com/lifedash/portfolio-engine/internal/validation"
)

// DeveloperHandler handles HTTP requests for developer settings endpoints.
type DeveloperHandler struct {
	developerService *service.DeveloperService
}

// NewDeveloperHandler creates a new DeveloperHandler with the provided service dependency.
func NewDeveloperHandler(developerService *service.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{
		developerService: developerService,
	}
}

// SettingsResponse reports which developer settings are configured. The token
// itself is never returned.
type SettingsResponse struct {
	MarketTokenSet bool `json:"marketTokenSet"`
}

// GetSettings handles GET requests for the current developer settings.
//
// Endpoint: GET /api/developer/settings
// Response: 200 OK with SettingsResponse
func (h *DeveloperHandler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	set, err := h.developerService.HasMarketToken()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, SettingsResponse{MarketTokenSet: set})
}

// SetMarketToken handles PUT requests to store the market data API token.
// The token is encrypted at rest and applied to the running client
// immediately.
//
// Endpoint: PUT /api/developer/market-token
// Request Body: SetMarketTokenRequest
// Response: 204 No Content
// Error: 400 Bad Request if the token is missing
func (h *DeveloperHandler) SetMarketToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetMarketTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetMarketToken(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.developerService.StoreMarketToken(req.Token); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
