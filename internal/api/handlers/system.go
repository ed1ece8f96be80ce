package handlers

import (
	"net/http"

	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
)

// HealthChecker reports database connectivity.
type HealthChecker interface {
	HealthCheck() error
}

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	health HealthChecker
	cache  *quotecache.Cache
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(health HealthChecker, cache *quotecache.Cache) *SystemHandler {
	return &SystemHandler{
		health: health,
		cache:  cache,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
//
// Endpoint: GET /api/system/health
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.health.HealthCheck(); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// CacheStats returns the quote cache counters for external monitoring.
//
// Endpoint: GET /api/system/cache-stats
func (h *SystemHandler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.cache.Stats())
}
