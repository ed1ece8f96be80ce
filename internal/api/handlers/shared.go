package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifedash/portfolio-engine/internal/api/response"
	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
)

// parseJSON decodes a request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// userID resolves the acting user: the X-User-ID header when present,
// otherwise the single-user default.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return model.DefaultUserID
}

// respondServiceError maps domain errors to HTTP status codes: missing
// entities to 404, business rule violations to 409, anything unrecognized
// to 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, apperrors.ErrInsufficientQuantity),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAccountProtected),
		errors.Is(err, apperrors.ErrInconsistentHistory):
		response.RespondError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrNonPositiveQuantity),
		errors.Is(err, apperrors.ErrNonPositivePrice):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrQuoteUnavailable):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrQuoteUnavailable.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
