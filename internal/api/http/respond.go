package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/pricing"
	"nestbay-backend/internal/repository"
	"nestbay-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unmapped is a 500 with a generic body; the detail stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrNightsUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrStayStarted),
		errors.Is(err, service.ErrSettlementClosed),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrTransactionNotOpen):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidSnapshot),
		errors.Is(err, service.ErrUnknownGateway):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
