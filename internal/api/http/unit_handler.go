package http

import (
	"encoding/json"
	"net/http"
	"time"

	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/queue"
	"nestbay-backend/internal/service"
)

type UnitHandler struct {
	calendarSvc      service.CalendarService
	settings         *service.PlatformSettings
	repriceQueue     *queue.RepriceQueue
	seedWindowMonths int
}

func NewUnitHandler(calendarSvc service.CalendarService, settings *service.PlatformSettings, repriceQueue *queue.RepriceQueue, seedWindowMonths int) *UnitHandler {
	return &UnitHandler{
		calendarSvc:      calendarSvc,
		settings:         settings,
		repriceQueue:     repriceQueue,
		seedWindowMonths: seedWindowMonths,
	}
}

type unitPricingRequest struct {
	BasePriceCents        int64 `json:"base_price_cents"`
	WeekendPriceCents     int64 `json:"weekend_price_cents"`
	WeekendPricingEnabled bool  `json:"weekend_pricing_enabled"`
}

// HandleUpdatePricing serves PUT /units/{id}/pricing for hosts. The new
// prices apply to future calendar rows via an async reprice task; manual
// overrides and booked nights keep their prices.
func (h *UnitHandler) HandleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	unitID, ok := unitIDFromPath(w, r)
	if !ok {
		return
	}
	var req unitPricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	unit, err := h.calendarSvc.UpdateUnitPricing(r.Context(), claims.UserID, unitID,
		req.BasePriceCents, req.WeekendPriceCents, req.WeekendPricingEnabled)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := time.Now()
	task := queue.RepriceTask{
		UnitID:          unitID,
		Start:           now.Format("2006-01-02"),
		End:             now.AddDate(0, h.seedWindowMonths, 0).Format("2006-01-02"),
		SettingsVersion: h.settings.Version(),
	}
	if err := h.repriceQueue.Enqueue(r.Context(), task); err != nil {
		// Prices are persisted; existing nights stay stale until the next
		// reprice sweep reaches this unit.
		logger.Error("failed to enqueue reprice task", "unit_id", unitID, "error", err)
	}

	writeJSON(w, http.StatusOK, unit)
}
