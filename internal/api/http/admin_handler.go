package http

import (
	"encoding/json"
	"net/http"
	"time"

	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/queue"
	"nestbay-backend/internal/repository"
	"nestbay-backend/internal/service"
)

type AdminHandler struct {
	settings         *service.PlatformSettings
	repriceQueue     *queue.RepriceQueue
	unitRepo         repository.UnitRepository
	seedWindowMonths int
}

func NewAdminHandler(settings *service.PlatformSettings, repriceQueue *queue.RepriceQueue, unitRepo repository.UnitRepository, seedWindowMonths int) *AdminHandler {
	return &AdminHandler{
		settings:         settings,
		repriceQueue:     repriceQueue,
		unitRepo:         unitRepo,
		seedWindowMonths: seedWindowMonths,
	}
}

type platformFeeRequest struct {
	FeePercent float64 `json:"fee_percent"`
}

// HandleUpdatePlatformFee serves PUT /admin/settings/platform-fee. The new
// fee takes effect for new quotes immediately; existing calendar rows are
// repriced asynchronously by the queue worker, one task per unit.
func (h *AdminHandler) HandleUpdatePlatformFee(w http.ResponseWriter, r *http.Request) {
	var req platformFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FeePercent < 0 || req.FeePercent > 100 {
		writeError(w, http.StatusBadRequest, "fee percent must be between 0 and 100")
		return
	}

	version := h.settings.SetFeePercent(req.FeePercent)

	units, err := h.unitRepo.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := time.Now()
	start := now.Format("2006-01-02")
	end := now.AddDate(0, h.seedWindowMonths, 0).Format("2006-01-02")

	queued := 0
	for _, unit := range units {
		task := queue.RepriceTask{
			UnitID:          unit.ID,
			Start:           start,
			End:             end,
			SettingsVersion: version,
		}
		if err := h.repriceQueue.Enqueue(r.Context(), task); err != nil {
			logger.Error("failed to enqueue reprice task", "unit_id", unit.ID, "error", err)
			continue
		}
		queued++
	}

	logger.Info("platform fee updated",
		"fee_percent", req.FeePercent, "settings_version", version, "reprice_tasks", queued)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"fee_percent":      req.FeePercent,
		"settings_version": version,
		"reprice_tasks":    queued,
	})
}
