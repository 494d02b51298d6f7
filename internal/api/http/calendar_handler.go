package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"nestbay-backend/internal/service"
)

type CalendarHandler struct {
	calendarSvc service.CalendarService
	bookingSvc  service.BookingService
}

func NewCalendarHandler(calendarSvc service.CalendarService, bookingSvc service.BookingService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc, bookingSvc: bookingSvc}
}

// HandleMonthView serves GET /units/{id}/calendar?year=2026&month=9.
// Defaults to the current month.
func (h *CalendarHandler) HandleMonthView(w http.ResponseWriter, r *http.Request) {
	unitID, ok := unitIDFromPath(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = m
	}

	nights, err := h.calendarSvc.MonthView(r.Context(), unitID, year, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unit_id": unitID,
		"year":    year,
		"month":   month,
		"nights":  nights,
	})
}

// HandleAvailability serves GET /units/{id}/availability?start=...&end=...
// and returns the conflicting nights, empty when the range is bookable.
func (h *CalendarHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	unitID, ok := unitIDFromPath(w, r)
	if !ok {
		return
	}
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	conflicts, err := h.calendarSvc.CheckAvailability(r.Context(), unitID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

type quoteRequest struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DiscountCents int64  `json:"discount_cents"`
	ExtrasCents   int64  `json:"extras_cents"`
}

// HandleQuote serves POST /units/{id}/quote.
func (h *CalendarHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	unitID, ok := unitIDFromPath(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DiscountCents < 0 || req.ExtrasCents < 0 {
		writeError(w, http.StatusBadRequest, "discount and extras must be non-negative")
		return
	}

	quote, err := h.bookingSvc.Quote(r.Context(), unitID, req.StartDate, req.EndDate, req.DiscountCents, req.ExtrasCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type manualPriceRequest struct {
	Dates          []string `json:"dates"`
	BeforeFeeCents int64    `json:"before_fee_cents"`
	WithFeeCents   int64    `json:"with_fee_cents"`
}

// HandleManualPrice serves PUT /units/{id}/calendar/prices for hosts.
func (h *CalendarHandler) HandleManualPrice(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	unitID, ok := unitIDFromPath(w, r)
	if !ok {
		return
	}
	var req manualPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.calendarSvc.SetManualPrice(r.Context(), claims.UserID, unitID, req.Dates, req.BeforeFeeCents, req.WithFeeCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func unitIDFromPath(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return 0, false
	}
	return int32(id), true
}
