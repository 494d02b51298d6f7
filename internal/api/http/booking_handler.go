package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc    service.BookingService
	settlementSvc service.SettlementService
}

func NewBookingHandler(bookingSvc service.BookingService, settlementSvc service.SettlementService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, settlementSvc: settlementSvc}
}

type checkoutRequest struct {
	Gateway   string `json:"gateway"`
	UnitID    int32  `json:"unit_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Snapshot  string `json:"snapshot"`
	Signature string `json:"snapshot_signature"`
}

// HandleCheckout serves POST /checkout. It opens a pending settlement and
// returns the gateway order id the client completes payment against. The
// booking itself is only created when the success webhook lands.
func (h *BookingHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.settlementSvc.CreateCheckout(r.Context(), service.CheckoutRequest{
		Gateway:   req.Gateway,
		GuestID:   claims.UserID,
		UnitID:    req.UnitID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Snapshot:  req.Snapshot,
		Signature: req.Signature,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"settlement_id":    rec.ID,
		"gateway":          rec.Gateway,
		"gateway_order_id": rec.GatewayOrderID,
		"amount_cents":     rec.AmountCents,
	})
}

// HandleConfirm serves POST /bookings/{id}/confirm for hosts.
func (h *BookingHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	bookingID := mux.Vars(r)["id"]

	booking, err := h.bookingSvc.Confirm(r.Context(), claims.UserID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// HandleCancel serves POST /bookings/{id}/cancel. The acting side is derived
// from the caller's role.
func (h *BookingHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	bookingID := mux.Vars(r)["id"]

	var req cancelRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var actor domain.CancelActor
	switch claims.Role {
	case domain.UserRoleGuest:
		actor = domain.CancelActorGuest
	case domain.UserRoleHost:
		actor = domain.CancelActorHost
	case domain.UserRoleAdmin:
		actor = domain.CancelActorAdmin
	default:
		writeError(w, http.StatusForbidden, "unknown role")
		return
	}

	booking, err := h.bookingSvc.Cancel(r.Context(), claims.UserID, actor, bookingID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// HandleGet serves GET /bookings/{id} for the booking's guest or host.
func (h *BookingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	booking, err := h.bookingSvc.Get(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// HandleList serves GET /bookings?side=guest|host&status=...&page=...
func (h *BookingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	status := r.URL.Query().Get("status")
	page, pageSize := pagination(r)

	var (
		bookings []domain.Booking
		total    int32
		err      error
	)
	if r.URL.Query().Get("side") == "host" {
		bookings, total, err = h.bookingSvc.ListByHost(r.Context(), claims.UserID, status, page, pageSize)
	} else {
		bookings, total, err = h.bookingSvc.ListByGuest(r.Context(), claims.UserID, status, page, pageSize)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings":  bookings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
