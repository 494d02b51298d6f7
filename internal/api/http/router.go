package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/queue"
	"nestbay-backend/internal/repository"
	"nestbay-backend/internal/security"
	"nestbay-backend/internal/service"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Tokens           security.TokenManager
	CalendarSvc      service.CalendarService
	BookingSvc       service.BookingService
	SettlementSvc    service.SettlementService
	WalletSvc        service.WalletService
	Settings         *service.PlatformSettings
	RepriceQueue     *queue.RepriceQueue
	UnitRepo         repository.UnitRepository
	NotificationRepo repository.NotificationRepository
	SeedWindowMonths int
}

// NewRouter wires the full API. Webhooks authenticate with gateway
// signatures instead of bearer tokens, so they sit outside the auth
// middleware.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	webhooks := NewWebhookHandler(deps.SettlementSvc)
	router.HandleFunc("/webhooks/payments/{gateway}", webhooks.HandlePaymentWebhook).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(deps.Tokens))

	calendar := NewCalendarHandler(deps.CalendarSvc, deps.BookingSvc)
	api.HandleFunc("/units/{id}/calendar", calendar.HandleMonthView).Methods("GET")
	api.HandleFunc("/units/{id}/availability", calendar.HandleAvailability).Methods("GET")
	api.HandleFunc("/units/{id}/quote", calendar.HandleQuote).Methods("POST")

	hostOnly := api.NewRoute().Subrouter()
	hostOnly.Use(RequireRole(domain.UserRoleHost))
	hostOnly.HandleFunc("/units/{id}/calendar/prices", calendar.HandleManualPrice).Methods("PUT")

	units := NewUnitHandler(deps.CalendarSvc, deps.Settings, deps.RepriceQueue, deps.SeedWindowMonths)
	hostOnly.HandleFunc("/units/{id}/pricing", units.HandleUpdatePricing).Methods("PUT")

	bookings := NewBookingHandler(deps.BookingSvc, deps.SettlementSvc)
	api.HandleFunc("/checkout", bookings.HandleCheckout).Methods("POST")
	api.HandleFunc("/bookings", bookings.HandleList).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookings.HandleGet).Methods("GET")
	api.HandleFunc("/bookings/{id}/cancel", bookings.HandleCancel).Methods("POST")
	hostOnly.HandleFunc("/bookings/{id}/confirm", bookings.HandleConfirm).Methods("POST")

	wallet := NewWalletHandler(deps.WalletSvc)
	api.HandleFunc("/wallet", wallet.HandleGetWallet).Methods("GET")
	api.HandleFunc("/wallet/transactions", wallet.HandleListTransactions).Methods("GET")
	api.HandleFunc("/wallet/withdrawals", wallet.HandleWithdraw).Methods("POST")

	notifications := NewNotificationHandler(deps.NotificationRepo)
	api.HandleFunc("/notifications", notifications.HandleList).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notifications.HandleMarkAsRead).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireRole(domain.UserRoleAdmin))
	adminHandler := NewAdminHandler(deps.Settings, deps.RepriceQueue, deps.UnitRepo, deps.SeedWindowMonths)
	admin.HandleFunc("/settings/platform-fee", adminHandler.HandleUpdatePlatformFee).Methods("PUT")
	admin.HandleFunc("/withdrawals/{id}/resolve", wallet.HandleResolveWithdrawal).Methods("POST")

	return router
}
