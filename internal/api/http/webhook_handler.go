package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/service"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// gatewayEvent is the common shape both gateways post. Unknown event types
// are acknowledged and dropped.
type gatewayEvent struct {
	Type string `json:"type"`
	Data struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
		Reason    string `json:"reason"`
	} `json:"data"`
}

type WebhookHandler struct {
	settlementSvc service.SettlementService
}

func NewWebhookHandler(settlementSvc service.SettlementService) *WebhookHandler {
	return &WebhookHandler{settlementSvc: settlementSvc}
}

// HandlePaymentWebhook receives gateway callbacks on
// POST /webhooks/payments/{gateway}. The signature is checked against the raw
// body before anything is parsed. Processing failures return 5xx so the
// gateway retries; replays are acknowledged as no-ops.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	gateway := mux.Vars(r)["gateway"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	signature := r.Header.Get(signatureHeader(gateway))
	if err := h.settlementSvc.VerifySignature(gateway, body, signature); err != nil {
		if errors.Is(err, service.ErrUnknownGateway) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Warn("webhook signature rejected", "gateway", gateway)
		writeError(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	var event gatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}
	if event.Data.OrderID == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	switch event.Type {
	case "payment.succeeded":
		err = h.settlementSvc.HandlePaymentSucceeded(r.Context(), gateway, event.Data.OrderID, event.Data.PaymentID)
	case "payment.failed":
		err = h.settlementSvc.HandlePaymentFailed(r.Context(), gateway, event.Data.OrderID, event.Data.Reason)
	default:
		logger.Debug("ignoring webhook event", "gateway", gateway, "type", event.Type)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func signatureHeader(gateway string) string {
	if gateway == service.GatewayPaylane {
		return "Paylane-Signature"
	}
	return "X-Webhook-Signature"
}
