package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/service"
)

type WalletHandler struct {
	walletSvc service.WalletService
}

func NewWalletHandler(walletSvc service.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// walletRole maps the caller's marketplace role onto their wallet. Admins
// inspect other wallets through the admin endpoints, not here.
func walletRole(role domain.UserRole) (domain.WalletRole, bool) {
	switch role {
	case domain.UserRoleGuest:
		return domain.WalletRoleGuest, true
	case domain.UserRoleHost:
		return domain.WalletRoleHost, true
	}
	return "", false
}

// HandleGetWallet serves GET /wallet.
func (h *WalletHandler) HandleGetWallet(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	role, ok := walletRole(claims.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "no wallet for this role")
		return
	}

	wallet, err := h.walletSvc.GetWallet(r.Context(), claims.UserID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// HandleListTransactions serves GET /wallet/transactions.
func (h *WalletHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	role, ok := walletRole(claims.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "no wallet for this role")
		return
	}
	page, pageSize := pagination(r)

	txs, total, err := h.walletSvc.ListTransactions(r.Context(), claims.UserID, role, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

type withdrawRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// HandleWithdraw serves POST /wallet/withdrawals.
func (h *WalletHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	role, ok := walletRole(claims.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "no wallet for this role")
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.walletSvc.Withdraw(r.Context(), claims.UserID, role, req.AmountCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type resolveWithdrawalRequest struct {
	Succeeded bool `json:"succeeded"`
}

// HandleResolveWithdrawal serves POST /admin/withdrawals/{id}/resolve,
// recording the payout provider's outcome.
func (h *WalletHandler) HandleResolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req resolveWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.walletSvc.ResolveWithdrawal(r.Context(), mux.Vars(r)["id"], req.Succeeded); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"resolved": true})
}
