package domain

import "time"

type WalletRole string

const (
	WalletRoleHost     WalletRole = "HOST"
	WalletRoleGuest    WalletRole = "GUEST"
	WalletRolePlatform WalletRole = "PLATFORM"
)

// Wallet is the per-(user, role) balance record. BalanceCents is spendable,
// HoldBalanceCents is host earnings pending payout, CommissionCents is the
// platform's running take. Hold and commission only move with settlements and
// their matching reversals, clamped at zero.
type Wallet struct {
	UserID           int32      `json:"user_id"`
	Role             WalletRole `json:"role"`
	BalanceCents     int64      `json:"balance_cents"`
	HoldBalanceCents int64      `json:"hold_balance_cents"`
	CommissionCents  int64      `json:"commission_cents"`
	Currency         string     `json:"currency"`
	UpdatedOn        time.Time  `json:"updated_on"`
}

type WalletTransactionType string

const (
	WalletTxTypeBookingEarning WalletTransactionType = "BOOKING_EARNING"
	WalletTxTypeRefund         WalletTransactionType = "REFUND"
	WalletTxTypeWithdrawal     WalletTransactionType = "WITHDRAWAL"
	WalletTxTypeTransfer       WalletTransactionType = "TRANSFER"
)

type WalletTransactionStatus string

const (
	WalletTxStatusPending   WalletTransactionStatus = "PENDING"
	WalletTxStatusCompleted WalletTransactionStatus = "COMPLETED"
	WalletTxStatusFailed    WalletTransactionStatus = "FAILED"
)

// WalletTransaction is the append-only audit row. Only withdrawal rows are
// ever mutated, and only their status (PENDING -> COMPLETED/FAILED when the
// payout provider reports back).
type WalletTransaction struct {
	ID          string                  `json:"id"`
	UserID      int32                   `json:"user_id"`
	Role        WalletRole              `json:"role"`
	AmountCents int64                   `json:"amount_cents"` // positive credit, negative debit
	Type        WalletTransactionType   `json:"type"`
	Status      WalletTransactionStatus `json:"status"`
	BookingID   *string                 `json:"booking_id,omitempty"`
	Description string                  `json:"description"`
	CreatedOn   time.Time               `json:"created_on"`
}
