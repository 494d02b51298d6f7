package service

import (
	"context"

	"nestbay-backend/internal/domain"
)

// QuoteResult is what the pricing quote endpoint returns: the breakdown the
// guest sees plus the snapshot that must be echoed back unchanged at checkout.
// Signature authenticates the snapshot; checkout rejects any echo that does
// not verify against it.
type QuoteResult struct {
	UnitID    int32                  `json:"unit_id"`
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Amount    domain.AmountBreakdown `json:"amount"`
	Snapshot  string                 `json:"snapshot"`
	Signature string                 `json:"snapshot_signature"`
}

// CreateBookingRequest materializes a booking, either from a settled payment
// (SettlementID set) or from a host/admin manual booking (SettlementID nil).
type CreateBookingRequest struct {
	GuestID      int32
	UnitID       int32
	StartDate    string
	EndDate      string
	Amount       domain.AmountBreakdown
	SettlementID *string
}

// CheckoutRequest opens a pending settlement record for a gateway payment.
type CheckoutRequest struct {
	Gateway   string `json:"gateway"`
	GuestID   int32  `json:"guest_id"`
	UnitID    int32  `json:"unit_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// Snapshot is the quote snapshot returned by the pricing endpoint,
	// echoed back verbatim along with its signature.
	Snapshot  string `json:"snapshot"`
	Signature string `json:"snapshot_signature"`
}

type ManualPriceResult struct {
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

type CalendarService interface {
	// Seed lazily creates calendar rows for every night in [start, end) that
	// does not exist yet. Safe to call repeatedly.
	Seed(ctx context.Context, unitID int32, start, end string) (int64, error)
	// Reprice recomputes prices for repriceable rows in [start, end).
	Reprice(ctx context.Context, unitID int32, start, end string) (int64, error)
	CheckAvailability(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error)
	SetManualPrice(ctx context.Context, actorID, unitID int32, dates []string, beforeFeeCents, withFeeCents int64) (*ManualPriceResult, error)
	// UpdateUnitPricing changes a unit's base and weekend prices. Existing
	// calendar rows keep their old prices until a reprice sweep runs.
	UpdateUnitPricing(ctx context.Context, actorID, unitID int32, basePriceCents, weekendPriceCents int64, weekendEnabled bool) (*domain.Unit, error)
	MonthView(ctx context.Context, unitID int32, year, month int) ([]domain.CalendarNightView, error)
}

type BookingService interface {
	Quote(ctx context.Context, unitID int32, start, end string, discountCents, extrasCents int64) (*QuoteResult, error)
	Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	Confirm(ctx context.Context, actorID int32, bookingID string) (*domain.Booking, error)
	Cancel(ctx context.Context, actorID int32, actor domain.CancelActor, bookingID, reason string) (*domain.Booking, error)
	CompleteDueBookings(ctx context.Context) (int, error)
	Get(ctx context.Context, userID int32, bookingID string) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByHost(ctx context.Context, hostID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type SettlementService interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*domain.SettlementRecord, error)
	// VerifySignature authenticates a raw webhook payload. Fails closed.
	VerifySignature(gateway string, rawBody []byte, signatureHeader string) error
	// HandlePaymentSucceeded settles a paid order exactly once. Replays and
	// out-of-order deliveries are clean no-ops.
	HandlePaymentSucceeded(ctx context.Context, gateway, gatewayOrderID, gatewayPaymentID string) error
	HandlePaymentFailed(ctx context.Context, gateway, gatewayOrderID, reason string) error
}

type WalletService interface {
	// CreditForBooking books host earnings into hold balance and the fee
	// component into commission. The guest's money was captured by the
	// gateway; the guest row written here is an audit entry only. No-op once
	// the earning row exists, so retries and the reconcile sweep are safe.
	CreditForBooking(ctx context.Context, b *domain.Booking) error
	// ReverseForCancellation undoes CreditForBooking (clamped at zero) and
	// credits the guest's spendable balance with the refund. No-op once the
	// refund row exists.
	ReverseForCancellation(ctx context.Context, b *domain.Booking) error
	Withdraw(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) (*domain.WalletTransaction, error)
	// ResolveWithdrawal finishes a pending withdrawal when the payout
	// provider reports back; failed payouts restore the balance.
	ResolveWithdrawal(ctx context.Context, txID string, succeeded bool) error
	GetWallet(ctx context.Context, userID int32, role domain.WalletRole) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID int32, role domain.WalletRole, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
}

type EmailService interface {
	SendBookingPending(ctx context.Context, hostEmail, guestName, unitName string) error
	SendBookingConfirmed(ctx context.Context, guestEmail, unitName, startDate, endDate string) error
	SendBookingCancelled(ctx context.Context, email, unitName string, refundCents int64) error
	SendWithdrawalRequested(ctx context.Context, email string, amountCents int64) error
}
