package repository

import (
	"context"

	"nestbay-backend/internal/domain"
)

// NightPriceUpdate carries one recomputed night price for the reprice sweep.
type NightPriceUpdate struct {
	Night          string
	BeforeFeeCents int64
	WithFeeCents   int64
	Source         domain.PriceSource
}

type CalendarRepository interface {
	// SeedNights inserts rows that do not exist yet and leaves existing rows
	// untouched, whatever their status or price source. Returns the number of
	// rows actually inserted.
	SeedNights(ctx context.Context, nights []domain.CalendarNight) (int64, error)
	ListRange(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error)
	ListMonth(ctx context.Context, unitID int32, year, month int) ([]domain.CalendarNightView, error)
	// ListConflicts returns nights in [start, end) whose status is BOOKED or
	// BLOCKED. An empty result means the range is bookable.
	ListConflicts(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error)
	// ClaimNights atomically marks every AVAILABLE night in [start, end) as
	// BOOKED for bookingID. If fewer than expectedNights rows match, nothing
	// is claimed and ErrNightsUnavailable is returned.
	ClaimNights(ctx context.Context, unitID int32, start, end, bookingID string, expectedNights int) error
	// Release resets every night referencing bookingID back to AVAILABLE.
	// Safe to call repeatedly.
	Release(ctx context.Context, bookingID string) (int64, error)
	// UpdateNightPrices applies recomputed prices, skipping rows whose price
	// source is MANUAL or whose status is BOOKED. Returns rows updated.
	UpdateNightPrices(ctx context.Context, unitID int32, updates []NightPriceUpdate) (int64, error)
	// SetManualPrice overrides prices for the given dates, skipping BOOKED
	// ones. Returns the dates actually updated.
	SetManualPrice(ctx context.Context, unitID int32, dates []string, beforeFeeCents, withFeeCents int64) ([]string, error)
	// ReleaseOrphans resets BOOKED nights whose booking is cancelled or
	// missing. Used by the reconciliation sweep.
	ReleaseOrphans(ctx context.Context) (int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetBySettlementID(ctx context.Context, settlementID string) (*domain.Booking, error)
	// UpdateStatus transitions a booking from one status to another and only
	// succeeds if the booking is still in the expected status.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error)
	// SetCancellation stores the cancellation sub-record alongside the
	// CANCELLED status, conditional on the current status.
	SetCancellation(ctx context.Context, id string, from domain.BookingStatus, c domain.Cancellation) (bool, error)
	// CompleteDue flips CONFIRMED bookings whose checkout date has passed to
	// COMPLETED and returns their ids.
	CompleteDue(ctx context.Context, today string) ([]string, error)
	// ListMissingEarnings returns settled bookings without a host earning
	// transaction, oldest first, capped at limit.
	ListMissingEarnings(ctx context.Context, limit int) ([]domain.Booking, error)
	// ListMissingReversals returns cancelled settled bookings whose host
	// earning was credited but never reversed, oldest first, capped at limit.
	ListMissingReversals(ctx context.Context, limit int) ([]domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByHost(ctx context.Context, hostID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type SettlementRepository interface {
	Create(ctx context.Context, rec *domain.SettlementRecord) error
	GetByGatewayOrder(ctx context.Context, gateway, gatewayOrderID string) (*domain.SettlementRecord, error)
	// ClaimPaid transitions PENDING -> PAID exactly once. The boolean reports
	// whether this call won the claim; false with a nil error is the
	// idempotent no-op path.
	ClaimPaid(ctx context.Context, gateway, gatewayOrderID, gatewayPaymentID string) (*domain.SettlementRecord, bool, error)
	// MarkFailed transitions PENDING -> FAILED, conditionally.
	MarkFailed(ctx context.Context, gateway, gatewayOrderID, reason string) (bool, error)
}

type WalletRepository interface {
	GetOrCreate(ctx context.Context, userID int32, role domain.WalletRole, currency string) (*domain.Wallet, error)
	Get(ctx context.Context, userID int32, role domain.WalletRole) (*domain.Wallet, error)
	// CreditHoldAndCommission increments a host wallet's hold balance and
	// commission for a settled booking.
	CreditHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error
	// DebitHoldAndCommission decrements the same amounts, clamped at zero.
	DebitHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error
	CreditBalance(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) error
	// DebitBalanceIfSufficient debits spendable balance only when it covers
	// the amount; reports whether the debit happened.
	DebitBalanceIfSufficient(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) (bool, error)
	CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error
	// HasTransactionForBooking reports whether a transaction of the given
	// role and type was already written for the booking.
	HasTransactionForBooking(ctx context.Context, bookingID string, role domain.WalletRole, txType domain.WalletTransactionType) (bool, error)
	GetTransaction(ctx context.Context, txID string) (*domain.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID int32, role domain.WalletRole, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
	UpdateTransactionStatus(ctx context.Context, txID string, from, to domain.WalletTransactionStatus) (bool, error)
}

type UnitRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Unit, error)
	ListActive(ctx context.Context) ([]domain.Unit, error)
	UpdatePricing(ctx context.Context, unit *domain.Unit) error
	// IsAutoAcceptGuest reports whether the host pre-authorized this guest,
	// letting bookings skip the PENDING confirmation step.
	IsAutoAcceptGuest(ctx context.Context, unitID, guestID int32) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
