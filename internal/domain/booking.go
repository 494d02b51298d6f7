package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type CancelActor string

const (
	CancelActorGuest CancelActor = "GUEST"
	CancelActorHost  CancelActor = "HOST"
	CancelActorAdmin CancelActor = "ADMIN"
)

// AmountBreakdown is the pricing snapshot captured at checkout time.
// It is persisted verbatim on the booking and never recomputed, so the amount
// the guest saw at quote time is the amount settled.
type AmountBreakdown struct {
	BeforeTaxCents int64 `json:"before_tax_cents"`
	TaxCents       int64 `json:"tax_cents"`
	WithTaxCents   int64 `json:"with_tax_cents"`
	DiscountCents  int64 `json:"discount_cents"`
	ExtrasCents    int64 `json:"extras_cents"`
	FinalCents     int64 `json:"final_cents"`
}

type Cancellation struct {
	IsCancelled  bool        `json:"is_cancelled"`
	CancelledBy  CancelActor `json:"cancelled_by,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	RefundCents  int64       `json:"refund_cents"`
	PenaltyCents int64       `json:"penalty_cents"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
}

type Booking struct {
	ID string `json:"id"`
	// PublicID is the short reference shown to guests and hosts, e.g. "BK-3F9A21C4".
	PublicID     string          `json:"public_id"`
	UnitID       int32           `json:"unit_id"`
	GuestID      int32           `json:"guest_id"`
	HostID       int32           `json:"host_id"`
	StartDate    string          `json:"start_date"` // yyyy-mm-dd, first night
	EndDate      string          `json:"end_date"`   // yyyy-mm-dd, checkout day (exclusive)
	Amount       AmountBreakdown `json:"amount"`
	Status       BookingStatus   `json:"status"`
	Cancellation Cancellation    `json:"cancellation"`
	// SettlementID points at the settlement record that paid for this booking.
	// Nil for host/admin manual bookings.
	SettlementID *string   `json:"settlement_id,omitempty"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// Nights returns the number of nights covered by the booking's date range.
func (b *Booking) Nights() int {
	start, err := time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", b.EndDate)
	if err != nil {
		return 0
	}
	n := int(end.Sub(start).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// IsTerminal reports whether the booking can no longer change status.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}
