package domain

import "time"

type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "PENDING"
	SettlementStatusPaid    SettlementStatus = "PAID"
	SettlementStatusFailed  SettlementStatus = "FAILED"
)

type SettlementSubject string

const (
	SettlementSubjectUnitBooking  SettlementSubject = "UNIT_BOOKING"
	SettlementSubjectEventBooking SettlementSubject = "EVENT_BOOKING"
)

// SettlementRecord ties an external gateway payment to at most one booking.
// The PENDING -> PAID transition happens exactly once; a retried webhook that
// finds the record already PAID or FAILED is a no-op.
type SettlementRecord struct {
	ID               string            `json:"id"`
	Gateway          string            `json:"gateway"`
	GatewayOrderID   string            `json:"gateway_order_id"`
	GatewayPaymentID *string           `json:"gateway_payment_id,omitempty"`
	Status           SettlementStatus  `json:"status"`
	SubjectType      SettlementSubject `json:"subject_type"`
	SubjectID        int32             `json:"subject_id"` // unit or event id
	GuestID          int32             `json:"guest_id"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	AmountCents      int64             `json:"amount_cents"`
	// PricingSnapshot is the JSON-encoded AmountBreakdown computed at checkout.
	PricingSnapshot string     `json:"pricing_snapshot"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
	SettledOn       *time.Time `json:"settled_on,omitempty"`
}
