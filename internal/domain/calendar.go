package domain

type NightStatus string

const (
	NightStatusAvailable NightStatus = "AVAILABLE"
	NightStatusBooked    NightStatus = "BOOKED"
	NightStatusBlocked   NightStatus = "BLOCKED"
)

type PriceSource string

const (
	PriceSourceBase    PriceSource = "BASE"
	PriceSourceWeekend PriceSource = "WEEKEND"
	PriceSourceManual  PriceSource = "MANUAL"
)

// CalendarNight is the per-(unit, night) availability and price record.
// Exactly one row exists per unit and date; rows are created by the seeding
// sweep and mutated in place, never deleted.
type CalendarNight struct {
	UnitID              int32       `json:"unit_id"`
	Night               string      `json:"night"` // yyyy-mm-dd
	Status              NightStatus `json:"status"`
	PriceBeforeFeeCents int64       `json:"price_before_fee_cents"`
	PriceWithFeeCents   int64       `json:"price_with_fee_cents"`
	PriceSource         PriceSource `json:"price_source"`
	IsWeekend           bool        `json:"is_weekend"`
	BookingID           *string     `json:"booking_id,omitempty"`
}

// CalendarNightView is a calendar row annotated with the public id of the
// referencing booking, returned by the month-view query.
type CalendarNightView struct {
	CalendarNight
	BookingPublicID string `json:"booking_public_id,omitempty"`
}
