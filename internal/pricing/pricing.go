package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"nestbay-backend/internal/domain"
)

// ErrInvalidDate marks a date string that is not yyyy-mm-dd.
var ErrInvalidDate = errors.New("invalid date, expected yyyy-mm-dd")

// Settings is an immutable pricing snapshot handed to every calculation.
// Callers build it once per request from config, so a concurrent settings
// change never affects an in-flight quote.
type Settings struct {
	FeePercent  float64
	Currency    string
	WeekendDays map[time.Weekday]bool
}

// NightQuote is the computed price for a single night.
type NightQuote struct {
	BeforeFeeCents int64
	WithFeeCents   int64
	Source         domain.PriceSource
	IsWeekend      bool
}

// ParseDay parses a yyyy-mm-dd calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// NightsBetween expands [start, end) into the list of nights a stay covers.
// The end date is checkout day and is not itself a night.
func NightsBetween(start, end time.Time) []time.Time {
	if !end.After(start) {
		return nil
	}
	var nights []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// ForNight computes a unit's price for one night. Weekend nights use the
// host's weekend override when it is enabled and non-zero, otherwise the base
// price. The platform fee is applied multiplicatively and the result is
// rounded once, after the fee is added.
func ForNight(night time.Time, unit *domain.Unit, s Settings) NightQuote {
	isWeekend := s.WeekendDays[night.Weekday()]

	before := unit.BasePriceCents
	source := domain.PriceSourceBase
	if isWeekend && unit.WeekendPricingEnabled && unit.WeekendPriceCents > 0 {
		before = unit.WeekendPriceCents
		source = domain.PriceSourceWeekend
	}

	return NightQuote{
		BeforeFeeCents: before,
		WithFeeCents:   ApplyFee(before, s.FeePercent),
		Source:         source,
		IsWeekend:      isWeekend,
	}
}

// ApplyFee returns round(base + base*fee/100) using half-up decimal rounding.
func ApplyFee(baseCents int64, feePercent float64) int64 {
	base := decimal.NewFromInt(baseCents)
	fee := base.Mul(decimal.NewFromFloat(feePercent)).Div(decimal.NewFromInt(100))
	return base.Add(fee).Round(0).IntPart()
}

// Breakdown sums already-priced calendar nights into the amount breakdown the
// guest sees at quote time. The fee component is reported as tax.
func Breakdown(nights []domain.CalendarNight, discountCents, extrasCents int64) domain.AmountBreakdown {
	var beforeTax, withTax int64
	for _, n := range nights {
		beforeTax += n.PriceBeforeFeeCents
		withTax += n.PriceWithFeeCents
	}

	final := withTax - discountCents + extrasCents
	if final < 0 {
		final = 0
	}

	return domain.AmountBreakdown{
		BeforeTaxCents: beforeTax,
		TaxCents:       withTax - beforeTax,
		WithTaxCents:   withTax,
		DiscountCents:  discountCents,
		ExtrasCents:    extrasCents,
		FinalCents:     final,
	}
}
