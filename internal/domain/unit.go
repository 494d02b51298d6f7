package domain

import "time"

// Unit is a rental unit's pricing configuration as seen by this subsystem.
// Catalog fields (photos, amenities, description) live elsewhere.
type Unit struct {
	ID                    int32     `json:"id"`
	HostID                int32     `json:"host_id"`
	Name                  string    `json:"name"`
	BasePriceCents        int64     `json:"base_price_cents"`
	WeekendPriceCents     int64     `json:"weekend_price_cents"`
	WeekendPricingEnabled bool      `json:"weekend_pricing_enabled"`
	Active                bool      `json:"active"`
	CreatedOn             time.Time `json:"created_on"`
	UpdatedOn             time.Time `json:"updated_on"`
}
