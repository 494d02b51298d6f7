package service

import (
	"sync"

	"nestbay-backend/internal/config"
	"nestbay-backend/internal/pricing"
)

// PlatformSettings hands out immutable pricing snapshots. Handlers take one
// snapshot at the start of a request and pass it down, so a concurrent fee
// change never affects an in-flight calculation. Version increments on every
// update and is recorded by the reprice sweep it triggers.
type PlatformSettings struct {
	mu      sync.RWMutex
	snap    pricing.Settings
	version int64
}

func NewPlatformSettings(cfg *config.Config) *PlatformSettings {
	return &PlatformSettings{
		snap: pricing.Settings{
			FeePercent:  cfg.Platform.FeePercent,
			Currency:    cfg.Platform.Currency,
			WeekendDays: cfg.WeekendDaySet(),
		},
		version: 1,
	}
}

// Snapshot returns the current pricing settings by value.
func (s *PlatformSettings) Snapshot() pricing.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Version returns the current settings version.
func (s *PlatformSettings) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetFeePercent installs a new platform fee and returns the new version.
func (s *PlatformSettings) SetFeePercent(feePercent float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FeePercent = feePercent
	s.version++
	return s.version
}
