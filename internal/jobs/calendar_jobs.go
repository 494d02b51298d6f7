package jobs

import (
	"context"
	"time"

	"nestbay-backend/internal/logger"
)

// ExtendCalendarWindows seeds the bookable window forward for every active
// unit so the horizon never shrinks as days pass. Existing rows are left
// untouched.
func (jr *JobRunner) ExtendCalendarWindows() {
	jr.runWithRecovery("ExtendCalendarWindows", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		units, err := jr.store.ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list active units", "error", err)
			return
		}

		now := time.Now()
		start := now.Format("2006-01-02")
		end := now.AddDate(0, jr.config.Platform.SeedWindowMonths, 0).Format("2006-01-02")

		var totalInserted int64
		for _, unit := range units {
			inserted, err := jr.services.Calendar.Seed(ctx, unit.ID, start, end)
			if err != nil {
				logger.Error("Failed to extend calendar window", "unit_id", unit.ID, "error", err)
				continue
			}
			totalInserted += inserted
		}
		logger.Info("Extended calendar windows", "units", len(units), "nights_inserted", totalInserted)
	})
}

// ReconcileCalendar releases BOOKED nights whose booking is cancelled or
// missing, closing gaps left by crashes between a cancellation and its
// calendar release.
func (jr *JobRunner) ReconcileCalendar() {
	jr.runWithRecovery("ReconcileCalendar", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		released, err := jr.store.ReleaseOrphans(ctx)
		if err != nil {
			logger.Error("Failed to reconcile calendar", "error", err)
			return
		}
		if released > 0 {
			logger.Warn("Released orphaned calendar nights", "count", released)
		}
	})
}
