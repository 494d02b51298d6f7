package jobs

import (
	"context"
	"time"

	"nestbay-backend/internal/logger"
)

// CompleteDueBookings flips CONFIRMED bookings whose checkout date has
// passed to COMPLETED.
func (jr *JobRunner) CompleteDueBookings() {
	jr.runWithRecovery("CompleteDueBookings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		completed, err := jr.services.Booking.CompleteDueBookings(ctx)
		if err != nil {
			logger.Error("Failed to complete due bookings", "error", err)
			return
		}
		logger.Info("Completed due bookings", "count", completed)
	})
}
