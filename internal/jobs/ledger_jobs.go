package jobs

import (
	"context"
	"time"

	"nestbay-backend/internal/logger"
)

// ReconcileLedger finishes wallet work lost to crashes: settled bookings that
// never got their host earning credited, and cancelled bookings whose
// reversal never ran. Both service calls no-op once their marker transaction
// exists, so re-running the sweep is safe.
func (jr *JobRunner) ReconcileLedger() {
	jr.runWithRecovery("ReconcileLedger", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		const batchSize = 100

		missing, err := jr.store.ListMissingEarnings(ctx, batchSize)
		if err != nil {
			logger.Error("Failed to list bookings with missing earnings", "error", err)
			return
		}
		var credited int
		for i := range missing {
			if err := jr.services.Wallet.CreditForBooking(ctx, &missing[i]); err != nil {
				logger.Error("Failed to credit booking", "booking_id", missing[i].ID, "error", err)
				continue
			}
			credited++
		}

		reversals, err := jr.store.ListMissingReversals(ctx, batchSize)
		if err != nil {
			logger.Error("Failed to list cancellations with missing reversals", "error", err)
			return
		}
		var reversed int
		for i := range reversals {
			if err := jr.services.Wallet.ReverseForCancellation(ctx, &reversals[i]); err != nil {
				logger.Error("Failed to reverse cancelled booking", "booking_id", reversals[i].ID, "error", err)
				continue
			}
			reversed++
		}

		if credited > 0 || reversed > 0 {
			logger.Warn("Repaired ledger gaps", "credited", credited, "reversed", reversed)
		}
	})
}
