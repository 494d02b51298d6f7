package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"nestbay-backend/internal/domain"
)

func TestBookingRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("TransitionsWhenStatusMatches", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, sqlmock.AnyArg(), "b-1", domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, "b-1", domain.BookingStatusPending, domain.BookingStatusConfirmed)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("StaleStatusDoesNothing", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, sqlmock.AnyArg(), "b-1", domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, "b-1", domain.BookingStatusPending, domain.BookingStatusConfirmed)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_SetCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	cancellation := domain.Cancellation{
		IsCancelled:  true,
		CancelledBy:  domain.CancelActorGuest,
		Reason:       "change of plans",
		RefundCents:  22000,
		PenaltyCents: 0,
	}

	t.Run("FirstCancelWins", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.CancelActorGuest, "change of plans", int64(22000), int64(0),
				sqlmock.AnyArg(), "b-1", domain.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.SetCancellation(ctx, "b-1", domain.BookingStatusConfirmed, cancellation)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("SecondCancelLoses", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.CancelActorGuest, "change of plans", int64(22000), int64(0),
				sqlmock.AnyArg(), "b-1", domain.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.SetCancellation(ctx, "b-1", domain.BookingStatusConfirmed, cancellation)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_LedgerGapQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	columns := []string{"id", "public_id", "unit_id", "guest_id", "host_id", "start_date", "end_date",
		"before_tax_cents", "tax_cents", "with_tax_cents", "discount_cents", "extras_cents", "final_cents",
		"status", "is_cancelled", "cancelled_by", "cancel_reason", "refund_cents", "penalty_cents", "cancelled_at",
		"settlement_id", "created_on", "updated_on"}
	now := time.Now()

	t.Run("MissingEarnings", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).AddRow(
			"b-1", "BK-TEST0001", int32(1), int32(3), int32(7), now, now.AddDate(0, 0, 2),
			int64(20000), int64(2000), int64(22000), int64(0), int64(0), int64(22000),
			domain.BookingStatusConfirmed, false, nil, nil, int64(0), int64(0), nil,
			"settle-1", now, now)
		mock.ExpectQuery("SELECT (.+) FROM bookings").
			WithArgs(100).
			WillReturnRows(rows)

		bookings, err := repo.ListMissingEarnings(ctx, 100)
		assert.NoError(t, err)
		assert.Len(t, bookings, 1)
		assert.Equal(t, "b-1", bookings[0].ID)
		assert.Equal(t, "settle-1", *bookings[0].SettlementID)
	})

	t.Run("MissingReversals", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).AddRow(
			"b-2", "BK-TEST0002", int32(1), int32(3), int32(7), now, now.AddDate(0, 0, 2),
			int64(20000), int64(2000), int64(22000), int64(0), int64(0), int64(22000),
			domain.BookingStatusCancelled, true, string(domain.CancelActorGuest), "change of plans",
			int64(22000), int64(0), now, "settle-2", now, now)
		mock.ExpectQuery("SELECT (.+) FROM bookings").
			WithArgs(100).
			WillReturnRows(rows)

		bookings, err := repo.ListMissingReversals(ctx, 100)
		assert.NoError(t, err)
		assert.Len(t, bookings, 1)
		assert.Equal(t, "b-2", bookings[0].ID)
		assert.Equal(t, int64(22000), bookings[0].Cancellation.RefundCents)
	})
}

func TestBookingRepository_CompleteDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("ReturnsCompletedIDs", func(t *testing.T) {
		mock.ExpectQuery("UPDATE bookings").
			WithArgs("2026-09-10").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1").AddRow("b-2"))

		ids, err := repo.CompleteDue(ctx, "2026-09-10")
		assert.NoError(t, err)
		assert.Equal(t, []string{"b-1", "b-2"}, ids)
	})
}
