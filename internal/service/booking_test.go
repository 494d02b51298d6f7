package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nestbay-backend/internal/config"
	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type bookingFixture struct {
	calRepo     *MockCalendarRepo
	bookingRepo *MockBookingRepo
	unitRepo    *MockUnitRepo
	userRepo    *MockUserRepo
	noteRepo    *MockNotificationRepo
	walletRepo  *MockWalletRepo
	email       *MockEmailService
	svc         BookingService
}

func newBookingFixture(policy RefundPolicy) *bookingFixture {
	f := &bookingFixture{
		calRepo:     new(MockCalendarRepo),
		bookingRepo: new(MockBookingRepo),
		unitRepo:    new(MockUnitRepo),
		userRepo:    new(MockUserRepo),
		noteRepo:    new(MockNotificationRepo),
		walletRepo:  new(MockWalletRepo),
		email:       new(MockEmailService),
	}
	cfg := testConfig()
	settings := NewPlatformSettings(cfg)
	walletSvc := NewWalletService(f.walletRepo, f.userRepo, f.email, settings)
	f.svc = NewBookingService(f.bookingRepo, f.calRepo, f.unitRepo, f.userRepo, f.noteRepo, walletSvc, f.email, policy,
		NewSnapshotSigner(cfg.Platform.SnapshotSecret))
	return f
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Platform.FeePercent = 10
	cfg.Platform.Currency = "USD"
	cfg.Platform.WeekendDays = []string{"Friday", "Saturday"}
	cfg.Platform.SnapshotSecret = "snapshot-test-secret"
	return cfg
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func availableNights(unitID int32, dates ...string) []domain.CalendarNight {
	var nights []domain.CalendarNight
	for _, d := range dates {
		nights = append(nights, domain.CalendarNight{
			UnitID:              unitID,
			Night:               d,
			Status:              domain.NightStatusAvailable,
			PriceBeforeFeeCents: 10000,
			PriceWithFeeCents:   11000,
			PriceSource:         domain.PriceSourceBase,
		})
	}
	return nights
}

func TestBookingService_Quote(t *testing.T) {
	ctx := context.Background()
	start, end := futureDate(10), futureDate(12)
	unit := &domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.calRepo.On("ListRange", ctx, int32(1), start, end).
			Return(availableNights(1, futureDate(10), futureDate(11)), nil)

		quote, err := f.svc.Quote(ctx, 1, start, end, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(20000), quote.Amount.BeforeTaxCents)
		assert.Equal(t, int64(22000), quote.Amount.FinalCents)
		assert.NotEmpty(t, quote.Snapshot)
		assert.True(t, NewSnapshotSigner("snapshot-test-secret").Verify(quote.Snapshot, quote.Signature))
	})

	t.Run("MissingNightRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		// two-night range but only one seeded row
		f.calRepo.On("ListRange", ctx, int32(1), start, end).
			Return(availableNights(1, futureDate(10)), nil)

		_, err := f.svc.Quote(ctx, 1, start, end, 0, 0)
		assert.ErrorIs(t, err, repository.ErrNightsUnavailable)
	})

	t.Run("BookedNightRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		nights := availableNights(1, futureDate(10), futureDate(11))
		nights[1].Status = domain.NightStatusBooked
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.calRepo.On("ListRange", ctx, int32(1), start, end).Return(nights, nil)

		_, err := f.svc.Quote(ctx, 1, start, end, 0, 0)
		assert.ErrorIs(t, err, repository.ErrNightsUnavailable)
	})

	t.Run("InvertedRangeRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		_, err := f.svc.Quote(ctx, 1, end, start, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	start, end := futureDate(10), futureDate(12)
	unit := &domain.Unit{ID: 1, HostID: 7, Name: "Lakeside Cabin", BasePriceCents: 10000}
	guest := &domain.User{ID: 3, Email: "guest@example.com", Name: "Gwen"}
	host := &domain.User{ID: 7, Email: "host@example.com", Name: "Hal"}
	amount := domain.AmountBreakdown{BeforeTaxCents: 20000, TaxCents: 2000, WithTaxCents: 22000, FinalCents: 22000}

	req := CreateBookingRequest{GuestID: 3, UnitID: 1, StartDate: start, EndDate: end, Amount: amount}

	t.Run("AutoAcceptConfirms", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.unitRepo.On("IsAutoAcceptGuest", ctx, int32(1), int32(3)).Return(true, nil)
		f.calRepo.On("ClaimNights", ctx, int32(1), start, end, mock.Anything, 2).Return(nil)
		f.bookingRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(3)).Return(guest, nil)
		f.userRepo.On("GetByID", ctx, int32(7)).Return(host, nil)
		f.email.On("SendBookingConfirmed", ctx, guest.Email, unit.Name, start, end).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything).Return(nil)

		b, err := f.svc.Create(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Contains(t, b.PublicID, "BK-")
		assert.Equal(t, int32(7), b.HostID)
	})

	t.Run("PendingWithoutAutoAccept", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.unitRepo.On("IsAutoAcceptGuest", ctx, int32(1), int32(3)).Return(false, nil)
		f.calRepo.On("ClaimNights", ctx, int32(1), start, end, mock.Anything, 2).Return(nil)
		f.bookingRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(3)).Return(guest, nil)
		f.userRepo.On("GetByID", ctx, int32(7)).Return(host, nil)
		f.email.On("SendBookingPending", ctx, host.Email, guest.Name, unit.Name).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything).Return(nil)

		b, err := f.svc.Create(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
	})

	t.Run("ClaimFailureStopsCreation", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.unitRepo.On("IsAutoAcceptGuest", ctx, int32(1), int32(3)).Return(false, nil)
		f.calRepo.On("ClaimNights", ctx, int32(1), start, end, mock.Anything, 2).
			Return(repository.ErrNightsUnavailable)

		_, err := f.svc.Create(ctx, req)
		assert.ErrorIs(t, err, repository.ErrNightsUnavailable)
		f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InsertFailureReleasesNights", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		f.unitRepo.On("IsAutoAcceptGuest", ctx, int32(1), int32(3)).Return(false, nil)
		f.calRepo.On("ClaimNights", ctx, int32(1), start, end, mock.Anything, 2).Return(nil)
		f.bookingRepo.On("Create", ctx, mock.Anything).Return(assert.AnError)
		f.calRepo.On("Release", ctx, mock.Anything).Return(int64(2), nil)

		_, err := f.svc.Create(ctx, req)
		assert.Error(t, err)
		f.calRepo.AssertCalled(t, "Release", ctx, mock.Anything)
	})
}

func TestBookingService_Confirm(t *testing.T) {
	ctx := context.Background()
	booking := &domain.Booking{
		ID: "b-1", PublicID: "BK-TEST0001", UnitID: 1, GuestID: 3, HostID: 7,
		StartDate: futureDate(10), EndDate: futureDate(12),
		Status: domain.BookingStatusPending,
	}

	t.Run("HostConfirms", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)
		f.bookingRepo.On("UpdateStatus", ctx, "b-1", domain.BookingStatusPending, domain.BookingStatusConfirmed).
			Return(true, nil)
		f.userRepo.On("GetByID", ctx, int32(3)).Return(&domain.User{ID: 3, Email: "g@x.com"}, nil)
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(&domain.Unit{ID: 1, Name: "Cabin"}, nil)
		f.email.On("SendBookingConfirmed", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything).Return(nil)

		b, err := f.svc.Confirm(ctx, 7, "b-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	})

	t.Run("NonHostRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)

		_, err := f.svc.Confirm(ctx, 3, "b-1")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)
		f.bookingRepo.On("UpdateStatus", ctx, "b-1", domain.BookingStatusPending, domain.BookingStatusConfirmed).
			Return(false, nil)

		_, err := f.svc.Confirm(ctx, 7, "b-1")
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	settlementID := "settle-1"

	makeBooking := func() *domain.Booking {
		return &domain.Booking{
			ID: "b-1", PublicID: "BK-TEST0001", UnitID: 1, GuestID: 3, HostID: 7,
			StartDate: futureDate(10), EndDate: futureDate(12),
			Amount: domain.AmountBreakdown{
				BeforeTaxCents: 20000, TaxCents: 2000, WithTaxCents: 22000, FinalCents: 22000,
			},
			Status:       domain.BookingStatusConfirmed,
			SettlementID: &settlementID,
		}
	}

	t.Run("FullRefundReversesLedger", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		booking := makeBooking()
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)
		f.bookingRepo.On("SetCancellation", ctx, "b-1", domain.BookingStatusConfirmed, mock.Anything).
			Return(true, nil)
		f.walletRepo.On("HasTransactionForBooking", ctx, "b-1", domain.WalletRoleHost, domain.WalletTxTypeRefund).
			Return(false, nil)
		// earnings 20000 to hold, fee 2000 to commission, both reversed
		f.walletRepo.On("DebitHoldAndCommission", ctx, int32(7), int64(20000), int64(2000)).Return(nil)
		f.walletRepo.On("CreateTransaction", ctx, mock.Anything).Return(nil)
		f.walletRepo.On("GetOrCreate", ctx, int32(3), domain.WalletRoleGuest, "USD").
			Return(&domain.Wallet{UserID: 3, Role: domain.WalletRoleGuest}, nil)
		f.walletRepo.On("CreditBalance", ctx, int32(3), domain.WalletRoleGuest, int64(22000)).Return(nil)
		f.calRepo.On("Release", ctx, "b-1").Return(int64(2), nil)
		f.userRepo.On("GetByID", ctx, mock.Anything).Return(&domain.User{ID: 3, Email: "g@x.com"}, nil)
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(&domain.Unit{ID: 1, Name: "Cabin"}, nil)
		f.email.On("SendBookingCancelled", ctx, mock.Anything, mock.Anything, int64(22000)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything).Return(nil)

		b, err := f.svc.Cancel(ctx, 3, domain.CancelActorGuest, "b-1", "change of plans")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)
		assert.Equal(t, int64(22000), b.Cancellation.RefundCents)
		assert.Equal(t, int64(0), b.Cancellation.PenaltyCents)
		f.walletRepo.AssertCalled(t, "CreditBalance", ctx, int32(3), domain.WalletRoleGuest, int64(22000))
	})

	t.Run("LateCancellationKeepsPenalty", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(20, 14))
		booking := makeBooking()
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)
		f.bookingRepo.On("SetCancellation", ctx, "b-1", domain.BookingStatusConfirmed, mock.Anything).
			Return(true, nil)
		f.walletRepo.On("HasTransactionForBooking", ctx, "b-1", domain.WalletRoleHost, domain.WalletTxTypeRefund).
			Return(false, nil)
		f.walletRepo.On("DebitHoldAndCommission", ctx, int32(7), int64(20000), int64(2000)).Return(nil)
		f.walletRepo.On("CreateTransaction", ctx, mock.Anything).Return(nil)
		f.walletRepo.On("GetOrCreate", ctx, int32(3), domain.WalletRoleGuest, "USD").
			Return(&domain.Wallet{UserID: 3, Role: domain.WalletRoleGuest}, nil)
		f.walletRepo.On("CreditBalance", ctx, int32(3), domain.WalletRoleGuest, int64(17600)).Return(nil)
		f.calRepo.On("Release", ctx, "b-1").Return(int64(2), nil)
		f.userRepo.On("GetByID", ctx, mock.Anything).Return(&domain.User{ID: 3, Email: "g@x.com"}, nil)
		f.unitRepo.On("GetByID", ctx, int32(1)).Return(&domain.Unit{ID: 1, Name: "Cabin"}, nil)
		f.email.On("SendBookingCancelled", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything).Return(nil)

		// start is 10 days out, inside the 14-day window: 20% of 22000 withheld
		b, err := f.svc.Cancel(ctx, 3, domain.CancelActorGuest, "b-1", "")
		assert.NoError(t, err)
		assert.Equal(t, int64(17600), b.Cancellation.RefundCents)
		assert.Equal(t, int64(4400), b.Cancellation.PenaltyCents)
	})

	t.Run("ConcurrentCancelLosesClaim", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(makeBooking(), nil)
		f.bookingRepo.On("SetCancellation", ctx, "b-1", domain.BookingStatusConfirmed, mock.Anything).
			Return(false, nil)

		_, err := f.svc.Cancel(ctx, 3, domain.CancelActorGuest, "b-1", "")
		assert.ErrorIs(t, err, ErrNotCancellable)
		f.walletRepo.AssertNotCalled(t, "DebitHoldAndCommission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StartedStayRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		booking := makeBooking()
		booking.StartDate = futureDate(-1)
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)

		_, err := f.svc.Cancel(ctx, 3, domain.CancelActorGuest, "b-1", "")
		assert.ErrorIs(t, err, ErrStayStarted)
	})

	t.Run("TerminalBookingRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		booking := makeBooking()
		booking.Status = domain.BookingStatusCompleted
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(booking, nil)

		_, err := f.svc.Cancel(ctx, 3, domain.CancelActorGuest, "b-1", "")
		assert.ErrorIs(t, err, ErrNotCancellable)
	})

	t.Run("WrongActorRejected", func(t *testing.T) {
		f := newBookingFixture(NewPenaltyWindowPolicy(0, 0))
		f.bookingRepo.On("GetByID", ctx, "b-1").Return(makeBooking(), nil)

		_, err := f.svc.Cancel(ctx, 99, domain.CancelActorGuest, "b-1", "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestPenaltyWindowPolicy(t *testing.T) {
	booking := &domain.Booking{
		StartDate: futureDate(10),
		Amount:    domain.AmountBreakdown{FinalCents: 10000},
	}

	t.Run("OutsideWindowFullRefund", func(t *testing.T) {
		policy := NewPenaltyWindowPolicy(20, 7)
		refund, penalty := policy.Assess(booking, time.Now())
		assert.Equal(t, int64(10000), refund)
		assert.Equal(t, int64(0), penalty)
	})

	t.Run("InsideWindowPenaltyApplies", func(t *testing.T) {
		policy := NewPenaltyWindowPolicy(20, 14)
		refund, penalty := policy.Assess(booking, time.Now())
		assert.Equal(t, int64(8000), refund)
		assert.Equal(t, int64(2000), penalty)
	})

	t.Run("ZeroPolicyAlwaysFullRefund", func(t *testing.T) {
		policy := NewPenaltyWindowPolicy(0, 0)
		refund, penalty := policy.Assess(booking, time.Now())
		assert.Equal(t, int64(10000), refund)
		assert.Equal(t, int64(0), penalty)
	})
}
