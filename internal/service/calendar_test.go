package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

func newCalendarFixture() (*MockCalendarRepo, *MockUnitRepo, *PlatformSettings, CalendarService) {
	calRepo := new(MockCalendarRepo)
	unitRepo := new(MockUnitRepo)
	settings := NewPlatformSettings(testConfig())
	svc := NewCalendarService(calRepo, unitRepo, settings)
	return calRepo, unitRepo, settings, svc
}

func TestCalendarService_Seed(t *testing.T) {
	ctx := context.Background()
	unit := &domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}

	t.Run("BuildsPricedNights", func(t *testing.T) {
		calRepo, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)

		var captured []domain.CalendarNight
		calRepo.On("SeedNights", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).([]domain.CalendarNight)
			}).
			Return(int64(3), nil)

		inserted, err := svc.Seed(ctx, 1, "2026-09-01", "2026-09-04")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), inserted)
		assert.Len(t, captured, 3)
		for _, n := range captured {
			assert.Equal(t, domain.NightStatusAvailable, n.Status)
			assert.Equal(t, int64(10000), n.PriceBeforeFeeCents)
			assert.Equal(t, int64(11000), n.PriceWithFeeCents)
		}
	})

	t.Run("InvalidRange", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)

		_, err := svc.Seed(ctx, 1, "2026-09-04", "2026-09-01")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestCalendarService_Reprice(t *testing.T) {
	ctx := context.Background()
	unit := &domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}

	t.Run("UsesCurrentFee", func(t *testing.T) {
		calRepo, unitRepo, settings, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)

		settings.SetFeePercent(20)

		var captured []repository.NightPriceUpdate
		calRepo.On("UpdateNightPrices", ctx, int32(1), mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(2).([]repository.NightPriceUpdate)
			}).
			Return(int64(2), nil)

		updated, err := svc.Reprice(ctx, 1, "2026-09-01", "2026-09-03")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), updated)
		assert.Len(t, captured, 2)
		assert.Equal(t, int64(12000), captured[0].WithFeeCents)
	})
}

func TestCalendarService_SetManualPrice(t *testing.T) {
	ctx := context.Background()
	unit := &domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}

	t.Run("ReportsSkippedBookedDates", func(t *testing.T) {
		calRepo, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)
		calRepo.On("SetManualPrice", ctx, int32(1), []string{"2026-09-01", "2026-09-02"}, int64(9000), int64(9900)).
			Return([]string{"2026-09-01"}, nil)

		result, err := svc.SetManualPrice(ctx, 7, 1, []string{"2026-09-01", "2026-09-02"}, 9000, 9900)
		assert.NoError(t, err)
		assert.Equal(t, []string{"2026-09-01"}, result.Updated)
		assert.Equal(t, []string{"2026-09-02"}, result.Skipped)
	})

	t.Run("NonOwnerRejected", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).Return(unit, nil)

		_, err := svc.SetManualPrice(ctx, 99, 1, []string{"2026-09-01"}, 9000, 9900)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestCalendarService_UpdateUnitPricing(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsNewPrices", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).
			Return(&domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}, nil)
		unitRepo.On("UpdatePricing", ctx, mock.MatchedBy(func(u *domain.Unit) bool {
			return u.BasePriceCents == 12000 && u.WeekendPriceCents == 15000 && u.WeekendPricingEnabled
		})).Return(nil)

		unit, err := svc.UpdateUnitPricing(ctx, 7, 1, 12000, 15000, true)
		assert.NoError(t, err)
		assert.Equal(t, int64(12000), unit.BasePriceCents)
		unitRepo.AssertExpectations(t)
	})

	t.Run("NonOwnerRejected", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).
			Return(&domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}, nil)

		_, err := svc.UpdateUnitPricing(ctx, 99, 1, 12000, 0, false)
		assert.ErrorIs(t, err, ErrUnauthorized)
		unitRepo.AssertNotCalled(t, "UpdatePricing", mock.Anything, mock.Anything)
	})

	t.Run("RejectsNonPositiveBase", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).
			Return(&domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}, nil)

		_, err := svc.UpdateUnitPricing(ctx, 7, 1, 0, 0, false)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("WeekendPriceRequiredWhenEnabled", func(t *testing.T) {
		_, unitRepo, _, svc := newCalendarFixture()
		unitRepo.On("GetByID", ctx, int32(1)).
			Return(&domain.Unit{ID: 1, HostID: 7, BasePriceCents: 10000}, nil)

		_, err := svc.UpdateUnitPricing(ctx, 7, 1, 12000, 0, true)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestPlatformSettings(t *testing.T) {
	settings := NewPlatformSettings(testConfig())

	t.Run("SnapshotIsIsolated", func(t *testing.T) {
		snap := settings.Snapshot()
		assert.Equal(t, float64(10), snap.FeePercent)

		settings.SetFeePercent(25)
		assert.Equal(t, float64(10), snap.FeePercent)
		assert.Equal(t, float64(25), settings.Snapshot().FeePercent)
	})

	t.Run("VersionIncrements", func(t *testing.T) {
		before := settings.Version()
		v := settings.SetFeePercent(30)
		assert.Equal(t, before+1, v)
	})
}
