package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/pricing"
	"nestbay-backend/internal/repository"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrUnitNotFound     = errors.New("unit not found")
	ErrUnauthorized     = errors.New("unauthorized")
)

type calendarService struct {
	calRepo  repository.CalendarRepository
	unitRepo repository.UnitRepository
	settings *PlatformSettings
}

func NewCalendarService(calRepo repository.CalendarRepository, unitRepo repository.UnitRepository, settings *PlatformSettings) CalendarService {
	return &calendarService{
		calRepo:  calRepo,
		unitRepo: unitRepo,
		settings: settings,
	}
}

func (s *calendarService) Seed(ctx context.Context, unitID int32, start, end string) (int64, error) {
	unit, startDay, endDay, err := s.loadUnitAndRange(ctx, unitID, start, end)
	if err != nil {
		return 0, err
	}

	snap := s.settings.Snapshot()
	var nights []domain.CalendarNight
	for _, night := range pricing.NightsBetween(startDay, endDay) {
		q := pricing.ForNight(night, unit, snap)
		nights = append(nights, domain.CalendarNight{
			UnitID:              unitID,
			Night:               night.Format("2006-01-02"),
			Status:              domain.NightStatusAvailable,
			PriceBeforeFeeCents: q.BeforeFeeCents,
			PriceWithFeeCents:   q.WithFeeCents,
			PriceSource:         q.Source,
			IsWeekend:           q.IsWeekend,
		})
	}
	if len(nights) == 0 {
		return 0, ErrInvalidDateRange
	}

	inserted, err := s.calRepo.SeedNights(ctx, nights)
	if err != nil {
		return 0, err
	}
	logger.Debug("seeded calendar window", "unit_id", unitID, "start", start, "end", end, "inserted", inserted)
	return inserted, nil
}

func (s *calendarService) Reprice(ctx context.Context, unitID int32, start, end string) (int64, error) {
	unit, startDay, endDay, err := s.loadUnitAndRange(ctx, unitID, start, end)
	if err != nil {
		return 0, err
	}

	snap := s.settings.Snapshot()
	var updates []repository.NightPriceUpdate
	for _, night := range pricing.NightsBetween(startDay, endDay) {
		q := pricing.ForNight(night, unit, snap)
		updates = append(updates, repository.NightPriceUpdate{
			Night:          night.Format("2006-01-02"),
			BeforeFeeCents: q.BeforeFeeCents,
			WithFeeCents:   q.WithFeeCents,
			Source:         q.Source,
		})
	}
	if len(updates) == 0 {
		return 0, ErrInvalidDateRange
	}

	// The repository guard skips MANUAL and BOOKED rows, so the sweep can
	// blindly submit the whole window.
	updated, err := s.calRepo.UpdateNightPrices(ctx, unitID, updates)
	if err != nil {
		return 0, err
	}
	logger.Info("repriced calendar window", "unit_id", unitID, "start", start, "end", end, "updated", updated, "settings_version", s.settings.Version())
	return updated, nil
}

func (s *calendarService) CheckAvailability(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error) {
	if _, _, _, err := s.loadUnitAndRange(ctx, unitID, start, end); err != nil {
		return nil, err
	}
	return s.calRepo.ListConflicts(ctx, unitID, start, end)
}

func (s *calendarService) SetManualPrice(ctx context.Context, actorID, unitID int32, dates []string, beforeFeeCents, withFeeCents int64) (*ManualPriceResult, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if unit.HostID != actorID {
		return nil, ErrUnauthorized
	}
	if len(dates) == 0 {
		return nil, ErrInvalidDateRange
	}
	if beforeFeeCents <= 0 || withFeeCents < beforeFeeCents {
		return nil, ErrInvalidPrice
	}
	for _, d := range dates {
		if _, err := pricing.ParseDay(d); err != nil {
			return nil, err
		}
	}

	updated, err := s.calRepo.SetManualPrice(ctx, unitID, dates, beforeFeeCents, withFeeCents)
	if err != nil {
		return nil, err
	}

	updatedSet := make(map[string]bool, len(updated))
	for _, d := range updated {
		updatedSet[d] = true
	}
	var skipped []string
	for _, d := range dates {
		if !updatedSet[d] {
			skipped = append(skipped, d)
		}
	}
	if len(skipped) > 0 {
		logger.Debug("manual price skipped booked dates", "unit_id", unitID, "skipped", skipped)
	}

	return &ManualPriceResult{Updated: updated, Skipped: skipped}, nil
}

func (s *calendarService) UpdateUnitPricing(ctx context.Context, actorID, unitID int32, basePriceCents, weekendPriceCents int64, weekendEnabled bool) (*domain.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if unit.HostID != actorID {
		return nil, ErrUnauthorized
	}
	if basePriceCents <= 0 {
		return nil, ErrInvalidPrice
	}
	if weekendEnabled && weekendPriceCents <= 0 {
		return nil, ErrInvalidPrice
	}

	unit.BasePriceCents = basePriceCents
	unit.WeekendPriceCents = weekendPriceCents
	unit.WeekendPricingEnabled = weekendEnabled
	if err := s.unitRepo.UpdatePricing(ctx, unit); err != nil {
		return nil, err
	}

	logger.Info("unit pricing updated",
		"unit_id", unitID, "base_price_cents", basePriceCents, "weekend_enabled", weekendEnabled)
	return unit, nil
}

func (s *calendarService) MonthView(ctx context.Context, unitID int32, year, month int) ([]domain.CalendarNightView, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return s.calRepo.ListMonth(ctx, unitID, year, month)
}

func (s *calendarService) loadUnitAndRange(ctx context.Context, unitID int32, start, end string) (*domain.Unit, time.Time, time.Time, error) {
	startDay, err := pricing.ParseDay(start)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	endDay, err := pricing.ParseDay(end)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	if !endDay.After(startDay) {
		return nil, time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, time.Time{}, time.Time{}, ErrUnitNotFound
		}
		return nil, time.Time{}, time.Time{}, err
	}
	return unit, startDay, endDay, nil
}
