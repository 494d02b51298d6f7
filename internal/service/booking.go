package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/pricing"
	"nestbay-backend/internal/repository"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotPending      = errors.New("booking is not pending")
	ErrNotCancellable  = errors.New("booking cannot be cancelled")
	ErrStayStarted     = errors.New("stay has already started")
)

// RefundPolicy decides how much of the final amount comes back to the guest
// when a booking is cancelled.
type RefundPolicy interface {
	Assess(b *domain.Booking, now time.Time) (refundCents, penaltyCents int64)
}

type penaltyWindowPolicy struct {
	penaltyPercent float64
	freeDaysBefore int
}

// NewPenaltyWindowPolicy refunds in full when the cancellation lands at least
// freeDaysBefore days ahead of check-in, otherwise it withholds
// penaltyPercent of the final amount. Zero values make every cancellation a
// full refund.
func NewPenaltyWindowPolicy(penaltyPercent float64, freeDaysBefore int) RefundPolicy {
	return &penaltyWindowPolicy{penaltyPercent: penaltyPercent, freeDaysBefore: freeDaysBefore}
}

func (p *penaltyWindowPolicy) Assess(b *domain.Booking, now time.Time) (int64, int64) {
	final := b.Amount.FinalCents
	if p.penaltyPercent <= 0 || p.freeDaysBefore <= 0 {
		return final, 0
	}

	start, err := pricing.ParseDay(b.StartDate)
	if err != nil {
		return final, 0
	}
	if now.Before(start.AddDate(0, 0, -p.freeDaysBefore)) {
		return final, 0
	}

	penalty := decimal.NewFromInt(final).
		Mul(decimal.NewFromFloat(p.penaltyPercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	if penalty > final {
		penalty = final
	}
	return final - penalty, penalty
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	calRepo      repository.CalendarRepository
	unitRepo     repository.UnitRepository
	userRepo     repository.UserRepository
	noteRepo     repository.NotificationRepository
	walletSvc    WalletService
	emailSvc     EmailService
	refundPolicy RefundPolicy
	signer       *SnapshotSigner
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	calRepo repository.CalendarRepository,
	unitRepo repository.UnitRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	walletSvc WalletService,
	emailSvc EmailService,
	refundPolicy RefundPolicy,
	signer *SnapshotSigner,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		calRepo:      calRepo,
		unitRepo:     unitRepo,
		userRepo:     userRepo,
		noteRepo:     noteRepo,
		walletSvc:    walletSvc,
		emailSvc:     emailSvc,
		refundPolicy: refundPolicy,
		signer:       signer,
	}
}

func (s *bookingService) Quote(ctx context.Context, unitID int32, start, end string, discountCents, extrasCents int64) (*QuoteResult, error) {
	startDay, err := pricing.ParseDay(start)
	if err != nil {
		return nil, err
	}
	endDay, err := pricing.ParseDay(end)
	if err != nil {
		return nil, err
	}
	expected := len(pricing.NightsBetween(startDay, endDay))
	if expected == 0 {
		return nil, ErrInvalidDateRange
	}

	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	nights, err := s.calRepo.ListRange(ctx, unitID, start, end)
	if err != nil {
		return nil, err
	}
	// Every night must exist and be open; a missing row means the calendar
	// window has not been seeded that far out.
	if len(nights) != expected {
		return nil, repository.ErrNightsUnavailable
	}
	for _, n := range nights {
		if n.Status != domain.NightStatusAvailable {
			return nil, repository.ErrNightsUnavailable
		}
	}

	amount := pricing.Breakdown(nights, discountCents, extrasCents)
	snapshot, err := json.Marshal(amount)
	if err != nil {
		return nil, err
	}

	return &QuoteResult{
		UnitID:    unitID,
		StartDate: start,
		EndDate:   end,
		Amount:    amount,
		Snapshot:  string(snapshot),
		Signature: s.signer.Sign(string(snapshot)),
	}, nil
}

func (s *bookingService) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	startDay, err := pricing.ParseDay(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDay, err := pricing.ParseDay(req.EndDate)
	if err != nil {
		return nil, err
	}
	nightCount := len(pricing.NightsBetween(startDay, endDay))
	if nightCount == 0 {
		return nil, ErrInvalidDateRange
	}

	unit, err := s.unitRepo.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	status := domain.BookingStatusPending
	autoAccept, err := s.unitRepo.IsAutoAcceptGuest(ctx, req.UnitID, req.GuestID)
	if err != nil {
		return nil, err
	}
	if autoAccept {
		status = domain.BookingStatusConfirmed
	}

	id := uuid.NewString()
	booking := &domain.Booking{
		ID:           id,
		PublicID:     "BK-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8]),
		UnitID:       req.UnitID,
		GuestID:      req.GuestID,
		HostID:       unit.HostID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Amount:       req.Amount, // snapshot is authoritative, never recomputed here
		Status:       status,
		SettlementID: req.SettlementID,
	}

	// Nights are reserved at creation even for PENDING bookings, so two
	// overlapping requests can never both sit in the pending queue.
	if err := s.calRepo.ClaimNights(ctx, req.UnitID, req.StartDate, req.EndDate, booking.ID, nightCount); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if _, relErr := s.calRepo.Release(ctx, booking.ID); relErr != nil {
			logger.Error("failed to release nights after booking insert failure", "booking_id", booking.ID, "error", relErr)
		}
		return nil, err
	}

	s.notifyCreated(ctx, booking, unit)
	return booking, nil
}

func (s *bookingService) Confirm(ctx context.Context, actorID int32, bookingID string) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HostID != actorID {
		return nil, ErrUnauthorized
	}

	ok, err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	b.Status = domain.BookingStatusConfirmed

	guest, _ := s.userRepo.GetByID(ctx, b.GuestID)
	unit, _ := s.unitRepo.GetByID(ctx, b.UnitID)
	if guest != nil && unit != nil {
		if err := s.emailSvc.SendBookingConfirmed(ctx, guest.Email, unit.Name, b.StartDate, b.EndDate); err != nil {
			logger.Warn("booking confirmation email failed", "booking_id", b.ID, "error", err)
		}
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  guest.ID,
			Title:   "Booking Confirmed",
			Message: fmt.Sprintf("Your booking %s was confirmed by the host", b.PublicID),
			Attributes: map[string]string{
				"type":       "BOOKING_CONFIRMED",
				"booking_id": b.ID,
			},
		})
	}

	return b, nil
}

func (s *bookingService) Cancel(ctx context.Context, actorID int32, actor domain.CancelActor, bookingID, reason string) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch actor {
	case domain.CancelActorGuest:
		if b.GuestID != actorID {
			return nil, ErrUnauthorized
		}
	case domain.CancelActorHost:
		if b.HostID != actorID {
			return nil, ErrUnauthorized
		}
	case domain.CancelActorAdmin:
		// admins may cancel any booking
	default:
		return nil, ErrUnauthorized
	}

	if b.IsTerminal() {
		return nil, ErrNotCancellable
	}

	now := time.Now()
	start, err := pricing.ParseDay(b.StartDate)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return nil, ErrStayStarted
	}

	refund, penalty := s.refundPolicy.Assess(b, now)
	cancellation := domain.Cancellation{
		IsCancelled:  true,
		CancelledBy:  actor,
		Reason:       reason,
		RefundCents:  refund,
		PenaltyCents: penalty,
	}

	// The conditional status write is the serialization point: of two
	// concurrent cancellations only one proceeds to the ledger reversal.
	ok, err := s.bookingRepo.SetCancellation(ctx, bookingID, b.Status, cancellation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCancellable
	}
	b.Status = domain.BookingStatusCancelled
	b.Cancellation = cancellation

	// Ledger reversal only applies when gateway money actually moved. The
	// status is already CANCELLED at this point, so a failure here is picked
	// up by the ledger reconcile sweep rather than a caller retry.
	if b.SettlementID != nil {
		if err := s.walletSvc.ReverseForCancellation(ctx, b); err != nil {
			logger.Error("ledger reversal failed after cancellation", "booking_id", b.ID, "error", err)
			return nil, err
		}
	}

	if _, err := s.calRepo.Release(ctx, b.ID); err != nil {
		// The reconcile sweep releases these nights if we crash here.
		logger.Error("calendar release failed after cancellation", "booking_id", b.ID, "error", err)
		return nil, err
	}

	s.notifyCancelled(ctx, b)
	return b, nil
}

func (s *bookingService) CompleteDueBookings(ctx context.Context) (int, error) {
	today := time.Now().Format("2006-01-02")
	ids, err := s.bookingRepo.CompleteDue(ctx, today)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		logger.Info("completed due bookings", "count", len(ids))
	}
	return len(ids), nil
}

func (s *bookingService) Get(ctx context.Context, userID int32, bookingID string) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != userID && b.HostID != userID {
		return nil, ErrUnauthorized
	}
	return b, nil
}

func (s *bookingService) ListByGuest(ctx context.Context, guestID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByGuest(ctx, guestID, status, page, pageSize)
}

func (s *bookingService) ListByHost(ctx context.Context, hostID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByHost(ctx, hostID, status, page, pageSize)
}

func (s *bookingService) getBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *bookingService) notifyCreated(ctx context.Context, b *domain.Booking, unit *domain.Unit) {
	guest, _ := s.userRepo.GetByID(ctx, b.GuestID)
	host, _ := s.userRepo.GetByID(ctx, b.HostID)
	if guest == nil || host == nil {
		return
	}

	if b.Status == domain.BookingStatusPending {
		if err := s.emailSvc.SendBookingPending(ctx, host.Email, guest.Name, unit.Name); err != nil {
			logger.Warn("booking request email failed", "booking_id", b.ID, "error", err)
		}
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  host.ID,
			Title:   "New Booking Request",
			Message: fmt.Sprintf("%s requested to book %s", guest.Name, unit.Name),
			Attributes: map[string]string{
				"type":       "BOOKING_REQUEST",
				"booking_id": b.ID,
			},
		})
		return
	}

	if err := s.emailSvc.SendBookingConfirmed(ctx, guest.Email, unit.Name, b.StartDate, b.EndDate); err != nil {
		logger.Warn("booking confirmation email failed", "booking_id", b.ID, "error", err)
	}
	_ = s.noteRepo.Create(ctx, &domain.Notification{
		UserID:  host.ID,
		Title:   "New Booking",
		Message: fmt.Sprintf("%s booked %s", guest.Name, unit.Name),
		Attributes: map[string]string{
			"type":       "BOOKING_CREATED",
			"booking_id": b.ID,
		},
	})
}

func (s *bookingService) notifyCancelled(ctx context.Context, b *domain.Booking) {
	guest, _ := s.userRepo.GetByID(ctx, b.GuestID)
	host, _ := s.userRepo.GetByID(ctx, b.HostID)
	unit, _ := s.unitRepo.GetByID(ctx, b.UnitID)
	if guest == nil || host == nil || unit == nil {
		return
	}

	if err := s.emailSvc.SendBookingCancelled(ctx, guest.Email, unit.Name, b.Cancellation.RefundCents); err != nil {
		logger.Warn("cancellation email failed", "booking_id", b.ID, "error", err)
	}
	_ = s.noteRepo.Create(ctx, &domain.Notification{
		UserID:  host.ID,
		Title:   "Booking Cancelled",
		Message: fmt.Sprintf("Booking %s for %s was cancelled", b.PublicID, unit.Name),
		Attributes: map[string]string{
			"type":       "BOOKING_CANCELLED",
			"booking_id": b.ID,
		},
	})
}
