package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/pricing"
	"nestbay-backend/internal/repository"
)

var (
	ErrUnknownGateway   = errors.New("unknown payment gateway")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrInvalidSnapshot  = errors.New("invalid pricing snapshot")
	ErrSettlementClosed = errors.New("settlement is not pending")
)

const (
	GatewayPaylane  = "paylane"
	GatewayQuickpay = "quickpay"
)

// GatewaySecrets resolves the webhook signing secret for a gateway name.
type GatewaySecrets interface {
	GatewaySecret(gateway string) (string, bool)
}

type settlementService struct {
	settlementRepo repository.SettlementRepository
	bookingRepo    repository.BookingRepository
	unitRepo       repository.UnitRepository
	bookingSvc     BookingService
	walletSvc      WalletService
	secrets        GatewaySecrets
	signer         *SnapshotSigner
}

func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	bookingRepo repository.BookingRepository,
	unitRepo repository.UnitRepository,
	bookingSvc BookingService,
	walletSvc WalletService,
	secrets GatewaySecrets,
	signer *SnapshotSigner,
) SettlementService {
	return &settlementService{
		settlementRepo: settlementRepo,
		bookingRepo:    bookingRepo,
		unitRepo:       unitRepo,
		bookingSvc:     bookingSvc,
		walletSvc:      walletSvc,
		secrets:        secrets,
		signer:         signer,
	}
}

func (s *settlementService) CreateCheckout(ctx context.Context, req CheckoutRequest) (*domain.SettlementRecord, error) {
	if _, ok := s.secrets.GatewaySecret(req.Gateway); !ok {
		return nil, ErrUnknownGateway
	}
	startDay, err := pricing.ParseDay(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDay, err := pricing.ParseDay(req.EndDate)
	if err != nil {
		return nil, err
	}
	if !endDay.After(startDay) {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.unitRepo.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	// Only a snapshot minted by the quote endpoint verifies; any edit to the
	// amounts on the way back breaks the signature.
	if !s.signer.Verify(req.Snapshot, req.Signature) {
		return nil, ErrInvalidSnapshot
	}
	var amount domain.AmountBreakdown
	if err := json.Unmarshal([]byte(req.Snapshot), &amount); err != nil {
		return nil, ErrInvalidSnapshot
	}
	if amount.FinalCents <= 0 {
		return nil, ErrInvalidSnapshot
	}

	rec := &domain.SettlementRecord{
		ID:              uuid.NewString(),
		Gateway:         req.Gateway,
		GatewayOrderID:  uuid.NewString(),
		SubjectType:     domain.SettlementSubjectUnitBooking,
		SubjectID:       req.UnitID,
		GuestID:         req.GuestID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		AmountCents:     amount.FinalCents,
		PricingSnapshot: req.Snapshot,
		Status:          domain.SettlementStatusPending,
	}
	if err := s.settlementRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	logger.Info("opened checkout settlement",
		"settlement_id", rec.ID, "gateway", rec.Gateway, "gateway_order_id", rec.GatewayOrderID,
		"unit_id", rec.SubjectID, "amount_cents", rec.AmountCents)
	return rec, nil
}

// VerifySignature authenticates the raw payload before any parsing happens.
// Paylane signs "<timestamp>.<body>" and sends "t=<ts>,v1=<hex>"; Quickpay
// sends a plain hex HMAC of the body.
func (s *settlementService) VerifySignature(gateway string, rawBody []byte, signatureHeader string) error {
	secret, ok := s.secrets.GatewaySecret(gateway)
	if !ok {
		return ErrUnknownGateway
	}
	if signatureHeader == "" {
		return ErrBadSignature
	}

	switch gateway {
	case GatewayPaylane:
		var ts, sig string
		for _, part := range strings.Split(signatureHeader, ",") {
			switch {
			case strings.HasPrefix(part, "t="):
				ts = strings.TrimPrefix(part, "t=")
			case strings.HasPrefix(part, "v1="):
				sig = strings.TrimPrefix(part, "v1=")
			}
		}
		if ts == "" || sig == "" {
			return ErrBadSignature
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(ts))
		mac.Write([]byte("."))
		mac.Write(rawBody)
		if !hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(sig)) {
			return ErrBadSignature
		}
		return nil
	case GatewayQuickpay:
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(rawBody)
		if !hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signatureHeader)) {
			return ErrBadSignature
		}
		return nil
	default:
		return ErrUnknownGateway
	}
}

func (s *settlementService) HandlePaymentSucceeded(ctx context.Context, gateway, gatewayOrderID, gatewayPaymentID string) error {
	rec, claimed, err := s.settlementRepo.ClaimPaid(ctx, gateway, gatewayOrderID, gatewayPaymentID)
	if err != nil {
		return err
	}
	if !claimed {
		// Either a replayed delivery or an order we never issued. Both are
		// acknowledged so the gateway stops retrying.
		existing, err := s.settlementRepo.GetByGatewayOrder(ctx, gateway, gatewayOrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn("webhook for unknown order", "gateway", gateway, "gateway_order_id", gatewayOrderID)
				return nil
			}
			return err
		}
		if existing.Status != domain.SettlementStatusPaid {
			logger.Debug("ignoring success webhook for closed settlement",
				"settlement_id", existing.ID, "status", existing.Status)
			return nil
		}
		// PAID but possibly interrupted before the booking was written; a
		// retried delivery finishes the job.
		rec = existing
	}

	// A booking already referencing this settlement means it was materialized,
	// but the process may have died before the wallets were credited. The
	// credit no-ops once the earning row exists, so finishing it here covers
	// both the clean replay and the interrupted one.
	if b, err := s.bookingRepo.GetBySettlementID(ctx, rec.ID); err == nil {
		logger.Debug("settlement already settled", "settlement_id", rec.ID, "booking_id", b.ID)
		return s.walletSvc.CreditForBooking(ctx, b)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	var amount domain.AmountBreakdown
	if err := json.Unmarshal([]byte(rec.PricingSnapshot), &amount); err != nil {
		return fmt.Errorf("settlement %s snapshot: %w", rec.ID, ErrInvalidSnapshot)
	}

	booking, err := s.bookingSvc.Create(ctx, CreateBookingRequest{
		GuestID:      rec.GuestID,
		UnitID:       rec.SubjectID,
		StartDate:    rec.StartDate,
		EndDate:      rec.EndDate,
		Amount:       amount,
		SettlementID: &rec.ID,
	})
	if err != nil {
		return fmt.Errorf("materialize booking for settlement %s: %w", rec.ID, err)
	}

	if err := s.walletSvc.CreditForBooking(ctx, booking); err != nil {
		return fmt.Errorf("credit wallets for settlement %s: %w", rec.ID, err)
	}

	logger.Info("settled payment",
		"settlement_id", rec.ID, "booking_id", booking.ID, "gateway", gateway,
		"gateway_payment_id", gatewayPaymentID, "amount_cents", rec.AmountCents)
	return nil
}

func (s *settlementService) HandlePaymentFailed(ctx context.Context, gateway, gatewayOrderID, reason string) error {
	ok, err := s.settlementRepo.MarkFailed(ctx, gateway, gatewayOrderID, reason)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("ignoring failure webhook for closed settlement",
			"gateway", gateway, "gateway_order_id", gatewayOrderID)
		return nil
	}
	logger.Info("marked settlement failed", "gateway", gateway, "gateway_order_id", gatewayOrderID, "reason", reason)
	return nil
}
