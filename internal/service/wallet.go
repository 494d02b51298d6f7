package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/repository"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrTransactionNotOpen  = errors.New("transaction is not pending")
)

type walletService struct {
	walletRepo repository.WalletRepository
	userRepo   repository.UserRepository
	emailSvc   EmailService
	settings   *PlatformSettings
}

func NewWalletService(walletRepo repository.WalletRepository, userRepo repository.UserRepository, emailSvc EmailService, settings *PlatformSettings) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		emailSvc:   emailSvc,
		settings:   settings,
	}
}

// earnings returns the host's share of a booking: the final amount minus the
// platform fee component locked into the snapshot at quote time.
func earnings(b *domain.Booking) (earningsCents, commissionCents int64) {
	commissionCents = b.Amount.TaxCents
	earningsCents = b.Amount.FinalCents - commissionCents
	if earningsCents < 0 {
		earningsCents = 0
	}
	return earningsCents, commissionCents
}

func (s *walletService) CreditForBooking(ctx context.Context, b *domain.Booking) error {
	// The host earning row doubles as the completion marker, so replayed
	// webhooks and the reconcile sweep can call this repeatedly.
	credited, err := s.walletRepo.HasTransactionForBooking(ctx, b.ID, domain.WalletRoleHost, domain.WalletTxTypeBookingEarning)
	if err != nil {
		return fmt.Errorf("check booking credit: %w", err)
	}
	if credited {
		logger.Debug("booking already credited", "booking_id", b.ID)
		return nil
	}

	currency := s.settings.Snapshot().Currency

	if _, err := s.walletRepo.GetOrCreate(ctx, b.HostID, domain.WalletRoleHost, currency); err != nil {
		return fmt.Errorf("ensure host wallet: %w", err)
	}
	if _, err := s.walletRepo.GetOrCreate(ctx, b.GuestID, domain.WalletRoleGuest, currency); err != nil {
		return fmt.Errorf("ensure guest wallet: %w", err)
	}

	earningsCents, commissionCents := earnings(b)
	if err := s.walletRepo.CreditHoldAndCommission(ctx, b.HostID, earningsCents, commissionCents); err != nil {
		return fmt.Errorf("credit host wallet: %w", err)
	}

	hostTx := &domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      b.HostID,
		Role:        domain.WalletRoleHost,
		AmountCents: earningsCents,
		Type:        domain.WalletTxTypeBookingEarning,
		Status:      domain.WalletTxStatusCompleted,
		BookingID:   &b.ID,
		Description: fmt.Sprintf("Earnings for booking %s", b.PublicID),
	}
	if err := s.walletRepo.CreateTransaction(ctx, hostTx); err != nil {
		return fmt.Errorf("record host transaction: %w", err)
	}

	// Guest money was captured by the gateway, not held in the wallet, so
	// the guest side is a negative audit row only.
	guestTx := &domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      b.GuestID,
		Role:        domain.WalletRoleGuest,
		AmountCents: -b.Amount.FinalCents,
		Type:        domain.WalletTxTypeBookingEarning,
		Status:      domain.WalletTxStatusCompleted,
		BookingID:   &b.ID,
		Description: fmt.Sprintf("Payment for booking %s", b.PublicID),
	}
	if err := s.walletRepo.CreateTransaction(ctx, guestTx); err != nil {
		return fmt.Errorf("record guest transaction: %w", err)
	}

	logger.Info("credited booking settlement",
		"booking_id", b.ID, "host_id", b.HostID,
		"earnings_cents", earningsCents, "commission_cents", commissionCents)
	return nil
}

func (s *walletService) ReverseForCancellation(ctx context.Context, b *domain.Booking) error {
	reversed, err := s.walletRepo.HasTransactionForBooking(ctx, b.ID, domain.WalletRoleHost, domain.WalletTxTypeRefund)
	if err != nil {
		return fmt.Errorf("check booking reversal: %w", err)
	}
	if reversed {
		logger.Debug("booking already reversed", "booking_id", b.ID)
		return nil
	}

	earningsCents, commissionCents := earnings(b)
	if err := s.walletRepo.DebitHoldAndCommission(ctx, b.HostID, earningsCents, commissionCents); err != nil {
		return fmt.Errorf("reverse host credit: %w", err)
	}

	hostTx := &domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      b.HostID,
		Role:        domain.WalletRoleHost,
		AmountCents: -earningsCents,
		Type:        domain.WalletTxTypeRefund,
		Status:      domain.WalletTxStatusCompleted,
		BookingID:   &b.ID,
		Description: fmt.Sprintf("Reversal for cancelled booking %s", b.PublicID),
	}
	if err := s.walletRepo.CreateTransaction(ctx, hostTx); err != nil {
		return fmt.Errorf("record host reversal: %w", err)
	}

	refund := b.Cancellation.RefundCents
	if refund > 0 {
		currency := s.settings.Snapshot().Currency
		if _, err := s.walletRepo.GetOrCreate(ctx, b.GuestID, domain.WalletRoleGuest, currency); err != nil {
			return fmt.Errorf("ensure guest wallet: %w", err)
		}
		if err := s.walletRepo.CreditBalance(ctx, b.GuestID, domain.WalletRoleGuest, refund); err != nil {
			return fmt.Errorf("credit guest refund: %w", err)
		}
		guestTx := &domain.WalletTransaction{
			ID:          uuid.NewString(),
			UserID:      b.GuestID,
			Role:        domain.WalletRoleGuest,
			AmountCents: refund,
			Type:        domain.WalletTxTypeRefund,
			Status:      domain.WalletTxStatusCompleted,
			BookingID:   &b.ID,
			Description: fmt.Sprintf("Refund for cancelled booking %s", b.PublicID),
		}
		if err := s.walletRepo.CreateTransaction(ctx, guestTx); err != nil {
			return fmt.Errorf("record guest refund: %w", err)
		}
	}

	logger.Info("reversed booking settlement",
		"booking_id", b.ID, "host_id", b.HostID, "refund_cents", refund, "penalty_cents", b.Cancellation.PenaltyCents)
	return nil
}

func (s *walletService) Withdraw(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) (*domain.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	ok, err := s.walletRepo.DebitBalanceIfSufficient(ctx, userID, role, amountCents)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}

	tx := &domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Role:        role,
		AmountCents: -amountCents,
		Type:        domain.WalletTxTypeWithdrawal,
		Status:      domain.WalletTxStatusPending,
		Description: "Withdrawal request",
	}
	if err := s.walletRepo.CreateTransaction(ctx, tx); err != nil {
		// Put the money back rather than leave the debit unaccounted for.
		if credErr := s.walletRepo.CreditBalance(ctx, userID, role, amountCents); credErr != nil {
			logger.Error("failed to restore balance after withdrawal record failure",
				"user_id", userID, "amount_cents", amountCents, "error", credErr)
		}
		return nil, err
	}

	if user, uerr := s.userRepo.GetByID(ctx, userID); uerr == nil {
		if err := s.emailSvc.SendWithdrawalRequested(ctx, user.Email, amountCents); err != nil {
			logger.Warn("withdrawal email failed", "user_id", userID, "error", err)
		}
	}

	return tx, nil
}

func (s *walletService) ResolveWithdrawal(ctx context.Context, txID string, succeeded bool) error {
	to := domain.WalletTxStatusCompleted
	if !succeeded {
		to = domain.WalletTxStatusFailed
	}

	tx, err := s.walletRepo.GetTransaction(ctx, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotOpen
		}
		return err
	}

	ok, err := s.walletRepo.UpdateTransactionStatus(ctx, txID, domain.WalletTxStatusPending, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTransactionNotOpen
	}

	if !succeeded {
		// Payout bounced, the debited amount goes back to spendable balance.
		if err := s.walletRepo.CreditBalance(ctx, tx.UserID, tx.Role, -tx.AmountCents); err != nil {
			return fmt.Errorf("restore balance for failed withdrawal: %w", err)
		}
	}

	logger.Info("resolved withdrawal", "transaction_id", txID, "status", to)
	return nil
}

func (s *walletService) GetWallet(ctx context.Context, userID int32, role domain.WalletRole) (*domain.Wallet, error) {
	currency := s.settings.Snapshot().Currency
	return s.walletRepo.GetOrCreate(ctx, userID, role, currency)
}

func (s *walletService) ListTransactions(ctx context.Context, userID int32, role domain.WalletRole, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	return s.walletRepo.ListTransactions(ctx, userID, role, page, pageSize)
}
