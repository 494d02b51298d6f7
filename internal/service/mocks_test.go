package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type MockCalendarRepo struct{ mock.Mock }

func (m *MockCalendarRepo) SeedNights(ctx context.Context, nights []domain.CalendarNight) (int64, error) {
	args := m.Called(ctx, nights)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCalendarRepo) ListRange(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error) {
	args := m.Called(ctx, unitID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalendarNight), args.Error(1)
}
func (m *MockCalendarRepo) ListMonth(ctx context.Context, unitID int32, year, month int) ([]domain.CalendarNightView, error) {
	args := m.Called(ctx, unitID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalendarNightView), args.Error(1)
}
func (m *MockCalendarRepo) ListConflicts(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error) {
	args := m.Called(ctx, unitID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalendarNight), args.Error(1)
}
func (m *MockCalendarRepo) ClaimNights(ctx context.Context, unitID int32, start, end, bookingID string, expectedNights int) error {
	args := m.Called(ctx, unitID, start, end, bookingID, expectedNights)
	return args.Error(0)
}
func (m *MockCalendarRepo) Release(ctx context.Context, bookingID string) (int64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCalendarRepo) UpdateNightPrices(ctx context.Context, unitID int32, updates []repository.NightPriceUpdate) (int64, error) {
	args := m.Called(ctx, unitID, updates)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCalendarRepo) SetManualPrice(ctx context.Context, unitID int32, dates []string, beforeFeeCents, withFeeCents int64) ([]string, error) {
	args := m.Called(ctx, unitID, dates, beforeFeeCents, withFeeCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCalendarRepo) ReleaseOrphans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepo struct{ mock.Mock }

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetBySettlementID(ctx context.Context, settlementID string) (*domain.Booking, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) SetCancellation(ctx context.Context, id string, from domain.BookingStatus, c domain.Cancellation) (bool, error) {
	args := m.Called(ctx, id, from, c)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) CompleteDue(ctx context.Context, today string) ([]string, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockBookingRepo) ListMissingEarnings(ctx context.Context, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListMissingReversals(ctx context.Context, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByGuest(ctx context.Context, guestID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, guestID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByHost(ctx context.Context, hostID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, hostID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

type MockSettlementRepo struct{ mock.Mock }

func (m *MockSettlementRepo) Create(ctx context.Context, rec *domain.SettlementRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockSettlementRepo) GetByGatewayOrder(ctx context.Context, gateway, gatewayOrderID string) (*domain.SettlementRecord, error) {
	args := m.Called(ctx, gateway, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementRecord), args.Error(1)
}
func (m *MockSettlementRepo) ClaimPaid(ctx context.Context, gateway, gatewayOrderID, gatewayPaymentID string) (*domain.SettlementRecord, bool, error) {
	args := m.Called(ctx, gateway, gatewayOrderID, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SettlementRecord), args.Bool(1), args.Error(2)
}
func (m *MockSettlementRepo) MarkFailed(ctx context.Context, gateway, gatewayOrderID, reason string) (bool, error) {
	args := m.Called(ctx, gateway, gatewayOrderID, reason)
	return args.Bool(0), args.Error(1)
}

type MockWalletRepo struct{ mock.Mock }

func (m *MockWalletRepo) GetOrCreate(ctx context.Context, userID int32, role domain.WalletRole, currency string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, role, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletRepo) Get(ctx context.Context, userID int32, role domain.WalletRole) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletRepo) CreditHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error {
	args := m.Called(ctx, hostID, earningsCents, commissionCents)
	return args.Error(0)
}
func (m *MockWalletRepo) DebitHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error {
	args := m.Called(ctx, hostID, earningsCents, commissionCents)
	return args.Error(0)
}
func (m *MockWalletRepo) CreditBalance(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) error {
	args := m.Called(ctx, userID, role, amountCents)
	return args.Error(0)
}
func (m *MockWalletRepo) DebitBalanceIfSufficient(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) (bool, error) {
	args := m.Called(ctx, userID, role, amountCents)
	return args.Bool(0), args.Error(1)
}
func (m *MockWalletRepo) CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockWalletRepo) HasTransactionForBooking(ctx context.Context, bookingID string, role domain.WalletRole, txType domain.WalletTransactionType) (bool, error) {
	args := m.Called(ctx, bookingID, role, txType)
	return args.Bool(0), args.Error(1)
}
func (m *MockWalletRepo) GetTransaction(ctx context.Context, txID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}
func (m *MockWalletRepo) ListTransactions(ctx context.Context, userID int32, role domain.WalletRole, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	args := m.Called(ctx, userID, role, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockWalletRepo) UpdateTransactionStatus(ctx context.Context, txID string, from, to domain.WalletTransactionStatus) (bool, error) {
	args := m.Called(ctx, txID, from, to)
	return args.Bool(0), args.Error(1)
}

type MockUnitRepo struct{ mock.Mock }

func (m *MockUnitRepo) GetByID(ctx context.Context, id int32) (*domain.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}
func (m *MockUnitRepo) ListActive(ctx context.Context) ([]domain.Unit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}
func (m *MockUnitRepo) UpdatePricing(ctx context.Context, unit *domain.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}
func (m *MockUnitRepo) IsAutoAcceptGuest(ctx context.Context, unitID, guestID int32) (bool, error) {
	args := m.Called(ctx, unitID, guestID)
	return args.Bool(0), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationRepo struct{ mock.Mock }

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendBookingPending(ctx context.Context, hostEmail, guestName, unitName string) error {
	args := m.Called(ctx, hostEmail, guestName, unitName)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingConfirmed(ctx context.Context, guestEmail, unitName, startDate, endDate string) error {
	args := m.Called(ctx, guestEmail, unitName, startDate, endDate)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancelled(ctx context.Context, email, unitName string, refundCents int64) error {
	args := m.Called(ctx, email, unitName, refundCents)
	return args.Error(0)
}
func (m *MockEmailService) SendWithdrawalRequested(ctx context.Context, email string, amountCents int64) error {
	args := m.Called(ctx, email, amountCents)
	return args.Error(0)
}
