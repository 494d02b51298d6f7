package postgres

import (
	"database/sql"

	"nestbay-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CalendarRepository
	repository.BookingRepository
	repository.SettlementRepository
	repository.WalletRepository
	repository.UnitRepository
	repository.UserRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		CalendarRepository:     NewCalendarRepository(db),
		BookingRepository:      NewBookingRepository(db),
		SettlementRepository:   NewSettlementRepository(db),
		WalletRepository:       NewWalletRepository(db),
		UnitRepository:         NewUnitRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
