package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, public_id, unit_id, guest_id, host_id, start_date, end_date,
	before_tax_cents, tax_cents, with_tax_cents, discount_cents, extras_cents, final_cents,
	status, is_cancelled, cancelled_by, cancel_reason, refund_cents, penalty_cents, cancelled_at,
	settlement_id, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (id, public_id, unit_id, guest_id, host_id, start_date, end_date,
	            before_tax_cents, tax_cents, with_tax_cents, discount_cents, extras_cents, final_cents,
	            status, settlement_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.PublicID, b.UnitID, b.GuestID, b.HostID, b.StartDate, b.EndDate,
		b.Amount.BeforeTaxCents, b.Amount.TaxCents, b.Amount.WithTaxCents,
		b.Amount.DiscountCents, b.Amount.ExtrasCents, b.Amount.FinalCents,
		b.Status, b.SettlementID, now)
	if err == nil {
		b.CreatedOn = now
		b.UpdatedOn = now
	}
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) GetBySettlementID(ctx context.Context, settlementID string) (*domain.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE settlement_id = $1`, bookingColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, settlementID))
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_on = $2 WHERE id = $3 AND status = $4`,
		to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	return count > 0, err
}

func (r *bookingRepository) SetCancellation(ctx context.Context, id string, from domain.BookingStatus, c domain.Cancellation) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED', is_cancelled = TRUE, cancelled_by = $1, cancel_reason = $2,
		    refund_cents = $3, penalty_cents = $4, cancelled_at = $5, updated_on = $5
		WHERE id = $6 AND status = $7`,
		c.CancelledBy, c.Reason, c.RefundCents, c.PenaltyCents, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	return count > 0, err
}

func (r *bookingRepository) CompleteDue(ctx context.Context, today string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE bookings
		SET status = 'COMPLETED', updated_on = NOW()
		WHERE status = 'CONFIRMED' AND end_date <= $1
		RETURNING id`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListMissingEarnings finds settled bookings whose host earning row was never
// written, i.e. credits lost to a crash between the booking insert and the
// wallet write.
func (r *bookingRepository) ListMissingEarnings(ctx context.Context, limit int) ([]domain.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE settlement_id IS NOT NULL
		  AND status <> 'CANCELLED'
		  AND NOT EXISTS (
			SELECT 1 FROM wallet_transactions wt
			WHERE wt.booking_id = bookings.id AND wt.role = 'HOST' AND wt.type = 'BOOKING_EARNING')
		ORDER BY created_on
		LIMIT $1`, bookingColumns)
	return r.listBatch(ctx, query, limit)
}

// ListMissingReversals finds cancelled settled bookings whose earning was
// credited but never reversed, i.e. refunds lost to a crash after the status
// flip.
func (r *bookingRepository) ListMissingReversals(ctx context.Context, limit int) ([]domain.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE is_cancelled = TRUE
		  AND settlement_id IS NOT NULL
		  AND EXISTS (
			SELECT 1 FROM wallet_transactions wt
			WHERE wt.booking_id = bookings.id AND wt.role = 'HOST' AND wt.type = 'BOOKING_EARNING')
		  AND NOT EXISTS (
			SELECT 1 FROM wallet_transactions wt
			WHERE wt.booking_id = bookings.id AND wt.role = 'HOST' AND wt.type = 'REFUND')
		ORDER BY cancelled_at
		LIMIT $1`, bookingColumns)
	return r.listBatch(ctx, query, limit)
}

func (r *bookingRepository) listBatch(ctx context.Context, query string, limit int) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListByGuest(ctx context.Context, guestID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "guest_id", guestID, status, page, pageSize)
}

func (r *bookingRepository) ListByHost(ctx context.Context, hostID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "host_id", hostID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, column string, userID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s = $1`, bookingColumns, column)

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *bookingRepository) scanOne(row *sql.Row) (*domain.Booking, error) {
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return b, err
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var start, end time.Time
	var cancelledBy sql.NullString
	var cancelReason sql.NullString
	var cancelledAt sql.NullTime
	var settlementID sql.NullString

	err := row.Scan(&b.ID, &b.PublicID, &b.UnitID, &b.GuestID, &b.HostID, &start, &end,
		&b.Amount.BeforeTaxCents, &b.Amount.TaxCents, &b.Amount.WithTaxCents,
		&b.Amount.DiscountCents, &b.Amount.ExtrasCents, &b.Amount.FinalCents,
		&b.Status, &b.Cancellation.IsCancelled, &cancelledBy, &cancelReason,
		&b.Cancellation.RefundCents, &b.Cancellation.PenaltyCents, &cancelledAt,
		&settlementID, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}

	b.StartDate = start.Format("2006-01-02")
	b.EndDate = end.Format("2006-01-02")
	if cancelledBy.Valid {
		b.Cancellation.CancelledBy = domain.CancelActor(cancelledBy.String)
	}
	if cancelReason.Valid {
		b.Cancellation.Reason = cancelReason.String
	}
	if cancelledAt.Valid {
		b.Cancellation.CancelledAt = &cancelledAt.Time
	}
	if settlementID.Valid {
		b.SettlementID = &settlementID.String
	}
	return b, nil
}
