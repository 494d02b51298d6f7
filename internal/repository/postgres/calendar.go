package postgres

import (
	"context"
	"database/sql"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type calendarRepository struct {
	db *sql.DB
}

func NewCalendarRepository(db *sql.DB) repository.CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) SeedNights(ctx context.Context, nights []domain.CalendarNight) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO calendar_nights (unit_id, night, status, price_before_fee_cents, price_with_fee_cents, price_source, is_weekend)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (unit_id, night) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var inserted int64
	for _, n := range nights {
		res, err := stmt.ExecContext(ctx, n.UnitID, n.Night, n.Status, n.PriceBeforeFeeCents, n.PriceWithFeeCents, n.PriceSource, n.IsWeekend)
		if err != nil {
			return 0, err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += count
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *calendarRepository) ListRange(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error) {
	query := `SELECT unit_id, night, status, price_before_fee_cents, price_with_fee_cents, price_source, is_weekend, booking_id
	          FROM calendar_nights WHERE unit_id = $1 AND night >= $2 AND night < $3 ORDER BY night`
	rows, err := r.db.QueryContext(ctx, query, unitID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNights(rows)
}

func (r *calendarRepository) ListMonth(ctx context.Context, unitID int32, year, month int) ([]domain.CalendarNightView, error) {
	query := `SELECT cn.unit_id, cn.night, cn.status, cn.price_before_fee_cents, cn.price_with_fee_cents, cn.price_source, cn.is_weekend, cn.booking_id, COALESCE(b.public_id, '')
	          FROM calendar_nights cn
	          LEFT JOIN bookings b ON cn.booking_id = b.id
	          WHERE cn.unit_id = $1 AND EXTRACT(YEAR FROM cn.night) = $2 AND EXTRACT(MONTH FROM cn.night) = $3
	          ORDER BY cn.night`
	rows, err := r.db.QueryContext(ctx, query, unitID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.CalendarNightView
	for rows.Next() {
		var v domain.CalendarNightView
		var night time.Time
		var bookingID sql.NullString
		if err := rows.Scan(&v.UnitID, &night, &v.Status, &v.PriceBeforeFeeCents, &v.PriceWithFeeCents, &v.PriceSource, &v.IsWeekend, &bookingID, &v.BookingPublicID); err != nil {
			return nil, err
		}
		v.Night = night.Format("2006-01-02")
		if bookingID.Valid {
			v.BookingID = &bookingID.String
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *calendarRepository) ListConflicts(ctx context.Context, unitID int32, start, end string) ([]domain.CalendarNight, error) {
	query := `SELECT unit_id, night, status, price_before_fee_cents, price_with_fee_cents, price_source, is_weekend, booking_id
	          FROM calendar_nights
	          WHERE unit_id = $1 AND night >= $2 AND night < $3 AND status IN ('BOOKED', 'BLOCKED')
	          ORDER BY night`
	rows, err := r.db.QueryContext(ctx, query, unitID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNights(rows)
}

// ClaimNights is the single conditional batch that closes the check-then-book
// race: either every requested night flips AVAILABLE -> BOOKED in one
// transaction, or none does.
func (r *calendarRepository) ClaimNights(ctx context.Context, unitID int32, start, end, bookingID string, expectedNights int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE calendar_nights
		SET status = 'BOOKED', booking_id = $1
		WHERE unit_id = $2 AND night >= $3 AND night < $4 AND status = 'AVAILABLE'`,
		bookingID, unitID, start, end)
	if err != nil {
		return err
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if claimed != int64(expectedNights) {
		return repository.ErrNightsUnavailable
	}

	return tx.Commit()
}

func (r *calendarRepository) Release(ctx context.Context, bookingID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_nights
		SET status = 'AVAILABLE', booking_id = NULL
		WHERE booking_id = $1 AND status = 'BOOKED'`,
		bookingID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *calendarRepository) UpdateNightPrices(ctx context.Context, unitID int32, updates []repository.NightPriceUpdate) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE calendar_nights
		SET price_before_fee_cents = $1, price_with_fee_cents = $2, price_source = $3
		WHERE unit_id = $4 AND night = $5
		  AND price_source IN ('BASE', 'WEEKEND')
		  AND status <> 'BOOKED'`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var updated int64
	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.BeforeFeeCents, u.WithFeeCents, u.Source, unitID, u.Night)
		if err != nil {
			return 0, err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		updated += count
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *calendarRepository) SetManualPrice(ctx context.Context, unitID int32, dates []string, beforeFeeCents, withFeeCents int64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE calendar_nights
		SET price_before_fee_cents = $1, price_with_fee_cents = $2, price_source = 'MANUAL'
		WHERE unit_id = $3 AND night = $4 AND status <> 'BOOKED'`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var updated []string
	for _, d := range dates {
		res, err := stmt.ExecContext(ctx, beforeFeeCents, withFeeCents, unitID, d)
		if err != nil {
			return nil, err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			updated = append(updated, d)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *calendarRepository) ReleaseOrphans(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_nights cn
		SET status = 'AVAILABLE', booking_id = NULL
		WHERE cn.status = 'BOOKED'
		  AND (cn.booking_id IS NULL
		       OR NOT EXISTS (SELECT 1 FROM bookings b WHERE b.id = cn.booking_id)
		       OR EXISTS (SELECT 1 FROM bookings b WHERE b.id = cn.booking_id AND b.status = 'CANCELLED'))`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNights(rows *sql.Rows) ([]domain.CalendarNight, error) {
	var nights []domain.CalendarNight
	for rows.Next() {
		var n domain.CalendarNight
		var night time.Time
		var bookingID sql.NullString
		if err := rows.Scan(&n.UnitID, &night, &n.Status, &n.PriceBeforeFeeCents, &n.PriceWithFeeCents, &n.PriceSource, &n.IsWeekend, &bookingID); err != nil {
			return nil, err
		}
		n.Night = night.Format("2006-01-02")
		if bookingID.Valid {
			n.BookingID = &bookingID.String
		}
		nights = append(nights, n)
	}
	return nights, rows.Err()
}
