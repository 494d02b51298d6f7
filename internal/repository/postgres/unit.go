package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type unitRepository struct {
	db *sql.DB
}

func NewUnitRepository(db *sql.DB) repository.UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) GetByID(ctx context.Context, id int32) (*domain.Unit, error) {
	u := &domain.Unit{}
	query := `SELECT id, host_id, name, base_price_cents, weekend_price_cents, weekend_pricing_enabled, active, created_on, updated_on
	          FROM units WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.HostID, &u.Name, &u.BasePriceCents, &u.WeekendPriceCents,
		&u.WeekendPricingEnabled, &u.Active, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *unitRepository) ListActive(ctx context.Context) ([]domain.Unit, error) {
	query := `SELECT id, host_id, name, base_price_cents, weekend_price_cents, weekend_pricing_enabled, active, created_on, updated_on
	          FROM units WHERE active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.ID, &u.HostID, &u.Name, &u.BasePriceCents, &u.WeekendPriceCents,
			&u.WeekendPricingEnabled, &u.Active, &u.CreatedOn, &u.UpdatedOn); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *unitRepository) UpdatePricing(ctx context.Context, unit *domain.Unit) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE units
		SET base_price_cents = $1, weekend_price_cents = $2, weekend_pricing_enabled = $3, updated_on = $4
		WHERE id = $5`,
		unit.BasePriceCents, unit.WeekendPriceCents, unit.WeekendPricingEnabled, time.Now(), unit.ID)
	return err
}

func (r *unitRepository) IsAutoAcceptGuest(ctx context.Context, unitID, guestID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM unit_auto_accept_guests WHERE unit_id = $1 AND guest_id = $2)`
	err := r.db.QueryRowContext(ctx, query, unitID, guestID).Scan(&exists)
	return exists, err
}
