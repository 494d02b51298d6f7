package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type settlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) repository.SettlementRepository {
	return &settlementRepository{db: db}
}

const settlementColumns = `id, gateway, gateway_order_id, gateway_payment_id, status,
	subject_type, subject_id, guest_id, start_date, end_date, amount_cents,
	pricing_snapshot, failure_reason, created_on, settled_on`

func (r *settlementRepository) Create(ctx context.Context, rec *domain.SettlementRecord) error {
	query := `INSERT INTO settlement_records (id, gateway, gateway_order_id, status, subject_type,
	            subject_id, guest_id, start_date, end_date, amount_cents, pricing_snapshot, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Gateway, rec.GatewayOrderID, rec.Status, rec.SubjectType,
		rec.SubjectID, rec.GuestID, rec.StartDate, rec.EndDate, rec.AmountCents,
		rec.PricingSnapshot, now)
	if err == nil {
		rec.CreatedOn = now
	}
	return err
}

func (r *settlementRepository) GetByGatewayOrder(ctx context.Context, gateway, gatewayOrderID string) (*domain.SettlementRecord, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_records WHERE gateway = $1 AND gateway_order_id = $2`
	rec, err := scanSettlement(r.db.QueryRowContext(ctx, query, gateway, gatewayOrderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return rec, err
}

// ClaimPaid is the idempotency guard for webhook settlement: the conditional
// UPDATE succeeds for exactly one caller, every retry sees zero rows and
// returns claimed=false.
func (r *settlementRepository) ClaimPaid(ctx context.Context, gateway, gatewayOrderID, gatewayPaymentID string) (*domain.SettlementRecord, bool, error) {
	query := `UPDATE settlement_records
	          SET status = 'PAID', gateway_payment_id = $1, settled_on = NOW()
	          WHERE gateway = $2 AND gateway_order_id = $3 AND status = 'PENDING'
	          RETURNING ` + settlementColumns
	rec, err := scanSettlement(r.db.QueryRowContext(ctx, query, gatewayPaymentID, gateway, gatewayOrderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (r *settlementRepository) MarkFailed(ctx context.Context, gateway, gatewayOrderID, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE settlement_records
		SET status = 'FAILED', failure_reason = $1, settled_on = NOW()
		WHERE gateway = $2 AND gateway_order_id = $3 AND status = 'PENDING'`,
		reason, gateway, gatewayOrderID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	return count > 0, err
}

func scanSettlement(row *sql.Row) (*domain.SettlementRecord, error) {
	rec := &domain.SettlementRecord{}
	var paymentID sql.NullString
	var failureReason sql.NullString
	var start, end time.Time
	var settledOn sql.NullTime

	err := row.Scan(&rec.ID, &rec.Gateway, &rec.GatewayOrderID, &paymentID, &rec.Status,
		&rec.SubjectType, &rec.SubjectID, &rec.GuestID, &start, &end, &rec.AmountCents,
		&rec.PricingSnapshot, &failureReason, &rec.CreatedOn, &settledOn)
	if err != nil {
		return nil, err
	}

	rec.StartDate = start.Format("2006-01-02")
	rec.EndDate = end.Format("2006-01-02")
	if paymentID.Valid {
		rec.GatewayPaymentID = &paymentID.String
	}
	if failureReason.Valid {
		rec.FailureReason = failureReason.String
	}
	if settledOn.Valid {
		rec.SettledOn = &settledOn.Time
	}
	return rec, nil
}
