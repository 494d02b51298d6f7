package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nestbay-backend/internal/domain"
	"nestbay-backend/internal/repository"
)

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetOrCreate(ctx context.Context, userID int32, role domain.WalletRole, currency string) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (user_id, role, balance_cents, hold_balance_cents, commission_cents, currency, updated_on)
	          VALUES ($1, $2, 0, 0, 0, $3, NOW())
	          ON CONFLICT (user_id, role) DO UPDATE SET user_id = wallets.user_id
	          RETURNING user_id, role, balance_cents, hold_balance_cents, commission_cents, currency, updated_on`
	return scanWallet(r.db.QueryRowContext(ctx, query, userID, role, currency))
}

func (r *walletRepository) Get(ctx context.Context, userID int32, role domain.WalletRole) (*domain.Wallet, error) {
	query := `SELECT user_id, role, balance_cents, hold_balance_cents, commission_cents, currency, updated_on
	          FROM wallets WHERE user_id = $1 AND role = $2`
	w, err := scanWallet(r.db.QueryRowContext(ctx, query, userID, role))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return w, err
}

func (r *walletRepository) CreditHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE wallets
		SET hold_balance_cents = hold_balance_cents + $1,
		    commission_cents = commission_cents + $2,
		    updated_on = NOW()
		WHERE user_id = $3 AND role = 'HOST'`,
		earningsCents, commissionCents, hostID)
	return err
}

// DebitHoldAndCommission clamps at zero so a reversal can never drive the
// hold balance or commission negative.
func (r *walletRepository) DebitHoldAndCommission(ctx context.Context, hostID int32, earningsCents, commissionCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE wallets
		SET hold_balance_cents = GREATEST(0, hold_balance_cents - $1),
		    commission_cents = GREATEST(0, commission_cents - $2),
		    updated_on = NOW()
		WHERE user_id = $3 AND role = 'HOST'`,
		earningsCents, commissionCents, hostID)
	return err
}

func (r *walletRepository) CreditBalance(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE wallets
		SET balance_cents = balance_cents + $1, updated_on = NOW()
		WHERE user_id = $2 AND role = $3`,
		amountCents, userID, role)
	return err
}

func (r *walletRepository) DebitBalanceIfSufficient(ctx context.Context, userID int32, role domain.WalletRole, amountCents int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE wallets
		SET balance_cents = balance_cents - $1, updated_on = NOW()
		WHERE user_id = $2 AND role = $3 AND balance_cents >= $1`,
		amountCents, userID, role)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	return count > 0, err
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (id, user_id, role, amount_cents, type, status, booking_id, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Role, tx.AmountCents, tx.Type, tx.Status, tx.BookingID, tx.Description, now)
	if err == nil {
		tx.CreatedOn = now
	}
	return err
}

// HasTransactionForBooking is the completion marker behind the idempotent
// credit and reversal paths: the host-side earning or refund row only exists
// once the corresponding wallet mutation went through.
func (r *walletRepository) HasTransactionForBooking(ctx context.Context, bookingID string, role domain.WalletRole, txType domain.WalletTransactionType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wallet_transactions
			WHERE booking_id = $1 AND role = $2 AND type = $3)`,
		bookingID, role, txType).Scan(&exists)
	return exists, err
}

func (r *walletRepository) GetTransaction(ctx context.Context, txID string) (*domain.WalletTransaction, error) {
	query := `SELECT id, user_id, role, amount_cents, type, status, booking_id, COALESCE(description, ''), created_on
	          FROM wallet_transactions WHERE id = $1`
	tx := &domain.WalletTransaction{}
	var bookingID sql.NullString
	err := r.db.QueryRowContext(ctx, query, txID).Scan(
		&tx.ID, &tx.UserID, &tx.Role, &tx.AmountCents, &tx.Type, &tx.Status, &bookingID, &tx.Description, &tx.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		tx.BookingID = &bookingID.String
	}
	return tx, nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID int32, role domain.WalletRole, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM wallet_transactions WHERE user_id = $1 AND role = $2`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, role).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, role, amount_cents, type, status, booking_id, COALESCE(description, ''), created_on
	          FROM wallet_transactions WHERE user_id = $1 AND role = $2
	          ORDER BY created_on DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, userID, role, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		var bookingID sql.NullString
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Role, &tx.AmountCents, &tx.Type, &tx.Status, &bookingID, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, 0, err
		}
		if bookingID.Valid {
			tx.BookingID = &bookingID.String
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}

func (r *walletRepository) UpdateTransactionStatus(ctx context.Context, txID string, from, to domain.WalletTransactionStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $1 WHERE id = $2 AND status = $3`,
		to, txID, from)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	return count > 0, err
}

func scanWallet(row *sql.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.UserID, &w.Role, &w.BalanceCents, &w.HoldBalanceCents, &w.CommissionCents, &w.Currency, &w.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return w, nil
}
