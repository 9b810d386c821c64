package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// EscrowRepository persists escrow records. It also carries the transaction
// status statements the escrow manager commits in the same atomic unit.
type EscrowRepository struct {
	pool *pgxpool.Pool
}

func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return &EscrowRepository{pool: pool}
}

func (r *EscrowRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const escrowColumns = `transaction_id, amount, currency, method_type,
method_details, external_tx_id, status, created_at, release_at`

func (r *EscrowRepository) CreateEscrow(ctx context.Context, rec domain.EscrowRecord) error {
	const stmt = `
INSERT INTO escrow_records (transaction_id, amount, currency, method_type,
	method_details, external_tx_id, status, created_at, release_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := exec(ctx, r.pool, stmt,
		rec.TransactionID,
		rec.Amount,
		rec.Currency,
		rec.MethodType,
		rec.MethodDetails,
		rec.ExternalTxID,
		rec.Status,
		rec.CreatedAt,
		rec.ReleaseAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEscrowAlreadyHeld
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTransactionNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create escrow: %w", err)
	}
	return nil
}

func (r *EscrowRepository) GetEscrow(ctx context.Context, transactionID string) (*domain.EscrowRecord, error) {
	q := `SELECT ` + escrowColumns + ` FROM escrow_records WHERE transaction_id = $1`

	var rec domain.EscrowRecord
	err := queryRow(ctx, r.pool, q, transactionID).Scan(
		&rec.TransactionID,
		&rec.Amount,
		&rec.Currency,
		&rec.MethodType,
		&rec.MethodDetails,
		&rec.ExternalTxID,
		&rec.Status,
		&rec.CreatedAt,
		&rec.ReleaseAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get escrow: %w", err)
	}
	return &rec, nil
}

// SettleEscrow is the single conditional write that closes the settle race:
// zero rows affected means the record was not holding.
func (r *EscrowRepository) SettleEscrow(ctx context.Context, transactionID string, to domain.EscrowStatus, settledAt time.Time) error {
	const stmt = `
UPDATE escrow_records SET status = $2, release_at = $3
WHERE transaction_id = $1 AND status = 'holding'`

	tag, err := exec(ctx, r.pool, stmt, transactionID, to, settledAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("settle escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := queryRow(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM escrow_records WHERE transaction_id = $1)`, transactionID).Scan(&exists); err != nil {
			return fmt.Errorf("check escrow: %w", err)
		}
		if !exists {
			return domain.ErrEscrowNotFound
		}
		return domain.ErrEscrowNotHolding
	}
	return nil
}

func (r *EscrowRepository) ListExpiredHolds(ctx context.Context, now time.Time) ([]domain.EscrowRecord, error) {
	q := `SELECT ` + escrowColumns + `
FROM escrow_records
WHERE status = 'holding' AND release_at <= $1
ORDER BY release_at`

	rows, err := query(ctx, r.pool, q, now)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	defer rows.Close()

	var out []domain.EscrowRecord
	for rows.Next() {
		var rec domain.EscrowRecord
		if err := rows.Scan(
			&rec.TransactionID,
			&rec.Amount,
			&rec.Currency,
			&rec.MethodType,
			&rec.MethodDetails,
			&rec.ExternalTxID,
			&rec.Status,
			&rec.CreatedAt,
			&rec.ReleaseAt,
		); err != nil {
			return nil, fmt.Errorf("scan escrow: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	return out, nil
}

func (r *EscrowRepository) DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const stmt = `
DELETE FROM escrow_records
WHERE status IN ('released', 'returned') AND release_at < $1`

	tag, err := exec(ctx, r.pool, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete settled escrows: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EscrowRepository) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	return getTransaction(ctx, r.pool, id)
}

func (r *EscrowRepository) UpdateTransactionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error {
	return updateTransactionStatus(ctx, r.pool, id, from, to)
}

func (r *EscrowRepository) MarkTransactionCompleted(ctx context.Context, id, recipientMethodID string, completedAt time.Time) error {
	return markTransactionCompleted(ctx, r.pool, id, recipientMethodID, completedAt)
}

func (r *EscrowRepository) MarkTransactionFailed(ctx context.Context, id, reason string) error {
	return markTransactionFailed(ctx, r.pool, id, reason)
}
