package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// TransactionRepository persists transaction records and serves the ledger's
// read-side queries.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const transactionColumns = `id, sender_id, recipient_id, amount, currency,
sender_method_id, sender_method_type, recipient_method_id,
processing_fee, escrow_fee, total_fee, status, failure_reason,
created_at, completed_at`

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx domain.Transaction) error {
	const stmt = `
INSERT INTO transactions (id, sender_id, recipient_id, amount, currency,
	sender_method_id, sender_method_type, recipient_method_id,
	processing_fee, escrow_fee, total_fee, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13)`

	_, err := exec(ctx, r.pool, stmt,
		tx.ID,
		tx.SenderID,
		tx.RecipientID,
		tx.Amount,
		tx.Currency,
		tx.SenderMethodID,
		tx.SenderMethodType,
		tx.RecipientMethodID,
		tx.Fees.Processing,
		tx.Fees.Escrow,
		tx.Fees.Total,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	return getTransaction(ctx, r.pool, id)
}

func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error {
	return updateTransactionStatus(ctx, r.pool, id, from, to)
}

func (r *TransactionRepository) MarkTransactionFailed(ctx context.Context, id, reason string) error {
	return markTransactionFailed(ctx, r.pool, id, reason)
}

func (r *TransactionRepository) MarkTransactionCompleted(ctx context.Context, id, recipientMethodID string, completedAt time.Time) error {
	return markTransactionCompleted(ctx, r.pool, id, recipientMethodID, completedAt)
}

func (r *TransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE `
	args := []any{accountID}
	switch f.Direction {
	case domain.DirectionSent:
		q += `sender_id = $1`
	case domain.DirectionReceived:
		q += `recipient_id = $1`
	default:
		q += `(sender_id = $1 OR recipient_id = $1)`
	}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, f.Offset)
	q += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := query(ctx, r.pool, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *TransactionRepository) AccountActivity(ctx context.Context, accountID string, recentLimit int) (domain.AccountActivity, error) {
	const totals = `
SELECT
	COALESCE(SUM(amount) FILTER (WHERE sender_id = $1), 0),
	COUNT(*) FILTER (WHERE sender_id = $1),
	COALESCE(SUM(amount) FILTER (WHERE recipient_id = $1), 0),
	COUNT(*) FILTER (WHERE recipient_id = $1)
FROM transactions
WHERE status = 'completed' AND (sender_id = $1 OR recipient_id = $1)`

	activity := domain.AccountActivity{AccountID: accountID}
	err := queryRow(ctx, r.pool, totals, accountID).Scan(
		&activity.SentTotal,
		&activity.SentCount,
		&activity.ReceivedTotal,
		&activity.ReceivedCount,
	)
	if err != nil {
		return domain.AccountActivity{}, fmt.Errorf("account activity: %w", err)
	}

	recent, err := r.ListTransactionsByAccount(ctx, accountID, domain.HistoryFilter{
		Direction: domain.DirectionAll,
		Limit:     recentLimit,
	})
	if err != nil {
		return domain.AccountActivity{}, err
	}
	activity.Recent = recent
	return activity, nil
}

// Shared transaction statements. The escrow repository flips transaction
// status inside the same atomic unit as its escrow writes, so these live at
// package level.

func getTransaction(ctx context.Context, pool *pgxpool.Pool, id string) (domain.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(queryRow(ctx, pool, q, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Transaction{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		tx                domain.Transaction
		recipientMethodID *string
		failureReason     *string
	)
	err := row.Scan(
		&tx.ID,
		&tx.SenderID,
		&tx.RecipientID,
		&tx.Amount,
		&tx.Currency,
		&tx.SenderMethodID,
		&tx.SenderMethodType,
		&recipientMethodID,
		&tx.Fees.Processing,
		&tx.Fees.Escrow,
		&tx.Fees.Total,
		&tx.Status,
		&failureReason,
		&tx.CreatedAt,
		&tx.CompletedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	if recipientMethodID != nil {
		tx.RecipientMethodID = *recipientMethodID
	}
	if failureReason != nil {
		tx.FailureReason = *failureReason
	}
	return tx, nil
}

func updateTransactionStatus(ctx context.Context, pool *pgxpool.Pool, id string, from, to domain.TransactionStatus) error {
	const stmt = `UPDATE transactions SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := exec(ctx, pool, stmt, id, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transactionConflict(ctx, pool, id)
	}
	return nil
}

func markTransactionFailed(ctx context.Context, pool *pgxpool.Pool, id, reason string) error {
	// Already-failed rows qualify so a retried return can restamp the reason;
	// completed and cancelled rows stay untouched.
	const stmt = `
UPDATE transactions SET status = 'failed', failure_reason = $2
WHERE id = $1 AND status IN ('pending', 'escrowed', 'failed')`

	tag, err := exec(ctx, pool, stmt, id, reason)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark transaction failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transactionConflict(ctx, pool, id)
	}
	return nil
}

func markTransactionCompleted(ctx context.Context, pool *pgxpool.Pool, id, recipientMethodID string, completedAt time.Time) error {
	const stmt = `
UPDATE transactions
SET status = 'completed',
	completed_at = $2,
	recipient_method_id = COALESCE(NULLIF($3, ''), recipient_method_id)
WHERE id = $1 AND status = 'escrowed'`

	tag, err := exec(ctx, pool, stmt, id, completedAt, recipientMethodID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark transaction completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transactionConflict(ctx, pool, id)
	}
	return nil
}

// transactionConflict distinguishes a missing row from a status precondition
// that did not hold.
func transactionConflict(ctx context.Context, pool *pgxpool.Pool, id string) error {
	var exists bool
	if err := queryRow(ctx, pool, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("check transaction: %w", err)
	}
	if !exists {
		return domain.ErrTransactionNotFound
	}
	return domain.ErrInvalidTransactionState
}
