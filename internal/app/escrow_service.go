package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Enochthedev/Oink-bot-sub001/internal/clock"
	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
	"github.com/Enochthedev/Oink-bot-sub001/internal/processor"
)

// EscrowRepository is the persistence surface the escrow manager needs. All
// multi-row writes go through WithTx so a crash cannot split an escrow update
// from its transaction update.
type EscrowRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	GetEscrow(ctx context.Context, transactionID string) (*domain.EscrowRecord, error)
	CreateEscrow(ctx context.Context, rec domain.EscrowRecord) error
	// SettleEscrow moves a record out of holding with one conditional write;
	// it fails with ErrEscrowNotHolding when the record is already settled.
	SettleEscrow(ctx context.Context, transactionID string, to domain.EscrowStatus, settledAt time.Time) error
	UpdateTransactionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error
	MarkTransactionCompleted(ctx context.Context, id, recipientMethodID string, completedAt time.Time) error
	// MarkTransactionFailed accepts pending, escrowed and already-failed
	// rows; the last lets a retried return restamp the failure reason.
	MarkTransactionFailed(ctx context.Context, id, reason string) error
	ListExpiredHolds(ctx context.Context, now time.Time) ([]domain.EscrowRecord, error)
	DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const defaultEscrowTimeout = 24 * time.Hour

// EscrowService owns the hold/release/return state machine and the expiry
// sweep.
type EscrowService struct {
	repo    EscrowRepository
	rails   *processor.Registry
	clock   clock.Clock
	logger  *slog.Logger
	timeout time.Duration
}

func NewEscrowService(repo EscrowRepository, rails *processor.Registry, clk clock.Clock, logger *slog.Logger, opts ...EscrowServiceOption) *EscrowService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EscrowService{
		repo:    repo,
		rails:   rails,
		clock:   clk,
		logger:  logger,
		timeout: defaultEscrowTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type EscrowServiceOption func(*EscrowService)

// WithEscrowTimeout overrides how long a hold may stay open before the sweep
// returns it to the sender.
func WithEscrowTimeout(d time.Duration) EscrowServiceOption {
	return func(s *EscrowService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// HoldFunds withdraws the transaction amount from the sender's method and
// records custody. The rail withdraw happens outside the store transaction;
// the escrow row and the pending→escrowed move commit as one unit.
func (s *EscrowService) HoldFunds(ctx context.Context, transactionID string, method domain.PaymentMethod) (domain.EscrowRecord, error) {
	if transactionID == "" {
		return domain.EscrowRecord{}, domain.ErrInvalidID
	}

	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if tx.Status != domain.TransactionPending {
		return domain.EscrowRecord{}, fmt.Errorf("%w: hold requires a pending transaction, got %s",
			domain.ErrInvalidTransactionState, tx.Status)
	}
	if !tx.Amount.IsPositive() {
		return domain.EscrowRecord{}, domain.ErrInvalidAmount
	}
	if existing, err := s.repo.GetEscrow(ctx, transactionID); err != nil {
		return domain.EscrowRecord{}, err
	} else if existing != nil {
		return domain.EscrowRecord{}, domain.ErrEscrowAlreadyHeld
	}

	rail, err := s.rails.ForType(method.Type)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	receipt, err := rail.Withdraw(ctx, method.Details, tx.Amount, tx.Currency)
	if err != nil {
		return domain.EscrowRecord{}, fmt.Errorf("withdraw on %s rail: %w", method.Type, err)
	}

	now := s.clock.Now()
	rec := domain.EscrowRecord{
		TransactionID: transactionID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		MethodType:    method.Type,
		MethodDetails: method.Details,
		ExternalTxID:  receipt.ExternalID,
		Status:        domain.EscrowHolding,
		CreatedAt:     now,
		ReleaseAt:     now.Add(s.timeout),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		// The escrow primary key rejects a concurrent duplicate hold even if
		// both callers passed the precondition read.
		if err := s.repo.CreateEscrow(txCtx, rec); err != nil {
			return err
		}
		return s.repo.UpdateTransactionStatus(txCtx, transactionID, domain.TransactionPending, domain.TransactionEscrowed)
	})
	if err != nil {
		// Funds left the sender but custody was not recorded; keep the rail
		// receipt visible for operator reconciliation.
		s.logger.Error("escrow hold not persisted after withdrawal",
			"transaction_id", transactionID, "external_tx_id", receipt.ExternalID, "error", err)
		return domain.EscrowRecord{}, err
	}

	s.logger.Info("funds held in escrow",
		"transaction_id", transactionID,
		"amount", tx.Amount.StringFixed(2),
		"currency", tx.Currency,
		"release_at", rec.ReleaseAt)
	return rec, nil
}

// ReleaseFunds deposits the held amount to the recipient's method and settles
// the escrow. A failed deposit leaves the escrow holding so it can be retried
// or swept later.
func (s *EscrowService) ReleaseFunds(ctx context.Context, transactionID string, recipient domain.PaymentMethod) (domain.Transaction, error) {
	rec, err := s.holdingEscrow(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if recipient.Details == "" {
		return domain.Transaction{}, domain.ErrRecipientMethodRequired
	}
	// Checked before any money moves: a transaction the expiry sweep already
	// marked failed can only be returned, never released.
	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.Status != domain.TransactionEscrowed {
		return domain.Transaction{}, fmt.Errorf("%w: release requires an escrowed transaction, got %s",
			domain.ErrInvalidTransactionState, tx.Status)
	}

	rail, err := s.rails.ForType(recipient.Type)
	if err != nil {
		return domain.Transaction{}, err
	}
	// Conservation: always move the amount captured at hold time.
	if _, err := rail.Deposit(ctx, recipient.Details, rec.Amount, rec.Currency); err != nil {
		return domain.Transaction{}, fmt.Errorf("deposit on %s rail: %w", recipient.Type, err)
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SettleEscrow(txCtx, transactionID, domain.EscrowReleased, now); err != nil {
			return err
		}
		return s.repo.MarkTransactionCompleted(txCtx, transactionID, recipient.ID, now)
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info("escrow released",
		"transaction_id", transactionID,
		"amount", rec.Amount.StringFixed(2),
		"recipient_method", recipient.ID)
	return s.repo.GetTransaction(ctx, transactionID)
}

// ReturnFunds is the compensating action of a hold: the held amount goes back
// to the sender's original method and the transaction is marked failed with
// the fixed return reason. A hold whose earlier return attempt failed is
// still holding and can be returned again; the retry restamps the reason.
func (s *EscrowService) ReturnFunds(ctx context.Context, transactionID string) (domain.Transaction, error) {
	rec, err := s.holdingEscrow(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	rail, err := s.rails.ForType(rec.MethodType)
	if err != nil {
		return domain.Transaction{}, err
	}
	// Deposit back exactly what was held, never a recomputed value.
	if _, err := rail.Deposit(ctx, rec.MethodDetails, rec.Amount, rec.Currency); err != nil {
		return domain.Transaction{}, fmt.Errorf("return deposit on %s rail: %w", rec.MethodType, err)
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SettleEscrow(txCtx, transactionID, domain.EscrowReturned, now); err != nil {
			return err
		}
		return s.repo.MarkTransactionFailed(txCtx, transactionID, domain.ReasonFundsReturned)
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info("escrow returned to sender",
		"transaction_id", transactionID,
		"amount", rec.Amount.StringFixed(2))
	return s.repo.GetTransaction(ctx, transactionID)
}

func (s *EscrowService) holdingEscrow(ctx context.Context, transactionID string) (domain.EscrowRecord, error) {
	if transactionID == "" {
		return domain.EscrowRecord{}, domain.ErrInvalidID
	}
	rec, err := s.repo.GetEscrow(ctx, transactionID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if rec == nil {
		return domain.EscrowRecord{}, domain.ErrEscrowNotFound
	}
	if rec.Status != domain.EscrowHolding {
		return domain.EscrowRecord{}, fmt.Errorf("%w: escrow is %s", domain.ErrEscrowNotHolding, rec.Status)
	}
	return *rec, nil
}

// SweepReport summarises one expiry sweep pass.
type SweepReport struct {
	Expired  int // holds past their deadline at sweep time
	Returned int
	Failed   int // marked failed because the return could not complete
	Skipped  int // settled concurrently between listing and settling
}

// ProcessExpiredEscrows returns every hold past its deadline to its sender.
// A failure on one record marks that transaction failed with an expiry reason
// and moves on; it never aborts the rest of the batch.
func (s *EscrowService) ProcessExpiredEscrows(ctx context.Context) (SweepReport, error) {
	expired, err := s.repo.ListExpiredHolds(ctx, s.clock.Now())
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Expired: len(expired)}
	for _, rec := range expired {
		if _, err := s.ReturnFunds(ctx, rec.TransactionID); err != nil {
			if errors.Is(err, domain.ErrEscrowNotHolding) || errors.Is(err, domain.ErrEscrowNotFound) {
				// Lost the settle race: someone released or returned it
				// between listing and settling.
				report.Skipped++
				continue
			}
			report.Failed++
			s.logger.Error("expired escrow could not be returned",
				"transaction_id", rec.TransactionID, "error", err)
			reason := fmt.Sprintf("Escrow hold expired; return to sender failed: %v", err)
			if markErr := s.repo.MarkTransactionFailed(ctx, rec.TransactionID, reason); markErr != nil {
				s.logger.Error("failed to mark expired transaction",
					"transaction_id", rec.TransactionID, "error", markErr)
			}
			continue
		}
		report.Returned++
	}

	if report.Expired > 0 {
		s.logger.Info("escrow sweep finished",
			"expired", report.Expired,
			"returned", report.Returned,
			"failed", report.Failed,
			"skipped", report.Skipped)
	}
	return report, nil
}

// CleanupSettledEscrows deletes released/returned records settled before the
// retention cutoff and reports how many were removed.
func (s *EscrowService) CleanupSettledEscrows(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, domain.ErrInvalidRetention
	}
	cutoff := s.clock.Now().AddDate(0, 0, -olderThanDays)
	removed, err := s.repo.DeleteSettledBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("settled escrow records purged", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
