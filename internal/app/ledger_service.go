package app

import (
	"context"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultRecentLimit  = 5
)

// LedgerService exposes the read/query surface over transaction records plus
// the ledger's own status-update operation.
type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if id == "" {
		return domain.Transaction{}, domain.ErrInvalidID
	}
	return s.repo.GetTransaction(ctx, id)
}

// History lists an account's transactions, newest first.
func (s *LedgerService) History(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Transaction, error) {
	if accountID == "" {
		return nil, domain.ErrInvalidID
	}
	if f.Direction == "" {
		f.Direction = domain.DirectionAll
	}
	if !f.Direction.Valid() {
		return nil, domain.ErrInvalidFilter
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrInvalidFilter
	}
	if f.Limit <= 0 {
		f.Limit = defaultHistoryLimit
	}
	if f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListTransactionsByAccount(ctx, accountID, f)
}

// AccountActivity aggregates completed sent/received totals and recent
// transactions for display.
func (s *LedgerService) AccountActivity(ctx context.Context, accountID string) (domain.AccountActivity, error) {
	if accountID == "" {
		return domain.AccountActivity{}, domain.ErrInvalidID
	}
	return s.repo.AccountActivity(ctx, accountID, defaultRecentLimit)
}

// UpdateStatus applies the ledger's conditional status transition, e.g.
// cancelling a pending transaction. Monetary transitions stay with the escrow
// manager.
func (s *LedgerService) UpdateStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	if !from.Valid() || !to.Valid() || from == to {
		return domain.ErrInvalidFilter
	}
	if from.Terminal() {
		return domain.ErrInvalidTransactionState
	}
	return s.repo.UpdateTransactionStatus(ctx, id, from, to)
}
