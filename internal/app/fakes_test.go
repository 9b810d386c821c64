package app

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
	"github.com/Enochthedev/Oink-bot-sub001/internal/processor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore backs both the escrow and ledger repository interfaces with maps,
// mirroring the conditional-write semantics of the Postgres implementation.
// The mutex keeps it safe for tests that drive it from a background goroutine.
type fakeStore struct {
	mu      sync.Mutex
	txs     map[string]domain.Transaction
	escrows map[string]domain.EscrowRecord

	createTransactionErr error
	createEscrowErr      error
	settleEscrowErr      error
	markFailedErr        error
	listExpiredErr       error

	// staleExpired is appended to ListExpiredHolds results, simulating
	// records settled between listing and settling.
	staleExpired []domain.EscrowRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txs:     make(map[string]domain.Transaction),
		escrows: make(map[string]domain.EscrowRecord),
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTransactionErr != nil {
		return f.createTransactionErr
	}
	f.txs[tx.ID] = tx
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id string) (domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeStore) UpdateTransactionStatus(_ context.Context, id string, from, to domain.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.Status != from {
		return domain.ErrInvalidTransactionState
	}
	tx.Status = to
	f.txs[id] = tx
	return nil
}

func (f *fakeStore) MarkTransactionCompleted(_ context.Context, id, recipientMethodID string, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.Status != domain.TransactionEscrowed {
		return domain.ErrInvalidTransactionState
	}
	tx.Status = domain.TransactionCompleted
	tx.CompletedAt = &completedAt
	if recipientMethodID != "" {
		tx.RecipientMethodID = recipientMethodID
	}
	f.txs[id] = tx
	return nil
}

func (f *fakeStore) MarkTransactionFailed(_ context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markFailedErr != nil {
		return f.markFailedErr
	}
	tx, ok := f.txs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if tx.Status != domain.TransactionPending && tx.Status != domain.TransactionEscrowed &&
		tx.Status != domain.TransactionFailed {
		return domain.ErrInvalidTransactionState
	}
	tx.Status = domain.TransactionFailed
	tx.FailureReason = reason
	f.txs[id] = tx
	return nil
}

func (f *fakeStore) CreateEscrow(_ context.Context, rec domain.EscrowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createEscrowErr != nil {
		return f.createEscrowErr
	}
	if _, ok := f.escrows[rec.TransactionID]; ok {
		return domain.ErrEscrowAlreadyHeld
	}
	if _, ok := f.txs[rec.TransactionID]; !ok {
		return domain.ErrTransactionNotFound
	}
	f.escrows[rec.TransactionID] = rec
	return nil
}

func (f *fakeStore) GetEscrow(_ context.Context, transactionID string) (*domain.EscrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.escrows[transactionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeStore) SettleEscrow(_ context.Context, transactionID string, to domain.EscrowStatus, settledAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settleEscrowErr != nil {
		return f.settleEscrowErr
	}
	rec, ok := f.escrows[transactionID]
	if !ok {
		return domain.ErrEscrowNotFound
	}
	if rec.Status != domain.EscrowHolding {
		return domain.ErrEscrowNotHolding
	}
	rec.Status = to
	rec.ReleaseAt = settledAt
	f.escrows[transactionID] = rec
	return nil
}

func (f *fakeStore) ListExpiredHolds(_ context.Context, now time.Time) ([]domain.EscrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listExpiredErr != nil {
		return nil, f.listExpiredErr
	}
	var out []domain.EscrowRecord
	for _, rec := range f.escrows {
		if rec.Status == domain.EscrowHolding && !rec.ReleaseAt.After(now) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReleaseAt.Before(out[j].ReleaseAt) })
	return append(out, f.staleExpired...), nil
}

func (f *fakeStore) DeleteSettledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, rec := range f.escrows {
		if rec.Status != domain.EscrowHolding && rec.ReleaseAt.Before(cutoff) {
			delete(f.escrows, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) ListTransactionsByAccount(_ context.Context, accountID string, filter domain.HistoryFilter) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLocked(accountID, filter)
}

func (f *fakeStore) listLocked(accountID string, filter domain.HistoryFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.txs {
		sent := tx.SenderID == accountID
		received := tx.RecipientID == accountID
		switch filter.Direction {
		case domain.DirectionSent:
			if !sent {
				continue
			}
		case domain.DirectionReceived:
			if !received {
				continue
			}
		default:
			if !sent && !received {
				continue
			}
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) AccountActivity(_ context.Context, accountID string, recentLimit int) (domain.AccountActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity := domain.AccountActivity{
		AccountID:     accountID,
		SentTotal:     decimal.Zero,
		ReceivedTotal: decimal.Zero,
	}
	for _, tx := range f.txs {
		if tx.Status != domain.TransactionCompleted {
			continue
		}
		if tx.SenderID == accountID {
			activity.SentTotal = activity.SentTotal.Add(tx.Amount)
			activity.SentCount++
		}
		if tx.RecipientID == accountID {
			activity.ReceivedTotal = activity.ReceivedTotal.Add(tx.Amount)
			activity.ReceivedCount++
		}
	}
	recent, err := f.listLocked(accountID, domain.HistoryFilter{
		Direction: domain.DirectionAll,
		Limit:     recentLimit,
	})
	if err != nil {
		return domain.AccountActivity{}, err
	}
	activity.Recent = recent
	return activity, nil
}

// escrowStatus reads a record's status under the lock, for tests that poll
// while a background goroutine is writing.
func (f *fakeStore) escrowStatus(transactionID string) domain.EscrowStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.escrows[transactionID].Status
}

// fakeRail is a scriptable settlement rail that records every movement.
type fakeRail struct {
	withdrawErr error
	depositErr  error
	feeErr      error
	fee         decimal.Decimal

	withdrawals []movement
	deposits    []movement
}

type movement struct {
	accountRef string
	amount     decimal.Decimal
	currency   string
}

func newFakeRail() *fakeRail {
	return &fakeRail{fee: decimal.RequireFromString("0.50")}
}

func (r *fakeRail) Validate(_ context.Context, accountRef string) error {
	if accountRef == "" {
		return domain.ErrProcessorFailure
	}
	return nil
}

func (r *fakeRail) Withdraw(_ context.Context, accountRef string, amount decimal.Decimal, currency string) (processor.Receipt, error) {
	if r.withdrawErr != nil {
		return processor.Receipt{}, r.withdrawErr
	}
	r.withdrawals = append(r.withdrawals, movement{accountRef, amount, currency})
	return processor.Receipt{ExternalID: "fake-withdraw"}, nil
}

func (r *fakeRail) Deposit(_ context.Context, accountRef string, amount decimal.Decimal, currency string) (processor.Receipt, error) {
	if r.depositErr != nil {
		return processor.Receipt{}, r.depositErr
	}
	r.deposits = append(r.deposits, movement{accountRef, amount, currency})
	return processor.Receipt{ExternalID: "fake-deposit"}, nil
}

func (r *fakeRail) EstimateFees(_ context.Context, _ decimal.Decimal) (decimal.Decimal, error) {
	if r.feeErr != nil {
		return decimal.Zero, r.feeErr
	}
	return r.fee, nil
}

func (r *fakeRail) EstimateProcessingTime(_ context.Context) (time.Duration, error) {
	return time.Hour, nil
}

// fakeDirectory resolves payment methods from a fixed map.
type fakeDirectory struct {
	methods map[string]domain.PaymentMethod
}

func newFakeDirectory(methods ...domain.PaymentMethod) *fakeDirectory {
	byID := make(map[string]domain.PaymentMethod, len(methods))
	for _, m := range methods {
		byID[m.ID] = m
	}
	return &fakeDirectory{methods: byID}
}

func (d *fakeDirectory) GetMethod(_ context.Context, methodID string) (domain.PaymentMethod, error) {
	m, ok := d.methods[methodID]
	if !ok {
		return domain.PaymentMethod{}, domain.ErrMethodNotFound
	}
	return m, nil
}
