package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

func seedLedger(store *fakeStore, base time.Time) {
	amounts := []struct {
		id       string
		sender   string
		receiver string
		amount   string
		status   domain.TransactionStatus
	}{
		{"tx-1", "alice", "bob", "10.00", domain.TransactionCompleted},
		{"tx-2", "alice", "carol", "20.00", domain.TransactionEscrowed},
		{"tx-3", "bob", "alice", "5.00", domain.TransactionCompleted},
		{"tx-4", "carol", "alice", "7.50", domain.TransactionFailed},
		{"tx-5", "alice", "bob", "1.25", domain.TransactionPending},
	}
	for i, a := range amounts {
		store.txs[a.id] = domain.Transaction{
			ID:          a.id,
			SenderID:    a.sender,
			RecipientID: a.receiver,
			Amount:      decimal.RequireFromString(a.amount),
			Currency:    "USD",
			Status:      a.status,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
	}
}

func TestLedgerService_History(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	makeSvc := func() (*LedgerService, *fakeStore) {
		store := newFakeStore()
		seedLedger(store, base)
		return NewLedgerService(store), store
	}

	t.Run("lists all directions newest first", func(t *testing.T) {
		svc, _ := makeSvc()

		txs, err := svc.History(context.Background(), "alice", domain.HistoryFilter{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(txs) != 5 {
			t.Fatalf("expected 5 transactions, got %d", len(txs))
		}
		for i := 1; i < len(txs); i++ {
			if txs[i].CreatedAt.After(txs[i-1].CreatedAt) {
				t.Fatalf("expected newest-first ordering")
			}
		}
	})

	t.Run("filters by direction", func(t *testing.T) {
		svc, _ := makeSvc()

		sent, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Direction: domain.DirectionSent})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sent) != 3 {
			t.Fatalf("expected 3 sent, got %d", len(sent))
		}

		received, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Direction: domain.DirectionReceived})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(received) != 2 {
			t.Fatalf("expected 2 received, got %d", len(received))
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		svc, _ := makeSvc()

		txs, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Status: domain.TransactionCompleted})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("expected 2 completed, got %d", len(txs))
		}
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		svc, _ := makeSvc()

		txs, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(txs))
		}
		if txs[0].ID != "tx-4" {
			t.Fatalf("expected tx-4 first after offset, got %s", txs[0].ID)
		}
	})

	t.Run("rejects invalid filters", func(t *testing.T) {
		svc, _ := makeSvc()

		if _, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Direction: "sideways"}); !errors.Is(err, domain.ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
		if _, err := svc.History(context.Background(), "alice", domain.HistoryFilter{Status: "limbo"}); !errors.Is(err, domain.ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
		if _, err := svc.History(context.Background(), "", domain.HistoryFilter{}); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestLedgerService_AccountActivity(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedLedger(store, base)
	svc := NewLedgerService(store)

	activity, err := svc.AccountActivity(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Only completed transfers count toward the totals.
	if got := activity.SentTotal.StringFixed(2); got != "10.00" {
		t.Fatalf("expected sent total 10.00, got %s", got)
	}
	if activity.SentCount != 1 {
		t.Fatalf("expected sent count 1, got %d", activity.SentCount)
	}
	if got := activity.ReceivedTotal.StringFixed(2); got != "5.00" {
		t.Fatalf("expected received total 5.00, got %s", got)
	}
	if activity.ReceivedCount != 1 {
		t.Fatalf("expected received count 1, got %d", activity.ReceivedCount)
	}
	if len(activity.Recent) == 0 {
		t.Fatalf("expected recent transactions")
	}

	if _, err := svc.AccountActivity(context.Background(), ""); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestLedgerService_UpdateStatus(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	makeSvc := func() (*LedgerService, *fakeStore) {
		store := newFakeStore()
		seedLedger(store, base)
		return NewLedgerService(store), store
	}

	t.Run("cancels a pending transaction", func(t *testing.T) {
		svc, store := makeSvc()

		err := svc.UpdateStatus(context.Background(), "tx-5", domain.TransactionPending, domain.TransactionCancelled)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := store.txs["tx-5"].Status; got != domain.TransactionCancelled {
			t.Fatalf("expected cancelled, got %s", got)
		}
	})

	t.Run("rejects transitions out of a terminal state", func(t *testing.T) {
		svc, _ := makeSvc()

		err := svc.UpdateStatus(context.Background(), "tx-1", domain.TransactionCompleted, domain.TransactionPending)
		if !errors.Is(err, domain.ErrInvalidTransactionState) {
			t.Fatalf("expected ErrInvalidTransactionState, got %v", err)
		}
	})

	t.Run("rejects a stale precondition", func(t *testing.T) {
		svc, _ := makeSvc()

		err := svc.UpdateStatus(context.Background(), "tx-2", domain.TransactionPending, domain.TransactionCancelled)
		if !errors.Is(err, domain.ErrInvalidTransactionState) {
			t.Fatalf("expected ErrInvalidTransactionState, got %v", err)
		}
	})

	t.Run("rejects unknown statuses and no-ops", func(t *testing.T) {
		svc, _ := makeSvc()

		if err := svc.UpdateStatus(context.Background(), "tx-5", "limbo", domain.TransactionCancelled); !errors.Is(err, domain.ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
		if err := svc.UpdateStatus(context.Background(), "tx-5", domain.TransactionPending, domain.TransactionPending); !errors.Is(err, domain.ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
	})
}

func TestLedgerService_GetTransaction(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedLedger(store, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	svc := NewLedgerService(store)

	tx, err := svc.GetTransaction(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.ID != "tx-1" {
		t.Fatalf("expected tx-1, got %s", tx.ID)
	}

	if _, err := svc.GetTransaction(context.Background(), "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if _, err := svc.GetTransaction(context.Background(), ""); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
