package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionEscrowed  TransactionStatus = "escrowed"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionEscrowed, TransactionCompleted, TransactionFailed, TransactionCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further state transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionCompleted, TransactionFailed, TransactionCancelled:
		return true
	}
	return false
}

// ReasonFundsReturned is the failure reason recorded when escrowed funds are
// deposited back to the sender.
const ReasonFundsReturned = "Funds returned from escrow"

// Transaction is the unit of value transfer between two accounts.
type Transaction struct {
	ID                string
	SenderID          string
	RecipientID       string
	Amount            decimal.Decimal
	Currency          string
	SenderMethodID    string
	SenderMethodType  MethodType
	RecipientMethodID string // empty until a recipient method is chosen
	Fees              FeeBreakdown
	Status            TransactionStatus
	FailureReason     string // set only while Status is failed
	CreatedAt         time.Time
	CompletedAt       *time.Time // set only when Status is completed
}

// AccountActivity aggregates an account's completed transfers for display.
type AccountActivity struct {
	AccountID     string
	SentTotal     decimal.Decimal
	SentCount     int
	ReceivedTotal decimal.Decimal
	ReceivedCount int
	Recent        []Transaction
}
