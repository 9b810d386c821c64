package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowHolding  EscrowStatus = "holding"
	EscrowReleased EscrowStatus = "released"
	EscrowReturned EscrowStatus = "returned"
)

// EscrowRecord tracks custody of withdrawn funds for a single transaction.
// At most one record exists per transaction; it moves exactly once from
// holding to released or returned.
type EscrowRecord struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	MethodType    MethodType
	MethodDetails string // sender rail account captured at hold, used for returns
	ExternalTxID  string // rail receipt for the withdrawal
	Status        EscrowStatus
	CreatedAt     time.Time
	ReleaseAt     time.Time // deadline while holding, actual settle time afterwards
}

// Settled reports whether the record reached a terminal state.
func (r EscrowRecord) Settled() bool {
	return r.Status != EscrowHolding
}
