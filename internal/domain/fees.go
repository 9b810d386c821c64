package domain

import "github.com/shopspring/decimal"

// FeeBreakdown is the immutable fee summary attached to a transaction.
// Total always equals Processing + Escrow rounded to two decimals.
type FeeBreakdown struct {
	Processing decimal.Decimal
	Escrow     decimal.Decimal
	Total      decimal.Decimal
}
