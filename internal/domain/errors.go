package domain

import "errors"

// Invalid input.
var (
	ErrInvalidID               = errors.New("invalid id")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidCurrency         = errors.New("invalid currency")
	ErrSameParties             = errors.New("sender and recipient must differ")
	ErrInvalidRetention        = errors.New("retention window must be positive")
	ErrInvalidFilter           = errors.New("invalid history filter")
	ErrRecipientMethodRequired = errors.New("recipient payment method required")
	ErrUnsupportedMethodType   = errors.New("unsupported payment method type")
)

// Not found.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEscrowNotFound      = errors.New("escrow record not found")
	ErrMethodNotFound      = errors.New("payment method not found")
)

// Invalid state.
var (
	ErrInvalidTransactionState = errors.New("invalid transaction state")
	ErrEscrowAlreadyHeld       = errors.New("funds already held for transaction")
	ErrEscrowNotHolding        = errors.New("escrow is not holding")
	ErrMethodInactive          = errors.New("payment method inactive")
	ErrMethodOwnerMismatch     = errors.New("payment method owned by another account")
)

// ErrProcessorFailure marks a withdraw, deposit or validation rejected by a
// settlement rail. Always wrapped with the rail and operation detail.
var ErrProcessorFailure = errors.New("processor failure")
