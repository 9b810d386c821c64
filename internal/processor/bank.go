package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const bankRail = "bank"

// BankProcessor simulates an ACH-style bank transfer rail: cheap flat fee,
// slow settlement.
type BankProcessor struct {
	flatFee decimal.Decimal
}

func NewBankProcessor() *BankProcessor {
	return &BankProcessor{flatFee: decimal.RequireFromString("0.25")}
}

func (p *BankProcessor) Validate(ctx context.Context, accountRef string) error {
	if err := checkContext(ctx, bankRail); err != nil {
		return err
	}
	return checkAccount(bankRail, accountRef)
}

func (p *BankProcessor) Withdraw(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "withdraw", accountRef, amount)
}

func (p *BankProcessor) Deposit(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "deposit", accountRef, amount)
}

func (p *BankProcessor) transfer(ctx context.Context, op, accountRef string, amount decimal.Decimal) (Receipt, error) {
	if err := checkContext(ctx, bankRail); err != nil {
		return Receipt{}, err
	}
	if err := checkAmount(bankRail, amount); err != nil {
		return Receipt{}, err
	}
	if err := checkTransfer(bankRail, op, accountRef); err != nil {
		return Receipt{}, err
	}
	return Receipt{ExternalID: "ach-" + uuid.NewString()}, nil
}

func (p *BankProcessor) EstimateFees(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkContext(ctx, bankRail); err != nil {
		return decimal.Zero, err
	}
	if err := checkAmount(bankRail, amount); err != nil {
		return decimal.Zero, err
	}
	return p.flatFee, nil
}

func (p *BankProcessor) EstimateProcessingTime(ctx context.Context) (time.Duration, error) {
	if err := checkContext(ctx, bankRail); err != nil {
		return 0, err
	}
	return 72 * time.Hour, nil
}
