package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const genericRail = "generic"

// GenericProcessor covers payment methods that fit neither rail. It charges a
// conservative flat fee.
type GenericProcessor struct {
	flatFee decimal.Decimal
}

func NewGenericProcessor() *GenericProcessor {
	return &GenericProcessor{flatFee: decimal.RequireFromString("1.00")}
}

func (p *GenericProcessor) Validate(ctx context.Context, accountRef string) error {
	if err := checkContext(ctx, genericRail); err != nil {
		return err
	}
	return checkAccount(genericRail, accountRef)
}

func (p *GenericProcessor) Withdraw(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "withdraw", accountRef, amount)
}

func (p *GenericProcessor) Deposit(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "deposit", accountRef, amount)
}

func (p *GenericProcessor) transfer(ctx context.Context, op, accountRef string, amount decimal.Decimal) (Receipt, error) {
	if err := checkContext(ctx, genericRail); err != nil {
		return Receipt{}, err
	}
	if err := checkAmount(genericRail, amount); err != nil {
		return Receipt{}, err
	}
	if err := checkTransfer(genericRail, op, accountRef); err != nil {
		return Receipt{}, err
	}
	return Receipt{ExternalID: "gen-" + uuid.NewString()}, nil
}

func (p *GenericProcessor) EstimateFees(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkContext(ctx, genericRail); err != nil {
		return decimal.Zero, err
	}
	if err := checkAmount(genericRail, amount); err != nil {
		return decimal.Zero, err
	}
	return p.flatFee, nil
}

func (p *GenericProcessor) EstimateProcessingTime(ctx context.Context) (time.Duration, error) {
	if err := checkContext(ctx, genericRail); err != nil {
		return 0, err
	}
	return time.Hour, nil
}
