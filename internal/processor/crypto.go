package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const cryptoRail = "crypto"

// CryptoProcessor simulates an on-chain settlement rail. Real settlement
// integration plugs in behind the Processor interface.
type CryptoProcessor struct {
	feeRate decimal.Decimal
	minFee  decimal.Decimal
}

func NewCryptoProcessor() *CryptoProcessor {
	return &CryptoProcessor{
		feeRate: decimal.RequireFromString("0.005"),
		minFee:  decimal.RequireFromString("0.50"),
	}
}

func (p *CryptoProcessor) Validate(ctx context.Context, accountRef string) error {
	if err := checkContext(ctx, cryptoRail); err != nil {
		return err
	}
	return checkAccount(cryptoRail, accountRef)
}

func (p *CryptoProcessor) Withdraw(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "withdraw", accountRef, amount)
}

func (p *CryptoProcessor) Deposit(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error) {
	return p.transfer(ctx, "deposit", accountRef, amount)
}

func (p *CryptoProcessor) transfer(ctx context.Context, op, accountRef string, amount decimal.Decimal) (Receipt, error) {
	if err := checkContext(ctx, cryptoRail); err != nil {
		return Receipt{}, err
	}
	if err := checkAmount(cryptoRail, amount); err != nil {
		return Receipt{}, err
	}
	if err := checkTransfer(cryptoRail, op, accountRef); err != nil {
		return Receipt{}, err
	}
	return Receipt{ExternalID: "crypto-" + uuid.NewString()}, nil
}

func (p *CryptoProcessor) EstimateFees(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkContext(ctx, cryptoRail); err != nil {
		return decimal.Zero, err
	}
	if err := checkAmount(cryptoRail, amount); err != nil {
		return decimal.Zero, err
	}
	fee := amount.Mul(p.feeRate).Round(2)
	if fee.LessThan(p.minFee) {
		fee = p.minFee
	}
	return fee, nil
}

func (p *CryptoProcessor) EstimateProcessingTime(ctx context.Context) (time.Duration, error) {
	if err := checkContext(ctx, cryptoRail); err != nil {
		return 0, err
	}
	return 10 * time.Minute, nil
}
