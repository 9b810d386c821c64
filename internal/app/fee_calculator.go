package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
	"github.com/Enochthedev/Oink-bot-sub001/internal/processor"
)

const (
	defaultEscrowFeeRate    = "0.01"
	defaultProcessingFeeStr = "0.50"
)

// FeeCalculator derives the fee breakdown attached to every transaction: the
// rail's processing fee plus a fixed-rate escrow fee.
type FeeCalculator struct {
	rails      *processor.Registry
	escrowRate decimal.Decimal
	fallback   decimal.Decimal
	logger     *slog.Logger
}

func NewFeeCalculator(rails *processor.Registry, logger *slog.Logger, opts ...FeeCalculatorOption) *FeeCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &FeeCalculator{
		rails:      rails,
		escrowRate: decimal.RequireFromString(defaultEscrowFeeRate),
		fallback:   decimal.RequireFromString(defaultProcessingFeeStr),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type FeeCalculatorOption func(*FeeCalculator)

// WithEscrowFeeRate overrides the escrow fee rate (fraction of the amount).
func WithEscrowFeeRate(rate decimal.Decimal) FeeCalculatorOption {
	return func(c *FeeCalculator) {
		if rate.IsPositive() {
			c.escrowRate = rate
		}
	}
}

// WithDefaultProcessingFee overrides the fallback fee charged when a rail
// cannot quote one.
func WithDefaultProcessingFee(fee decimal.Decimal) FeeCalculatorOption {
	return func(c *FeeCalculator) {
		if fee.IsPositive() {
			c.fallback = fee
		}
	}
}

// Calculate quotes fees for the amount on the given rail. A rail failure
// falls back to the default processing fee so fee computation never blocks a
// payment.
func (c *FeeCalculator) Calculate(ctx context.Context, amount decimal.Decimal, methodType domain.MethodType) (domain.FeeBreakdown, error) {
	if !amount.IsPositive() {
		return domain.FeeBreakdown{}, domain.ErrInvalidAmount
	}

	rail, err := c.rails.ForType(methodType)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}

	processing := c.fallback
	if quoted, err := rail.EstimateFees(ctx, amount); err != nil {
		c.logger.Warn("rail fee estimate failed, using default",
			"method_type", methodType, "error", err)
	} else {
		processing = quoted
	}

	processing = processing.Round(2)
	escrowFee := amount.Mul(c.escrowRate).Round(2)
	return domain.FeeBreakdown{
		Processing: processing,
		Escrow:     escrowFee,
		Total:      processing.Add(escrowFee).Round(2),
	}, nil
}
