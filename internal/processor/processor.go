package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// Receipt is a rail's acknowledgement of a completed money movement.
type Receipt struct {
	ExternalID string
}

// Processor is the capability seam for one settlement rail. Implementations
// are stateless per call and report failures as errors wrapping
// domain.ErrProcessorFailure instead of panicking, so callers can react
// deterministically.
type Processor interface {
	Validate(ctx context.Context, accountRef string) error
	Withdraw(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error)
	Deposit(ctx context.Context, accountRef string, amount decimal.Decimal, currency string) (Receipt, error)
	EstimateFees(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	EstimateProcessingTime(ctx context.Context) (time.Duration, error)
}

// Registry maps payment-method types to rail implementations. It is built
// once at startup and never mutated afterwards.
type Registry struct {
	rails map[domain.MethodType]Processor
}

// NewRegistry builds the default registry with the built-in simulated rails.
func NewRegistry() *Registry {
	return NewRegistryWith(map[domain.MethodType]Processor{
		domain.MethodCrypto: NewCryptoProcessor(),
		domain.MethodBank:   NewBankProcessor(),
		domain.MethodOther:  NewGenericProcessor(),
	})
}

// NewRegistryWith builds a registry from an explicit rail mapping.
func NewRegistryWith(rails map[domain.MethodType]Processor) *Registry {
	copied := make(map[domain.MethodType]Processor, len(rails))
	for t, p := range rails {
		copied[t] = p
	}
	return &Registry{rails: copied}
}

// ForType returns the rail registered for the method type.
func (r *Registry) ForType(t domain.MethodType) (Processor, error) {
	p, ok := r.rails[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMethodType, t)
	}
	return p, nil
}

// declinedPrefix lets callers provoke a deterministic transfer failure from
// the simulated rails, mirroring how the original rails were stubbed.
const declinedPrefix = "declined:"

func checkContext(ctx context.Context, rail string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrProcessorFailure, rail, err)
	}
	return nil
}

func checkAccount(rail, accountRef string) error {
	if strings.TrimSpace(accountRef) == "" {
		return fmt.Errorf("%w: %s: empty account reference", domain.ErrProcessorFailure, rail)
	}
	return nil
}

func checkTransfer(rail, op, accountRef string) error {
	if err := checkAccount(rail, accountRef); err != nil {
		return err
	}
	if strings.HasPrefix(accountRef, declinedPrefix) {
		return fmt.Errorf("%w: %s: %s declined by rail", domain.ErrProcessorFailure, rail, op)
	}
	return nil
}

func checkAmount(rail string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s rail", domain.ErrInvalidAmount, rail)
	}
	return nil
}
