package payments

import (
	"context"
	"errors"
	"sync"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrSourceRequired = errors.New("payments: payment source required")
	ErrPayeeRequired  = errors.New("payments: payee wallet required")
	ErrAmountInvalid  = errors.New("payments: amount must be positive")
)

// ChargeRecord captures one successful charge for inspection.
type ChargeRecord struct {
	Amount money.Money
	Source string
	Payee  string
}

// MemoryGateway is an in-process charge provider used by the memory runtime
// and tests. FailWith makes the next charges fail with the given error.
type MemoryGateway struct {
	mu      sync.Mutex
	charges []ChargeRecord
	failErr error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) Charge(ctx context.Context, amount money.Money, sourceToken, payeeToken string) error {
	if sourceToken == "" {
		return ErrSourceRequired
	}
	if payeeToken == "" {
		return ErrPayeeRequired
	}
	if !amount.IsPositive() {
		return ErrAmountInvalid
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	g.charges = append(g.charges, ChargeRecord{Amount: amount, Source: sourceToken, Payee: payeeToken})
	return nil
}

// FailWith programs subsequent charges to fail; pass nil to restore success.
func (g *MemoryGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = err
}

// Charges returns a snapshot of successful charges.
func (g *MemoryGateway) Charges() []ChargeRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ChargeRecord(nil), g.charges...)
}

var _ policies.PaymentsPort = (*MemoryGateway)(nil)
