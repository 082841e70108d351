package policies

import (
	"context"

	"stayhub/internal/domain/shared/money"
)

// PaymentsPort is the external charge provider. Charge moves the amount from
// the tenant's payment source to the host's wallet. The workflow calls it at
// most once per reservation attempt and never retries; a failure aborts the
// attempt before any persistent state changes.
type PaymentsPort interface {
	Charge(ctx context.Context, amount money.Money, sourceToken, payeeToken string) error
}
