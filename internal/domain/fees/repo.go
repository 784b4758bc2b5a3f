package fees

import (
	"context"
	"errors"
)

// ErrFeeNotFound signals a clean miss on a schedule; the resolver falls
// through to the next tier.
var ErrFeeNotFound = errors.New("fee not found")

// Repository is read access to fee schedules. Contracted schedules are
// scoped to a payer and provider pair, chargemaster schedules to a provider,
// reference schedules are global.
type Repository interface {
	LookupContracted(ctx context.Context, payerID, providerID, system, code string, mods ModifierKey) (Cents, error)
	LookupChargemaster(ctx context.Context, providerID, system, code string, mods ModifierKey) (Cents, error)
	LookupReference(ctx context.Context, system, code string, mods ModifierKey) (Cents, error)
}
