package fees

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/platform/audit"
)

// ResolveRequest identifies the priced entity and the parties whose
// schedules apply.
type ResolveRequest struct {
	EncounterID string
	PayerID     string
	ProviderID  string
	CodeSystem  string
	Code        string
	Modifiers   []string
}

// Resolution is the priced outcome plus the tier that satisfied it.
type Resolution struct {
	Price  Cents
	Source RateSource
}

// Resolver walks the rate fallback chain: contracted rate, then the
// provider's chargemaster, then the published reference rate, then a fixed
// default. The default tier cannot miss, so Resolve never fails outright;
// schedule lookups that error or time out are treated as misses.
type Resolver struct {
	repo          Repository
	defaultAmount Cents
	tierTimeout   time.Duration
	auditor       *audit.Emitter
	logger        zerolog.Logger
}

func NewResolver(repo Repository, defaultAmount Cents, tierTimeout time.Duration, auditor *audit.Emitter, logger zerolog.Logger) *Resolver {
	return &Resolver{
		repo:          repo,
		defaultAmount: defaultAmount,
		tierTimeout:   tierTimeout,
		auditor:       auditor,
		logger:        logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) Resolution {
	mods := NormalizeModifiers(req.Modifiers)

	tiers := []struct {
		source RateSource
		lookup func(ctx context.Context) (Cents, error)
	}{
		{RateContracted, func(ctx context.Context) (Cents, error) {
			return r.repo.LookupContracted(ctx, req.PayerID, req.ProviderID, req.CodeSystem, req.Code, mods)
		}},
		{RateChargemaster, func(ctx context.Context) (Cents, error) {
			return r.repo.LookupChargemaster(ctx, req.ProviderID, req.CodeSystem, req.Code, mods)
		}},
		{RateReference, func(ctx context.Context) (Cents, error) {
			return r.repo.LookupReference(ctx, req.CodeSystem, req.Code, mods)
		}},
	}

	for _, tier := range tiers {
		price, err := r.tryTier(ctx, tier.lookup)
		if err == nil {
			if tier.source != RateContracted && r.auditor != nil {
				r.auditor.FeeFallback(req.EncounterID, req.Code, string(tier.source))
			}
			return Resolution{Price: price, Source: tier.source}
		}
		if !errors.Is(err, ErrFeeNotFound) {
			r.logger.Warn().Err(err).
				Str("tier", string(tier.source)).
				Str("code", req.Code).
				Msg("fee tier lookup failed, falling through")
		}
	}

	if r.auditor != nil {
		r.auditor.FeeFallback(req.EncounterID, req.Code, string(RateDefault))
	}
	return Resolution{Price: r.defaultAmount, Source: RateDefault}
}

func (r *Resolver) tryTier(ctx context.Context, lookup func(ctx context.Context) (Cents, error)) (Cents, error) {
	if r.tierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.tierTimeout)
		defer cancel()
	}
	return lookup(ctx)
}
