package fees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbill/medbill/internal/platform/db"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Entries match on all four modifier slots, empty string meaning the slot is
// unused. Schedules never hold two rows with the same key, so LIMIT is not
// needed for correctness, only against misloaded data.
const entryLookup = `
	SELECT e.price_cents
	FROM fee_schedule_entries e
	JOIN fee_schedules s ON s.id = e.schedule_id
	WHERE s.kind = $1
	  AND ($2 = '' OR s.payer_id = $2)
	  AND ($3 = '' OR s.provider_id = $3)
	  AND e.code_system = $4 AND e.code = $5
	  AND e.mod1 = $6 AND e.mod2 = $7 AND e.mod3 = $8 AND e.mod4 = $9
	LIMIT 1`

func (r *repoPG) lookup(ctx context.Context, kind ScheduleKind, payerID, providerID, system, code string, mods ModifierKey) (Cents, error) {
	var price Cents
	err := r.conn(ctx).QueryRow(ctx, entryLookup,
		string(kind), payerID, providerID, system, code,
		mods[0], mods[1], mods[2], mods[3]).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s %s/%s", ErrFeeNotFound, kind, system, code)
		}
		return 0, fmt.Errorf("fee lookup %s: %w", kind, err)
	}
	return price, nil
}

func (r *repoPG) LookupContracted(ctx context.Context, payerID, providerID, system, code string, mods ModifierKey) (Cents, error) {
	return r.lookup(ctx, KindContracted, payerID, providerID, system, code, mods)
}

func (r *repoPG) LookupChargemaster(ctx context.Context, providerID, system, code string, mods ModifierKey) (Cents, error) {
	return r.lookup(ctx, KindChargemaster, "", providerID, system, code, mods)
}

func (r *repoPG) LookupReference(ctx context.Context, system, code string, mods ModifierKey) (Cents, error) {
	return r.lookup(ctx, KindReference, "", "", system, code, mods)
}
