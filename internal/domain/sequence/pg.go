package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbill/medbill/internal/platform/db"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSequencer allocates control numbers from the control_sequences table.
// The increment happens in a single UPDATE ... RETURNING statement, so the
// row lock makes concurrent allocations serialize without ever handing out
// a duplicate.
type PGSequencer struct {
	pool *pgxpool.Pool
}

func NewPGSequencer(pool *pgxpool.Pool) *PGSequencer {
	return &PGSequencer{pool: pool}
}

func (s *PGSequencer) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *PGSequencer) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.conn(ctx).QueryRow(ctx,
		`UPDATE control_sequences SET value = value + 1, updated_at = now()
		 WHERE name = $1 RETURNING value`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownSequence, name)
		}
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	if max := ceiling(name); max > 0 && value > max {
		return 0, fmt.Errorf("%w: %s at %d", ErrSequenceExhausted, name, value)
	}
	return value, nil
}
