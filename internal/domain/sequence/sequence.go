package sequence

import (
	"context"
	"errors"
	"fmt"
)

// Well-known sequence names. Each X12 envelope level draws from its own
// counter so interchange, group and transaction control numbers advance
// independently.
const (
	Interchange = "isa_control"
	Group       = "gs_control"
	Transaction = "st_control"
)

// Ceilings for the fixed-width control number fields. ISA13 is a 9-digit
// field and ST02 is 4 digits minimum; exceeding the width would corrupt the
// fixed-width interchange header, so allocation fails instead of wrapping.
const (
	MaxInterchange = 999999999
	MaxTransaction = 9999
)

var (
	ErrUnknownSequence   = errors.New("unknown sequence")
	ErrSequenceExhausted = errors.New("sequence exhausted")
)

// Sequencer hands out monotonically increasing control numbers. Two
// concurrent calls for the same name never observe the same value.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

// ceiling returns the maximum value a named sequence may reach, or 0 when
// the sequence is unbounded.
func ceiling(name string) int64 {
	switch name {
	case Interchange, Group:
		return MaxInterchange
	case Transaction:
		return MaxTransaction
	}
	return 0
}

// FormatInterchange renders a control number as the 9-digit zero-padded
// string the ISA13/IEA02 fields require.
func FormatInterchange(n int64) string {
	return fmt.Sprintf("%09d", n)
}

// FormatGroup renders a group control number. GS06 has no fixed width but
// must match GE02 exactly.
func FormatGroup(n int64) string {
	return fmt.Sprintf("%d", n)
}

// FormatTransaction renders a transaction set control number zero-padded to
// the 4-character minimum of ST02.
func FormatTransaction(n int64) string {
	return fmt.Sprintf("%04d", n)
}
