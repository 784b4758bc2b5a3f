package sequence

import (
	"context"
	"fmt"
	"sync"
)

// MemorySequencer is a mutex-guarded in-process Sequencer for tests and
// single-node development runs. Values reset on restart.
type MemorySequencer struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{values: map[string]int64{
		Interchange: 0,
		Group:       0,
		Transaction: 0,
	}}
}

func (s *MemorySequencer) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSequence, name)
	}
	v++
	if max := ceiling(name); max > 0 && v > max {
		return 0, fmt.Errorf("%w: %s at %d", ErrSequenceExhausted, name, v)
	}
	s.values[name] = v
	return v, nil
}

// Set positions a named sequence at an explicit value. Used by tests to
// exercise ceiling behavior.
func (s *MemorySequencer) Set(name string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}
