package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemorySequencer_Monotonic(t *testing.T) {
	s := NewMemorySequencer()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.Next(ctx, Interchange)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}
}

func TestMemorySequencer_IndependentCounters(t *testing.T) {
	s := NewMemorySequencer()
	ctx := context.Background()

	if _, err := s.Next(ctx, Interchange); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, Interchange); err != nil {
		t.Fatal(err)
	}
	got, err := s.Next(ctx, Transaction)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("transaction counter = %d, want 1", got)
	}
}

func TestMemorySequencer_UnknownName(t *testing.T) {
	s := NewMemorySequencer()
	if _, err := s.Next(context.Background(), "nope"); !errors.Is(err, ErrUnknownSequence) {
		t.Errorf("err = %v, want ErrUnknownSequence", err)
	}
}

func TestMemorySequencer_Exhaustion(t *testing.T) {
	s := NewMemorySequencer()
	ctx := context.Background()

	s.Set(Transaction, MaxTransaction-1)
	if got, err := s.Next(ctx, Transaction); err != nil || got != MaxTransaction {
		t.Fatalf("Next = %d, %v; want %d, nil", got, err, MaxTransaction)
	}
	if _, err := s.Next(ctx, Transaction); !errors.Is(err, ErrSequenceExhausted) {
		t.Errorf("err = %v, want ErrSequenceExhausted", err)
	}

	s.Set(Interchange, MaxInterchange)
	if _, err := s.Next(ctx, Interchange); !errors.Is(err, ErrSequenceExhausted) {
		t.Errorf("err = %v, want ErrSequenceExhausted", err)
	}
}

func TestMemorySequencer_ConcurrentUnique(t *testing.T) {
	s := NewMemorySequencer()
	ctx := context.Background()

	const workers = 20
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v, err := s.Next(ctx, Group)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if seen[v] {
					t.Errorf("duplicate control number %d", v)
				}
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("allocated %d unique values, want %d", len(seen), workers*perWorker)
	}
}

func TestFormatWidths(t *testing.T) {
	if got := FormatInterchange(42); got != "000000042" {
		t.Errorf("FormatInterchange = %q", got)
	}
	if got := FormatTransaction(7); got != "0007" {
		t.Errorf("FormatTransaction = %q", got)
	}
	if got := FormatGroup(123); got != "123" {
		t.Errorf("FormatGroup = %q", got)
	}
}
