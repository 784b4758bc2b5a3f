package fees

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeKey struct {
	kind ScheduleKind
	code string
	mods ModifierKey
}

type fakeRepo struct {
	prices map[fakeKey]Cents
	errs   map[ScheduleKind]error
}

func (f *fakeRepo) get(kind ScheduleKind, code string, mods ModifierKey) (Cents, error) {
	if err := f.errs[kind]; err != nil {
		return 0, err
	}
	if p, ok := f.prices[fakeKey{kind, code, mods}]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %s %s", ErrFeeNotFound, kind, code)
}

func (f *fakeRepo) LookupContracted(_ context.Context, _, _, _, code string, mods ModifierKey) (Cents, error) {
	return f.get(KindContracted, code, mods)
}

func (f *fakeRepo) LookupChargemaster(_ context.Context, _, _, code string, mods ModifierKey) (Cents, error) {
	return f.get(KindChargemaster, code, mods)
}

func (f *fakeRepo) LookupReference(_ context.Context, _, code string, mods ModifierKey) (Cents, error) {
	return f.get(KindReference, code, mods)
}

func newResolver(repo Repository) *Resolver {
	return NewResolver(repo, 7500, time.Second, nil, zerolog.Nop())
}

func TestResolve_ContractedWins(t *testing.T) {
	repo := &fakeRepo{prices: map[fakeKey]Cents{
		{KindContracted, "99213", ModifierKey{}}:   8500,
		{KindChargemaster, "99213", ModifierKey{}}: 12000,
	}}
	res := newResolver(repo).Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213"})
	if res.Price != 8500 || res.Source != RateContracted {
		t.Errorf("got %d from %s, want 8500 from contracted", res.Price, res.Source)
	}
}

func TestResolve_FallsThroughChain(t *testing.T) {
	repo := &fakeRepo{prices: map[fakeKey]Cents{
		{KindReference, "99213", ModifierKey{}}: 9200,
	}}
	res := newResolver(repo).Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213"})
	if res.Price != 9200 || res.Source != RateReference {
		t.Errorf("got %d from %s, want 9200 from reference", res.Price, res.Source)
	}
}

func TestResolve_DefaultNeverMisses(t *testing.T) {
	repo := &fakeRepo{prices: map[fakeKey]Cents{}}
	res := newResolver(repo).Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "00000"})
	if res.Price != 7500 || res.Source != RateDefault {
		t.Errorf("got %d from %s, want default 7500", res.Price, res.Source)
	}
}

func TestResolve_TierErrorTreatedAsMiss(t *testing.T) {
	repo := &fakeRepo{
		prices: map[fakeKey]Cents{
			{KindChargemaster, "99213", ModifierKey{}}: 12000,
		},
		errs: map[ScheduleKind]error{KindContracted: context.DeadlineExceeded},
	}
	res := newResolver(repo).Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213"})
	if res.Price != 12000 || res.Source != RateChargemaster {
		t.Errorf("got %d from %s, want chargemaster after contracted error", res.Price, res.Source)
	}
}

func TestResolve_ModifierDistinctPricing(t *testing.T) {
	// 99213 with modifier 25 is a different priced entity from bare 99213.
	repo := &fakeRepo{prices: map[fakeKey]Cents{
		{KindContracted, "99213", ModifierKey{}}:           8500,
		{KindContracted, "99213", ModifierKey{"25"}}:       9900,
		{KindContracted, "99213", ModifierKey{"25", "95"}}: 10400,
	}}
	r := newResolver(repo)

	bare := r.Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213"})
	with25 := r.Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213", Modifiers: []string{"25"}})
	both := r.Resolve(context.Background(), ResolveRequest{CodeSystem: "CPT", Code: "99213", Modifiers: []string{"95", "25"}})

	if bare.Price != 8500 || with25.Price != 9900 || both.Price != 10400 {
		t.Errorf("prices = %d, %d, %d; want 8500, 9900, 10400", bare.Price, with25.Price, both.Price)
	}
}

func TestNormalizeModifiers(t *testing.T) {
	key := NormalizeModifiers([]string{" 95", "25", "95", ""})
	want := ModifierKey{"25", "95"}
	if key != want {
		t.Errorf("key = %v, want %v", key, want)
	}
}

func TestCentsDollars(t *testing.T) {
	cases := []struct {
		in   Cents
		want string
	}{
		{8500, "85.00"},
		{7, "0.07"},
		{123456, "1234.56"},
		{0, "0.00"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := tc.in.Dollars(); got != tc.want {
			t.Errorf("Dollars(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
