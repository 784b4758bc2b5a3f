package claims

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/domain/fees"
)

// stubFeeRepo prices by bare code at the contracted tier; everything else
// falls through to the resolver's default.
type stubFeeRepo struct {
	prices map[string]fees.Cents
}

func (s *stubFeeRepo) LookupContracted(_ context.Context, _, _, _, code string, _ fees.ModifierKey) (fees.Cents, error) {
	if p, ok := s.prices[code]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %s", fees.ErrFeeNotFound, code)
}

func (s *stubFeeRepo) LookupChargemaster(_ context.Context, _, _, code string, _ fees.ModifierKey) (fees.Cents, error) {
	return 0, fmt.Errorf("%w: %s", fees.ErrFeeNotFound, code)
}

func (s *stubFeeRepo) LookupReference(_ context.Context, _, code string, _ fees.ModifierKey) (fees.Cents, error) {
	return 0, fmt.Errorf("%w: %s", fees.ErrFeeNotFound, code)
}

func testResolver(prices map[string]fees.Cents) *fees.Resolver {
	return fees.NewResolver(&stubFeeRepo{prices: prices}, 7500, time.Second, nil, zerolog.Nop())
}

func testEncounter() *encounter.Encounter {
	return &encounter.Encounter{
		ID:          "enc-1",
		PatientID:   "pat-1",
		ProviderID:  "prov-1",
		PayerID:     "payer-1",
		ServiceDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestAssemble_TotalIsExactSumOfLines(t *testing.T) {
	a := NewAssembler(testResolver(map[string]fees.Cents{
		"99214": 12500,
		"36415": 1099,
		"99490": 4233,
	}))

	set := &coding.ReconciledCodeSet{
		Principal: coding.Diagnosis{Code: "E11.9"},
		Secondary: []coding.Diagnosis{{Code: "Z59.0"}},
		Procedures: []coding.Procedure{
			{System: coding.SystemCPT, Code: "99214", Units: 1},
			{System: coding.SystemCPT, Code: "36415", Units: 1},
			{System: coding.SystemCPT, Code: "99490", Units: 1},
		},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}

	var sum fees.Cents
	for _, line := range claim.Lines {
		sum += line.Charge
	}
	if claim.TotalCharge != sum {
		t.Errorf("total = %d, sum of lines = %d", claim.TotalCharge, sum)
	}
	if claim.TotalCharge != 12500+1099+4233 {
		t.Errorf("total = %d, want exact cent sum 17832", claim.TotalCharge)
	}
}

func TestAssemble_LineNumbersContiguous(t *testing.T) {
	a := NewAssembler(testResolver(nil))
	set := &coding.ReconciledCodeSet{
		Principal: coding.Diagnosis{Code: "Z00.00"},
		Procedures: []coding.Procedure{
			{System: coding.SystemCPT, Code: "99213"},
			{System: coding.SystemCPT, Code: "36415"},
		},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}
	for i, line := range claim.Lines {
		if line.LineNumber != i+1 {
			t.Errorf("line %d has number %d", i, line.LineNumber)
		}
		if line.Units != 1 {
			t.Errorf("line %d units = %d, want default 1", i, line.Units)
		}
	}
}

func TestAssemble_PrincipalAtPositionOne(t *testing.T) {
	a := NewAssembler(testResolver(nil))
	set := &coding.ReconciledCodeSet{
		Principal: coding.Diagnosis{Code: "E11.9"},
		Secondary: []coding.Diagnosis{{Code: "I10"}, {Code: "Z59.0"}},
		Procedures: []coding.Procedure{
			{System: coding.SystemCPT, Code: "99214"},
		},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}
	if claim.Diagnoses[0].Position != 1 || !claim.Diagnoses[0].Principal || claim.Diagnoses[0].Code != "E11.9" {
		t.Errorf("diagnoses[0] = %+v, want principal E11.9 at position 1", claim.Diagnoses[0])
	}
	for _, line := range claim.Lines {
		if len(line.DiagnosisPointers) == 0 || line.DiagnosisPointers[0] != 1 {
			t.Errorf("line %d pointers = %v, want principal first", line.LineNumber, line.DiagnosisPointers)
		}
		for _, p := range line.DiagnosisPointers {
			if p < 1 || p > len(claim.Diagnoses) {
				t.Errorf("pointer %d out of range", p)
			}
		}
	}
}

func TestAssemble_PointerCapAtFour(t *testing.T) {
	a := NewAssembler(testResolver(nil))
	set := &coding.ReconciledCodeSet{
		Principal: coding.Diagnosis{Code: "E11.9"},
		Secondary: []coding.Diagnosis{
			{Code: "I10"}, {Code: "Z59.0"}, {Code: "Z59.41"}, {Code: "J06.9"},
		},
		Procedures: []coding.Procedure{{System: coding.SystemCPT, Code: "99214"}},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}
	if len(claim.Lines[0].DiagnosisPointers) != 4 {
		t.Errorf("pointers = %v, want capped at 4", claim.Lines[0].DiagnosisPointers)
	}
}

func TestAssemble_UnitsMultiplyCharge(t *testing.T) {
	a := NewAssembler(testResolver(map[string]fees.Cents{"94640": 3000}))
	set := &coding.ReconciledCodeSet{
		Principal:  coding.Diagnosis{Code: "J45.909"},
		Procedures: []coding.Procedure{{System: coding.SystemCPT, Code: "94640", Units: 3}},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}
	if claim.Lines[0].Charge != 9000 || claim.TotalCharge != 9000 {
		t.Errorf("charge = %d total = %d, want 9000", claim.Lines[0].Charge, claim.TotalCharge)
	}
}

func TestAssemble_RecordsRateSource(t *testing.T) {
	a := NewAssembler(testResolver(map[string]fees.Cents{"99214": 12500}))
	set := &coding.ReconciledCodeSet{
		Principal: coding.Diagnosis{Code: "E11.9"},
		Procedures: []coding.Procedure{
			{System: coding.SystemCPT, Code: "99214"},
			{System: coding.SystemCPT, Code: "00000"},
		},
	}

	claim, err := a.Assemble(context.Background(), testEncounter(), set)
	if err != nil {
		t.Fatal(err)
	}
	if claim.Lines[0].RateSource != fees.RateContracted {
		t.Errorf("line 1 rate source = %s", claim.Lines[0].RateSource)
	}
	if claim.Lines[1].RateSource != fees.RateDefault || claim.Lines[1].Charge != 7500 {
		t.Errorf("line 2 = %+v, want default tier at 7500", claim.Lines[1])
	}
}

func TestAssemble_RejectsEmptyProcedures(t *testing.T) {
	a := NewAssembler(testResolver(nil))
	set := &coding.ReconciledCodeSet{Principal: coding.Diagnosis{Code: "Z00.00"}}
	if _, err := a.Assemble(context.Background(), testEncounter(), set); err == nil {
		t.Error("expected error for empty procedure list")
	}
}
