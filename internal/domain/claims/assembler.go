package claims

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/domain/fees"
)

// Assembler turns a reconciled code set into an ordered claim: diagnosis
// list with the principal at position 1, contiguous 1-based service lines,
// and a total that is the exact sum of line charges.
type Assembler struct {
	resolver *fees.Resolver
}

func NewAssembler(resolver *fees.Resolver) *Assembler {
	return &Assembler{resolver: resolver}
}

// maxPointers is the wire format's cap on diagnosis pointers per line.
const maxPointers = 4

// Assemble builds the claim record. Fee resolution happens here, per line,
// so a CCM code appended after reconciliation prices exactly like any other
// procedure.
func (a *Assembler) Assemble(ctx context.Context, enc *encounter.Encounter, set *coding.ReconciledCodeSet) (*Claim, error) {
	if len(set.Procedures) == 0 {
		return nil, fmt.Errorf("assemble encounter %s: no procedures in reconciled set", enc.ID)
	}

	claim := &Claim{
		ID:          uuid.New().String(),
		EncounterID: enc.ID,
		PatientID:   enc.PatientID,
		ProviderID:  enc.ProviderID,
		PayerID:     enc.PayerID,
		Status:      StatusGenerated,
	}

	claim.Diagnoses = append(claim.Diagnoses, ClaimDiagnosis{
		Position:  1,
		Code:      set.Principal.Code,
		Principal: true,
	})
	for i, dx := range set.Secondary {
		claim.Diagnoses = append(claim.Diagnoses, ClaimDiagnosis{
			Position: i + 2,
			Code:     dx.Code,
		})
	}

	pointers := defaultPointers(len(claim.Diagnoses))

	for i, proc := range set.Procedures {
		units := proc.Units
		if units <= 0 {
			units = 1
		}

		res := a.resolver.Resolve(ctx, fees.ResolveRequest{
			EncounterID: enc.ID,
			PayerID:     enc.PayerID,
			ProviderID:  enc.ProviderID,
			CodeSystem:  string(proc.System),
			Code:        proc.Code,
			Modifiers:   proc.Modifiers,
		})

		line := ClaimLine{
			LineNumber:        i + 1,
			ProcedureCode:     proc.Code,
			Modifiers:         proc.Modifiers,
			Charge:            res.Price * fees.Cents(units),
			Units:             units,
			DiagnosisPointers: pointers,
			RateSource:        res.Source,
		}
		claim.Lines = append(claim.Lines, line)
		claim.TotalCharge += line.Charge
	}

	if err := validatePointers(claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// defaultPointers links a line to the claim's diagnoses in position order,
// principal first, up to the wire cap.
func defaultPointers(diagnosisCount int) []int {
	n := diagnosisCount
	if n > maxPointers {
		n = maxPointers
	}
	pointers := make([]int, n)
	for i := range pointers {
		pointers[i] = i + 1
	}
	return pointers
}

// validatePointers checks the structural invariants: contiguous 1-based
// line numbers and every pointer resolving to a diagnosis position.
func validatePointers(claim *Claim) error {
	for i, line := range claim.Lines {
		if line.LineNumber != i+1 {
			return fmt.Errorf("claim %s: line numbers not contiguous at %d", claim.ID, line.LineNumber)
		}
		if len(line.DiagnosisPointers) == 0 {
			return fmt.Errorf("claim %s line %d: no diagnosis pointers", claim.ID, line.LineNumber)
		}
		for _, p := range line.DiagnosisPointers {
			if p < 1 || p > len(claim.Diagnoses) {
				return fmt.Errorf("claim %s line %d: pointer %d out of range", claim.ID, line.LineNumber, p)
			}
		}
	}
	return nil
}
