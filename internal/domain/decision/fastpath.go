package decision

import (
	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/encounter"
)

// Scenario is a pre-approved common visit pattern. When an encounter matches
// with confidence above the auto-approve gate, the scenario's default code
// set stands in for the full node pipeline. The output shape is identical to
// a full run.
type Scenario struct {
	Name       string
	Confidence int
	Matches    func(enc *encounter.Encounter) bool
	Procedure  func(enc *encounter.Encounter) coding.CandidateCode
	Diagnosis  string
}

var scenarioTable = []Scenario{
	{
		Name:       "routine office visit",
		Confidence: 92,
		Matches: func(enc *encounter.Encounter) bool {
			return enc.Type == "office_visit" &&
				!enc.NewPatient &&
				enc.Documentation.ProblemCount <= 1 &&
				len(enc.ProcedureCodes) == 0 &&
				!anyFlagSet(enc.Flags)
		},
		Procedure: func(enc *encounter.Encounter) coding.CandidateCode {
			return coding.CandidateCode{
				System:   coding.SystemCPT,
				Code:     "99213",
				Category: coding.CategoryProcedure,
			}
		},
		Diagnosis: "Z00.00",
	},
	{
		Name:       "telehealth visit",
		Confidence: 91,
		Matches: func(enc *encounter.Encounter) bool {
			return enc.Type == "telehealth" &&
				!enc.NewPatient &&
				enc.Documentation.ProblemCount <= 1 &&
				len(enc.ProcedureCodes) == 0
		},
		Procedure: func(enc *encounter.Encounter) coding.CandidateCode {
			return coding.CandidateCode{
				System:    coding.SystemCPT,
				Code:      "99213",
				Category:  coding.CategoryProcedure,
				Modifiers: []string{"95"},
			}
		},
		Diagnosis: "Z00.00",
	},
}

func anyFlagSet(f encounter.Flags) bool {
	return f.Bilateral || f.DistinctService || f.RepeatSameDay || f.RepeatOtherProv ||
		f.RepeatLab || f.SeparateEM || f.ReducedService
}

// matchScenario returns the first scenario the encounter matches whose
// confidence clears the auto-approve threshold.
func matchScenario(enc *encounter.Encounter, autoApprove int) *Scenario {
	for i := range scenarioTable {
		s := &scenarioTable[i]
		if s.Confidence > autoApprove && s.Matches(enc) {
			return s
		}
	}
	return nil
}
