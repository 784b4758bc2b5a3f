package coding

import (
	"sort"
	"strings"
)

// System identifies the code system a candidate belongs to.
type System string

const (
	SystemCPT   System = "CPT"
	SystemHCPCS System = "HCPCS"
	SystemICD10 System = "ICD10"
)

// Source identifies who proposed a candidate. Priority is fixed: the
// decision engine outranks AI suggestions, which outrank SDOH suggestions,
// which outrank defaults.
type Source string

const (
	SourceDecisionEngine Source = "decision_engine"
	SourceAI             Source = "ai"
	SourceSDOH           Source = "sdoh"
	SourceDefault        Source = "default"
)

var sourcePriority = map[Source]int{
	SourceDecisionEngine: 4,
	SourceAI:             3,
	SourceSDOH:           2,
	SourceDefault:        1,
}

// Priority returns the source's rank; higher wins. Unknown sources rank
// below every known one.
func (s Source) Priority() int {
	return sourcePriority[s]
}

// Category is the slot a candidate competes for during reconciliation.
type Category string

const (
	CategoryPrincipalDx Category = "principal_diagnosis"
	CategorySecondaryDx Category = "secondary_diagnosis"
	CategoryProcedure   Category = "procedure"
)

// CandidateCode is one coding proposal from one source.
type CandidateCode struct {
	System      System   `json:"system"`
	Code        string   `json:"code"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Confidence  int      `json:"confidence"`
	Source      Source   `json:"source"`
	Rationale   string   `json:"rationale,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Units       int      `json:"units,omitempty"`
}

// Key returns the candidate's identity for deduplication: the code plus its
// normalized modifier set. Modifier order does not distinguish candidates.
func (c CandidateCode) Key() string {
	if len(c.Modifiers) == 0 {
		return c.Code
	}
	mods := make([]string, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			mods = append(mods, m)
		}
	}
	sort.Strings(mods)
	return c.Code + ":" + strings.Join(mods, ":")
}

// Procedure is a reconciled procedure code with its final modifier set.
type Procedure struct {
	System    System   `json:"system"`
	Code      string   `json:"code"`
	Modifiers []string `json:"modifiers,omitempty"`
	Units     int      `json:"units"`
	Rationale string   `json:"rationale,omitempty"`
	Source    Source   `json:"source"`
}

// Diagnosis is a reconciled diagnosis code.
type Diagnosis struct {
	Code      string `json:"code"`
	Rationale string `json:"rationale,omitempty"`
	Source    Source `json:"source"`
}

// ReconciledCodeSet is the per-encounter reconciliation output: exactly one
// principal diagnosis, ordered secondary diagnoses, and at least one
// procedure.
type ReconciledCodeSet struct {
	Principal   Diagnosis   `json:"principal"`
	Secondary   []Diagnosis `json:"secondary,omitempty"`
	Procedures  []Procedure `json:"procedures"`
	ReviewFlags []string    `json:"review_flags,omitempty"`
}

// DefaultPrincipalDx is the conservative fallback diagnosis when no source
// produced one: general adult medical examination without abnormal findings.
const DefaultPrincipalDx = "Z00.00"
