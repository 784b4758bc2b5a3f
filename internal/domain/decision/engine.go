package decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/domain/fees"
	"github.com/medbill/medbill/internal/domain/terminology"
	"github.com/medbill/medbill/internal/platform/audit"
)

// Input carries the encounter and the eligibility context the caller
// already loaded. Patient or Coverage may be nil; eligibility treats that
// as a denial, not an error.
type Input struct {
	Encounter *encounter.Encounter
	Patient   *encounter.Patient
	Coverage  *encounter.Coverage
}

// Engine runs the six-node billing decision pipeline over one encounter.
// Runs are stateless and safe to invoke concurrently for different
// encounters.
type Engine struct {
	cpt        terminology.CPTRepository
	resolver   *fees.Resolver
	thresholds Thresholds
	auditor    *audit.Emitter
	logger     zerolog.Logger
}

func NewEngine(cpt terminology.CPTRepository, resolver *fees.Resolver, thresholds Thresholds, auditor *audit.Emitter, logger zerolog.Logger) *Engine {
	return &Engine{cpt: cpt, resolver: resolver, thresholds: thresholds, auditor: auditor, logger: logger}
}

// Evaluate runs the pipeline. A nil encounter is a caller error; everything
// else resolves to a Result, with denials and review flags encoded in the
// outcome rather than returned as errors.
func (e *Engine) Evaluate(ctx context.Context, in Input) (*Result, error) {
	enc := in.Encounter
	if enc == nil {
		return nil, fmt.Errorf("encounter is required")
	}

	res := &Result{Outcome: OutcomeCompleted}

	// Node A: eligibility.
	if reason := checkEligibility(enc, in.Patient, in.Coverage); reason != DenialNone {
		res.Outcome = OutcomeDenied
		res.DenialReason = reason
		if e.auditor != nil {
			e.auditor.Denial(enc.ID, string(reason))
		}
		return res, nil
	}

	// Node B: service classification.
	res.Classification, res.ClassConfidence = classify(enc)
	if res.Classification == ClassUnknown {
		res.ReviewReasons = append(res.ReviewReasons, "service classification unknown")
	}

	res.Candidates = append(res.Candidates, diagnosisCandidates(enc)...)

	// Fast path: a pre-approved scenario above the auto-approve gate stands
	// in for nodes C through F.
	if s := matchScenario(enc, e.thresholds.AutoApprove); s != nil {
		res.FastPath = s.Name
		proc := s.Procedure(enc)
		proc.Source = coding.SourceDecisionEngine
		proc.Confidence = s.Confidence
		proc.Rationale = "pre-approved scenario: " + s.Name
		res.Candidates = append(res.Candidates, proc)
		if len(enc.DiagnosisCodes) == 0 {
			res.Candidates = append(res.Candidates, coding.CandidateCode{
				System:     coding.SystemICD10,
				Code:       s.Diagnosis,
				Category:   coding.CategoryPrincipalDx,
				Confidence: s.Confidence,
				Source:     coding.SourceDecisionEngine,
				Rationale:  "pre-approved scenario default diagnosis",
			})
		}
		e.priceCandidates(ctx, enc, res)
		return res, nil
	}

	// Nodes C and D, routed by classification. Node E's circumstance table
	// runs first so both routes can attach the applicable modifiers.
	mods, rationales := selectModifiers(enc)
	res.ModifierRationales = rationales
	switch res.Classification {
	case ClassProcedural:
		e.lookupProcedures(ctx, enc, mods, res)
	case ClassEM:
		res.EM = levelEM(enc)
		if res.EM.DocScore < e.thresholds.Review {
			res.ReviewReasons = append(res.ReviewReasons,
				"incomplete documentation: missing "+strings.Join(res.EM.MissingElements, ", "))
		}
		res.Candidates = append(res.Candidates, coding.CandidateCode{
			System:     coding.SystemCPT,
			Code:       res.EM.Code,
			Category:   coding.CategoryProcedure,
			Confidence: res.EM.DocScore,
			Source:     coding.SourceDecisionEngine,
			Rationale:  fmt.Sprintf("E/M level %d by %s", res.EM.Level, res.EM.Method),
			Modifiers:  filterModifiers(mods, emApplicable),
		})
	default:
		// Unknown classification still produces best-effort defaults so the
		// claim is generated and routed to review.
		res.Candidates = append(res.Candidates, coding.CandidateCode{
			System:     coding.SystemCPT,
			Code:       "99213",
			Category:   coding.CategoryProcedure,
			Confidence: 50,
			Source:     coding.SourceDecisionEngine,
			Rationale:  "default visit code for unclassified encounter",
			Modifiers:  filterModifiers(mods, emApplicable),
		})
	}

	// Node F: price what the engine proposed.
	e.priceCandidates(ctx, enc, res)

	if len(res.ReviewReasons) > 0 {
		res.Outcome = OutcomeManualReview
		if e.auditor != nil {
			e.auditor.ManualReview(enc.ID, strings.Join(res.ReviewReasons, "; "))
		}
	}
	return res, nil
}

// checkEligibility is Node A. Order matters: existence, then policy state,
// then the coverage window, then authorization.
func checkEligibility(enc *encounter.Encounter, pat *encounter.Patient, cov *encounter.Coverage) DenialReason {
	if pat == nil {
		return DenialNotFound
	}
	if cov == nil || cov.PayerID != enc.PayerID {
		return DenialPayerMismatch
	}
	if !cov.InForce(enc.ServiceDate) {
		return DenialInactivePolicy
	}
	if cov.AuthRequired && enc.AuthNumber == "" {
		return DenialAuthRequired
	}
	return DenialNone
}

// classify is Node B: a first-match rule ladder.
func classify(enc *encounter.Encounter) (Classification, int) {
	switch enc.Type {
	case "surgery", "procedure", "lab", "radiology":
		return ClassProcedural, 95
	}
	if len(enc.ProcedureCodes) > 0 {
		return ClassProcedural, 90
	}
	switch enc.Type {
	case "office_visit", "telehealth", "consultation", "emergency":
		return ClassEM, 95
	}
	return ClassUnknown, 50
}

// lookupProcedures is Node C. Supplied codes are validated against the
// active CPT table; without codes the procedure description is matched
// against code long-descriptions. Unlisted-range codes force manual review.
func (e *Engine) lookupProcedures(ctx context.Context, enc *encounter.Encounter, mods []string, res *Result) {
	procMods := filterModifiers(mods, proceduralApplicable)

	addCandidate := func(code, rationale string, confidence int) {
		if isUnlisted(code) {
			res.ReviewReasons = append(res.ReviewReasons, "unlisted procedure code "+code)
		}
		res.Candidates = append(res.Candidates, coding.CandidateCode{
			System:     coding.SystemCPT,
			Code:       code,
			Category:   coding.CategoryProcedure,
			Confidence: confidence,
			Source:     coding.SourceDecisionEngine,
			Rationale:  rationale,
			Modifiers:  procMods,
		})
	}

	if len(enc.ProcedureCodes) > 0 {
		for _, code := range enc.ProcedureCodes {
			if _, err := e.cpt.GetByCode(ctx, code); err != nil {
				res.ReviewReasons = append(res.ReviewReasons, "procedure code "+code+" is not an active CPT code")
				addCandidate(code, "documented by clinician; failed active-code validation", 40)
				continue
			}
			addCandidate(code, "documented by clinician; validated against active CPT table", 90)
		}
		return
	}

	if enc.ProcedureDesc == "" {
		res.ReviewReasons = append(res.ReviewReasons, "procedural encounter with no codes or description")
		return
	}
	matches, err := e.cpt.Search(ctx, enc.ProcedureDesc, 1)
	if err != nil || len(matches) == 0 {
		res.ReviewReasons = append(res.ReviewReasons, "no CPT match for procedure description")
		return
	}
	addCandidate(matches[0].Code, "best description match: "+matches[0].Display, 65)
	res.ReviewReasons = append(res.ReviewReasons, "procedure coded from description match, verify before submission")
}

// priceCandidates is Node F: resolve a rate for each proposed procedure and
// record which tier satisfied it.
func (e *Engine) priceCandidates(ctx context.Context, enc *encounter.Encounter, res *Result) {
	if e.resolver == nil {
		return
	}
	for _, c := range res.Candidates {
		if c.Category != coding.CategoryProcedure {
			continue
		}
		r := e.resolver.Resolve(ctx, fees.ResolveRequest{
			EncounterID: enc.ID,
			PayerID:     enc.PayerID,
			ProviderID:  enc.ProviderID,
			CodeSystem:  string(c.System),
			Code:        c.Code,
			Modifiers:   c.Modifiers,
		})
		res.Fees = append(res.Fees, LineFee{Code: c.Code, Price: r.Price, Source: r.Source})
	}
}

// diagnosisCandidates proposes the clinician-recorded diagnoses, principal
// first.
func diagnosisCandidates(enc *encounter.Encounter) []coding.CandidateCode {
	var out []coding.CandidateCode
	for i, code := range enc.DiagnosisCodes {
		cat := CategoryFor(i)
		out = append(out, coding.CandidateCode{
			System:     coding.SystemICD10,
			Code:       code,
			Category:   cat,
			Confidence: 90,
			Source:     coding.SourceDecisionEngine,
			Rationale:  "recorded on encounter",
		})
	}
	return out
}

// CategoryFor maps a diagnosis list position to its reconciliation category.
func CategoryFor(position int) coding.Category {
	if position == 0 {
		return coding.CategoryPrincipalDx
	}
	return coding.CategorySecondaryDx
}

// isUnlisted reports whether a CPT code falls in the unlisted-procedure
// range, which always requires human review.
func isUnlisted(code string) bool {
	return len(code) == 5 && strings.HasSuffix(code, "99") && !isOfficeVisit(code)
}

func isOfficeVisit(code string) bool {
	return strings.HasPrefix(code, "992")
}

var emApplicable = map[string]bool{"25": true, "95": true}

var proceduralApplicable = map[string]bool{
	"50": true, "59": true, "76": true, "77": true, "91": true, "95": true,
	"XE": true, "XP": true, "XS": true, "XU": true,
}

func filterModifiers(mods []string, allowed map[string]bool) []string {
	var out []string
	for _, m := range mods {
		if allowed[m] {
			out = append(out, m)
		}
	}
	return out
}
