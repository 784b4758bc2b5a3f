package decision

import (
	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/fees"
)

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeManualReview Outcome = "manual_review_required"
	OutcomeDenied       Outcome = "denied"
)

// DenialReason is the fixed eligibility denial vocabulary.
type DenialReason string

const (
	DenialNone           DenialReason = ""
	DenialNotFound       DenialReason = "not-found"
	DenialInactivePolicy DenialReason = "inactive-policy"
	DenialPayerMismatch  DenialReason = "payer-mismatch"
	DenialAuthRequired   DenialReason = "auth-required"
)

// Classification is the service-type decision that routes the pipeline.
type Classification string

const (
	ClassProcedural Classification = "procedural"
	ClassEM         Classification = "evaluation_management"
	ClassUnknown    Classification = "unknown"
)

// EMMethod names which leveling method applied.
type EMMethod string

const (
	MethodTime EMMethod = "time"
	MethodMDM  EMMethod = "mdm"
)

// EMResult is the output of the E/M leveling node.
type EMResult struct {
	Method          EMMethod `json:"method"`
	Level           int      `json:"level"`
	Code            string   `json:"code"`
	MDMScore        int      `json:"mdm_score,omitempty"`
	DocScore        int      `json:"doc_score"`
	MissingElements []string `json:"missing_elements,omitempty"`
}

// LineFee is the priced outcome Node F records for one procedure.
type LineFee struct {
	Code   string          `json:"code"`
	Price  fees.Cents      `json:"price"`
	Source fees.RateSource `json:"source"`
}

// Result is the full output of a decision engine run.
type Result struct {
	Outcome        Outcome                `json:"outcome"`
	DenialReason   DenialReason           `json:"denial_reason,omitempty"`
	Classification Classification         `json:"classification"`
	ClassConfidence int                   `json:"classification_confidence"`
	EM             *EMResult              `json:"em,omitempty"`
	Candidates     []coding.CandidateCode `json:"candidates,omitempty"`
	ReviewReasons  []string               `json:"review_reasons,omitempty"`
	FastPath       string                 `json:"fast_path,omitempty"`
	Fees           []LineFee              `json:"fees,omitempty"`

	// ModifierRationales explains each selected modifier, keyed by code.
	ModifierRationales map[string]string `json:"modifier_rationales,omitempty"`
}

// Thresholds are the confidence gates. AutoApprove lets a fast-path scenario
// bypass the full pipeline; anything scoring under Review is flagged for a
// human before submission.
type Thresholds struct {
	AutoApprove int
	Review      int
}

// DefaultThresholds are the documented gate values.
var DefaultThresholds = Thresholds{AutoApprove: 90, Review: 70}
