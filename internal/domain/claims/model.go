package claims

import (
	"time"

	"github.com/medbill/medbill/internal/domain/fees"
	"github.com/medbill/medbill/internal/platform/x12"
)

// Status is the claim lifecycle state. A claim is immutable after
// generation except for status transitions, each recorded in the history
// table.
type Status string

const (
	StatusGenerated   Status = "generated"
	StatusSubmitted   Status = "submitted"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusAppealed    Status = "appealed"
	StatusResubmitted Status = "resubmitted"
	StatusPaid        Status = "paid"
)

// validTransitions is the full lifecycle graph: generated -> submitted ->
// accepted or rejected; rejected claims may be appealed and resubmitted;
// accepted claims end at paid.
var validTransitions = map[Status][]Status{
	StatusGenerated:   {StatusSubmitted},
	StatusSubmitted:   {StatusAccepted, StatusRejected},
	StatusAccepted:    {StatusPaid},
	StatusRejected:    {StatusAppealed},
	StatusAppealed:    {StatusResubmitted},
	StatusResubmitted: {StatusAccepted, StatusRejected},
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusGenerated, StatusSubmitted, StatusAccepted, StatusRejected,
		StatusAppealed, StatusResubmitted, StatusPaid:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClaimDiagnosis is one entry of the claim's ordered diagnosis list. The
// position is the 1-based pointer target used by service lines; the
// principal diagnosis always holds position 1.
type ClaimDiagnosis struct {
	Position  int    `db:"position" json:"position"`
	Code      string `db:"code" json:"code"`
	Principal bool   `db:"principal" json:"principal"`
}

// ClaimLine is one billable service on the claim.
type ClaimLine struct {
	LineNumber        int             `db:"line_number" json:"line_number"`
	ProcedureCode     string          `db:"procedure_code" json:"procedure_code"`
	Modifiers         []string        `db:"modifiers" json:"modifiers,omitempty"`
	Charge            fees.Cents      `db:"charge_cents" json:"charge_cents"`
	Units             int             `db:"units" json:"units"`
	DiagnosisPointers []int           `db:"diagnosis_pointers" json:"diagnosis_pointers"`
	RateSource        fees.RateSource `db:"rate_source" json:"rate_source"`
}

// Claim is the persisted output of one successful pipeline run.
type Claim struct {
	ID          string     `db:"id" json:"id"`
	EncounterID string     `db:"encounter_id" json:"encounter_id"`
	PatientID   string     `db:"patient_id" json:"patient_id"`
	ProviderID  string     `db:"provider_id" json:"provider_id"`
	PayerID     string     `db:"payer_id" json:"payer_id"`
	Status      Status     `db:"status" json:"status"`
	TotalCharge fees.Cents `db:"total_charge_cents" json:"total_charge_cents"`

	Diagnoses []ClaimDiagnosis `json:"diagnoses"`
	Lines     []ClaimLine      `json:"lines"`

	ControlNumbers x12.ControlNumbers `json:"control_numbers"`
	SegmentCount   int                `db:"segment_count" json:"segment_count"`
	X12Text        string             `db:"x12_text" json:"-"`

	NeedsReview   bool     `db:"needs_review" json:"needs_review"`
	ReviewReasons []string `db:"review_reasons" json:"review_reasons,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StatusEvent is one recorded lifecycle transition.
type StatusEvent struct {
	ID        string    `db:"id" json:"id"`
	ClaimID   string    `db:"claim_id" json:"claim_id"`
	From      Status    `db:"from_status" json:"from"`
	To        Status    `db:"to_status" json:"to"`
	Actor     string    `db:"actor" json:"actor,omitempty"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
