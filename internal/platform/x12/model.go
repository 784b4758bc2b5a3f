package x12

import (
	"time"

	"github.com/medbill/medbill/internal/domain/fees"
)

// Envelope is the trading-partner context for an interchange: who is
// sending, who is receiving, and whether this is production traffic.
type Envelope struct {
	SenderID     string
	ReceiverID   string
	SenderName   string
	ReceiverName string
	Production   bool
}

// Wire-level sentinels for required fields the source data could not fill.
// They keep the interchange structurally valid while flagging the claim for
// manual correction downstream.
const (
	FallbackOrgName = "UNKNOWN PROVIDER"
	FallbackNPI     = "0000000000"
	FallbackDOB     = "19000101"
)

// Provider is the billing-provider loop input.
type Provider struct {
	OrgName  string
	NPI      string
	TaxID    string
	Taxonomy string
	Address1 string
	City     string
	State    string
	Zip      string
}

// Subscriber is the patient/subscriber loop input.
type Subscriber struct {
	LastName    string
	FirstName   string
	MemberID    string
	GroupNumber string
	BirthDate   *time.Time
	Gender      string
	Address1    string
	City        string
	State       string
	Zip         string
}

// ServiceLine is one LX/SV1 pair.
type ServiceLine struct {
	Number            int
	ProcedureCode     string
	Modifiers         []string
	Charge            fees.Cents
	Units             int
	DiagnosisPointers []int
}

// Claim is the full serialization input for one 837P transaction.
type Claim struct {
	ClaimID        string
	TotalCharge    fees.Cents
	ServiceDate    time.Time
	PlaceOfService string
	FrequencyCode  string

	Provider   Provider
	Subscriber Subscriber

	// Diagnoses in pointer order, principal first, decimal form.
	Diagnoses []string

	Lines []ServiceLine
}

// ControlNumbers are the envelope identifiers drawn for one interchange.
type ControlNumbers struct {
	ISA int64 `json:"isa"`
	GS  int64 `json:"gs"`
	ST  int64 `json:"st"`
}

// Result is the serialized interchange plus the audit counts persisted with
// the claim.
type Result struct {
	Text           string
	ControlNumbers ControlNumbers
	SegmentCount   int // ST through SE inclusive, the SE01 value
	LineCount      int
}
