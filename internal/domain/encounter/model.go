package encounter

import "time"

// Encounter is the clinical input to the billing pipeline. Encounters are
// created and owned by the clinical system; this subsystem only reads them.
type Encounter struct {
	ID            string    `db:"id" json:"id"`
	PatientID     string    `db:"patient_id" json:"patient_id"`
	ProviderID    string    `db:"provider_id" json:"provider_id"`
	PayerID       string    `db:"payer_id" json:"payer_id"`
	Type          string    `db:"encounter_type" json:"encounter_type"`
	ServiceDate   time.Time `db:"service_date" json:"service_date"`
	PlaceOfSvc    string    `db:"place_of_service" json:"place_of_service"`
	AuthNumber    string    `db:"auth_number" json:"auth_number,omitempty"`
	NewPatient    bool      `db:"new_patient" json:"new_patient"`

	// Documented procedures, if the clinician already coded them.
	ProcedureCodes []string `db:"procedure_codes" json:"procedure_codes,omitempty"`
	ProcedureDesc  string   `db:"procedure_desc" json:"procedure_desc,omitempty"`

	// Diagnoses the clinician recorded, principal first.
	DiagnosisCodes []string `db:"diagnosis_codes" json:"diagnosis_codes,omitempty"`

	Documentation Documentation `json:"documentation"`
	Flags         Flags         `json:"flags"`
}

// Documentation captures the E/M leveling inputs extracted from the note.
type Documentation struct {
	HasHistory        bool   `db:"has_history" json:"has_history"`
	HasExam           bool   `db:"has_exam" json:"has_exam"`
	ProblemCount      int    `db:"problem_count" json:"problem_count"`
	DataReview        string `db:"data_review" json:"data_review"`
	Risk              string `db:"risk" json:"risk"`
	TotalMinutes      int    `db:"total_minutes" json:"total_minutes"`
	CounselingMinutes int    `db:"counseling_minutes" json:"counseling_minutes"`
	Narrative         string `db:"narrative" json:"narrative,omitempty"`
}

// Flags are clinician-asserted circumstances that drive modifier selection.
type Flags struct {
	Bilateral         bool `db:"bilateral" json:"bilateral"`
	DistinctService   bool `db:"distinct_service" json:"distinct_service"`
	RepeatSameDay     bool `db:"repeat_same_day" json:"repeat_same_day"`
	RepeatOtherProv   bool `db:"repeat_other_provider" json:"repeat_other_provider"`
	RepeatLab         bool `db:"repeat_lab" json:"repeat_lab"`
	Telehealth        bool `db:"telehealth" json:"telehealth"`
	SeparateEM        bool `db:"separate_em" json:"separate_em"`
	ReducedService    bool `db:"reduced_service" json:"reduced_service"`
}

// Patient is the demographic view the claim needs. Missing fields are
// replaced with wire-level sentinels at serialization time, not here.
type Patient struct {
	ID        string     `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    string     `db:"gender" json:"gender,omitempty"`
	MemberID  string     `db:"member_id" json:"member_id,omitempty"`
	Address1  string     `db:"address1" json:"address1,omitempty"`
	City      string     `db:"city" json:"city,omitempty"`
	State     string     `db:"state" json:"state,omitempty"`
	Zip       string     `db:"zip" json:"zip,omitempty"`
}

// Provider is the billing-provider view the claim needs.
type Provider struct {
	ID       string `db:"id" json:"id"`
	OrgName  string `db:"org_name" json:"org_name"`
	NPI      string `db:"npi" json:"npi"`
	TaxID    string `db:"tax_id" json:"tax_id,omitempty"`
	Taxonomy string `db:"taxonomy" json:"taxonomy,omitempty"`
	Address1 string `db:"address1" json:"address1,omitempty"`
	City     string `db:"city" json:"city,omitempty"`
	State    string `db:"state" json:"state,omitempty"`
	Zip      string `db:"zip" json:"zip,omitempty"`
}

// Coverage is the patient's insurance policy as of the service date.
type Coverage struct {
	ID            string     `db:"id" json:"id"`
	PatientID     string     `db:"patient_id" json:"patient_id"`
	PayerID       string     `db:"payer_id" json:"payer_id"`
	PayerName     string     `db:"payer_name" json:"payer_name"`
	MemberID      string     `db:"member_id" json:"member_id"`
	GroupNumber   string     `db:"group_number" json:"group_number,omitempty"`
	Active        bool       `db:"active" json:"active"`
	EffectiveDate time.Time  `db:"effective_date" json:"effective_date"`
	TermDate      *time.Time `db:"termination_date" json:"termination_date,omitempty"`
	AuthRequired  bool       `db:"auth_required" json:"auth_required"`
}

// InForce reports whether the policy covers the given service date.
func (c *Coverage) InForce(serviceDate time.Time) bool {
	if !c.Active {
		return false
	}
	if serviceDate.Before(c.EffectiveDate) {
		return false
	}
	if c.TermDate != nil && serviceDate.After(*c.TermDate) {
		return false
	}
	return true
}
