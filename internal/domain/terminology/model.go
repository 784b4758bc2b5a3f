package terminology

// CPTCode represents a CPT procedure code.
type CPTCode struct {
	Code        string `db:"code" json:"code"`
	Display     string `db:"display" json:"display"`
	Category    string `db:"category" json:"category,omitempty"`
	Subcategory string `db:"subcategory" json:"subcategory,omitempty"`
	SystemURI   string `db:"system_uri" json:"system_uri"`
	Active      bool   `db:"active" json:"active"`
}

// ICD10Code represents an ICD-10-CM diagnosis code. Code keeps the decimal
// form (e.g. Z59.0); the wire layer strips the point when serializing.
type ICD10Code struct {
	Code      string `db:"code" json:"code"`
	Display   string `db:"display" json:"display"`
	Category  string `db:"category" json:"category,omitempty"`
	Chapter   string `db:"chapter" json:"chapter,omitempty"`
	SystemURI string `db:"system_uri" json:"system_uri"`
	Active    bool   `db:"active" json:"active"`
}

// HCPCSCode represents a HCPCS Level II supply or service code.
type HCPCSCode struct {
	Code      string `db:"code" json:"code"`
	Display   string `db:"display" json:"display"`
	Category  string `db:"category" json:"category,omitempty"`
	SystemURI string `db:"system_uri" json:"system_uri"`
	Active    bool   `db:"active" json:"active"`
}

// Modifier represents a CPT/HCPCS pricing or informational modifier.
type Modifier struct {
	Code        string `db:"code" json:"code"`
	Display     string `db:"display" json:"display"`
	Level       string `db:"level" json:"level,omitempty"`
	PriceImpact bool   `db:"price_impact" json:"price_impact"`
	Active      bool   `db:"active" json:"active"`
}

// SearchResult is a generic terminology search result used by the service layer.
type SearchResult struct {
	Code      string `json:"code"`
	Display   string `json:"display"`
	SystemURI string `json:"system"`
}

// CodeSystemURI constants for the systems this service knows about.
const (
	SystemCPT   = "http://www.ama-assn.org/go/cpt"
	SystemICD10 = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemHCPCS = "https://www.cms.gov/medicare/coding/hcpcsreleasecodesets"
)
