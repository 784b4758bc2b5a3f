package terminology

import "context"

// CPTRepository provides read access to the CPT reference table.
type CPTRepository interface {
	GetByCode(ctx context.Context, code string) (*CPTCode, error)
	Search(ctx context.Context, query string, limit int) ([]*CPTCode, error)
}

// ICD10Repository provides read access to the ICD-10-CM reference table.
type ICD10Repository interface {
	GetByCode(ctx context.Context, code string) (*ICD10Code, error)
	Search(ctx context.Context, query string, limit int) ([]*ICD10Code, error)
}

// HCPCSRepository provides read access to the HCPCS reference table.
type HCPCSRepository interface {
	GetByCode(ctx context.Context, code string) (*HCPCSCode, error)
	Search(ctx context.Context, query string, limit int) ([]*HCPCSCode, error)
}

// ModifierRepository provides read access to the modifier reference table.
type ModifierRepository interface {
	GetByCode(ctx context.Context, code string) (*Modifier, error)
	List(ctx context.Context) ([]*Modifier, error)
}
