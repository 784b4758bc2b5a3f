package terminology

import (
	"context"
	"fmt"
)

// Service provides terminology lookup operations for the coding pipeline
// and the reference API.
type Service struct {
	cpt       CPTRepository
	icd10     ICD10Repository
	hcpcs     HCPCSRepository
	modifiers ModifierRepository
}

// NewService creates a new terminology service.
func NewService(cpt CPTRepository, icd10 ICD10Repository, hcpcs HCPCSRepository, modifiers ModifierRepository) *Service {
	return &Service{cpt: cpt, icd10: icd10, hcpcs: hcpcs, modifiers: modifiers}
}

// SearchCPT searches CPT codes by query text.
func (s *Service) SearchCPT(ctx context.Context, query string, limit int) ([]*CPTCode, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	return s.cpt.Search(ctx, query, limit)
}

// LookupCPT looks up a single active CPT code.
func (s *Service) LookupCPT(ctx context.Context, code string) (*CPTCode, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.cpt.GetByCode(ctx, code)
}

// SearchICD10 searches ICD-10-CM codes by query text.
func (s *Service) SearchICD10(ctx context.Context, query string, limit int) ([]*ICD10Code, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	return s.icd10.Search(ctx, query, limit)
}

// LookupICD10 looks up a single active ICD-10 code.
func (s *Service) LookupICD10(ctx context.Context, code string) (*ICD10Code, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.icd10.GetByCode(ctx, code)
}

// SearchHCPCS searches HCPCS Level II codes by query text.
func (s *Service) SearchHCPCS(ctx context.Context, query string, limit int) ([]*HCPCSCode, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	return s.hcpcs.Search(ctx, query, limit)
}

// LookupHCPCS looks up a single active HCPCS code.
func (s *Service) LookupHCPCS(ctx context.Context, code string) (*HCPCSCode, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.hcpcs.GetByCode(ctx, code)
}

// LookupModifier looks up a single active modifier.
func (s *Service) LookupModifier(ctx context.Context, code string) (*Modifier, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.modifiers.GetByCode(ctx, code)
}

// ListModifiers returns all active modifiers.
func (s *Service) ListModifiers(ctx context.Context) ([]*Modifier, error) {
	return s.modifiers.List(ctx)
}
