package encounter

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Repository is the read-side view of clinical data the billing pipeline
// consumes. The clinical system owns the writes.
type Repository interface {
	GetEncounter(ctx context.Context, id string) (*Encounter, error)
	GetPatient(ctx context.Context, id string) (*Patient, error)
	GetProvider(ctx context.Context, id string) (*Provider, error)
	// GetCoverage returns the patient's coverage for a payer, or ErrNotFound
	// when the patient carries no policy with that payer.
	GetCoverage(ctx context.Context, patientID, payerID string) (*Coverage, error)
}
