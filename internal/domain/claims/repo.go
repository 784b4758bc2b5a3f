package claims

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("claim not found")

// Repository persists claims, their lines and diagnoses, and the status
// history.
type Repository interface {
	Create(ctx context.Context, claim *Claim) error
	Get(ctx context.Context, id string) (*Claim, error)
	GetX12(ctx context.Context, id string) (string, error)
	ListByEncounter(ctx context.Context, encounterID string) ([]*Claim, error)
	// List pages claims newest-first, optionally filtered by status. The
	// second return is the total matching count.
	List(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	AppendStatusEvent(ctx context.Context, event *StatusEvent) error
	StatusHistory(ctx context.Context, claimID string) ([]*StatusEvent, error)
}
