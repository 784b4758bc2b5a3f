package suggest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/domain/coding"
)

// Source is an external coding-suggestion collaborator. Implementations are
// network clients; callers must tolerate slow or failing sources.
type Source interface {
	Name() string
	Suggest(ctx context.Context, encounterID string) ([]coding.CandidateCode, error)
}

// Gather collects candidates from every source, dropping sources that fail.
// A suggestion outage degrades coding quality but never blocks the claim.
func Gather(ctx context.Context, sources []Source, encounterID string, logger zerolog.Logger) []coding.CandidateCode {
	var all []coding.CandidateCode
	for _, src := range sources {
		cands, err := src.Suggest(ctx, encounterID)
		if err != nil {
			logger.Warn().Err(err).
				Str("source", src.Name()).
				Str("encounter_id", encounterID).
				Msg("suggestion source failed, continuing without it")
			continue
		}
		all = append(all, cands...)
	}
	return all
}
