package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/domain/coding"
	"github.com/medbill/medbill/internal/domain/decision"
	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/platform/audit"
	"github.com/medbill/medbill/internal/platform/db"
	"github.com/medbill/medbill/internal/platform/suggest"
	"github.com/medbill/medbill/internal/platform/x12"
)

// CCM procedure codes appended when the SDOH assessment recommends a
// chronic-care-management tier.
const (
	ccmStandardCode = "99490"
	ccmComplexCode  = "99487"
)

// DeniedError surfaces an eligibility denial to the caller. No claim is
// created.
type DeniedError struct {
	Reason decision.DenialReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("eligibility denied: %s", e.Reason)
}

// Service orchestrates the pipeline: decision engine, suggestion gathering,
// reconciliation, assembly, serialization, and persistence.
type Service struct {
	repo       Repository
	clinical   encounter.Repository
	engine     *decision.Engine
	ai         suggest.Source
	sdoh       *suggest.SDOHClient
	assembler  *Assembler
	serializer *x12.Serializer
	pool       *pgxpool.Pool
	auditor    *audit.Emitter
	logger     zerolog.Logger
}

// NewService wires the pipeline. The ai source, sdoh client, pool, and
// auditor may be nil; the pipeline degrades rather than failing.
func NewService(repo Repository, clinical encounter.Repository, engine *decision.Engine,
	ai suggest.Source, sdoh *suggest.SDOHClient, assembler *Assembler,
	serializer *x12.Serializer, pool *pgxpool.Pool, auditor *audit.Emitter, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		clinical:   clinical,
		engine:     engine,
		ai:         ai,
		sdoh:       sdoh,
		assembler:  assembler,
		serializer: serializer,
		pool:       pool,
		auditor:    auditor,
		logger:     logger,
	}
}

// Generate runs the full pipeline for one encounter. It returns DeniedError
// when eligibility fails; every other condition produces a claim, flagged
// for review when confidence or validation fell short.
func (s *Service) Generate(ctx context.Context, encounterID string) (*Claim, error) {
	enc, err := s.clinical.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	patient, err := s.loadPatient(ctx, enc.PatientID)
	if err != nil {
		return nil, err
	}
	coverage, err := s.loadCoverage(ctx, enc.PatientID, enc.PayerID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Evaluate(ctx, decision.Input{Encounter: enc, Patient: patient, Coverage: coverage})
	if err != nil {
		return nil, err
	}
	if result.Outcome == decision.OutcomeDenied {
		return nil, &DeniedError{Reason: result.DenialReason}
	}

	candidates := result.Candidates
	if s.ai != nil {
		candidates = append(candidates, suggest.Gather(ctx, []suggest.Source{s.ai}, enc.ID, s.logger)...)
	}

	var assessment *suggest.Assessment
	if s.sdoh != nil {
		assessment, err = s.sdoh.Assess(ctx, enc.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("encounter_id", enc.ID).
				Msg("sdoh assessment unavailable, continuing without it")
			assessment = nil
		} else {
			candidates = append(candidates, assessment.Candidates()...)
		}
	}

	set := coding.Reconcile(candidates)
	reviewReasons := result.ReviewReasons

	if len(set.Procedures) == 0 {
		set.Procedures = append(set.Procedures, coding.Procedure{
			System:    coding.SystemCPT,
			Code:      "99213",
			Units:     1,
			Source:    coding.SourceDefault,
			Rationale: "no procedure produced by any source",
		})
		reviewReasons = append(reviewReasons, "claim generated with default procedure code")
	}

	// A CCM tier recommendation appends one more procedure; the assembler
	// prices it like any other line.
	if assessment != nil && assessment.Tier != suggest.TierNone {
		code := ccmStandardCode
		if assessment.Tier == suggest.TierComplex {
			code = ccmComplexCode
		}
		set.Procedures = append(set.Procedures, coding.Procedure{
			System:    coding.SystemCPT,
			Code:      code,
			Units:     1,
			Source:    coding.SourceSDOH,
			Rationale: fmt.Sprintf("chronic care management, %s tier (SDOH score %.1f)", assessment.Tier, assessment.Score),
		})
	}

	claim, err := s.assembler.Assemble(ctx, enc, &set)
	if err != nil {
		return nil, err
	}
	claim.NeedsReview = len(reviewReasons) > 0
	claim.ReviewReasons = reviewReasons

	wire, err := s.serializer.Serialize(ctx, s.wireClaim(claim, enc, patient, coverage, s.loadProvider(ctx, enc.ProviderID)))
	if err != nil {
		return nil, err
	}
	claim.ControlNumbers = wire.ControlNumbers
	claim.SegmentCount = wire.SegmentCount
	claim.X12Text = wire.Text

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, claim); err != nil {
			return err
		}
		return s.repo.AppendStatusEvent(ctx, &StatusEvent{
			ClaimID: claim.ID,
			To:      StatusGenerated,
			Note:    "claim generated",
		})
	})
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.ClaimGenerated(enc.ID, claim.ID)
	}
	return claim, nil
}

func (s *Service) loadPatient(ctx context.Context, id string) (*encounter.Patient, error) {
	p, err := s.clinical.GetPatient(ctx, id)
	if errors.Is(err, encounter.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *Service) loadCoverage(ctx context.Context, patientID, payerID string) (*encounter.Coverage, error) {
	c, err := s.clinical.GetCoverage(ctx, patientID, payerID)
	if errors.Is(err, encounter.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// loadProvider loads the billing provider; a missing provider is tolerated
// and resolved by the serializer's wire-level fallbacks.
func (s *Service) loadProvider(ctx context.Context, providerID string) *encounter.Provider {
	p, err := s.clinical.GetProvider(ctx, providerID)
	if err != nil {
		if !errors.Is(err, encounter.ErrNotFound) {
			s.logger.Warn().Err(err).Str("provider_id", providerID).Msg("provider lookup failed")
		}
		return nil
	}
	return p
}

func (s *Service) wireClaim(claim *Claim, enc *encounter.Encounter, patient *encounter.Patient,
	coverage *encounter.Coverage, provider *encounter.Provider) *x12.Claim {
	wc := &x12.Claim{
		ClaimID:        claim.ID,
		TotalCharge:    claim.TotalCharge,
		ServiceDate:    enc.ServiceDate,
		PlaceOfService: enc.PlaceOfSvc,
		FrequencyCode:  "1",
	}

	if provider != nil {
		wc.Provider = x12.Provider{
			OrgName:  provider.OrgName,
			NPI:      provider.NPI,
			TaxID:    provider.TaxID,
			Taxonomy: provider.Taxonomy,
			Address1: provider.Address1,
			City:     provider.City,
			State:    provider.State,
			Zip:      provider.Zip,
		}
	}
	if patient != nil {
		wc.Subscriber = x12.Subscriber{
			LastName:  patient.LastName,
			FirstName: patient.FirstName,
			MemberID:  patient.MemberID,
			BirthDate: patient.BirthDate,
			Gender:    patient.Gender,
			Address1:  patient.Address1,
			City:      patient.City,
			State:     patient.State,
			Zip:       patient.Zip,
		}
	}
	if coverage != nil {
		wc.Subscriber.GroupNumber = coverage.GroupNumber
		if coverage.MemberID != "" {
			wc.Subscriber.MemberID = coverage.MemberID
		}
	}

	for _, dx := range claim.Diagnoses {
		wc.Diagnoses = append(wc.Diagnoses, dx.Code)
	}
	for _, line := range claim.Lines {
		wc.Lines = append(wc.Lines, x12.ServiceLine{
			Number:            line.LineNumber,
			ProcedureCode:     line.ProcedureCode,
			Modifiers:         line.Modifiers,
			Charge:            line.Charge,
			Units:             line.Units,
			DiagnosisPointers: line.DiagnosisPointers,
		})
	}
	return wc
}

// Transition moves a claim through its lifecycle, recording the change in
// the history table atomically with the status update.
func (s *Service) Transition(ctx context.Context, claimID string, to Status, actor, note string) (*Claim, error) {
	claim, err := s.repo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	from := claim.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", from, to)
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, claimID, from, to); err != nil {
			return err
		}
		return s.repo.AppendStatusEvent(ctx, &StatusEvent{
			ClaimID: claimID,
			From:    from,
			To:      to,
			Actor:   actor,
			Note:    note,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.StatusChange(claimID, string(from), string(to))
	}
	claim.Status = to
	return claim, nil
}

// Get returns a claim with its lines and diagnoses.
func (s *Service) Get(ctx context.Context, id string) (*Claim, error) {
	return s.repo.Get(ctx, id)
}

// GetX12 returns the persisted interchange text.
func (s *Service) GetX12(ctx context.Context, id string) (string, error) {
	return s.repo.GetX12(ctx, id)
}

// ListByEncounter returns the claims generated for an encounter.
func (s *Service) ListByEncounter(ctx context.Context, encounterID string) ([]*Claim, error) {
	return s.repo.ListByEncounter(ctx, encounterID)
}

// List pages claims newest-first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("unknown claim status %q", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// StatusHistory returns a claim's recorded lifecycle transitions.
func (s *Service) StatusHistory(ctx context.Context, claimID string) ([]*StatusEvent, error) {
	return s.repo.StatusHistory(ctx, claimID)
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}
