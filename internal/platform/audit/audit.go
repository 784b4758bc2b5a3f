package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// Event is a single compliance-relevant occurrence in the billing pipeline:
// a denial, a manual-review flag, a fee fallback, a claim generation, or a
// claim status change.
type Event struct {
	Type        string
	EncounterID string
	ClaimID     string
	Code        string
	Reason      string
	Detail      string
	Timestamp   time.Time
}

// Event types emitted by the pipeline.
const (
	TypeDenial         = "denial"
	TypeManualReview   = "manual_review"
	TypeFeeFallback    = "fee_fallback"
	TypeClaimGenerated = "claim_generated"
	TypeStatusChange   = "status_change"
)

// Recorder persists audit events. The audit trail itself is owned by an
// external compliance system; this interface decouples the pipeline from it
// and lets tests capture events in memory.
type Recorder interface {
	Record(event Event) error
}

// RecorderFunc is a function adapter for Recorder.
type RecorderFunc func(event Event) error

func (f RecorderFunc) Record(event Event) error {
	return f(event)
}

// Emitter fans events out to an optional Recorder and always writes a
// structured log line, so the trail survives even when the external recorder
// is unavailable.
type Emitter struct {
	logger   zerolog.Logger
	recorder Recorder
}

func NewEmitter(logger zerolog.Logger, recorder Recorder) *Emitter {
	return &Emitter{logger: logger, recorder: recorder}
}

func (e *Emitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if e.recorder != nil {
		if err := e.recorder.Record(event); err != nil {
			e.logger.Error().Err(err).
				Str("event_type", event.Type).
				Msg("failed to record audit event")
		}
	}

	evt := e.logger.Info()
	if event.Type == TypeDenial {
		evt = e.logger.Warn()
	}
	evt.
		Str("type", "billing_audit").
		Str("event_type", event.Type).
		Str("encounter_id", event.EncounterID).
		Str("claim_id", event.ClaimID).
		Str("code", event.Code).
		Str("reason", event.Reason).
		Str("detail", event.Detail).
		Time("at", event.Timestamp).
		Msg("audit")
}

// Denial emits a denial event for an encounter.
func (e *Emitter) Denial(encounterID, reason string) {
	e.Emit(Event{Type: TypeDenial, EncounterID: encounterID, Reason: reason})
}

// ManualReview emits a manual-review flag for an encounter.
func (e *Emitter) ManualReview(encounterID, reason string) {
	e.Emit(Event{Type: TypeManualReview, EncounterID: encounterID, Reason: reason})
}

// FeeFallback records that a fee lookup was satisfied by a tier other than
// the contracted rate.
func (e *Emitter) FeeFallback(encounterID, code, tier string) {
	e.Emit(Event{Type: TypeFeeFallback, EncounterID: encounterID, Code: code, Detail: tier})
}

// ClaimGenerated records a successful pipeline run.
func (e *Emitter) ClaimGenerated(encounterID, claimID string) {
	e.Emit(Event{Type: TypeClaimGenerated, EncounterID: encounterID, ClaimID: claimID})
}

// StatusChange records a claim status transition.
func (e *Emitter) StatusChange(claimID, from, to string) {
	e.Emit(Event{Type: TypeStatusChange, ClaimID: claimID, Detail: from + "->" + to})
}
