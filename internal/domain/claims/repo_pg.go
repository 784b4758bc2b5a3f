package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbill/medbill/internal/domain/fees"
	"github.com/medbill/medbill/internal/platform/db"
)

// ErrStatusConflict is returned when a transition races another writer: the
// claim was no longer in the expected status at update time.
var ErrStatusConflict = errors.New("claim status changed concurrently")

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, claim *Claim) error {
	c := r.conn(ctx)

	_, err := c.Exec(ctx,
		`INSERT INTO claims (id, encounter_id, patient_id, provider_id, payer_id, status,
		                     total_charge_cents, isa_control, gs_control, st_control,
		                     segment_count, x12_text, needs_review, review_reasons)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		claim.ID, claim.EncounterID, claim.PatientID, claim.ProviderID, claim.PayerID,
		string(claim.Status), int64(claim.TotalCharge),
		claim.ControlNumbers.ISA, claim.ControlNumbers.GS, claim.ControlNumbers.ST,
		claim.SegmentCount, claim.X12Text, claim.NeedsReview, claim.ReviewReasons)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}

	for _, dx := range claim.Diagnoses {
		if _, err := c.Exec(ctx,
			`INSERT INTO claim_diagnoses (claim_id, position, code, principal)
			 VALUES ($1,$2,$3,$4)`,
			claim.ID, dx.Position, dx.Code, dx.Principal); err != nil {
			return fmt.Errorf("insert claim diagnosis: %w", err)
		}
	}

	for _, line := range claim.Lines {
		if _, err := c.Exec(ctx,
			`INSERT INTO claim_lines (claim_id, line_number, procedure_code, modifiers,
			                          charge_cents, units, diagnosis_pointers, rate_source)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			claim.ID, line.LineNumber, line.ProcedureCode, line.Modifiers,
			int64(line.Charge), line.Units, line.DiagnosisPointers, string(line.RateSource)); err != nil {
			return fmt.Errorf("insert claim line: %w", err)
		}
	}

	return nil
}

const claimColumns = `id, encounter_id, patient_id, provider_id, payer_id, status,
	total_charge_cents, isa_control, gs_control, st_control,
	segment_count, needs_review, COALESCE(review_reasons,'{}'), created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	var total int64
	err := row.Scan(&c.ID, &c.EncounterID, &c.PatientID, &c.ProviderID, &c.PayerID, &c.Status,
		&total, &c.ControlNumbers.ISA, &c.ControlNumbers.GS, &c.ControlNumbers.ST,
		&c.SegmentCount, &c.NeedsReview, &c.ReviewReasons, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.TotalCharge = fees.Cents(total)
	return &c, nil
}

func (r *repoPG) Get(ctx context.Context, id string) (*Claim, error) {
	c := r.conn(ctx)
	claim, err := scanClaim(c.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}

	if claim.Diagnoses, err = r.diagnoses(ctx, id); err != nil {
		return nil, err
	}
	if claim.Lines, err = r.lines(ctx, id); err != nil {
		return nil, err
	}
	return claim, nil
}

func (r *repoPG) diagnoses(ctx context.Context, claimID string) ([]ClaimDiagnosis, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT position, code, principal FROM claim_diagnoses
		 WHERE claim_id = $1 ORDER BY position`, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim diagnoses: %w", err)
	}
	defer rows.Close()
	var out []ClaimDiagnosis
	for rows.Next() {
		var dx ClaimDiagnosis
		if err := rows.Scan(&dx.Position, &dx.Code, &dx.Principal); err != nil {
			return nil, err
		}
		out = append(out, dx)
	}
	return out, rows.Err()
}

func (r *repoPG) lines(ctx context.Context, claimID string) ([]ClaimLine, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT line_number, procedure_code, COALESCE(modifiers,'{}'), charge_cents,
		        units, diagnosis_pointers, rate_source
		 FROM claim_lines WHERE claim_id = $1 ORDER BY line_number`, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim lines: %w", err)
	}
	defer rows.Close()
	var out []ClaimLine
	for rows.Next() {
		var line ClaimLine
		var charge int64
		if err := rows.Scan(&line.LineNumber, &line.ProcedureCode, &line.Modifiers,
			&charge, &line.Units, &line.DiagnosisPointers, &line.RateSource); err != nil {
			return nil, err
		}
		line.Charge = fees.Cents(charge)
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *repoPG) GetX12(ctx context.Context, id string) (string, error) {
	var text string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT x12_text FROM claims WHERE id = $1`, id).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("get claim x12: %w", err)
	}
	return text, nil
}

func (r *repoPG) ListByEncounter(ctx context.Context, encounterID string) ([]*Claim, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE encounter_id = $1 ORDER BY created_at DESC`, encounterID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()
	var out []*Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, claim)
	}
	return out, rows.Err()
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error) {
	c := r.conn(ctx)

	var total int
	if err := c.QueryRow(ctx,
		`SELECT count(*) FROM claims WHERE ($1 = '' OR status = $1)`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}

	rows, err := c.Query(ctx,
		`SELECT `+claimColumns+` FROM claims
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()
	var out []*Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, claim)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE claims SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s not in status %s", ErrStatusConflict, id, from)
	}
	return nil
}

func (r *repoPG) AppendStatusEvent(ctx context.Context, event *StatusEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO claim_status_history (id, claim_id, from_status, to_status, actor, note)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		event.ID, event.ClaimID, string(event.From), string(event.To), event.Actor, event.Note)
	if err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

func (r *repoPG) StatusHistory(ctx context.Context, claimID string) ([]*StatusEvent, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, claim_id, from_status, to_status, COALESCE(actor,''), COALESCE(note,''), created_at
		 FROM claim_status_history WHERE claim_id = $1 ORDER BY created_at`, claimID)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	defer rows.Close()
	var out []*StatusEvent
	for rows.Next() {
		var e StatusEvent
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.From, &e.To, &e.Actor, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
