package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbill/medbill/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) GetEncounter(ctx context.Context, id string) (*Encounter, error) {
	var e Encounter
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, patient_id, provider_id, COALESCE(payer_id,''), COALESCE(encounter_type,''),
		        service_date, COALESCE(place_of_service,'11'), COALESCE(auth_number,''), new_patient,
		        COALESCE(procedure_codes,'{}'), COALESCE(procedure_desc,''), COALESCE(diagnosis_codes,'{}'),
		        has_history, has_exam, problem_count, COALESCE(data_review,''), COALESCE(risk,''),
		        total_minutes, counseling_minutes, COALESCE(narrative,''),
		        bilateral, distinct_service, repeat_same_day, repeat_other_provider,
		        repeat_lab, telehealth, separate_em, reduced_service
		 FROM encounters WHERE id = $1`, id).
		Scan(&e.ID, &e.PatientID, &e.ProviderID, &e.PayerID, &e.Type,
			&e.ServiceDate, &e.PlaceOfSvc, &e.AuthNumber, &e.NewPatient,
			&e.ProcedureCodes, &e.ProcedureDesc, &e.DiagnosisCodes,
			&e.Documentation.HasHistory, &e.Documentation.HasExam, &e.Documentation.ProblemCount,
			&e.Documentation.DataReview, &e.Documentation.Risk,
			&e.Documentation.TotalMinutes, &e.Documentation.CounselingMinutes, &e.Documentation.Narrative,
			&e.Flags.Bilateral, &e.Flags.DistinctService, &e.Flags.RepeatSameDay, &e.Flags.RepeatOtherProv,
			&e.Flags.RepeatLab, &e.Flags.Telehealth, &e.Flags.SeparateEM, &e.Flags.ReducedService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: encounter %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get encounter: %w", err)
	}
	return &e, nil
}

func (r *repoPG) GetPatient(ctx context.Context, id string) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, COALESCE(first_name,''), COALESCE(last_name,''), birth_date,
		        COALESCE(gender,''), COALESCE(member_id,''),
		        COALESCE(address1,''), COALESCE(city,''), COALESCE(state,''), COALESCE(zip,'')
		 FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender, &p.MemberID,
			&p.Address1, &p.City, &p.State, &p.Zip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: patient %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (r *repoPG) GetProvider(ctx context.Context, id string) (*Provider, error) {
	var p Provider
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, COALESCE(org_name,''), COALESCE(npi,''), COALESCE(tax_id,''), COALESCE(taxonomy,''),
		        COALESCE(address1,''), COALESCE(city,''), COALESCE(state,''), COALESCE(zip,'')
		 FROM providers WHERE id = $1`, id).
		Scan(&p.ID, &p.OrgName, &p.NPI, &p.TaxID, &p.Taxonomy,
			&p.Address1, &p.City, &p.State, &p.Zip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: provider %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return &p, nil
}

func (r *repoPG) GetCoverage(ctx context.Context, patientID, payerID string) (*Coverage, error) {
	var c Coverage
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, patient_id, payer_id, COALESCE(payer_name,''), COALESCE(member_id,''),
		        COALESCE(group_number,''), active, effective_date, termination_date, auth_required
		 FROM coverages WHERE patient_id = $1 AND payer_id = $2
		 ORDER BY effective_date DESC LIMIT 1`, patientID, payerID).
		Scan(&c.ID, &c.PatientID, &c.PayerID, &c.PayerName, &c.MemberID,
			&c.GroupNumber, &c.Active, &c.EffectiveDate, &c.TermDate, &c.AuthRequired)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: coverage for patient %s payer %s", ErrNotFound, patientID, payerID)
		}
		return nil, fmt.Errorf("get coverage: %w", err)
	}
	return &c, nil
}
