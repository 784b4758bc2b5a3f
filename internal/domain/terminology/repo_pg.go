package terminology

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbill/medbill/internal/platform/db"
)

// ErrNotFound is returned when a code is absent or retired.
var ErrNotFound = errors.New("code not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== CPT Repository ===========

type cptRepoPG struct{ pool *pgxpool.Pool }

func NewCPTRepoPG(pool *pgxpool.Pool) CPTRepository { return &cptRepoPG{pool: pool} }

func (r *cptRepoPG) GetByCode(ctx context.Context, code string) (*CPTCode, error) {
	var c CPTCode
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(subcategory,''),
		        COALESCE(system_uri,'http://www.ama-assn.org/go/cpt'), active
		 FROM reference_cpt WHERE code = $1 AND active`, code).
		Scan(&c.Code, &c.Display, &c.Category, &c.Subcategory, &c.SystemURI, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: cpt %s", ErrNotFound, code)
		}
		return nil, fmt.Errorf("cpt get: %w", err)
	}
	return &c, nil
}

func (r *cptRepoPG) Search(ctx context.Context, query string, limit int) ([]*CPTCode, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(subcategory,''),
		        COALESCE(system_uri,'http://www.ama-assn.org/go/cpt'), active
		 FROM reference_cpt
		 WHERE active AND (code ILIKE $1 OR display ILIKE $1 OR category ILIKE $1)
		 ORDER BY code LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("cpt search: %w", err)
	}
	defer rows.Close()
	var results []*CPTCode
	for rows.Next() {
		var c CPTCode
		if err := rows.Scan(&c.Code, &c.Display, &c.Category, &c.Subcategory, &c.SystemURI, &c.Active); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

// =========== ICD-10 Repository ===========

type icd10RepoPG struct{ pool *pgxpool.Pool }

func NewICD10RepoPG(pool *pgxpool.Pool) ICD10Repository { return &icd10RepoPG{pool: pool} }

func (r *icd10RepoPG) GetByCode(ctx context.Context, code string) (*ICD10Code, error) {
	var c ICD10Code
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(chapter,''),
		        COALESCE(system_uri,'http://hl7.org/fhir/sid/icd-10-cm'), active
		 FROM reference_icd10 WHERE code = $1 AND active`, code).
		Scan(&c.Code, &c.Display, &c.Category, &c.Chapter, &c.SystemURI, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: icd10 %s", ErrNotFound, code)
		}
		return nil, fmt.Errorf("icd10 get: %w", err)
	}
	return &c, nil
}

func (r *icd10RepoPG) Search(ctx context.Context, query string, limit int) ([]*ICD10Code, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(chapter,''),
		        COALESCE(system_uri,'http://hl7.org/fhir/sid/icd-10-cm'), active
		 FROM reference_icd10
		 WHERE active AND (code ILIKE $1 OR display ILIKE $1 OR category ILIKE $1)
		 ORDER BY code LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("icd10 search: %w", err)
	}
	defer rows.Close()
	var results []*ICD10Code
	for rows.Next() {
		var c ICD10Code
		if err := rows.Scan(&c.Code, &c.Display, &c.Category, &c.Chapter, &c.SystemURI, &c.Active); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

// =========== HCPCS Repository ===========

type hcpcsRepoPG struct{ pool *pgxpool.Pool }

func NewHCPCSRepoPG(pool *pgxpool.Pool) HCPCSRepository { return &hcpcsRepoPG{pool: pool} }

func (r *hcpcsRepoPG) GetByCode(ctx context.Context, code string) (*HCPCSCode, error) {
	var c HCPCSCode
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(system_uri,''), active
		 FROM reference_hcpcs WHERE code = $1 AND active`, code).
		Scan(&c.Code, &c.Display, &c.Category, &c.SystemURI, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: hcpcs %s", ErrNotFound, code)
		}
		return nil, fmt.Errorf("hcpcs get: %w", err)
	}
	return &c, nil
}

func (r *hcpcsRepoPG) Search(ctx context.Context, query string, limit int) ([]*HCPCSCode, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT code, display, COALESCE(category,''), COALESCE(system_uri,''), active
		 FROM reference_hcpcs
		 WHERE active AND (code ILIKE $1 OR display ILIKE $1 OR category ILIKE $1)
		 ORDER BY code LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("hcpcs search: %w", err)
	}
	defer rows.Close()
	var results []*HCPCSCode
	for rows.Next() {
		var c HCPCSCode
		if err := rows.Scan(&c.Code, &c.Display, &c.Category, &c.SystemURI, &c.Active); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

// =========== Modifier Repository ===========

type modifierRepoPG struct{ pool *pgxpool.Pool }

func NewModifierRepoPG(pool *pgxpool.Pool) ModifierRepository { return &modifierRepoPG{pool: pool} }

func (r *modifierRepoPG) GetByCode(ctx context.Context, code string) (*Modifier, error) {
	var m Modifier
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT code, display, COALESCE(level,''), price_impact, active
		 FROM reference_modifiers WHERE code = $1 AND active`, code).
		Scan(&m.Code, &m.Display, &m.Level, &m.PriceImpact, &m.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: modifier %s", ErrNotFound, code)
		}
		return nil, fmt.Errorf("modifier get: %w", err)
	}
	return &m, nil
}

func (r *modifierRepoPG) List(ctx context.Context) ([]*Modifier, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT code, display, COALESCE(level,''), price_impact, active
		 FROM reference_modifiers WHERE active ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("modifier list: %w", err)
	}
	defer rows.Close()
	var results []*Modifier
	for rows.Next() {
		var m Modifier
		if err := rows.Scan(&m.Code, &m.Display, &m.Level, &m.PriceImpact, &m.Active); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}
	return results, rows.Err()
}
