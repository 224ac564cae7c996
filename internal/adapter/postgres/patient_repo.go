package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthtracker/internal/domain"
)

// patientSelect joins each patient with the level of its newest assessment.
const patientSelect = `
SELECT p.id, p.first_name, p.last_name, to_char(p.date_of_birth, 'YYYY-MM-DD'),
       p.blood_type, p.gender, p.created_at, p.updated_at, ra.risk_level
FROM patients p
LEFT JOIN LATERAL (
    SELECT risk_level FROM risk_assessments
    WHERE patient_id = p.id
    ORDER BY id DESC
    LIMIT 1
) ra ON true`

const (
	orderByName = " ORDER BY lower(p.last_name), lower(p.first_name), p.id"
	orderByRisk = ` ORDER BY CASE ra.risk_level WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'LOW' THEN 2 ELSE 3 END,
    lower(p.last_name), lower(p.first_name), p.id`
	orderByRecent = " ORDER BY p.created_at DESC, p.id DESC"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var (
		p    domain.Patient
		risk sql.NullString
	)
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth,
		&p.BloodType, &p.Gender, &p.CreatedAt, &p.UpdatedAt, &risk); err != nil {
		return nil, err
	}
	if risk.Valid {
		level := domain.RiskLevel(risk.String)
		p.RiskLevel = &level
	}
	return &p, nil
}

// CreatePatient inserts a new patient.
func (d *DB) CreatePatient(ctx context.Context, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO patients (first_name, last_name, date_of_birth, blood_type, gender, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		in.FirstName, in.LastName, in.DateOfBirth, in.BloodType, in.Gender, now.UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return d.GetPatient(ctx, id)
}

// GetPatient retrieves a patient by ID.
func (d *DB) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := scanPatient(d.sql.QueryRowContext(ctx, patientSelect+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePatient replaces the writable fields of a patient.
func (d *DB) UpdatePatient(ctx context.Context, id int64, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE patients SET first_name = $1, last_name = $2, date_of_birth = $3, blood_type = $4, gender = $5, updated_at = $6
		 WHERE id = $7`,
		in.FirstName, in.LastName, in.DateOfBirth, in.BloodType, in.Gender, now.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return d.GetPatient(ctx, id)
}

// DeletePatient removes a patient; dependent rows go with it (ON DELETE CASCADE).
func (d *DB) DeletePatient(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM patients WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPatients lists patients in the requested order.
func (d *DB) ListPatients(ctx context.Context, q domain.PatientQuery) ([]domain.Patient, error) {
	query := patientSelect
	var args []any
	if q.Risk != "" {
		query += " WHERE ra.risk_level = $1"
		args = append(args, string(q.Risk))
	}
	switch q.Sort {
	case domain.SortName:
		query += orderByName
	case domain.SortRisk:
		query += orderByRisk
	default:
		query += orderByRecent
	}
	return d.queryPatients(ctx, query, args...)
}

// SearchPatients matches names case-insensitively or the exact id.
func (d *DB) SearchPatients(ctx context.Context, term string, id int64, limit int) ([]domain.Patient, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	query := patientSelect +
		" WHERE p.id = $1 OR p.first_name ILIKE $2 OR p.last_name ILIKE $2" +
		orderByName + " LIMIT $3"
	return d.queryPatients(ctx, query, id, pattern, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (d *DB) queryPatients(ctx context.Context, query string, args ...any) ([]domain.Patient, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
