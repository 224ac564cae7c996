package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthtracker/internal/domain"
)

const assessmentColumns = "id, patient_id, risk_level, calculated_score, assessment_date, next_assessment_date"

// AppendRiskAssessment appends an assessment to the patient's history.
func (d *DB) AppendRiskAssessment(ctx context.Context, a domain.RiskAssessment) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO risk_assessments (patient_id, risk_level, calculated_score, assessment_date, next_assessment_date)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.PatientID, string(a.RiskLevel), a.CalculatedScore, a.AssessmentDate.UTC(), a.NextAssessmentDate.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert risk assessment: %w", translate(err))
	}
	return id, nil
}

// LatestRiskAssessment returns the most recently created assessment, or nil.
func (d *DB) LatestRiskAssessment(ctx context.Context, patientID int64) (*domain.RiskAssessment, error) {
	a, err := scanAssessment(d.sql.QueryRowContext(ctx,
		"SELECT "+assessmentColumns+" FROM risk_assessments WHERE patient_id = $1 ORDER BY id DESC LIMIT 1",
		patientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListRiskAssessments returns up to limit assessments, newest first.
func (d *DB) ListRiskAssessments(ctx context.Context, patientID int64, limit int) ([]domain.RiskAssessment, error) {
	return d.queryAssessments(ctx,
		"SELECT "+assessmentColumns+" FROM risk_assessments WHERE patient_id = $1 ORDER BY id DESC LIMIT $2",
		patientID, limit)
}

// ListDueRiskAssessments returns each patient's latest assessment when its
// follow-up date is at or before asOf.
func (d *DB) ListDueRiskAssessments(ctx context.Context, asOf time.Time) ([]domain.RiskAssessment, error) {
	return d.queryAssessments(ctx, `
SELECT `+assessmentColumns+` FROM (
    SELECT DISTINCT ON (patient_id) `+assessmentColumns+`
    FROM risk_assessments
    ORDER BY patient_id, id DESC
) latest
WHERE next_assessment_date <= $1
ORDER BY next_assessment_date ASC`, asOf.UTC())
}

func (d *DB) queryAssessments(ctx context.Context, query string, args ...any) ([]domain.RiskAssessment, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RiskAssessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAssessment(row rowScanner) (*domain.RiskAssessment, error) {
	var (
		a     domain.RiskAssessment
		level string
	)
	if err := row.Scan(&a.ID, &a.PatientID, &level, &a.CalculatedScore, &a.AssessmentDate, &a.NextAssessmentDate); err != nil {
		return nil, err
	}
	a.RiskLevel = domain.RiskLevel(level)
	return &a, nil
}
