package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"healthtracker/internal/domain"
)

// AddScreening inserts a screening.
func (d *DB) AddScreening(ctx context.Context, in domain.ScreeningInput, createdAt time.Time) (*domain.Screening, error) {
	s := domain.Screening{
		PatientID:    in.PatientID,
		ScreenType:   in.ScreenType,
		Result:       *in.Result,
		ResultStatus: in.ResultStatus,
		CreatedAt:    createdAt.UTC(),
	}
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO screenings (patient_id, screen_type, result, result_status, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		s.PatientID, s.ScreenType, s.Result, s.ResultStatus, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("insert screening: %w", translate(err))
	}
	return &s, nil
}

// ListScreenings returns a patient's screenings, newest first.
func (d *DB) ListScreenings(ctx context.Context, patientID int64) ([]domain.Screening, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, patient_id, screen_type, result, result_status, created_at
		 FROM screenings WHERE patient_id = $1 ORDER BY created_at DESC, id DESC`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Screening{}
	for rows.Next() {
		var s domain.Screening
		if err := rows.Scan(&s.ID, &s.PatientID, &s.ScreenType, &s.Result, &s.ResultStatus, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// AddDiabetesMetric inserts a diabetes metric.
func (d *DB) AddDiabetesMetric(ctx context.Context, in domain.DiabetesMetricInput, createdAt time.Time) (*domain.DiabetesMetric, error) {
	bmi := decimal.NullDecimal{}
	if in.BMI != nil {
		bmi = decimal.NewNullDecimal(*in.BMI)
	}
	m := domain.DiabetesMetric{
		PatientID:         in.PatientID,
		BloodGlucoseLevel: *in.BloodGlucoseLevel,
		Systolic:          in.Systolic,
		Diastolic:         in.Diastolic,
		BMI:               in.BMI,
		ScreenLocation:    in.ScreenLocation,
		RecordBy:          in.RecordBy,
		CreatedAt:         createdAt.UTC(),
	}
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO diabetes_metrics (patient_id, blood_glucose_level, blood_pressure_systolic, blood_pressure_diastolic,
		     bmi, screen_location, record_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		m.PatientID, m.BloodGlucoseLevel, m.Systolic, m.Diastolic, bmi, m.ScreenLocation, m.RecordBy, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("insert diabetes metric: %w", translate(err))
	}
	return &m, nil
}

// ListDiabetesMetrics returns a patient's metrics, newest first.
func (d *DB) ListDiabetesMetrics(ctx context.Context, patientID int64) ([]domain.DiabetesMetric, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, patient_id, blood_glucose_level, blood_pressure_systolic, blood_pressure_diastolic,
		     bmi, screen_location, record_by, created_at
		 FROM diabetes_metrics WHERE patient_id = $1 ORDER BY created_at DESC, id DESC`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DiabetesMetric{}
	for rows.Next() {
		var (
			m   domain.DiabetesMetric
			bmi decimal.NullDecimal
		)
		if err := rows.Scan(&m.ID, &m.PatientID, &m.BloodGlucoseLevel, &m.Systolic, &m.Diastolic,
			&bmi, &m.ScreenLocation, &m.RecordBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		if bmi.Valid {
			v := bmi.Decimal
			m.BMI = &v
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
