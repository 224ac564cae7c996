package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"healthtracker/internal/domain"
)

const readingColumns = "id, patient_id, blood_glucose, blood_pressure_systolic, blood_pressure_diastolic, weight, notes, recorded_at"

// AddHealthReading inserts a new reading.
func (d *DB) AddHealthReading(ctx context.Context, in domain.HealthReadingInput, recordedAt time.Time) (*domain.HealthReading, error) {
	weight := decimal.NullDecimal{}
	if in.WeightKg != nil {
		weight = decimal.NewNullDecimal(*in.WeightKg)
	}
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO health_records (patient_id, blood_glucose, blood_pressure_systolic, blood_pressure_diastolic, weight, notes, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+readingColumns,
		in.PatientID, *in.BloodGlucose, in.Systolic, in.Diastolic, weight, in.Notes, recordedAt.UTC(),
	)
	r, err := scanReading(row)
	if err != nil {
		return nil, fmt.Errorf("insert health record: %w", translate(err))
	}
	return r, nil
}

// ListRecentReadings returns up to limit readings, newest first.
func (d *DB) ListRecentReadings(ctx context.Context, patientID int64, limit int) ([]domain.HealthReading, error) {
	return d.queryReadings(ctx,
		"SELECT "+readingColumns+" FROM health_records WHERE patient_id = $1 ORDER BY recorded_at DESC, id DESC LIMIT $2",
		patientID, limit)
}

// ListReadings returns every reading of a patient, oldest first.
func (d *DB) ListReadings(ctx context.Context, patientID int64) ([]domain.HealthReading, error) {
	return d.queryReadings(ctx,
		"SELECT "+readingColumns+" FROM health_records WHERE patient_id = $1 ORDER BY recorded_at ASC, id ASC",
		patientID)
}

func (d *DB) queryReadings(ctx context.Context, query string, args ...any) ([]domain.HealthReading, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HealthReading{}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

func scanReading(row rowScanner) (*domain.HealthReading, error) {
	var (
		r      domain.HealthReading
		weight decimal.NullDecimal
	)
	if err := row.Scan(&r.ID, &r.PatientID, &r.BloodGlucose, &r.Systolic, &r.Diastolic,
		&weight, &r.Notes, &r.RecordedAt); err != nil {
		return nil, err
	}
	if weight.Valid {
		w := weight.Decimal
		r.WeightKg = &w
	}
	return &r, nil
}
