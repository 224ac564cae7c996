package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// HealthReading is a single recorded measurement event for a patient.
// Readings are immutable once stored.
type HealthReading struct {
	ID           int64            `json:"id"`
	PatientID    int64            `json:"patientId"`
	BloodGlucose decimal.Decimal  `json:"bloodGlucose"`
	Systolic     int              `json:"bloodPressureSystolic"`
	Diastolic    int              `json:"bloodPressureDiastolic"`
	WeightKg     *decimal.Decimal `json:"weight,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	RecordedAt   time.Time        `json:"recordedAt"`
}

// HealthReadingInput is the caller-supplied part of a new reading.
type HealthReadingInput struct {
	PatientID    int64            `json:"patientId"`
	BloodGlucose *decimal.Decimal `json:"bloodGlucose"`
	Systolic     int              `json:"bloodPressureSystolic"`
	Diastolic    int              `json:"bloodPressureDiastolic"`
	WeightKg     *decimal.Decimal `json:"weight,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

var (
	maxGlucose = decimal.NewFromInt(999)
	maxWeight  = decimal.RequireFromString("999.99")
)

// MaxDecimalPlaces is the precision every stored measurement keeps.
const MaxDecimalPlaces = 2

// hasExtraPlaces reports whether d would be rounded by storage.
func hasExtraPlaces(d decimal.Decimal) bool {
	return !d.Equal(d.Round(MaxDecimalPlaces))
}

// Validate enforces the form ranges: glucose [0,999] mg/dL, systolic
// [70,250] and diastolic [40,150] mmHg, weight in (0, 999.99] kg when
// present. Decimal values keep at most two places.
func (in HealthReadingInput) Validate() error {
	if in.PatientID <= 0 {
		return invalid("patientId", "is required")
	}
	if in.BloodGlucose == nil {
		return invalid("bloodGlucose", "is required")
	}
	if in.BloodGlucose.IsNegative() || in.BloodGlucose.GreaterThan(maxGlucose) {
		return invalid("bloodGlucose", "must be within [0, 999]")
	}
	if hasExtraPlaces(*in.BloodGlucose) {
		return invalid("bloodGlucose", "at most %d decimal places", MaxDecimalPlaces)
	}
	if in.Systolic < 70 || in.Systolic > 250 {
		return invalid("bloodPressureSystolic", "must be within [70, 250]")
	}
	if in.Diastolic < 40 || in.Diastolic > 150 {
		return invalid("bloodPressureDiastolic", "must be within [40, 150]")
	}
	if in.WeightKg != nil {
		if !in.WeightKg.IsPositive() || in.WeightKg.GreaterThan(maxWeight) {
			return invalid("weight", "must be within (0, 999.99]")
		}
		if hasExtraPlaces(*in.WeightKg) {
			return invalid("weight", "at most %d decimal places", MaxDecimalPlaces)
		}
	}
	return nil
}

// HealthRecordRepository is the port for reading persistence. It doubles as
// the patient store the risk service reads from.
type HealthRecordRepository interface {
	AddHealthReading(ctx context.Context, in HealthReadingInput, recordedAt time.Time) (*HealthReading, error)
	// ListRecentReadings returns up to limit readings, newest first.
	ListRecentReadings(ctx context.Context, patientID int64, limit int) ([]HealthReading, error)
	// ListReadings returns every reading of a patient, oldest first.
	ListReadings(ctx context.Context, patientID int64) ([]HealthReading, error)
}
