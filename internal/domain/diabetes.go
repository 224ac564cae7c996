package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScreenLocations lists where diabetes metrics may be taken.
var ScreenLocations = []string{"At Home", "Clinic", "Hospital", "Mobile Unit"}

// DiabetesMetric is a diabetes screening measurement.
type DiabetesMetric struct {
	ID                int64            `json:"id"`
	PatientID         int64            `json:"patientId"`
	BloodGlucoseLevel decimal.Decimal  `json:"bloodGlucoseLevel"`
	Systolic          int              `json:"bloodPressureSystolic"`
	Diastolic         int              `json:"bloodPressureDiastolic"`
	BMI               *decimal.Decimal `json:"bmi,omitempty"`
	ScreenLocation    string           `json:"screenLocation"`
	RecordBy          string           `json:"recordBy"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// DiabetesMetricInput is the caller-supplied part of a diabetes metric.
type DiabetesMetricInput struct {
	PatientID         int64            `json:"patientId"`
	BloodGlucoseLevel *decimal.Decimal `json:"bloodGlucoseLevel"`
	Systolic          int              `json:"bloodPressureSystolic"`
	Diastolic         int              `json:"bloodPressureDiastolic"`
	BMI               *decimal.Decimal `json:"bmi,omitempty"`
	ScreenLocation    string           `json:"screenLocation"`
	RecordBy          string           `json:"recordBy"`
}

var (
	minBMI = decimal.NewFromInt(10)
	maxBMI = decimal.RequireFromString("99.99")
)

// Validate checks measurement ranges and the required text fields.
func (in DiabetesMetricInput) Validate() error {
	if in.PatientID <= 0 {
		return invalid("patientId", "is required")
	}
	if in.BloodGlucoseLevel == nil {
		return invalid("bloodGlucoseLevel", "blood glucose is required")
	}
	if in.BloodGlucoseLevel.IsNegative() {
		return invalid("bloodGlucoseLevel", "blood glucose must be positive")
	}
	if in.BloodGlucoseLevel.GreaterThan(maxResult) {
		return invalid("bloodGlucoseLevel", "blood glucose too high")
	}
	if hasExtraPlaces(*in.BloodGlucoseLevel) {
		return invalid("bloodGlucoseLevel", "at most %d decimal places", MaxDecimalPlaces)
	}
	if in.Systolic < 70 {
		return invalid("bloodPressureSystolic", "systolic pressure too low")
	}
	if in.Systolic > 250 {
		return invalid("bloodPressureSystolic", "systolic pressure too high")
	}
	if in.Diastolic < 40 {
		return invalid("bloodPressureDiastolic", "diastolic pressure too low")
	}
	if in.Diastolic > 150 {
		return invalid("bloodPressureDiastolic", "diastolic pressure too high")
	}
	if in.BMI != nil {
		if in.BMI.LessThan(minBMI) {
			return invalid("bmi", "BMI too low")
		}
		if in.BMI.GreaterThan(maxBMI) {
			return invalid("bmi", "BMI too high")
		}
		if hasExtraPlaces(*in.BMI) {
			return invalid("bmi", "at most %d decimal places", MaxDecimalPlaces)
		}
	}
	if !oneOf(in.ScreenLocation, ScreenLocations) {
		return invalid("screenLocation", "screen location is required")
	}
	if strings.TrimSpace(in.RecordBy) == "" {
		return invalid("recordBy", "record by is required")
	}
	return nil
}

// DiabetesMetricRepository is the port for diabetes metric persistence.
type DiabetesMetricRepository interface {
	AddDiabetesMetric(ctx context.Context, in DiabetesMetricInput, createdAt time.Time) (*DiabetesMetric, error)
	// ListDiabetesMetrics returns a patient's metrics, newest first.
	ListDiabetesMetrics(ctx context.Context, patientID int64) ([]DiabetesMetric, error)
}
