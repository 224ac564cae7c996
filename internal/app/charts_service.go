package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"healthtracker/internal/domain"
)

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	patients domain.PatientRepository
	readings domain.HealthRecordRepository
}

// NewChartsService creates a ChartsService backed by the given repositories.
func NewChartsService(patients domain.PatientRepository, readings domain.HealthRecordRepository) *ChartsService {
	return &ChartsService{patients: patients, readings: readings}
}

// HistoryPoint is a single data point returned by PatientHistory.
type HistoryPoint struct {
	Date      string          `json:"date"`
	At        time.Time       `json:"at"`
	Glucose   decimal.Decimal `json:"glucose"`
	Systolic  int             `json:"systolic"`
	Diastolic int             `json:"diastolic"`
	Weight    *WeightPoint    `json:"weight"`
}

// WeightPoint is the optional weight value within a HistoryPoint.
type WeightPoint struct {
	Value decimal.Decimal   `json:"value"`
	Unit  domain.WeightUnit `json:"unit"`
}

// PatientHistory returns one point per reading, oldest first, with weights
// converted to the requested unit.
func (s *ChartsService) PatientHistory(ctx context.Context, patientID int64, unit string) ([]HistoryPoint, error) {
	u, err := domain.ParseWeightUnit(unit)
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	readings, err := s.readings.ListReadings(ctx, patientID)
	if err != nil {
		return nil, err
	}

	points := make([]HistoryPoint, 0, len(readings))
	for _, r := range readings {
		var wp *WeightPoint
		if r.WeightKg != nil {
			wp = &WeightPoint{
				Value: domain.ConvertWeight(*r.WeightKg, domain.Kilograms, u).Round(1),
				Unit:  u,
			}
		}
		points = append(points, HistoryPoint{
			Date:      r.RecordedAt.In(time.Local).Format(domain.DateLayout),
			At:        r.RecordedAt,
			Glucose:   r.BloodGlucose,
			Systolic:  r.Systolic,
			Diastolic: r.Diastolic,
			Weight:    wp,
		})
	}
	return points, nil
}
