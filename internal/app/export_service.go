package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"healthtracker/internal/domain"
)

var exportHeader = []string{
	"recorded_at", "blood_glucose", "blood_pressure_systolic",
	"blood_pressure_diastolic", "weight_kg", "notes",
}

// ExportService writes patient data in portable formats.
type ExportService struct {
	patients domain.PatientRepository
	readings domain.HealthRecordRepository
}

// NewExportService creates an ExportService backed by the given repositories.
func NewExportService(patients domain.PatientRepository, readings domain.HealthRecordRepository) *ExportService {
	return &ExportService{patients: patients, readings: readings}
}

// WriteHealthRecordsCSV writes a header and one row per reading, oldest first.
func (s *ExportService) WriteHealthRecordsCSV(ctx context.Context, patientID int64, w io.Writer) error {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return err
	}
	readings, err := s.readings.ListReadings(ctx, patientID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range readings {
		weight := ""
		if r.WeightKg != nil {
			weight = r.WeightKg.String()
		}
		row := []string{
			r.RecordedAt.UTC().Format(time.RFC3339),
			r.BloodGlucose.String(),
			strconv.Itoa(r.Systolic),
			strconv.Itoa(r.Diastolic),
			weight,
			r.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
