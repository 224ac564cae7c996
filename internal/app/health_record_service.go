package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"healthtracker/internal/domain"
)

// HealthRecordService encapsulates health reading use cases.
type HealthRecordService struct {
	patients domain.PatientRepository
	repo     domain.HealthRecordRepository
	risk     *RiskService
	log      zerolog.Logger
	now      func() time.Time
}

// NewHealthRecordService creates a HealthRecordService. Every stored reading
// is followed by a reassessment through risk.
func NewHealthRecordService(patients domain.PatientRepository, repo domain.HealthRecordRepository, risk *RiskService, log zerolog.Logger) *HealthRecordService {
	return &HealthRecordService{patients: patients, repo: repo, risk: risk, log: log, now: time.Now}
}

// Record validates and stores a reading, then reassesses the patient.
//
// When the reading is stored but the assessment fails, the reading is
// returned together with an error wrapping domain.ErrAssessmentFailed.
func (s *HealthRecordService) Record(ctx context.Context, in domain.HealthReadingInput) (*domain.HealthReading, *domain.RiskAssessment, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := s.patients.GetPatient(ctx, in.PatientID); err != nil {
		return nil, nil, err
	}

	reading, err := s.repo.AddHealthReading(ctx, in, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("add health reading: %w", err)
	}

	assessment, err := s.risk.Reassess(ctx, in.PatientID)
	if err != nil {
		s.log.Error().Err(err).
			Int64("patient_id", in.PatientID).
			Int64("reading_id", reading.ID).
			Msg("risk assessment after new reading")
		return reading, nil, errors.Join(domain.ErrAssessmentFailed, err)
	}
	return reading, assessment, nil
}

// History returns every reading of a patient, oldest first.
func (s *HealthRecordService) History(ctx context.Context, patientID int64) ([]domain.HealthReading, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListReadings(ctx, patientID)
}

// OverviewRow pairs a patient with their latest reading, if any.
type OverviewRow struct {
	Patient domain.Patient        `json:"patient"`
	Latest  *domain.HealthReading `json:"latest"`
}

// Overview lists every patient by name with their latest reading.
func (s *HealthRecordService) Overview(ctx context.Context) ([]OverviewRow, error) {
	patients, err := s.patients.ListPatients(ctx, domain.PatientQuery{Sort: domain.SortName})
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]OverviewRow, 0, len(patients))
	for _, p := range patients {
		latest, err := s.repo.ListRecentReadings(ctx, p.ID, 1)
		if err != nil {
			return nil, err
		}
		p.Age = domain.AgeOn(p.DateOfBirth, now)
		row := OverviewRow{Patient: p}
		if len(latest) > 0 {
			row.Latest = &latest[0]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
