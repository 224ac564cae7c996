package app

import (
	"context"
	"strings"
	"time"

	"healthtracker/internal/domain"
)

// DiabetesService encapsulates diabetes metric use cases.
type DiabetesService struct {
	patients domain.PatientRepository
	repo     domain.DiabetesMetricRepository
	now      func() time.Time
}

// NewDiabetesService creates a DiabetesService backed by the given repositories.
func NewDiabetesService(patients domain.PatientRepository, repo domain.DiabetesMetricRepository) *DiabetesService {
	return &DiabetesService{patients: patients, repo: repo, now: time.Now}
}

// Record validates and stores a diabetes metric for an existing patient.
func (s *DiabetesService) Record(ctx context.Context, in domain.DiabetesMetricInput) (*domain.DiabetesMetric, error) {
	in.ScreenLocation = strings.TrimSpace(in.ScreenLocation)
	in.RecordBy = strings.TrimSpace(in.RecordBy)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	return s.repo.AddDiabetesMetric(ctx, in, s.now())
}

// List returns a patient's metrics, newest first.
func (s *DiabetesService) List(ctx context.Context, patientID int64) ([]domain.DiabetesMetric, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListDiabetesMetrics(ctx, patientID)
}
