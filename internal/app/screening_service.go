package app

import (
	"context"
	"strings"
	"time"

	"healthtracker/internal/domain"
)

// ScreeningService encapsulates screening use cases.
type ScreeningService struct {
	patients domain.PatientRepository
	repo     domain.ScreeningRepository
	now      func() time.Time
}

// NewScreeningService creates a ScreeningService backed by the given repositories.
func NewScreeningService(patients domain.PatientRepository, repo domain.ScreeningRepository) *ScreeningService {
	return &ScreeningService{patients: patients, repo: repo, now: time.Now}
}

// Record validates and stores a screening for an existing patient.
func (s *ScreeningService) Record(ctx context.Context, in domain.ScreeningInput) (*domain.Screening, error) {
	in.ScreenType = strings.TrimSpace(in.ScreenType)
	in.ResultStatus = strings.TrimSpace(in.ResultStatus)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	return s.repo.AddScreening(ctx, in, s.now())
}

// List returns a patient's screenings, newest first.
func (s *ScreeningService) List(ctx context.Context, patientID int64) ([]domain.Screening, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListScreenings(ctx, patientID)
}
