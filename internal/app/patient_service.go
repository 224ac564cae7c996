package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"healthtracker/internal/domain"
)

// SearchLimit caps patient search results.
const SearchLimit = 5

// PatientService encapsulates patient management use cases.
type PatientService struct {
	repo domain.PatientRepository
	now  func() time.Time
}

// NewPatientService creates a PatientService backed by the given repository.
func NewPatientService(repo domain.PatientRepository) *PatientService {
	return &PatientService{repo: repo, now: time.Now}
}

// Create validates and stores a new patient.
func (s *PatientService) Create(ctx context.Context, in domain.PatientInput) (*domain.Patient, error) {
	in = in.Normalize()
	now := s.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}
	p, err := s.repo.CreatePatient(ctx, in, now)
	if err != nil {
		return nil, err
	}
	return s.withAge(p, now), nil
}

// Get returns a patient with derived age and current risk level.
func (s *PatientService) Get(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAge(p, s.now()), nil
}

// Update applies a partial update.
func (s *PatientService) Update(ctx context.Context, id int64, patch domain.PatientPatch) (*domain.Patient, error) {
	cur, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	in := patch.Apply(cur.Input()).Normalize()
	now := s.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdatePatient(ctx, id, in, now)
	if err != nil {
		return nil, err
	}
	return s.withAge(p, now), nil
}

// Delete removes a patient and everything recorded for them.
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeletePatient(ctx, id)
}

// List returns patients ordered by sort ("recent", "name" or "risk") and
// optionally filtered by risk level in any letter case.
func (s *PatientService) List(ctx context.Context, sort, risk string) ([]domain.Patient, error) {
	q := domain.PatientQuery{Sort: domain.SortRecent}
	switch domain.PatientSort(sort) {
	case domain.SortName, domain.SortRisk:
		q.Sort = domain.PatientSort(sort)
	}
	if risk != "" {
		level, err := domain.ParseRiskLevel(risk)
		if err != nil {
			return nil, err
		}
		q.Risk = level
	}

	patients, err := s.repo.ListPatients(ctx, q)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range patients {
		patients[i].Age = domain.AgeOn(patients[i].DateOfBirth, now)
	}
	return patients, nil
}

// Search finds up to SearchLimit patients by name fragment or exact id.
// A blank term yields no results.
func (s *PatientService) Search(ctx context.Context, term string) ([]domain.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Patient{}, nil
	}
	var id int64
	if n, err := strconv.ParseInt(term, 10, 64); err == nil && n > 0 {
		id = n
	}
	patients, err := s.repo.SearchPatients(ctx, term, id, SearchLimit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range patients {
		patients[i].Age = domain.AgeOn(patients[i].DateOfBirth, now)
	}
	return patients, nil
}

func (s *PatientService) withAge(p *domain.Patient, now time.Time) *domain.Patient {
	p.Age = domain.AgeOn(p.DateOfBirth, now)
	return p
}
