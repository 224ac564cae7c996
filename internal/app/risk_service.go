package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthtracker/internal/domain"
)

// RecentReadingWindow is how many readings are fetched before an
// assessment. Only the newest one is scored.
const RecentReadingWindow = 5

// AssessmentRecorder observes completed assessments (metrics).
type AssessmentRecorder interface {
	ObserveAssessment(a domain.RiskAssessment)
}

// RiskService runs the risk scorer against stored readings and keeps the
// append-only assessment history.
type RiskService struct {
	readings    domain.HealthRecordRepository
	assessments domain.RiskAssessmentRepository
	publisher   domain.AssessmentPublisher
	recorder    AssessmentRecorder
	log         zerolog.Logger
	now         func() time.Time

	locks sync.Map // patient id -> *sync.Mutex
}

// RiskOption configures a RiskService.
type RiskOption func(*RiskService)

// WithPublisher announces every new assessment through p.
func WithPublisher(p domain.AssessmentPublisher) RiskOption {
	return func(s *RiskService) { s.publisher = p }
}

// WithRecorder reports every new assessment to r.
func WithRecorder(r AssessmentRecorder) RiskOption {
	return func(s *RiskService) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) RiskOption {
	return func(s *RiskService) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RiskOption {
	return func(s *RiskService) { s.now = now }
}

// NewRiskService creates a RiskService backed by the given stores.
func NewRiskService(readings domain.HealthRecordRepository, assessments domain.RiskAssessmentRepository, opts ...RiskOption) *RiskService {
	s := &RiskService{
		readings:    readings,
		assessments: assessments,
		log:         zerolog.Nop(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reassess scores the patient's most recent reading and appends the result.
// It returns domain.ErrNoReadingAvailable when the patient has no readings.
func (s *RiskService) Reassess(ctx context.Context, patientID int64) (*domain.RiskAssessment, error) {
	mu := s.patientLock(patientID)
	mu.Lock()
	defer mu.Unlock()

	recent, err := s.readings.ListRecentReadings(ctx, patientID, RecentReadingWindow)
	if err != nil {
		return nil, fmt.Errorf("list recent readings: %w", err)
	}
	if len(recent) == 0 {
		return nil, domain.ErrNoReadingAvailable
	}

	a := domain.Assess(recent[0], patientID, s.now())
	id, err := s.assessments.AppendRiskAssessment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("append risk assessment: %w", err)
	}
	a.ID = id

	if s.recorder != nil {
		s.recorder.ObserveAssessment(a)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishAssessment(ctx, a); err != nil {
			s.log.Warn().Err(err).Int64("patient_id", patientID).Msg("publish risk assessment")
		}
	}

	s.log.Info().
		Int64("patient_id", patientID).
		Str("risk_level", string(a.RiskLevel)).
		Int("score", a.CalculatedScore).
		Time("next_assessment", a.NextAssessmentDate).
		Msg("risk assessed")
	return &a, nil
}

// Current returns the latest assessment, or nil when none exists.
func (s *RiskService) Current(ctx context.Context, patientID int64) (*domain.RiskAssessment, error) {
	return s.assessments.LatestRiskAssessment(ctx, patientID)
}

// History returns up to limit assessments, newest first.
func (s *RiskService) History(ctx context.Context, patientID int64, limit int) ([]domain.RiskAssessment, error) {
	return s.assessments.ListRiskAssessments(ctx, patientID, limit)
}

// Due returns the current assessments whose follow-up date has passed.
func (s *RiskService) Due(ctx context.Context) ([]domain.RiskAssessment, error) {
	return s.assessments.ListDueRiskAssessments(ctx, s.now())
}

// Forget drops the per-patient lock of a deleted patient.
func (s *RiskService) Forget(patientID int64) {
	s.locks.Delete(patientID)
}

// patientLock returns the patient's lock. Entries live until Forget.
func (s *RiskService) patientLock(patientID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(patientID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
