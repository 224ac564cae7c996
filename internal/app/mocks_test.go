package app_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"healthtracker/internal/domain"
)

type mockPatientRepo struct {
	createFn func(ctx context.Context, in domain.PatientInput, now time.Time) (*domain.Patient, error)
	getFn    func(ctx context.Context, id int64) (*domain.Patient, error)
	updateFn func(ctx context.Context, id int64, in domain.PatientInput, now time.Time) (*domain.Patient, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context, q domain.PatientQuery) ([]domain.Patient, error)
	searchFn func(ctx context.Context, term string, id int64, limit int) ([]domain.Patient, error)
}

func (m *mockPatientRepo) CreatePatient(ctx context.Context, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in, now)
	}
	return &domain.Patient{ID: 1, FirstName: in.FirstName, LastName: in.LastName, DateOfBirth: in.DateOfBirth, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *mockPatientRepo) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &domain.Patient{ID: id, FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1980-05-01"}, nil
}

func (m *mockPatientRepo) UpdatePatient(ctx context.Context, id int64, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in, now)
	}
	return &domain.Patient{ID: id, FirstName: in.FirstName, LastName: in.LastName, DateOfBirth: in.DateOfBirth, UpdatedAt: now}, nil
}

func (m *mockPatientRepo) DeletePatient(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPatientRepo) ListPatients(ctx context.Context, q domain.PatientQuery) ([]domain.Patient, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, nil
}

func (m *mockPatientRepo) SearchPatients(ctx context.Context, term string, id int64, limit int) ([]domain.Patient, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, term, id, limit)
	}
	return nil, nil
}

type mockReadingRepo struct {
	addFn    func(ctx context.Context, in domain.HealthReadingInput, at time.Time) (*domain.HealthReading, error)
	recentFn func(ctx context.Context, patientID int64, limit int) ([]domain.HealthReading, error)
	listFn   func(ctx context.Context, patientID int64) ([]domain.HealthReading, error)
}

func (m *mockReadingRepo) AddHealthReading(ctx context.Context, in domain.HealthReadingInput, at time.Time) (*domain.HealthReading, error) {
	if m.addFn != nil {
		return m.addFn(ctx, in, at)
	}
	return &domain.HealthReading{
		ID: 1, PatientID: in.PatientID, BloodGlucose: *in.BloodGlucose,
		Systolic: in.Systolic, Diastolic: in.Diastolic, WeightKg: in.WeightKg, RecordedAt: at,
	}, nil
}

func (m *mockReadingRepo) ListRecentReadings(ctx context.Context, patientID int64, limit int) ([]domain.HealthReading, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, patientID, limit)
	}
	return nil, nil
}

func (m *mockReadingRepo) ListReadings(ctx context.Context, patientID int64) ([]domain.HealthReading, error) {
	if m.listFn != nil {
		return m.listFn(ctx, patientID)
	}
	return nil, nil
}

type mockAssessmentRepo struct {
	appendFn func(ctx context.Context, a domain.RiskAssessment) (int64, error)
	latestFn func(ctx context.Context, patientID int64) (*domain.RiskAssessment, error)
	listFn   func(ctx context.Context, patientID int64, limit int) ([]domain.RiskAssessment, error)
	dueFn    func(ctx context.Context, asOf time.Time) ([]domain.RiskAssessment, error)
}

func (m *mockAssessmentRepo) AppendRiskAssessment(ctx context.Context, a domain.RiskAssessment) (int64, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, a)
	}
	return 1, nil
}

func (m *mockAssessmentRepo) LatestRiskAssessment(ctx context.Context, patientID int64) (*domain.RiskAssessment, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, patientID)
	}
	return nil, nil
}

func (m *mockAssessmentRepo) ListRiskAssessments(ctx context.Context, patientID int64, limit int) ([]domain.RiskAssessment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, patientID, limit)
	}
	return nil, nil
}

func (m *mockAssessmentRepo) ListDueRiskAssessments(ctx context.Context, asOf time.Time) ([]domain.RiskAssessment, error) {
	if m.dueFn != nil {
		return m.dueFn(ctx, asOf)
	}
	return nil, nil
}

type mockPublisher struct {
	published []domain.RiskAssessment
	err       error
}

func (m *mockPublisher) PublishAssessment(_ context.Context, a domain.RiskAssessment) error {
	m.published = append(m.published, a)
	return m.err
}

type mockRecorder struct {
	observed []domain.RiskAssessment
}

func (m *mockRecorder) ObserveAssessment(a domain.RiskAssessment) {
	m.observed = append(m.observed, a)
}

type mockScreeningRepo struct {
	addFn  func(ctx context.Context, in domain.ScreeningInput, at time.Time) (*domain.Screening, error)
	listFn func(ctx context.Context, patientID int64) ([]domain.Screening, error)
}

func (m *mockScreeningRepo) AddScreening(ctx context.Context, in domain.ScreeningInput, at time.Time) (*domain.Screening, error) {
	if m.addFn != nil {
		return m.addFn(ctx, in, at)
	}
	return &domain.Screening{ID: 1, PatientID: in.PatientID, ScreenType: in.ScreenType, Result: *in.Result, ResultStatus: in.ResultStatus, CreatedAt: at}, nil
}

func (m *mockScreeningRepo) ListScreenings(ctx context.Context, patientID int64) ([]domain.Screening, error) {
	if m.listFn != nil {
		return m.listFn(ctx, patientID)
	}
	return nil, nil
}

type mockDiabetesRepo struct {
	addFn  func(ctx context.Context, in domain.DiabetesMetricInput, at time.Time) (*domain.DiabetesMetric, error)
	listFn func(ctx context.Context, patientID int64) ([]domain.DiabetesMetric, error)
}

func (m *mockDiabetesRepo) AddDiabetesMetric(ctx context.Context, in domain.DiabetesMetricInput, at time.Time) (*domain.DiabetesMetric, error) {
	if m.addFn != nil {
		return m.addFn(ctx, in, at)
	}
	return &domain.DiabetesMetric{ID: 1, PatientID: in.PatientID, RecordBy: in.RecordBy, CreatedAt: at}, nil
}

func (m *mockDiabetesRepo) ListDiabetesMetrics(ctx context.Context, patientID int64) ([]domain.DiabetesMetric, error) {
	if m.listFn != nil {
		return m.listFn(ctx, patientID)
	}
	return nil, nil
}

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
