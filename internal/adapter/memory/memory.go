// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"healthtracker/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	patients    map[int64]*domain.Patient
	readings    []domain.HealthReading
	assessments []domain.RiskAssessment
	screenings  []domain.Screening
	metrics     []domain.DiabetesMetric
	users       []*domain.User
	sessions    map[string]*domain.Session

	patientIDCounter    int64
	readingIDCounter    int64
	assessmentIDCounter int64
	screeningIDCounter  int64
	metricIDCounter     int64
	userIDCounter       int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		patients: make(map[int64]*domain.Patient),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var (
	_ domain.PatientRepository        = (*DB)(nil)
	_ domain.HealthRecordRepository   = (*DB)(nil)
	_ domain.RiskAssessmentRepository = (*DB)(nil)
	_ domain.ScreeningRepository      = (*DB)(nil)
	_ domain.DiabetesMetricRepository = (*DB)(nil)
	_ domain.UserRepository           = (*DB)(nil)
	_ domain.SessionRepository        = (*SessionRepo)(nil)
)

// --- PatientRepository ---

// CreatePatient stores a new patient.
func (db *DB) CreatePatient(ctx context.Context, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.patientIDCounter++
	p := &domain.Patient{
		ID:          db.patientIDCounter,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		BloodType:   in.BloodType,
		Gender:      in.Gender,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	db.patients[p.ID] = p
	return db.patientView(p), nil
}

// GetPatient retrieves a patient by ID.
func (db *DB) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return db.patientView(p), nil
}

// UpdatePatient replaces the writable fields of a patient.
func (db *DB) UpdatePatient(ctx context.Context, id int64, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.DateOfBirth = in.DateOfBirth
	p.BloodType = in.BloodType
	p.Gender = in.Gender
	p.UpdatedAt = now.UTC()
	return db.patientView(p), nil
}

// DeletePatient removes a patient and every record that references it.
func (db *DB) DeletePatient(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.patients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(db.patients, id)
	db.readings = filter(db.readings, func(r domain.HealthReading) bool { return r.PatientID != id })
	db.assessments = filter(db.assessments, func(a domain.RiskAssessment) bool { return a.PatientID != id })
	db.screenings = filter(db.screenings, func(s domain.Screening) bool { return s.PatientID != id })
	db.metrics = filter(db.metrics, func(m domain.DiabetesMetric) bool { return m.PatientID != id })
	return nil
}

// ListPatients lists patients in the requested order.
func (db *DB) ListPatients(ctx context.Context, q domain.PatientQuery) ([]domain.Patient, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Patient, 0, len(db.patients))
	for _, p := range db.patients {
		v := db.patientView(p)
		if q.Risk != "" && (v.RiskLevel == nil || *v.RiskLevel != q.Risk) {
			continue
		}
		result = append(result, *v)
	}

	switch q.Sort {
	case domain.SortName:
		sort.Slice(result, func(i, j int) bool { return byName(result[i], result[j]) })
	case domain.SortRisk:
		sort.Slice(result, func(i, j int) bool {
			ri, rj := rank(result[i]), rank(result[j])
			if ri != rj {
				return ri < rj
			}
			return byName(result[i], result[j])
		})
	default:
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].ID > result[j].ID
		})
	}
	return result, nil
}

// SearchPatients matches names case-insensitively or the exact id.
func (db *DB) SearchPatients(ctx context.Context, term string, id int64, limit int) ([]domain.Patient, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	needle := strings.ToLower(term)
	result := []domain.Patient{}
	for _, p := range db.patients {
		if (id > 0 && p.ID == id) ||
			strings.Contains(strings.ToLower(p.FirstName), needle) ||
			strings.Contains(strings.ToLower(p.LastName), needle) {
			result = append(result, *db.patientView(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return byName(result[i], result[j]) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// patientView returns a copy of p with its current risk level. Callers hold mu.
func (db *DB) patientView(p *domain.Patient) *domain.Patient {
	v := *p
	if a := db.latestAssessment(p.ID); a != nil {
		level := a.RiskLevel
		v.RiskLevel = &level
	}
	return &v
}

func byName(a, b domain.Patient) bool {
	al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
	if al != bl {
		return al < bl
	}
	af, bf := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)
	if af != bf {
		return af < bf
	}
	return a.ID < b.ID
}

func rank(p domain.Patient) int {
	if p.RiskLevel == nil {
		return domain.RiskLevel("").Rank()
	}
	return p.RiskLevel.Rank()
}

// --- HealthRecordRepository ---

// AddHealthReading stores a reading.
func (db *DB) AddHealthReading(ctx context.Context, in domain.HealthReadingInput, recordedAt time.Time) (*domain.HealthReading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.patients[in.PatientID]; !ok {
		return nil, domain.ErrNotFound
	}

	db.readingIDCounter++
	r := domain.HealthReading{
		ID:           db.readingIDCounter,
		PatientID:    in.PatientID,
		BloodGlucose: *in.BloodGlucose,
		Systolic:     in.Systolic,
		Diastolic:    in.Diastolic,
		WeightKg:     in.WeightKg,
		Notes:        in.Notes,
		RecordedAt:   recordedAt.UTC(),
	}
	db.readings = append(db.readings, r)
	return &r, nil
}

// ListRecentReadings lists up to limit readings, newest first.
func (db *DB) ListRecentReadings(ctx context.Context, patientID int64, limit int) ([]domain.HealthReading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.readingsOf(patientID)
	sort.Slice(result, func(i, j int) bool { return newer(result[i], result[j]) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListReadings lists every reading of a patient, oldest first.
func (db *DB) ListReadings(ctx context.Context, patientID int64) ([]domain.HealthReading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.readingsOf(patientID)
	sort.Slice(result, func(i, j int) bool { return newer(result[j], result[i]) })
	return result, nil
}

func (db *DB) readingsOf(patientID int64) []domain.HealthReading {
	result := []domain.HealthReading{}
	for _, r := range db.readings {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	return result
}

func newer(a, b domain.HealthReading) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return a.ID > b.ID
}

// --- RiskAssessmentRepository ---

// AppendRiskAssessment appends an assessment to the patient's history.
func (db *DB) AppendRiskAssessment(ctx context.Context, a domain.RiskAssessment) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.patients[a.PatientID]; !ok {
		return 0, domain.ErrNotFound
	}

	db.assessmentIDCounter++
	a.ID = db.assessmentIDCounter
	a.AssessmentDate = a.AssessmentDate.UTC()
	a.NextAssessmentDate = a.NextAssessmentDate.UTC()
	db.assessments = append(db.assessments, a)
	return a.ID, nil
}

// LatestRiskAssessment returns the most recently created assessment, or nil.
func (db *DB) LatestRiskAssessment(ctx context.Context, patientID int64) (*domain.RiskAssessment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a := db.latestAssessment(patientID)
	if a == nil {
		return nil, nil
	}
	ret := *a
	return &ret, nil
}

// ListRiskAssessments lists up to limit assessments, newest first.
func (db *DB) ListRiskAssessments(ctx context.Context, patientID int64, limit int) ([]domain.RiskAssessment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.RiskAssessment{}
	// Appends are ordered, so walking backwards yields newest first.
	for i := len(db.assessments) - 1; i >= 0 && len(result) < limit; i-- {
		if db.assessments[i].PatientID == patientID {
			result = append(result, db.assessments[i])
		}
	}
	return result, nil
}

// ListDueRiskAssessments lists current assessments whose follow-up date has passed.
func (db *DB) ListDueRiskAssessments(ctx context.Context, asOf time.Time) ([]domain.RiskAssessment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.RiskAssessment{}
	for id := range db.patients {
		a := db.latestAssessment(id)
		if a != nil && !a.NextAssessmentDate.After(asOf) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NextAssessmentDate.Before(result[j].NextAssessmentDate)
	})
	return result, nil
}

// latestAssessment returns the newest assessment of a patient. Callers hold mu.
func (db *DB) latestAssessment(patientID int64) *domain.RiskAssessment {
	for i := len(db.assessments) - 1; i >= 0; i-- {
		if db.assessments[i].PatientID == patientID {
			return &db.assessments[i]
		}
	}
	return nil
}

// --- ScreeningRepository ---

// AddScreening stores a screening.
func (db *DB) AddScreening(ctx context.Context, in domain.ScreeningInput, createdAt time.Time) (*domain.Screening, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.patients[in.PatientID]; !ok {
		return nil, domain.ErrNotFound
	}

	db.screeningIDCounter++
	s := domain.Screening{
		ID:           db.screeningIDCounter,
		PatientID:    in.PatientID,
		ScreenType:   in.ScreenType,
		Result:       *in.Result,
		ResultStatus: in.ResultStatus,
		CreatedAt:    createdAt.UTC(),
	}
	db.screenings = append(db.screenings, s)
	return &s, nil
}

// ListScreenings lists a patient's screenings, newest first.
func (db *DB) ListScreenings(ctx context.Context, patientID int64) ([]domain.Screening, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.Screening{}
	for i := len(db.screenings) - 1; i >= 0; i-- {
		if db.screenings[i].PatientID == patientID {
			result = append(result, db.screenings[i])
		}
	}
	return result, nil
}

// --- DiabetesMetricRepository ---

// AddDiabetesMetric stores a diabetes metric.
func (db *DB) AddDiabetesMetric(ctx context.Context, in domain.DiabetesMetricInput, createdAt time.Time) (*domain.DiabetesMetric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.patients[in.PatientID]; !ok {
		return nil, domain.ErrNotFound
	}

	db.metricIDCounter++
	m := domain.DiabetesMetric{
		ID:                db.metricIDCounter,
		PatientID:         in.PatientID,
		BloodGlucoseLevel: *in.BloodGlucoseLevel,
		Systolic:          in.Systolic,
		Diastolic:         in.Diastolic,
		BMI:               in.BMI,
		ScreenLocation:    in.ScreenLocation,
		RecordBy:          in.RecordBy,
		CreatedAt:         createdAt.UTC(),
	}
	db.metrics = append(db.metrics, m)
	return &m, nil
}

// ListDiabetesMetrics lists a patient's metrics, newest first.
func (db *DB) ListDiabetesMetrics(ctx context.Context, patientID int64) ([]domain.DiabetesMetric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.DiabetesMetric{}
	for i := len(db.metrics) - 1; i >= 0; i-- {
		if db.metrics[i].PatientID == patientID {
			result = append(result, db.metrics[i])
		}
	}
	return result, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. Expiry is left to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ret := *s
	return &ret, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
