package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtracker/internal/app"
	"healthtracker/internal/domain"
)

var fixedNow = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func readingOf(glucose string, sys, dia int) domain.HealthReading {
	return domain.HealthReading{BloodGlucose: decimal.RequireFromString(glucose), Systolic: sys, Diastolic: dia}
}

func TestReassess_ScoresOnlyNewestReading(t *testing.T) {
	var askedLimit int
	readings := &mockReadingRepo{
		recentFn: func(_ context.Context, patientID int64, limit int) ([]domain.HealthReading, error) {
			askedLimit = limit
			return []domain.HealthReading{
				readingOf("250", 150, 95), // newest
				readingOf("100", 120, 80),
				readingOf("100", 120, 80),
			}, nil
		},
	}
	var appended domain.RiskAssessment
	assessments := &mockAssessmentRepo{
		appendFn: func(_ context.Context, a domain.RiskAssessment) (int64, error) {
			appended = a
			return 42, nil
		},
	}
	pub := &mockPublisher{}
	rec := &mockRecorder{}

	svc := app.NewRiskService(readings, assessments,
		app.WithClock(fixedClock), app.WithPublisher(pub), app.WithRecorder(rec))
	got, err := svc.Reassess(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, app.RecentReadingWindow, askedLimit)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, int64(7), got.PatientID)
	assert.Equal(t, 5, got.CalculatedScore)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)
	assert.Equal(t, fixedNow, got.AssessmentDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), got.NextAssessmentDate)
	assert.Equal(t, domain.RiskHigh, appended.RiskLevel)

	require.Len(t, pub.published, 1)
	assert.Equal(t, int64(42), pub.published[0].ID)
	require.Len(t, rec.observed, 1)
}

func TestReassess_NoReadings(t *testing.T) {
	appended := false
	svc := app.NewRiskService(&mockReadingRepo{}, &mockAssessmentRepo{
		appendFn: func(_ context.Context, _ domain.RiskAssessment) (int64, error) {
			appended = true
			return 1, nil
		},
	})

	_, err := svc.Reassess(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoReadingAvailable)
	assert.False(t, appended, "nothing must be appended without a reading")
}

func TestReassess_StoreErrors(t *testing.T) {
	svc := app.NewRiskService(&mockReadingRepo{
		recentFn: func(context.Context, int64, int) ([]domain.HealthReading, error) {
			return nil, errors.New("db down")
		},
	}, &mockAssessmentRepo{})
	_, err := svc.Reassess(context.Background(), 1)
	assert.Error(t, err)

	svc = app.NewRiskService(&mockReadingRepo{
		recentFn: func(context.Context, int64, int) ([]domain.HealthReading, error) {
			return []domain.HealthReading{readingOf("100", 120, 80)}, nil
		},
	}, &mockAssessmentRepo{
		appendFn: func(context.Context, domain.RiskAssessment) (int64, error) {
			return 0, errors.New("insert failed")
		},
	})
	_, err = svc.Reassess(context.Background(), 1)
	assert.ErrorContains(t, err, "insert failed")
}

func TestReassess_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	svc := app.NewRiskService(&mockReadingRepo{
		recentFn: func(context.Context, int64, int) ([]domain.HealthReading, error) {
			return []domain.HealthReading{readingOf("65", 110, 70)}, nil
		},
	}, &mockAssessmentRepo{}, app.WithPublisher(pub), app.WithClock(fixedClock))

	got, err := svc.Reassess(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskMedium, got.RiskLevel)
	assert.Equal(t, fixedNow.AddDate(0, 0, 60), got.NextAssessmentDate)
	assert.Len(t, pub.published, 1)
}

func TestReassess_SerializesSamePatient(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	readings := &mockReadingRepo{
		recentFn: func(context.Context, int64, int) ([]domain.HealthReading, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			return []domain.HealthReading{readingOf("100", 120, 80)}, nil
		},
	}
	svc := app.NewRiskService(readings, &mockAssessmentRepo{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Reassess(context.Background(), 11)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInFlight)
}

func TestRiskService_Due(t *testing.T) {
	var asOf time.Time
	svc := app.NewRiskService(&mockReadingRepo{}, &mockAssessmentRepo{
		dueFn: func(_ context.Context, at time.Time) ([]domain.RiskAssessment, error) {
			asOf = at
			return []domain.RiskAssessment{{PatientID: 3, RiskLevel: domain.RiskHigh}}, nil
		},
	}, app.WithClock(fixedClock))

	due, err := svc.Due(context.Background())
	require.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, fixedNow, asOf)
}

func TestForget_ReleasesPatientLock(t *testing.T) {
	readings := &mockReadingRepo{
		recentFn: func(_ context.Context, _ int64, _ int) ([]domain.HealthReading, error) {
			return []domain.HealthReading{readingOf("100", 120, 80)}, nil
		},
	}
	svc := app.NewRiskService(readings, &mockAssessmentRepo{})

	for _, id := range []int64{1, 2} {
		_, err := svc.Reassess(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, svc.TrackedLocks())

	svc.Forget(1)
	assert.Equal(t, 1, svc.TrackedLocks())
}
