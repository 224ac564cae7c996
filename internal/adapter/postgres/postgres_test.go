package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"healthtracker/internal/domain"
)

// openTestDB starts a throwaway PostgreSQL container and opens a migrated DB on it.
func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("healthtracker"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, dsn
}

func TestPostgres_Integration(t *testing.T) {
	db, dsn := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("patients", func(t *testing.T) {
		p, err := db.CreatePatient(ctx, domain.PatientInput{
			FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1985-12-10", BloodType: "O+", Gender: "F",
		}, now)
		require.NoError(t, err)
		assert.Equal(t, "1985-12-10", p.DateOfBirth)
		assert.Nil(t, p.RiskLevel)

		_, err = db.GetPatient(ctx, p.ID+1000)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		found, err := db.SearchPatients(ctx, "LOVE", 0, 5)
		require.NoError(t, err)
		require.Len(t, found, 1)

		found, err = db.SearchPatients(ctx, "100%", 0, 5)
		require.NoError(t, err)
		assert.Empty(t, found, "like wildcards in the term are literal")
	})

	t.Run("readings and assessments", func(t *testing.T) {
		p, err := db.CreatePatient(ctx, domain.PatientInput{FirstName: "Bob", LastName: "Young", DateOfBirth: "1970-01-01"}, now)
		require.NoError(t, err)

		w := decimal.RequireFromString("81.25")
		for i := 0; i < 6; i++ {
			g := decimal.NewFromInt(int64(100 + i))
			in := domain.HealthReadingInput{
				PatientID: p.ID, BloodGlucose: &g, Systolic: 120, Diastolic: 80,
			}
			if i == 5 {
				in.WeightKg = &w
			}
			_, err := db.AddHealthReading(ctx, in, now.Add(time.Duration(i)*time.Hour))
			require.NoError(t, err)
		}

		recent, err := db.ListRecentReadings(ctx, p.ID, 5)
		require.NoError(t, err)
		require.Len(t, recent, 5)
		assert.True(t, recent[0].BloodGlucose.Equal(decimal.NewFromInt(105)))
		require.NotNil(t, recent[0].WeightKg)
		assert.True(t, recent[0].WeightKg.Equal(w))
		assert.Nil(t, recent[1].WeightKg)

		_, err = db.AppendRiskAssessment(ctx, domain.Assess(recent[0], p.ID, now.AddDate(0, 0, -100)))
		require.NoError(t, err)
		latest, err := db.AppendRiskAssessment(ctx, domain.RiskAssessment{
			PatientID: p.ID, RiskLevel: domain.RiskHigh, CalculatedScore: 5,
			AssessmentDate: now, NextAssessmentDate: now.AddDate(0, 0, 30),
		})
		require.NoError(t, err)

		cur, err := db.LatestRiskAssessment(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, latest, cur.ID)

		got, err := db.GetPatient(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got.RiskLevel)
		assert.Equal(t, domain.RiskHigh, *got.RiskLevel)

		high, err := db.ListPatients(ctx, domain.PatientQuery{Sort: domain.SortRisk, Risk: domain.RiskHigh})
		require.NoError(t, err)
		require.Len(t, high, 1)
		assert.Equal(t, p.ID, high[0].ID)

		// The superseded assessment was overdue, the current one is not.
		due, err := db.ListDueRiskAssessments(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, due)
		due, err = db.ListDueRiskAssessments(ctx, now.AddDate(0, 0, 31))
		require.NoError(t, err)
		assert.Len(t, due, 1)

		one := decimal.NewFromInt(1)
		_, err = db.AddHealthReading(ctx, domain.HealthReadingInput{PatientID: 999999, BloodGlucose: &one, Systolic: 100, Diastolic: 60}, now)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("screenings and metrics cascade", func(t *testing.T) {
		p, err := db.CreatePatient(ctx, domain.PatientInput{FirstName: "Cy", LastName: "Miller", DateOfBirth: "1990-03-03"}, now)
		require.NoError(t, err)

		result := decimal.RequireFromString("6.50")
		_, err = db.AddScreening(ctx, domain.ScreeningInput{
			PatientID: p.ID, ScreenType: "HbA1c Test", Result: &result, ResultStatus: "High",
		}, now)
		require.NoError(t, err)
		bmi, level := decimal.RequireFromString("24.10"), decimal.NewFromInt(99)
		_, err = db.AddDiabetesMetric(ctx, domain.DiabetesMetricInput{
			PatientID: p.ID, BloodGlucoseLevel: &level, Systolic: 118, Diastolic: 76,
			BMI: &bmi, ScreenLocation: "Clinic", RecordBy: "nurse",
		}, now)
		require.NoError(t, err)

		metrics, err := db.ListDiabetesMetrics(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, metrics, 1)
		require.NotNil(t, metrics[0].BMI)
		assert.True(t, metrics[0].BMI.Equal(bmi))

		require.NoError(t, db.DeletePatient(ctx, p.ID))
		assert.ErrorIs(t, db.DeletePatient(ctx, p.ID), domain.ErrNotFound)
		screenings, err := db.ListScreenings(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, screenings)
	})

	t.Run("users and sessions", func(t *testing.T) {
		u, err := db.Create(ctx, "clinician", "hash")
		require.NoError(t, err)
		_, err = db.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		sessions := NewSessionRepo(db)
		require.NoError(t, sessions.Create(ctx, u.ID, "tok", "ua", "10.0.0.1", time.Now().Add(time.Hour)))
		s, err := sessions.GetByToken(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "ua", s.UserAgent)
		require.NoError(t, sessions.Delete(ctx, "tok"))
		_, err = sessions.GetByToken(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("migrate down and up", func(t *testing.T) {
		require.NoError(t, MigrateDown(dsn))
		require.NoError(t, MigrateUp(dsn))
		require.NoError(t, MigrateUp(dsn))
		n, err := db.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
