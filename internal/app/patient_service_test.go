package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtracker/internal/app"
	"healthtracker/internal/domain"
)

func TestCreatePatient_NormalizesAndDerivesAge(t *testing.T) {
	var stored domain.PatientInput
	repo := &mockPatientRepo{
		createFn: func(_ context.Context, in domain.PatientInput, now time.Time) (*domain.Patient, error) {
			stored = in
			return &domain.Patient{ID: 4, FirstName: in.FirstName, LastName: in.LastName, DateOfBirth: in.DateOfBirth, CreatedAt: now}, nil
		},
	}
	svc := app.NewPatientService(repo)

	p, err := svc.Create(context.Background(), domain.PatientInput{
		FirstName: "  Grace ", LastName: "Hopper", DateOfBirth: "1906-12-09", BloodType: "ab+", Gender: "f",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.FirstName)
	assert.Equal(t, "AB+", stored.BloodType)
	assert.Equal(t, "F", stored.Gender)
	assert.Greater(t, p.Age, 100)
}

func TestCreatePatient_RejectsInvalid(t *testing.T) {
	called := false
	repo := &mockPatientRepo{
		createFn: func(context.Context, domain.PatientInput, time.Time) (*domain.Patient, error) {
			called = true
			return nil, nil
		},
	}
	svc := app.NewPatientService(repo)

	cases := []domain.PatientInput{
		{FirstName: "A", LastName: "Lovelace", DateOfBirth: "1990-01-01"},
		{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "01/01/1990"},
		{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "2999-01-01"},
		{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-01-01", BloodType: "C+"},
		{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-01-01", Gender: "X"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %+v", in)
	}
	assert.False(t, called)
}

func TestUpdatePatient_AppliesPatch(t *testing.T) {
	var updated domain.PatientInput
	repo := &mockPatientRepo{
		getFn: func(_ context.Context, id int64) (*domain.Patient, error) {
			return &domain.Patient{ID: id, FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1980-05-01", BloodType: "O+"}, nil
		},
		updateFn: func(_ context.Context, id int64, in domain.PatientInput, _ time.Time) (*domain.Patient, error) {
			updated = in
			return &domain.Patient{ID: id, FirstName: in.FirstName, LastName: in.LastName, DateOfBirth: in.DateOfBirth}, nil
		},
	}
	svc := app.NewPatientService(repo)

	name := "King"
	_, err := svc.Update(context.Background(), 2, domain.PatientPatch{LastName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "King", updated.LastName)
	assert.Equal(t, "O+", updated.BloodType)
}

func TestUpdatePatient_NotFound(t *testing.T) {
	repo := &mockPatientRepo{
		getFn: func(context.Context, int64) (*domain.Patient, error) { return nil, domain.ErrNotFound },
	}
	name := "King"
	_, err := app.NewPatientService(repo).Update(context.Background(), 2, domain.PatientPatch{LastName: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPatients_Query(t *testing.T) {
	var got domain.PatientQuery
	repo := &mockPatientRepo{
		listFn: func(_ context.Context, q domain.PatientQuery) ([]domain.Patient, error) {
			got = q
			return []domain.Patient{{ID: 1, DateOfBirth: "2000-01-01"}}, nil
		},
	}
	svc := app.NewPatientService(repo)

	_, err := svc.List(context.Background(), "risk", "high")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRisk, got.Sort)
	assert.Equal(t, domain.RiskHigh, got.Risk)

	_, err = svc.List(context.Background(), "bogus", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRecent, got.Sort)
	assert.Equal(t, domain.RiskLevel(""), got.Risk)

	_, err = svc.List(context.Background(), "", "severe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchPatients(t *testing.T) {
	type call struct {
		term  string
		id    int64
		limit int
	}
	var calls []call
	repo := &mockPatientRepo{
		searchFn: func(_ context.Context, term string, id int64, limit int) ([]domain.Patient, error) {
			calls = append(calls, call{term, id, limit})
			return []domain.Patient{{ID: 12, DateOfBirth: "1970-01-01"}}, nil
		},
	}
	svc := app.NewPatientService(repo)

	res, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Empty(t, calls, "blank terms never reach the store")

	_, err = svc.Search(context.Background(), " 12 ")
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "love")
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, call{"12", 12, app.SearchLimit}, calls[0])
	assert.Equal(t, call{"love", 0, app.SearchLimit}, calls[1])
}
