package domain

import (
	"context"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// BloodTypes lists the accepted ABO/Rh blood types.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// Patient is a person whose health is tracked.
type Patient struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth string     `json:"dateOfBirth"`
	BloodType   string     `json:"bloodType,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Age         int        `json:"age"`
	RiskLevel   *RiskLevel `json:"riskLevel"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PatientInput carries the writable fields of a patient.
type PatientInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	BloodType   string `json:"bloodType"`
	Gender      string `json:"gender"`
}

// PatientPatch is a partial update; nil fields are left untouched.
type PatientPatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DateOfBirth *string `json:"dateOfBirth"`
	BloodType   *string `json:"bloodType"`
	Gender      *string `json:"gender"`
}

// Apply returns in with the patch applied.
func (p PatientPatch) Apply(in PatientInput) PatientInput {
	if p.FirstName != nil {
		in.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		in.LastName = *p.LastName
	}
	if p.DateOfBirth != nil {
		in.DateOfBirth = *p.DateOfBirth
	}
	if p.BloodType != nil {
		in.BloodType = *p.BloodType
	}
	if p.Gender != nil {
		in.Gender = *p.Gender
	}
	return in
}

// Input returns the writable fields of p.
func (p Patient) Input() PatientInput {
	return PatientInput{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		BloodType:   p.BloodType,
		Gender:      p.Gender,
	}
}

// Normalize trims whitespace and upper-cases the coded fields.
func (in PatientInput) Normalize() PatientInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.BloodType = strings.ToUpper(strings.TrimSpace(in.BloodType))
	in.Gender = strings.ToUpper(strings.TrimSpace(in.Gender))
	return in
}

// Validate checks a normalized input against now.
func (in PatientInput) Validate(now time.Time) error {
	if len([]rune(in.FirstName)) < 2 {
		return invalid("firstName", "first name is required")
	}
	if len([]rune(in.LastName)) < 2 {
		return invalid("lastName", "last name is required")
	}
	dob, err := time.Parse(DateLayout, in.DateOfBirth)
	if err != nil {
		return invalid("dateOfBirth", "invalid date format")
	}
	if dob.After(now) {
		return invalid("dateOfBirth", "must not be in the future")
	}
	if in.BloodType != "" && !isBloodType(in.BloodType) {
		return invalid("bloodType", "must be one of %s", strings.Join(BloodTypes, ", "))
	}
	switch in.Gender {
	case "", "M", "F":
	default:
		return invalid("gender", "must be M, F or empty")
	}
	return nil
}

func isBloodType(s string) bool {
	for _, bt := range BloodTypes {
		if bt == s {
			return true
		}
	}
	return false
}

// AgeOn returns the age in whole years at now for a YYYY-MM-DD birth date.
// Unparseable dates yield 0.
func AgeOn(dateOfBirth string, now time.Time) int {
	dob, err := time.Parse(DateLayout, dateOfBirth)
	if err != nil {
		return 0
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// PatientSort selects the ordering of patient lists.
type PatientSort string

const (
	SortRecent PatientSort = "recent"
	SortName   PatientSort = "name"
	SortRisk   PatientSort = "risk"
)

// PatientQuery filters and orders patient lists.
type PatientQuery struct {
	Sort PatientSort
	// Risk, when set, keeps only patients whose current level matches.
	Risk RiskLevel
}

// PatientRepository is the port for patient persistence. Returned patients
// carry RiskLevel populated from their latest assessment; Age is left for
// the service to derive. Get, Update and Delete return ErrNotFound for an
// unknown id.
type PatientRepository interface {
	CreatePatient(ctx context.Context, in PatientInput, now time.Time) (*Patient, error)
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	UpdatePatient(ctx context.Context, id int64, in PatientInput, now time.Time) (*Patient, error)
	DeletePatient(ctx context.Context, id int64) error
	ListPatients(ctx context.Context, q PatientQuery) ([]Patient, error)
	// SearchPatients matches first or last name case-insensitively, or the
	// exact id when id > 0.
	SearchPatients(ctx context.Context, term string, id int64, limit int) ([]Patient, error)
}
