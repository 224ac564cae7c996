package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel is the coarse three-band classification derived from a reading.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel accepts a level in any letter case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch l := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); l {
	case RiskLow, RiskMedium, RiskHigh:
		return l, nil
	}
	return "", invalid("risk", "must be one of LOW, MEDIUM, HIGH")
}

// Rank orders levels for sorting: HIGH first, unassessed last.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskHigh:
		return 0
	case RiskMedium:
		return 1
	case RiskLow:
		return 2
	}
	return 3
}

// RiskAssessment is an append-only record pairing a risk level with the
// recommended follow-up date. The current level of a patient is the most
// recently created assessment.
type RiskAssessment struct {
	ID                 int64     `json:"id"`
	PatientID          int64     `json:"patientId"`
	RiskLevel          RiskLevel `json:"riskLevel"`
	CalculatedScore    int       `json:"calculatedScore"`
	AssessmentDate     time.Time `json:"assessmentDate"`
	NextAssessmentDate time.Time `json:"nextAssessmentDate"`
}

// RiskAssessmentRepository is the port for the append-only assessment history.
type RiskAssessmentRepository interface {
	AppendRiskAssessment(ctx context.Context, a RiskAssessment) (int64, error)
	LatestRiskAssessment(ctx context.Context, patientID int64) (*RiskAssessment, error)
	ListRiskAssessments(ctx context.Context, patientID int64, limit int) ([]RiskAssessment, error)
	// ListDueRiskAssessments returns, per patient, the latest assessment when
	// its next assessment date is at or before asOf.
	ListDueRiskAssessments(ctx context.Context, asOf time.Time) ([]RiskAssessment, error)
}

// AssessmentPublisher announces new assessments to downstream consumers.
type AssessmentPublisher interface {
	PublishAssessment(ctx context.Context, a RiskAssessment) error
}

var (
	glucoseVeryHigh = decimal.NewFromInt(200)
	glucoseHigh     = decimal.NewFromInt(140)
	glucoseLow      = decimal.NewFromInt(70)
)

const (
	systolicLimit  = 140
	diastolicLimit = 90
)

// RiskScore scores a single reading. Thresholds are strict: glucose of
// exactly 70 or 140 and pressure of exactly 140/90 add nothing.
func RiskScore(r HealthReading) int {
	score := 0
	switch {
	case r.BloodGlucose.GreaterThan(glucoseVeryHigh):
		score += 3
	case r.BloodGlucose.GreaterThan(glucoseHigh):
		score += 2
	case r.BloodGlucose.LessThan(glucoseLow):
		score += 3
	}
	if r.Systolic > systolicLimit || r.Diastolic > diastolicLimit {
		score += 2
	}
	return score
}

// LevelForScore maps a score onto its band.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 4:
		return RiskHigh
	case score >= 2:
		return RiskMedium
	default:
		return RiskLow
	}
}

// FollowUpDays is the number of days until the next assessment is due.
func FollowUpDays(l RiskLevel) int {
	switch l {
	case RiskHigh:
		return 30
	case RiskMedium:
		return 60
	default:
		return 90
	}
}

// Assess scores the patient's most recent reading. It performs no validation
// and has no side effects; persisting the result is the caller's job.
func Assess(r HealthReading, patientID int64, now time.Time) RiskAssessment {
	score := RiskScore(r)
	level := LevelForScore(score)
	return RiskAssessment{
		PatientID:          patientID,
		RiskLevel:          level,
		CalculatedScore:    score,
		AssessmentDate:     now,
		NextAssessmentDate: now.AddDate(0, 0, FollowUpDays(level)),
	}
}
