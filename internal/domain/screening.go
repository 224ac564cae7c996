package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScreenTypes lists the screenings a clinic can record.
var ScreenTypes = []string{
	"Blood Glucose Test",
	"Blood Pressure Check",
	"HbA1c Test",
	"Lipid Panel",
	"Kidney Function Test",
}

// ResultStatuses lists the accepted screening outcomes.
var ResultStatuses = []string{"Normal", "High", "Low", "Critical"}

// Screening is a single screening test result.
type Screening struct {
	ID           int64           `json:"id"`
	PatientID    int64           `json:"patientId"`
	ScreenType   string          `json:"screenType"`
	Result       decimal.Decimal `json:"result"`
	ResultStatus string          `json:"resultStatus"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ScreeningInput is the caller-supplied part of a screening.
type ScreeningInput struct {
	PatientID    int64            `json:"patientId"`
	ScreenType   string           `json:"screenType"`
	Result       *decimal.Decimal `json:"result"`
	ResultStatus string           `json:"resultStatus"`
}

var maxResult = decimal.RequireFromString("999.99")

// Validate checks the enums and the result range [0, 999.99].
func (in ScreeningInput) Validate() error {
	if in.PatientID <= 0 {
		return invalid("patientId", "is required")
	}
	if !oneOf(in.ScreenType, ScreenTypes) {
		return invalid("screenType", "screening type is required")
	}
	if in.Result == nil {
		return invalid("result", "result is required")
	}
	if in.Result.IsNegative() {
		return invalid("result", "result must be positive")
	}
	if in.Result.GreaterThan(maxResult) {
		return invalid("result", "result too high")
	}
	if hasExtraPlaces(*in.Result) {
		return invalid("result", "at most %d decimal places", MaxDecimalPlaces)
	}
	if !oneOf(in.ResultStatus, ResultStatuses) {
		return invalid("resultStatus", "result status is required")
	}
	return nil
}

// ScreeningRepository is the port for screening persistence.
type ScreeningRepository interface {
	AddScreening(ctx context.Context, in ScreeningInput, createdAt time.Time) (*Screening, error)
	// ListScreenings returns a patient's screenings, newest first.
	ListScreenings(ctx context.Context, patientID int64) ([]Screening, error)
}

func oneOf(s string, allowed []string) bool {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}
