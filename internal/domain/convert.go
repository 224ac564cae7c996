package domain

import (
	"github.com/shopspring/decimal"
)

// WeightUnit is a unit for body weight. Readings are stored in kilograms.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
)

// ParseWeightUnit accepts "kg" or "lb".
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch u := WeightUnit(s); u {
	case Kilograms, Pounds:
		return u, nil
	}
	return "", invalid("unit", "unit must be \"kg\" or \"lb\"")
}

var kgToLb = decimal.RequireFromString("2.2046226218")

// ConvertWeight converts a weight between units.
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v decimal.Decimal, from, to WeightUnit) decimal.Decimal {
	if from == to {
		return v
	}
	if from == Kilograms && to == Pounds {
		return v.Mul(kgToLb)
	}
	if from == Pounds && to == Kilograms {
		return v.DivRound(kgToLb, 8)
	}
	return v
}
