// Package types provides common type aliases and utilities.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
// Money appears only at input/output boundaries; all internal royalty
// arithmetic is done in MinorUnits.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MinorUnits represents a monetary value in minor currency units (cents, pence).
// Storage: int64 - sufficient for ±922 trillion minor units.
// Example: $123.45 → 12345 (cents)
type MinorUnits int64

// NewMinorUnitsFromMoney converts a decimal major-unit amount to minor units
// with the given number of decimal places, rounding half up.
func NewMinorUnitsFromMoney(m Money, decimalPlaces int32) MinorUnits {
	return MinorUnits(m.Shift(decimalPlaces).Round(0).IntPart())
}

// ToMoney converts minor units to a decimal major-unit amount.
func (m MinorUnits) ToMoney(decimalPlaces int32) Money {
	return decimal.New(int64(m), -decimalPlaces)
}

// Decimal returns the raw minor-unit value as a decimal, for precise
// intermediate arithmetic (tier slices, split shares).
func (m MinorUnits) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// ToMajor converts minor units back to major units for display.
func (m MinorUnits) ToMajor(decimalPlaces int) float64 {
	return float64(m) / math.Pow10(decimalPlaces)
}

func (m MinorUnits) IsZero() bool     { return m == 0 }
func (m MinorUnits) IsPositive() bool { return m > 0 }
func (m MinorUnits) IsNegative() bool { return m < 0 }
func (m MinorUnits) Neg() MinorUnits  { return -m }
func (m MinorUnits) Abs() MinorUnits {
	if m < 0 {
		return -m
	}
	return m
}

// RoundHalfUpToMinor rounds a decimal amount (already expressed in minor
// units) to a whole MinorUnits value, half away from zero. Royalty tier
// slices are rounded through this single function so repeated statements for
// the same contract are reproducible tier-by-tier.
func RoundHalfUpToMinor(d decimal.Decimal) MinorUnits {
	return MinorUnits(d.Round(0).IntPart())
}
