// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// RoundWhole rounds a value to the nearest whole currency unit.
func RoundWhole(val float64) float64 {
	return math.Round(val)
}

// IsFinitePositive reports whether val is a real number greater than zero.
func IsFinitePositive(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0) && val > 0
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinCurrency checks if two amounts agree to within one currency unit
func WithinCurrency(val1, val2 float64) bool {
	return WithinTolerance(val1, val2, constants.CurrencyTolerance)
}

// WithinRatio checks if two ROAS values agree after two-decimal rounding
func WithinRatio(val1, val2 float64) bool {
	return WithinTolerance(val1, val2, constants.RatioTolerance)
}

// Ratio divides value by total, returning 0 for a non-positive total.
func Ratio(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total
}
