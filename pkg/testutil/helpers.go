// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/budget-optimizer/pkg/mathutil"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

// FindRow finds a result row by channel id.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(result *optimization.Result, id string) *optimization.Row {
	if result == nil {
		return nil
	}
	for i := range result.Rows {
		if result.Rows[i].ID == id {
			return &result.Rows[i]
		}
	}
	return nil
}

// SumSpend adds up the spend of every row.
func SumSpend(rows []optimization.Row) float64 {
	var total float64
	for _, row := range rows {
		total += row.Spend
	}
	return total
}

// AlmostEqual reports whether a and b differ by at most tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return mathutil.WithinTolerance(a, b, tolerance)
}
