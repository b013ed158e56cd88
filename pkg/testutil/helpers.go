// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/loans"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/mathutil"
)

// DefaultTolerance is the absolute tolerance used when comparing computed
// floating point amounts.
const DefaultTolerance = 1e-6

// ApproxEqual reports whether two amounts agree within DefaultTolerance.
func ApproxEqual(a, b float64) bool {
	return mathutil.WithinTolerance(a, b, DefaultTolerance)
}

// FindMonth finds a month in a loan schedule.
// Returns a pointer to the entry if found, nil otherwise.
func FindMonth(schedule []loans.MonthlyEntry, month int) *loans.MonthlyEntry {
	for i := range schedule {
		if schedule[i].Month == month {
			return &schedule[i]
		}
	}
	return nil
}
