package mathutil

import (
	"math"
	"testing"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Monthly interest rounds up", 1166.6666666, 1166.67},
		{"Monthly interest rounds down", 291.6649, 291.66},
		{"Already whole cents", 2041.67, 2041.67},
		{"Half cent goes away from zero", 0.125, 0.13},
		{"Sub-cent residue", 0.004, 0},
		{"Negative transfer amount", -78436.61112, -78436.61},
		{"Large requested principal", 999999999.999, 1000000000},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Round(tt.input); math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Paid off balance", 0, true},
		{"Floating point residue", 1e-9, true},
		{"Negative residue", -0.004, true},
		{"One cent", constants.CurrencyTolerance, true},
		{"Minus one cent", -constants.CurrencyTolerance, true},
		{"Just over one cent", constants.CurrencyTolerance + 0.001, false},
		{"Outstanding balance", 164969.47, false},
		{"Overpayment", -25.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		a, b, tol float64
		expected  bool
	}{
		{"Identical totals", 193711.83, 193711.83, 0, true},
		{"Rounded against exact", 193711.83570424447, 193711.84, 0.01, true},
		{"Different schedules", 154969.47, 13436.61, 0.01, false},
		{"Symmetric", 10.0, 9.95, 0.1, true},
		{"Tight tolerance", 1.0, 1.001, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := WithinTolerance(tt.a, tt.b, tt.tol); result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.tol, result, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Positive passes through", 3.5, 3.5},
		{"Zero stays zero", 0, 0},
		{"Negative becomes zero", -2.0, 0},
		{"NaN becomes zero", math.NaN(), 0},
		{"Positive infinity becomes zero", math.Inf(1), 0},
		{"Negative infinity becomes zero", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := NonNegative(tt.input); result != tt.expected {
				t.Errorf("NonNegative(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		lo       int
		hi       int
		expected int
	}{
		{"Inside range", 5, 1, 10, 5},
		{"Below range", 0, 1, 10, 1},
		{"Above range", 25, 1, 10, 10},
		{"Lower bound", 1, 1, 10, 1},
		{"Upper bound", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ClampInt(tt.val, tt.lo, tt.hi); result != tt.expected {
				t.Errorf("ClampInt(%d, %d, %d) = %d, expected %d", tt.val, tt.lo, tt.hi, result, tt.expected)
			}
		})
	}
}

func TestMonthlyRate(t *testing.T) {
	tests := []struct {
		name          string
		annualPercent float64
		expected      float64
	}{
		{"Typical mortgage rate", 3.5, 0.0029166666666666668},
		{"Fixed amortization", 2.0, 0.0016666666666666668},
		{"Zero rate", 0, 0},
		{"Twelve percent", 12, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthlyRate(tt.annualPercent)
			if !WithinTolerance(result, tt.expected, 1e-12) {
				t.Errorf("MonthlyRate(%v) = %v, expected %v", tt.annualPercent, result, tt.expected)
			}
		})
	}
}
