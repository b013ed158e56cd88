package validation

import (
	"fmt"
	"math"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
)

// FinancingValidator checks raw financing inputs before they are sanitized
// and reports everything the sanitization will silently change.
type FinancingValidator struct {
	TotalPrincipal         float64
	InterestRate           float64
	AmortizationRate       float64
	SpecialRepaymentRate   float64
	TermYears              float64
	SubsidizedEnabled      bool
	SubsidizedPrincipal    float64
	SubsidizedInterestRate float64
	SubsidizedTermYears    float64
}

// ValidateAmount returns a warning when a value is not a finite, non-negative number.
func ValidateAmount(field string, value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Sprintf("%s is not a finite number and will be treated as 0", field)
	}
	if value < 0 {
		return fmt.Sprintf("%s is negative (%.2f) and will be treated as 0", field, value)
	}
	return ""
}

// ValidateMagnitude returns a warning when a finite value exceeds limit.
func ValidateMagnitude(field string, value, limit float64) string {
	if value > limit && !math.IsInf(value, 1) {
		return fmt.Sprintf("%s of %g exceeds %g; computed amounts may overflow", field, value, limit)
	}
	return ""
}

// ValidatePrimaryTerm checks the primary term against the planned term ceiling.
func ValidatePrimaryTerm(years float64) string {
	maxYears := float64(constants.MaxPlannedTermMonths / constants.MonthsPerYear)
	if years > maxYears && !math.IsInf(years, 1) {
		return fmt.Sprintf("Primary loan term of %g years exceeds the maximum and will be limited to %g years", years, maxYears)
	}
	return ""
}

// ValidateSubsidizedTerm checks the subsidized term against the 10 year ceiling.
func ValidateSubsidizedTerm(years float64) string {
	if years > constants.SubsidizedMaxTermYears {
		return fmt.Sprintf("Subsidized loan term of %.1f years exceeds the maximum and will be limited to %d years",
			years, constants.SubsidizedMaxTermYears)
	}
	return ""
}

// ValidateAll validates the financing and returns warnings
func (fv *FinancingValidator) ValidateAll() []string {
	var warnings []string

	type amount struct {
		field string
		value float64
		limit float64
	}
	amounts := []amount{
		{"Total principal", fv.TotalPrincipal, constants.MaxPlausiblePrincipal},
		{"Primary interest rate", fv.InterestRate, constants.MaxPlausibleRatePercent},
		{"Amortization rate", fv.AmortizationRate, constants.MaxPlausibleRatePercent},
		{"Special repayment rate", fv.SpecialRepaymentRate, constants.MaxPlausibleRatePercent},
		{"Primary loan term", fv.TermYears, math.Inf(1)},
	}
	if fv.SubsidizedEnabled {
		amounts = append(amounts,
			amount{"Subsidized principal", fv.SubsidizedPrincipal, constants.MaxPlausiblePrincipal},
			amount{"Subsidized interest rate", fv.SubsidizedInterestRate, constants.MaxPlausibleRatePercent},
			amount{"Subsidized loan term", fv.SubsidizedTermYears, math.Inf(1)},
		)
	}
	for _, a := range amounts {
		if warning := ValidateAmount(a.field, a.value); warning != "" {
			warnings = append(warnings, warning)
		}
		if warning := ValidateMagnitude(a.field, a.value, a.limit); warning != "" {
			warnings = append(warnings, warning)
		}
	}
	if warning := ValidatePrimaryTerm(fv.TermYears); warning != "" {
		warnings = append(warnings, warning)
	}

	if fv.TermYears <= 0 || math.IsNaN(fv.TermYears) {
		warnings = append(warnings, fmt.Sprintf("Primary loan has no planned term; simulation stops after %d months at the latest",
			constants.MaxOpenEndedMonths))
		if fv.AmortizationRate <= 0 && fv.SpecialRepaymentRate <= 0 {
			warnings = append(warnings, "Primary loan has neither amortization nor special repayment and will not be repaid")
		}
	}

	if !fv.SubsidizedEnabled {
		return warnings
	}

	if fv.SubsidizedPrincipal <= 0 {
		warnings = append(warnings, "Subsidized loan is enabled but has no principal and will be ignored")
		return warnings
	}
	if fv.SubsidizedPrincipal >= fv.TotalPrincipal {
		warnings = append(warnings, fmt.Sprintf("Subsidized principal (%.2f) covers the total principal (%.2f); the primary loan is empty",
			fv.SubsidizedPrincipal, fv.TotalPrincipal))
	}
	if warning := ValidateSubsidizedTerm(fv.SubsidizedTermYears); warning != "" {
		warnings = append(warnings, warning)
	}

	return warnings
}
