package financing

import "github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"

// YearEntry sums one loan year of the combined schedule.
type YearEntry struct {
	Year                int     `json:"year"`
	Months              int     `json:"months"`
	Interest            float64 `json:"interest"`
	ScheduledPrincipal  float64 `json:"scheduledPrincipal"`
	SpecialRepayment    float64 `json:"specialRepayment"`
	ReserveContribution float64 `json:"reserveContribution"`
	TotalPayment        float64 `json:"totalPayment"`
	RemainingBalance    float64 `json:"remainingBalance"`
}

// YearOf returns the 1-indexed loan year a month belongs to.
func YearOf(month int) int {
	return (month + constants.MonthsPerYear - 1) / constants.MonthsPerYear
}

// YearlySummary groups the combined schedule into loan years. The remaining
// balance of a year is the balance after its last month.
func YearlySummary(schedule []CombinedEntry) []YearEntry {
	var years []YearEntry
	for _, entry := range schedule {
		year := YearOf(entry.Month)
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, YearEntry{Year: year})
		}
		current := &years[len(years)-1]
		current.Months++
		current.Interest += entry.Interest
		current.ScheduledPrincipal += entry.ScheduledPrincipal
		current.SpecialRepayment += entry.SpecialRepayment
		current.ReserveContribution += entry.ReserveContribution
		current.TotalPayment += entry.TotalPayment
		current.RemainingBalance = entry.RemainingBalance
	}
	return years
}
