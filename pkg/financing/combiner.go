// Package financing combines a primary loan and an optional subsidized loan
// into one financing package with a month-aligned merged schedule.
package financing

import (
	"fmt"
	"math"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/loans"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/mathutil"
	"go.uber.org/zap"
)

// Request holds the sanitized inputs of a financing calculation. Rates are
// annual percentages; a PrimaryTermYears of 0 means open-ended.
type Request struct {
	TotalPrincipal         float64 `json:"totalPrincipal"`
	PrimaryInterestRate    float64 `json:"primaryInterestRate"`
	AmortizationRate       float64 `json:"amortizationRate"`
	SpecialRepaymentRate   float64 `json:"specialRepaymentRate"`
	PrimaryTermYears       float64 `json:"primaryTermYears"`
	SubsidizedEnabled      bool    `json:"subsidizedEnabled"`
	SubsidizedPrincipal    float64 `json:"subsidizedPrincipal"`
	SubsidizedInterestRate float64 `json:"subsidizedInterestRate"`
	SubsidizedTermYears    float64 `json:"subsidizedTermYears"`
}

// PrimaryLoan is the primary loan's share of the package and its schedule.
type PrimaryLoan struct {
	Principal float64 `json:"principal"`
	loans.Result
}

// SubsidizedLoan is the subsidized loan's share of the package. Its
// remaining balance at the end of its term is reported as TransferAmount
// but never folded into the primary loan.
type SubsidizedLoan struct {
	Enabled        bool    `json:"enabled"`
	Principal      float64 `json:"principal"`
	InterestRate   float64 `json:"interestRate"`
	TermYears      float64 `json:"termYears"`
	TransferMonth  int     `json:"transferMonth"`
	TransferAmount float64 `json:"transferAmount"`
	loans.Result
}

// CombinedEntry is one month of the merged schedule.
type CombinedEntry struct {
	Month               int                `json:"month"`
	Primary             loans.MonthlyEntry `json:"primary"`
	Subsidized          loans.MonthlyEntry `json:"subsidized"`
	Interest            float64            `json:"interest"`
	ScheduledPrincipal  float64            `json:"scheduledPrincipal"`
	SpecialRepayment    float64            `json:"specialRepayment"`
	ReserveContribution float64            `json:"reserveContribution"`
	TotalPayment        float64            `json:"totalPayment"`
	RemainingBalance    float64            `json:"remainingBalance"`
}

// Totals aggregates both loans.
type Totals struct {
	RequestedPrincipal         float64 `json:"requestedPrincipal"`
	TotalInterest              float64 `json:"totalInterest"`
	TotalPrincipalPaid         float64 `json:"totalPrincipalPaid"`
	TotalAmount                float64 `json:"totalAmount"`
	TotalMonths                int     `json:"totalMonths"`
	RemainingPrincipal         float64 `json:"remainingPrincipal"`
	RemainingPrimary           float64 `json:"remainingPrimary"`
	RemainingSubsidized        float64 `json:"remainingSubsidized"`
	MonthlyReserveContribution float64 `json:"monthlyReserveContribution"`
	FirstMonthPayment          float64 `json:"firstMonthPayment"`
}

// Combined is the result of a financing calculation.
type Combined struct {
	Primary    PrimaryLoan     `json:"primaryResult"`
	Subsidized SubsidizedLoan  `json:"subsidizedResult"`
	Schedule   []CombinedEntry `json:"combinedSchedule"`
	Totals     Totals          `json:"totals"`
}

// Combiner runs the amortizer for both loans and merges their schedules.
type Combiner struct {
	logger    *zap.Logger
	amortizer *loans.Amortizer
}

// NewCombiner creates a new combiner instance.
func NewCombiner(logger *zap.Logger) *Combiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Combiner{logger: logger, amortizer: loans.NewAmortizer(logger)}
}

// Compute is a convenience wrapper around a Combiner without logging.
func Compute(req Request) Combined {
	return NewCombiner(nil).Compute(req)
}

// SubsidizedTermYears resolves the subsidized term: an unset (0 or NaN) term
// defaults to the ceiling, anything else is clamped to [1, 10] years.
// Fractional years are kept; the amortizer rounds to whole months.
func SubsidizedTermYears(years float64) float64 {
	if math.IsNaN(years) || years == 0 {
		return constants.SubsidizedMaxTermYears
	}
	return math.Min(constants.SubsidizedMaxTermYears, math.Max(constants.SubsidizedMinTermYears, years))
}

// Compute splits the total principal across both loans, simulates each of
// them and merges the schedules.
func (c *Combiner) Compute(req Request) Combined {
	subsidizedPrincipal := 0.0
	if req.SubsidizedEnabled {
		subsidizedPrincipal = mathutil.NonNegative(req.SubsidizedPrincipal)
	}
	subsidizedRate := mathutil.NonNegative(req.SubsidizedInterestRate)
	subsidizedEnabled := req.SubsidizedEnabled && subsidizedPrincipal > 0

	carveOut := 0.0
	if subsidizedEnabled {
		carveOut = subsidizedPrincipal
	}
	primaryPrincipal := math.Max(0, mathutil.NonNegative(req.TotalPrincipal)-carveOut)

	primaryTerm := loans.OpenEnded()
	if years := mathutil.NonNegative(req.PrimaryTermYears); years > 0 {
		primaryTerm = loans.TermFromYears(math.Max(1, years))
	}

	primary := c.amortizer.Compute(loans.Parameters{
		Principal:            primaryPrincipal,
		InterestRate:         req.PrimaryInterestRate,
		AmortizationRate:     req.AmortizationRate,
		SpecialRepaymentRate: req.SpecialRepaymentRate,
		Term:                 primaryTerm,
	})

	subsidized := loans.Result{Schedule: []loans.MonthlyEntry{}}
	termYears := 0.0
	if subsidizedEnabled {
		termYears = SubsidizedTermYears(req.SubsidizedTermYears)
		if termYears != req.SubsidizedTermYears {
			c.logger.Debug(fmt.Sprintf("subsidized term %g years resolved to %g years", req.SubsidizedTermYears, termYears),
				zap.String("op", "financing.Compute"),
			)
		}
		subsidized = c.amortizer.Compute(loans.Parameters{
			Principal:            subsidizedPrincipal,
			InterestRate:         subsidizedRate,
			AmortizationRate:     constants.SubsidizedAmortizationRate,
			SpecialRepaymentRate: 0,
			Term:                 loans.TermFromYears(termYears),
		})
	}

	schedule := MergeSchedules(primary, subsidized)

	remainingSubsidized := 0.0
	if subsidizedEnabled {
		remainingSubsidized = subsidized.RemainingPrincipal
	}

	totals := Totals{
		RequestedPrincipal:         mathutil.NonNegative(req.TotalPrincipal),
		TotalInterest:              primary.TotalInterest + subsidized.TotalInterest,
		TotalPrincipalPaid:         primary.TotalPrincipalPaid + subsidized.TotalPrincipalPaid,
		TotalAmount:                primary.TotalAmount + subsidized.TotalAmount,
		TotalMonths:                len(schedule),
		RemainingPrincipal:         primary.RemainingPrincipal + remainingSubsidized,
		RemainingPrimary:           primary.RemainingPrincipal,
		RemainingSubsidized:        remainingSubsidized,
		MonthlyReserveContribution: primary.MonthlyReserveContribution + subsidized.MonthlyReserveContribution,
	}
	if len(schedule) > 0 {
		totals.FirstMonthPayment = schedule[0].TotalPayment
	}

	c.logger.Debug("financing computed",
		zap.String("op", "financing.Compute"),
		zap.Float64("primaryPrincipal", primaryPrincipal),
		zap.Float64("subsidizedPrincipal", subsidizedPrincipal),
		zap.Bool("subsidizedEnabled", subsidizedEnabled),
		zap.Int("months", len(schedule)),
	)

	return Combined{
		Primary: PrimaryLoan{
			Principal: primaryPrincipal,
			Result:    primary,
		},
		Subsidized: SubsidizedLoan{
			Enabled:        subsidizedEnabled,
			Principal:      subsidizedPrincipal,
			InterestRate:   subsidizedRate,
			TermYears:      termYears,
			TransferMonth:  subsidized.PlannedTermMonths,
			TransferAmount: subsidized.RemainingPrincipal,
			Result:         subsidized,
		},
		Schedule: schedule,
		Totals:   totals,
	}
}

// MergeSchedules aligns both loan schedules by month. A finished primary loan
// contributes zeros; a finished subsidized loan keeps its last remaining
// balance outstanding with no further cash flows.
func MergeSchedules(primary, subsidized loans.Result) []CombinedEntry {
	length := max(len(primary.Schedule), len(subsidized.Schedule))
	outstanding := subsidized.LastBalance()

	merged := make([]CombinedEntry, 0, length)
	for i := 0; i < length; i++ {
		month := i + 1

		primaryEntry := loans.MonthlyEntry{Month: month}
		if i < len(primary.Schedule) {
			primaryEntry = primary.Schedule[i]
		}

		subsidizedEntry := loans.MonthlyEntry{Month: month, RemainingBalance: outstanding}
		if i < len(subsidized.Schedule) {
			subsidizedEntry = subsidized.Schedule[i]
		}

		merged = append(merged, CombinedEntry{
			Month:               month,
			Primary:             primaryEntry,
			Subsidized:          subsidizedEntry,
			Interest:            primaryEntry.Interest + subsidizedEntry.Interest,
			ScheduledPrincipal:  primaryEntry.ScheduledPrincipal + subsidizedEntry.ScheduledPrincipal,
			SpecialRepayment:    primaryEntry.SpecialRepayment + subsidizedEntry.SpecialRepayment,
			ReserveContribution: primaryEntry.ReserveContribution + subsidizedEntry.ReserveContribution,
			TotalPayment:        primaryEntry.TotalPayment + subsidizedEntry.TotalPayment,
			RemainingBalance:    primaryEntry.RemainingBalance + subsidizedEntry.RemainingBalance,
		})
	}
	return merged
}
