// Package loans provides the amortization engine for a single annuity-style
// loan with an optional annual special repayment funded from a monthly
// reserve.
package loans

import (
	"fmt"
	"math"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/mathutil"
	"go.uber.org/zap"
)

// Term is the planned duration of a loan. The zero value is open-ended.
type Term struct {
	months int
}

// Planned returns a term of the given number of months, clamped to
// [1, MaxPlannedTermMonths].
func Planned(months int) Term {
	return Term{months: mathutil.ClampInt(months, 1, constants.MaxPlannedTermMonths)}
}

// OpenEnded returns a term without a planned end; the simulation runs until
// payoff or MaxOpenEndedMonths.
func OpenEnded() Term {
	return Term{}
}

// TermFromYears converts a year count into a Term. Non-positive or
// non-finite values yield an open-ended term; anything beyond
// MaxPlannedTermMonths saturates there.
func TermFromYears(years float64) Term {
	if math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 {
		return OpenEnded()
	}
	months := math.Round(years * constants.MonthsPerYear)
	if months >= constants.MaxPlannedTermMonths {
		return Planned(constants.MaxPlannedTermMonths)
	}
	return Planned(int(months))
}

// IsPlanned reports whether the term has a fixed number of months.
func (t Term) IsPlanned() bool {
	return t.months > 0
}

// Months returns the planned number of months, or 0 for an open-ended term.
func (t Term) Months() int {
	return t.months
}

func (t Term) maxMonths() int {
	if t.IsPlanned() {
		return t.months
	}
	return constants.MaxOpenEndedMonths
}

func (t Term) isFinalMonth(month int) bool {
	return t.IsPlanned() && month == t.months
}

// String renders the term for log output.
func (t Term) String() string {
	if !t.IsPlanned() {
		return "open-ended"
	}
	return fmt.Sprintf("%d months", t.months)
}

// Parameters describes one loan. Rates are annual percentages.
type Parameters struct {
	Principal            float64
	InterestRate         float64
	AmortizationRate     float64
	SpecialRepaymentRate float64
	Term                 Term
}

// MonthlyEntry holds the values for a given month of the schedule.
type MonthlyEntry struct {
	Month               int     `json:"month"`
	Interest            float64 `json:"interest"`
	ScheduledPrincipal  float64 `json:"scheduledPrincipal"`
	SpecialRepayment    float64 `json:"specialRepayment"`
	ReserveContribution float64 `json:"reserveContribution"`
	TotalPayment        float64 `json:"totalPayment"`
	RemainingBalance    float64 `json:"remainingBalance"`
}

// Result is the full schedule of a loan together with its totals.
type Result struct {
	Schedule                   []MonthlyEntry `json:"schedule"`
	TotalMonths                int            `json:"totalMonths"`
	TotalInterest              float64        `json:"totalInterest"`
	TotalPrincipalPaid         float64        `json:"totalPrincipalPaid"`
	TotalAmount                float64        `json:"totalAmount"`
	RemainingPrincipal         float64        `json:"remainingPrincipal"`
	PlannedTermMonths          int            `json:"plannedTermMonths"`
	HasPlannedTerm             bool           `json:"hasPlannedTerm"`
	MonthlyReserveContribution float64        `json:"monthlyReserveContribution"`
}

// LastBalance returns the remaining balance of the final simulated month,
// falling back to RemainingPrincipal for an empty schedule.
func (r Result) LastBalance() float64 {
	if n := len(r.Schedule); n > 0 {
		return r.Schedule[n-1].RemainingBalance
	}
	return r.RemainingPrincipal
}

// NominalPayment is the fixed contractual installment (interest plus
// scheduled principal) derived once from the original principal.
func NominalPayment(principal, monthlyInterestRate, monthlyAmortizationRate float64) float64 {
	return principal * (monthlyInterestRate + monthlyAmortizationRate)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(balance, monthlyInterestRate float64) float64 {
	return balance * monthlyInterestRate
}

// IsSpecialRepaymentMonth reports whether a special repayment may be
// disbursed in the given 1-indexed month.
func IsSpecialRepaymentMonth(month int, term Term) bool {
	return month%constants.MonthsPerYear == 0 || term.isFinalMonth(month)
}

// Amortizer generates loan schedules.
type Amortizer struct {
	logger *zap.Logger
}

// NewAmortizer creates a new amortizer instance.
func NewAmortizer(logger *zap.Logger) *Amortizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Amortizer{logger: logger}
}

// Compute is a convenience wrapper around an Amortizer without logging.
func Compute(params Parameters) Result {
	return NewAmortizer(nil).Compute(params)
}

// Compute simulates the loan month by month and returns its schedule.
func (a *Amortizer) Compute(params Parameters) Result {
	term := params.Term
	principal := mathutil.NonNegative(params.Principal)

	if principal <= 0 {
		return Result{
			Schedule:          []MonthlyEntry{},
			PlannedTermMonths: term.Months(),
			HasPlannedTerm:    term.IsPlanned(),
		}
	}

	monthlyInterestRate := mathutil.MonthlyRate(mathutil.NonNegative(params.InterestRate))
	monthlyAmortizationRate := mathutil.MonthlyRate(mathutil.NonNegative(params.AmortizationRate))
	monthlyReserveRate := mathutil.MonthlyRate(mathutil.NonNegative(params.SpecialRepaymentRate))

	payment := NominalPayment(principal, monthlyInterestRate, monthlyAmortizationRate)
	reserveContribution := principal * monthlyReserveRate
	maxMonths := term.maxMonths()

	schedule := make([]MonthlyEntry, 0, min(maxMonths, constants.MaxOpenEndedMonths))
	balance := principal
	reserve := 0.0
	totalInterest := 0.0
	totalPrincipalPaid := 0.0

	for month := 0; balance > constants.BalanceThreshold && month < maxMonths; month++ {
		interest := CalculateInterestPayment(balance, monthlyInterestRate)
		scheduledPrincipal := math.Min(balance, math.Max(0, payment-interest))
		reserve += reserveContribution

		specialRepayment := 0.0
		if IsSpecialRepaymentMonth(month+1, term) && balance-scheduledPrincipal > 0 && reserve > 0 {
			specialRepayment = math.Min(balance-scheduledPrincipal, reserve)
			reserve = math.Max(0, reserve-specialRepayment)
			a.logger.Debug(fmt.Sprintf("month %d: applying special repayment %.2f", month+1, specialRepayment),
				zap.String("op", "loans.Compute"),
			)
		}

		totalPayment := interest + scheduledPrincipal + reserveContribution
		balance = balance - scheduledPrincipal - specialRepayment
		if balance < constants.BalanceEpsilon {
			balance = 0
		}

		schedule = append(schedule, MonthlyEntry{
			Month:               month + 1,
			Interest:            interest,
			ScheduledPrincipal:  scheduledPrincipal,
			SpecialRepayment:    specialRepayment,
			ReserveContribution: reserveContribution,
			TotalPayment:        totalPayment,
			RemainingBalance:    balance,
		})
		totalInterest += interest
		totalPrincipalPaid += scheduledPrincipal + specialRepayment

		// An open-ended loan that pays no principal would never converge.
		if !term.IsPlanned() && scheduledPrincipal == 0 && specialRepayment == 0 && reserveContribution == 0 {
			a.logger.Debug(fmt.Sprintf("loan stagnates at %.2f after %d months, stopping", balance, month+1),
				zap.String("op", "loans.Compute"),
			)
			break
		}
	}

	if !term.IsPlanned() && len(schedule) == maxMonths && balance > constants.BalanceThreshold {
		a.logger.Debug(fmt.Sprintf("open-ended loan reached the %d month ceiling with %.2f outstanding", maxMonths, balance),
			zap.String("op", "loans.Compute"),
		)
	}

	plannedMonths := len(schedule)
	if term.IsPlanned() {
		plannedMonths = term.Months()
	}

	return Result{
		Schedule:                   schedule,
		TotalMonths:                len(schedule),
		TotalInterest:              totalInterest,
		TotalPrincipalPaid:         totalPrincipalPaid,
		TotalAmount:                totalInterest + totalPrincipalPaid,
		RemainingPrincipal:         balance,
		PlannedTermMonths:          plannedMonths,
		HasPlannedTerm:             term.IsPlanned(),
		MonthlyReserveContribution: reserveContribution,
	}
}
