package financing

import (
	"math"
	"reflect"
	"testing"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/loans"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/testutil"
	"go.uber.org/zap"
)

func defaultRequest() Request {
	return Request{
		TotalPrincipal:         500000,
		PrimaryInterestRate:    3.5,
		AmortizationRate:       2.0,
		SpecialRepaymentRate:   1.0,
		PrimaryTermYears:       15,
		SubsidizedEnabled:      true,
		SubsidizedPrincipal:    100000,
		SubsidizedInterestRate: 1.5,
		SubsidizedTermYears:    10,
	}
}

func TestSubsidizedTermYears(t *testing.T) {
	tests := []struct {
		name     string
		years    float64
		expected float64
	}{
		{"Unset defaults to ceiling", 0, 10},
		{"NaN defaults to ceiling", math.NaN(), 10},
		{"Negative clamps to floor", -3, 1},
		{"Below one clamps to floor", 0.3, 1},
		{"Within range", 5, 5},
		{"Fraction is kept", 2.5, 2.5},
		{"Another fraction is kept", 7.6, 7.6},
		{"Exactly ceiling", 10, 10},
		{"Above ceiling", 15, 10},
		{"Far above ceiling", 1e12, 10},
		{"Infinity clamps to ceiling", math.Inf(1), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubsidizedTermYears(tt.years); got != tt.expected {
				t.Errorf("SubsidizedTermYears(%v) = %v, expected %v", tt.years, got, tt.expected)
			}
		})
	}
}

func TestComputeFractionalSubsidizedTerm(t *testing.T) {
	tests := []struct {
		name           string
		years          float64
		expectedMonths int
	}{
		{"Two and a half years", 2.5, 30},
		{"One point four years", 1.4, 17},
		{"Negative term runs one year", -2, 12},
		{"Unset term runs ten years", 0, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			req.SubsidizedPrincipal = 700000
			req.SubsidizedTermYears = tt.years
			result := Compute(req)

			if got := len(result.Subsidized.Schedule); got != tt.expectedMonths {
				t.Fatalf("subsidized schedule = %d months, expected %d", got, tt.expectedMonths)
			}
			if result.Subsidized.TransferMonth != tt.expectedMonths {
				t.Errorf("TransferMonth = %d, expected %d", result.Subsidized.TransferMonth, tt.expectedMonths)
			}
			if result.Subsidized.TransferAmount != result.Subsidized.LastBalance() {
				t.Errorf("TransferAmount = %.4f, expected final balance %.4f", result.Subsidized.TransferAmount, result.Subsidized.LastBalance())
			}
		})
	}

	// 700000 at 1.5% with 2% amortization over 30 months.
	req := defaultRequest()
	req.SubsidizedPrincipal = 700000
	req.SubsidizedTermYears = 2.5
	if got := Compute(req).Subsidized.TransferAmount; math.Abs(got-664358.1611) > 1e-3 {
		t.Errorf("TransferAmount = %.4f, expected 664358.1611", got)
	}
}

func TestComputeDefaultScenario(t *testing.T) {
	result := NewCombiner(zap.NewNop()).Compute(defaultRequest())

	if result.Primary.Principal != 400000 {
		t.Errorf("primary principal = %.2f, expected 400000", result.Primary.Principal)
	}
	if !result.Subsidized.Enabled || result.Subsidized.Principal != 100000 {
		t.Errorf("subsidized loan = %t/%.2f, expected enabled with 100000", result.Subsidized.Enabled, result.Subsidized.Principal)
	}
	if len(result.Primary.Schedule) != 180 || len(result.Subsidized.Schedule) != 120 {
		t.Fatalf("schedule lengths = %d/%d, expected 180/120", len(result.Primary.Schedule), len(result.Subsidized.Schedule))
	}
	if len(result.Schedule) != 180 || result.Totals.TotalMonths != 180 {
		t.Errorf("combined length = %d (totals %d), expected 180", len(result.Schedule), result.Totals.TotalMonths)
	}

	tests := []struct {
		name     string
		actual   float64
		expected float64
	}{
		{"Primary interest", result.Primary.TotalInterest, 154969.46856339584},
		{"Primary remaining", result.Primary.RemainingPrincipal, 164969.4685633959},
		{"Subsidized interest", result.Subsidized.TotalInterest, 13436.611126883068},
		{"Subsidized remaining", result.Subsidized.RemainingPrincipal, 78436.61112688306},
		{"Transfer amount", result.Subsidized.TransferAmount, 78436.61112688306},
		{"Combined interest", result.Totals.TotalInterest, 154969.46856339584 + 13436.611126883068},
		{"Combined remaining", result.Totals.RemainingPrincipal, 164969.4685633959 + 78436.61112688306},
		{"Requested principal", result.Totals.RequestedPrincipal, 500000},
		{"First month payment", result.Totals.FirstMonthPayment, 2166.6666666666665 + 291.66666666666663},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !testutil.ApproxEqual(tt.actual, tt.expected) {
				t.Errorf("%s = %.10f, expected %.10f", tt.name, tt.actual, tt.expected)
			}
		})
	}

	if final := testutil.FindMonth(result.Subsidized.Schedule, 120); final == nil || final.RemainingBalance != result.Subsidized.TransferAmount {
		t.Errorf("month 120 of the subsidized loan should hold the transfer amount, got %+v", final)
	}
	if result.Subsidized.TransferMonth != 120 {
		t.Errorf("TransferMonth = %d, expected 120", result.Subsidized.TransferMonth)
	}
	if result.Subsidized.TermYears != 10 {
		t.Errorf("TermYears = %v, expected 10", result.Subsidized.TermYears)
	}
}

func TestComputeSubsidizedPolicy(t *testing.T) {
	req := defaultRequest()
	req.SubsidizedTermYears = 25
	result := Compute(req)

	if result.Subsidized.TermYears != 10 || len(result.Subsidized.Schedule) != 120 {
		t.Errorf("subsidized term = %v years / %d months, expected 10 / 120", result.Subsidized.TermYears, len(result.Subsidized.Schedule))
	}
	if result.Subsidized.MonthlyReserveContribution != 0 {
		t.Errorf("subsidized reserve = %.4f, expected 0", result.Subsidized.MonthlyReserveContribution)
	}
	for _, entry := range result.Subsidized.Schedule {
		if entry.SpecialRepayment != 0 || entry.ReserveContribution != 0 {
			t.Fatalf("month %d: subsidized loan carries special repayment %.2f / reserve %.2f",
				entry.Month, entry.SpecialRepayment, entry.ReserveContribution)
		}
	}

	// Fixed 2% amortization: interest plus scheduled principal is 3.5% p.a. of the principal.
	first := result.Subsidized.Schedule[0]
	if !testutil.ApproxEqual(first.Interest+first.ScheduledPrincipal, 100000*0.035/12) {
		t.Errorf("first subsidized installment = %.6f, expected %.6f", first.Interest+first.ScheduledPrincipal, 100000*0.035/12)
	}
}

func TestComputePrincipalSplit(t *testing.T) {
	tests := []struct {
		name              string
		modify            func(*Request)
		expectPrimary     float64
		expectSubsidized  float64
		expectEnabled     bool
		expectSubsidyRows int
	}{
		{
			name:              "Subsidy carved out of total",
			modify:            func(r *Request) {},
			expectPrimary:     400000,
			expectSubsidized:  100000,
			expectEnabled:     true,
			expectSubsidyRows: 120,
		},
		{
			name:              "Toggle off keeps full total on primary",
			modify:            func(r *Request) { r.SubsidizedEnabled = false },
			expectPrimary:     500000,
			expectSubsidized:  0,
			expectEnabled:     false,
			expectSubsidyRows: 0,
		},
		{
			name:              "Toggle on with zero principal is disabled",
			modify:            func(r *Request) { r.SubsidizedPrincipal = 0 },
			expectPrimary:     500000,
			expectSubsidized:  0,
			expectEnabled:     false,
			expectSubsidyRows: 0,
		},
		{
			name:              "Negative subsidy is disabled",
			modify:            func(r *Request) { r.SubsidizedPrincipal = -5000 },
			expectPrimary:     500000,
			expectSubsidized:  0,
			expectEnabled:     false,
			expectSubsidyRows: 0,
		},
		{
			name:              "Subsidy larger than total leaves no primary loan",
			modify:            func(r *Request) { r.SubsidizedPrincipal = 600000 },
			expectPrimary:     0,
			expectSubsidized:  600000,
			expectEnabled:     true,
			expectSubsidyRows: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			tt.modify(&req)
			result := Compute(req)

			if result.Primary.Principal != tt.expectPrimary {
				t.Errorf("primary principal = %.2f, expected %.2f", result.Primary.Principal, tt.expectPrimary)
			}
			if result.Subsidized.Principal != tt.expectSubsidized {
				t.Errorf("subsidized principal = %.2f, expected %.2f", result.Subsidized.Principal, tt.expectSubsidized)
			}
			if result.Subsidized.Enabled != tt.expectEnabled {
				t.Errorf("subsidized enabled = %t, expected %t", result.Subsidized.Enabled, tt.expectEnabled)
			}
			if len(result.Subsidized.Schedule) != tt.expectSubsidyRows {
				t.Errorf("subsidized schedule length = %d, expected %d", len(result.Subsidized.Schedule), tt.expectSubsidyRows)
			}
			if !tt.expectEnabled && (result.Totals.RemainingSubsidized != 0 || result.Subsidized.TotalInterest != 0) {
				t.Errorf("disabled subsidized loan should contribute nothing, got %+v", result.Totals)
			}
		})
	}
}

func TestComputeMergeLength(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"Both loans, primary longer", func(r *Request) {}},
		{"Both loans, subsidized longer", func(r *Request) { r.PrimaryTermYears = 5 }},
		{"Subsidized disabled", func(r *Request) { r.SubsidizedEnabled = false }},
		{"Primary open-ended", func(r *Request) { r.PrimaryTermYears = 0 }},
		{"No primary loan", func(r *Request) { r.TotalPrincipal = 100000 }},
		{"Nothing to finance", func(r *Request) {
			r.TotalPrincipal = 0
			r.SubsidizedEnabled = false
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			tt.modify(&req)
			result := Compute(req)

			expected := len(result.Primary.Schedule)
			if len(result.Subsidized.Schedule) > expected {
				expected = len(result.Subsidized.Schedule)
			}
			if len(result.Schedule) != expected {
				t.Errorf("combined length = %d, expected %d", len(result.Schedule), expected)
			}
			for i, entry := range result.Schedule {
				if entry.Month != i+1 {
					t.Fatalf("combined entry %d has month %d", i, entry.Month)
				}
			}
		})
	}
}

func TestComputeStandInEntries(t *testing.T) {
	t.Run("Finished primary contributes zeros", func(t *testing.T) {
		req := defaultRequest()
		req.PrimaryTermYears = 5
		result := Compute(req)

		if len(result.Schedule) != 120 {
			t.Fatalf("combined length = %d, expected 120", len(result.Schedule))
		}
		for _, entry := range result.Schedule[60:] {
			if entry.Primary.TotalPayment != 0 || entry.Primary.RemainingBalance != 0 || entry.Primary.Interest != 0 {
				t.Fatalf("month %d: primary stand-in carries values %+v", entry.Month, entry.Primary)
			}
			if entry.TotalPayment != entry.Subsidized.TotalPayment {
				t.Fatalf("month %d: combined payment %.4f differs from subsidized %.4f", entry.Month, entry.TotalPayment, entry.Subsidized.TotalPayment)
			}
		}
	})

	t.Run("Finished subsidized loan carries its balance forward", func(t *testing.T) {
		result := Compute(defaultRequest())
		last := result.Subsidized.Schedule[len(result.Subsidized.Schedule)-1].RemainingBalance

		for _, entry := range result.Schedule[120:] {
			sub := entry.Subsidized
			if sub.RemainingBalance != last {
				t.Fatalf("month %d: subsidized balance %.4f, expected carried %.4f", entry.Month, sub.RemainingBalance, last)
			}
			if sub.Interest != 0 || sub.ScheduledPrincipal != 0 || sub.TotalPayment != 0 {
				t.Fatalf("month %d: subsidized stand-in has cash flows %+v", entry.Month, sub)
			}
			if !testutil.ApproxEqual(entry.RemainingBalance, entry.Primary.RemainingBalance+last) {
				t.Fatalf("month %d: combined balance %.4f, expected %.4f", entry.Month, entry.RemainingBalance, entry.Primary.RemainingBalance+last)
			}
		}
	})
}

func TestComputeMatchesIndividualLoans(t *testing.T) {
	req := defaultRequest()
	result := Compute(req)

	primary := loans.Compute(loans.Parameters{
		Principal:            400000,
		InterestRate:         3.5,
		AmortizationRate:     2.0,
		SpecialRepaymentRate: 1.0,
		Term:                 loans.TermFromYears(15),
	})
	subsidized := loans.Compute(loans.Parameters{
		Principal:        100000,
		InterestRate:     1.5,
		AmortizationRate: 2.0,
		Term:             loans.TermFromYears(10),
	})

	if !reflect.DeepEqual(result.Primary.Result, primary) {
		t.Errorf("primary result differs from a direct amortizer run")
	}
	if !reflect.DeepEqual(result.Subsidized.Result, subsidized) {
		t.Errorf("subsidized result differs from a direct amortizer run")
	}

	sumInterest, sumPrincipal := 0.0, 0.0
	for _, entry := range result.Schedule {
		sumInterest += entry.Interest
		sumPrincipal += entry.ScheduledPrincipal + entry.SpecialRepayment
	}
	if math.Abs(sumInterest-result.Totals.TotalInterest) > 1e-6 {
		t.Errorf("summed monthly interest %.6f differs from total %.6f", sumInterest, result.Totals.TotalInterest)
	}
	if math.Abs(sumPrincipal-result.Totals.TotalPrincipalPaid) > 1e-6 {
		t.Errorf("summed monthly principal %.6f differs from total %.6f", sumPrincipal, result.Totals.TotalPrincipalPaid)
	}
}

func TestComputeIdempotent(t *testing.T) {
	req := defaultRequest()
	first := Compute(req)
	second := NewCombiner(zap.NewNop()).Compute(req)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated computation produced different results")
	}
}

func TestMergeSchedules(t *testing.T) {
	primary := loans.Result{Schedule: []loans.MonthlyEntry{
		{Month: 1, Interest: 10, ScheduledPrincipal: 90, TotalPayment: 100, RemainingBalance: 110},
		{Month: 2, Interest: 5, ScheduledPrincipal: 110, TotalPayment: 115, RemainingBalance: 0},
	}}
	subsidized := loans.Result{Schedule: []loans.MonthlyEntry{
		{Month: 1, Interest: 1, ScheduledPrincipal: 4, TotalPayment: 5, RemainingBalance: 46},
	}, RemainingPrincipal: 46}

	merged := MergeSchedules(primary, subsidized)
	if len(merged) != 2 {
		t.Fatalf("merged length = %d, expected 2", len(merged))
	}

	if merged[0].Interest != 11 || merged[0].TotalPayment != 105 || merged[0].RemainingBalance != 156 {
		t.Errorf("month 1 = %+v", merged[0])
	}
	if merged[1].Subsidized.RemainingBalance != 46 || merged[1].Subsidized.TotalPayment != 0 {
		t.Errorf("month 2 subsidized stand-in = %+v", merged[1].Subsidized)
	}
	if merged[1].RemainingBalance != 46 || merged[1].TotalPayment != 115 {
		t.Errorf("month 2 = %+v", merged[1])
	}

	if got := MergeSchedules(loans.Result{}, loans.Result{}); len(got) != 0 {
		t.Errorf("merging empty schedules produced %d entries", len(got))
	}
}
