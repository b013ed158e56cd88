// Package output provides utilities for formatting and displaying financing results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/financing"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders result in the given format.
func Write(w io.Writer, format string, result financing.Combined) error {
	switch format {
	case constants.OutputFormatPretty:
		WritePretty(w, result)
		return nil
	case constants.OutputFormatCSV:
		WriteCsv(w, result)
		return nil
	case constants.OutputFormatJSON:
		return WriteJSON(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WritePretty writes the loan summaries followed by a yearly table.
func WritePretty(w io.Writer, result financing.Combined) {
	p := message.NewPrinter(language.English)

	primary := result.Primary
	_, _ = fmt.Fprintf(w, "--- Primary loan ---\n")
	_, _ = p.Fprintf(w, "Principal:          %.2f\n", primary.Principal)
	_, _ = p.Fprintf(w, "Term:               %s\n", termLabel(primary.HasPlannedTerm, primary.PlannedTermMonths))
	_, _ = p.Fprintf(w, "Months simulated:   %d\n", primary.TotalMonths)
	_, _ = p.Fprintf(w, "Interest paid:      %.2f\n", primary.TotalInterest)
	_, _ = p.Fprintf(w, "Principal repaid:   %.2f\n", primary.TotalPrincipalPaid)
	if primary.TotalMonths > 0 && mathutil.IsZero(primary.RemainingPrincipal) {
		_, _ = p.Fprintf(w, "Paid off after:     %d months\n", primary.TotalMonths)
	} else {
		_, _ = p.Fprintf(w, "Remaining balance:  %.2f\n", primary.RemainingPrincipal)
	}
	if primary.MonthlyReserveContribution > 0 {
		_, _ = p.Fprintf(w, "Monthly reserve:    %.2f\n", primary.MonthlyReserveContribution)
	}

	subsidized := result.Subsidized
	if subsidized.Enabled {
		_, _ = fmt.Fprintf(w, "\n--- Subsidized loan ---\n")
		_, _ = p.Fprintf(w, "Principal:          %.2f\n", subsidized.Principal)
		_, _ = p.Fprintf(w, "Interest rate:      %.2f%%\n", subsidized.InterestRate)
		_, _ = p.Fprintf(w, "Term:               %s\n", termLabel(true, subsidized.PlannedTermMonths))
		_, _ = p.Fprintf(w, "Interest paid:      %.2f\n", subsidized.TotalInterest)
		_, _ = p.Fprintf(w, "Principal repaid:   %.2f\n", subsidized.TotalPrincipalPaid)
		_, _ = p.Fprintf(w, "Transfer in month %d: %.2f\n", subsidized.TransferMonth, subsidized.TransferAmount)
	}

	totals := result.Totals
	_, _ = fmt.Fprintf(w, "\n--- Total ---\n")
	_, _ = p.Fprintf(w, "Requested principal: %.2f\n", totals.RequestedPrincipal)
	_, _ = p.Fprintf(w, "First monthly rate:  %.2f\n", totals.FirstMonthPayment)
	_, _ = p.Fprintf(w, "Total interest:      %.2f\n", totals.TotalInterest)
	_, _ = p.Fprintf(w, "Total paid:          %.2f\n", totals.TotalAmount)
	_, _ = p.Fprintf(w, "Remaining principal: %.2f\n", totals.RemainingPrincipal)

	years := financing.YearlySummary(result.Schedule)
	if len(years) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\nYear | Interest | Principal | Special | Reserve | Payments | Remaining\n")
	_, _ = fmt.Fprintf(w, "____ | ________ | _________ | _______ | _______ | ________ | _________\n")
	for _, year := range years {
		_, _ = p.Fprintf(w, "%4d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f\n",
			year.Year, year.Interest, year.ScheduledPrincipal, year.SpecialRepayment,
			year.ReserveContribution, year.TotalPayment, year.RemainingBalance)
	}
}

func termLabel(planned bool, months int) string {
	if !planned {
		return "open-ended"
	}
	if months%constants.MonthsPerYear == 0 {
		return fmt.Sprintf("%d years", months/constants.MonthsPerYear)
	}
	return fmt.Sprintf("%d months", months)
}

// WriteCsv writes one row per month of the combined schedule. Amounts are
// rounded to whole cents.
func WriteCsv(w io.Writer, result financing.Combined) {
	_, _ = fmt.Fprintf(w, `"month","primary interest","primary principal","primary special","primary balance",`)
	_, _ = fmt.Fprintf(w, `"subsidized interest","subsidized principal","subsidized balance",`)
	_, _ = fmt.Fprintf(w, `"reserve","total payment","remaining balance"`)
	_, _ = fmt.Fprintf(w, "\n")
	for _, entry := range result.Schedule {
		_, _ = fmt.Fprintf(w, `"%d","%s","%s","%s","%s","%s","%s","%s","%s","%s","%s"`,
			entry.Month,
			cents(entry.Primary.Interest), cents(entry.Primary.ScheduledPrincipal),
			cents(entry.Primary.SpecialRepayment), cents(entry.Primary.RemainingBalance),
			cents(entry.Subsidized.Interest), cents(entry.Subsidized.ScheduledPrincipal), cents(entry.Subsidized.RemainingBalance),
			cents(entry.ReserveContribution), cents(entry.TotalPayment), cents(entry.RemainingBalance))
		_, _ = fmt.Fprintf(w, "\n")
	}
}

// cents formats an amount rounded half away from zero.
func cents(amount float64) string {
	return strconv.FormatFloat(mathutil.Round(amount), 'f', 2, 64)
}

// WriteJSON writes result as an indented JSON document.
func WriteJSON(w io.Writer, result financing.Combined) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
