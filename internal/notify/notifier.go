// Package notify reports completed investment cycles out-of-band. A
// notifier consumes the run report as plain data; failures here never
// fail the cycle that produced the report.
package notify

import (
	"fmt"
	"strings"

	"github.com/avasilakis/autoinvest/internal/modules/reporting"
)

// Notifier delivers a run summary
type Notifier interface {
	Send(subject, body string) error
	Name() string
}

// BuildMessage renders a run report as a plaintext notification
func BuildMessage(report *reporting.RunReport) (subject, body string) {
	mode := "LIVE"
	if report.DryRun {
		mode = "DRY RUN"
	}

	if report.Plan.IsEmpty() {
		subject = fmt.Sprintf("autoinvest [%s]: nothing to buy", mode)
	} else {
		subject = fmt.Sprintf("autoinvest [%s]: %d order(s), $%.2f invested",
			mode, len(report.Plan.Purchases), report.Spent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s at %s\n\n", report.ID, report.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Cash available: $%.2f\n", report.Cash)

	if report.Plan.IsEmpty() {
		b.WriteString("\nNo purchases: every target is at weight or unaffordable.\n")
	} else {
		b.WriteString("\nPurchases:\n")
		for _, p := range report.Plan.Purchases {
			fmt.Fprintf(&b, "  %-8s %4d shares @ $%.2f = $%.2f\n",
				p.Symbol, p.Shares, p.Price, p.EstimatedCost)
		}
		fmt.Fprintf(&b, "\nTotal invested: $%.2f\nLeftover cash:  $%.2f\n", report.Spent, report.Leftover)
	}

	for _, skip := range report.Plan.Skipped {
		fmt.Fprintf(&b, "Skipped %s: %s\n", skip.Symbol, skip.Reason)
	}

	fmt.Fprintf(&b, "\nDrift vs target: %.2f%% max before, %.2f%% max after\n",
		report.DriftBefore.MaxAbsPct*100, report.DriftAfter.MaxAbsPct*100)

	for _, ind := range report.Indicators {
		if ind.RSI14 != nil {
			fmt.Fprintf(&b, "%s RSI(14): %.1f\n", ind.Symbol, *ind.RSI14)
		}
	}

	for _, order := range report.Orders {
		if order.Error != nil {
			fmt.Fprintf(&b, "\nORDER FAILED %s: %s\n", order.Symbol, *order.Error)
		}
	}

	return subject, b.String()
}
