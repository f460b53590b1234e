package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// ReconcileMarkdown renders the balance reconciliation report: derived
// balances against observed ones, with mismatches flagged for review.
func ReconcileMarkdown(r *taxlot.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Balance Reconciliation\n\n")
	fmt.Fprintf(&b, "Run %s\n\n", r.RunID)

	renderFailures(&b, r.Failures)

	if len(r.Reconciliations) == 0 {
		fmt.Fprint(&b, "No observed balances were provided.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Asset | Source | Computed | Observed | Delta | Status |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|:---|")
	mismatches := 0
	for _, rec := range r.Reconciliations {
		if rec.Status == taxlot.ReconMismatch {
			mismatches++
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			rec.Asset, rec.Source, rec.Computed, rec.Observed, rec.Delta, rec.Status)
	}
	if mismatches > 0 {
		fmt.Fprintf(&b, "\n%d balance(s) need manual review.\n", mismatches)
	} else {
		fmt.Fprint(&b, "\nAll balances match.\n")
	}
	return b.String()
}
