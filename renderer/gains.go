package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// GainsMarkdown renders the capital gains report for one tax year, or for
// every year when year is zero.
func GainsMarkdown(r *taxlot.Result, year int) string {
	var b strings.Builder

	if year != 0 {
		fmt.Fprintf(&b, "# Capital Gains Report %d\n\n", year)
	} else {
		fmt.Fprint(&b, "# Capital Gains Report\n\n")
	}
	fmt.Fprintf(&b, "Method: %s (run %s)\n\n", r.Method, r.RunID)

	renderFailures(&b, r.Failures)

	fmt.Fprint(&b, "## Disposals\n\n")
	fmt.Fprintln(&b, "| Date | Tx | Asset | Quantity | Proceeds | Basis | Fee | Gain | Term | Washed |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|:---|---:|")

	shortTotal, longTotal := taxlot.USD(0), taxlot.USD(0)
	for _, d := range r.Disposals {
		if year != 0 && d.Date.Year() != year {
			continue
		}
		for _, f := range d.Fragments {
			if f.LongTerm {
				longTotal = longTotal.Add(f.Gain)
			} else {
				shortTotal = shortTotal.Add(f.Gain)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				d.Date, d.ID, d.Asset, f.Quantity,
				f.Proceeds, fragmentBasis(f), f.Fee, f.Gain.SignedString(),
				term(f.LongTerm), d.Disallowed)
		}
	}
	fmt.Fprintf(&b, "\nShort-term total: %s\n\n", shortTotal.SignedString())
	fmt.Fprintf(&b, "Long-term total: %s\n\n", longTotal.SignedString())

	if y, ok := r.YearOf(year); ok {
		fmt.Fprint(&b, "## Year Netting\n\n")
		fmt.Fprintln(&b, "| Net | Deduction | Carryover Out (short) | Carryover Out (long) |")
		fmt.Fprintln(&b, "|---:|---:|---:|---:|")
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			y.Net.SignedString(), y.Deduction,
			y.CarryoverOut.ShortTerm, y.CarryoverOut.LongTerm)
	}

	return b.String()
}

// HoldingsMarkdown renders the open lots remaining at the end of a run.
func HoldingsMarkdown(r *taxlot.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Open Lots\n\n")
	fmt.Fprintf(&b, "Method: %s (run %s)\n\n", r.Method, r.RunID)

	renderFailures(&b, r.Failures)

	fmt.Fprintln(&b, "| Asset | Source | Lot | Acquired | Open | Unit Basis | Basis |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|")
	for i := range r.OpenLots {
		l := &r.OpenLots[i]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			l.Asset, l.Source, l.ID, l.Acquired, l.Open, l.UnitBasis, l.Basis())
	}
	return b.String()
}
