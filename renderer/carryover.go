package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// CarryoverMarkdown renders the year-by-year netting chain: per-category
// totals, the imported carryover, the capped deduction and what carries
// forward.
func CarryoverMarkdown(r *taxlot.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Year Netting and Carryover\n\n")
	fmt.Fprintf(&b, "Run %s\n\n", r.RunID)

	renderFailures(&b, r.Failures)

	fmt.Fprintln(&b, "| Year | Short | Long | Carry In | Net | Deduction | Carry Out (short) | Carry Out (long) | Ordinary Income |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
	for _, y := range r.Years {
		carryIn := y.CarryoverIn.ShortTerm.Add(y.CarryoverIn.LongTerm)
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			y.Year, y.ShortTerm.SignedString(), y.LongTerm.SignedString(),
			carryIn, y.Net.SignedString(), y.Deduction,
			y.CarryoverOut.ShortTerm, y.CarryoverOut.LongTerm, y.OrdinaryIncome)
	}

	if carry, ok := r.Carryover(); ok && !carry.IsZero() {
		fmt.Fprintf(&b, "\nCarryover into %d: short %s, long %s\n",
			carry.Year+1, carry.ShortTerm, carry.LongTerm)
	}
	return b.String()
}
