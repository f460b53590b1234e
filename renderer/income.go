package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// IncomeMarkdown renders the ordinary income report for one tax year, or for
// every year when year is zero.
func IncomeMarkdown(r *taxlot.Result, year int) string {
	var b strings.Builder

	if year != 0 {
		fmt.Fprintf(&b, "# Ordinary Income Report %d\n\n", year)
	} else {
		fmt.Fprint(&b, "# Ordinary Income Report\n\n")
	}

	renderFailures(&b, r.Failures)

	fmt.Fprintln(&b, "| Date | Tx | Asset | Source | Kind | Quantity | FMV | Amount |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|---:|")

	total := taxlot.USD(0)
	for _, e := range r.Incomes {
		if year != 0 && e.Year() != year {
			continue
		}
		total = total.Add(e.Amount)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			e.Date, e.TxID, e.Asset, e.Source, e.Kind, e.Quantity, e.FMV, e.Amount)
	}
	fmt.Fprintf(&b, "\nTotal ordinary income: %s\n", total)

	return b.String()
}
