// Package renderer formats engine results as markdown reports.
package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// term renders the holding-period classification of a fragment.
func term(longTerm bool) string {
	if longTerm {
		return "long"
	}
	return "short"
}

// fragmentBasis returns the cost basis consumed by one fragment.
func fragmentBasis(f taxlot.Fragment) taxlot.Money {
	return f.UnitBasis.Mul(f.Quantity)
}

// renderFailures appends the failed-partitions section, if any partition
// failed. Reports over a partially failed run must say so prominently.
func renderFailures(b *strings.Builder, failures []*taxlot.DataIntegrityError) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprint(b, "## Failed Partitions\n\n")
	fmt.Fprint(b, "The following partitions could not be processed; their figures are missing from this report.\n\n")
	for _, f := range failures {
		fmt.Fprintf(b, "- `%s@%s` transaction `%s`: %s\n", f.Asset, f.Source, f.TxID, f.Reason)
	}
	fmt.Fprint(b, "\n")
}
