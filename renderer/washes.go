package renderer

import (
	"fmt"
	"strings"

	"github.com/ledgerlot/taxlot"
)

// WashesMarkdown renders the wash-sale adjustment ledger: each disallowed
// loss with the replacement lot that absorbed it. This is the trail an
// auditor follows to explain a shrunken loss.
func WashesMarkdown(r *taxlot.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Wash Sale Adjustments\n\n")
	fmt.Fprintf(&b, "Run %s\n\n", r.RunID)

	renderFailures(&b, r.Failures)

	if len(r.Adjustments) == 0 {
		fmt.Fprint(&b, "No wash sale was detected.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Loss Sale | Disallowed | Replacement Lot | New Unit Basis |")
	fmt.Fprintln(&b, "|:---|---:|:---|---:|")
	for _, a := range r.Adjustments {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			a.DisposalID, a.Disallowed, a.LotID, a.NewBasis)
	}
	return b.String()
}
