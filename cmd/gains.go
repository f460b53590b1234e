package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/ledgerlot/taxlot"
	"github.com/ledgerlot/taxlot/renderer"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	year   int
	ledger string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "capital gains report with lot-level detail" }
func (*gainsCmd) Usage() string {
	return `tlc gains [-y <year>] [-l <ledger>]

  Matches every disposal against its lots and displays realized gains and
  losses, holding-period classification and wash-sale disallowances.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", taxlot.Today().Year(), "Tax year to report on. 0 reports every year.")
	f.StringVar(&c.ledger, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := runEngine(c.ledger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.GainsMarkdown(result, c.year))
	return subcommands.ExitSuccess
}
