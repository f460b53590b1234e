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

type incomeCmd struct {
	year   int
	ledger string
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "ordinary income report (staking, mining, airdrops)" }
func (*incomeCmd) Usage() string {
	return `tlc income [-y <year>] [-l <ledger>]

  Lists income receipts valued at fair market value on receipt date.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", taxlot.Today().Year(), "Tax year to report on. 0 reports every year.")
	f.StringVar(&c.ledger, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := runEngine(c.ledger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.IncomeMarkdown(result, c.year))
	return subcommands.ExitSuccess
}
