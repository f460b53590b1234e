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

type reconcileCmd struct {
	ledger   string
	balances string
	export   string
	source   string
	rows     string
	asset    string
	amount   string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "audit derived balances against observed ones" }
func (*reconcileCmd) Usage() string {
	return `tlc reconcile -balances <file> [-l <ledger>]
tlc reconcile -export <file> -source <name> -rows <path> -asset <path> -amount <path> [-l <ledger>]

  Compares the sum of remaining lot quantities per asset and source against
  externally observed balances. Observed balances come either from a JSONL
  file (-balances), or are extracted from a vendor JSON export (-export)
  with jsonpath expressions.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
	f.StringVar(&c.balances, "balances", "", "JSONL file of observed balances.")
	f.StringVar(&c.export, "export", "", "Vendor JSON export to extract balances from.")
	f.StringVar(&c.source, "source", "", "Source name to attach to extracted balances.")
	f.StringVar(&c.rows, "rows", "", "jsonpath selecting the balance rows in the export.")
	f.StringVar(&c.asset, "asset", "", "jsonpath to the asset symbol, relative to a row.")
	f.StringVar(&c.amount, "amount", "", "jsonpath to the balance amount, relative to a row.")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	observed, status := c.loadObserved()
	if status != subcommands.ExitSuccess {
		return status
	}
	result, err := runEngine(c.ledger, observed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ReconcileMarkdown(result))
	return subcommands.ExitSuccess
}

func (c *reconcileCmd) loadObserved() ([]taxlot.ObservedBalance, subcommands.ExitStatus) {
	switch {
	case c.balances != "":
		f, err := os.Open(c.balances)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening balances file: %v\n", err)
			return nil, subcommands.ExitFailure
		}
		defer f.Close()
		observed, err := taxlot.DecodeObservedBalances(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, subcommands.ExitFailure
		}
		return observed, subcommands.ExitSuccess

	case c.export != "":
		if c.source == "" || c.rows == "" || c.asset == "" || c.amount == "" {
			fmt.Fprintln(os.Stderr, "-export requires -source, -rows, -asset and -amount")
			return nil, subcommands.ExitUsageError
		}
		f, err := os.Open(c.export)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening export file: %v\n", err)
			return nil, subcommands.ExitFailure
		}
		defer f.Close()
		paths := taxlot.BalancePaths{Rows: c.rows, Asset: c.asset, Amount: c.amount}
		observed, err := taxlot.ExtractObservedBalances(f, c.source, paths)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, subcommands.ExitFailure
		}
		return observed, subcommands.ExitSuccess

	default:
		fmt.Fprintln(os.Stderr, "one of -balances or -export is required")
		return nil, subcommands.ExitUsageError
	}
}
