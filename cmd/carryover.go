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

type carryoverCmd struct {
	ledger string
	save   bool
}

func (*carryoverCmd) Name() string     { return "carryover" }
func (*carryoverCmd) Synopsis() string { return "year netting, loss cap and carryover chain" }
func (*carryoverCmd) Usage() string {
	return `tlc carryover [-l <ledger>] [-save]

  Nets each tax year, applies the annual loss cap and displays the carryover
  chain. With -save, the latest year's carryover record is written to the
  carryover file for next year's run.
`
}

func (c *carryoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
	f.BoolVar(&c.save, "save", false, "Write the latest carryover record to the carryover file.")
}

func (c *carryoverCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := runEngine(c.ledger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CarryoverMarkdown(result))

	if c.save {
		carry, ok := result.Carryover()
		if !ok {
			fmt.Fprintln(os.Stderr, "No closed year, nothing to save.")
			return subcommands.ExitSuccess
		}
		out, err := os.Create(*carryoverFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating carryover file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := taxlot.EncodeCarryover(out, carry); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing carryover file: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Saved carryover of year %d to %s\n", carry.Year, *carryoverFile)
	}
	return subcommands.ExitSuccess
}
