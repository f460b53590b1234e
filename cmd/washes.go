package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/ledgerlot/taxlot/renderer"
)

type washesCmd struct {
	ledger string
}

func (*washesCmd) Name() string     { return "washes" }
func (*washesCmd) Synopsis() string { return "wash-sale adjustment ledger" }
func (*washesCmd) Usage() string {
	return `tlc washes [-l <ledger>]

  Lists every disallowed loss with the replacement lot that absorbed it.
`
}

func (c *washesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *washesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := runEngine(c.ledger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.WashesMarkdown(result))
	return subcommands.ExitSuccess
}
