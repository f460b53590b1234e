// Package cmd implements the CLI application to compute crypto tax lots.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/ledgerlot/taxlot"
)

// Commands lists every subcommand, in registration order.
var Commands = []subcommands.Command{
	&gainsCmd{},
	&incomeCmd{},
	&washesCmd{},
	&carryoverCmd{},
	&reconcileCmd{},
	&holdingsCmd{},
	&fmtCmd{},
	&buyCmd{},
	&sellCmd{},
	&transferCmd{},
	&incomeTxCmd{},
	&depositCmd{},
	&withdrawCmd{},
	&topicCmd{},
}

// Register registers every subcommand on the commander.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerPath = flag.String("ledger-path", ".", "Path to the folder holding ledger files (JSONL format)")
var configFile = flag.String("config-file", "taxlot.json", "Path to the engine configuration file")
var carryoverFile = flag.String("carryover-file", "carryover.json", "Path to the prior-year carryover record")

// decodeLedger loads the ledger named by query from the app ledger path. An
// empty query selects the only ledger, or an empty default one in a fresh
// directory.
func decodeLedger(query string) (*taxlot.Ledger, error) {
	return taxlot.FindLedger(*ledgerPath, query)
}

// loadConfig loads the engine configuration, falling back to defaults when
// no config file exists.
func loadConfig() (taxlot.Config, error) {
	return taxlot.LoadConfig(*configFile)
}

// runEngine loads everything the engine needs and executes a run.
func runEngine(query string, observed []taxlot.ObservedBalance) (*taxlot.Result, error) {
	ledger, err := decodeLedger(query)
	if err != nil {
		return nil, fmt.Errorf("could not load ledger: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	opening, err := taxlot.LoadCarryover(*carryoverFile)
	if err != nil {
		return nil, fmt.Errorf("could not load carryover: %w", err)
	}
	return taxlot.Run(ledger, cfg, opening, observed)
}

// appendTransaction appends a single transaction to the ledger named by query
// and saves it back in canonical form.
func appendTransaction(query string, tx taxlot.Transaction) subcommands.ExitStatus {
	ledger, err := decodeLedger(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Append(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error appending transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := taxlot.SaveLedger(*ledgerPath, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully appended transaction to ledger %q\n", ledger.Name())
	return subcommands.ExitSuccess
}
