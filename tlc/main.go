// Command tlc is the tax-lot calculator CLI.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/ledgerlot/taxlot/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion. It must be
// invoked before flag parsing: in completion mode it prints candidates and
// exits.
func completion() {
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{Flags: map[string]complete.Predictor{
			"l": predict.Files("*.jsonl"),
		}}
	}
	tlc := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"ledger-path":    predict.Dirs("*"),
			"config-file":    predict.Files("*.json"),
			"carryover-file": predict.Files("*.json"),
		},
	}
	tlc.Complete("tlc")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
