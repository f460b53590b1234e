package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/ledgerlot/taxlot"
	"github.com/shopspring/decimal"
)

// tradeFlags holds the flags shared by every transaction subcommand.
// Quantities and prices are parsed as decimals, never floats: crypto
// quantities are fractional far beyond float precision.
type tradeFlags struct {
	date     string
	asset    string
	source   string
	quantity string
	price    string
	fee      string
	feeAsset string
	ledger   string
}

func (c *tradeFlags) set(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.asset, "a", "", "Asset symbol (e.g. BTC)")
	f.StringVar(&c.source, "s", "", "Source venue or wallet (e.g. coinbase)")
	f.StringVar(&c.quantity, "q", "", "Quantity of the asset")
	f.StringVar(&c.price, "p", "", "USD unit price at event time")
	f.StringVar(&c.fee, "fee", "", "Optional fee amount")
	f.StringVar(&c.feeAsset, "fee-asset", "", "Fee asset, defaults to the transaction asset")
	f.StringVar(&c.ledger, "l", "", "Ledger to append to. Defaults to the only ledger if one exists.")
}

// parse validates the shared flags and returns the parsed values.
func (c *tradeFlags) parse(priceRequired bool) (day taxlot.Date, quantity taxlot.Quantity, price taxlot.Money, err error) {
	day, err = taxlot.ParseDate(c.date)
	if err != nil {
		return day, quantity, price, fmt.Errorf("invalid date: %w", err)
	}
	if c.asset == "" || c.source == "" {
		return day, quantity, price, fmt.Errorf("-a and -s are required")
	}
	q, err := decimal.NewFromString(c.quantity)
	if err != nil || !q.IsPositive() {
		return day, quantity, price, fmt.Errorf("invalid quantity %q", c.quantity)
	}
	quantity = taxlot.Q(q)
	if c.price == "" {
		if priceRequired {
			return day, quantity, price, fmt.Errorf("-p is required")
		}
		price = taxlot.USD(0)
		return day, quantity, price, nil
	}
	p, err := decimal.NewFromString(c.price)
	if err != nil || p.IsNegative() {
		return day, quantity, price, fmt.Errorf("invalid price %q", c.price)
	}
	price = taxlot.USD(p)
	return day, quantity, price, nil
}

// feeQuantity parses the optional fee flag.
func (c *tradeFlags) feeQuantity() (taxlot.Quantity, error) {
	if c.fee == "" {
		return taxlot.Q(0), nil
	}
	v, err := decimal.NewFromString(c.fee)
	if err != nil || v.IsNegative() {
		return taxlot.Q(0), fmt.Errorf("invalid fee %q", c.fee)
	}
	return taxlot.Q(v), nil
}

func usageError(f *flag.FlagSet, err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	f.Usage()
	return subcommands.ExitUsageError
}

// --- buy ---

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record an acquisition, opening a new lot" }
func (*buyCmd) Usage() string {
	return `tlc buy -d <date> -a <asset> -s <source> -q <quantity> -p <price> [-fee <fee> [-fee-asset <asset>]]

  Records the purchase of an asset at a USD unit price.
`
}
func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, err := c.parse(true)
	if err != nil {
		return usageError(f, err)
	}
	fee, err := c.feeQuantity()
	if err != nil {
		return usageError(f, err)
	}
	tx := taxlot.NewBuy(day, "", c.asset, c.source, quantity, price).WithFee(fee, c.feeAsset)
	return appendTransaction(c.ledger, tx)
}

// --- sell ---

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a taxable disposal" }
func (*sellCmd) Usage() string {
	return `tlc sell -d <date> -a <asset> -s <source> -q <quantity> -p <price> [-fee <fee> [-fee-asset <asset>]]

  Records the sale of an asset at a USD unit price. The engine matches it
  against open lots per the configured accounting method.
`
}
func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, err := c.parse(true)
	if err != nil {
		return usageError(f, err)
	}
	fee, err := c.feeQuantity()
	if err != nil {
		return usageError(f, err)
	}
	tx := taxlot.NewSell(day, "", c.asset, c.source, quantity, price).WithFee(fee, c.feeAsset)
	return appendTransaction(c.ledger, tx)
}

// --- transfer ---

type transferCmd struct {
	tradeFlags
	destination string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move an asset between sources" }
func (*transferCmd) Usage() string {
	return `tlc transfer -d <date> -a <asset> -s <source> -to <destination> -q <quantity> [-p <price>]

  Moves a quantity between sources. Whether this realizes gains is decided by
  the transferIsTaxable configuration option; a custody move keeps each lot's
  acquisition date and basis. The price is only needed when transfers are
  taxable.
`
}
func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.destination, "to", "", "Destination venue or wallet")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, err := c.parse(false)
	if err != nil {
		return usageError(f, err)
	}
	if c.destination == "" {
		return usageError(f, fmt.Errorf("-to is required"))
	}
	tx := taxlot.NewTransfer(day, "", c.asset, c.source, c.destination, quantity, price)
	return appendTransaction(c.ledger, tx)
}

// --- income ---

type incomeTxCmd struct {
	tradeFlags
	kind string
}

func (*incomeTxCmd) Name() string     { return "income-tx" }
func (*incomeTxCmd) Synopsis() string { return "record an income receipt (staking, mining, airdrop, fork)" }
func (*incomeTxCmd) Usage() string {
	return `tlc income-tx -d <date> -a <asset> -s <source> -k <kind> -q <quantity> -p <fmv>

  Records an income receipt. The fair market value at receipt is ordinary
  income and becomes the cost basis of the new lot.
`
}
func (c *incomeTxCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.kind, "k", "", "Income kind: staking, mining, airdrop or fork")
}

func (c *incomeTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, fmv, err := c.parse(true)
	if err != nil {
		return usageError(f, err)
	}
	kind, err := taxlot.ParseIncomeKind(c.kind)
	if err != nil {
		return usageError(f, err)
	}
	tx := taxlot.NewIncome(day, "", c.asset, c.source, kind, quantity, fmv)
	return appendTransaction(c.ledger, tx)
}

// --- deposit ---

type depositCmd struct{ tradeFlags }

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record an inflow from outside the tracked perimeter" }
func (*depositCmd) Usage() string {
	return `tlc deposit -d <date> -a <asset> -s <source> -q <quantity> -p <price>

  Records an asset entering the tracked perimeter, opening a lot at the given
  USD unit basis.
`
}
func (c *depositCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, err := c.parse(true)
	if err != nil {
		return usageError(f, err)
	}
	tx := taxlot.NewDeposit(day, "", c.asset, c.source, quantity, price)
	return appendTransaction(c.ledger, tx)
}

// --- withdraw ---

type withdrawCmd struct {
	tradeFlags
	destination string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record an outflow to outside the tracked perimeter" }
func (*withdrawCmd) Usage() string {
	return `tlc withdraw -d <date> -a <asset> -s <source> -q <quantity> [-to <destination>] [-p <price>]

  Records an asset leaving the tracked perimeter. Whether this realizes gains
  is decided by the transferIsTaxable configuration option.
`
}
func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.destination, "to", "", "Optional destination label (e.g. an external address)")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, err := c.parse(false)
	if err != nil {
		return usageError(f, err)
	}
	tx := taxlot.NewWithdrawal(day, "", c.asset, c.source, quantity, price)
	tx.Destination = c.destination
	return appendTransaction(c.ledger, tx)
}
