package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/ledgerlot/taxlot"
)

func testResult(t *testing.T) *taxlot.Result {
	t.Helper()
	l := taxlot.NewLedger()
	err := l.Append(
		taxlot.NewBuy(taxlot.NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", taxlot.Q(1), taxlot.USD(30000)),
		taxlot.NewIncome(taxlot.NewDate(2023, time.March, 1), "i1", "ETH", "kraken", taxlot.IncomeStaking, taxlot.Q(2), taxlot.USD(1500)),
		taxlot.NewSell(taxlot.NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", taxlot.Q(1), taxlot.USD(20000)),
		taxlot.NewBuy(taxlot.NewDate(2023, time.June, 15), "b2", "BTC", "coinbase", taxlot.Q(1), taxlot.USD(21000)),
	)
	if err != nil {
		t.Fatal(err)
	}
	r, err := taxlot.Run(l, taxlot.DefaultConfig(), nil, []taxlot.ObservedBalance{
		{Asset: "BTC", Source: "coinbase", Quantity: taxlot.Q(1)},
		{Asset: "ETH", Source: "kraken", Quantity: taxlot.Q(1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestGainsMarkdown(t *testing.T) {
	out := GainsMarkdown(testResult(t), 2023)
	for _, want := range []string{"# Capital Gains Report 2023", "Method: fifo", "| Date |", "s1", "short"} {
		if !strings.Contains(out, want) {
			t.Errorf("gains report misses %q:\n%s", want, out)
		}
	}
}

func TestIncomeMarkdown(t *testing.T) {
	out := IncomeMarkdown(testResult(t), 2023)
	for _, want := range []string{"# Ordinary Income Report 2023", "i1", "staking"} {
		if !strings.Contains(out, want) {
			t.Errorf("income report misses %q:\n%s", want, out)
		}
	}
	// Another year filters everything out.
	if empty := IncomeMarkdown(testResult(t), 2020); strings.Contains(empty, "i1") {
		t.Error("year filter leaked an event from another year")
	}
}

func TestWashesMarkdown(t *testing.T) {
	out := WashesMarkdown(testResult(t))
	for _, want := range []string{"# Wash Sale Adjustments", "s1", "b2"} {
		if !strings.Contains(out, want) {
			t.Errorf("wash report misses %q:\n%s", want, out)
		}
	}
}

func TestCarryoverMarkdown(t *testing.T) {
	out := CarryoverMarkdown(testResult(t))
	for _, want := range []string{"# Year Netting and Carryover", "| 2023 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("carryover report misses %q:\n%s", want, out)
		}
	}
}

func TestReconcileMarkdown(t *testing.T) {
	out := ReconcileMarkdown(testResult(t))
	for _, want := range []string{"# Balance Reconciliation", "mismatch", "need manual review"} {
		if !strings.Contains(out, want) {
			t.Errorf("reconciliation report misses %q:\n%s", want, out)
		}
	}
}

func TestHoldingsMarkdown(t *testing.T) {
	out := HoldingsMarkdown(testResult(t))
	for _, want := range []string{"# Open Lots", "b2", "coinbase"} {
		if !strings.Contains(out, want) {
			t.Errorf("holdings report misses %q:\n%s", want, out)
		}
	}
}
