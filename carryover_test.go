package taxlot

import (
	"errors"
	"testing"
	"time"
)

func TestLossCapAndCarryover(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(30000)),
		NewSell(NewDate(2023, time.December, 1), "s1", "BTC", "coinbase", Q(1), USD(20000)),
	)
	r := mustRun(t, l, noWash())

	y, ok := r.YearOf(2023)
	if !ok {
		t.Fatal("missing 2023 summary")
	}
	if !y.Net.Equal(USD(-10000)) {
		t.Errorf("net = %s, want -10,000", y.Net)
	}
	if !y.Deduction.Equal(USD(3000)) {
		t.Errorf("deduction = %s, want the 3,000 cap", y.Deduction)
	}
	if !y.CarryoverOut.ShortTerm.Equal(USD(7000)) || !y.CarryoverOut.LongTerm.IsZero() {
		t.Errorf("carryover short=%s long=%s, want short=7,000 long=0",
			y.CarryoverOut.ShortTerm, y.CarryoverOut.LongTerm)
	}

	carry, ok := r.Carryover()
	if !ok || !carry.ShortTerm.Equal(USD(7000)) {
		t.Errorf("Carryover() = %v, %v", carry, ok)
	}
}

func TestCarryoverConsumedNextYear(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(2), USD(30000)),
		NewSell(NewDate(2023, time.December, 1), "s1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2024, time.June, 1), "s2", "BTC", "coinbase", Q(1), USD(45000)),
	)
	r := mustRun(t, l, noWash())

	y24, ok := r.YearOf(2024)
	if !ok {
		t.Fatal("missing 2024 summary")
	}
	if !y24.CarryoverIn.ShortTerm.Equal(USD(7000)) {
		t.Errorf("2024 carryover in = %s, want 7,000", y24.CarryoverIn.ShortTerm)
	}
	// 15,000 gain (long-term by then) minus the 7,000 short-term carryover.
	if !y24.Net.Equal(USD(8000)) {
		t.Errorf("2024 net = %s, want 8,000", y24.Net)
	}
	if !y24.CarryoverOut.IsZero() {
		t.Errorf("gain year must consume the carryover, got %v", y24.CarryoverOut)
	}
}

func TestOpeningCarryoverImported(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(1), USD(25000)),
	)
	opening := &CarryoverRecord{Year: 2022, ShortTerm: USD(2000), LongTerm: USD(0)}
	r, err := Run(l, noWash(), opening, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	y, _ := r.YearOf(2023)
	if !y.Net.Equal(USD(3000)) {
		t.Errorf("net = %s, want 5,000 gain - 2,000 opening carryover", y.Net)
	}
}

func TestCarryoverCharacterSplit(t *testing.T) {
	// Short and long losses in the same year: the excess over the cap carries
	// forward proportionally by character.
	s := &YearSummary{Year: 2023, ShortTerm: USD(-6000), LongTerm: USD(-4000),
		OrdinaryIncome: USD(0)}
	closeYear(s, USD(3000))

	if !s.Deduction.Equal(USD(3000)) {
		t.Errorf("deduction = %s, want 3,000", s.Deduction)
	}
	// Excess 7,000 splits 60/40.
	if !s.CarryoverOut.ShortTerm.Equal(USD(4200)) {
		t.Errorf("short carryover = %s, want 4,200", s.CarryoverOut.ShortTerm)
	}
	if !s.CarryoverOut.LongTerm.Equal(USD(2800)) {
		t.Errorf("long carryover = %s, want 2,800", s.CarryoverOut.LongTerm)
	}
}

func TestLossUnderCap(t *testing.T) {
	s := &YearSummary{Year: 2023, ShortTerm: USD(-1000), LongTerm: USD(0),
		OrdinaryIncome: USD(0)}
	closeYear(s, USD(3000))

	// A loss under the cap is fully deductible, nothing carries.
	if !s.Deduction.Equal(USD(1000)) {
		t.Errorf("deduction = %s, want the whole 1,000 loss", s.Deduction)
	}
	if !s.CarryoverOut.IsZero() {
		t.Errorf("carryover = %v, want zero", s.CarryoverOut)
	}
}

func TestStaleCarryoverRejected(t *testing.T) {
	// An opening record dated inside (or after) the ledger's year range was
	// not produced by the preceding year: consuming it would misplace the
	// deferred loss, so the run refuses it outright.
	l := mustLedger(t,
		NewBuy(NewDate(2020, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2020, time.June, 1), "s1", "BTC", "coinbase", Q(1), USD(25000)),
	)
	opening := &CarryoverRecord{Year: 2023, ShortTerm: USD(2000), LongTerm: USD(0)}

	_, err := Run(l, noWash(), opening, nil)
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Run() error = %v, want a configuration error for the mismatched record", err)
	}
}

func TestCarryoverImportedAcrossGapYears(t *testing.T) {
	// The opening record predates the ledger by several inactive years: it is
	// consumed once, by the first year the ledger actually summarizes.
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(1), USD(25000)),
	)
	opening := &CarryoverRecord{Year: 2020, ShortTerm: USD(2000), LongTerm: USD(0)}
	r, err := Run(l, noWash(), opening, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	y, _ := r.YearOf(2023)
	if !y.Net.Equal(USD(3000)) {
		t.Errorf("net = %s, want 5,000 gain - 2,000 opening carryover", y.Net)
	}
	if !y.CarryoverOut.IsZero() {
		t.Errorf("carryover out = %+v, want nothing left", y.CarryoverOut)
	}
}
