package taxlot

import (
	"testing"
	"time"
)

func TestSimpleGain(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(1), USD(25000)),
	)
	r := mustRun(t, l, DefaultConfig())

	if len(r.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(r.Disposals))
	}
	d := r.Disposals[0]
	if got := d.Gain(); !got.Equal(USD(5000)) {
		t.Errorf("gain = %s, want 5,000", got)
	}
	if d.Fragments[0].LongTerm {
		t.Error("five months of holding must be short-term")
	}
	if len(r.Adjustments) != 0 {
		t.Errorf("no repurchase in the window, got %d wash adjustments", len(r.Adjustments))
	}
	if len(r.OpenLots) != 0 {
		t.Errorf("fully disposed, got %d open lots", len(r.OpenLots))
	}
	y, ok := r.YearOf(2023)
	if !ok {
		t.Fatal("missing 2023 summary")
	}
	if !y.ShortTerm.Equal(USD(5000)) || !y.LongTerm.IsZero() {
		t.Errorf("year 2023 short=%s long=%s, want short=5,000 long=0", y.ShortTerm, y.LongTerm)
	}
}

func TestPartialAndMultiLotDisposal(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "ETH", "kraken", Q(2), USD(1000)),
		NewBuy(NewDate(2023, time.February, 1), "b2", "ETH", "kraken", Q(2), USD(2000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "ETH", "kraken", Q(3), USD(3000)),
	)
	r := mustRun(t, l, noWash())

	d := r.Disposals[0]
	if len(d.Fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(d.Fragments))
	}
	// FIFO: 2 from b1 (gain 2*(3000-1000)=4000), 1 from b2 (gain 1000).
	if !d.Fragments[0].Gain.Equal(USD(4000)) {
		t.Errorf("fragment 0 gain = %s, want 4,000", d.Fragments[0].Gain)
	}
	if !d.Fragments[1].Gain.Equal(USD(1000)) {
		t.Errorf("fragment 1 gain = %s, want 1,000", d.Fragments[1].Gain)
	}
	if len(r.OpenLots) != 1 || !r.OpenLots[0].Open.Equal(Q(1)) {
		t.Fatalf("want one open lot of 1 ETH, got %v", r.OpenLots)
	}
}

func TestHIFOReducesGain(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "ETH", "kraken", Q(1), USD(1000)),
		NewBuy(NewDate(2023, time.February, 1), "b2", "ETH", "kraken", Q(1), USD(2500)),
		NewSell(NewDate(2023, time.June, 1), "s1", "ETH", "kraken", Q(1), USD(3000)),
	)
	cfg := noWash()
	cfg.Method = HIFO
	r := mustRun(t, l, cfg)

	if got := r.Disposals[0].Gain(); !got.Equal(USD(500)) {
		t.Errorf("HIFO gain = %s, want 500 (highest basis lot consumed)", got)
	}
	if r.OpenLots[0].TxID != "b1" {
		t.Errorf("remaining lot should be the cheap one, got %s", r.OpenLots[0].TxID)
	}
}

func TestFeeReducesGain(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(1), USD(25000)).WithFee(Q(50), "USD"),
	)
	r := mustRun(t, l, DefaultConfig())

	if got := r.Disposals[0].Gain(); !got.Equal(USD(4950)) {
		t.Errorf("gain = %s, want 4,950 after the 50 USD fee", got)
	}
}

func TestOversoldPartitionFails(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(2), USD(25000)),
		// An unrelated asset must be unaffected by the BTC failure.
		NewBuy(NewDate(2023, time.January, 1), "b2", "ETH", "kraken", Q(1), USD(1000)),
	)
	r, err := Run(l, DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(r.Failures))
	}
	if r.Failures[0].TxID != "s1" {
		t.Errorf("failure names tx %q, want s1", r.Failures[0].TxID)
	}
	// The failed partition contributes no outputs.
	if len(r.Disposals) != 0 {
		t.Errorf("failed partition leaked %d disposals", len(r.Disposals))
	}
	// The ETH partition still reports its open lot.
	if len(r.OpenLots) != 1 || r.OpenLots[0].Asset != "ETH" {
		t.Errorf("expected the ETH lot to survive, got %v", r.OpenLots)
	}
}

func TestTransferKeepsBasisAndDate(t *testing.T) {
	acquired := NewDate(2022, time.March, 1)
	l := mustLedger(t,
		NewBuy(acquired, "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewTransfer(NewDate(2023, time.January, 10), "m1", "BTC", "coinbase", "ledger", Q(1), USD(0)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "ledger", Q(1), USD(30000)),
	)
	r := mustRun(t, l, DefaultConfig())

	if len(r.Disposals) != 1 {
		t.Fatalf("transfer must not be a disposal, got %d disposals", len(r.Disposals))
	}
	f := r.Disposals[0].Fragments[0]
	if !f.UnitBasis.Equal(USD(20000)) {
		t.Errorf("moved lot basis = %s, want the original 20,000", f.UnitBasis)
	}
	if f.Acquired != acquired {
		t.Errorf("moved lot acquired = %s, want the original %s", f.Acquired, acquired)
	}
	if !f.LongTerm {
		t.Error("holding period runs from the original acquisition, expected long-term")
	}
}

func TestTransferIsTaxable(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(20000)),
		NewTransfer(NewDate(2023, time.June, 1), "m1", "BTC", "coinbase", "ledger", Q(1), USD(25000)),
	)
	cfg := noWash()
	cfg.TransferIsTaxable = true
	r := mustRun(t, l, cfg)

	if len(r.Disposals) != 1 {
		t.Fatalf("taxable transfer must dispose, got %d disposals", len(r.Disposals))
	}
	if got := r.Disposals[0].Gain(); !got.Equal(USD(5000)) {
		t.Errorf("gain = %s, want 5,000", got)
	}
}

func TestWithdrawalRemovesSupply(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(2), USD(20000)),
		NewWithdrawal(NewDate(2023, time.February, 1), "w1", "BTC", "coinbase", Q(1), USD(0)),
	)
	r := mustRun(t, l, DefaultConfig())

	if len(r.Disposals) != 0 {
		t.Fatalf("withdrawal must not realize anything, got %d disposals", len(r.Disposals))
	}
	if len(r.OpenLots) != 1 || !r.OpenLots[0].Open.Equal(Q(1)) {
		t.Errorf("want 1 BTC remaining, got %v", r.OpenLots)
	}
}

func TestZeroPriceAcquisitionFails(t *testing.T) {
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(0)),
	)
	r, err := Run(l, DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.Failures) != 1 || r.Failures[0].TxID != "b1" {
		t.Fatalf("want one failure naming b1, got %v", r.Failures)
	}
}

func TestIncomeLotAtFMV(t *testing.T) {
	l := mustLedger(t,
		NewIncome(NewDate(2023, time.March, 1), "i1", "ETH", "kraken", IncomeStaking, Q(2), USD(1500)),
		NewSell(NewDate(2023, time.April, 1), "s1", "ETH", "kraken", Q(2), USD(1600)),
	)
	r := mustRun(t, l, noWash())

	if len(r.Incomes) != 1 {
		t.Fatalf("got %d income events, want 1", len(r.Incomes))
	}
	ev := r.Incomes[0]
	if !ev.Amount.Equal(USD(3000)) {
		t.Errorf("income amount = %s, want 3,000 (2 x 1,500 FMV)", ev.Amount)
	}
	if ev.Kind != IncomeStaking {
		t.Errorf("kind = %v, want staking", ev.Kind)
	}
	// The income lot's basis is its FMV: selling at 1,600 gains only the spread.
	if got := r.Disposals[0].Gain(); !got.Equal(USD(200)) {
		t.Errorf("gain = %s, want 200", got)
	}
	y, _ := r.YearOf(2023)
	if !y.OrdinaryIncome.Equal(USD(3000)) {
		t.Errorf("ordinary income = %s, want 3,000", y.OrdinaryIncome)
	}
}

func TestFragmentAllocationIsExact(t *testing.T) {
	// Three equal lots consumed by one sale with a fee that does not divide
	// evenly by the quantity: fragment proceeds and fees must still sum
	// exactly to the disposal's, with no residue from the pro-rata split.
	l := mustLedger(t,
		NewBuy(NewDate(2023, time.January, 1), "b1", "BTC", "coinbase", Q(1), USD(100)),
		NewBuy(NewDate(2023, time.February, 1), "b2", "BTC", "coinbase", Q(1), USD(100)),
		NewBuy(NewDate(2023, time.March, 1), "b3", "BTC", "coinbase", Q(1), USD(100)),
		NewSell(NewDate(2023, time.June, 1), "s1", "BTC", "coinbase", Q(3), USD(200)).WithFee(Q(10), "USD"),
	)
	r := mustRun(t, l, noWash())

	d := r.Disposals[0]
	if len(d.Fragments) != 3 {
		t.Fatalf("got %d fragments, want 3", len(d.Fragments))
	}
	proceeds, fees, gains := USD(0), USD(0), USD(0)
	for _, f := range d.Fragments {
		if !f.Proceeds.Equal(USD(200)) {
			t.Errorf("fragment %s proceeds = %s, want exactly 200", f.LotID, f.Proceeds)
		}
		proceeds = proceeds.Add(f.Proceeds)
		fees = fees.Add(f.Fee)
		gains = gains.Add(f.Gain)
	}
	if !proceeds.Equal(USD(600)) {
		t.Errorf("fragment proceeds sum = %s, want exactly 600", proceeds)
	}
	if !fees.Equal(USD(10)) {
		t.Errorf("fragment fees sum = %s, want exactly the 10 disposal fee", fees)
	}
	// 600 proceeds - 300 basis - 10 fee.
	if !gains.Equal(USD(290)) {
		t.Errorf("fragment gains sum = %s, want exactly 290", gains)
	}
}
