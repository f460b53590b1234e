package taxlot

import "testing"

// mustLedger builds a validated ledger from transactions, failing the test on
// any validation error.
func mustLedger(t *testing.T, txs ...Transaction) *Ledger {
	t.Helper()
	l := NewLedger()
	if err := l.Append(txs...); err != nil {
		t.Fatalf("could not build ledger: %v", err)
	}
	return l
}

// mustRun executes the engine and fails the test on a configuration error or
// on any partition failure.
func mustRun(t *testing.T, l *Ledger, cfg Config) *Result {
	t.Helper()
	r, err := Run(l, cfg, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.Failures) > 0 {
		t.Fatalf("Run() reported partition failures: %v", r.Failures)
	}
	return r
}

// noWash returns a default configuration with the wash-sale rule disabled,
// for tests that exercise plain matching.
func noWash() Config {
	cfg := DefaultConfig()
	cfg.WashSale = false
	return cfg
}
