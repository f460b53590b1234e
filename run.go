package taxlot

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"slices"
	"sort"
	"strings"
)

// Result is the complete output of one engine run over a ledger snapshot.
// All state is explicit: the run owns its lots and records, there is no
// process-wide ledger, and an unchanged snapshot reproduces the identical
// result, identifiers included.
type Result struct {
	RunID  string // deterministic identifier of (snapshot, config)
	Method AccountingMethod

	Disposals       []Disposal
	Incomes         []IncomeEvent
	Adjustments     []WashSaleAdjustment
	OpenLots        []Lot
	Years           []YearSummary
	Reconciliations []ReconciliationResult

	// Failures holds the per-partition data integrity errors. A failed
	// partition contributes nothing else to the result; sibling partitions
	// are unaffected.
	Failures []*DataIntegrityError
}

// Carryover returns the carryover record produced by the latest closed year.
func (r *Result) Carryover() (CarryoverRecord, bool) {
	if len(r.Years) == 0 {
		return CarryoverRecord{}, false
	}
	return r.Years[len(r.Years)-1].CarryoverOut, true
}

// partitionResult is what one partition worker sends back for merging.
type partitionResult struct {
	group     []string // asset symbols of the partition
	disposals []*Disposal
	incomes   []IncomeEvent
	washes    []WashSaleAdjustment
	lots      []Lot
	err       *DataIntegrityError
}

// Run executes the engine over one immutable ledger snapshot.
//
// Partitions are the equivalence closures of assets: assets tied together by
// a wash-sale equivalence set are processed by the same worker, since a loss
// in one can relocate onto a lot of the other. Partitions share no mutable
// state and run concurrently; their outputs are merged only after every
// worker has completed. Within a partition, transactions are processed in
// strict chronological order.
//
// A ConfigurationError is fatal: an invalid configuration is rejected before
// any transaction is processed, and an opening carryover record that does not
// predate the ledger's earliest year is rejected at netting time.
// DataIntegrityErrors abort only their own partition and are reported in the
// Result.
func Run(ledger *Ledger, cfg Config, opening *CarryoverRecord, observed []ObservedBalance) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	groups := partitionGroups(ledger, &cfg)

	results := make(chan partitionResult, len(groups))
	for _, group := range groups {
		go func(group []string) {
			results <- runPartition(ledger, &cfg, group)
		}(group)
	}

	merged := &Result{
		RunID:  runID(ledger, &cfg),
		Method: cfg.Method,
	}
	var disposals []*Disposal
	for range groups {
		pr := <-results
		if pr.err != nil {
			merged.Failures = append(merged.Failures, pr.err)
			continue
		}
		disposals = append(disposals, pr.disposals...)
		merged.Incomes = append(merged.Incomes, pr.incomes...)
		merged.Adjustments = append(merged.Adjustments, pr.washes...)
		merged.OpenLots = append(merged.OpenLots, pr.lots...)
	}

	sortOutputs(merged, disposals)
	sort.Slice(merged.Failures, func(i, j int) bool {
		return merged.Failures[i].TxID < merged.Failures[j].TxID
	})

	years, err := netYears(disposals, merged.Incomes, opening, cfg.LossCap())
	if err != nil {
		return nil, err
	}
	merged.Years = years
	if len(observed) > 0 {
		merged.Reconciliations = reconcile(merged.OpenLots, observed, cfg.Tolerance)
	}
	return merged, nil
}

// runPartition processes one asset group chronologically. Any data integrity
// error discards the partition's partial output: a partition result is
// computed from a consistent snapshot or not at all.
func runPartition(ledger *Ledger, cfg *Config, group []string) partitionResult {
	byAsset := ledger.byAsset()
	var txs []Transaction
	for _, asset := range group {
		txs = append(txs, byAsset[asset]...)
	}
	// Merge the per-asset streams back into one chronological stream.
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].When().Before(txs[j].When()) })

	m := newMatcher(cfg, txs)
	if err := m.run(txs); err != nil {
		die, ok := AsDataIntegrityError(err)
		if !ok {
			die = &DataIntegrityError{Reason: err.Error()}
		}
		return partitionResult{group: group, err: die}
	}
	return partitionResult{
		group:     group,
		disposals: m.disposals,
		incomes:   m.incomes,
		washes:    m.washes,
		lots:      m.openLots(),
	}
}

// partitionGroups computes the asset groups of a run: the connected
// components of the configured equivalence sets, restricted to assets present
// in the ledger, plus a singleton group per remaining asset.
func partitionGroups(ledger *Ledger, cfg *Config) [][]string {
	assets := ledger.Assets()
	groupOf := make(map[string]int, len(assets))
	var groups [][]string

	for _, asset := range assets {
		if _, done := groupOf[asset]; done {
			continue
		}
		// Collect the equivalence closure of this asset.
		closure := []string{asset}
		groupOf[asset] = len(groups)
		for i := 0; i < len(closure); i++ {
			for other := range cfg.equivalents[closure[i]] {
				if _, done := groupOf[other]; done {
					continue
				}
				if !slices.Contains(assets, other) {
					continue
				}
				groupOf[other] = len(groups)
				closure = append(closure, other)
			}
		}
		slices.Sort(closure)
		groups = append(groups, closure)
	}
	return groups
}

// sortOutputs orders the merged collections deterministically: disposals and
// incomes chronologically (ties by id), adjustments in their disposals'
// order, lots by (asset, source, acquisition date, id).
func sortOutputs(r *Result, disposals []*Disposal) {
	sort.SliceStable(disposals, func(i, j int) bool {
		if !disposals[i].Date.Before(disposals[j].Date) && !disposals[j].Date.Before(disposals[i].Date) {
			return disposals[i].ID < disposals[j].ID
		}
		return disposals[i].Date.Before(disposals[j].Date)
	})
	r.Disposals = make([]Disposal, 0, len(disposals))
	for _, d := range disposals {
		r.Disposals = append(r.Disposals, *d)
	}

	sort.SliceStable(r.Incomes, func(i, j int) bool {
		if !r.Incomes[i].Date.Before(r.Incomes[j].Date) && !r.Incomes[j].Date.Before(r.Incomes[i].Date) {
			return r.Incomes[i].TxID < r.Incomes[j].TxID
		}
		return r.Incomes[i].Date.Before(r.Incomes[j].Date)
	})

	order := make(map[string]int, len(r.Disposals))
	for i, d := range r.Disposals {
		order[d.ID] = i
	}
	sort.SliceStable(r.Adjustments, func(i, j int) bool {
		return order[r.Adjustments[i].DisposalID] < order[r.Adjustments[j].DisposalID]
	})

	sort.SliceStable(r.OpenLots, func(i, j int) bool {
		a, b := r.OpenLots[i], r.OpenLots[j]
		if a.Asset != b.Asset {
			return a.Asset < b.Asset
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Acquired.Before(b.Acquired) || b.Acquired.Before(a.Acquired) {
			return a.Acquired.Before(b.Acquired)
		}
		return a.ID < b.ID
	})
}

// runID derives the deterministic run identifier from the canonical ledger
// encoding and the canonical configuration. Two runs over an unchanged
// snapshot share the identifier; any change to either input produces a new
// one, so a partially failed run can never be silently merged with a prior
// successful run's results.
func runID(ledger *Ledger, cfg *Config) string {
	h := fnv.New64a()
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err == nil {
		h.Write(buf.Bytes())
	}
	h.Write(cfg.canonical())
	return fmt.Sprintf("run-%016x", h.Sum64())
}

// Balances returns the computed balance per (asset, source), for display.
func (r *Result) Balances() []ObservedBalance {
	totals := make(map[partitionKey]Quantity)
	for _, l := range r.OpenLots {
		key := partitionKey{Asset: l.Asset, Source: l.Source}
		totals[key] = totals[key].Add(l.Open)
	}
	var out []ObservedBalance
	for key, qty := range totals {
		out = append(out, ObservedBalance{Asset: key.Asset, Source: key.Source, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset < out[j].Asset
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// YearOf returns the summary of one tax year, if the run produced it.
func (r *Result) YearOf(year int) (YearSummary, bool) {
	for _, y := range r.Years {
		if y.Year == year {
			return y, true
		}
	}
	return YearSummary{}, false
}

// String implements a short human summary of the run, handy in logs.
func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d disposals, %d income events, %d wash adjustments, %d open lots",
		r.RunID, len(r.Disposals), len(r.Incomes), len(r.Adjustments), len(r.OpenLots))
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, ", %d failed partitions", len(r.Failures))
	}
	return b.String()
}
