package taxlot

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ReconStatus is the outcome of one balance comparison.
type ReconStatus string

const (
	ReconMatch    ReconStatus = "match"
	ReconMismatch ReconStatus = "mismatch"
)

// ObservedBalance is a balance reported by an external collaborator (exchange
// API snapshot, chain scan) for one (asset, source) pair.
type ObservedBalance struct {
	Asset    string   `json:"asset"`
	Source   string   `json:"source"`
	Quantity Quantity `json:"quantity"`
}

// ReconciliationResult compares the engine-derived balance with an observed
// one. Mismatches are flagged for manual review, never fatal.
type ReconciliationResult struct {
	Asset    string
	Source   string
	Computed Quantity
	Observed Quantity
	Delta    Quantity // Observed - Computed
	Status   ReconStatus
}

// reconcile compares the sum of remaining open-lot quantities against the
// observed balances, flagging deltas beyond the rounding tolerance. It is
// strictly read-only against engine state: it works on the final lot
// snapshot and mutates nothing.
func reconcile(openLots []Lot, observed []ObservedBalance, tolerance decimal.Decimal) []ReconciliationResult {
	computed := make(map[partitionKey]Quantity)
	for _, l := range openLots {
		key := partitionKey{Asset: l.Asset, Source: l.Source}
		computed[key] = computed[key].Add(l.Open)
	}

	// Every observed pair is checked, and so is every derived pair the
	// observer is silent about: a balance the engine tracks but nobody
	// reports is as suspicious as the reverse.
	seen := make(map[partitionKey]bool)
	var results []ReconciliationResult
	for _, o := range observed {
		key := partitionKey{Asset: o.Asset, Source: o.Source}
		seen[key] = true
		results = append(results, compare(key, computed[key], o.Quantity, tolerance))
	}
	for key, qty := range computed {
		if seen[key] || qty.IsZero() {
			continue
		}
		results = append(results, compare(key, qty, Q(0), tolerance))
	}

	slices.SortFunc(results, func(a, b ReconciliationResult) int {
		if c := strings.Compare(a.Asset, b.Asset); c != 0 {
			return c
		}
		return strings.Compare(a.Source, b.Source)
	})
	return results
}

func compare(key partitionKey, computed, observed Quantity, tolerance decimal.Decimal) ReconciliationResult {
	delta := observed.Sub(computed)
	status := ReconMatch
	if delta.Abs().GreaterThan(Q(tolerance)) {
		status = ReconMismatch
	}
	return ReconciliationResult{
		Asset:    key.Asset,
		Source:   key.Source,
		Computed: computed,
		Observed: observed,
		Delta:    delta,
		Status:   status,
	}
}
