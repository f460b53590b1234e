package taxlot

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
)

// Ledger is the immutable snapshot of transactions the engine runs over.
//
// In a Ledger transactions are always in chronological order; within a day,
// append order is the chronological order.
type Ledger struct {
	name         string
	transactions []Transaction
	ids          map[string]bool // index of transaction ids
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make([]Transaction, 0),
		ids:          make(map[string]bool),
	}
}

// Name returns the ledger's name, set by the loader from its file path.
func (l *Ledger) Name() string { return l.name }

// SetName sets the ledger's name.
func (l *Ledger) SetName(name string) { l.name = name }

// Append validates transactions and adds them to the ledger, keeping the
// ledger sorted by date. A transaction without an id receives a deterministic
// one derived from its position, so an unchanged snapshot always yields the
// same identifiers.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		tx, err := l.Validate(tx)
		if err != nil {
			return err
		}
		l.transactions = append(l.transactions, tx)
		l.ids[tx.Ref()] = true
	}
	l.sort()
	return nil
}

// Validate checks a transaction for correctness and applies quick fixes
// (missing date, missing id). It returns the validated (and potentially
// modified) transaction or an error detailing the validation failure.
func (l *Ledger) Validate(tx Transaction) (Transaction, error) {
	tx, err := tx.Validate(l)
	if err != nil {
		return tx, fmt.Errorf("invalid %s transaction on %s: %w", tx.What(), tx.When(), err)
	}
	tx = l.identify(tx)
	if l.ids[tx.Ref()] {
		return tx, fmt.Errorf("duplicate transaction id %q", tx.Ref())
	}
	return tx, nil
}

// identify assigns a deterministic id to a transaction missing one.
func (l *Ledger) identify(tx Transaction) Transaction {
	if tx.Ref() != "" {
		return tx
	}
	id := fmt.Sprintf("t%06d", len(l.transactions)+1)
	switch v := tx.(type) {
	case Buy:
		v.ID = id
		return v
	case Sell:
		v.ID = id
		return v
	case Transfer:
		v.ID = id
		return v
	case Income:
		v.ID = id
		return v
	case Deposit:
		v.ID = id
		return v
	case Withdrawal:
		v.ID = id
		return v
	default:
		return tx
	}
}

// sort keeps transactions in chronological order. The sort is stable so that
// same-day transactions keep their append order, which is the intra-day
// chronological order.
func (l *Ledger) sort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// Transactions returns an iterator over all transactions in chronological order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Assets returns the sorted list of asset symbols present in the ledger.
func (l *Ledger) Assets() []string {
	set := make(map[string]bool)
	for _, tx := range l.transactions {
		switch v := tx.(type) {
		case Buy:
			set[v.Asset] = true
		case Sell:
			set[v.Asset] = true
		case Transfer:
			set[v.Asset] = true
		case Income:
			set[v.Asset] = true
		case Deposit:
			set[v.Asset] = true
		case Withdrawal:
			set[v.Asset] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// byAsset groups transactions per asset symbol, preserving chronological
// order. Each group is the processing unit of a run: partitions of different
// assets share no state.
func (l *Ledger) byAsset() map[string][]Transaction {
	groups := make(map[string][]Transaction)
	add := func(asset string, tx Transaction) {
		groups[asset] = append(groups[asset], tx)
	}
	for _, tx := range l.transactions {
		switch v := tx.(type) {
		case Buy:
			add(v.Asset, tx)
		case Sell:
			add(v.Asset, tx)
		case Transfer:
			add(v.Asset, tx)
		case Income:
			add(v.Asset, tx)
		case Deposit:
			add(v.Asset, tx)
		case Withdrawal:
			add(v.Asset, tx)
		}
	}
	return groups
}

// Fmt returns a canonical copy of the ledger: every transaction validated,
// identified and sorted. It is used by the fmt command to rewrite ledger
// files in canonical form.
func (l *Ledger) Fmt() (*Ledger, error) {
	canonical := NewLedger()
	canonical.name = l.name
	for _, tx := range l.transactions {
		if err := canonical.Append(tx); err != nil {
			return nil, err
		}
	}
	return canonical, nil
}
