package taxlot

import "sort"

// Lot is a quantity of an asset acquired at a specific date and unit cost
// basis, available (wholly or partially) for future disposal matching.
//
// Lots are owned by the run: they are created when processing acquisitions,
// mutated only by the matcher (quantity reduced) and the wash-sale evaluator
// (basis increased), and dropped once their quantity reaches zero.
type Lot struct {
	ID         string   // unique within a run, derived from the originating transaction
	Asset      string   // asset symbol
	Source     string   // venue or wallet holding the lot
	Acquired   Date     // acquisition date, drives the holding period
	Open       Quantity // remaining quantity available for matching
	UnitBasis  Money    // USD cost basis per unit
	TxID       string   // originating transaction id
	FromIncome bool     // true when the lot was created by an income receipt
}

// Basis returns the total remaining cost basis of the lot.
func (l *Lot) Basis() Money { return l.UnitBasis.Mul(l.Open) }

// lotBook holds the open lots of one (asset, source) pair in acquisition
// order. Acquisition order is insertion order: the per-partition scan is
// chronological, so earlier entries were acquired earlier.
type lotBook struct {
	open []*Lot
}

// add appends a newly acquired lot.
func (b *lotBook) add(l *Lot) { b.open = append(b.open, l) }

// totalOpen returns the sum of remaining quantities over all open lots.
func (b *lotBook) totalOpen() Quantity {
	total := Q(0)
	for _, l := range b.open {
		total = total.Add(l.Open)
	}
	return total
}

// selection returns the open lots in the order the method consumes them.
// FIFO keeps acquisition order. HIFO sorts by highest unit basis first,
// breaking ties by oldest acquisition date (then acquisition order).
func (b *lotBook) selection(method AccountingMethod) []*Lot {
	if method == FIFO {
		return b.open
	}
	sel := make([]*Lot, len(b.open))
	copy(sel, b.open)
	sort.SliceStable(sel, func(i, j int) bool {
		if !sel[i].UnitBasis.Equal(sel[j].UnitBasis) {
			return sel[i].UnitBasis.GreaterThan(sel[j].UnitBasis)
		}
		return sel[i].Acquired.Before(sel[j].Acquired)
	})
	return sel
}

// consumed is one slice of a lot taken by a disposal. It captures the unit
// basis and acquisition date at consumption time, after any wash-sale
// adjustment already applied to the lot.
type consumed struct {
	lot       *Lot
	quantity  Quantity
	unitBasis Money
	acquired  Date
}

// consume takes quantity out of the book, per the given method, supporting
// partial consumption (the remainder stays open) and multi-lot consumption.
// It returns the consumed slices in consumption order, or false when the
// book does not hold enough quantity; in that case nothing is consumed.
func (b *lotBook) consume(quantity Quantity, method AccountingMethod) ([]consumed, bool) {
	if b.totalOpen().LessThan(quantity) {
		return nil, false
	}

	var parts []consumed
	remaining := quantity
	for _, l := range b.selection(method) {
		if remaining.IsZero() {
			break
		}
		if l.Open.IsZero() {
			continue
		}
		take := l.Open.Min(remaining)
		parts = append(parts, consumed{lot: l, quantity: take, unitBasis: l.UnitBasis, acquired: l.Acquired})
		l.Open = l.Open.Sub(take)
		remaining = remaining.Sub(take)
	}
	b.compact()
	return parts, true
}

// compact removes closed lots from the book.
func (b *lotBook) compact() {
	kept := b.open[:0]
	for _, l := range b.open {
		if !l.Open.IsZero() {
			kept = append(kept, l)
		}
	}
	b.open = kept
}

// remove takes quantity out of the book without realizing anything, moving
// the consumed slices to the caller. It is used by custody moves: the lots
// keep their acquisition date and basis, only their location changes.
func (b *lotBook) remove(quantity Quantity) ([]consumed, bool) {
	// A custody move always leaves in acquisition order, whatever the
	// configured matching method.
	return b.consume(quantity, FIFO)
}
