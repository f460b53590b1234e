package taxlot

// WashSaleAdjustment records the relocation of a disallowed loss onto exactly
// one replacement lot. The adjustment ledger is a first-class output: it is
// what an auditor follows to explain why a reported loss shrank and why a
// later gain did too.
type WashSaleAdjustment struct {
	DisposalID string // loss sale whose loss was disallowed
	Disallowed Money  // dollar amount disallowed
	LotID      string // replacement lot receiving the basis increase
	NewBasis   Money  // the replacement lot's unit basis after adjustment
}

// acquisition is the wash evaluator's view of a replacement candidate.
type acquisition struct {
	TxID     string
	Date     Date
	Asset    string
	Source   string
	Quantity Quantity
	Price    Money
}

// pendingAdjust is a basis bump owed to a lot that does not exist yet: the
// replacement acquisition is later in the stream than the loss sale that
// elected it.
type pendingAdjust struct {
	amount  Money // dollar amount to fold into the lot's basis at creation
	resetTo Date
	reset   bool
}

// washEvaluator rewrites loss disposals per the wash-sale rule: a loss is
// disallowed up to the replacement quantity acquired within the 61-day window
// around the sale (30 days before through 30 days after, inclusive), and the
// disallowed amount is relocated onto the earliest qualifying replacement lot.
//
// Disposals reach the evaluator in strict chronological order, so a later
// disposal never consumes a lot whose basis a prior adjustment has not yet
// finalized.
type washEvaluator struct {
	cfg          *Config
	acquisitions []acquisition       // chronological, spanning the whole partition
	used         map[string]Quantity // units absorbed by a wash or spent from the books, per acquisition tx id
	pending      map[string]pendingAdjust
}

// newWashEvaluator indexes the partition's acquisitions upfront. The ledger
// snapshot is immutable, so the forward half of the window can be resolved
// immediately when a loss sale is processed.
func newWashEvaluator(cfg *Config, txs []Transaction) *washEvaluator {
	w := &washEvaluator{
		cfg:     cfg,
		used:    make(map[string]Quantity),
		pending: make(map[string]pendingAdjust),
	}
	for _, tx := range txs {
		switch v := tx.(type) {
		case Buy:
			w.index(v.tradeCmd)
		case Deposit:
			w.index(v.tradeCmd)
		case Income:
			w.index(v.tradeCmd)
		}
	}
	return w
}

func (w *washEvaluator) index(t tradeCmd) {
	w.acquisitions = append(w.acquisitions, acquisition{
		TxID:     t.ID,
		Date:     t.Date,
		Asset:    t.Asset,
		Source:   t.Source,
		Quantity: t.Quantity,
		Price:    t.Price,
	})
}

// qualifies reports whether an acquisition is a replacement candidate for a
// loss sale: inside the window, not the sale itself, an asset of the same
// configured equivalence set, and in strict broker mode, the same source.
func (w *washEvaluator) qualifies(a acquisition, d *Disposal, window Range) bool {
	if !window.Contains(a.Date) || a.TxID == d.ID {
		return false
	}
	if !w.cfg.Equivalent(d.Asset, a.Asset) {
		return false
	}
	if w.cfg.StrictBroker && a.Source != d.Source {
		return false
	}
	return true
}

// evaluate applies the wash-sale rule to one disposal. It returns the
// recorded adjustment, or nil when the rule does not bite. When it does, the
// disposal's fragment losses are scaled down by the disallowed fraction and
// the replacement lot's basis is increased — immediately if the lot already
// exists, or at creation through the pending map.
func (w *washEvaluator) evaluate(d *Disposal, lotByTx map[string]*Lot) *WashSaleAdjustment {
	if !w.cfg.WashSale {
		return nil
	}
	loss := d.Gain()
	if !loss.IsNegative() {
		return nil
	}

	window := WashWindow(d.Date)

	// Walk replacement candidates oldest first, keeping only those whose
	// units are still on the books: the earliest one receives the whole
	// disallowed amount. A candidate whose lot can no longer receive a basis
	// relocation would strand the disallowed loss, so it does not count.
	var candidates []*acquisition
	replacement := Q(0)
	for i := range w.acquisitions {
		a := &w.acquisitions[i]
		if !w.qualifies(*a, d, window) {
			continue
		}
		if !w.replaceable(a, d.Date, lotByTx) {
			continue
		}
		available := a.Quantity.Sub(w.used[a.TxID])
		if !available.IsPositive() {
			continue
		}
		candidates = append(candidates, a)
		replacement = replacement.Add(available)
		if !replacement.LessThan(d.Quantity) {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	target := candidates[0]

	// Disallow up to the replacement quantity, pro-rated when the replacement
	// covers less than the disposed quantity.
	disallowedQty := replacement.Min(d.Quantity)
	fraction := disallowedQty.Div(d.Quantity)
	disallowed := loss.Neg().Mul(fraction)

	// Replacement quantity absorbs a loss exactly once across disposals.
	w.absorb(candidates, disallowedQty)

	d.Disallowed = disallowed
	w.zeroDisallowed(d, fraction)

	newBasis := w.adjustReplacement(d, target, disallowed, lotByTx)
	return &WashSaleAdjustment{
		DisposalID: d.ID,
		Disallowed: disallowed,
		LotID:      target.TxID,
		NewBasis:   newBasis,
	}
}

// replaceable reports whether a candidate acquisition can still receive a
// basis relocation: either it is dated after the sale, so its lot will be
// created later in the scan, or its lot is still open (possibly at another
// source, after a custody move).
func (w *washEvaluator) replaceable(a *acquisition, sale Date, lotByTx map[string]*Lot) bool {
	if a.Date.After(sale) {
		return true
	}
	lot, ok := lotByTx[a.TxID]
	return ok && lot.Open.IsPositive()
}

// spend marks units that left the books, consumed by a disposal or withdrawn
// from the tracked perimeter. Spent units no longer count as replacement
// quantity for any sale, including the one that consumed them.
func (w *washEvaluator) spend(parts []consumed) {
	for _, p := range parts {
		w.used[p.lot.TxID] = w.used[p.lot.TxID].Add(p.quantity)
	}
}

// absorb marks replacement quantity as used, earliest candidates first.
func (w *washEvaluator) absorb(candidates []*acquisition, quantity Quantity) {
	remaining := quantity
	for _, a := range candidates {
		if remaining.IsZero() {
			return
		}
		available := a.Quantity.Sub(w.used[a.TxID])
		take := available.Min(remaining)
		w.used[a.TxID] = w.used[a.TxID].Add(take)
		remaining = remaining.Sub(take)
	}
}

// zeroDisallowed scales the fragments so that exactly the disallowed
// fraction of the disposal's realized loss disappears: the adjusted total
// equals the original total plus the disallowed amount.
func (w *washEvaluator) zeroDisallowed(d *Disposal, fraction Quantity) {
	keep := Q(1).Sub(fraction)
	for i := range d.Fragments {
		f := &d.Fragments[i]
		f.Gain = f.Gain.Mul(keep)
	}
}

// adjustReplacement relocates the disallowed amount onto the target
// replacement lot's unit basis and returns the new unit basis. A future
// acquisition is recorded as pending and folded in at lot creation.
func (w *washEvaluator) adjustReplacement(d *Disposal, target *acquisition, disallowed Money, lotByTx map[string]*Lot) Money {
	if lot, ok := lotByTx[target.TxID]; ok && lot.Open.IsPositive() {
		lot.UnitBasis = lot.UnitBasis.Add(disallowed.Div(lot.Open))
		if w.cfg.WashResetsHolding {
			lot.Acquired = d.Date
		}
		return lot.UnitBasis
	}

	// The replacement is acquired after the sale: owe it the bump.
	p := w.pending[target.TxID]
	p.amount = p.amount.Add(disallowed)
	if w.cfg.WashResetsHolding {
		p.resetTo = d.Date
		p.reset = true
	}
	w.pending[target.TxID] = p
	return target.Price.Add(p.amount.Div(target.Quantity))
}

// applyPending folds any owed basis bump into a freshly created lot.
func (w *washEvaluator) applyPending(lot *Lot) {
	p, ok := w.pending[lot.TxID]
	if !ok {
		return
	}
	lot.UnitBasis = lot.UnitBasis.Add(p.amount.Div(lot.Open))
	if p.reset {
		lot.Acquired = p.resetTo
	}
	delete(w.pending, lot.TxID)
}
