package taxlot

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Fragment is the slice of one lot consumed by a disposal, with its share of
// proceeds, fee, and the realized gain or loss.
type Fragment struct {
	LotID     string
	Quantity  Quantity
	UnitBasis Money // unit basis at consumption time, wash adjustments included
	Proceeds  Money // pro-rata share of the disposal proceeds
	Fee       Money // pro-rata share of the disposal fee
	Gain      Money // Proceeds - basis - Fee, after wash-sale disallowance
	Acquired  Date
	LongTerm  bool
}

// Disposal is a taxable outflow that consumed one or more lots. It is
// computed atomically from a consistent lot snapshot and immutable once the
// run completes; only the wash-sale evaluator, inside the run, rewrites its
// fragments' gains.
type Disposal struct {
	ID         string // id of the disposing transaction
	Date       Date
	Asset      string
	Source     string
	Quantity   Quantity
	Proceeds   Money
	Fee        Money
	Fragments  []Fragment
	Disallowed Money // total wash-sale disallowed amount
}

// Gain returns the total realized gain (negative for a loss) over all fragments.
func (d *Disposal) Gain() Money {
	total := USD(0)
	for _, f := range d.Fragments {
		total = total.Add(f.Gain)
	}
	return total
}

// longTerm classifies a holding period: long-term when the exact calendar-day
// difference between acquisition and disposal exceeds 365 days. The exact
// difference, not a fixed year constant, is what spans leap years correctly.
func longTerm(acquired, disposed Date) bool {
	return acquired.DaysUntil(disposed) > 365
}

// partitionKey identifies one (asset, source) lot book.
type partitionKey struct {
	Asset  string
	Source string
}

// matcher processes the chronological transaction stream of one partition:
// an asset together with its configured equivalents, across all sources.
// Within the partition, lots are tracked per (asset, source) book.
type matcher struct {
	cfg       *Config
	books     map[partitionKey]*lotBook
	lotByTx   map[string]*Lot // acquisition lots indexed by originating tx id, for wash adjustments
	disposals []*Disposal
	incomes   []IncomeEvent
	washes    []WashSaleAdjustment
	wash      *washEvaluator
}

// newMatcher builds a matcher for one partition. The transaction slice is
// used to pre-index acquisitions: the wash-sale window looks forward, and the
// ledger snapshot is immutable, so future acquisitions are known upfront.
func newMatcher(cfg *Config, txs []Transaction) *matcher {
	return &matcher{
		cfg:     cfg,
		books:   make(map[partitionKey]*lotBook),
		lotByTx: make(map[string]*Lot),
		wash:    newWashEvaluator(cfg, txs),
	}
}

func (m *matcher) book(asset, source string) *lotBook {
	key := partitionKey{Asset: asset, Source: source}
	b, ok := m.books[key]
	if !ok {
		b = &lotBook{}
		m.books[key] = b
	}
	return b
}

// process dispatches one transaction. Transactions must arrive in strict
// chronological order; the matching and wash-sale algorithms are
// order-dependent.
func (m *matcher) process(tx Transaction) error {
	switch v := tx.(type) {
	case Buy:
		return m.acquire(v.tradeCmd, false)
	case Deposit:
		return m.acquire(v.tradeCmd, false)
	case Income:
		return m.income(v)
	case Sell:
		return m.dispose(v.tradeCmd)
	case Transfer:
		if m.cfg.TransferIsTaxable {
			return m.dispose(v.tradeCmd)
		}
		return m.move(v)
	case Withdrawal:
		if m.cfg.TransferIsTaxable {
			return m.dispose(v.tradeCmd)
		}
		return m.withdraw(v)
	default:
		return fmt.Errorf("unsupported transaction type %T", tx)
	}
}

// acquire opens a new lot. A pending wash-sale adjustment from an earlier
// loss sale, recorded against this acquisition, is folded into the basis
// before the lot ever becomes consumable.
func (m *matcher) acquire(t tradeCmd, fromIncome bool) error {
	if t.Price.IsZero() && !fromIncome {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source,
			Reason: "no resolvable USD price for acquisition"}
	}
	lot := &Lot{
		ID:         t.ID,
		Asset:      t.Asset,
		Source:     t.Source,
		Acquired:   t.Date,
		Open:       t.Quantity,
		UnitBasis:  t.Price,
		TxID:       t.ID,
		FromIncome: fromIncome,
	}
	m.wash.applyPending(lot)
	m.book(t.Asset, t.Source).add(lot)
	m.lotByTx[t.ID] = lot
	return nil
}

// dispose matches a taxable outflow against open lots and records a Disposal.
func (m *matcher) dispose(t tradeCmd) error {
	if t.Price.IsZero() {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source,
			Reason: "no resolvable USD price for disposal"}
	}
	fee, err := t.feeUSD()
	if err != nil {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source, Reason: err.Error()}
	}

	book := m.book(t.Asset, t.Source)
	parts, ok := book.consume(t.Quantity, m.cfg.Method)
	if !ok {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source,
			Reason: fmt.Sprintf("disposal of %s exceeds tracked supply %s; an acquisition record is missing upstream",
				t.Quantity, book.totalOpen())}
	}
	// Disposed units left the books: they can no longer serve as replacement
	// quantity for any wash-sale evaluation, this disposal's included.
	m.wash.spend(parts)

	proceeds := t.Price.Mul(t.Quantity)
	d := &Disposal{
		ID:       t.ID,
		Date:     t.Date,
		Asset:    t.Asset,
		Source:   t.Source,
		Quantity: t.Quantity,
		Proceeds: proceeds,
		Fee:      fee,
	}
	// Fragment proceeds are unit price times fragment quantity: exact, and
	// summing to the disposal proceeds. The fee is allocated pro-rata with
	// the last fragment taking the remainder, so fragment fees sum exactly
	// to the disposal fee.
	remainingFee := fee
	for i, p := range parts {
		fragProceeds := t.Price.Mul(p.quantity)
		fragFee := remainingFee
		if i < len(parts)-1 {
			fragFee = fee.Mul(p.quantity).Div(t.Quantity)
			remainingFee = remainingFee.Sub(fragFee)
		}
		fragBasis := p.unitBasis.Mul(p.quantity)
		d.Fragments = append(d.Fragments, Fragment{
			LotID:     p.lot.ID,
			Quantity:  p.quantity,
			UnitBasis: p.unitBasis,
			Proceeds:  fragProceeds,
			Fee:       fragFee,
			Gain:      fragProceeds.Sub(fragBasis).Sub(fragFee),
			Acquired:  p.acquired,
			LongTerm:  longTerm(p.acquired, t.Date),
		})
	}

	if adj := m.wash.evaluate(d, m.lotByTx); adj != nil {
		m.washes = append(m.washes, *adj)
	}
	m.disposals = append(m.disposals, d)
	return nil
}

// income records the ordinary-income event and opens the income-derived lot
// at its fair market value. The new lot never consumes or reduces an existing
// one; the income event is output independent from capital gains.
func (m *matcher) income(t Income) error {
	if err := m.acquire(t.tradeCmd, true); err != nil {
		return err
	}
	m.incomes = append(m.incomes, newIncomeEvent(t))
	return nil
}

// move relocates lots between sources without tax consequence. Moved lots
// keep their acquisition date and unit basis; only their location changes.
func (m *matcher) move(t Transfer) error {
	from := m.book(t.Asset, t.Source)
	parts, ok := from.remove(t.Quantity)
	if !ok {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source,
			Reason: fmt.Sprintf("transfer of %s exceeds tracked supply %s; an acquisition record is missing upstream",
				t.Quantity, from.totalOpen())}
	}
	to := m.book(t.Asset, t.Destination)
	for _, p := range parts {
		moved := &Lot{
			ID:         p.lot.ID + ">" + t.ID,
			Asset:      t.Asset,
			Source:     t.Destination,
			Acquired:   p.acquired,
			Open:       p.quantity,
			UnitBasis:  p.unitBasis,
			TxID:       p.lot.TxID,
			FromIncome: p.lot.FromIncome,
		}
		to.add(moved)
		// Keep the acquisition reachable for wash-sale basis relocation:
		// once the source lot is fully moved, the bump must land on the
		// moved lot.
		if p.lot.Open.IsZero() {
			m.lotByTx[p.lot.TxID] = moved
		}
	}
	return nil
}

// withdraw removes quantity from the tracked perimeter without realizing
// anything (custody move to an untracked destination).
func (m *matcher) withdraw(t Withdrawal) error {
	book := m.book(t.Asset, t.Source)
	parts, ok := book.remove(t.Quantity)
	if !ok {
		return &DataIntegrityError{TxID: t.ID, Asset: t.Asset, Source: t.Source,
			Reason: fmt.Sprintf("withdrawal of %s exceeds tracked supply %s; an acquisition record is missing upstream",
				t.Quantity, book.totalOpen())}
	}
	// Withdrawn units are no longer replacement quantity either.
	m.wash.spend(parts)
	return nil
}

// run processes the whole partition stream in order.
func (m *matcher) run(txs []Transaction) error {
	for _, tx := range txs {
		if err := m.process(tx); err != nil {
			return err
		}
	}
	return nil
}

// openLots returns every lot still open in the partition, in deterministic
// (asset, source, acquisition) order.
func (m *matcher) openLots() []Lot {
	var lots []Lot
	for _, key := range sortedKeys(m.books) {
		for _, l := range m.books[key].open {
			lots = append(lots, *l)
		}
	}
	return lots
}

// sortedKeys returns the book keys in (asset, source) order for
// reproducible output.
func sortedKeys(books map[partitionKey]*lotBook) []partitionKey {
	keys := slices.Collect(maps.Keys(books))
	slices.SortFunc(keys, func(a, b partitionKey) int {
		if c := strings.Compare(a.Asset, b.Asset); c != 0 {
			return c
		}
		return strings.Compare(a.Source, b.Source)
	})
	return keys
}
