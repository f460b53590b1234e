package taxlot

// IncomeEvent is the ordinary-income side of an income receipt: quantity
// times fair market value, attributed to the receipt year. It is produced
// independently from the capital-gains outputs; the lot opened by the same
// receipt lives its own life in the lot tracker.
type IncomeEvent struct {
	TxID     string
	Date     Date
	Asset    string
	Source   string
	Kind     IncomeKind
	Quantity Quantity
	FMV      Money // fair market value per unit at receipt
	Amount   Money // Quantity x FMV
}

// Year returns the tax year the income is attributed to.
func (e IncomeEvent) Year() int { return e.Date.Year() }

// newIncomeEvent converts an income receipt into its ordinary-income event.
// Price resolution happened upstream: the transaction's price is the FMV.
func newIncomeEvent(t Income) IncomeEvent {
	return IncomeEvent{
		TxID:     t.ID,
		Date:     t.Date,
		Asset:    t.Asset,
		Source:   t.Source,
		Kind:     t.Kind,
		Quantity: t.Quantity,
		FMV:      t.Price,
		Amount:   t.Price.Mul(t.Quantity),
	}
}
