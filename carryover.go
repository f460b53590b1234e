package taxlot

import (
	"fmt"
	"maps"
	"slices"
)

// CarryoverRecord is the unused capital loss deferred to the next tax year,
// split by the character it had when realized. It is written once at year
// close and consumed exactly once, at the start of the following year's
// netting. Amounts are positive.
type CarryoverRecord struct {
	Year      int   `json:"year"` // tax year that produced the carryover
	ShortTerm Money `json:"shortTerm"`
	LongTerm  Money `json:"longTerm"`
}

// IsZero reports whether the record carries nothing forward.
func (c CarryoverRecord) IsZero() bool { return c.ShortTerm.IsZero() && c.LongTerm.IsZero() }

// MarshalJSON implements the json.Marshaler interface for CarryoverRecord.
// The amounts are written as bare decimals, the form DecodeCarryover reads.
func (c CarryoverRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", c.Year)
	w.Append("shortTerm", c.ShortTerm.value)
	w.Append("longTerm", c.LongTerm.value)
	return w.MarshalJSON()
}

// YearSummary is the year-close netting result: gains and losses netted by
// category then against each other, the capped deduction against ordinary
// income, and the carryover produced for the following year.
type YearSummary struct {
	Year           int
	ShortTerm      Money // net short-term gain/loss realized in the year
	LongTerm       Money // net long-term gain/loss realized in the year
	CarryoverIn    CarryoverRecord
	Net            Money // overall net after carryover import and cross netting
	Deduction      Money // loss deducted against ordinary income, capped
	CarryoverOut   CarryoverRecord
	OrdinaryIncome Money // total ordinary income recognized in the year
}

// netYears nets each tax year in ascending order. The opening record, if any,
// must predate the earliest summarized year; it is imported into that year
// before any of its disposals are considered, and each produced carryover is
// imported into the following year. An opening record dated inside or after
// the summarized range is an error: consuming it in the wrong year would
// double-count or misplace the deferred loss.
func netYears(disposals []*Disposal, incomes []IncomeEvent, opening *CarryoverRecord, cap Money) ([]YearSummary, error) {
	years := make(map[int]*YearSummary)
	at := func(y int) *YearSummary {
		s, ok := years[y]
		if !ok {
			s = &YearSummary{Year: y, ShortTerm: USD(0), LongTerm: USD(0), OrdinaryIncome: USD(0)}
			years[y] = s
		}
		return s
	}

	for _, d := range disposals {
		s := at(d.Date.Year())
		for _, f := range d.Fragments {
			if f.LongTerm {
				s.LongTerm = s.LongTerm.Add(f.Gain)
			} else {
				s.ShortTerm = s.ShortTerm.Add(f.Gain)
			}
		}
	}
	for _, e := range incomes {
		s := at(e.Year())
		s.OrdinaryIncome = s.OrdinaryIncome.Add(e.Amount)
	}

	sorted := slices.Sorted(maps.Keys(years))
	carry := CarryoverRecord{}
	if opening != nil && !opening.IsZero() {
		if len(sorted) > 0 && opening.Year >= sorted[0] {
			return nil, &ConfigurationError{Option: "carryover",
				Reason: fmt.Sprintf("opening record was produced by year %d, which is not before the earliest ledger year %d",
					opening.Year, sorted[0])}
		}
		carry = *opening
	}
	var out []YearSummary
	for _, y := range sorted {
		s := at(y)
		s.CarryoverIn = carry
		closeYear(s, cap)
		carry = s.CarryoverOut
		out = append(out, *s)
	}
	return out, nil
}

// closeYear applies the netting hierarchy to one year: same-category netting
// happened while summing fragments; the prior-year carryover is imported into
// its category; then short nets against long for the overall figure. A net
// loss is deductible up to the cap; the excess carries forward, split
// proportionally by the character of the remaining losses.
func closeYear(s *YearSummary, cap Money) {
	short := s.ShortTerm.Sub(s.CarryoverIn.ShortTerm)
	long := s.LongTerm.Sub(s.CarryoverIn.LongTerm)
	s.Net = short.Add(long)

	s.Deduction = USD(0)
	s.CarryoverOut = CarryoverRecord{Year: s.Year, ShortTerm: USD(0), LongTerm: USD(0)}
	if !s.Net.IsNegative() {
		return
	}

	// Character of the remaining loss after cross netting: when only one
	// category is negative it bears it all, otherwise each keeps its share.
	loss := s.Net.Neg()
	shortShare := USD(0)
	longShare := USD(0)
	switch {
	case short.IsNegative() && long.IsNegative():
		shortShare = short.Neg()
		longShare = long.Neg()
	case short.IsNegative():
		shortShare = loss
	default:
		longShare = loss
	}

	s.Deduction = loss
	if cap.LessThan(loss) {
		s.Deduction = cap
	}
	excess := loss.Sub(s.Deduction)
	if excess.IsZero() {
		return
	}
	total := shortShare.Add(longShare)
	fraction := Q(shortShare.value.Div(total.value))
	s.CarryoverOut.ShortTerm = excess.Mul(fraction)
	s.CarryoverOut.LongTerm = excess.Sub(s.CarryoverOut.ShortTerm)
}
