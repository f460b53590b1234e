package taxlot

import (
	"iter"
	"time"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// YearRange returns the range spanning a whole tax year.
func YearRange(year int) Range {
	return Range{
		From: NewDate(year, time.January, 1),
		To:   NewDate(year, time.December, 31),
	}
}

// WashWindow returns the 61-day wash-sale window around a loss-sale date:
// 30 calendar days before through 30 calendar days after, inclusive.
func WashWindow(sale Date) Range {
	return Range{From: sale.Add(-30), To: sale.Add(30)}
}

// Contains returns true if date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}
