package taxlot

import (
	"fmt"
	"strings"
)

// AccountingMethod defines the lot-selection policy used when matching a
// disposal against open lots.
type AccountingMethod int

const (
	// FIFO (First-In, First-Out) consumes the oldest acquisition lots first.
	FIFO AccountingMethod = iota
	// HIFO (Highest-In, First-Out) consumes the lots with the highest unit
	// cost basis first, ties broken by oldest acquisition date.
	HIFO
)

func (m AccountingMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case HIFO:
		return "hifo"
	default:
		return "unknown"
	}
}

// ParseAccountingMethod parses a string into an AccountingMethod,
// case-insensitively.
func ParseAccountingMethod(s string) (AccountingMethod, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return FIFO, nil
	case "hifo":
		return HIFO, nil
	default:
		return 0, fmt.Errorf("unknown accounting method: %q", s)
	}
}
