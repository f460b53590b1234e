package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// This file imports externally observed balances for the reconciliation
// auditor. Two formats are supported: the engine's own JSONL (one
// ObservedBalance per line), and arbitrary JSON exports from exchanges or
// chain scanners, walked with jsonpath expressions.

// DecodeObservedBalances reads observed balances from JSONL data, one
// balance per line.
func DecodeObservedBalances(r io.Reader) ([]ObservedBalance, error) {
	var balances []ObservedBalance
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var b ObservedBalance
		if err := json.Unmarshal(line, &b); err != nil {
			return nil, fmt.Errorf("format error in observed balances on line %q: %w", string(line), err)
		}
		balances = append(balances, b)
	}
	return balances, scanner.Err()
}

// BalancePaths tells ExtractObservedBalances where to find balances inside a
// vendor JSON export: Rows selects the list of balance rows, and the field
// paths are evaluated relative to each row.
type BalancePaths struct {
	Rows   string `json:"rows"`   // e.g. "$.result.balances[*]"
	Asset  string `json:"asset"`  // e.g. "$.currency"
	Amount string `json:"amount"` // e.g. "$.available"
}

// ExtractObservedBalances pulls observed balances out of an arbitrary JSON
// export using jsonpath expressions. The source name is attached to every
// extracted balance; vendors rarely repeat it inside their own export.
func ExtractObservedBalances(r io.Reader, source string, paths BalancePaths) ([]ObservedBalance, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse balance export for %q: %w", source, err)
	}

	jrows, err := jsonpath.Get(paths.Rows, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q on balance export for %q: %w", paths.Rows, source, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer: promote a lone row to a list of one.
		rows = []any{jrows}
	}

	var balances []ObservedBalance
	for i, row := range rows {
		asset, err := stringAt(row, paths.Asset)
		if err != nil {
			return nil, fmt.Errorf("row %d of balance export for %q: %w", i, source, err)
		}
		amount, err := decimalAt(row, paths.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d of balance export for %q: %w", i, source, err)
		}
		balances = append(balances, ObservedBalance{
			Asset:    asset,
			Source:   source,
			Quantity: Q(amount),
		})
	}
	return balances, nil
}

func stringAt(row any, path string) (string, error) {
	jval, err := jsonpath.Get(path, row)
	if err != nil {
		return "", fmt.Errorf("error evaluating %q: %w", path, err)
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("value at %q is not a string: %v", path, jval)
	}
	return s, nil
}

func decimalAt(row any, path string) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, row)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("value at %q is not a number: %q", path, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
}
