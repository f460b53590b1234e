package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// moneyCmd is a specialized struct to read a money field persisted as two
// json fields (amount + optional currency).
type moneyCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a moneyCmd) Money() Money {
	cur := a.Currency
	if cur == "" {
		cur = "USD"
	}
	return M(a.Amount, cur)
}

// jtrade mirrors tradeCmd for decoding: price is a nested money object.
type jtrade struct {
	assetCmd
	Quantity Quantity `json:"quantity"`
	Price    moneyCmd `json:"price"`
	Fee      Quantity `json:"fee"`
	FeeAsset string   `json:"feeAsset"`
}

func (j jtrade) trade() tradeCmd {
	return tradeCmd{
		assetCmd: j.assetCmd,
		Quantity: j.Quantity,
		Price:    j.Price.Money(),
		Fee:      j.Fee,
		FeeAsset: j.FeeAsset,
	}
}

// DecodeLedger decodes transactions from a stream of JSONL data, one
// transaction per line, and returns a sorted, validated Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		decodedTx, err := decodeTransaction(identifier.Command, lineBytes)
		if err != nil {
			return nil, err
		}
		if err := ledger.Append(decodedTx); err != nil {
			return nil, fmt.Errorf("could not append transaction from line %q: %w", string(lineBytes), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

func decodeTransaction(command CommandType, line []byte) (Transaction, error) {
	switch command {
	case CmdBuy:
		var temp jtrade
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Buy{temp.trade()}, nil
	case CmdSell:
		var temp jtrade
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Sell{temp.trade()}, nil
	case CmdDeposit:
		var temp jtrade
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Deposit{temp.trade()}, nil
	case CmdTransfer:
		var temp struct {
			jtrade
			Destination string `json:"destination"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Transfer{tradeCmd: temp.trade(), Destination: temp.Destination}, nil
	case CmdWithdrawal:
		var temp struct {
			jtrade
			Destination string `json:"destination"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Withdrawal{tradeCmd: temp.trade(), Destination: temp.Destination}, nil
	case CmdIncome:
		var temp struct {
			jtrade
			Kind IncomeKind `json:"kind"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Income{tradeCmd: temp.trade(), Kind: temp.Kind}, nil
	default:
		return nil, fmt.Errorf("unknown command %q in line %q", command, string(line))
	}
}

// EncodeLedger writes the ledger as canonical JSONL, one transaction per
// line, in chronological order. The field order is stable, so an unchanged
// ledger always encodes to the same bytes.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for tx := range l.Transactions() {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("could not encode %s transaction on %s: %w", tx.What(), tx.When(), err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// DecodeCarryover reads a carryover record persisted at a previous year
// close. It returns nil when the reader holds no record.
func DecodeCarryover(r io.Reader) (*CarryoverRecord, error) {
	var file struct {
		Year      int             `json:"year"`
		ShortTerm decimal.Decimal `json:"shortTerm"`
		LongTerm  decimal.Decimal `json:"longTerm"`
	}
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("could not decode carryover record: %w", err)
	}
	return &CarryoverRecord{
		Year:      file.Year,
		ShortTerm: USD(file.ShortTerm),
		LongTerm:  USD(file.LongTerm),
	}, nil
}

// EncodeCarryover persists a carryover record for the next year's run.
func EncodeCarryover(w io.Writer, c CarryoverRecord) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("could not encode carryover record: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
