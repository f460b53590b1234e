package taxlot

import (
	"errors"
	"fmt"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdBuy        CommandType = "buy"
	CmdSell       CommandType = "sell"
	CmdTransfer   CommandType = "transfer"
	CmdIncome     CommandType = "income"
	CmdDeposit    CommandType = "deposit"
	CmdWithdrawal CommandType = "withdrawal"
)

// IncomeKind qualifies how an income receipt was earned.
type IncomeKind string

const (
	IncomeStaking IncomeKind = "staking"
	IncomeMining  IncomeKind = "mining"
	IncomeAirdrop IncomeKind = "airdrop"
	IncomeFork    IncomeKind = "fork"
)

// ParseIncomeKind parses a string into an IncomeKind.
func ParseIncomeKind(s string) (IncomeKind, error) {
	switch k := IncomeKind(s); k {
	case IncomeStaking, IncomeMining, IncomeAirdrop, IncomeFork:
		return k, nil
	default:
		return "", fmt.Errorf("unknown income kind: %q", s)
	}
}

// Transaction defines the common interface for all events recorded in the
// ledger. Transactions are immutable inputs: the engine never rewrites them.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "buy", "sell").
	When() Date        // When returns the date on which the transaction occurred.
	Ref() string       // Ref returns the transaction identifier.
	Equal(Transaction) bool
	Validate(ledger *Ledger) (Transaction, error)
}

type baseCmd struct {
	Command CommandType `json:"command"`         // Command specifies the type of transaction.
	ID      string      `json:"id"`              // ID is the unique transaction identifier.
	Date    Date        `json:"date"`            // Date is the date when the transaction took place.
	Batch   string      `json:"batch,omitempty"` // Batch optionally groups transactions imported together.
	Memo    string      `json:"memo,omitempty"`  // Memo provides an optional note for the transaction.
}

// What returns the command name for the transaction.
func (t baseCmd) What() CommandType { return t.Command }

// When returns the date of the transaction.
func (t baseCmd) When() Date { return t.Date }

// Ref returns the transaction identifier.
func (t baseCmd) Ref() string { return t.ID }

// MarshalJSON implements the json.Marshaler interface for baseCmd.
func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Optional("batch", t.Batch)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// Validate checks the base command fields. It sets the date to today if it's zero.
// It's meant to be embedded in other transaction validation methods.
func (t *baseCmd) Validate() {
	if t.Date == (Date{}) {
		t.Date = Today()
	}
}

// assetCmd is a component for asset-based transactions. Every engine event
// names the asset and the venue (source) holding it.
type assetCmd struct {
	baseCmd
	Asset  string `json:"asset"`  // Asset is the symbol of the asset involved in the transaction.
	Source string `json:"source"` // Source is the venue or wallet holding the asset.
}

// Validate checks the asset command fields.
func (t *assetCmd) Validate() error {
	t.baseCmd.Validate()

	if t.Asset == "" {
		return errors.New("asset symbol is missing")
	}
	if t.Source == "" {
		return errors.New("source is missing")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for assetCmd.
func (t assetCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("asset", t.Asset)
	w.Append("source", t.Source)
	return w.MarshalJSON()
}

// tradeCmd is a component for transactions that carry a quantity, a unit USD
// price and an optional fee. The fee asset defaults to the transaction asset.
type tradeCmd struct {
	assetCmd
	Quantity Quantity `json:"quantity"`           // Quantity is the number of units involved, always positive.
	Price    Money    `json:"price"`              // Price is the USD unit price at event time.
	Fee      Quantity `json:"fee,omitempty"`      // Fee is the fee amount, expressed in FeeAsset units.
	FeeAsset string   `json:"feeAsset,omitempty"` // FeeAsset defaults to the transaction asset.
}

func (t *tradeCmd) Validate() error {
	if err := t.assetCmd.Validate(); err != nil {
		return err
	}
	if t.Quantity.IsNegative() || t.Quantity.IsZero() {
		return fmt.Errorf("%s transaction quantity must be positive, got %s", t.Command, t.Quantity)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%s transaction price must not be negative, got %s", t.Command, t.Price)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("%s transaction fee must not be negative, got %s", t.Command, t.Fee)
	}
	if t.FeeAsset == "" {
		t.FeeAsset = t.Asset
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for tradeCmd.
func (t tradeCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.assetCmd)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee)
		w.Append("feeAsset", t.FeeAsset)
	}
	return w.MarshalJSON()
}

// equal compares two tradeCmd by value. Quantity and Money wrap decimals and
// must be compared with Equal, not ==.
func (t tradeCmd) equal(o tradeCmd) bool {
	return t.assetCmd == o.assetCmd &&
		t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) &&
		t.Fee.Equal(o.Fee) &&
		t.FeeAsset == o.FeeAsset
}

// feeUSD returns the USD value of the transaction fee. The fee asset must be
// either USD or the transaction asset itself; pricing an arbitrary third
// asset is the job of the upstream price-resolution collaborator.
func (t tradeCmd) feeUSD() (Money, error) {
	switch {
	case t.Fee.IsZero():
		return USD(0), nil
	case t.FeeAsset == "USD":
		return M(t.Fee.value, "USD"), nil
	case t.FeeAsset == t.Asset:
		return t.Price.Mul(t.Fee), nil
	default:
		return Money{}, fmt.Errorf("fee asset %q has no resolvable USD price on transaction %q", t.FeeAsset, t.ID)
	}
}

// Buy represents the acquisition of a quantity of an asset at a USD unit price.
type Buy struct {
	tradeCmd
}

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, id, asset, source string, quantity Quantity, price Money) Buy {
	return Buy{tradeCmd{
		assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdBuy, ID: id, Date: day}, Asset: asset, Source: source},
		Quantity: quantity,
		Price:    price,
	}}
}

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.tradeCmd.equal(o.tradeCmd)
}

// WithFee returns a copy of the transaction carrying the given fee. An empty
// fee asset defaults to the transaction asset.
func (t Buy) WithFee(fee Quantity, asset string) Buy {
	t.Fee, t.FeeAsset = fee, asset
	return t
}

// Validate checks the Buy transaction's fields.
func (t Buy) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Sell represents a taxable disposal of a quantity of an asset at a USD unit price.
type Sell struct {
	tradeCmd
}

// NewSell creates a new Sell transaction.
func NewSell(day Date, id, asset, source string, quantity Quantity, price Money) Sell {
	return Sell{tradeCmd{
		assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdSell, ID: id, Date: day}, Asset: asset, Source: source},
		Quantity: quantity,
		Price:    price,
	}}
}

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.tradeCmd.equal(o.tradeCmd)
}

// WithFee returns a copy of the transaction carrying the given fee. An empty
// fee asset defaults to the transaction asset.
func (t Sell) WithFee(fee Quantity, asset string) Sell {
	t.Fee, t.FeeAsset = fee, asset
	return t
}

// Validate checks the Sell transaction's fields.
func (t Sell) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Transfer represents moving a quantity of an asset from one source to another.
// Whether it is a taxable disposal or a plain custody move is decided by
// configuration, never inferred from the transaction shape.
type Transfer struct {
	tradeCmd
	Destination string `json:"destination"` // Destination is the venue receiving the asset.
}

// NewTransfer creates a new Transfer transaction.
func NewTransfer(day Date, id, asset, source, destination string, quantity Quantity, price Money) Transfer {
	return Transfer{
		tradeCmd: tradeCmd{
			assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdTransfer, ID: id, Date: day}, Asset: asset, Source: source},
			Quantity: quantity,
			Price:    price,
		},
		Destination: destination,
	}
}

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.tradeCmd)
	w.Append("destination", t.Destination)
	return w.MarshalJSON()
}

func (t Transfer) Equal(other Transaction) bool {
	o, ok := other.(Transfer)
	return ok && t.tradeCmd.equal(o.tradeCmd) && t.Destination == o.Destination
}

// Validate checks the Transfer transaction's fields.
func (t Transfer) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	if t.Destination == "" {
		return t, errors.New("transfer destination is missing")
	}
	if t.Destination == t.Source {
		return t, fmt.Errorf("transfer source and destination are both %q", t.Source)
	}
	return t, nil
}

// Income represents an ordinary-income receipt (staking, mining, airdrop,
// fork). The price is the fair market value per unit at receipt.
type Income struct {
	tradeCmd
	Kind IncomeKind `json:"kind"`
}

// NewIncome creates a new Income transaction.
func NewIncome(day Date, id, asset, source string, kind IncomeKind, quantity Quantity, fmv Money) Income {
	return Income{
		tradeCmd: tradeCmd{
			assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdIncome, ID: id, Date: day}, Asset: asset, Source: source},
			Quantity: quantity,
			Price:    fmv,
		},
		Kind: kind,
	}
}

// MarshalJSON implements the json.Marshaler interface for Income.
func (t Income) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.tradeCmd)
	w.Append("kind", t.Kind)
	return w.MarshalJSON()
}

func (t Income) Equal(other Transaction) bool {
	o, ok := other.(Income)
	return ok && t.tradeCmd.equal(o.tradeCmd) && t.Kind == o.Kind
}

// Validate checks the Income transaction's fields.
func (t Income) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	if _, err := ParseIncomeKind(string(t.Kind)); err != nil {
		return t, err
	}
	return t, nil
}

// Deposit represents an inbound quantity from outside the tracked perimeter
// (e.g. funding a venue from an untracked wallet). It opens a lot at the
// supplied unit cost basis.
type Deposit struct {
	tradeCmd
}

// NewDeposit creates a new Deposit transaction.
func NewDeposit(day Date, id, asset, source string, quantity Quantity, price Money) Deposit {
	return Deposit{tradeCmd{
		assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdDeposit, ID: id, Date: day}, Asset: asset, Source: source},
		Quantity: quantity,
		Price:    price,
	}}
}

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.tradeCmd.equal(o.tradeCmd)
}

// Validate checks the Deposit transaction's fields.
func (t Deposit) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Withdrawal represents an outbound quantity leaving the tracked perimeter.
// Like Transfer, its taxability is a configuration decision.
type Withdrawal struct {
	tradeCmd
	Destination string `json:"destination,omitempty"` // Destination optionally names where the asset went.
}

// NewWithdrawal creates a new Withdrawal transaction.
func NewWithdrawal(day Date, id, asset, source string, quantity Quantity, price Money) Withdrawal {
	return Withdrawal{
		tradeCmd: tradeCmd{
			assetCmd: assetCmd{baseCmd: baseCmd{Command: CmdWithdrawal, ID: id, Date: day}, Asset: asset, Source: source},
			Quantity: quantity,
			Price:    price,
		},
	}
}

// MarshalJSON implements the json.Marshaler interface for Withdrawal.
func (t Withdrawal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.tradeCmd)
	w.Optional("destination", t.Destination)
	return w.MarshalJSON()
}

func (t Withdrawal) Equal(other Transaction) bool {
	o, ok := other.(Withdrawal)
	return ok && t.tradeCmd.equal(o.tradeCmd) && t.Destination == o.Destination
}

// Validate checks the Withdrawal transaction's fields.
func (t Withdrawal) Validate(_ *Ledger) (Transaction, error) {
	if err := t.tradeCmd.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
