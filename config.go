package taxlot

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// DefaultAnnualLossCap is the default yearly cap on capital loss deducted
// against ordinary income.
const DefaultAnnualLossCap = 3000

// Config holds every policy decision the engine needs. All of it is resolved
// and validated before the first transaction is processed; the matching hot
// path never guesses.
type Config struct {
	// Method selects the lot matching policy (fifo or hifo).
	Method AccountingMethod `json:"method"`

	// WashSale enables the wash-sale evaluation pass.
	WashSale bool `json:"washSale"`

	// Equivalence lists sets of assets considered substantially identical for
	// the wash-sale rule (e.g. an asset and its wrapped or staked derivative).
	// An asset absent from every set is only equivalent to itself.
	Equivalence [][]string `json:"equivalence,omitempty"`

	// AnnualLossCap caps the yearly capital loss deductible against ordinary
	// income. Zero means the default of 3000 USD.
	AnnualLossCap decimal.Decimal `json:"annualLossCap,omitempty"`

	// StrictBroker isolates custodial-source lots: wash-sale replacements are
	// then only searched within the source of the loss sale.
	StrictBroker bool `json:"strictBroker,omitempty"`

	// TransferIsTaxable treats transfers and withdrawals as taxable disposals
	// instead of custody moves.
	TransferIsTaxable bool `json:"transferIsTaxable,omitempty"`

	// WashResetsHolding restarts the replacement lot's holding-period clock at
	// the loss-sale date when a wash adjustment lands on it.
	WashResetsHolding bool `json:"washResetsHolding,omitempty"`

	// Tolerance is the rounding tolerance used by the reconciliation auditor.
	Tolerance decimal.Decimal `json:"tolerance,omitempty"`

	equivalents map[string]map[string]bool // asset -> set of equivalent assets, built by Validate
}

// DefaultConfig returns a configuration with FIFO matching, wash sale
// enabled, and the default annual loss cap.
func DefaultConfig() Config {
	return Config{
		Method:        FIFO,
		WashSale:      true,
		AnnualLossCap: decimal.NewFromInt(DefaultAnnualLossCap),
	}
}

// LossCap returns the effective annual loss cap as USD money.
func (c *Config) LossCap() Money {
	if c.AnnualLossCap.IsZero() {
		return USD(DefaultAnnualLossCap)
	}
	return M(c.AnnualLossCap, "USD")
}

// Validate checks the configuration and builds the equivalence lookup.
// Any error here is a ConfigurationError and must abort the run before any
// transaction is processed.
func (c *Config) Validate() error {
	if c.Method != FIFO && c.Method != HIFO {
		return &ConfigurationError{Option: "method", Reason: fmt.Sprintf("unknown accounting method %d", c.Method)}
	}
	if c.AnnualLossCap.IsNegative() {
		return &ConfigurationError{Option: "annualLossCap", Reason: "must not be negative"}
	}
	if c.Tolerance.IsNegative() {
		return &ConfigurationError{Option: "tolerance", Reason: "must not be negative"}
	}

	c.equivalents = make(map[string]map[string]bool)
	for i, set := range c.Equivalence {
		if len(set) < 2 {
			return &ConfigurationError{Option: "equivalence", Reason: fmt.Sprintf("set #%d needs at least two assets", i+1)}
		}
		for _, asset := range set {
			if asset == "" {
				return &ConfigurationError{Option: "equivalence", Reason: fmt.Sprintf("set #%d contains an empty asset symbol", i+1)}
			}
			if c.equivalents[asset] == nil {
				c.equivalents[asset] = make(map[string]bool)
			}
			for _, other := range set {
				c.equivalents[asset][other] = true
			}
		}
	}
	return nil
}

// Equivalent reports whether a and b belong to the same configured
// equivalence set. An asset is always equivalent to itself.
func (c *Config) Equivalent(a, b string) bool {
	if a == b {
		return true
	}
	return c.equivalents[a][b]
}

// DecodeConfig reads a JSON configuration and validates it.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	var file struct {
		Method            string          `json:"method"`
		WashSale          *bool           `json:"washSale"`
		Equivalence       [][]string      `json:"equivalence"`
		AnnualLossCap     decimal.Decimal `json:"annualLossCap"`
		StrictBroker      bool            `json:"strictBroker"`
		TransferIsTaxable bool            `json:"transferIsTaxable"`
		WashResetsHolding bool            `json:"washResetsHolding"`
		Tolerance         decimal.Decimal `json:"tolerance"`
	}
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return cfg, &ConfigurationError{Option: "file", Reason: err.Error()}
	}
	if file.Method != "" {
		method, err := ParseAccountingMethod(file.Method)
		if err != nil {
			return cfg, &ConfigurationError{Option: "method", Reason: err.Error()}
		}
		cfg.Method = method
	}
	if file.WashSale != nil {
		cfg.WashSale = *file.WashSale
	}
	cfg.Equivalence = file.Equivalence
	cfg.AnnualLossCap = file.AnnualLossCap
	cfg.StrictBroker = file.StrictBroker
	cfg.TransferIsTaxable = file.TransferIsTaxable
	cfg.WashResetsHolding = file.WashResetsHolding
	cfg.Tolerance = file.Tolerance

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// canonical returns a stable encoding of the configuration, used as part of
// the run identifier so that a config change yields a new run id.
func (c *Config) canonical() []byte {
	var w jsonObjectWriter
	w.Append("method", c.Method.String())
	w.Append("washSale", c.WashSale)
	w.Optional("equivalence", c.Equivalence)
	w.Append("annualLossCap", c.LossCap())
	w.Append("strictBroker", c.StrictBroker)
	w.Append("transferIsTaxable", c.TransferIsTaxable)
	w.Append("washResetsHolding", c.WashResetsHolding)
	w.Append("tolerance", c.Tolerance)
	b, err := w.MarshalJSON()
	if err != nil {
		// Config only contains marshalable values.
		panic(err)
	}
	return b
}
