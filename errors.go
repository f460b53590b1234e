package taxlot

import (
	"errors"
	"fmt"
)

// DataIntegrityError reports a ledger inconsistency discovered while
// processing a partition: a disposal exceeding the tracked supply, or a
// transaction whose USD price could not be resolved. It aborts only the
// affected (asset, source) partition and names the offending transaction.
type DataIntegrityError struct {
	TxID   string // offending transaction id
	Asset  string
	Source string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity error on transaction %q (%s@%s): %s", e.TxID, e.Asset, e.Source, e.Reason)
}

// ConfigurationError reports an invalid configuration. It is fatal at
// startup, before any transaction is processed.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration option %q: %s", e.Option, e.Reason)
}

// AsDataIntegrityError unwraps err into a *DataIntegrityError if possible.
func AsDataIntegrityError(err error) (*DataIntegrityError, bool) {
	var die *DataIntegrityError
	ok := errors.As(err, &die)
	return die, ok
}
