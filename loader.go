package taxlot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindLedger returns the unique ledger corresponding with the name.
// If query is empty and no ledger file exists, an empty default ledger is
// returned so a fresh directory works out of the box.
func FindLedger(path, query string) (*Ledger, error) {
	ledgerPaths, err := findLedgerPaths(path, query)
	if err != nil {
		return nil, err
	}
	switch len(ledgerPaths) {
	case 0:
		if query == "" {
			l := NewLedger()
			l.name = "transactions"
			return l, nil
		}
		return nil, fmt.Errorf("could not find ledger %q", query)
	case 1:
		return loadLedgerFile(path, ledgerPaths[0])
	default:
		return nil, fmt.Errorf("multiple ledgers found for %q", query)
	}
}

// findLedgerPaths lists the .jsonl ledger files under path matching the query.
// A ledger name is its relative path from the root, without the extension.
func findLedgerPaths(path, query string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(rel, ".jsonl")
		if query == "" || name == query {
			found = append(found, p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return found, err
}

// loadLedgerFile opens, decodes, and names a ledger from a given file path.
func loadLedgerFile(root, fullPath string) (*Ledger, error) {
	relPath, err := filepath.Rel(root, fullPath)
	if err != nil {
		return nil, fmt.Errorf("could not determine relative path for %q: %w", fullPath, err)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", fullPath, err)
	}
	defer f.Close()

	ledger, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", fullPath, err)
	}
	ledger.name = strings.TrimSuffix(relPath, ".jsonl")
	return ledger, nil
}

// SaveLedger writes the ledger back to its canonical file under root.
func SaveLedger(root string, l *Ledger) error {
	fullPath := filepath.Join(root, l.Name()+".jsonl")
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("could not create ledger directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("could not create ledger file %q: %w", fullPath, err)
	}
	defer f.Close()
	return EncodeLedger(f, l)
}

// LoadConfig reads the engine configuration from a file, falling back to the
// default configuration when the file does not exist.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("could not open config file %q: %w", path, err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// LoadCarryover reads the prior-year carryover record, if any.
func LoadCarryover(path string) (*CarryoverRecord, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open carryover file %q: %w", path, err)
	}
	defer f.Close()
	return DecodeCarryover(f)
}
