package symbols

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDirectory returns DefaultDirectory extended by the entries in a JSON file
// of the form {"WKN": {"ticker": ..., "name": ..., "instrument_class": ...}}.
// File entries win over built-in ones. An empty path returns the defaults.
func LoadDirectory(path string) (*Directory, error) {
	entries := make(map[string]Entry, len(DefaultDirectory))
	for k, v := range DefaultDirectory {
		entries[k] = v
	}
	if path == "" {
		return NewDirectory(entries), nil
	}

	var extra map[string]Entry
	if err := readJSONFile(path, &extra); err != nil {
		return nil, fmt.Errorf("failed to load WKN directory: %w", err)
	}
	for code, e := range extra {
		if e.Ticker == "" {
			return nil, fmt.Errorf("WKN directory entry %s has no ticker", code)
		}
		entries[NormalizeCode(code)] = e
	}

	return NewDirectory(entries), nil
}

// LoadMapper returns a mapper over DefaultOverrides extended by a JSON file of the
// form {"TICKER": {"symbol": ..., "exchange": ..., "is_crypto": ...}}.
func LoadMapper(path string) (*Mapper, error) {
	overrides := make(map[string]Mapping, len(DefaultOverrides))
	for k, v := range DefaultOverrides {
		overrides[k] = v
	}
	if path == "" {
		return NewMapper(overrides), nil
	}

	var extra map[string]Mapping
	if err := readJSONFile(path, &extra); err != nil {
		return nil, fmt.Errorf("failed to load symbol overrides: %w", err)
	}
	for ticker, m := range extra {
		if m.Symbol == "" {
			return nil, fmt.Errorf("symbol override for %s has no symbol", ticker)
		}
		overrides[NormalizeCode(ticker)] = m
	}

	return NewMapper(overrides), nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}
