// Package utils holds small helpers shared by handlers and the CLI.
package utils

import "strings"

// ParseTickerList splits a comma-separated ticker list, e.g. a query parameter.
// Returns nil for empty/whitespace-only input.
func ParseTickerList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTickers(strings.Split(s, ","))
}

// NormalizeTickers trims and upper-cases tickers, dropping empty and repeated
// entries. Order of first occurrence is preserved. Returns nil when nothing is left.
func NormalizeTickers(tickers []string) []string {
	var result []string
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}
