package domain

import "strings"

// NormalizeSymbol canonicalizes a ticker symbol.
// Symbols are matched case-insensitively across the allocation file,
// broker positions and quotes, so every boundary normalizes first.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeKeys returns a copy of the map with normalized symbol keys.
// When two keys normalize to the same symbol their values are summed.
func NormalizeKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[NormalizeSymbol(k)] += v
	}
	return out
}
