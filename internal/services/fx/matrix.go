package fx

import (
	"sort"
	"strings"
)

// Matrix builds the full cross-rate table for the given currencies.
// Unresolvable pairs are nil so clients can distinguish "no path" from
// a genuine rate.
func (r Resolver) Matrix(rates RateMap, currencies []string) map[string]map[string]*float64 {
	normalized := make([]string, 0, len(currencies))
	seen := make(map[string]bool, len(currencies))
	for _, ccy := range currencies {
		ccy = strings.ToUpper(strings.TrimSpace(ccy))
		if ccy == "" || seen[ccy] {
			continue
		}
		seen[ccy] = true
		normalized = append(normalized, ccy)
	}
	sort.Strings(normalized)

	matrix := make(map[string]map[string]*float64, len(normalized))
	for _, from := range normalized {
		row := make(map[string]*float64, len(normalized))
		for _, to := range normalized {
			if rate, err := r.Rate(rates, from, to); err == nil {
				value := rate
				row[to] = &value
			} else {
				row[to] = nil
			}
		}
		matrix[from] = row
	}

	return matrix
}
