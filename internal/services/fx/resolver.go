package fx

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// RateMap is a snapshot of exchange rates keyed by "FROM/TO".
type RateMap map[string]float64

// PairKey builds the canonical "FROM/TO" key.
func PairKey(from, to string) string {
	return from + "/" + to
}

// Resolver resolves currency conversions against an explicit rate
// snapshot. All methods are pure: the resolver holds no rate state, so
// results depend only on the arguments and the anchor.
type Resolver struct {
	// Anchor is the pivot currency for triangulation. A pair with no
	// direct or inverse rate is resolved as from->anchor->to, one hop
	// each side, which keeps lookup cycle-safe regardless of the data.
	Anchor string
}

// NewResolver creates a resolver with the given anchor currency.
func NewResolver(anchor string) Resolver {
	return Resolver{Anchor: strings.ToUpper(anchor)}
}

// lookup resolves a pair from the snapshot directly or by inverting the
// opposite pair. A zero inverse rate is treated as missing.
func lookup(rates RateMap, from, to string) (float64, bool) {
	if rate, ok := rates[PairKey(from, to)]; ok && rate != 0 {
		return rate, true
	}
	if inverse, ok := rates[PairKey(to, from)]; ok && inverse != 0 {
		return 1.0 / inverse, true
	}
	return 0, false
}

// Rate resolves the conversion rate from one currency to another.
// Resolution order: identity, direct, inverse, triangulation through
// the anchor. Returns ErrRateUnavailable when no path exists.
func (r Resolver) Rate(rates RateMap, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return 1.0, nil
	}

	if rate, ok := lookup(rates, from, to); ok {
		return rate, nil
	}

	// Triangulate through the anchor, a single hop each side.
	if r.Anchor != "" && from != r.Anchor && to != r.Anchor {
		left, okLeft := lookup(rates, from, r.Anchor)
		right, okRight := lookup(rates, r.Anchor, to)
		if okLeft && okRight {
			return left * right, nil
		}
	}

	return 0, fmt.Errorf("%w: %s/%s", interfaces.ErrRateUnavailable, from, to)
}

// RateOrDefault resolves a conversion rate, falling back to 1.0 when no
// path exists. Used where a missing rate must not block valuation.
func (r Resolver) RateOrDefault(rates RateMap, from, to string) float64 {
	rate, err := r.Rate(rates, from, to)
	if err != nil {
		return 1.0
	}
	return rate
}

// SnapshotFromRates builds a RateMap from the latest stored fx rows.
func SnapshotFromRates(latest map[string]models.FxRate) RateMap {
	snapshot := make(RateMap, len(latest))
	for pair, row := range latest {
		snapshot[pair] = row.Rate
	}
	return snapshot
}

// HistoricalRates holds dated fx series per pair plus a latest snapshot
// for gap fallback.
type HistoricalRates struct {
	resolver Resolver
	latest   RateMap
	byPair   map[string]map[string]float64 // pair -> YYYY-MM-DD -> rate
}

// NewHistoricalRates creates an empty historical rate table backed by
// the given latest snapshot.
func NewHistoricalRates(resolver Resolver, latest RateMap) *HistoricalRates {
	return &HistoricalRates{
		resolver: resolver,
		latest:   latest,
		byPair:   make(map[string]map[string]float64),
	}
}

// AddSeries records a dated rate series for a pair.
func (h *HistoricalRates) AddSeries(from, to string, series models.Series) {
	pair := PairKey(strings.ToUpper(from), strings.ToUpper(to))
	dated, ok := h.byPair[pair]
	if !ok {
		dated = make(map[string]float64, len(series))
		h.byPair[pair] = dated
	}
	for _, point := range series {
		dated[models.Day(point.Date).Format("2006-01-02")] = point.Close
	}
}

// RateOn resolves the conversion rate for a specific date. Resolution
// order: identity, the pair's rate on that date, the inverse pair's
// rate on that date, then the latest snapshot. Falling back to the
// current rate for historical gaps is an approximation; callers that
// need exactness should treat a false return as a zero contribution.
func (h *HistoricalRates) RateOn(from, to string, date time.Time) (float64, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return 1.0, true
	}

	day := models.Day(date).Format("2006-01-02")
	if dated, ok := h.byPair[PairKey(from, to)]; ok {
		if rate, ok := dated[day]; ok && rate != 0 {
			return rate, true
		}
	}
	if dated, ok := h.byPair[PairKey(to, from)]; ok {
		if rate, ok := dated[day]; ok && rate != 0 {
			return 1.0 / rate, true
		}
	}

	rate, err := h.resolver.Rate(h.latest, from, to)
	if err != nil {
		return 0, false
	}
	return rate, true
}
