package history

import (
	"sort"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// Aligned is the result of reindexing several series onto a shared
// date axis.
type Aligned struct {
	// Dates is the sorted union of observation dates across all
	// non-empty input series.
	Dates []time.Time

	// Values maps each input key to its close per union date. A key has
	// no entry for dates before its first observation; gaps after the
	// first observation are forward-filled from the key's own last value.
	Values map[string]map[time.Time]float64
}

// Align reindexes the given series onto the union of their dates.
// Empty input series are excluded from both the union and the result.
func Align(seriesByKey map[string]models.Series) Aligned {
	dateSet := make(map[time.Time]bool)
	for _, series := range seriesByKey {
		for _, point := range series {
			dateSet[models.Day(point.Date)] = true
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make(map[string]map[time.Time]float64, len(seriesByKey))
	for key, series := range seriesByKey {
		if len(series) == 0 {
			continue
		}

		observed := make(map[time.Time]float64, len(series))
		first := models.Day(series[0].Date)
		for _, point := range series {
			day := models.Day(point.Date)
			observed[day] = point.Close
			if day.Before(first) {
				first = day
			}
		}

		filled := make(map[time.Time]float64, len(dates))
		var last float64
		var haveLast bool
		for _, date := range dates {
			if value, ok := observed[date]; ok {
				last, haveLast = value, true
			}
			if date.Before(first) || !haveLast {
				// Leading dates before the first observation are dropped
				continue
			}
			filled[date] = last
		}
		values[key] = filled
	}

	return Aligned{Dates: dates, Values: values}
}
