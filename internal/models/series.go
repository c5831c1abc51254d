package models

import "time"

// PricePoint is one daily close observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is a date-ordered list of daily closes. Dates are normalized
// to UTC midnight.
type Series []PricePoint

// Day truncates a time to UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CachedPricePoint is one row of the price history cache.
// Key is "<cacheKey>|<YYYY-MM-DD>" so repeated writes for the same
// instrument and trade date overwrite in place.
type CachedPricePoint struct {
	Key       string  `json:"-" badgerhold:"key"`
	CacheKey  string  `json:"cache_key" badgerhold:"index"`
	TradeDate string  `json:"trade_date"`
	Close     float64 `json:"close"`
}

// CachePointKey builds the composite cache row key.
func CachePointKey(cacheKey string, date time.Time) string {
	return cacheKey + "|" + Day(date).Format("2006-01-02")
}
