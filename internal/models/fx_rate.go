package models

import "time"

// FxRate is one observed exchange rate for a currency pair.
// Pair is "FROM/TO" with upper-case ISO codes. Rows are append-only;
// readers take the latest row per pair by timestamp.
type FxRate struct {
	ID        string    `json:"id" badgerhold:"key"`
	Pair      string    `json:"pair" badgerhold:"index"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

// CurrencyPair identifies a directed currency conversion.
type CurrencyPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Key returns the canonical "FROM/TO" pair key.
func (p CurrencyPair) Key() string {
	return p.From + "/" + p.To
}
