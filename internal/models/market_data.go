package models

import "time"

// MarketData is one observed quote for a symbol. Rows are append-only;
// readers take the latest row per symbol by timestamp.
type MarketData struct {
	ID            string    `json:"id" badgerhold:"key"`
	Symbol        string    `json:"symbol" badgerhold:"index"`
	LastPrice     *float64  `json:"last_price"`
	PERatio       *float64  `json:"pe_ratio"`
	ChangePercent *float64  `json:"change_percent"`
	Beta          *float64  `json:"beta"`
	Timestamp     time.Time `json:"timestamp"`
}
