package models

// HistoryPoint is one day of an aggregated valuation series.
// Values are in the reporting currency for portfolio aggregation and in
// the trade currency for single-symbol history.
type HistoryPoint struct {
	Date    string  `json:"date"`
	Close   float64 `json:"close,omitempty"`
	Mtm     float64 `json:"mtm"`
	Pnl     float64 `json:"pnl"`
	CashGic float64 `json:"cash_gic,omitempty"`
}

// History is a valuation series response.
type History struct {
	Label    string         `json:"label"`
	Currency string         `json:"currency"`
	Points   []HistoryPoint `json:"points"`
}
