package models

// EnrichedPosition is a position joined with the latest market data and
// valued in account and reporting currency. The FX factors are recorded
// explicitly so downstream consumers can see how each value was derived.
type EnrichedPosition struct {
	Position

	AccountName     string `json:"account_name"`
	AccountCurrency string `json:"account_currency"`

	SpotPrice     float64  `json:"spot_price"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	Industry      string   `json:"industry"`
	Sector        string   `json:"sector"`

	// FxStockToAccount converts trade currency to account currency,
	// FxAccountToReporting converts account currency to reporting
	// currency. Both fall back to 1.0 when no rate is resolvable.
	FxStockToAccount     float64 `json:"fx_stock_to_account"`
	FxAccountToReporting float64 `json:"fx_account_to_reporting"`

	CostAccount  float64 `json:"cost_account"`
	MtmAccount   float64 `json:"mtm_account"`
	PnlAccount   float64 `json:"pnl_account"`
	MtmReporting float64 `json:"mtm_reporting"`
	PnlReporting float64 `json:"pnl_reporting"`

	// Proportion is this position's share of total reporting-currency
	// market value, in percent. Zero when the portfolio total is zero.
	Proportion float64 `json:"proportion"`
}

// SummaryGroup is an aggregated slice of the portfolio.
type SummaryGroup struct {
	Label        string  `json:"label"`
	MtmReporting float64 `json:"mtm_reporting"`
	PnlReporting float64 `json:"pnl_reporting"`
	Proportion   float64 `json:"proportion"`
	Count        int     `json:"count"`
}

// PortfolioSummary is the grouped portfolio view.
type PortfolioSummary struct {
	ReportingCurrency string             `json:"reporting_currency"`
	GroupBy           string             `json:"group_by"`
	TotalMtm          float64            `json:"total_mtm"`
	TotalPnl          float64            `json:"total_pnl"`
	Groups            []SummaryGroup     `json:"groups"`
	Positions         []EnrichedPosition `json:"positions,omitempty"`
}
