package models

// Settings are the runtime-mutable application settings, persisted in
// KV storage and applied without a restart.
type Settings struct {
	ReportingCurrency string `json:"reporting_currency"`
	HistoryCachePath  string `json:"history_cache_path"`
}

// SettingsUpdate is a partial settings change. Nil fields are left as-is.
type SettingsUpdate struct {
	ReportingCurrency *string `json:"reporting_currency,omitempty"`
	HistoryCachePath  *string `json:"history_cache_path,omitempty"`
}
