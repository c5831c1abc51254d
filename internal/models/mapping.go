package models

// IndustryMapping assigns an industry label to a symbol.
type IndustryMapping struct {
	Symbol   string `json:"symbol" badgerhold:"key"`
	Industry string `json:"industry"`
}

// SectorMapping assigns a sector label to a symbol.
type SectorMapping struct {
	Symbol string `json:"symbol" badgerhold:"key"`
	Sector string `json:"sector"`
}

// UnspecifiedLabel groups symbols without an industry or sector mapping.
const UnspecifiedLabel = "Unspecified"
