package models

// Quote is a current market snapshot for a symbol as returned by the
// price source. Fields are nil when the source did not report them.
type Quote struct {
	LastPrice     *float64 `json:"last_price"`
	PERatio       *float64 `json:"pe_ratio"`
	ChangePercent *float64 `json:"change_percent"`
	Beta          *float64 `json:"beta"`
}

// Empty reports whether the quote carries no data at all.
func (q Quote) Empty() bool {
	return q.LastPrice == nil && q.PERatio == nil && q.ChangePercent == nil && q.Beta == nil
}
