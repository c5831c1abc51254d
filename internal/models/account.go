package models

import "time"

// Account represents a brokerage or bank account holding positions.
// All positions in an account are valued in the account's base currency
// before conversion to the reporting currency.
type Account struct {
	ID        string    `json:"id" badgerhold:"key"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
