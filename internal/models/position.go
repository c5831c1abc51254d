package models

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a position for valuation purposes.
type Category string

const (
	CategoryEquity   Category = "Equity"
	CategoryGIC      Category = "GIC"
	CategoryCash     Category = "Cash"
	CategoryDividend Category = "Dividend"
)

// ParseCategory normalizes a category string.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity", "stock":
		return CategoryEquity, nil
	case "gic":
		return CategoryGIC, nil
	case "cash":
		return CategoryCash, nil
	case "dividend":
		return CategoryDividend, nil
	}
	return "", fmt.Errorf("unknown category: %s", s)
}

// Position represents a holding within an account.
// Quantity and CostPerShare are denominated in the trade currency.
// For GIC positions YieldRate is the simple annual rate used for linear
// accrual from DateAdded.
type Position struct {
	ID           string    `json:"id" badgerhold:"key"`
	AccountID    string    `json:"account_id" badgerhold:"index"`
	Symbol       string    `json:"symbol" badgerhold:"index"`
	Category     Category  `json:"category"`
	Quantity     float64   `json:"quantity"`
	CostPerShare float64   `json:"cost_per_share"`
	Currency     string    `json:"currency"`
	DateAdded    time.Time `json:"date_added"`
	YieldRate    *float64  `json:"yield_rate,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate enforces category invariants.
func (p *Position) Validate() error {
	switch p.Category {
	case CategoryEquity:
		if strings.TrimSpace(p.Symbol) == "" {
			return fmt.Errorf("equity position requires a symbol")
		}
	case CategoryGIC:
		if p.YieldRate == nil {
			return fmt.Errorf("gic position requires a yield_rate")
		}
	case CategoryCash, CategoryDividend:
		// No extra requirements
	default:
		return fmt.Errorf("unknown category: %s", p.Category)
	}
	// Negative quantity is a withdrawal-style Cash entry; every other
	// category holds a non-negative amount.
	if p.Quantity < 0 && p.Category != CategoryCash {
		return fmt.Errorf("quantity must not be negative")
	}
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	return nil
}
