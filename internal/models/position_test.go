package models

import "testing"

func TestValidateNegativeQuantity(t *testing.T) {
	// Withdrawal-style Cash entries carry a negative quantity
	cash := &Position{
		Category:     CategoryCash,
		Quantity:     -500,
		CostPerShare: 1,
		Currency:     "CAD",
	}
	if err := cash.Validate(); err != nil {
		t.Fatalf("Expected negative cash quantity to be valid, got %v", err)
	}

	equity := &Position{
		Category: CategoryEquity,
		Symbol:   "TD",
		Quantity: -1,
		Currency: "CAD",
	}
	if err := equity.Validate(); err == nil {
		t.Fatal("Expected negative equity quantity to be rejected")
	}
}

func TestValidateCategoryInvariants(t *testing.T) {
	gic := &Position{
		Category:     CategoryGIC,
		Quantity:     1,
		CostPerShare: 1000,
		Currency:     "CAD",
	}
	if err := gic.Validate(); err == nil {
		t.Fatal("Expected GIC without yield_rate to be rejected")
	}

	equity := &Position{
		Category: CategoryEquity,
		Quantity: 1,
		Currency: "CAD",
	}
	if err := equity.Validate(); err == nil {
		t.Fatal("Expected equity without symbol to be rejected")
	}
}
