package common

import (
	"github.com/google/uuid"
)

// NewAccountID generates a unique account ID with the "acct_" prefix
func NewAccountID() string {
	return "acct_" + uuid.New().String()
}

// NewPositionID generates a unique position ID with the "pos_" prefix
func NewPositionID() string {
	return "pos_" + uuid.New().String()
}

// NewRowID generates a unique ID for append-only rows
func NewRowID() string {
	return uuid.New().String()
}
