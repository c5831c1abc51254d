package interfaces

import "errors"

// Sentinel errors shared across services and storage.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrKeyNotFound indicates the requested key does not exist in KV storage.
	ErrKeyNotFound = errors.New("key not found")

	// ErrRateUnavailable indicates a currency pair could not be resolved
	// directly, by inversion, or by triangulation through the anchor currency.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrNoMatchingPositions indicates a history request matched no positions.
	ErrNoMatchingPositions = errors.New("no matching positions")

	// ErrSourceUnavailable indicates the external price source returned no
	// usable data for any requested instrument.
	ErrSourceUnavailable = errors.New("price source unavailable")
)
