package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// PriceSource fetches market data from an external provider.
// Implementations degrade per instrument: a symbol the provider cannot
// serve yields an empty entry rather than failing the whole call.
type PriceSource interface {
	// FetchCurrentPrices returns current quotes keyed by symbol.
	FetchCurrentPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error)

	// FetchCurrentFx returns current exchange rates keyed by "FROM/TO".
	// Same-currency pairs resolve to 1.0 without a provider call.
	FetchCurrentFx(ctx context.Context, pairs []models.CurrencyPair) (map[string]float64, error)

	// FetchDailyHistory returns daily closes for an instrument key
	// between from and to inclusive, gaps forward-filled.
	FetchDailyHistory(ctx context.Context, key string, from, to time.Time) (models.Series, error)
}
