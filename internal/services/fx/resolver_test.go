package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

func TestRateIdentity(t *testing.T) {
	resolver := NewResolver("USD")

	rate, err := resolver.Rate(RateMap{}, "CAD", "CAD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestRateDirect(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{"USD/CAD": 1.35}

	rate, err := resolver.Rate(rates, "USD", "CAD")
	require.NoError(t, err)
	assert.Equal(t, 1.35, rate)
}

func TestRateInverseReciprocity(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{"USD/CAD": 1.35}

	forward, err := resolver.Rate(rates, "USD", "CAD")
	require.NoError(t, err)
	inverse, err := resolver.Rate(rates, "CAD", "USD")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, forward*inverse, 1e-12)
}

func TestRateTriangulation(t *testing.T) {
	// No direct EUR/CAD rate; both legs through the USD anchor exist
	resolver := NewResolver("USD")
	rates := RateMap{
		"EUR/USD": 1.10,
		"USD/CAD": 1.35,
	}

	rate, err := resolver.Rate(rates, "EUR", "CAD")
	require.NoError(t, err)
	assert.InDelta(t, 1.485, rate, 1e-9)
}

func TestRateTriangulationUsesInverseLegs(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{
		"USD/EUR": 0.90,
		"CAD/USD": 0.74,
	}

	rate, err := resolver.Rate(rates, "EUR", "CAD")
	require.NoError(t, err)
	assert.InDelta(t, (1/0.90)*(1/0.74), rate, 1e-9)
}

func TestRateUnavailable(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{"EUR/USD": 1.10}

	_, err := resolver.Rate(rates, "EUR", "JPY")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrRateUnavailable))
}

func TestRateZeroInverseTreatedAsMissing(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{"CAD/USD": 0}

	_, err := resolver.Rate(rates, "USD", "CAD")
	assert.True(t, errors.Is(err, interfaces.ErrRateUnavailable))
}

func TestRateOrDefault(t *testing.T) {
	resolver := NewResolver("USD")

	assert.Equal(t, 1.0, resolver.RateOrDefault(RateMap{}, "EUR", "JPY"))
	assert.Equal(t, 1.35, resolver.RateOrDefault(RateMap{"USD/CAD": 1.35}, "USD", "CAD"))
}

func TestHistoricalRatesFallbackChain(t *testing.T) {
	resolver := NewResolver("USD")
	latest := RateMap{"USD/CAD": 1.40}
	histRates := NewHistoricalRates(resolver, latest)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	histRates.AddSeries("USD", "CAD", models.Series{
		{Date: day, Close: 1.35},
	})

	// Exact date
	rate, ok := histRates.RateOn("USD", "CAD", day)
	require.True(t, ok)
	assert.Equal(t, 1.35, rate)

	// Inverse of the dated pair
	rate, ok = histRates.RateOn("CAD", "USD", day)
	require.True(t, ok)
	assert.InDelta(t, 1/1.35, rate, 1e-12)

	// Date gap falls back to the latest snapshot
	rate, ok = histRates.RateOn("USD", "CAD", day.AddDate(0, 0, 5))
	require.True(t, ok)
	assert.Equal(t, 1.40, rate)

	// Identity needs no data
	rate, ok = histRates.RateOn("CAD", "CAD", day)
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)

	// No path at all
	_, ok = histRates.RateOn("EUR", "JPY", day)
	assert.False(t, ok)
}

func TestMatrix(t *testing.T) {
	resolver := NewResolver("USD")
	rates := RateMap{
		"USD/CAD": 1.35,
		"EUR/USD": 1.10,
	}

	matrix := resolver.Matrix(rates, []string{"cad", "USD", "EUR", "JPY", "usd"})

	require.Len(t, matrix, 4)

	require.NotNil(t, matrix["USD"]["CAD"])
	assert.Equal(t, 1.35, *matrix["USD"]["CAD"])

	// Triangulated through the anchor
	require.NotNil(t, matrix["EUR"]["CAD"])
	assert.InDelta(t, 1.485, *matrix["EUR"]["CAD"], 1e-9)

	// Diagonal is always 1.0
	require.NotNil(t, matrix["JPY"]["JPY"])
	assert.Equal(t, 1.0, *matrix["JPY"]["JPY"])

	// Unresolvable pairs are nil, not zero
	assert.Nil(t, matrix["JPY"]["USD"])
}
