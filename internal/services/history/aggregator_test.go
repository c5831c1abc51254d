package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/fx"
	"github.com/ternarybob/folio/internal/services/settings"
	"github.com/ternarybob/folio/internal/storage/badger"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir() + "/db"
	config.Storage.HistoryCachePath = t.TempDir() + "/cache"

	manager, err := badger.NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager
}

func newTestAggregator(t *testing.T, manager interfaces.StorageManager, source interfaces.PriceSource) *Aggregator {
	t.Helper()

	logger := arbor.NewLogger()
	settingsService, err := settings.NewService(manager.KeyValues(), manager.PriceCache(), models.Settings{
		ReportingCurrency: "CAD",
		HistoryCachePath:  t.TempDir() + "/cache",
	}, logger)
	require.NoError(t, err)

	cache := NewCache(manager.PriceCache(), source, logger)
	return NewAggregator(manager, cache, fx.NewResolver("USD"), settingsService, 0, logger)
}

func saveTestAccount(t *testing.T, manager interfaces.StorageManager, id, currency string) {
	t.Helper()
	require.NoError(t, manager.Accounts().Save(context.Background(), &models.Account{
		ID:       id,
		Name:     id,
		Currency: currency,
	}))
}

func TestAggregateEquityAndGic(t *testing.T) {
	manager := newTestManager(t)

	opened := day(2025, 3, 2)
	yearLater := opened.AddDate(0, 0, 365)

	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-td",
		AccountID:    "acct1",
		Symbol:       "TD",
		Category:     models.CategoryEquity,
		Quantity:     2,
		CostPerShare: 40,
		Currency:     "CAD",
		DateAdded:    opened,
	}))
	yield := 0.05
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-gic",
		AccountID:    "acct1",
		Symbol:       "GIC 2026",
		Category:     models.CategoryGIC,
		Quantity:     1,
		CostPerShare: 100,
		Currency:     "CAD",
		DateAdded:    opened,
		YieldRate:    &yield,
	}))

	source := &fakeSource{
		history: map[string]models.Series{
			"TD": {
				{Date: opened, Close: 50},
				{Date: yearLater, Close: 60},
			},
		},
	}
	aggregator := newTestAggregator(t, manager, source)

	result, err := aggregator.Aggregate(ctx, AggregateOptions{})
	require.NoError(t, err)
	require.Len(t, result.Points, 2)
	assert.Equal(t, "CAD", result.Currency)

	// Open day: equity 2x50 plus GIC at cost
	first := result.Points[0]
	assert.Equal(t, opened.Format("2006-01-02"), first.Date)
	assert.InDelta(t, 200.0, first.Mtm, 1e-9)
	assert.InDelta(t, 20.0, first.Pnl, 1e-9)
	assert.InDelta(t, 100.0, first.CashGic, 1e-9)

	// 365 days later: equity 2x60 plus GIC accrued to 105.00
	last := result.Points[1]
	assert.InDelta(t, 225.0, last.Mtm, 1e-9)
	assert.InDelta(t, 45.0, last.Pnl, 1e-9)
	assert.InDelta(t, 105.0, last.CashGic, 1e-9)
}

func TestAggregateNoPositions(t *testing.T) {
	manager := newTestManager(t)
	aggregator := newTestAggregator(t, manager, &fakeSource{})

	_, err := aggregator.Aggregate(context.Background(), AggregateOptions{})
	assert.True(t, errors.Is(err, interfaces.ErrNoMatchingPositions))
}

func TestAggregateCashGicOnlyHasNoHistory(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	yield := 0.05
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-gic",
		AccountID:    "acct1",
		Symbol:       "GIC 2026",
		Category:     models.CategoryGIC,
		Quantity:     1,
		CostPerShare: 100,
		Currency:     "CAD",
		DateAdded:    day(2026, 1, 5),
		YieldRate:    &yield,
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-cash",
		AccountID:    "acct1",
		Symbol:       "Savings",
		Category:     models.CategoryCash,
		Quantity:     1,
		CostPerShare: 500,
		Currency:     "CAD",
		DateAdded:    day(2026, 1, 5),
	}))

	aggregator := newTestAggregator(t, manager, &fakeSource{})

	// Without equities there is no date axis to aggregate over
	_, err := aggregator.Aggregate(ctx, AggregateOptions{})
	assert.True(t, errors.Is(err, interfaces.ErrNoMatchingPositions))
}

func TestAggregateLiveModeAllEmptyIsUnavailable(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-td",
		AccountID:    "acct1",
		Symbol:       "TD",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 40,
		Currency:     "CAD",
		DateAdded:    day(2026, 1, 5),
	}))

	aggregator := newTestAggregator(t, manager, &fakeSource{})

	_, err := aggregator.Aggregate(ctx, AggregateOptions{UseCache: false})
	assert.True(t, errors.Is(err, interfaces.ErrSourceUnavailable))
}

func TestAggregateCacheOnlyColdCacheIsEmpty(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-td",
		AccountID:    "acct1",
		Symbol:       "TD",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 40,
		Currency:     "CAD",
		DateAdded:    day(2026, 1, 5),
	}))

	aggregator := newTestAggregator(t, manager, &fakeSource{})

	result, err := aggregator.Aggregate(ctx, AggregateOptions{UseCache: true})
	require.NoError(t, err)
	assert.Empty(t, result.Points)
}

func TestAggregateByIndustry(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	opened := day(2026, 1, 5)
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-td",
		AccountID:    "acct1",
		Symbol:       "TD",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 40,
		Currency:     "CAD",
		DateAdded:    opened,
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-su",
		AccountID:    "acct1",
		Symbol:       "SU",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 30,
		Currency:     "CAD",
		DateAdded:    opened,
	}))
	require.NoError(t, manager.Mappings().SetIndustry(ctx, "TD", "Banking"))

	source := &fakeSource{
		history: map[string]models.Series{
			"TD": {{Date: opened, Close: 50}},
			"SU": {{Date: opened, Close: 45}},
		},
	}
	aggregator := newTestAggregator(t, manager, source)

	result, err := aggregator.AggregateByIndustry(ctx, "Banking", false)
	require.NoError(t, err)
	assert.Equal(t, "Banking", result.Label)
	require.Len(t, result.Points, 1)
	assert.InDelta(t, 50.0, result.Points[0].Mtm, 1e-9)

	// Unmapped symbols fall under the Unspecified label
	result, err = aggregator.AggregateByIndustry(ctx, "Unspecified", false)
	require.NoError(t, err)
	require.Len(t, result.Points, 1)
	assert.InDelta(t, 45.0, result.Points[0].Mtm, 1e-9)

	_, err = aggregator.AggregateByIndustry(ctx, "Mining", false)
	assert.True(t, errors.Is(err, interfaces.ErrNoMatchingPositions))
}

func TestSymbolHistory(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "USD")

	ctx := context.Background()
	opened := day(2026, 1, 5)
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-aapl",
		AccountID:    "acct1",
		Symbol:       "AAPL",
		Category:     models.CategoryEquity,
		Quantity:     2,
		CostPerShare: 40,
		Currency:     "USD",
		DateAdded:    opened,
	}))

	source := &fakeSource{
		history: map[string]models.Series{
			"AAPL": {{Date: opened, Close: 50}},
		},
	}
	aggregator := newTestAggregator(t, manager, source)

	result, err := aggregator.SymbolHistory(ctx, "aapl", "", false)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", result.Label)
	assert.Equal(t, "USD", result.Currency)
	require.Len(t, result.Points, 1)
	assert.InDelta(t, 50.0, result.Points[0].Close, 1e-9)
	assert.InDelta(t, 100.0, result.Points[0].Mtm, 1e-9)
	assert.InDelta(t, 20.0, result.Points[0].Pnl, 1e-9)

	// Account filter with no match
	_, err = aggregator.SymbolHistory(ctx, "AAPL", "other", false)
	assert.True(t, errors.Is(err, interfaces.ErrNoMatchingPositions))

	// Cache-only against a store that never fetched returns an empty
	// series, not an error
	coldManager := newTestManager(t)
	saveTestAccount(t, coldManager, "acct1", "USD")
	require.NoError(t, coldManager.Positions().Save(ctx, &models.Position{
		ID:           "pos-aapl",
		AccountID:    "acct1",
		Symbol:       "AAPL",
		Category:     models.CategoryEquity,
		Quantity:     2,
		CostPerShare: 40,
		Currency:     "USD",
		DateAdded:    opened,
	}))
	coldAggregator := newTestAggregator(t, coldManager, source)

	result, err = coldAggregator.SymbolHistory(ctx, "AAPL", "", true)
	require.NoError(t, err)
	assert.Empty(t, result.Points)
}

func TestSymbolHistoryLiveEmptyIsUnavailable(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "USD")

	ctx := context.Background()
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-aapl",
		AccountID:    "acct1",
		Symbol:       "AAPL",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 40,
		Currency:     "USD",
		DateAdded:    day(2026, 1, 5),
	}))

	aggregator := newTestAggregator(t, manager, &fakeSource{})

	_, err := aggregator.SymbolHistory(ctx, "AAPL", "", false)
	assert.True(t, errors.Is(err, interfaces.ErrSourceUnavailable))
}

func TestAggregateHistoricalFxLegs(t *testing.T) {
	manager := newTestManager(t)
	saveTestAccount(t, manager, "acct1", "CAD")

	ctx := context.Background()
	opened := day(2026, 1, 5)
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos-aapl",
		AccountID:    "acct1",
		Symbol:       "AAPL",
		Category:     models.CategoryEquity,
		Quantity:     10,
		CostPerShare: 100,
		Currency:     "USD",
		DateAdded:    opened,
	}))

	// Historical USD/CAD series fetched via the synthetic fx ticker
	source := &fakeSource{
		history: map[string]models.Series{
			"AAPL":     {{Date: opened, Close: 150}},
			"USDCAD=X": {{Date: opened, Close: 1.35}},
		},
	}
	aggregator := newTestAggregator(t, manager, source)

	result, err := aggregator.Aggregate(ctx, AggregateOptions{})
	require.NoError(t, err)
	require.Len(t, result.Points, 1)

	// 10 x 150 x 1.35 and (150-100) x 10 x 1.35
	assert.InDelta(t, 2025.0, result.Points[0].Mtm, 1e-9)
	assert.InDelta(t, 675.0, result.Points[0].Pnl, 1e-9)
}
