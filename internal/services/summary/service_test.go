package summary

import (
	"context"
	"errors"
	"testing"
	"time"

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

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir() + "/db"
	config.Storage.HistoryCachePath = t.TempDir() + "/cache"

	manager, err := badger.NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	logger := arbor.NewLogger()
	settingsService, err := settings.NewService(manager.KeyValues(), manager.PriceCache(), models.Settings{
		ReportingCurrency: "CAD",
		HistoryCachePath:  config.HistoryCachePath(),
	}, logger)
	require.NoError(t, err)

	return NewService(manager, fx.NewResolver("USD"), settingsService, logger), manager
}

func floatPtr(v float64) *float64 { return &v }

func TestEnrichTwoHopConversion(t *testing.T) {
	service, manager := newTestService(t)
	ctx := context.Background()

	require.NoError(t, manager.Accounts().Save(ctx, &models.Account{
		ID:       "acct1",
		Name:     "US Account",
		Currency: "USD",
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos1",
		AccountID:    "acct1",
		Symbol:       "AAPL",
		Category:     models.CategoryEquity,
		Quantity:     10,
		CostPerShare: 100,
		Currency:     "USD",
		DateAdded:    time.Now().UTC(),
	}))
	require.NoError(t, manager.MarketData().Append(ctx, &models.MarketData{
		Symbol:    "AAPL",
		LastPrice: floatPtr(150),
		Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, manager.FxRates().Append(ctx, &models.FxRate{
		Pair:      "USD/CAD",
		Rate:      1.35,
		Timestamp: time.Now().UTC(),
	}))

	enriched, err := service.Enrich(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	row := enriched[0]
	assert.Equal(t, "US Account", row.AccountName)
	assert.Equal(t, 150.0, row.SpotPrice)
	assert.Equal(t, 1.0, row.FxStockToAccount)
	assert.Equal(t, 1.35, row.FxAccountToReporting)
	assert.InDelta(t, 1000.0, row.CostAccount, 1e-9)
	assert.InDelta(t, 1500.0, row.MtmAccount, 1e-9)
	assert.InDelta(t, 500.0, row.PnlAccount, 1e-9)
	assert.InDelta(t, 2025.0, row.MtmReporting, 1e-9)
	assert.InDelta(t, 675.0, row.PnlReporting, 1e-9)
	assert.InDelta(t, 100.0, row.Proportion, 1e-9)
}

func TestEnrichNonEquityMarkedAtCost(t *testing.T) {
	service, manager := newTestService(t)
	ctx := context.Background()

	require.NoError(t, manager.Accounts().Save(ctx, &models.Account{
		ID:       "acct1",
		Name:     "Main",
		Currency: "CAD",
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos1",
		AccountID:    "acct1",
		Symbol:       "GIC 2027",
		Category:     models.CategoryGIC,
		Quantity:     1,
		CostPerShare: 5000,
		Currency:     "CAD",
		DateAdded:    time.Now().UTC(),
		YieldRate:    floatPtr(0.04),
	}))

	enriched, err := service.Enrich(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	row := enriched[0]
	assert.Equal(t, 5000.0, row.SpotPrice)
	assert.InDelta(t, 5000.0, row.MtmReporting, 1e-9)
	assert.InDelta(t, 0.0, row.PnlReporting, 1e-9)
}

func TestEnrichZeroTotalProportions(t *testing.T) {
	service, manager := newTestService(t)
	ctx := context.Background()

	require.NoError(t, manager.Accounts().Save(ctx, &models.Account{
		ID:       "acct1",
		Name:     "Main",
		Currency: "CAD",
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos1",
		AccountID:    "acct1",
		Symbol:       "Cash",
		Category:     models.CategoryCash,
		Quantity:     0,
		CostPerShare: 100,
		Currency:     "CAD",
		DateAdded:    time.Now().UTC(),
	}))

	enriched, err := service.Enrich(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, 0.0, enriched[0].Proportion)
}

func TestSummaryGroupings(t *testing.T) {
	service, manager := newTestService(t)
	ctx := context.Background()

	require.NoError(t, manager.Accounts().Save(ctx, &models.Account{
		ID:       "acct1",
		Name:     "Main",
		Currency: "CAD",
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos1",
		AccountID:    "acct1",
		Symbol:       "TD",
		Category:     models.CategoryEquity,
		Quantity:     1,
		CostPerShare: 50,
		Currency:     "CAD",
		DateAdded:    time.Now().UTC(),
	}))
	require.NoError(t, manager.Positions().Save(ctx, &models.Position{
		ID:           "pos2",
		AccountID:    "acct1",
		Symbol:       "Savings",
		Category:     models.CategoryCash,
		Quantity:     1,
		CostPerShare: 50,
		Currency:     "CAD",
		DateAdded:    time.Now().UTC(),
	}))

	result, err := service.Summary(ctx, GroupByCashGic)
	require.NoError(t, err)
	require.Len(t, result.Groups, 2)
	assert.Equal(t, "GIC/Cash", result.Groups[0].Label)
	assert.Equal(t, "Other", result.Groups[1].Label)
	assert.InDelta(t, 50.0, result.Groups[0].MtmReporting, 1e-9)
	assert.InDelta(t, 50.0, result.Groups[0].Proportion, 1e-9)

	// Default grouping is by category
	result, err = service.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, GroupByCategory, result.GroupBy)
	assert.Len(t, result.Groups, 2)
	assert.InDelta(t, 100.0, result.TotalMtm, 1e-9)
}

func TestSummaryInvalidGroupBy(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Summary(context.Background(), "sector")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGroupBy))
}
