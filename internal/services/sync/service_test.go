package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/storage/badger"
)

// staticSettings is a fixed settings snapshot for tests
type staticSettings struct {
	currency string
}

func (s *staticSettings) Snapshot() models.Settings {
	return models.Settings{ReportingCurrency: s.currency}
}

func (s *staticSettings) ReportingCurrency() string { return s.currency }

func (s *staticSettings) Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error) {
	return s.Snapshot(), nil
}

// blockingSource parks FetchCurrentPrices until released so tests can
// hold a sync in flight.
type blockingSource struct {
	started    chan struct{}
	release    chan struct{}
	priceCalls int32
}

func (b *blockingSource) FetchCurrentPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	atomic.AddInt32(&b.priceCalls, 1)
	close(b.started)
	<-b.release

	price := 150.0
	quotes := make(map[string]models.Quote, len(symbols))
	for _, symbol := range symbols {
		quotes[symbol] = models.Quote{LastPrice: &price}
	}
	return quotes, nil
}

func (b *blockingSource) FetchCurrentFx(ctx context.Context, pairs []models.CurrencyPair) (map[string]float64, error) {
	rates := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		rates[pair.Key()] = 1.35
	}
	return rates, nil
}

func (b *blockingSource) FetchDailyHistory(ctx context.Context, key string, from, to time.Time) (models.Series, error) {
	return models.Series{}, nil
}

var _ interfaces.PriceSource = (*blockingSource)(nil)

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

func seedPortfolio(t *testing.T, manager interfaces.StorageManager) {
	t.Helper()
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
}

func TestSyncStoresQuotesAndRates(t *testing.T) {
	manager := newTestManager(t)
	seedPortfolio(t, manager)

	source := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	close(source.release)

	service := NewService(manager, source, &staticSettings{currency: "CAD"}, arbor.NewLogger())
	require.NoError(t, service.Sync(context.Background()))

	ctx := context.Background()
	quotes, err := manager.MarketData().Latest(ctx)
	require.NoError(t, err)
	require.Contains(t, quotes, "AAPL")
	assert.Equal(t, 150.0, *quotes["AAPL"].LastPrice)

	// Conversion legs: trade->account (same currency, skipped) and
	// account->reporting
	rates, err := manager.FxRates().Latest(ctx)
	require.NoError(t, err)
	require.Contains(t, rates, "USD/CAD")
	assert.Equal(t, 1.35, rates["USD/CAD"].Rate)
}

func TestSyncConcurrentTriggerIsNoOp(t *testing.T) {
	manager := newTestManager(t)
	seedPortfolio(t, manager)

	source := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	service := NewService(manager, source, &staticSettings{currency: "CAD"}, arbor.NewLogger())

	done := make(chan error, 1)
	go func() {
		done <- service.Sync(context.Background())
	}()

	// Wait until the first sync is parked inside the source
	<-source.started
	assert.True(t, service.IsSyncing())

	// Second trigger drops out immediately without touching the source
	require.NoError(t, service.Sync(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.priceCalls))

	close(source.release)
	require.NoError(t, <-done)
	assert.False(t, service.IsSyncing())
}
