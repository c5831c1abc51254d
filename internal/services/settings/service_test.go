package settings

import (
	"context"
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

func strPtr(v string) *string { return &v }

func newTestStorage(t *testing.T) (interfaces.KeyValueStorage, interfaces.PriceCacheStorage, string) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir() + "/db"
	cachePath := t.TempDir() + "/cache"
	config.Storage.HistoryCachePath = cachePath

	manager, err := badger.NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager.KeyValues(), manager.PriceCache(), cachePath
}

func TestSettingsDefaults(t *testing.T) {
	kv, cache, cachePath := newTestStorage(t)

	service, err := NewService(kv, cache, models.Settings{
		ReportingCurrency: "CAD",
		HistoryCachePath:  cachePath,
	}, arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, "CAD", service.ReportingCurrency())
	assert.Equal(t, cachePath, service.Snapshot().HistoryCachePath)
}

func TestSettingsUpdatePersists(t *testing.T) {
	kv, cache, cachePath := newTestStorage(t)
	defaults := models.Settings{ReportingCurrency: "CAD", HistoryCachePath: cachePath}
	logger := arbor.NewLogger()

	service, err := NewService(kv, cache, defaults, logger)
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), models.SettingsUpdate{
		ReportingCurrency: strPtr("usd"),
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.ReportingCurrency)
	assert.Equal(t, "USD", service.ReportingCurrency())

	// A fresh service over the same KV store sees the persisted value
	reloaded, err := NewService(kv, cache, defaults, logger)
	require.NoError(t, err)
	assert.Equal(t, "USD", reloaded.ReportingCurrency())
}

func TestSettingsUpdateInvalidCurrency(t *testing.T) {
	kv, cache, cachePath := newTestStorage(t)

	service, err := NewService(kv, cache, models.Settings{
		ReportingCurrency: "CAD",
		HistoryCachePath:  cachePath,
	}, arbor.NewLogger())
	require.NoError(t, err)

	_, err = service.Update(context.Background(), models.SettingsUpdate{
		ReportingCurrency: strPtr("CANADIAN"),
	})
	require.Error(t, err)
	assert.Equal(t, "CAD", service.ReportingCurrency())
}

func TestSettingsUpdateRelocatesCache(t *testing.T) {
	kv, cache, cachePath := newTestStorage(t)

	service, err := NewService(kv, cache, models.Settings{
		ReportingCurrency: "CAD",
		HistoryCachePath:  cachePath,
	}, arbor.NewLogger())
	require.NoError(t, err)

	newPath := t.TempDir() + "/relocated"
	updated, err := service.Update(context.Background(), models.SettingsUpdate{
		HistoryCachePath: strPtr(newPath),
	})
	require.NoError(t, err)
	assert.Equal(t, newPath, updated.HistoryCachePath)

	// The relocated store is usable immediately
	require.NoError(t, cache.UpsertPoints(context.Background(), "AAPL", models.Series{
		{Date: models.Day(time.Now().UTC()), Close: 1},
	}))
}
