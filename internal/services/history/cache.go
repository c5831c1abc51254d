package history

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Cache reads daily close series through the persistent price cache.
// Cache IO failures never surface to callers: a failed read degrades to
// an empty series and a failed write leaves the fetched data usable.
type Cache struct {
	storage interfaces.PriceCacheStorage
	source  interfaces.PriceSource
	logger  arbor.ILogger
}

// NewCache creates a price history cache over the given storage and source.
func NewCache(storage interfaces.PriceCacheStorage, source interfaces.PriceSource, logger arbor.ILogger) *Cache {
	return &Cache{
		storage: storage,
		source:  source,
		logger:  logger,
	}
}

// Read returns cached closes for an instrument from the given date.
// Never touches the network; storage errors degrade to an empty series.
func (c *Cache) Read(ctx context.Context, key string, from time.Time) models.Series {
	series, err := c.storage.GetSince(ctx, key, from)
	if err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("Price cache read failed, returning empty series")
		return models.Series{}
	}
	return series
}

// FetchOrCache returns closes for an instrument from the given date.
// With useCache it behaves as Read. Otherwise it fetches from the price
// source, persists every point (write failures logged and swallowed)
// and returns the fresh series alongside any fetch error.
func (c *Cache) FetchOrCache(ctx context.Context, key string, from time.Time, useCache bool) (models.Series, error) {
	if useCache {
		return c.Read(ctx, key, from), nil
	}

	series, err := c.source.FetchDailyHistory(ctx, key, from, time.Now().UTC())
	if err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("History fetch failed")
		return models.Series{}, err
	}

	if len(series) > 0 {
		if err := c.storage.UpsertPoints(ctx, key, series); err != nil {
			c.logger.Warn().Str("key", key).Err(err).Msg("Price cache write failed, continuing with fetched data")
		}
	}

	return series, nil
}
