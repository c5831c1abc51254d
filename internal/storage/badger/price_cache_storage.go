package badger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PriceCacheStorage implements the PriceCacheStorage interface over a
// badgerhold store separate from the main database. The composite row
// key (cache key + trade date) makes repeated writes idempotent.
type PriceCacheStorage struct {
	mu     sync.RWMutex
	store  *badgerhold.Store
	path   string
	logger arbor.ILogger
}

// NewPriceCacheStorage opens the price cache store at the given path
func NewPriceCacheStorage(logger arbor.ILogger, path string) (*PriceCacheStorage, error) {
	store, err := openCacheStore(path)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Msg("Price cache store opened")

	return &PriceCacheStorage{
		store:  store,
		path:   path,
		logger: logger,
	}, nil
}

func openCacheStore(path string) (*badgerhold.Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create price cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache store: %w", err)
	}
	return store, nil
}

// Reopen closes the current store and opens one at the new path.
// A no-op when the path is unchanged.
func (s *PriceCacheStorage) Reopen(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == s.path {
		return nil
	}

	store, err := openCacheStore(path)
	if err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to close previous price cache store")
		}
	}

	s.logger.Info().Str("old_path", s.path).Str("new_path", path).Msg("Price cache store relocated")
	s.store = store
	s.path = path
	return nil
}

// UpsertPoints writes a series of daily closes for an instrument.
// Last writer wins per (cache key, trade date).
func (s *PriceCacheStorage) UpsertPoints(ctx context.Context, cacheKey string, points models.Series) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, point := range points {
		row := models.CachedPricePoint{
			Key:       models.CachePointKey(cacheKey, point.Date),
			CacheKey:  cacheKey,
			TradeDate: models.Day(point.Date).Format("2006-01-02"),
			Close:     point.Close,
		}
		if err := s.store.Upsert(row.Key, &row); err != nil {
			return fmt.Errorf("failed to upsert price point: %w", err)
		}
	}

	return nil
}

// GetSince returns cached closes for an instrument from the given date,
// date-ordered.
func (s *PriceCacheStorage) GetSince(ctx context.Context, cacheKey string, from time.Time) (models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []models.CachedPricePoint
	err := s.store.Find(&rows, badgerhold.Where("CacheKey").Eq(cacheKey).Index("CacheKey"))
	if err != nil {
		return nil, fmt.Errorf("failed to read price cache: %w", err)
	}

	fromDay := models.Day(from)
	series := make(models.Series, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.TradeDate)
		if err != nil {
			s.logger.Warn().Str("key", row.Key).Str("trade_date", row.TradeDate).Msg("Skipping cache row with malformed date")
			continue
		}
		if !from.IsZero() && date.Before(fromDay) {
			continue
		}
		series = append(series, models.PricePoint{Date: date, Close: row.Close})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series, nil
}

// Close closes the price cache store
func (s *PriceCacheStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

var _ interfaces.PriceCacheStorage = (*PriceCacheStorage)(nil)
