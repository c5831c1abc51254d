package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// KV keys for persisted settings.
const (
	keyReportingCurrency = "reporting_currency"
	keyHistoryCachePath  = "history_cache_path"
)

// Service holds runtime-mutable settings backed by KV storage. Reads
// come from an in-memory snapshot; Update persists and then applies the
// change, relocating the price cache when its path moves.
type Service struct {
	kv     interfaces.KeyValueStorage
	cache  interfaces.PriceCacheStorage
	logger arbor.ILogger

	mu      sync.RWMutex
	current models.Settings
}

// NewService loads persisted settings over the given defaults.
func NewService(kv interfaces.KeyValueStorage, cache interfaces.PriceCacheStorage, defaults models.Settings, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		kv:      kv,
		cache:   cache,
		logger:  logger,
		current: defaults,
	}

	ctx := context.Background()
	if value, err := kv.Get(ctx, keyReportingCurrency); err == nil && value != "" {
		s.current.ReportingCurrency = strings.ToUpper(value)
	} else if err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load reporting currency: %w", err)
	}
	if value, err := kv.Get(ctx, keyHistoryCachePath); err == nil && value != "" {
		s.current.HistoryCachePath = value
	} else if err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load history cache path: %w", err)
	}

	// A persisted cache path must win over the configured one
	if err := cache.Reopen(s.current.HistoryCachePath); err != nil {
		return nil, fmt.Errorf("failed to open history cache at %s: %w", s.current.HistoryCachePath, err)
	}

	logger.Info().
		Str("reporting_currency", s.current.ReportingCurrency).
		Str("history_cache_path", s.current.HistoryCachePath).
		Msg("Settings loaded")

	return s, nil
}

// Snapshot returns the current settings
func (s *Service) Snapshot() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ReportingCurrency returns the current reporting currency
func (s *Service) ReportingCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ReportingCurrency
}

// Update applies a partial settings change. Each field is persisted
// first, then applied to the snapshot; a cache path change relocates
// the price cache store before the snapshot is updated.
func (s *Service) Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current

	if update.ReportingCurrency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*update.ReportingCurrency))
		if len(currency) != 3 {
			return s.current, fmt.Errorf("invalid reporting currency: %s", *update.ReportingCurrency)
		}
		if err := s.kv.Set(ctx, keyReportingCurrency, currency, "Portfolio reporting currency"); err != nil {
			return s.current, fmt.Errorf("failed to persist reporting currency: %w", err)
		}
		next.ReportingCurrency = currency
	}

	if update.HistoryCachePath != nil {
		path := strings.TrimSpace(*update.HistoryCachePath)
		if path == "" {
			return s.current, fmt.Errorf("history cache path must not be empty")
		}
		if err := s.cache.Reopen(path); err != nil {
			return s.current, fmt.Errorf("failed to relocate history cache: %w", err)
		}
		if err := s.kv.Set(ctx, keyHistoryCachePath, path, "Price history cache location"); err != nil {
			s.logger.Warn().Err(err).Msg("History cache relocated but path not persisted")
		}
		next.HistoryCachePath = path
	}

	s.current = next

	s.logger.Info().
		Str("reporting_currency", next.ReportingCurrency).
		Str("history_cache_path", next.HistoryCachePath).
		Msg("Settings updated")

	return next, nil
}

var _ interfaces.SettingsService = (*Service)(nil)
