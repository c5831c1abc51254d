package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// FxRateStorage implements the FxRateStorage interface for Badger.
// Rows are append-only so rate history is preserved.
type FxRateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFxRateStorage creates a new FxRateStorage instance
func NewFxRateStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FxRateStorage {
	return &FxRateStorage{
		db:     db,
		logger: logger,
	}
}

// Append stores a new exchange rate row
func (s *FxRateStorage) Append(ctx context.Context, rate *models.FxRate) error {
	if rate.ID == "" {
		rate.ID = common.NewRowID()
	}
	if err := s.db.Store().Insert(rate.ID, rate); err != nil {
		return fmt.Errorf("failed to append fx rate: %w", err)
	}
	return nil
}

// Latest returns the newest row per pair
func (s *FxRateStorage) Latest(ctx context.Context) (map[string]models.FxRate, error) {
	var rows []models.FxRate
	err := s.db.Store().Find(&rows, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list fx rates: %w", err)
	}

	latest := make(map[string]models.FxRate)
	for _, row := range rows {
		current, ok := latest[row.Pair]
		if !ok || row.Timestamp.After(current.Timestamp) {
			latest[row.Pair] = row
		}
	}

	return latest, nil
}
