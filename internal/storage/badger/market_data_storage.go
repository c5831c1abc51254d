package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MarketDataStorage implements the MarketDataStorage interface for Badger.
// Rows are append-only so refresh history is preserved.
type MarketDataStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMarketDataStorage creates a new MarketDataStorage instance
func NewMarketDataStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MarketDataStorage {
	return &MarketDataStorage{
		db:     db,
		logger: logger,
	}
}

// Append stores a new market data row
func (s *MarketDataStorage) Append(ctx context.Context, data *models.MarketData) error {
	if data.ID == "" {
		data.ID = common.NewRowID()
	}
	if err := s.db.Store().Insert(data.ID, data); err != nil {
		return fmt.Errorf("failed to append market data: %w", err)
	}
	return nil
}

// Latest returns the newest row per symbol
func (s *MarketDataStorage) Latest(ctx context.Context) (map[string]models.MarketData, error) {
	var rows []models.MarketData
	err := s.db.Store().Find(&rows, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list market data: %w", err)
	}

	latest := make(map[string]models.MarketData)
	for _, row := range rows {
		current, ok := latest[row.Symbol]
		if !ok || row.Timestamp.After(current.Timestamp) {
			latest[row.Symbol] = row
		}
	}

	return latest, nil
}

// GetBySymbol returns rows for a symbol, newest first
func (s *MarketDataStorage) GetBySymbol(ctx context.Context, symbol string, limit int) ([]models.MarketData, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.MarketData
	err := s.db.Store().Find(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list market data for symbol: %w", err)
	}
	return rows, nil
}
