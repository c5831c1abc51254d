package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PositionStorage implements the PositionStorage interface for Badger
type PositionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPositionStorage creates a new PositionStorage instance
func NewPositionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PositionStorage {
	return &PositionStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts or updates a position
func (s *PositionStorage) Save(ctx context.Context, position *models.Position) error {
	if err := s.db.Store().Upsert(position.ID, position); err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// Get retrieves a position by ID
func (s *PositionStorage) Get(ctx context.Context, id string) (*models.Position, error) {
	var position models.Position
	err := s.db.Store().Get(id, &position)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

// GetAll returns all positions
func (s *PositionStorage) GetAll(ctx context.Context) ([]*models.Position, error) {
	var positions []*models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("ID").Ne("").SortBy("Symbol"))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// GetByAccount returns all positions for an account
func (s *PositionStorage) GetByAccount(ctx context.Context, accountID string) ([]*models.Position, error) {
	var positions []*models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("AccountID").Eq(accountID).Index("AccountID"))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions for account: %w", err)
	}
	return positions, nil
}

// GetByCategory returns all positions of a category
func (s *PositionStorage) GetByCategory(ctx context.Context, category models.Category) ([]*models.Position, error) {
	var positions []*models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("Category").Eq(category).SortBy("Symbol"))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions for category: %w", err)
	}
	return positions, nil
}

// GetBySymbol returns all positions for a symbol
func (s *PositionStorage) GetBySymbol(ctx context.Context, symbol string) ([]*models.Position, error) {
	var positions []*models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol"))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions for symbol: %w", err)
	}
	return positions, nil
}

// Delete removes a position by ID
func (s *PositionStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Position{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// DeleteByAccount removes all positions for an account and returns the
// number deleted. Used by account deletion for cascade cleanup.
func (s *PositionStorage) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	positions, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, position := range positions {
		if err := s.db.Store().Delete(position.ID, &models.Position{}); err != nil {
			s.logger.Warn().Str("position_id", position.ID).Err(err).Msg("Failed to delete position during cascade")
			continue
		}
		deleted++
	}

	return deleted, nil
}
