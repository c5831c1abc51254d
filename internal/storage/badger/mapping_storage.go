package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MappingStorage implements the MappingStorage interface for Badger
type MappingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMappingStorage creates a new MappingStorage instance
func NewMappingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MappingStorage {
	return &MappingStorage{
		db:     db,
		logger: logger,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// SetIndustry inserts or updates an industry mapping
func (s *MappingStorage) SetIndustry(ctx context.Context, symbol, industry string) error {
	mapping := models.IndustryMapping{
		Symbol:   normalizeSymbol(symbol),
		Industry: industry,
	}
	if err := s.db.Store().Upsert(mapping.Symbol, &mapping); err != nil {
		return fmt.Errorf("failed to set industry mapping: %w", err)
	}
	return nil
}

// GetIndustries returns all industry mappings keyed by symbol
func (s *MappingStorage) GetIndustries(ctx context.Context) (map[string]string, error) {
	var mappings []models.IndustryMapping
	err := s.db.Store().Find(&mappings, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list industry mappings: %w", err)
	}

	result := make(map[string]string, len(mappings))
	for _, mapping := range mappings {
		result[mapping.Symbol] = mapping.Industry
	}
	return result, nil
}

// DeleteIndustry removes an industry mapping
func (s *MappingStorage) DeleteIndustry(ctx context.Context, symbol string) error {
	err := s.db.Store().Delete(normalizeSymbol(symbol), &models.IndustryMapping{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete industry mapping: %w", err)
	}
	return nil
}

// SetSector inserts or updates a sector mapping
func (s *MappingStorage) SetSector(ctx context.Context, symbol, sector string) error {
	mapping := models.SectorMapping{
		Symbol: normalizeSymbol(symbol),
		Sector: sector,
	}
	if err := s.db.Store().Upsert(mapping.Symbol, &mapping); err != nil {
		return fmt.Errorf("failed to set sector mapping: %w", err)
	}
	return nil
}

// GetSectors returns all sector mappings keyed by symbol
func (s *MappingStorage) GetSectors(ctx context.Context) (map[string]string, error) {
	var mappings []models.SectorMapping
	err := s.db.Store().Find(&mappings, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list sector mappings: %w", err)
	}

	result := make(map[string]string, len(mappings))
	for _, mapping := range mappings {
		result[mapping.Symbol] = mapping.Sector
	}
	return result, nil
}

// DeleteSector removes a sector mapping
func (s *MappingStorage) DeleteSector(ctx context.Context, symbol string) error {
	err := s.db.Store().Delete(normalizeSymbol(symbol), &models.SectorMapping{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete sector mapping: %w", err)
	}
	return nil
}
