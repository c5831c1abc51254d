// -----------------------------------------------------------------------
// Last Modified: Tuesday, 14th April 2026 9:21:07 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// AccountStorage persists accounts.
type AccountStorage interface {
	Save(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, id string) (*models.Account, error)
	GetAll(ctx context.Context) ([]*models.Account, error)
	Delete(ctx context.Context, id string) error
}

// PositionStorage persists positions.
type PositionStorage interface {
	Save(ctx context.Context, position *models.Position) error
	Get(ctx context.Context, id string) (*models.Position, error)
	GetAll(ctx context.Context) ([]*models.Position, error)
	GetByAccount(ctx context.Context, accountID string) ([]*models.Position, error)
	GetByCategory(ctx context.Context, category models.Category) ([]*models.Position, error)
	GetBySymbol(ctx context.Context, symbol string) ([]*models.Position, error)
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) (int, error)
}

// MarketDataStorage persists market data rows. Rows are append-only;
// Latest returns the newest row per symbol.
type MarketDataStorage interface {
	Append(ctx context.Context, data *models.MarketData) error
	Latest(ctx context.Context) (map[string]models.MarketData, error)
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]models.MarketData, error)
}

// FxRateStorage persists exchange rate rows. Rows are append-only;
// Latest returns the newest row per pair.
type FxRateStorage interface {
	Append(ctx context.Context, rate *models.FxRate) error
	Latest(ctx context.Context) (map[string]models.FxRate, error)
}

// MappingStorage persists symbol classification mappings.
type MappingStorage interface {
	SetIndustry(ctx context.Context, symbol, industry string) error
	GetIndustries(ctx context.Context) (map[string]string, error)
	DeleteIndustry(ctx context.Context, symbol string) error
	SetSector(ctx context.Context, symbol, sector string) error
	GetSectors(ctx context.Context) (map[string]string, error)
	DeleteSector(ctx context.Context, symbol string) error
}

// KeyValuePair represents a stored key/value pair with metadata.
type KeyValuePair struct {
	Key         string    `json:"key" badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage persists key/value pairs for runtime settings.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, description string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// PriceCacheStorage persists daily close rows in a store separate from
// the main database so it can be wiped or relocated independently.
type PriceCacheStorage interface {
	UpsertPoints(ctx context.Context, cacheKey string, points models.Series) error
	GetSince(ctx context.Context, cacheKey string, from time.Time) (models.Series, error)
	Reopen(path string) error
	Close() error
}

// StorageManager aggregates all storage backends.
type StorageManager interface {
	Accounts() AccountStorage
	Positions() PositionStorage
	MarketData() MarketDataStorage
	FxRates() FxRateStorage
	Mappings() MappingStorage
	KeyValues() KeyValueStorage
	PriceCache() PriceCacheStorage
	RunGC() error
	Close() error
}
