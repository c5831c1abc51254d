package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Manager aggregates all Badger-backed storages over a shared database
// connection, plus the separate price cache store.
type Manager struct {
	db         *BadgerDB
	logger     arbor.ILogger
	accounts   interfaces.AccountStorage
	positions  interfaces.PositionStorage
	marketData interfaces.MarketDataStorage
	fxRates    interfaces.FxRateStorage
	mappings   interfaces.MappingStorage
	keyValues  interfaces.KeyValueStorage
	priceCache *PriceCacheStorage
}

// NewManager opens the main database and price cache store and wires
// all typed storages.
func NewManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}

	priceCache, err := NewPriceCacheStorage(logger, config.HistoryCachePath())
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:         db,
		logger:     logger,
		accounts:   NewAccountStorage(db, logger),
		positions:  NewPositionStorage(db, logger),
		marketData: NewMarketDataStorage(db, logger),
		fxRates:    NewFxRateStorage(db, logger),
		mappings:   NewMappingStorage(db, logger),
		keyValues:  NewKVStorage(db, logger),
		priceCache: priceCache,
	}, nil
}

func (m *Manager) Accounts() interfaces.AccountStorage      { return m.accounts }
func (m *Manager) Positions() interfaces.PositionStorage    { return m.positions }
func (m *Manager) MarketData() interfaces.MarketDataStorage { return m.marketData }
func (m *Manager) FxRates() interfaces.FxRateStorage        { return m.fxRates }
func (m *Manager) Mappings() interfaces.MappingStorage      { return m.mappings }
func (m *Manager) KeyValues() interfaces.KeyValueStorage    { return m.keyValues }
func (m *Manager) PriceCache() interfaces.PriceCacheStorage { return m.priceCache }

// RunGC reclaims value log space on the main database.
func (m *Manager) RunGC() error { return m.db.RunGC() }

// Close closes all underlying stores
func (m *Manager) Close() error {
	if err := m.priceCache.Close(); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to close price cache store")
	}
	return m.db.Close()
}
