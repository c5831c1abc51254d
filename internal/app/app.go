// -----------------------------------------------------------------------
// Last Modified: Thursday, 7th May 2026 6:42:11 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/handlers"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/fx"
	"github.com/ternarybob/folio/internal/services/history"
	"github.com/ternarybob/folio/internal/services/scheduler"
	"github.com/ternarybob/folio/internal/services/settings"
	"github.com/ternarybob/folio/internal/services/summary"
	syncsvc "github.com/ternarybob/folio/internal/services/sync"
	"github.com/ternarybob/folio/internal/storage/badger"
	"github.com/ternarybob/folio/internal/yahoo"
)

// Scheduler entries for the periodic market data sync and database
// maintenance.
const (
	syncJobName        = "market-sync"
	maintenanceJobName = "db-maintenance"

	maintenanceSchedule = "0 3 * * *"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Market data source
	PriceSource interfaces.PriceSource

	// Services
	SettingsService  interfaces.SettingsService
	Resolver         fx.Resolver
	HistoryCache     *history.Cache
	Aggregator       *history.Aggregator
	SummaryService   *summary.Service
	SyncService      *syncsvc.Service
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	AccountHandler    *handlers.AccountHandler
	PositionHandler   *handlers.PositionHandler
	MarketDataHandler *handlers.MarketDataHandler
	FxHandler         *handlers.FxHandler
	HistoryHandler    *handlers.HistoryHandler
	SummaryHandler    *handlers.SummaryHandler
	SettingsHandler   *handlers.SettingsHandler
	MappingHandler    *handlers.MappingHandler
}

// New creates the application, wiring storage, services and handlers.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	a.PriceSource = yahoo.NewClient(
		yahoo.WithBaseURL(config.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Yahoo.RequestTimeout),
	)

	settingsService, err := settings.NewService(
		storageManager.KeyValues(),
		storageManager.PriceCache(),
		models.Settings{
			ReportingCurrency: config.Portfolio.ReportingCurrency,
			HistoryCachePath:  config.HistoryCachePath(),
		},
		logger,
	)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}
	a.SettingsService = settingsService

	a.Resolver = fx.NewResolver(config.Portfolio.AnchorCurrency)
	a.HistoryCache = history.NewCache(storageManager.PriceCache(), a.PriceSource, logger)
	a.Aggregator = history.NewAggregator(storageManager, a.HistoryCache, a.Resolver, settingsService, config.Sync.FetchDelay, logger)
	a.SummaryService = summary.NewService(storageManager, a.Resolver, settingsService, logger)
	a.SyncService = syncsvc.NewService(storageManager, a.PriceSource, settingsService, logger)

	a.SchedulerService = scheduler.NewService(logger)
	if config.Sync.Enabled {
		err := a.SchedulerService.RegisterJob(
			syncJobName,
			config.Sync.Schedule,
			"Refresh market data and exchange rates",
			func() error { return a.SyncService.Sync(context.Background()) },
		)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to register sync job: %w", err)
		}
	}
	err = a.SchedulerService.RegisterJob(
		maintenanceJobName,
		maintenanceSchedule,
		"Badger value log garbage collection",
		storageManager.RunGC,
	)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	a.APIHandler = handlers.NewAPIHandler(a.SchedulerService, logger)
	a.AccountHandler = handlers.NewAccountHandler(storageManager.Accounts(), storageManager.Positions(), logger)
	a.PositionHandler = handlers.NewPositionHandler(storageManager.Positions(), storageManager.Accounts(), logger)
	a.MarketDataHandler = handlers.NewMarketDataHandler(storageManager.MarketData(), a.SyncService, logger)
	a.FxHandler = handlers.NewFxHandler(storageManager.FxRates(), storageManager.Accounts(), storageManager.Positions(), settingsService, a.Resolver, logger)
	a.HistoryHandler = handlers.NewHistoryHandler(a.Aggregator, logger)
	a.SummaryHandler = handlers.NewSummaryHandler(a.SummaryService, logger)
	a.SettingsHandler = handlers.NewSettingsHandler(settingsService, logger)
	a.MappingHandler = handlers.NewMappingHandler(storageManager.Mappings(), logger)

	logger.Info().
		Str("reporting_currency", settingsService.ReportingCurrency()).
		Str("anchor_currency", config.Portfolio.AnchorCurrency).
		Bool("sync_enabled", config.Sync.Enabled).
		Msg("Application initialized")

	return a, nil
}

// Start begins background processing
func (a *App) Start() error {
	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close shuts down background processing and storage
func (a *App) Close() error {
	if err := a.SchedulerService.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
	}

	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
