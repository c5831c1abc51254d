package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Service refreshes market data and exchange rates from the price
// source. Rows are appended; readers take the latest row per key.
type Service struct {
	accounts   interfaces.AccountStorage
	positions  interfaces.PositionStorage
	marketData interfaces.MarketDataStorage
	fxRates    interfaces.FxRateStorage
	source     interfaces.PriceSource
	settings   interfaces.SettingsService
	logger     arbor.ILogger

	syncing atomic.Bool
}

// NewService creates a new sync service
func NewService(storage interfaces.StorageManager, source interfaces.PriceSource, settings interfaces.SettingsService, logger arbor.ILogger) *Service {
	return &Service{
		accounts:   storage.Accounts(),
		positions:  storage.Positions(),
		marketData: storage.MarketData(),
		fxRates:    storage.FxRates(),
		source:     source,
		settings:   settings,
		logger:     logger,
	}
}

// Sync fetches current quotes for every distinct equity symbol and
// current rates for every conversion leg, appending the results.
// Concurrent triggers are dropped: if a sync is already in flight the
// call returns immediately without touching the source.
func (s *Service) Sync(ctx context.Context) error {
	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.Info().Msg("Sync already in progress, skipping trigger")
		return nil
	}
	defer s.syncing.Store(false)

	start := time.Now()
	s.logger.Info().Msg("Market data sync started")

	symbols, pairs, err := s.collectTargets(ctx)
	if err != nil {
		return err
	}

	if len(symbols) == 0 && len(pairs) == 0 {
		s.logger.Info().Msg("No equity symbols or currency pairs to sync")
		return nil
	}

	now := time.Now().UTC()

	quotes, err := s.source.FetchCurrentPrices(ctx, symbols)
	if err != nil {
		return fmt.Errorf("failed to fetch current prices: %w", err)
	}
	stored := 0
	for symbol, quote := range quotes {
		if quote.Empty() {
			continue
		}
		row := &models.MarketData{
			ID:            common.NewRowID(),
			Symbol:        symbol,
			LastPrice:     quote.LastPrice,
			PERatio:       quote.PERatio,
			ChangePercent: quote.ChangePercent,
			Beta:          quote.Beta,
			Timestamp:     now,
		}
		if err := s.marketData.Append(ctx, row); err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to store market data row")
			continue
		}
		stored++
	}

	rates, err := s.source.FetchCurrentFx(ctx, pairs)
	if err != nil {
		return fmt.Errorf("failed to fetch fx rates: %w", err)
	}
	storedRates := 0
	for pair, value := range rates {
		row := &models.FxRate{
			ID:        common.NewRowID(),
			Pair:      pair,
			Rate:      value,
			Timestamp: now,
		}
		if err := s.fxRates.Append(ctx, row); err != nil {
			s.logger.Warn().Str("pair", pair).Err(err).Msg("Failed to store fx rate row")
			continue
		}
		storedRates++
	}

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("quotes_stored", stored).
		Int("pairs", len(pairs)).
		Int("rates_stored", storedRates).
		Dur("duration", time.Since(start)).
		Msg("Market data sync completed")

	return nil
}

// IsSyncing reports whether a sync is currently in flight
func (s *Service) IsSyncing() bool {
	return s.syncing.Load()
}

// collectTargets derives the distinct equity symbols and conversion
// legs (trade to account currency, account to reporting currency) from
// the stored positions.
func (s *Service) collectTargets(ctx context.Context) ([]string, []models.CurrencyPair, error) {
	positions, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load positions: %w", err)
	}

	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	accountCcy := make(map[string]string, len(accounts))
	for _, account := range accounts {
		accountCcy[account.ID] = strings.ToUpper(account.Currency)
	}

	reporting := s.settings.ReportingCurrency()

	symbolSet := make(map[string]bool)
	pairSet := make(map[models.CurrencyPair]bool)
	addPair := func(from, to string) {
		from, to = strings.ToUpper(from), strings.ToUpper(to)
		if from != "" && to != "" && from != to {
			pairSet[models.CurrencyPair{From: from, To: to}] = true
		}
	}

	for _, position := range positions {
		if position.Category == models.CategoryEquity && strings.TrimSpace(position.Symbol) != "" {
			symbolSet[strings.ToUpper(position.Symbol)] = true
		}
		acct := accountCcy[position.AccountID]
		addPair(position.Currency, acct)
		addPair(acct, reporting)
	}

	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	pairs := make([]models.CurrencyPair, 0, len(pairSet))
	for pair := range pairSet {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key() < pairs[j].Key() })

	return symbols, pairs, nil
}
