package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/fx"
)

const daysPerYear = 365.0

// AggregateOptions selects which positions a history request covers.
type AggregateOptions struct {
	AccountID string
	Industry  string
	UseCache  bool
}

// Aggregator builds historical valuation series from positions, cached
// price history and historical exchange rates.
type Aggregator struct {
	accounts   interfaces.AccountStorage
	positions  interfaces.PositionStorage
	fxRates    interfaces.FxRateStorage
	mappings   interfaces.MappingStorage
	settings   interfaces.SettingsService
	cache      *Cache
	resolver   fx.Resolver
	fetchDelay time.Duration
	logger     arbor.ILogger
}

// NewAggregator creates an aggregator over the given storage and cache.
func NewAggregator(
	storage interfaces.StorageManager,
	cache *Cache,
	resolver fx.Resolver,
	settings interfaces.SettingsService,
	fetchDelay time.Duration,
	logger arbor.ILogger,
) *Aggregator {
	return &Aggregator{
		accounts:   storage.Accounts(),
		positions:  storage.Positions(),
		fxRates:    storage.FxRates(),
		mappings:   storage.Mappings(),
		settings:   settings,
		cache:      cache,
		resolver:   resolver,
		fetchDelay: fetchDelay,
		logger:     logger,
	}
}

// symbolGroup is the per-symbol aggregation of equity positions:
// total quantity, volume-weighted average cost and the earliest open date.
type symbolGroup struct {
	symbol          string
	quantity        float64
	avgCost         float64
	currency        string
	accountCurrency string
	earliest        time.Time
}

// fxTicker is the provider's synthetic ticker for a currency pair.
func fxTicker(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

// Aggregate builds the reporting-currency valuation series for the
// whole portfolio or a single account. Equity positions are valued per
// date from aligned price series; Cash positions contribute flat cost
// and GIC positions accrue linearly from their open date.
func (a *Aggregator) Aggregate(ctx context.Context, opts AggregateOptions) (*models.History, error) {
	positions, err := a.loadPositions(ctx, opts.AccountID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, interfaces.ErrNoMatchingPositions
	}

	accountCcy, err := a.accountCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	reporting := a.settings.ReportingCurrency()

	equities, cashGic := splitPositions(positions)

	if opts.Industry != "" {
		industries, err := a.mappings.GetIndustries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load industry mappings: %w", err)
		}
		equities = filterByIndustry(equities, industries, opts.Industry)
		// Industry slices cover equities only
		cashGic = nil
		if len(equities) == 0 {
			return nil, interfaces.ErrNoMatchingPositions
		}
	}

	groups := groupBySymbol(equities, accountCcy)

	label := "portfolio"
	if opts.Industry != "" {
		label = opts.Industry
	}
	// The date axis comes from equity price series, so a portfolio with
	// no equities has no history to aggregate.
	if len(groups) == 0 {
		return nil, interfaces.ErrNoMatchingPositions
	}

	histRates, snapshot, err := a.loadHistoricalRates(ctx, groups, cashGic, accountCcy, reporting, positions, opts.UseCache)
	if err != nil {
		return nil, err
	}

	seriesBySymbol := make(map[string]models.Series, len(groups))
	anyEquityData := false
	for _, group := range groups {
		series := a.fetchSeries(ctx, group.symbol, group.earliest, opts.UseCache)
		seriesBySymbol[group.symbol] = series
		if len(series) > 0 {
			anyEquityData = true
		}
	}

	if len(groups) > 0 && !opts.UseCache && !anyEquityData {
		return nil, interfaces.ErrSourceUnavailable
	}

	aligned := Align(seriesBySymbol)

	points := make([]models.HistoryPoint, 0, len(aligned.Dates))
	for _, date := range aligned.Dates {
		var mtm, pnl, cashGicValue float64

		for _, group := range groups {
			value, ok := aligned.Values[group.symbol][date]
			if !ok {
				continue
			}
			legOne, okOne := histRates.RateOn(group.currency, group.accountCurrency, date)
			legTwo, okTwo := histRates.RateOn(group.accountCurrency, reporting, date)
			if !okOne || !okTwo {
				// Unresolvable leg: the date gets no contribution
				continue
			}
			factor := group.quantity * legOne * legTwo
			mtm += value * factor
			pnl += (value - group.avgCost) * factor
		}

		for _, position := range cashGic {
			opened := models.Day(position.DateAdded)
			if date.Before(opened) {
				continue
			}

			costTotal := position.CostPerShare * position.Quantity
			value := costTotal
			if position.Category == models.CategoryGIC && position.YieldRate != nil {
				days := date.Sub(opened).Hours() / 24
				value = costTotal * (1 + *position.YieldRate*days/daysPerYear)
			}

			acct := accountCcy[position.AccountID]
			factor := a.resolver.RateOrDefault(snapshot, position.Currency, acct) *
				a.resolver.RateOrDefault(snapshot, acct, reporting)

			mtm += value * factor
			pnl += (value - costTotal) * factor
			cashGicValue += value * factor
		}

		points = append(points, models.HistoryPoint{
			Date:    date.Format("2006-01-02"),
			Mtm:     mtm,
			Pnl:     pnl,
			CashGic: cashGicValue,
		})
	}

	return &models.History{
		Label:    label,
		Currency: reporting,
		Points:   points,
	}, nil
}

// AggregateByIndustry builds the valuation series for equities mapped
// to the given industry. Unmapped symbols fall under "Unspecified".
func (a *Aggregator) AggregateByIndustry(ctx context.Context, industry string, useCache bool) (*models.History, error) {
	return a.Aggregate(ctx, AggregateOptions{Industry: industry, UseCache: useCache})
}

// SymbolHistory builds the valuation series for a single symbol in its
// trade currency. No FX conversion is applied.
func (a *Aggregator) SymbolHistory(ctx context.Context, symbol, accountID string, useCache bool) (*models.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	positions, err := a.positions.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if accountID != "" {
		filtered := positions[:0]
		for _, position := range positions {
			if position.AccountID == accountID {
				filtered = append(filtered, position)
			}
		}
		positions = filtered
	}
	if len(positions) == 0 {
		return nil, interfaces.ErrNoMatchingPositions
	}

	var quantity, costSum float64
	earliest := models.Day(positions[0].DateAdded)
	currency := positions[0].Currency
	for _, position := range positions {
		quantity += position.Quantity
		costSum += position.CostPerShare * position.Quantity
		if opened := models.Day(position.DateAdded); opened.Before(earliest) {
			earliest = opened
		}
	}
	avgCost := 0.0
	if quantity != 0 {
		avgCost = costSum / quantity
	}

	series := a.fetchSeries(ctx, symbol, earliest, useCache)
	if len(series) == 0 {
		if !useCache {
			return nil, interfaces.ErrSourceUnavailable
		}
		return &models.History{Label: symbol, Currency: currency, Points: []models.HistoryPoint{}}, nil
	}

	points := make([]models.HistoryPoint, 0, len(series))
	for _, point := range series {
		points = append(points, models.HistoryPoint{
			Date:  models.Day(point.Date).Format("2006-01-02"),
			Close: point.Close,
			Mtm:   point.Close * quantity,
			Pnl:   (point.Close - avgCost) * quantity,
		})
	}

	return &models.History{
		Label:    symbol,
		Currency: currency,
		Points:   points,
	}, nil
}

func (a *Aggregator) loadPositions(ctx context.Context, accountID string) ([]*models.Position, error) {
	if accountID != "" {
		return a.positions.GetByAccount(ctx, accountID)
	}
	return a.positions.GetAll(ctx)
}

func (a *Aggregator) accountCurrencies(ctx context.Context) (map[string]string, error) {
	accounts, err := a.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	currencies := make(map[string]string, len(accounts))
	for _, account := range accounts {
		currencies[account.ID] = account.Currency
	}
	return currencies, nil
}

// loadHistoricalRates pre-fetches dated fx series for every conversion
// leg the request needs, from the overall earliest open date.
func (a *Aggregator) loadHistoricalRates(
	ctx context.Context,
	groups []symbolGroup,
	cashGic []*models.Position,
	accountCcy map[string]string,
	reporting string,
	positions []*models.Position,
	useCache bool,
) (*fx.HistoricalRates, fx.RateMap, error) {
	latest, err := a.fxRates.Latest(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fx rates: %w", err)
	}
	snapshot := fx.SnapshotFromRates(latest)
	histRates := fx.NewHistoricalRates(a.resolver, snapshot)

	earliest := models.Day(time.Now().UTC())
	for _, position := range positions {
		if opened := models.Day(position.DateAdded); opened.Before(earliest) {
			earliest = opened
		}
	}

	legs := make(map[models.CurrencyPair]bool)
	addLeg := func(from, to string) {
		from, to = strings.ToUpper(from), strings.ToUpper(to)
		if from != "" && to != "" && from != to {
			legs[models.CurrencyPair{From: from, To: to}] = true
		}
	}
	for _, group := range groups {
		addLeg(group.currency, group.accountCurrency)
		addLeg(group.accountCurrency, reporting)
	}
	for _, position := range cashGic {
		acct := accountCcy[position.AccountID]
		addLeg(position.Currency, acct)
		addLeg(acct, reporting)
	}

	for leg := range legs {
		series := a.fetchSeries(ctx, fxTicker(leg.From, leg.To), earliest, useCache)
		histRates.AddSeries(leg.From, leg.To, series)
	}

	return histRates, snapshot, nil
}

// fetchSeries reads one instrument's history through the cache, pacing
// live requests with the configured delay. Fetch errors degrade to an
// empty series; the caller decides whether that is fatal.
func (a *Aggregator) fetchSeries(ctx context.Context, key string, from time.Time, useCache bool) models.Series {
	if !useCache && a.fetchDelay > 0 {
		select {
		case <-time.After(a.fetchDelay):
		case <-ctx.Done():
			return models.Series{}
		}
	}

	series, err := a.cache.FetchOrCache(ctx, key, from, useCache)
	if err != nil {
		a.logger.Warn().Str("key", key).Err(err).Msg("History unavailable for instrument")
		return models.Series{}
	}
	return series
}

func splitPositions(positions []*models.Position) (equities, cashGic []*models.Position) {
	for _, position := range positions {
		switch position.Category {
		case models.CategoryEquity:
			if strings.TrimSpace(position.Symbol) != "" {
				equities = append(equities, position)
			}
		case models.CategoryCash, models.CategoryGIC:
			cashGic = append(cashGic, position)
		}
	}
	return equities, cashGic
}

func filterByIndustry(equities []*models.Position, industries map[string]string, industry string) []*models.Position {
	var filtered []*models.Position
	for _, position := range equities {
		label, ok := industries[strings.ToUpper(position.Symbol)]
		if !ok || label == "" {
			label = models.UnspecifiedLabel
		}
		if strings.EqualFold(label, industry) {
			filtered = append(filtered, position)
		}
	}
	return filtered
}

// groupBySymbol merges equity positions per symbol with volume-weighted
// average cost. The account currency is taken from the first position
// of each symbol.
func groupBySymbol(equities []*models.Position, accountCcy map[string]string) []symbolGroup {
	index := make(map[string]int)
	var groups []symbolGroup

	for _, position := range equities {
		symbol := strings.ToUpper(position.Symbol)
		i, ok := index[symbol]
		if !ok {
			index[symbol] = len(groups)
			groups = append(groups, symbolGroup{
				symbol:          symbol,
				currency:        strings.ToUpper(position.Currency),
				accountCurrency: strings.ToUpper(accountCcy[position.AccountID]),
				earliest:        models.Day(position.DateAdded),
			})
			i = len(groups) - 1
		}

		group := &groups[i]
		group.avgCost = weightedCost(group.avgCost, group.quantity, position.CostPerShare, position.Quantity)
		group.quantity += position.Quantity
		if opened := models.Day(position.DateAdded); opened.Before(group.earliest) {
			group.earliest = opened
		}
	}

	return groups
}

func weightedCost(currentAvg, currentQty, cost, qty float64) float64 {
	total := currentQty + qty
	if total == 0 {
		return 0
	}
	return (currentAvg*currentQty + cost*qty) / total
}
