package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/fx"
)

// Valid group_by values for Summary.
const (
	GroupByCategory = "category"
	GroupByAccount  = "account"
	GroupBySymbol   = "symbol"
	GroupByCashGic  = "cash_gic"
)

// ErrInvalidGroupBy is returned for an unrecognized group_by value.
var ErrInvalidGroupBy = errors.New("invalid group_by")

// Service enriches positions with the latest market data and exchange
// rates and aggregates them into portfolio summaries.
type Service struct {
	accounts   interfaces.AccountStorage
	positions  interfaces.PositionStorage
	marketData interfaces.MarketDataStorage
	fxRates    interfaces.FxRateStorage
	mappings   interfaces.MappingStorage
	settings   interfaces.SettingsService
	resolver   fx.Resolver
	logger     arbor.ILogger
}

// NewService creates a new summary service
func NewService(storage interfaces.StorageManager, resolver fx.Resolver, settings interfaces.SettingsService, logger arbor.ILogger) *Service {
	return &Service{
		accounts:   storage.Accounts(),
		positions:  storage.Positions(),
		marketData: storage.MarketData(),
		fxRates:    storage.FxRates(),
		mappings:   storage.Mappings(),
		settings:   settings,
		resolver:   resolver,
		logger:     logger,
	}
}

// Enrich values every position against the latest market data and fx
// snapshot. Spot price is the latest quote for equities (cost fallback)
// and cost for GIC, Cash and Dividend positions. FX factors fall back
// to 1.0 so a missing rate never blocks the snapshot.
func (s *Service) Enrich(ctx context.Context) ([]models.EnrichedPosition, error) {
	positions, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	accountByID := make(map[string]*models.Account, len(accounts))
	for _, account := range accounts {
		accountByID[account.ID] = account
	}

	marketData, err := s.marketData.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market data: %w", err)
	}

	latest, err := s.fxRates.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fx rates: %w", err)
	}
	snapshot := fx.SnapshotFromRates(latest)

	industries, err := s.mappings.GetIndustries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load industry mappings: %w", err)
	}
	sectors, err := s.mappings.GetSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sector mappings: %w", err)
	}

	reporting := s.settings.ReportingCurrency()

	enriched := make([]models.EnrichedPosition, 0, len(positions))
	for _, position := range positions {
		row := models.EnrichedPosition{
			Position: *position,
			Industry: models.UnspecifiedLabel,
			Sector:   models.UnspecifiedLabel,
		}

		accountCurrency := position.Currency
		if account, ok := accountByID[position.AccountID]; ok {
			row.AccountName = account.Name
			accountCurrency = account.Currency
		}
		row.AccountCurrency = accountCurrency

		symbol := strings.ToUpper(position.Symbol)
		if industry, ok := industries[symbol]; ok && industry != "" {
			row.Industry = industry
		}
		if sector, ok := sectors[symbol]; ok && sector != "" {
			row.Sector = sector
		}

		row.SpotPrice = position.CostPerShare
		if position.Category == models.CategoryEquity {
			if quote, ok := marketData[symbol]; ok {
				if quote.LastPrice != nil && *quote.LastPrice != 0 {
					row.SpotPrice = *quote.LastPrice
				}
				row.PERatio = quote.PERatio
				row.ChangePercent = quote.ChangePercent
				row.Beta = quote.Beta
			}
		}

		row.FxStockToAccount = s.resolver.RateOrDefault(snapshot, position.Currency, accountCurrency)
		row.FxAccountToReporting = s.resolver.RateOrDefault(snapshot, accountCurrency, reporting)

		row.CostAccount = position.CostPerShare * position.Quantity * row.FxStockToAccount
		row.MtmAccount = row.SpotPrice * position.Quantity * row.FxStockToAccount
		row.PnlAccount = row.MtmAccount - row.CostAccount
		row.MtmReporting = row.MtmAccount * row.FxAccountToReporting
		row.PnlReporting = row.PnlAccount * row.FxAccountToReporting

		enriched = append(enriched, row)
	}

	// Proportions need the full total, so they are a second pass
	var totalMtm float64
	for _, row := range enriched {
		totalMtm += row.MtmReporting
	}
	for i := range enriched {
		if totalMtm != 0 {
			enriched[i].Proportion = enriched[i].MtmReporting / totalMtm * 100
		}
	}

	return enriched, nil
}

// Summary groups the enriched portfolio by category, account, symbol or
// the binary cash_gic split.
func (s *Service) Summary(ctx context.Context, groupBy string) (*models.PortfolioSummary, error) {
	if groupBy == "" {
		groupBy = GroupByCategory
	}

	switch groupBy {
	case GroupByCategory, GroupByAccount, GroupBySymbol, GroupByCashGic:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidGroupBy, groupBy)
	}

	enriched, err := s.Enrich(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*models.SummaryGroup)
	var totalMtm, totalPnl float64

	for _, row := range enriched {
		label := groupLabel(row, groupBy)
		group, ok := groups[label]
		if !ok {
			group = &models.SummaryGroup{Label: label}
			groups[label] = group
		}
		group.MtmReporting += row.MtmReporting
		group.PnlReporting += row.PnlReporting
		group.Count++

		totalMtm += row.MtmReporting
		totalPnl += row.PnlReporting
	}

	result := make([]models.SummaryGroup, 0, len(groups))
	for _, group := range groups {
		if totalMtm != 0 {
			group.Proportion = group.MtmReporting / totalMtm * 100
		}
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })

	return &models.PortfolioSummary{
		ReportingCurrency: s.settings.ReportingCurrency(),
		GroupBy:           groupBy,
		TotalMtm:          totalMtm,
		TotalPnl:          totalPnl,
		Groups:            result,
		Positions:         enriched,
	}, nil
}

func groupLabel(row models.EnrichedPosition, groupBy string) string {
	switch groupBy {
	case GroupByAccount:
		if row.AccountName != "" {
			return row.AccountName
		}
		return row.AccountID
	case GroupBySymbol:
		if row.Symbol != "" {
			return strings.ToUpper(row.Symbol)
		}
		return string(row.Category)
	case GroupByCashGic:
		if row.Category == models.CategoryCash || row.Category == models.CategoryGIC {
			return "GIC/Cash"
		}
		return "Other"
	default:
		return string(row.Category)
	}
}
