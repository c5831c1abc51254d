// -----------------------------------------------------------------------
// Last Modified: Friday, 8th May 2026 9:14:32 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Accounts
	mux.HandleFunc("/api/accounts", s.app.AccountHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/accounts/", s.app.AccountHandler.ItemHandler)      // GET/PUT/DELETE /{id}

	// API routes - Positions
	mux.HandleFunc("/api/positions", s.app.PositionHandler.CollectionHandler) // GET (list, ?account_id= or ?category=), POST (create)
	mux.HandleFunc("/api/positions/", s.app.PositionHandler.ItemHandler)      // GET/PUT/DELETE /{id}

	// API routes - Market data
	mux.HandleFunc("/api/market-data", s.app.MarketDataHandler.LatestHandler)          // GET latest quotes (?symbol=)
	mux.HandleFunc("/api/market-data/refresh", s.app.MarketDataHandler.RefreshHandler) // POST manual sync
	mux.HandleFunc("/api/market-data/", s.app.MarketDataHandler.HistoryHandler)        // GET /{symbol}/history

	// API routes - Exchange rates
	mux.HandleFunc("/api/fx", s.app.FxHandler.LatestHandler)        // GET latest rates
	mux.HandleFunc("/api/fx/matrix", s.app.FxHandler.MatrixHandler) // GET cross-rate matrix

	// API routes - Historical valuation
	mux.HandleFunc("/api/history", s.app.HistoryHandler.SymbolHandler)              // GET ?symbol=&account_id=&use_cache=
	mux.HandleFunc("/api/history/aggregate", s.app.HistoryHandler.AggregateHandler) // GET ?account_id=&use_cache=
	mux.HandleFunc("/api/history/industry", s.app.HistoryHandler.IndustryHandler)   // GET ?industry=&use_cache=

	// API routes - Portfolio summary
	mux.HandleFunc("/api/summary", s.app.SummaryHandler.Handler) // GET ?group_by=

	// API routes - Settings
	mux.HandleFunc("/api/settings", s.app.SettingsHandler.Handler) // GET, PUT

	// API routes - Classification mappings
	mux.HandleFunc("/api/industry", s.app.MappingHandler.IndustryCollectionHandler) // GET (list), POST (upsert)
	mux.HandleFunc("/api/industry/", s.app.MappingHandler.IndustryItemHandler)      // DELETE /{symbol}
	mux.HandleFunc("/api/sector", s.app.MappingHandler.SectorCollectionHandler)     // GET (list), POST (upsert)
	mux.HandleFunc("/api/sector/", s.app.MappingHandler.SectorItemHandler)          // DELETE /{symbol}

	// API routes - System
	mux.HandleFunc("/api/jobs", s.app.APIHandler.JobsHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
