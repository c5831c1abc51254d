package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/models"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(
		WithBaseURL(server.URL),
		WithCookieURL(server.URL+"/cookie"),
		WithRateLimit(1000),
	)
	return client, server
}

func chartJSON(timestamps []int64, closes []string, price, prevClose float64) string {
	tsParts := make([]string, len(timestamps))
	for i, ts := range timestamps {
		tsParts[i] = fmt.Sprintf("%d", ts)
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"regularMarketPrice": %g, "chartPreviousClose": %g},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s]}]}
			}],
			"error": null
		}
	}`, price, prevClose, strings.Join(tsParts, ","), strings.Join(closes, ","))
}

func TestFetchDailyHistoryForwardFillsNulls(t *testing.T) {
	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartJSON(
			[]int64{day1.Unix(), day2.Unix(), day3.Unix()},
			[]string{"null", "150.5", "null"},
			151, 149,
		))
	}))
	defer server.Close()

	series, err := client.FetchDailyHistory(context.Background(), "AAPL", day1, day3)
	require.NoError(t, err)

	// Leading null dropped, trailing null forward-filled
	require.Len(t, series, 2)
	assert.Equal(t, day2, series[0].Date)
	assert.Equal(t, 150.5, series[0].Close)
	assert.Equal(t, day3, series[1].Date)
	assert.Equal(t, 150.5, series[1].Close)
}

func TestFetchCurrentPricesQuoteSummary(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cookie":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session"})
		case r.URL.Path == "/v1/test/getcrumb":
			fmt.Fprint(w, "test-crumb")
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			assert.Equal(t, "test-crumb", r.URL.Query().Get("crumb"))
			fmt.Fprint(w, `{
				"quoteSummary": {
					"result": [{
						"price": {
							"regularMarketPrice": {"raw": 150.25},
							"regularMarketChangePercent": {"raw": 0.012}
						},
						"summaryDetail": {"trailingPE": {"raw": 28.5}},
						"defaultKeyStatistics": {"beta": {"raw": 1.2}}
					}],
					"error": null
				}
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	quotes, err := client.FetchCurrentPrices(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	quote := quotes["AAPL"]
	require.NotNil(t, quote.LastPrice)
	assert.Equal(t, 150.25, *quote.LastPrice)
	require.NotNil(t, quote.PERatio)
	assert.Equal(t, 28.5, *quote.PERatio)
	require.NotNil(t, quote.ChangePercent)
	assert.InDelta(t, 1.2, *quote.ChangePercent, 1e-9)
	require.NotNil(t, quote.Beta)
	assert.Equal(t, 1.2, *quote.Beta)
}

func TestFetchCurrentPricesChartFallback(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cookie":
		case r.URL.Path == "/v1/test/getcrumb":
			fmt.Fprint(w, "test-crumb")
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			http.Error(w, "not found", http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			fmt.Fprint(w, chartJSON(nil, nil, 99.5, 100))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	quotes, err := client.FetchCurrentPrices(context.Background(), []string{"XYZ"})
	require.NoError(t, err)

	quote := quotes["XYZ"]
	require.NotNil(t, quote.LastPrice)
	assert.Equal(t, 99.5, *quote.LastPrice)
	require.NotNil(t, quote.ChangePercent)
	assert.InDelta(t, -0.5, *quote.ChangePercent, 1e-9)
	assert.Nil(t, quote.PERatio)
}

func TestFetchCurrentPricesUnavailableSymbolIsEmptyQuote(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cookie":
		case r.URL.Path == "/v1/test/getcrumb":
			fmt.Fprint(w, "test-crumb")
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	quotes, err := client.FetchCurrentPrices(context.Background(), []string{"NOPE"})
	require.NoError(t, err)
	assert.True(t, quotes["NOPE"].Empty())
}

func TestFetchCurrentFx(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			assert.Contains(t, r.URL.Path, "USDCAD=X")
			fmt.Fprint(w, chartJSON(nil, nil, 1.35, 1.34))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	rates, err := client.FetchCurrentFx(context.Background(), []models.CurrencyPair{
		{From: "USD", To: "CAD"},
		{From: "CAD", To: "CAD"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.35, rates["USD/CAD"])
	assert.Equal(t, 1.0, rates["CAD/CAD"])
}

func TestWithTimeoutAbortsSlowRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithCookieURL(server.URL+"/cookie"),
		WithRateLimit(1000),
		WithTimeout(50*time.Millisecond),
	)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchDailyHistory(context.Background(), "AAPL", from, from.AddDate(0, 0, 1))
	require.Error(t, err)
}

func TestFxTicker(t *testing.T) {
	assert.Equal(t, "USDCAD=X", FxTicker("usd", "cad"))
}
