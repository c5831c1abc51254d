package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Yahoo Finance API.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultCookieURL is fetched once to obtain the session cookie
	// required by crumb-authenticated endpoints.
	DefaultCookieURL = "https://fc.yahoo.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client is a Yahoo Finance API client implementing interfaces.PriceSource.
type Client struct {
	baseURL    string
	cookieURL  string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	crumbMu sync.Mutex
	crumb   string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithCookieURL sets a custom cookie seed URL.
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:   DefaultBaseURL,
		cookieURL: DefaultCookieURL,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Crumb auth requires the session cookie to ride along
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}

	return c
}

// get performs a GET request against the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Yahoo API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// ensureCrumb fetches the crumb token, seeding the session cookie first.
// The crumb is cached until an auth failure invalidates it.
func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// Seed the session cookie. The response body is irrelevant.
	seedReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie request: %w", err)
	}
	seedReq.Header.Set("User-Agent", c.userAgent)
	if seedResp, err := c.httpClient.Do(seedReq); err == nil {
		io.Copy(io.Discard, seedResp.Body)
		seedResp.Body.Close()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create crumb request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch crumb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   "/v1/test/getcrumb",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read crumb: %w", err)
	}

	c.crumb = strings.TrimSpace(string(body))
	if c.crumb == "" {
		return "", fmt.Errorf("empty crumb from api")
	}

	return c.crumb, nil
}

// invalidateCrumb drops the cached crumb after an auth failure
func (c *Client) invalidateCrumb() {
	c.crumbMu.Lock()
	c.crumb = ""
	c.crumbMu.Unlock()
}

// fetchQuoteSummary retrieves a full quote via the crumb-authenticated
// quoteSummary endpoint, retrying once on an auth failure with a fresh
// crumb.
func (c *Client) fetchQuoteSummary(ctx context.Context, symbol string) (models.Quote, error) {
	quote, err := c.quoteSummaryOnce(ctx, symbol)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			c.invalidateCrumb()
			return c.quoteSummaryOnce(ctx, symbol)
		}
		return models.Quote{}, err
	}
	return quote, nil
}

func (c *Client) quoteSummaryOnce(ctx context.Context, symbol string) (models.Quote, error) {
	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return models.Quote{}, err
	}

	params := url.Values{}
	params.Set("modules", "price,summaryDetail,defaultKeyStatistics")
	params.Set("crumb", crumb)

	var result quoteSummaryResponse
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &result); err != nil {
		return models.Quote{}, err
	}

	if result.QuoteSummary.Error != nil {
		return models.Quote{}, fmt.Errorf("quoteSummary error for %s: %s", symbol, result.QuoteSummary.Error.Description)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return models.Quote{}, fmt.Errorf("quoteSummary empty result for %s", symbol)
	}

	entry := result.QuoteSummary.Result[0]
	quote := models.Quote{
		LastPrice:     entry.Price.RegularMarketPrice.Raw,
		PERatio:       entry.SummaryDetail.TrailingPE.Raw,
		ChangePercent: entry.Price.RegularMarketChangePercent.Raw,
		Beta:          entry.SummaryDetail.Beta.Raw,
	}
	if quote.Beta == nil {
		quote.Beta = entry.DefaultKeyStatistics.Beta.Raw
	}
	// Yahoo reports change as a fraction; store percent
	if quote.ChangePercent != nil {
		pct := *quote.ChangePercent * 100
		quote.ChangePercent = &pct
	}

	return quote, nil
}

// fetchChartQuote retrieves price and change percent from the chart
// endpoint, which needs no crumb.
func (c *Client) fetchChartQuote(ctx context.Context, symbol string) (models.Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	var result chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &result); err != nil {
		return models.Quote{}, err
	}

	if result.Chart.Error != nil {
		return models.Quote{}, fmt.Errorf("chart error for %s: %s", symbol, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return models.Quote{}, fmt.Errorf("chart empty result for %s", symbol)
	}

	meta := result.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	quote := models.Quote{LastPrice: &price}
	if meta.ChartPreviousClose != 0 {
		pct := (price - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
		quote.ChangePercent = &pct
	}

	return quote, nil
}

// FetchCurrentPrices returns current quotes keyed by symbol. A symbol
// the provider cannot serve yields an empty quote, never an error for
// the whole batch.
func (c *Client) FetchCurrentPrices(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	quotes := make(map[string]models.Quote, len(symbols))

	for _, symbol := range symbols {
		quote, err := c.fetchQuoteSummary(ctx, symbol)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug().Str("symbol", symbol).Err(err).Msg("quoteSummary failed, falling back to chart")
			}
			quote, err = c.fetchChartQuote(ctx, symbol)
		}
		if err != nil {
			if ctx.Err() != nil {
				return quotes, ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warn().Str("symbol", symbol).Err(err).Msg("No quote available")
			}
			quote = models.Quote{}
		}
		quotes[symbol] = quote
	}

	return quotes, nil
}

// FetchCurrentFx returns current exchange rates keyed by "FROM/TO".
// Same-currency pairs resolve to 1.0 without a provider call; pairs the
// provider cannot serve are omitted from the result.
func (c *Client) FetchCurrentFx(ctx context.Context, pairs []models.CurrencyPair) (map[string]float64, error) {
	rates := make(map[string]float64, len(pairs))

	for _, pair := range pairs {
		if pair.From == pair.To {
			rates[pair.Key()] = 1.0
			continue
		}

		quote, err := c.fetchChartQuote(ctx, FxTicker(pair.From, pair.To))
		if err != nil {
			if ctx.Err() != nil {
				return rates, ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warn().Str("pair", pair.Key()).Err(err).Msg("No fx rate available")
			}
			continue
		}
		if quote.LastPrice != nil && *quote.LastPrice != 0 {
			rates[pair.Key()] = *quote.LastPrice
		}
	}

	return rates, nil
}

// FetchDailyHistory returns daily closes for an instrument key between
// from and to inclusive. Null closes inside the range are forward
// filled; leading nulls are dropped.
func (c *Client) FetchDailyHistory(ctx context.Context, key string, from, to time.Time) (models.Series, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", models.Day(from).Unix()))
	params.Set("period2", fmt.Sprintf("%d", models.Day(to).AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")

	var result chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(key), params, &result); err != nil {
		return nil, err
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", key, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart empty result for %s", key)
	}

	entry := result.Chart.Result[0]
	if len(entry.Indicators.Quote) == 0 {
		return models.Series{}, nil
	}

	closes := entry.Indicators.Quote[0].Close
	series := make(models.Series, 0, len(entry.Timestamp))
	var lastClose *float64
	for i, ts := range entry.Timestamp {
		if i >= len(closes) {
			break
		}
		closePrice := closes[i]
		if closePrice == nil {
			closePrice = lastClose
		}
		if closePrice == nil {
			// Still before the first observation
			continue
		}
		lastClose = closePrice
		series = append(series, models.PricePoint{
			Date:  models.Day(time.Unix(ts, 0).UTC()),
			Close: *closePrice,
		})
	}

	return series, nil
}

// FxTicker builds the provider's synthetic ticker for a currency pair.
func FxTicker(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

var _ interfaces.PriceSource = (*Client)(nil)
