package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
)

// DefaultBaseURL is the production Finnhub API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Client provides methods for fetching market data from the Finnhub API.
// It wraps an HTTP client with a request timeout and authenticates every
// request with the X-Finnhub-Token header.
//
// The API token can be rotated at runtime through SetToken; Client is safe
// for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new Finnhub client.
//
// Parameters:
//   - baseURL: API root, typically DefaultBaseURL (overridden in tests)
//   - token: Finnhub API token, may be empty and set later via SetToken
//   - timeout: per-request timeout applied to the underlying HTTP client
//
// Returns:
//   - *Client: A new client instance ready for use
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the API token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Quote fetches the latest quote for a symbol from the Finnhub /quote endpoint.
//
// Finnhub reports unknown symbols as a zero-filled quote rather than an HTTP
// error, so a current price of zero or less is translated into
// apperrors.ErrQuoteUnavailable.
//
// Parameters:
//   - ctx: Request context for cancellation and deadlines
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//
// Returns:
//   - model.Quote: Latest price data with FetchedAt set to the current time
//   - error: If the request fails or the symbol has no price data
func (c *Client) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	var raw quoteResponse
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return model.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if raw.Current <= 0 {
		return model.Quote{}, fmt.Errorf("no price data for %s: %w", symbol, apperrors.ErrQuoteUnavailable)
	}

	now := time.Now().UTC()
	return model.Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(raw.Current),
		DailyChange:   decimal.NewFromFloat(raw.Change),
		PercentChange: decimal.NewFromFloat(raw.PercentChange),
		PreviousClose: decimal.NewFromFloat(raw.PreviousClose),
		FetchedAt:     now,
		MarketOpen:    MarketOpen(now),
	}, nil
}

// HistoricalClose fetches the daily closing price for a symbol on a specific
// date from the Finnhub /stock/candle endpoint. The candle window spans the
// full requested day in UTC; the last close in the window is returned.
//
// Parameters:
//   - ctx: Request context for cancellation and deadlines
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//   - date: The trading day to look up (time component is ignored)
//
// Returns:
//   - decimal.Decimal: Closing price for the date
//   - error: If the request fails or no candle exists for the date
func (c *Client) HistoricalClose(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endpoint := fmt.Sprintf("%s/stock/candle?symbol=%s&resolution=D&from=%d&to=%d",
		c.baseURL, url.QueryEscape(symbol), day.Unix(), day.Add(24*time.Hour-time.Second).Unix())

	var raw candleResponse
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch candle for %s: %w", symbol, err)
	}

	if raw.Status != "ok" || len(raw.Close) == 0 {
		return decimal.Zero, fmt.Errorf("no close price for %s on %s: %w",
			symbol, day.Format("2006-01-02"), apperrors.ErrQuoteUnavailable)
	}

	return decimal.NewFromFloat(raw.Close[len(raw.Close)-1]), nil
}

// get executes an authenticated GET request and decodes the JSON response
// into out. Non-2xx responses are returned as errors with the status code.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	c.mu.RLock()
	req.Header.Set("X-Finnhub-Token", c.token)
	c.mu.RUnlock()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return apperrors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finnhub returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}

// nyse is the exchange timezone used by the market-hours heuristic. Falling
// back to UTC only happens on systems without tzdata, where the heuristic is
// wrong but harmless: MarketOpen only affects the informational flag on quotes.
var nyse = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// MarketOpen reports whether the NYSE regular trading session is open at the
// given instant: Monday through Friday, 09:30 to 16:00 Eastern. Exchange
// holidays are not modeled.
func MarketOpen(t time.Time) bool {
	et := t.In(nyse)
	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}
