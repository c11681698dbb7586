package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/consilium-ai/consilium-go/internal/config"
)

// Client fetches recent closing prices from the market data sidecar. It only
// feeds the technical analyst; any failure here is contained upstream as an
// ordinary agent failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// closesResponse is the sidecar's wire shape for historical closes.
type closesResponse struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

func NewClient(cfg *config.MarketDataConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// RecentCloses returns up to limit recent closing prices for symbol, oldest
// first.
func (c *Client) RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	path := fmt.Sprintf("/api/closes/%s", url.PathEscape(symbol))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building market data request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading market data response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed closesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding market data response: %w", err)
	}
	if len(parsed.Closes) == 0 {
		return nil, fmt.Errorf("market data service returned no closes for %s", symbol)
	}

	return parsed.Closes, nil
}
