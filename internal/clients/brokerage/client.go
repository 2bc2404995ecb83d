// Package brokerage is the HTTP client for the brokerage gateway
// service, which owns authentication and the session against the real
// broker API. This process only ever sees the gateway's JSON surface.
package brokerage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/avasilakis/autoinvest/internal/domain"
)

// Client for the brokerage gateway service
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// ServiceResponse is the standard response envelope
type ServiceResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *string         `json:"error"`
	Timestamp string          `json:"timestamp"`
}

// NewClient creates a new brokerage gateway client.
// requestsPerSecond caps the outbound request rate.
func NewClient(baseURL string, requestsPerSecond float64, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:     log.With().Str("client", "brokerage").Logger(),
	}
}

// get makes a rate-limited GET request to the gateway
func (c *Client) get(ctx context.Context, endpoint string) (*ServiceResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

// post makes a rate-limited POST request to the gateway
func (c *Client) post(ctx context.Context, endpoint string, request interface{}) (*ServiceResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

// parseResponse parses the service response envelope
func (c *Client) parseResponse(resp *http.Response) (*ServiceResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result ServiceResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.Success {
		errMsg := "unknown error"
		if result.Error != nil {
			errMsg = *result.Error
		}
		return &result, fmt.Errorf("gateway error: %s", errMsg)
	}

	return &result, nil
}

// Position represents a portfolio position
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	Currency     string  `json:"currency"`
}

// PositionsResponse is the response for GetPositions
type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

// GetPositions gets current portfolio positions
func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	resp, err := c.get(ctx, "/api/portfolio/positions")
	if err != nil {
		return nil, err
	}

	var result PositionsResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse positions: %w", err)
	}

	return result.Positions, nil
}

// CashBalanceResponse is the response for GetCashBalance
type CashBalanceResponse struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// GetCashBalance gets the investable cash balance
func (c *Client) GetCashBalance(ctx context.Context) (float64, error) {
	resp, err := c.get(ctx, "/api/portfolio/cash-balance")
	if err != nil {
		return 0, err
	}

	var result CashBalanceResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to parse cash balance: %w", err)
	}

	c.log.Info().
		Float64("amount", result.Amount).
		Str("currency", result.Currency).
		Msg("Cash balance fetched")

	return result.Amount, nil
}

// Quote represents a current quote for one symbol
type Quote struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
}

// QuotesResponse is the response for GetQuotes
type QuotesResponse struct {
	Quotes []Quote `json:"quotes"`
}

// GetQuotes gets current prices for the given symbols.
// Symbols the gateway cannot quote are absent from the result.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	endpoint := "/api/market/quotes?symbols=" + url.QueryEscape(strings.Join(symbols, ","))
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result QuotesResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quotes: %w", err)
	}

	prices := make(map[string]float64, len(result.Quotes))
	for _, q := range result.Quotes {
		if q.LastPrice > 0 {
			prices[domain.NormalizeSymbol(q.Symbol)] = q.LastPrice
		}
	}

	c.log.Info().Int("quoted", len(prices)).Int("requested", len(symbols)).Msg("Quotes fetched")

	return prices, nil
}

// PlaceOrderRequest is the request for placing an order
type PlaceOrderRequest struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Quantity   int     `json:"quantity"`
	OrderType  string  `json:"order_type"`
	LimitPrice float64 `json:"limit_price,omitempty"`
	Duration   string  `json:"duration"`
	Session    string  `json:"session"`
}

// OrderResult is the result of placing an order
type OrderResult struct {
	OrderID  string  `json:"order_id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PlaceLimitBuy places a whole-share day limit BUY order
func (c *Client) PlaceLimitBuy(ctx context.Context, symbol string, quantity int, limitPrice float64) (*OrderResult, error) {
	req := PlaceOrderRequest{
		Symbol:     symbol,
		Side:       "BUY",
		Quantity:   quantity,
		OrderType:  "LIMIT",
		LimitPrice: limitPrice,
		Duration:   "DAY",
		Session:    "NORMAL",
	}

	resp, err := c.post(ctx, "/api/trading/place-order", req)
	if err != nil {
		return nil, err
	}

	var result OrderResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse order result: %w", err)
	}

	return &result, nil
}

// Ping checks gateway availability
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/health")
	return err
}
