// Package client is a typed HTTP client for the pairs/positions API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"

	"github.com/go-resty/resty/v2"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 200 * time.Millisecond
	defaultRetryMaxBackoff = 2 * time.Second
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	http *resty.Client
}

// isRetryableResp retries transport failures and 5xx answers on reads only;
// writes are never replayed.
func isRetryableResp(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return r.StatusCode() >= 500
}

func New(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &Client{http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if e, ok := resp.Error().(*errorBody); ok && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) ListPairs(ctx context.Context) ([]model.Pair, error) {
	var out []model.Pair
	if err := c.do(ctx, http.MethodGet, "/api/pairs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePair(ctx context.Context, payload model.CreatePairPayload) (*model.Pair, error) {
	var out model.Pair
	if err := c.do(ctx, http.MethodPost, "/api/pairs", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPositions(ctx context.Context) ([]model.PositionWithSymbol, error) {
	var out []model.PositionWithSymbol
	if err := c.do(ctx, http.MethodGet, "/api/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OpenPosition(ctx context.Context, payload model.CreatePositionPayload) (*model.Position, error) {
	var out model.Position
	if err := c.do(ctx, http.MethodPost, "/api/positions", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClosePosition(ctx context.Context, id uint, payload model.ClosePositionPayload) error {
	var out struct {
		Success bool `json:"success"`
	}
	path := fmt.Sprintf("/api/positions/%d/close", id)
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("close position %d: server did not report success", id)
	}
	return nil
}
