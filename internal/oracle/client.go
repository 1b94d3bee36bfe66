package oracle

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
)

// APIError is a non-2xx answer of the ledger API.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    uint32 `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ledger: %d: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("ledger: %d: %s", e.Status, e.Message)
}

// Client calls the ledger HTTP API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Distribute(ctx context.Context, campaignID uint32, p DistributionPayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/campaigns/%d/distributions", campaignID), p)
}

func (c *Client) Claim(ctx context.Context, campaignID uint32) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/campaigns/%d/claims", campaignID), nil)
}

func (c *Client) ClaimAll(ctx context.Context, user string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/api/v1/users/"+url.PathEscape(user)+"/claims", nil)
}

func (c *Client) Rewards(ctx context.Context, user string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(user)+"/rewards", nil)
}

func (c *Client) Campaign(ctx context.Context, campaignID uint32) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d", campaignID), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return raw, apiErr
	}
	return raw, nil
}
