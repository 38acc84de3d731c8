package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/cache"
)

// Sentinel errors used to classify provider failures.
var (
	ErrRateLimited = errors.New("rate limited")
	ErrMalformed   = errors.New("malformed response")
)

// Client is the HTTP client shared by all source adapters. Responses are
// read up to maxBytes to keep misbehaving providers from exhausting memory.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	responses  cache.Cache
	cacheTTL   time.Duration
}

// NewClient creates a new adapter HTTP client
func NewClient(timeout time.Duration, userAgent string, maxBytes int64) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// WithResponseCache enables short-lived caching of successful GET responses,
// so repeated queries within a burst do not hammer the providers.
func (c *Client) WithResponseCache(responses cache.Cache, ttl time.Duration) *Client {
	c.responses = responses
	c.cacheTTL = ttl
	return c
}

// GetJSON performs a GET request and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, v any) error {
	if params != nil {
		rawURL = rawURL + "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// PostJSON performs a POST request with a JSON body and decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload any, v any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, rawURL, reqBody, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// GetHTML performs a GET request and returns the raw (bounded) body, for
// adapters that scrape HTML pages.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, contentType string) ([]byte, error) {
	cacheable := method == http.MethodGet && c.responses != nil
	if cacheable {
		if data, found := c.responses.Get(cache.HTTPKey(rawURL)); found {
			return data, nil
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (HTTP %d)", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if cacheable {
		_ = c.responses.Set(cache.HTTPKey(rawURL), respBody, c.cacheTTL)
	}
	return respBody, nil
}
