// Package httpapi provides a small JSON HTTP client shared by the orderbook
// and subgraph clients. Failures carry the HTTP method and path so transient
// transport problems can be told apart from protocol-level errors.
package httpapi

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

	"golang.org/x/time/rate"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// defaultRequestRate bounds outbound requests to public service endpoints.
const defaultRequestRate = 10 // requests per second

// Client is a JSON GET/POST client bound to one base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRequestRate replaces the default 10 req/s limit.
func WithRequestRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(defaultRequestRate, 2*defaultRequestRate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and decodes the JSON response into out.
// Fails with an ApiCallError carrying the method and path on transport
// errors and non-2xx statuses.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sdkerrors.NewAPICall(http.MethodGet, path, err)
	}

	return c.do(req, path, out)
}

// Post performs a POST request with a JSON body and decodes the JSON
// response into out. Same failure contract as Get.
func (c *Client) Post(ctx context.Context, path string, body any, params url.Values, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return sdkerrors.NewAPICall(http.MethodPost, path, err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return sdkerrors.NewAPICall(http.MethodPost, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return sdkerrors.NewAPICall(req.Method, path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sdkerrors.NewAPICall(req.Method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sdkerrors.NewAPICall(req.Method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return sdkerrors.NewAPICall(req.Method, path,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return sdkerrors.NewAPICall(req.Method, path, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
