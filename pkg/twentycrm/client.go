// Package twentycrm provides a thin REST client for the Twenty CRM API.
//
// The client injects bearer-token auth on every call, bounds each request
// with the configured HTTP timeout, and surfaces non-2xx responses as typed
// *APIError values. It never retries; retry policy belongs to the caller.
package twentycrm

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

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Response is a generic decoded JSON object from the CRM. The CRM's response
// envelope varies between deployments, so callers probe it with the
// extraction helpers instead of binding to a fixed struct.
type Response map[string]any

// Client defines the CRM REST operations used by the sync pipeline.
type Client interface {
	CreateRecord(ctx context.Context, endpoint string, body any, query url.Values) (Response, error)
	GetRecord(ctx context.Context, endpoint, id string) (Response, error)
	UpdateRecord(ctx context.Context, endpoint, id string, body any) (Response, error)
	DeleteRecord(ctx context.Context, endpoint, id string) error
}

// APIError is returned when the CRM responds with a non-2xx status. Body
// carries the raw response text so callers can classify the failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twentycrm: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the CRM base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles outbound CRM calls to rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Twenty CRM client. The token goes out as a bearer
// Authorization header on every request; pass the API token when one is
// configured, falling back to the legacy API key otherwise (see
// config.CRMConfig.BearerToken).
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upsert returns the query values that enable create-or-update semantics on
// person creation, tolerating previously deleted records.
func Upsert() url.Values {
	return url.Values{"upsert": []string{"true"}}
}

func (c *httpClient) CreateRecord(ctx context.Context, endpoint string, body any, query url.Values) (Response, error) {
	var resp Response
	if err := c.do(ctx, http.MethodPost, c.recordURL(endpoint, "", query), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *httpClient) GetRecord(ctx context.Context, endpoint, id string) (Response, error) {
	var resp Response
	if err := c.do(ctx, http.MethodGet, c.recordURL(endpoint, id, nil), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *httpClient) UpdateRecord(ctx context.Context, endpoint, id string, body any) (Response, error) {
	var resp Response
	if err := c.do(ctx, http.MethodPut, c.recordURL(endpoint, id, nil), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *httpClient) DeleteRecord(ctx context.Context, endpoint, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(endpoint, id, nil), nil, nil)
}

func (c *httpClient) recordURL(endpoint, id string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if id != "" {
		u += "/" + id
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *httpClient) do(ctx context.Context, method, u string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "twentycrm: rate limit")
		}
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "twentycrm: marshal request")
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return eris.Wrap(err, "twentycrm: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "twentycrm: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "twentycrm: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "twentycrm: decode response")
		}
	}

	return nil
}
