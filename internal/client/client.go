// Package client calls the MediOps API through the shared route table.
// Inputs are checked before sending and responses are checked against the
// schema declared for their status.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/logger"
)

// DefaultMaxResponseBytes caps a response body unless WithMaxResponseBytes says otherwise
const DefaultMaxResponseBytes int64 = 64 << 20

// ErrResponseTooLarge is the cause of a TransportFailure whose body exceeded the cap
var ErrResponseTooLarge = errors.New("response too large")

// Call carries the inputs of one route invocation
type Call struct {
	Params api.Params
	Query  any
	Body   any
}

// Option configures a Client
type Option func(*Client)

// WithToken sends token as a Bearer credential
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient uses a copy of hc for every request. Redirects are still
// surfaced to the caller and hc itself is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

// WithMaxResponseBytes caps the size of a response body
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxResponse = n }
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// Client dispatches calls against a MediOps server
type Client struct {
	base        *url.URL
	http        *http.Client
	maxResponse int64

	mu    sync.RWMutex
	token string
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxResponse: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// Token returns the current session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Do invokes route and decodes the checked success body into out, which may
// be nil. Failures are returned as the typed errors of package api.
func (c *Client) Do(ctx context.Context, route *api.Route, call Call, out any) error {
	_, err := c.do(ctx, route, call, out)
	return err
}

func (c *Client) do(ctx context.Context, route *api.Route, call Call, out any) (*http.Response, error) {
	path, err := route.URL(call.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", route.Name(), err)
	}

	target := *c.base
	target.Path = c.base.Path + path

	if q := route.Query(); q != nil && call.Query != nil {
		normalized, err := check(q, call.Query)
		if err != nil {
			return nil, err
		}
		target.RawQuery = schema.QueryValues(normalized).Encode()
	}

	var body io.Reader
	if in := route.Input(); in != nil {
		normalized, err := check(in, call.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(normalized)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method(), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", route.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := logger.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &api.TransportFailure{Route: route.Name(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, &api.TransportFailure{Route: route.Name(), Cause: err}
	}
	if int64(len(raw)) > c.maxResponse {
		return nil, &api.TransportFailure{
			Route: route.Name(),
			Cause: fmt.Errorf("%w: status %d, over %d bytes", ErrResponseTooLarge, resp.StatusCode, c.maxResponse),
		}
	}

	logger.Debug(ctx).
		Str("route", route.Name()).
		Str("method", route.Method()).
		Str("url", target.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API call completed")

	return resp, interpret(route, resp, raw, out)
}

// check validates an outgoing value and returns its normalized JSON. A
// rejected value never reaches the network.
func check(v schema.Validator, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", value, err)
	}
	normalized, err := v.Validate(raw)
	if err != nil {
		var invalid *schema.ValidationError
		if errors.As(err, &invalid) {
			return nil, &api.ValidationFailure{Message: invalid.Message, Field: invalid.Field}
		}
		return nil, err
	}
	return normalized, nil
}

// interpret maps a response onto the result or a typed failure
func interpret(route *api.Route, resp *http.Response, raw []byte, out any) error {
	status := resp.StatusCode
	validator, declared := route.Response(status)

	if !declared {
		if status < http.StatusBadRequest {
			return &api.ContractViolation{
				Route:  route.Name(),
				Status: status,
				Cause:  fmt.Errorf("undeclared status %d", status),
			}
		}
		return &api.RequestFailure{
			Status:     status,
			StatusText: http.StatusText(status),
			Message:    errorMessage(raw),
		}
	}

	normalized, err := validator.Validate(raw)
	if err != nil {
		return &api.ContractViolation{Route: route.Name(), Status: status, Cause: err}
	}

	if status == route.Success() {
		if out == nil || len(normalized) == 0 {
			return nil
		}
		if err := json.Unmarshal(normalized, out); err != nil {
			return &api.ContractViolation{Route: route.Name(), Status: status, Cause: err}
		}
		return nil
	}

	var body api.ErrorBody
	if err := json.Unmarshal(normalized, &body); err != nil {
		return &api.ContractViolation{Route: route.Name(), Status: status, Cause: err}
	}

	switch status {
	case http.StatusBadRequest:
		failure := &api.ValidationFailure{Message: body.Message}
		if body.Field != nil {
			failure.Field = *body.Field
		}
		return failure
	case http.StatusNotFound:
		return &api.NotFoundFailure{Message: body.Message}
	case http.StatusUnauthorized:
		return &api.UnauthorizedFailure{Message: body.Message}
	case http.StatusInternalServerError:
		return &api.InternalFailure{RequestFailure: api.RequestFailure{
			Status:     status,
			StatusText: http.StatusText(status),
			Message:    body.Message,
		}}
	default:
		return &api.RequestFailure{
			Status:     status,
			StatusText: http.StatusText(status),
			Message:    body.Message,
		}
	}
}

// errorMessage pulls "message" out of an error body, falling back to the text
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
