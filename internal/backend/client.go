// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package backend is the typed client for the Laravel API that owns all
// persistent MbekteMi state. Each visitor session gets its own Client
// bound to that session's cookie jar; the circuit breaker and transport
// are shared process-wide through the Factory.
//
// Responsibilities:
//   - JSON request/response plumbing with a per-request timeout
//   - Sanctum CSRF bootstrap before every state-changing call
//   - {"data": ...} envelope unwrapping
//   - APIError construction on non-2xx, preserving status and payload
//
// Retries are intentionally absent at this layer; the circuit breaker is
// the only resilience mechanism.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/metrics"
)

// maxErrorBodySize caps how much of an error response body is retained.
const maxErrorBodySize = 64 * 1024

// csrfBootstrapPath is Sanctum's CSRF cookie endpoint.
const csrfBootstrapPath = "/sanctum/csrf-cookie"

// Factory builds per-session Clients sharing one transport, one timeout
// budget, and one circuit breaker.
type Factory struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	breaker   *gobreaker.CircuitBreaker[*httpResult]
}

// Option customizes a Factory.
type Option func(*Factory)

// WithTransport overrides the HTTP transport. Used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Factory) { f.transport = rt }
}

// NewFactory creates a client factory for the backend at baseURL. The
// circuit breaker opens after a 60% failure rate over at least 10
// requests; only network failures and 5xx responses count as failures.
func NewFactory(baseURL string, timeout time.Duration, opts ...Option) *Factory {
	f := &Factory{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(f)
	}

	const cbName = "laravel-backend"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	f.breaker = gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		// Backend 4xx responses are the visitor's problem, not the
		// backend's health; they must not open the circuit.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return f
}

// ClientFor returns a Client bound to the given session jar.
func (f *Factory) ClientFor(jar *Jar) *Client {
	return &Client{
		factory: f,
		jar:     jar,
		http: &http.Client{
			Transport: f.transport,
			Jar:       jar,
			// The per-request context deadline is the timeout
			// authority; the client-level timeout is a backstop.
			Timeout: f.timeout + time.Second,
		},
	}
}

// BaseURL returns the configured backend origin.
func (f *Factory) BaseURL() string { return f.baseURL }

// Client performs authenticated calls against the Laravel backend on
// behalf of one visitor session.
type Client struct {
	factory *Factory
	jar     *Jar
	http    *http.Client
}

// Jar exposes the session cookie jar, primarily for CSRF token reads.
func (c *Client) Jar() *Jar { return c.jar }

// Request describes one backend call.
type Request struct {
	Method string      // default GET
	Path   string      // must start with a slash
	Body   interface{} // serialized as JSON when non-nil
	Header http.Header // optional extra headers
	CSRF   bool        // run the Sanctum bootstrap and attach the token
}

// httpResult is the breaker-protected unit of work: status and body of
// one backend response.
type httpResult struct {
	status int
	body   []byte
}

// Do executes req and decodes the response into out (ignored when out is
// nil). A {"data": ...} envelope is unwrapped transparently. Non-2xx
// responses yield an *APIError; context cancellation and network errors
// are returned as-is.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	if req.CSRF {
		if err := c.ensureCSRF(ctx); err != nil {
			return err
		}
	}
	result, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(result.body) == 0 {
		return nil
	}
	return decodeEnvelope(result.body, out)
}

// roundTrip performs the HTTP exchange under the shared circuit breaker.
func (c *Client) roundTrip(ctx context.Context, req Request) (*httpResult, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	result, err := c.factory.breaker.Execute(func() (*httpResult, error) {
		return c.doHTTP(ctx, method, req)
	})
	metrics.BackendRequestDuration.WithLabelValues(method, req.Path).Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(c.factory.breaker.Name(), "rejected").Inc()
			return nil, fmt.Errorf("backend unavailable: %w", err)
		default:
			observeError(err)
			// 4xx responses do not count against the breaker; keep
			// the outcome label consistent with that accounting.
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
				metrics.CircuitBreakerRequests.WithLabelValues(c.factory.breaker.Name(), "success").Inc()
			} else {
				metrics.CircuitBreakerRequests.WithLabelValues(c.factory.breaker.Name(), "failure").Inc()
			}
			return nil, err
		}
	}

	metrics.CircuitBreakerRequests.WithLabelValues(c.factory.breaker.Name(), "success").Inc()
	return result, nil
}

// doHTTP is the raw exchange: build, send, read, classify.
func (c *Client) doHTTP(ctx context.Context, method string, req Request) (*httpResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.factory.timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.factory.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Set(name, v)
		}
	}
	if req.CSRF {
		c.attachCSRFHeaders(httpReq)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Only error bodies are capped; a hostile or broken backend
		// should not make us buffer an unbounded error page.
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("failed to read backend response: %w", readErr)
		}
		return nil, newAPIError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	return &httpResult{status: resp.StatusCode, body: body}, nil
}

// attachCSRFHeaders adds the Sanctum token headers from the session jar.
func (c *Client) attachCSRFHeaders(httpReq *http.Request) {
	if token := CSRFToken(c.jar); token != "" {
		httpReq.Header.Set("X-XSRF-TOKEN", token)
	}
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")
}

// ensureCSRF runs Sanctum's CSRF bootstrap: GET /sanctum/csrf-cookie so
// the jar holds a fresh XSRF-TOKEN before the mutating call.
func (c *Client) ensureCSRF(ctx context.Context) error {
	_, err := c.roundTrip(ctx, Request{Method: http.MethodGet, Path: csrfBootstrapPath})
	if err != nil {
		return fmt.Errorf("csrf bootstrap failed: %w", err)
	}
	return nil
}

// decodeEnvelope unwraps {"data": ...} when present, otherwise decodes
// the raw payload.
func decodeEnvelope(body []byte, out interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode backend data: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// observeError records the failure kind for metrics.
func observeError(err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 500:
		metrics.BackendRequestErrors.WithLabelValues("status_5xx").Inc()
	case errors.As(err, &apiErr):
		metrics.BackendRequestErrors.WithLabelValues("status_4xx").Inc()
	default:
		metrics.BackendRequestErrors.WithLabelValues("network").Inc()
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
