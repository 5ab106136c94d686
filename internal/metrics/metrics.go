// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package metrics defines the Prometheus collectors exposed at /metrics.
// All collectors are registered at init via promauto on the default
// registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served HTTP requests by method, route
	// pattern, and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mbektemi_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BackendRequestDuration observes round-trip time to the Laravel
	// backend by method and path class.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mbektemi_backend_request_duration_seconds",
			Help:    "Latency of calls to the Laravel backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BackendRequestErrors counts failed backend calls by kind
	// (network, status_4xx, status_5xx).
	BackendRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_backend_request_errors_total",
			Help: "Failed calls to the Laravel backend",
		},
		[]string{"kind"},
	)

	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mbektemi_circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// CircuitBreakerRequests counts requests through the breaker by outcome
	// (success, failure, rejected).
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_circuit_breaker_requests_total",
			Help: "Requests passed through the circuit breaker",
		},
		[]string{"name", "outcome"},
	)

	// ActiveSessions gauges live visitor sessions. Refreshed by the
	// session cleanup worker.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mbektemi_active_sessions",
			Help: "Number of live visitor sessions",
		},
	)

	// SessionsExpired counts sessions removed by the cleanup worker.
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbektemi_sessions_expired_total",
			Help: "Sessions removed after TTL expiry",
		},
	)

	// WebSocketClients gauges connected notification push clients.
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mbektemi_websocket_clients",
			Help: "Connected WebSocket clients",
		},
	)

	// CacheHits counts read-through cache hits by list name.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_cache_hits_total",
			Help: "Read-through cache hits",
		},
		[]string{"cache"},
	)

	// CacheMisses counts read-through cache misses by list name.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_cache_misses_total",
			Help: "Read-through cache misses",
		},
		[]string{"cache"},
	)

	// CacheRollbacks counts optimistic mutations undone after a backend
	// failure.
	CacheRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbektemi_cache_rollbacks_total",
			Help: "Optimistic cache mutations rolled back",
		},
		[]string{"cache"},
	)
)
