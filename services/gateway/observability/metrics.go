// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the gateway.
//
// # Description
//
// This package defines counters, histograms, and gauges for monitoring the
// request pipeline and the RAG orchestration service:
//   - Request counters and duration histograms (by method, endpoint, status)
//   - Document and query throughput counters
//   - Auth failure and rate-limit violation counters
//   - Active request and service-initialization gauges
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint in Prometheus exposition
// format. Use with Prometheus + Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all gateway metrics.
const metricsNamespace = "aleutian"

// Subsystem for the API gateway.
const gatewaySubsystem = "gateway"

// Metrics holds all Prometheus metrics for the gateway.
//
// # Description
//
// Construct once at startup via New and share by pointer. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate-registration panics across cases.
//
// # Thread Safety
//
// All operations are thread-safe.
type Metrics struct {
	// RequestsTotal counts completed HTTP requests.
	// Labels: method, endpoint, status, api_key (authenticated|anonymous)
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures wall-clock request duration in seconds.
	// Labels: method, endpoint
	RequestDuration *prometheus.HistogramVec

	// ActiveRequests tracks requests currently in flight.
	ActiveRequests prometheus.Gauge

	// DocumentsProcessed counts documents accepted for insertion.
	DocumentsProcessed prometheus.Counter

	// QueriesProcessed counts queries by retrieval mode.
	// Labels: mode (naive|local|global|hybrid)
	QueriesProcessed *prometheus.CounterVec

	// RAGInitialized is 1 when the orchestration service is ready, else 0.
	RAGInitialized prometheus.Gauge

	// ErrorsTotal counts error responses by taxonomy kind and endpoint.
	// Labels: error_type, endpoint
	ErrorsTotal *prometheus.CounterVec

	// AuthFailures counts authentication failures.
	// Labels: reason (missing_key|invalid_key)
	AuthFailures *prometheus.CounterVec

	// RateLimitHits counts rate-limit violations.
	// Labels: api_key (authenticated|anonymous)
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all gateway metrics on the given registerer.
//
// # Inputs
//
//   - reg: Target registry. Pass prometheus.DefaultRegisterer in main.
//
// # Limitations
//
//   - Registering the same metrics twice on one registry panics; construct
//     once per process (or per test registry).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, endpoint, status and key class",
			},
			[]string{"method", "endpoint", "status", "api_key"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30, 120, 300},
			},
			[]string{"method", "endpoint"},
		),

		ActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "http_requests_active",
				Help:      "Number of HTTP requests currently in flight",
			},
		),

		DocumentsProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "documents_processed_total",
				Help:      "Total documents accepted for insertion",
			},
		),

		QueriesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "queries_processed_total",
				Help:      "Total queries processed by retrieval mode",
			},
			[]string{"mode"},
		),

		RAGInitialized: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "rag_service_initialized",
				Help:      "RAG orchestration service initialization status (1 ready, 0 not)",
			},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "http_errors_total",
				Help:      "Total error responses by taxonomy kind and endpoint",
			},
			[]string{"error_type", "endpoint"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "auth_failures_total",
				Help:      "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "rate_limit_hits_total",
				Help:      "Total rate limit violations by key class",
			},
			[]string{"api_key"},
		),
	}
}

// KeyClass returns the api_key metric label for an identity.
//
// Real credentials are never used as label values; only the authenticated
// versus anonymous distinction is recorded to bound cardinality.
func KeyClass(authenticated bool) string {
	if authenticated {
		return "authenticated"
	}
	return "anonymous"
}
