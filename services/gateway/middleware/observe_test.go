// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/pkg/logging"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
)

func TestObserve_RecordsMetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "INFO", Format: "json", Writer: &buf})
	require.NoError(t, err)

	router := gin.New()
	router.Use(Correlation(), Observe(logger, metrics))
	router.GET("/query/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/query/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// endpoint label is the route template, not the raw path
	counter := metrics.RequestsTotal.WithLabelValues("GET", "/query/:id", "200", "anonymous")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ActiveRequests))

	logs := buf.String()
	assert.Contains(t, logs, "request started")
	assert.Contains(t, logs, "request completed")
	assert.Contains(t, logs, "correlation_id")
}

func TestObserve_UnmatchedRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	router := gin.New()
	router.Use(Correlation(), Observe(logger404(t), metrics))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	counter := metrics.RequestsTotal.WithLabelValues("GET", "unmatched", "404", "anonymous")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestObserve_ErrorStatusLogsAtWarnOrError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "WARNING", Format: "json", Writer: &buf})
	require.NoError(t, err)

	router := gin.New()
	router.Use(Correlation(), Observe(logger, metrics))
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	// the start line is INFO and filtered out; the completion line is ERROR
	logs := buf.String()
	assert.NotContains(t, logs, "request started")
	assert.Contains(t, logs, "request completed")
	assert.Contains(t, logs, `"level":"ERROR"`)
}

func logger404(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "ERROR", Format: "json", Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	return logger
}
