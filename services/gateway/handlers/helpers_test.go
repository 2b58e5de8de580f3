// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianRAG/services/gateway/middleware"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingEngine tracks whether the orchestration layer was reached at all.
type countingEngine struct {
	inserts atomic.Int64
	queries atomic.Int64
	answer  string
}

func (e *countingEngine) Bootstrap(ctx context.Context) error { return nil }

func (e *countingEngine) Insert(ctx context.Context, text string) error {
	e.inserts.Add(1)
	return nil
}

func (e *countingEngine) Query(ctx context.Context, question string, mode datatypes.Mode, topK int, stream bool) (string, error) {
	e.queries.Add(1)
	if e.answer != "" {
		return e.answer, nil
	}
	return "an answer", nil
}

func (e *countingEngine) Graph(ctx context.Context) ([]datatypes.GraphNode, []datatypes.GraphEdge, error) {
	nodes := []datatypes.GraphNode{{ID: "sky", Type: "entity"}}
	edges := []datatypes.GraphEdge{{Source: "sky", Target: "blue", Type: "has_color"}}
	return nodes, edges, nil
}

func (e *countingEngine) Flush(ctx context.Context) error { return nil }

type testFixture struct {
	router   *gin.Engine
	engine   *countingEngine
	service  *rag.Service
	settings *config.Settings
	metrics  *observability.Metrics
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	settings, err := config.Load()
	require.NoError(t, err)

	engine := &countingEngine{}
	svc := rag.NewService(engine, t.TempDir(), nil)
	require.NoError(t, svc.Initialize(context.Background()))

	metrics := observability.New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(middleware.Correlation())
	router.POST("/documents", InsertDocuments(svc, settings, metrics))
	router.POST("/query", Query(svc, settings, metrics))
	router.GET("/graph", Graph(svc, metrics))
	router.GET("/", Info(settings))

	return &testFixture{
		router:   router,
		engine:   engine,
		service:  svc,
		settings: settings,
		metrics:  metrics,
	}
}

func (f *testFixture) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func (f *testFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
