// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

func TestGatewayClient_SendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		json.NewEncoder(w).Encode(datatypes.HealthCheck{Status: "healthy"})
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "k1", time.Second)
	hc, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, "healthy", hc.Status)
}

func TestGatewayClient_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)

		var req datatypes.QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "naive", req.Mode)

		json.NewEncoder(w).Encode(datatypes.QueryResponse{
			Success: true, Answer: "The sky is blue.", Mode: req.Mode,
		})
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "", time.Second)
	resp, err := client.Query(context.Background(), "What color is the sky?", "naive")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", resp.Answer)
}

func TestGatewayClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(datatypes.ErrorResponse{
			Error:   "RateLimitExceededError",
			Message: "Rate limit exceeded: 60 requests per 1m0s",
		})
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "", time.Second)
	_, err := client.InsertDocuments(context.Background(), []string{"doc"})
	require.Error(t, err)

	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "RateLimitExceededError")
}

func TestGatewayClient_Unreachable(t *testing.T) {
	client := NewGatewayClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	_, err := client.Health(context.Background())
	assert.Error(t, err)
}
