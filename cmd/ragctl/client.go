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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// GatewayClient is ragctl's HTTP client for the gateway's public API.
type GatewayClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGatewayClient creates a client for the gateway at baseURL.
func NewGatewayClient(baseURL, apiKey string, timeout time.Duration) *GatewayClient {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &GatewayClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// apiError is returned for non-2xx gateway responses.
type apiError struct {
	StatusCode int
	Envelope   datatypes.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Envelope.Message != "" {
		return fmt.Sprintf("gateway error %d: %s: %s", e.StatusCode, e.Envelope.Error, e.Envelope.Message)
	}
	return fmt.Sprintf("gateway error %d", e.StatusCode)
}

// InsertDocuments posts one batch to POST /documents.
func (c *GatewayClient) InsertDocuments(ctx context.Context, documents []string) (*datatypes.DocumentResponse, error) {
	var resp datatypes.DocumentResponse
	err := c.call(ctx, http.MethodPost, "/documents",
		datatypes.DocumentRequest{Documents: documents}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Query posts one question to POST /query.
func (c *GatewayClient) Query(ctx context.Context, question, mode string) (*datatypes.QueryResponse, error) {
	var resp datatypes.QueryResponse
	err := c.call(ctx, http.MethodPost, "/query",
		datatypes.QueryRequest{Question: question, Mode: mode}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Graph fetches GET /graph.
func (c *GatewayClient) Graph(ctx context.Context) (*datatypes.GraphResponse, error) {
	var resp datatypes.GraphResponse
	if err := c.call(ctx, http.MethodGet, "/graph", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches GET /health.
func (c *GatewayClient) Health(ctx context.Context) (*datatypes.HealthCheck, error) {
	var resp datatypes.HealthCheck
	if err := c.call(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// readiness mirrors the gateway's GET /health/ready body.
type readiness struct {
	Status string `json:"status"`
	Checks []struct {
		Name           string   `json:"name"`
		Status         string   `json:"status"`
		ResponseTimeMS *float64 `json:"response_time_ms"`
		Error          *string  `json:"error"`
	} `json:"checks"`
}

// Ready fetches GET /health/ready.
func (c *GatewayClient) Ready(ctx context.Context) (*readiness, error) {
	var resp readiness
	if err := c.call(ctx, http.MethodGet, "/health/ready", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GatewayClient) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.Envelope)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to parse gateway response: %w", err)
		}
	}
	return nil
}
