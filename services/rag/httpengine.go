// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianRAG/pkg/logging"
	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

var tracer = otel.Tracer("aleutian.rag.engine")

// HTTPEngine talks to the graph-RAG engine sidecar over its HTTP API.
//
// Endpoints used: POST /initialize, POST /documents/text, POST /query
// (plain JSON answer, or an NDJSON chunk stream when streaming), GET /graphs,
// POST /flush.
type HTTPEngine struct {
	httpClient *http.Client
	baseURL    string
	workingDir string
	llmModel   string
	logger     *logging.Logger
}

// HTTPEngineConfig configures an HTTPEngine.
type HTTPEngineConfig struct {
	// BaseURL is the engine sidecar's base URL, e.g. http://localhost:9621.
	BaseURL string
	// WorkingDir is the engine's storage directory, passed on bootstrap.
	WorkingDir string
	// LLMModel is the generation model identifier the engine should use.
	LLMModel string
	// Timeout bounds each engine call. Zero means 5 minutes.
	Timeout time.Duration
	// Logger defaults to logging.Default().
	Logger *logging.Logger
}

// NewHTTPEngine creates an engine client.
func NewHTTPEngine(cfg HTTPEngineConfig) (*HTTPEngine, error) {
	if cfg.BaseURL == "" {
		return nil, apierrors.New(apierrors.KindConfiguration, "engine base URL not configured")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPEngine{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		workingDir: cfg.WorkingDir,
		llmModel:   cfg.LLMModel,
		logger:     logger,
	}, nil
}

type engineInitRequest struct {
	WorkingDir string `json:"working_dir"`
	Model      string `json:"model,omitempty"`
}

type engineInsertRequest struct {
	Text string `json:"text"`
}

type engineQueryRequest struct {
	Query  string `json:"query"`
	Mode   string `json:"mode"`
	TopK   int    `json:"top_k,omitempty"`
	Stream bool   `json:"stream,omitempty"`
}

type engineQueryResponse struct {
	Response string `json:"response"`
}

type engineStreamChunk struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type engineGraphResponse struct {
	Nodes []datatypes.GraphNode `json:"nodes"`
	Edges []datatypes.GraphEdge `json:"edges"`
}

// Bootstrap implements Engine.
func (e *HTTPEngine) Bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "HTTPEngine.Bootstrap")
	defer span.End()
	span.SetAttributes(attribute.String("rag.working_dir", e.workingDir))

	e.logger.Info("bootstrapping rag engine", "base_url", e.baseURL, "working_dir", e.workingDir)

	_, err := e.post(ctx, span, "/initialize", engineInitRequest{
		WorkingDir: e.workingDir,
		Model:      e.llmModel,
	})
	return err
}

// Insert implements Engine.
func (e *HTTPEngine) Insert(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "HTTPEngine.Insert")
	defer span.End()
	span.SetAttributes(attribute.Int("rag.document_bytes", len(text)))

	_, err := e.post(ctx, span, "/documents/text", engineInsertRequest{Text: text})
	return err
}

// Query implements Engine.
//
// # Description
//
// Without streaming the engine replies with a single JSON object holding the
// answer. With streaming it replies with NDJSON chunks; every chunk's text is
// concatenated and returned as one string, matching the non-streaming shape.
func (e *HTTPEngine) Query(ctx context.Context, question string, mode datatypes.Mode, topK int, stream bool) (string, error) {
	ctx, span := tracer.Start(ctx, "HTTPEngine.Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("rag.mode", string(mode)),
		attribute.Bool("rag.stream", stream),
	)

	payload := engineQueryRequest{
		Query:  question,
		Mode:   string(mode),
		TopK:   topK,
		Stream: stream,
	}

	resp, err := e.do(ctx, span, http.MethodPost, "/query", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := e.checkStatus(span, resp); err != nil {
		return "", err
	}

	if stream {
		return e.consumeStream(span, resp.Body)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", e.fail(span, apierrors.Wrap(apierrors.KindQuery, "failed to read engine response", err))
	}
	var qr engineQueryResponse
	if err := json.Unmarshal(raw, &qr); err != nil {
		return "", e.fail(span, apierrors.Wrap(apierrors.KindQuery, "failed to parse engine response", err))
	}
	return qr.Response, nil
}

// consumeStream drains an NDJSON answer stream into one string.
func (e *HTTPEngine) consumeStream(span trace.Span, body io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk engineStreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", e.fail(span, apierrors.Wrap(apierrors.KindQuery, "malformed engine stream chunk", err))
		}
		if chunk.Error != "" {
			return "", e.fail(span, apierrors.Newf(apierrors.KindQuery, "engine stream error: %s", chunk.Error))
		}
		sb.WriteString(chunk.Response)
	}
	if err := scanner.Err(); err != nil {
		return "", e.fail(span, apierrors.Wrap(apierrors.KindQuery, "engine stream read failed", err))
	}
	return sb.String(), nil
}

// Graph implements Engine.
func (e *HTTPEngine) Graph(ctx context.Context) ([]datatypes.GraphNode, []datatypes.GraphEdge, error) {
	ctx, span := tracer.Start(ctx, "HTTPEngine.Graph")
	defer span.End()

	resp, err := e.do(ctx, span, http.MethodGet, "/graphs", nil)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if err := e.checkStatus(span, resp); err != nil {
		return nil, nil, err
	}

	var gr engineGraphResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, nil, e.fail(span, apierrors.Wrap(apierrors.KindQuery, "failed to parse engine graph response", err))
	}
	return gr.Nodes, gr.Edges, nil
}

// Flush implements Engine.
func (e *HTTPEngine) Flush(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "HTTPEngine.Flush")
	defer span.End()

	_, err := e.post(ctx, span, "/flush", struct{}{})
	return err
}

// post issues a JSON POST and returns the response body for 200 responses.
func (e *HTTPEngine) post(ctx context.Context, span trace.Span, path string, payload any) ([]byte, error) {
	resp, err := e.do(ctx, span, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := e.checkStatus(span, resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// do builds and issues one engine request. Transport failures come back as
// ServiceUnavailable so the HTTP layer maps them to 503.
func (e *HTTPEngine) do(ctx context.Context, span trace.Span, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, e.fail(span, fmt.Errorf("failed to marshal engine request: %w", err))
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
	if err != nil {
		return nil, e.fail(span, fmt.Errorf("failed to create engine request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.Error("engine call failed", "path", path, "error", err)
		return nil, e.fail(span, apierrors.Wrap(apierrors.KindServiceUnavailable, "RAG engine unreachable", err))
	}
	return resp, nil
}

// checkStatus converts non-200 engine responses into taxonomy errors. The
// response body is consumed on failure.
func (e *HTTPEngine) checkStatus(span trace.Span, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	detail := strings.TrimSpace(string(raw))
	e.logger.Error("engine returned an error", "status_code", resp.StatusCode, "response", detail)

	if resp.StatusCode == http.StatusNotFound && strings.Contains(detail, "model") {
		return e.fail(span, apierrors.Newf(apierrors.KindModelNotFound,
			"model %q not available in the LLM runtime", e.llmModel))
	}
	return e.fail(span, apierrors.Newf(apierrors.KindServiceUnavailable,
		"RAG engine failed with status %d", resp.StatusCode).
		WithDetails(map[string]any{"engine_response": detail}))
}

// fail records err on the span and passes it through.
func (e *HTTPEngine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
