// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rag owns the lifecycle of the graph-RAG engine and mediates every
// document insertion, query, and graph read against it.
//
// The engine itself is an opaque external system reached over HTTP; this
// package treats it purely through the Engine interface so the orchestration
// logic, and its tests, never depend on a live sidecar.
package rag

import (
	"context"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// Engine is the contract with the underlying graph-RAG engine.
//
// Implementations own their transport concerns (timeouts, retries are the
// caller's policy, not the engine's). All methods honor ctx cancellation.
type Engine interface {
	// Bootstrap performs the engine's one-time storage initialization for
	// the configured working directory. Called exactly once, before any
	// other method.
	Bootstrap(ctx context.Context) error

	// Insert adds one document's text to the knowledge graph.
	Insert(ctx context.Context, text string) error

	// Query runs a retrieval-augmented query with the given mode. With
	// stream set, the engine replies in chunks; implementations consume the
	// stream fully and return the concatenated text, so partial results
	// never escape to callers either way.
	Query(ctx context.Context, question string, mode datatypes.Mode, topK int, stream bool) (string, error)

	// Graph returns the current knowledge-graph nodes and edges.
	Graph(ctx context.Context) ([]datatypes.GraphNode, []datatypes.GraphEdge, error)

	// Flush persists any pending engine-side cache writes. Called during
	// shutdown, before the process exits.
	Flush(ctx context.Context) error
}
