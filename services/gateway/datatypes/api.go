// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the gateway's request and response models.
//
// Structural validation (presence, item counts, string lengths, enums) is
// expressed as gin binding tags; byte-size caps depend on runtime settings
// and are checked by ValidateSizes after binding. Both reject a request
// before it ever reaches the orchestration service.
package datatypes

import (
	"time"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
)

// Mode selects the engine's retrieval strategy.
type Mode string

// Query modes accepted by the gateway. Semantics belong to the underlying
// graph-RAG engine; the gateway passes the value through verbatim.
const (
	ModeNaive  Mode = "naive"
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
	ModeHybrid Mode = "hybrid"
)

// DocumentRequest is the body of POST /documents.
//
// The item-count cap is configurable, so it lives in ValidateSizes with the
// byte caps rather than in the binding tag.
type DocumentRequest struct {
	Documents []string `json:"documents" binding:"required,min=1,dive,required"`
}

// ValidateSizes enforces the item-count, per-document, and aggregate byte
// caps.
//
// Returns an InvalidRequestError naming the offending document index (or the
// aggregate) so clients can fix the exact payload item.
func (r *DocumentRequest) ValidateSizes(maxDocuments, maxDocumentSize, maxRequestSize int) error {
	if len(r.Documents) > maxDocuments {
		return apierrors.Newf(apierrors.KindInvalidRequest,
			"too many documents: max %d per request", maxDocuments).
			WithDetails(map[string]any{"count": len(r.Documents), "max_documents": maxDocuments})
	}

	total := 0
	for i, doc := range r.Documents {
		size := len(doc)
		if size > maxDocumentSize {
			return apierrors.Newf(apierrors.KindInvalidRequest,
				"document too large: max size is %d bytes", maxDocumentSize).
				WithDetails(map[string]any{"index": i, "size_bytes": size, "max_bytes": maxDocumentSize})
		}
		total += size
	}
	if total > maxRequestSize {
		return apierrors.Newf(apierrors.KindInvalidRequest,
			"total request too large: max size is %d bytes", maxRequestSize).
			WithDetails(map[string]any{"size_bytes": total, "max_bytes": maxRequestSize})
	}
	return nil
}

// DocumentResponse is the body of a successful POST /documents.
type DocumentResponse struct {
	Success            bool      `json:"success"`
	Message            string    `json:"message"`
	DocumentsProcessed int       `json:"documents_processed"`
	ProcessingTime     float64   `json:"processing_time"`
	Timestamp          time.Time `json:"timestamp"`
}

// QueryRequest is the body of POST /query.
//
// IncludeSources is a pointer so an absent field defaults to true rather
// than false; Normalize resolves the pointer and the other defaults.
type QueryRequest struct {
	Question       string `json:"question" binding:"required,min=1,max=1000"`
	Mode           string `json:"mode" binding:"omitempty,oneof=naive local global hybrid"`
	Stream         bool   `json:"stream"`
	TopK           int    `json:"top_k" binding:"omitempty,min=1,max=100"`
	IncludeSources *bool  `json:"include_sources"`
}

// Normalize applies the documented defaults for absent optional fields.
func (r *QueryRequest) Normalize() {
	if r.Mode == "" {
		r.Mode = string(ModeHybrid)
	}
	if r.TopK == 0 {
		r.TopK = 10
	}
	if r.IncludeSources == nil {
		v := true
		r.IncludeSources = &v
	}
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Success        bool             `json:"success"`
	Answer         string           `json:"answer"`
	Mode           string           `json:"mode"`
	Sources        []map[string]any `json:"sources,omitempty"`
	ProcessingTime float64          `json:"processing_time"`
	Timestamp      time.Time        `json:"timestamp"`
}

// GraphNode is one node of the knowledge graph.
type GraphNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphEdge is one relationship of the knowledge graph.
type GraphEdge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphStats summarizes graph size.
type GraphStats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// GraphResponse is the body of GET /graph.
type GraphResponse struct {
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	Stats     GraphStats  `json:"stats"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse is the fixed envelope for every non-2xx JSON body.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// APIInfo is the body of GET /.
type APIInfo struct {
	Title       string         `json:"title"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Features    []string       `json:"features"`
	Limits      map[string]any `json:"limits"`
	Timestamp   time.Time      `json:"timestamp"`
}

// HealthCheck is the body of GET /health.
type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}
