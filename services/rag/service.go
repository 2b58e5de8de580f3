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
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianRAG/pkg/logging"
	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// State is the orchestration service lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Service owns the single process-wide engine handle and enforces the
// Uninitialized -> Initializing -> Ready -> Closed lifecycle around it.
//
// # Thread Safety
//
// All methods are safe for concurrent use. State transitions are guarded by
// an RWMutex; read-path operations (Query, Graph) take the read lock so they
// run fully concurrently with each other. Document insertion additionally
// serializes through a dedicated mutex because the engine's own write-path
// concurrency safety is not guaranteed.
type Service struct {
	engine     Engine
	workingDir string
	logger     *logging.Logger

	mu    sync.RWMutex
	state State

	// insertMu serializes mutating engine calls; queries do not take it.
	insertMu sync.Mutex
}

// NewService creates an uninitialized Service around engine.
func NewService(engine Engine, workingDir string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		engine:     engine,
		workingDir: workingDir,
		logger:     logger,
		state:      StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether the service accepts inserts and queries.
func (s *Service) Ready() bool { return s.State() == StateReady }

// Initialize transitions Uninitialized -> Ready.
//
// # Description
//
// Creates the working directory and runs the engine's one-time bootstrap.
// Valid only from Uninitialized; a failure leaves the service in the Failed
// state and is returned to the caller — the surrounding process should treat
// it as fatal rather than retry.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mu.Unlock()
		return apierrors.Newf(apierrors.KindConfiguration,
			"cannot initialize RAG service from state %q", state)
	}
	s.state = StateInitializing
	s.mu.Unlock()

	s.logger.Info("initializing rag service", "working_dir", s.workingDir)
	start := time.Now()

	err := s.bootstrap(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.logger.Error("rag service initialization failed", "error", err)
		return err
	}
	s.state = StateReady
	s.logger.Info("rag service ready", "elapsed", time.Since(start).String())
	return nil
}

func (s *Service) bootstrap(ctx context.Context) error {
	if s.workingDir != "" {
		if err := os.MkdirAll(s.workingDir, 0o755); err != nil {
			return apierrors.Wrap(apierrors.KindConfiguration,
				"failed to create RAG working directory", err)
		}
	}
	if err := s.engine.Bootstrap(ctx); err != nil {
		return fmt.Errorf("engine bootstrap failed: %w", err)
	}
	return nil
}

// requireReady returns the guard error for non-Ready states.
func (s *Service) requireReady() error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == StateReady {
		return nil
	}
	return apierrors.Newf(apierrors.KindServiceUnavailable,
		"RAG service not available (state: %s)", state)
}

// InsertDocuments inserts texts sequentially into the engine.
//
// # Description
//
// Valid only in Ready. Inserts are serialized process-wide: overlapping
// callers queue on the insert mutex rather than hitting the engine's write
// path concurrently. The batch is not transactional — a failure at index i
// leaves documents [0,i) committed; the returned error carries the failing
// index in its details so callers can resume.
func (s *Service) InsertDocuments(ctx context.Context, texts []string) error {
	if err := s.requireReady(); err != nil {
		return err
	}

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return apierrors.Wrap(apierrors.KindDocumentProcessing,
				"document insertion cancelled", err).
				WithDetails(map[string]any{"failed_index": i, "documents_inserted": i})
		}
		if err := s.engine.Insert(ctx, text); err != nil {
			s.logger.Error("document insert failed", "index", i, "error", err)
			if apiErr, ok := apierrors.As(err); ok {
				return apiErr.WithDetails(map[string]any{"failed_index": i, "documents_inserted": i})
			}
			return apierrors.Wrap(apierrors.KindDocumentProcessing,
				"failed to insert document", err).
				WithDetails(map[string]any{"failed_index": i, "documents_inserted": i})
		}
	}

	s.logger.Info("documents inserted", "count", len(texts))
	return nil
}

// Query dispatches a retrieval-augmented query to the engine.
//
// Valid only in Ready. Streaming is internal: the engine client consumes any
// chunked reply and returns one concatenated string.
func (s *Service) Query(ctx context.Context, question string, mode datatypes.Mode, topK int, stream bool) (string, error) {
	if err := s.requireReady(); err != nil {
		return "", err
	}

	answer, err := s.engine.Query(ctx, question, mode, topK, stream)
	if err != nil {
		if ctx.Err() != nil {
			return "", apierrors.Wrap(apierrors.KindServiceUnavailable,
				"query timed out waiting for the RAG engine", ctx.Err())
		}
		if _, ok := apierrors.As(err); ok {
			return "", err
		}
		return "", apierrors.Wrap(apierrors.KindQuery, "query failed", err)
	}
	return answer, nil
}

// GraphData returns the knowledge graph with computed stats.
func (s *Service) GraphData(ctx context.Context) ([]datatypes.GraphNode, []datatypes.GraphEdge, datatypes.GraphStats, error) {
	if err := s.requireReady(); err != nil {
		return nil, nil, datatypes.GraphStats{}, err
	}

	nodes, edges, err := s.engine.Graph(ctx)
	if err != nil {
		if _, ok := apierrors.As(err); ok {
			return nil, nil, datatypes.GraphStats{}, err
		}
		return nil, nil, datatypes.GraphStats{},
			apierrors.Wrap(apierrors.KindQuery, "failed to read knowledge graph", err)
	}

	stats := datatypes.GraphStats{NodeCount: len(nodes), EdgeCount: len(edges)}
	return nodes, edges, stats, nil
}

// Close transitions the service to Closed, flushing engine-side caches.
//
// # Description
//
// Valid from Ready; calling it before Initialize, or a second time, is a
// no-op rather than an error so shutdown paths stay idempotent. Once closed,
// insert and query calls fail with ServiceUnavailable.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		// Uninitialized, Failed, or already Closed: nothing to flush.
		if s.state != StateClosed {
			s.state = StateClosed
		}
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.logger.Info("closing rag service")
	if err := s.engine.Flush(ctx); err != nil {
		s.logger.Error("engine flush failed during close", "error", err)
		return fmt.Errorf("engine flush failed: %w", err)
	}
	return nil
}
