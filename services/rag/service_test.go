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
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// fakeEngine records calls and lets tests script failures.
type fakeEngine struct {
	mu            sync.Mutex
	bootstrapErr  error
	insertErr     error
	insertErrAt   int // fail on the n-th insert (0-based); -1 disables
	inserted      []string
	queries       []string
	answer        string
	queryErr      error
	flushed       int
	activeInserts int
	maxActive     int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{insertErrAt: -1, answer: "an answer"}
}

func (f *fakeEngine) Bootstrap(ctx context.Context) error { return f.bootstrapErr }

func (f *fakeEngine) Insert(ctx context.Context, text string) error {
	f.mu.Lock()
	f.activeInserts++
	if f.activeInserts > f.maxActive {
		f.maxActive = f.activeInserts
	}
	n := len(f.inserted)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.activeInserts--
		f.mu.Unlock()
	}()

	if f.insertErrAt >= 0 && n == f.insertErrAt {
		return f.insertErr
	}

	f.mu.Lock()
	f.inserted = append(f.inserted, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Query(ctx context.Context, question string, mode datatypes.Mode, topK int, stream bool) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, question)
	f.mu.Unlock()
	if f.queryErr != nil {
		return "", f.queryErr
	}
	return f.answer, nil
}

func (f *fakeEngine) Graph(ctx context.Context) ([]datatypes.GraphNode, []datatypes.GraphEdge, error) {
	nodes := []datatypes.GraphNode{{ID: "sky", Type: "entity"}, {ID: "blue", Type: "entity"}}
	edges := []datatypes.GraphEdge{{Source: "sky", Target: "blue", Type: "has_color"}}
	return nodes, edges, nil
}

func (f *fakeEngine) Flush(ctx context.Context) error {
	f.mu.Lock()
	f.flushed++
	f.mu.Unlock()
	return nil
}

func readyService(t *testing.T) (*Service, *fakeEngine) {
	t.Helper()
	engine := newFakeEngine()
	svc := NewService(engine, filepath.Join(t.TempDir(), "rag_data"), nil)
	require.NoError(t, svc.Initialize(context.Background()))
	require.Equal(t, StateReady, svc.State())
	return svc, engine
}

func TestInitialize_OnlyFromUninitialized(t *testing.T) {
	svc, _ := readyService(t)

	err := svc.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindConfiguration))
}

func TestInitialize_FailureIsFatal(t *testing.T) {
	engine := newFakeEngine()
	engine.bootstrapErr = errors.New("storage bootstrap blew up")
	svc := NewService(engine, filepath.Join(t.TempDir(), "rag_data"), nil)

	err := svc.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, svc.State())

	// a failed service never becomes usable
	insertErr := svc.InsertDocuments(context.Background(), []string{"doc"})
	assert.True(t, apierrors.IsKind(insertErr, apierrors.KindServiceUnavailable))
}

func TestOperationsBeforeInitialize(t *testing.T) {
	svc := NewService(newFakeEngine(), "", nil)

	err := svc.InsertDocuments(context.Background(), []string{"doc"})
	assert.True(t, apierrors.IsKind(err, apierrors.KindServiceUnavailable))

	_, err = svc.Query(context.Background(), "q", datatypes.ModeHybrid, 10, false)
	assert.True(t, apierrors.IsKind(err, apierrors.KindServiceUnavailable))
}

func TestInsertThenQuery(t *testing.T) {
	svc, engine := readyService(t)
	engine.answer = "The sky is blue."

	require.NoError(t, svc.InsertDocuments(context.Background(), []string{"The sky is blue."}))

	answer, err := svc.Query(context.Background(), "What color is the sky?", datatypes.ModeNaive, 10, false)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Equal(t, []string{"The sky is blue."}, engine.inserted)
}

func TestInsertDocuments_PartialFailureReportsIndex(t *testing.T) {
	svc, engine := readyService(t)
	engine.insertErrAt = 2
	engine.insertErr = errors.New("engine choked")

	err := svc.InsertDocuments(context.Background(), []string{"a", "b", "c", "d"})
	require.Error(t, err)

	apiErr, ok := apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindDocumentProcessing, apiErr.Kind)
	assert.Equal(t, 2, apiErr.Details["failed_index"])

	// earlier documents stay committed; no rollback
	assert.Equal(t, []string{"a", "b"}, engine.inserted)
}

func TestInsertDocuments_Serialized(t *testing.T) {
	svc, engine := readyService(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.InsertDocuments(context.Background(), []string{"doc", "doc"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, engine.maxActive, "inserts must never overlap in the engine")
	assert.Len(t, engine.inserted, 16)
}

func TestQuery_TimeoutMapsToServiceUnavailable(t *testing.T) {
	svc, engine := readyService(t)
	engine.queryErr = context.DeadlineExceeded

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Query(ctx, "slow question", datatypes.ModeHybrid, 10, false)
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindServiceUnavailable))
}

func TestGraphData(t *testing.T) {
	svc, _ := readyService(t)

	nodes, edges, stats, err := svc.GraphData(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)
	assert.Equal(t, datatypes.GraphStats{NodeCount: 2, EdgeCount: 1}, stats)
}

func TestClose_Idempotent(t *testing.T) {
	svc, engine := readyService(t)

	require.NoError(t, svc.Close(context.Background()))
	require.NoError(t, svc.Close(context.Background()), "second close must not error")
	assert.Equal(t, 1, engine.flushed, "flush runs exactly once")
	assert.Equal(t, StateClosed, svc.State())
}

func TestClose_BeforeInitializeIsNoOp(t *testing.T) {
	engine := newFakeEngine()
	svc := NewService(engine, "", nil)

	require.NoError(t, svc.Close(context.Background()))
	assert.Zero(t, engine.flushed)
}

func TestOperationsAfterClose(t *testing.T) {
	svc, _ := readyService(t)
	require.NoError(t, svc.Close(context.Background()))

	err := svc.InsertDocuments(context.Background(), []string{"doc"})
	assert.True(t, apierrors.IsKind(err, apierrors.KindServiceUnavailable))

	_, err = svc.Query(context.Background(), "q", datatypes.ModeHybrid, 10, false)
	assert.True(t, apierrors.IsKind(err, apierrors.KindServiceUnavailable))
}
