// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode_Mapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindAuthentication, http.StatusUnauthorized},
		{KindRateLimitExceeded, http.StatusTooManyRequests},
		{KindInvalidRequest, http.StatusBadRequest},
		{KindServiceUnavailable, http.StatusServiceUnavailable},
		{KindDocumentProcessing, http.StatusInternalServerError},
		{KindModelNotFound, http.StatusInternalServerError},
		{KindEmbedding, http.StatusInternalServerError},
		{KindQuery, http.StatusInternalServerError},
		{KindConfiguration, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind, "boom").StatusCode())
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("engine exploded")
	err := Wrap(KindQuery, "failed to process query", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "engine exploded", err.Details["cause"])
}

func TestAs_ThroughWrapping(t *testing.T) {
	inner := New(KindServiceUnavailable, "engine not ready")
	outer := fmt.Errorf("query path: %w", inner)

	e, ok := As(outer)
	require.True(t, ok)
	assert.Equal(t, KindServiceUnavailable, e.Kind)
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsKind(t *testing.T) {
	err := Newf(KindRateLimitExceeded, "rate limit exceeded: max %d per %ds", 60, 60)

	assert.True(t, IsKind(err, KindRateLimitExceeded))
	assert.False(t, IsKind(err, KindAuthentication))
	assert.False(t, IsKind(errors.New("other"), KindRateLimitExceeded))
}

func TestWithDetails_Merges(t *testing.T) {
	err := New(KindInvalidRequest, "too large").
		WithDetails(map[string]any{"max_bytes": 1024}).
		WithDetails(map[string]any{"index": 3})

	assert.Equal(t, 1024, err.Details["max_bytes"])
	assert.Equal(t, 3, err.Details["index"])
}
