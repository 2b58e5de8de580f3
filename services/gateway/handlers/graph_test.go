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
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

func TestGraph_ReturnsNodesEdgesStats(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/graph")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[datatypes.GraphResponse](t, w)
	assert.Len(t, resp.Nodes, 1)
	assert.Len(t, resp.Edges, 1)
	assert.Equal(t, 1, resp.Stats.NodeCount)
	assert.Equal(t, 1, resp.Stats.EdgeCount)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestGraph_ClosedService(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Close(context.Background()))

	w := f.get(t, "/graph")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
