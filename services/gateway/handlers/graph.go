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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

// Graph handles GET /graph, returning the engine's knowledge graph with
// node/edge counts.
func Graph(svc *rag.Service, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		nodes, edges, stats, err := svc.GraphData(c.Request.Context())
		if err != nil {
			renderAndCount(c, metrics, err)
			return
		}

		if nodes == nil {
			nodes = []datatypes.GraphNode{}
		}
		if edges == nil {
			edges = []datatypes.GraphEdge{}
		}

		c.JSON(http.StatusOK, datatypes.GraphResponse{
			Nodes:     nodes,
			Edges:     edges,
			Stats:     stats,
			Timestamp: time.Now().UTC(),
		})
	}
}
