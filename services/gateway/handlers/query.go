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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

// Query handles POST /query.
//
// # Description
//
// Binds and normalizes the request (mode defaults to hybrid, top_k to 10,
// include_sources to true), applies the configured query timeout, and
// dispatches to the orchestration service. The mode string is echoed back
// unchanged in the response. A query still running when the timeout fires is
// abandoned at this layer and reported as 503; the engine call itself is
// cancelled through the context.
func Query(svc *rag.Service, settings *config.Settings, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderAndCount(c, metrics, err)
			return
		}
		req.Normalize()

		ctx := c.Request.Context()
		if settings.QueryTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, settings.QueryTimeout)
			defer cancel()
		}

		start := time.Now()
		answer, err := svc.Query(ctx, req.Question, datatypes.Mode(req.Mode), req.TopK, req.Stream)
		if err != nil {
			renderAndCount(c, metrics, err)
			return
		}

		metrics.QueriesProcessed.WithLabelValues(req.Mode).Inc()

		resp := datatypes.QueryResponse{
			Success:        true,
			Answer:         answer,
			Mode:           req.Mode,
			ProcessingTime: time.Since(start).Seconds(),
			Timestamp:      time.Now().UTC(),
		}
		if req.IncludeSources != nil && *req.IncludeSources {
			// Source attribution is embedded in the engine's answer text;
			// the structured list stays empty until the engine exposes one.
			resp.Sources = []map[string]any{}
		}
		c.JSON(http.StatusOK, resp)
	}
}
