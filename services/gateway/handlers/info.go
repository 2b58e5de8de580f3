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

	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

// Info handles GET /, the API metadata endpoint.
func Info(settings *config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, datatypes.APIInfo{
			Title:       settings.APITitle,
			Version:     settings.APIVersion,
			Description: settings.APIDescription,
			Features: []string{
				"document_insertion",
				"multi_mode_query",
				"knowledge_graph",
				"health_checks",
				"prometheus_metrics",
				"api_key_auth",
				"rate_limiting",
			},
			Limits: map[string]any{
				"max_documents_per_request": settings.MaxDocumentsPerRequest,
				"max_document_size_bytes":   settings.MaxDocumentSize,
				"max_request_size_bytes":    settings.MaxRequestSize,
				"max_question_length":       1000,
				"rate_limit_requests":       settings.RateLimitRequests,
				"rate_limit_window_seconds": int(settings.RateLimitWindow.Seconds()),
				"query_modes":               []string{"naive", "local", "global", "hybrid"},
			},
			Timestamp: time.Now().UTC(),
		})
	}
}
