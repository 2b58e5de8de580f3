// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the gateway's route handlers.
//
// Each handler is a constructor closing over its dependencies and returning a
// gin.HandlerFunc. Handlers validate, delegate to the orchestration service,
// and render; they hold no state of their own.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianRAG/services/gateway/middleware"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

// InsertDocuments handles POST /documents.
//
// # Description
//
// Binds and validates the batch (item count via binding tags, byte caps via
// ValidateSizes), then delegates to the orchestration service. Validation
// failures never reach the service. A partial insert failure surfaces the
// failing index through the error envelope's details.
func InsertDocuments(svc *rag.Service, settings *config.Settings, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.DocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderAndCount(c, metrics, err)
			return
		}
		if err := req.ValidateSizes(settings.MaxDocumentsPerRequest, settings.MaxDocumentSize, settings.MaxRequestSize); err != nil {
			renderAndCount(c, metrics, err)
			return
		}

		start := time.Now()
		if err := svc.InsertDocuments(c.Request.Context(), req.Documents); err != nil {
			renderAndCount(c, metrics, err)
			return
		}

		metrics.DocumentsProcessed.Add(float64(len(req.Documents)))
		c.JSON(http.StatusOK, datatypes.DocumentResponse{
			Success:            true,
			Message:            fmt.Sprintf("Successfully processed %d documents", len(req.Documents)),
			DocumentsProcessed: len(req.Documents),
			ProcessingTime:     time.Since(start).Seconds(),
			Timestamp:          time.Now().UTC(),
		})
	}
}

// renderAndCount renders the error envelope and bumps the error counter with
// the envelope's error name and the route.
func renderAndCount(c *gin.Context, metrics *observability.Metrics, err error) {
	status := middleware.RenderError(c, err)
	if metrics != nil {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ErrorsTotal.WithLabelValues(errorLabel(status), endpoint).Inc()
	}
}

// errorLabel maps the rendered status to a bounded error class for the
// metrics label.
func errorLabel(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication"
	case http.StatusTooManyRequests:
		return "rate_limit"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "validation"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal"
	}
}
