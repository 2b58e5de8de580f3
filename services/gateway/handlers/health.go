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
	"github.com/AleutianAI/AleutianRAG/services/gateway/health"
)

// Health handles GET /health (liveness).
//
// # Description
//
// Always returns 200: a running-but-degraded process must stay alive, so the
// state is reported in the status field rather than the status code. Liveness
// orchestrators restart only on transport failure, not on "unhealthy".
func Health(checker *health.Checker, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := checker.Statuses(c.Request.Context())

		status := "healthy"
		if !checker.Healthy(statuses) {
			status = "unhealthy"
		}

		c.JSON(http.StatusOK, datatypes.HealthCheck{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Version:   version,
			Uptime:    checker.Uptime(),
		})
	}
}

// readinessResponse is the body of GET /health/ready.
type readinessResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    []health.ServiceStatus `json:"checks"`
}

// Ready handles GET /health/ready (readiness).
//
// Stricter than liveness: any down dependency, critical or not, reports
// "not ready". Still a 200 response; orchestrators read the status field.
func Ready(checker *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := checker.Statuses(c.Request.Context())

		status := "ready"
		if !checker.Ready(statuses) {
			status = "not ready"
		}

		c.JSON(http.StatusOK, readinessResponse{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Checks:    statuses,
		})
	}
}
