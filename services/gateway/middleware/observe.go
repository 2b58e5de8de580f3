// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/pkg/logging"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
)

// Observe returns middleware recording per-request metrics and structured
// request/response logs.
//
// # Description
//
// On entry it bumps the active-request gauge and logs the request line; on
// exit it records the latency histogram, the request counter labelled by
// method/endpoint/status/key-class, and logs the outcome. Endpoint labels use
// the route template (c.FullPath), not the raw URL, to keep metric
// cardinality bounded; unmatched routes are labelled "unmatched".
func Observe(logger *logging.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.ActiveRequests.Inc()

		logger.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"correlation_id", CorrelationID(c.Request.Context()),
			"client_ip", c.ClientIP(),
		)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.ActiveRequests.Dec()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(elapsed.Seconds())
		metrics.RequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
			observability.KeyClass(Identity(c) != "" && Identity(c) != AnonymousIdentity),
		).Inc()

		logFn := logger.Info
		if status >= 500 {
			logFn = logger.Error
		} else if status >= 400 {
			logFn = logger.Warn
		}
		logFn("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", float64(elapsed.Microseconds())/1000.0,
			"correlation_id", CorrelationID(c.Request.Context()),
		)
	}
}
