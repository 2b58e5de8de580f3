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
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
)

// RateLimit returns middleware enforcing limiter per client.
//
// # Description
//
// Requests are keyed by the authenticated identity when APIKeyAuth admitted
// a real key earlier in the chain. Anonymous traffic — the auth-disabled
// sentinel, or a pipeline where APIKeyAuth never ran — is keyed by the
// client IP instead, so each origin gets its own budget rather than all
// anonymous clients draining one shared bucket. A rejected request aborts
// with 429; the envelope message names the configured limit and window so
// clients can back off sensibly.
func RateLimit(limiter *Limiter, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		key := identity
		if key == "" || key == AnonymousIdentity {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			if metrics != nil {
				authenticated := identity != "" && identity != AnonymousIdentity
				metrics.RateLimitHits.WithLabelValues(observability.KeyClass(authenticated)).Inc()
			}
			AbortWithError(c, apierrors.New(apierrors.KindRateLimitExceeded,
				fmt.Sprintf("Rate limit exceeded: %d requests per %s", limiter.Limit(), limiter.Window())))
			return
		}

		c.Next()
	}
}
