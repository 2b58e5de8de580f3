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
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
)

// HeaderAPIKey is the header clients present their key in.
const HeaderAPIKey = "X-API-Key"

// AnonymousIdentity is the identity assigned when auth is disabled. It is a
// sentinel, never a valid key.
const AnonymousIdentity = "anonymous"

// identityKey is the gin context key the authenticated identity is stored
// under.
const identityKey = "auth.identity"

// APIKeyAuth returns middleware enforcing X-API-Key authentication.
//
// # Description
//
// With enabled false, authentication is off: every request proceeds with the
// anonymous identity. With enabled true the presented key must match one of
// the configured keys (compared in constant time); a missing or unknown key
// aborts with 401 and records the failure reason on the auth metrics. The
// bypass is tied to the toggle, never to the key list: enabled with no keys
// configured rejects everything rather than failing open.
//
// # Thread Safety
//
// The keys slice is captured at construction and never mutated; the returned
// handler is safe for concurrent use.
func APIKeyAuth(enabled bool, keys []string, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Set(identityKey, AnonymousIdentity)
			c.Next()
			return
		}

		presented := c.GetHeader(HeaderAPIKey)
		if presented == "" {
			if metrics != nil {
				metrics.AuthFailures.WithLabelValues("missing_key").Inc()
			}
			AbortWithError(c, apierrors.New(apierrors.KindAuthentication, "API key required"))
			return
		}

		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				c.Set(identityKey, presented)
				c.Next()
				return
			}
		}

		if metrics != nil {
			metrics.AuthFailures.WithLabelValues("invalid_key").Inc()
		}
		AbortWithError(c, apierrors.New(apierrors.KindAuthentication, "Invalid API key"))
	}
}

// Identity returns the authenticated identity for the request: the API key
// that passed authentication, AnonymousIdentity when auth is disabled, or ""
// when APIKeyAuth never ran.
func Identity(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
