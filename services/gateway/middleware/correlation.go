// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides the gateway's HTTP middleware pipeline:
// correlation-ID propagation, request metrics and logging, API-key
// authentication, and sliding-window rate limiting.
//
// The pipeline order matters: correlation first (everything downstream logs
// with the ID), then observation, then auth, then rate limiting keyed by the
// authenticated identity.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the inbound/outbound correlation header.
const HeaderRequestID = "X-Request-ID"

// correlationCtxKey is an unexported context key type so values set here
// cannot collide with other packages.
type correlationCtxKey struct{}

// Correlation returns middleware that assigns every request a correlation ID.
//
// # Description
//
// Takes the X-Request-ID header when the client supplies one, otherwise
// generates a UUID. The ID is stored on the request's context.Context — not
// in ambient/global state — so it travels explicitly through the call chain,
// and is echoed back on the response header.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), correlationCtxKey{}, id)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(HeaderRequestID, id)

		c.Next()
	}
}

// CorrelationID returns the correlation ID carried by ctx, or "" when the
// request never passed through Correlation (tests, internal calls).
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationCtxKey{}).(string); ok {
		return id
	}
	return ""
}
