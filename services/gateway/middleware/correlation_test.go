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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelation_GeneratesID(t *testing.T) {
	router := gin.New()
	router.Use(Correlation())

	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = CorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated correlation ID should be a UUID")
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
}

func TestCorrelation_HonorsClientID(t *testing.T) {
	router := gin.New()
	router.Use(Correlation())

	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = CorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-supplied-id")
	router.ServeHTTP(w, req)

	assert.Equal(t, "client-supplied-id", seen)
	assert.Equal(t, "client-supplied-id", w.Header().Get(HeaderRequestID))
}

func TestCorrelationID_EmptyWithoutMiddleware(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}
