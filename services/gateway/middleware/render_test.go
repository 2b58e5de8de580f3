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
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/apierrors"
	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

func newJSONBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func renderVia(t *testing.T, err error) (int, datatypes.ErrorResponse) {
	t.Helper()

	router := gin.New()
	router.Use(Correlation())
	router.GET("/", func(c *gin.Context) {
		RenderError(c, err)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp datatypes.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRenderError_TaxonomyError(t *testing.T) {
	err := apierrors.New(apierrors.KindQuery, "query failed").
		WithDetails(map[string]any{"mode": "hybrid"})

	status, resp := renderVia(t, err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "QueryError", resp.Error)
	assert.Equal(t, "query failed", resp.Message)
	assert.Equal(t, "hybrid", resp.Details["mode"])
	assert.False(t, resp.Timestamp.IsZero())
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestRenderError_WrappedTaxonomyError(t *testing.T) {
	inner := apierrors.New(apierrors.KindServiceUnavailable, "engine down")
	wrapped := errors.Join(errors.New("request aborted"), inner)

	status, resp := renderVia(t, wrapped)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "ServiceUnavailableError", resp.Error)
}

func TestRenderError_ValidationErrors(t *testing.T) {
	// Drive a real binding failure through gin so we exercise the
	// validator.ValidationErrors branch the way handlers hit it.
	router := gin.New()
	router.Use(Correlation())
	router.POST("/", func(c *gin.Context) {
		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RenderError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", newJSONBody(t, map[string]any{"question": ""}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp datatypes.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "InvalidRequestError", resp.Error)
	assert.Contains(t, resp.Details, "Question")
}

func TestRenderError_UnknownErrorIsOpaque(t *testing.T) {
	status, resp := renderVia(t, errors.New("pg: connection refused on 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "InternalError", resp.Error)
	assert.NotContains(t, resp.Message, "10.0.0.3", "internal detail must not leak")
}
