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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRAG/services/gateway/datatypes"
)

func TestInsertDocuments_Success(t *testing.T) {
	f := newFixture(t)

	w := f.postJSON(t, "/documents", map[string]any{
		"documents": []string{"The sky is blue.", "Grass is green."},
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[datatypes.DocumentResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.DocumentsProcessed)
	assert.EqualValues(t, 2, f.engine.inserts.Load())
}

func TestInsertDocuments_MalformedPayloadsNeverReachEngine(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing documents", map[string]any{}},
		{"empty list", map[string]any{"documents": []string{}}},
		{"too many items", map[string]any{"documents": manyDocs(101)}},
		{"empty document", map[string]any{"documents": []string{"ok", ""}}},
		{"document over byte cap", map[string]any{"documents": []string{strings.Repeat("x", 2*1024*1024)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.postJSON(t, "/documents", tc.body)

			assert.GreaterOrEqual(t, w.Code, 400)
			assert.Less(t, w.Code, 500)
			assert.Zero(t, f.engine.inserts.Load(), "engine insert must never run")
		})
	}
}

func TestInsertDocuments_ConfiguredDocumentCapGovernsEnforcement(t *testing.T) {
	f := newFixture(t)
	f.settings.MaxDocumentsPerRequest = 2

	w := f.postJSON(t, "/documents", map[string]any{"documents": manyDocs(3)})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON[datatypes.ErrorResponse](t, w)
	assert.Equal(t, "InvalidRequestError", resp.Error)
	assert.Zero(t, f.engine.inserts.Load())

	// Raising the setting raises the enforced cap with it.
	f.settings.MaxDocumentsPerRequest = 3
	w = f.postJSON(t, "/documents", map[string]any{"documents": manyDocs(3)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInsertDocuments_AggregateByteCap(t *testing.T) {
	f := newFixture(t)

	// 11 documents just under the per-document cap, over the 10MB aggregate
	doc := strings.Repeat("x", 1024*1024-1)
	w := f.postJSON(t, "/documents", map[string]any{"documents": manyDocsOf(11, doc)})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON[datatypes.ErrorResponse](t, w)
	assert.Equal(t, "InvalidRequestError", resp.Error)
	assert.Zero(t, f.engine.inserts.Load())
}

func TestInsertDocuments_ClosedService(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Close(context.Background()))

	w := f.postJSON(t, "/documents", map[string]any{"documents": []string{"doc"}})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeJSON[datatypes.ErrorResponse](t, w)
	assert.Equal(t, "ServiceUnavailableError", resp.Error)
}

func manyDocs(n int) []string {
	return manyDocsOf(n, "doc")
}

func manyDocsOf(n int, doc string) []string {
	docs := make([]string, n)
	for i := range docs {
		docs[i] = doc
	}
	return docs
}
