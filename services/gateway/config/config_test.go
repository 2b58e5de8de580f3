// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", s.APIHost)
	assert.Equal(t, 8000, s.APIPort)
	assert.True(t, s.APIKeyEnabled)
	assert.Equal(t, 10*1024*1024, s.MaxRequestSize)
	assert.Equal(t, 1024*1024, s.MaxDocumentSize)
	assert.Equal(t, 100, s.MaxDocumentsPerRequest)
	assert.Equal(t, "INFO", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 60, s.RateLimitRequests)
	assert.Equal(t, 60*time.Second, s.RateLimitWindow)
	assert.Equal(t, 300*time.Second, s.QueryTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAG_API_PORT", "9000")
	t.Setenv("RAG_API_KEY_ENABLED", "false")
	t.Setenv("RAG_LOG_LEVEL", "debug")
	t.Setenv("RAG_LOG_FORMAT", "TEXT")
	t.Setenv("RAG_RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RAG_RATE_LIMIT_WINDOW", "2")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, s.APIPort)
	assert.False(t, s.APIKeyEnabled)
	// Level is upper-cased, format lower-cased before validation.
	assert.Equal(t, "DEBUG", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, 5, s.RateLimitRequests)
	assert.Equal(t, 2*time.Second, s.RateLimitWindow)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("RAG_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("RAG_LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("RAG_API_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidPortRange(t *testing.T) {
	t.Setenv("RAG_API_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestAPIKeys_SplitAndTrim(t *testing.T) {
	t.Setenv("RAG_API_KEYS", " k1 , k2,  ,k3 ")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3"}, s.APIKeys())
}

func TestAPIKeys_EmptyDefault(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	assert.Empty(t, s.APIKeys())
}

func TestCORSOrigins_Default(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, s.CORSOrigins())
}

func TestCORSOrigins_Split(t *testing.T) {
	t.Setenv("RAG_CORS_ORIGINS", "http://a.example, http://b.example")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, s.CORSOrigins())
}

func TestOllamaURL_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("RAG_LLM_HOST", "http://localhost:11434/")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/api", s.OllamaURL())
}

func TestListenAddr(t *testing.T) {
	t.Setenv("RAG_API_HOST", "127.0.0.1")
	t.Setenv("RAG_API_PORT", "8123")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8123", s.ListenAddr())
}
