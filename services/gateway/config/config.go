// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the gateway settings from the environment.
//
// Every setting is read from a RAG_-prefixed environment variable and has a
// documented default. Settings is constructed once in main and passed down
// explicitly; it is never mutated after Load returns. Invalid values for
// log_level or log_format are rejected at load time so the process cannot
// come up misconfigured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RAG_"

// Settings holds the immutable process-wide gateway configuration.
//
// # Thread Safety
//
// Settings is read-only after Load. Sharing a *Settings across goroutines
// requires no synchronization.
type Settings struct {
	// API configuration
	APIHost        string // RAG_API_HOST, default "0.0.0.0"
	APIPort        int    // RAG_API_PORT, default 8000
	APIWorkers     int    // RAG_API_WORKERS, default 4
	APITitle       string // RAG_API_TITLE
	APIVersion     string // RAG_API_VERSION
	APIDescription string // RAG_API_DESCRIPTION

	// Security
	APIKeyEnabled  bool   // RAG_API_KEY_ENABLED, default true
	apiKeys        string // RAG_API_KEYS, comma separated
	corsOrigins    string // RAG_CORS_ORIGINS, comma separated
	MaxRequestSize int    // RAG_MAX_REQUEST_SIZE, bytes, default 10MB

	// RAG engine
	WorkingDir     string // RAG_WORKING_DIR, default "./rag_data"
	EngineHost     string // RAG_ENGINE_HOST, graph-RAG engine base URL
	LLMHost        string // RAG_LLM_HOST, Ollama base URL
	LLMModel       string // RAG_LLM_MODEL
	EmbeddingModel string // RAG_EMBEDDING_MODEL
	EmbeddingDim   int    // RAG_EMBEDDING_DIM, default 768

	// Document processing
	MaxDocumentsPerRequest int // RAG_MAX_DOCUMENTS_PER_REQUEST, default 100
	MaxDocumentSize        int // RAG_MAX_DOCUMENT_SIZE, bytes, default 1MB

	// External services
	WeaviateHost   string // RAG_WEAVIATE_HOST, e.g. "localhost:8080"
	RedisAddr      string // RAG_REDIS_ADDR, e.g. "localhost:6379"
	PrometheusHost string // RAG_PROMETHEUS_HOST

	// Monitoring and logging
	EnableMetrics bool   // RAG_ENABLE_METRICS, default true
	LogLevel      string // RAG_LOG_LEVEL: DEBUG|INFO|WARNING|ERROR|CRITICAL
	LogFormat     string // RAG_LOG_FORMAT: json|text

	// Performance
	LLMTimeout         time.Duration // RAG_LLM_TIMEOUT seconds, default 300
	EmbeddingTimeout   time.Duration // RAG_EMBEDDING_TIMEOUT seconds, default 60
	HealthCheckTimeout time.Duration // RAG_HEALTH_CHECK_TIMEOUT seconds, default 5
	QueryTimeout       time.Duration // RAG_QUERY_TIMEOUT seconds, default 300
	CacheTTL           time.Duration // RAG_CACHE_TTL seconds, default 3600

	// Rate limiting
	RateLimitRequests int           // RAG_RATE_LIMIT_REQUESTS, default 60
	RateLimitWindow   time.Duration // RAG_RATE_LIMIT_WINDOW seconds, default 60
}

// validLogLevels and validLogFormats bound what Load accepts.
var (
	validLogLevels  = map[string]bool{"DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "CRITICAL": true}
	validLogFormats = map[string]bool{"json": true, "text": true}
)

// Load builds Settings from the environment.
//
// # Description
//
// Reads every RAG_-prefixed variable, applies defaults for absent ones, and
// validates the result. A validation failure is returned as an error so that
// main can refuse to start.
//
// # Outputs
//
//   - *Settings: Fully populated, validated settings.
//   - error: Non-nil if any value fails to parse or validate.
func Load() (*Settings, error) {
	s := &Settings{
		APIHost:        getString("API_HOST", "0.0.0.0"),
		APITitle:       getString("API_TITLE", "AleutianRAG API"),
		APIVersion:     getString("API_VERSION", "1.0.0"),
		APIDescription: getString("API_DESCRIPTION", "Production-ready graph-RAG system API"),

		apiKeys:     getString("API_KEYS", ""),
		corsOrigins: getString("CORS_ORIGINS", "*"),

		WorkingDir:     getString("WORKING_DIR", "./rag_data"),
		EngineHost:     getString("ENGINE_HOST", "http://localhost:9621"),
		LLMHost:        getString("LLM_HOST", "http://localhost:11434"),
		LLMModel:       getString("LLM_MODEL", "qwen2.5:7b-instruct"),
		EmbeddingModel: getString("EMBEDDING_MODEL", "nomic-embed-text"),

		WeaviateHost:   getString("WEAVIATE_HOST", "localhost:8080"),
		RedisAddr:      getString("REDIS_ADDR", "localhost:6379"),
		PrometheusHost: getString("PROMETHEUS_HOST", "http://localhost:9090"),

		LogLevel:  strings.ToUpper(getString("LOG_LEVEL", "INFO")),
		LogFormat: strings.ToLower(getString("LOG_FORMAT", "json")),
	}

	var err error
	if s.APIPort, err = getInt("API_PORT", 8000); err != nil {
		return nil, err
	}
	if s.APIWorkers, err = getInt("API_WORKERS", 4); err != nil {
		return nil, err
	}
	if s.APIKeyEnabled, err = getBool("API_KEY_ENABLED", true); err != nil {
		return nil, err
	}
	if s.EnableMetrics, err = getBool("ENABLE_METRICS", true); err != nil {
		return nil, err
	}
	if s.MaxRequestSize, err = getInt("MAX_REQUEST_SIZE", 10*1024*1024); err != nil {
		return nil, err
	}
	if s.MaxDocumentSize, err = getInt("MAX_DOCUMENT_SIZE", 1024*1024); err != nil {
		return nil, err
	}
	if s.MaxDocumentsPerRequest, err = getInt("MAX_DOCUMENTS_PER_REQUEST", 100); err != nil {
		return nil, err
	}
	if s.EmbeddingDim, err = getInt("EMBEDDING_DIM", 768); err != nil {
		return nil, err
	}
	if s.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 60); err != nil {
		return nil, err
	}
	if s.LLMTimeout, err = getSeconds("LLM_TIMEOUT", 300); err != nil {
		return nil, err
	}
	if s.EmbeddingTimeout, err = getSeconds("EMBEDDING_TIMEOUT", 60); err != nil {
		return nil, err
	}
	if s.HealthCheckTimeout, err = getSeconds("HEALTH_CHECK_TIMEOUT", 5); err != nil {
		return nil, err
	}
	if s.QueryTimeout, err = getSeconds("QUERY_TIMEOUT", 300); err != nil {
		return nil, err
	}
	if s.CacheTTL, err = getSeconds("CACHE_TTL", 3600); err != nil {
		return nil, err
	}
	if s.RateLimitWindow, err = getSeconds("RATE_LIMIT_WINDOW", 60); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if !validLogLevels[s.LogLevel] {
		return fmt.Errorf("invalid log level %q: must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL", s.LogLevel)
	}
	if !validLogFormats[s.LogFormat] {
		return fmt.Errorf("invalid log format %q: must be one of json, text", s.LogFormat)
	}
	if s.APIPort < 1 || s.APIPort > 65535 {
		return fmt.Errorf("invalid API port %d", s.APIPort)
	}
	if s.RateLimitRequests < 1 {
		return fmt.Errorf("rate limit request count must be positive, got %d", s.RateLimitRequests)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", s.RateLimitWindow)
	}
	return nil
}

// APIKeys returns the configured API keys as a list.
//
// The RAG_API_KEYS value is a single comma-delimited string; entries are
// trimmed and empty entries dropped. Absent or empty value yields an empty
// list.
func (s *Settings) APIKeys() []string {
	return splitTrimmed(s.apiKeys)
}

// CORSOrigins returns the configured CORS origins as a list.
//
// Defaults to ["*"] when the variable is absent or empty.
func (s *Settings) CORSOrigins() []string {
	origins := splitTrimmed(s.corsOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// OllamaURL returns the LLM host with the Ollama API path appended.
func (s *Settings) OllamaURL() string {
	return strings.TrimSuffix(s.LLMHost, "/") + "/api"
}

// ListenAddr returns the host:port the gateway binds to.
func (s *Settings) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.APIHost, s.APIPort)
}

func splitTrimmed(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getString(name, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		return strings.Trim(v, "\"' ")
	}
	return fallback
}

func getInt(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s%s: %w", EnvPrefix, name, err)
	}
	return n, nil
}

func getBool(name string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s%s: %w", EnvPrefix, name, err)
	}
	return b, nil
}

func getSeconds(name string, fallback int) (time.Duration, error) {
	n, err := getInt(name, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
