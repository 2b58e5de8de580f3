// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the ragctl tool configuration.
//
// ragctl is an external client of the gateway: everything here is about how
// to reach the gateway and how the batch tools behave, never about the
// gateway's own settings.
package config

type RagctlConfig struct {
	// Gateway: how to reach the RAG gateway API
	Gateway GatewayConfig `yaml:"gateway"`

	// Ingest: batch document ingestion behavior
	Ingest IngestConfig `yaml:"ingest"`

	// Eval: answer-quality evaluation settings
	Eval EvalConfig `yaml:"eval"`
}

type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`        // e.g. http://localhost:8000
	APIKey         string `yaml:"api_key"`         // sent as X-API-Key; empty when auth is disabled
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-request timeout
}

type IngestConfig struct {
	BatchSize           int     `yaml:"batch_size"`            // documents per POST /documents call
	RequestsPerSecond   float64 `yaml:"requests_per_second"`   // pacing between batch requests
	Concurrency         int     `yaml:"concurrency"`           // parallel file reads
	WatchDebounceMillis int     `yaml:"watch_debounce_millis"` // quiet period before watch ingests
}

type EvalConfig struct {
	// JudgeBaseURL is an OpenAI-compatible endpoint used to score answers.
	// Empty disables LLM judging; eval falls back to keyword overlap.
	JudgeBaseURL string `yaml:"judge_base_url"`
	JudgeModel   string `yaml:"judge_model"`
	JudgeAPIKey  string `yaml:"judge_api_key"`
}

func DefaultConfig() RagctlConfig {
	return RagctlConfig{
		Gateway: GatewayConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 300,
		},
		Ingest: IngestConfig{
			BatchSize:           10,
			RequestsPerSecond:   0.5,
			Concurrency:         4,
			WatchDebounceMillis: 750,
		},
		Eval: EvalConfig{
			JudgeModel: "gpt-4o-mini",
		},
	}
}
