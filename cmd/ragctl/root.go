// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRAG/cmd/ragctl/config"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

var (
	flagGateway string // Override the configured gateway base URL
	flagAPIKey  string // Override the configured API key
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Operational tooling for the AleutianRAG gateway",
	Long: `ragctl drives the AleutianRAG gateway over its public HTTP API.

It covers the operational side of running a graph-RAG deployment:
  - Batch document ingestion with pacing and retries left to the operator
  - Directory watching for continuous ingestion
  - Ad-hoc queries across all retrieval modes
  - A self-contained demo corpus
  - Answer-quality evaluation against a Q/A dataset

Configuration lives at ~/.aleutianrag/ragctl.yaml and is created with
defaults on first run. Flags override the file.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagGateway, "gateway", "", "gateway base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "gateway API key (overrides config)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := config.Load(); err != nil {
			log.Fatalf("Error loading ragctl config: %v", err)
		}
		if flagGateway != "" {
			config.Global.Gateway.BaseURL = flagGateway
		}
		if flagAPIKey != "" {
			config.Global.Gateway.APIKey = flagAPIKey
		}
	}

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(healthCmd)
}

// gatewayClient builds the client from the loaded config.
func gatewayClient() *GatewayClient {
	cfg := config.Global.Gateway
	return NewGatewayClient(cfg.BaseURL, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second)
}
