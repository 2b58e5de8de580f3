// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/handlers"
	"github.com/AleutianAI/AleutianRAG/services/gateway/health"
	"github.com/AleutianAI/AleutianRAG/services/gateway/middleware"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

// Deps carries everything the route table wires together.
type Deps struct {
	Settings *config.Settings
	Service  *rag.Service
	Checker  *health.Checker
	Limiter  *middleware.Limiter
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
}

// SetupRoutes registers the gateway's route table on router.
//
// # Description
//
// Health, readiness, metrics, and API metadata are open endpoints. The
// document, query, and graph routes are gated by authentication and rate
// limiting; the limiter keys on the identity the auth gate produced, so the
// two are registered in that order.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/", handlers.Info(deps.Settings))
	router.GET("/health", handlers.Health(deps.Checker, deps.Settings.APIVersion))
	router.GET("/health/ready", handlers.Ready(deps.Checker))

	if deps.Settings.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	gated := router.Group("/",
		middleware.APIKeyAuth(deps.Settings.APIKeyEnabled, deps.Settings.APIKeys(), deps.Metrics),
		middleware.RateLimit(deps.Limiter, deps.Metrics),
	)
	{
		gated.POST("/documents", handlers.InsertDocuments(deps.Service, deps.Settings, deps.Metrics))
		gated.POST("/query", handlers.Query(deps.Service, deps.Settings, deps.Metrics))
		gated.GET("/graph", handlers.Graph(deps.Service, deps.Metrics))
	}
}
