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
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/AleutianRAG/pkg/logging"
	"github.com/AleutianAI/AleutianRAG/services/gateway/config"
	"github.com/AleutianAI/AleutianRAG/services/gateway/health"
	"github.com/AleutianAI/AleutianRAG/services/gateway/middleware"
	"github.com/AleutianAI/AleutianRAG/services/gateway/observability"
	"github.com/AleutianAI/AleutianRAG/services/gateway/routes"
	"github.com/AleutianAI/AleutianRAG/services/rag"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("rag-gateway")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newWeaviateClient builds the vector-store client used by the health probe.
// A malformed host leaves the probe falling back to a plain HTTP check.
func newWeaviateClient(host string) *weaviate.Client {
	scheme := "http"
	if u, err := url.Parse("//" + host); err == nil && u.Host != "" {
		host = u.Host
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		slog.Warn("failed to create Weaviate client", "host", host, "error", err)
		return nil
	}
	return client
}

func buildProbes(settings *config.Settings, weaviateClient *weaviate.Client, redisClient *redis.Client) []health.Probe {
	probes := []health.Probe{
		health.NewHTTPProbe("llm", settings.LLMHost+"/api/tags"),
	}
	if weaviateClient != nil {
		probes = append(probes, health.NewWeaviateProbe("vectorstore", weaviateClient))
	} else {
		probes = append(probes, health.NewHTTPProbe("vectorstore",
			"http://"+settings.WeaviateHost+"/v1/.well-known/ready"))
	}
	if redisClient != nil {
		probes = append(probes, health.NewRedisProbe("cache", redisClient))
	}
	return probes
}

func main() {
	// .env is optional; the environment wins over the file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:   settings.LogLevel,
		Format:  settings.LogFormat,
		Service: "rag-gateway",
	})
	if err != nil {
		log.Fatalf("FATAL: could not build logger: %v", err)
	}
	slog.SetDefault(logger.Slog())

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("FATAL: failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	registry := prometheus.NewRegistry()
	metrics := observability.New(registry)

	// RAG engine + orchestration service
	engine, err := rag.NewHTTPEngine(rag.HTTPEngineConfig{
		BaseURL:    settings.EngineHost,
		WorkingDir: settings.WorkingDir,
		LLMModel:   settings.LLMModel,
		Timeout:    settings.LLMTimeout,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("FATAL: could not create RAG engine client: %v", err)
	}

	svc := rag.NewService(engine, settings.WorkingDir, logger)
	initCtx, initCancel := context.WithTimeout(context.Background(), settings.LLMTimeout)
	if err := svc.Initialize(initCtx); err != nil {
		initCancel()
		log.Fatalf("FATAL: RAG service initialization failed: %v", err)
	}
	initCancel()
	metrics.RAGInitialized.Set(1)

	// dependency health probes
	weaviateClient := newWeaviateClient(settings.WeaviateHost)
	redisClient := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
	defer redisClient.Close()

	checker := health.NewChecker(
		buildProbes(settings, weaviateClient, redisClient),
		[]string{"llm", "vectorstore"},
		settings.HealthCheckTimeout,
	)

	// rate limiter with its background sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	limiter := middleware.NewLimiter(settings.RateLimitRequests, settings.RateLimitWindow, middleware.SystemClock())
	limiter.StartSweeper(sweepCtx, settings.RateLimitWindow)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Correlation())
	router.Use(middleware.Observe(logger, metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins: settings.CORSOrigins(),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", middleware.HeaderAPIKey, middleware.HeaderRequestID},
		MaxAge:       12 * time.Hour,
	}))
	router.Use(otelgin.Middleware("rag-gateway"))

	routes.SetupRoutes(router, routes.Deps{
		Settings: settings,
		Service:  svc,
		Checker:  checker,
		Limiter:  limiter,
		Metrics:  metrics,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:    settings.ListenAddr(),
		Handler: router,
	}

	go func() {
		logger.Info("starting rag gateway", "addr", settings.ListenAddr(), "version", settings.APIVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server drain failed", "error", err)
	}

	if err := svc.Close(shutdownCtx); err != nil {
		logger.Error("rag service close failed", "error", err)
	}
	metrics.RAGInitialized.Set(0)
	logger.Info("rag gateway stopped")
}
