// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator wires the support desk service together: the
// conversation store, the completion backend, the turn engine, and the
// HTTP routes with tracing and metrics.
//
// # Usage
//
//	cfg := orchestrator.ConfigFromEnv()
//	svc, err := orchestrator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//	log.Fatal(svc.Run())
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/AleutianAI/AleutianDesk/services/llm"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianDesk/services/orchestrator/routes"
	"github.com/AleutianAI/AleutianDesk/services/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "desk-service"

// Config holds the service configuration. Zero values pick up the
// defaults applied by New.
type Config struct {
	// Port is the HTTP listen port. Default: 12230.
	Port int

	// DataDir is the Badger data directory. Default: /var/lib/aleutian-desk.
	// Ignored when InMemoryStore is set.
	DataDir string

	// InMemoryStore keeps all sessions in process memory. Used by tests
	// and the offline chat mode.
	InMemoryStore bool

	// LLMBackend selects the completion provider: "gemini" or "openai".
	// Default: "gemini".
	LLMBackend string

	// Instructions is the system prompt prepended to every provider call.
	// Empty means the built-in support agent prompt.
	Instructions string

	// TurnTimeout bounds a single chat turn including the provider call.
	// Default: 30s.
	TurnTimeout time.Duration

	// OTelEndpoint is the OTLP gRPC collector address.
	// Default: aleutian-otel-collector:4317.
	OTelEndpoint string
}

// ConfigFromEnv builds a Config from the process environment, logging a
// warning for each value that falls back to its default.
func ConfigFromEnv() Config {
	cfg := Config{
		LLMBackend:   os.Getenv("LLM_BACKEND_TYPE"),
		Instructions: os.Getenv("SUPPORT_AGENT_INSTRUCTIONS"),
		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if raw := os.Getenv("DESK_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			slog.Warn("Invalid DESK_PORT, using default", "value", raw)
		} else {
			cfg.Port = port
		}
	}

	cfg.DataDir = os.Getenv("DESK_DATA_DIR")
	if cfg.DataDir == "" {
		slog.Warn("DESK_DATA_DIR not set, defaulting", "path", defaultDataDir)
	}

	if raw := os.Getenv("TURN_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			slog.Warn("Invalid TURN_TIMEOUT, using default", "value", raw)
		} else {
			cfg.TurnTimeout = parsed
		}
	}

	return cfg
}

const defaultDataDir = "/var/lib/aleutian-desk"

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12230
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "gemini"
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = 30 * time.Second
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "aleutian-otel-collector:4317"
	}
	return cfg
}

// Service is a fully wired support desk server. Create it with New,
// start it with Run, and release its resources with Close.
type Service struct {
	config        Config
	router        *gin.Engine
	conversations store.ConversationStore
	engine        *engine.Engine
	tracerCleanup func(context.Context)
}

// New initializes the tracer, the conversation store, the completion
// client, and the HTTP router. The returned Service is ready to Run.
func New(cfg Config) (*Service, error) {
	s := &Service{config: applyConfigDefaults(cfg)}

	cleanup, err := initTracer(s.config.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.InMemoryStore {
		s.conversations = store.NewMemory()
	} else {
		bcfg := store.DefaultBadgerConfig(s.config.DataDir)
		bcfg.Logger = slog.Default()
		s.conversations, err = store.OpenBadger(bcfg)
		if err != nil {
			s.tracerCleanup(context.Background())
			return nil, fmt.Errorf("failed to open conversation store: %w", err)
		}
	}

	client, err := NewCompletionClient(s.config.LLMBackend)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	s.engine = engine.New(s.conversations, engine.NewReplyGenerator(client, s.config.Instructions))

	metrics := observability.NewEngineMetrics(prometheus.DefaultRegisterer)

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware(serviceName))
	routes.SetupRoutes(s.router, s.engine, metrics, s.config.TurnTimeout)

	return s, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Service) Run() error {
	slog.Info("Starting the support desk server", "port", s.config.Port)
	return s.router.Run(fmt.Sprintf(":%d", s.config.Port))
}

// Router exposes the configured gin engine for integration tests.
func (s *Service) Router() *gin.Engine {
	return s.router
}

// Close flushes the trace exporter and closes the conversation store.
func (s *Service) Close() {
	if s.conversations != nil {
		if err := s.conversations.Close(); err != nil {
			slog.Error("failed to close conversation store", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// NewCompletionClient picks the provider backend by name. Unknown names
// fall back to gemini so a misconfigured deployment still serves.
func NewCompletionClient(backend string) (llm.CompletionClient, error) {
	switch backend {
	case "openai":
		slog.Info("Using OpenAI completion backend")
		return llm.NewOpenAIClient()
	case "gemini", "":
		if backend == "" {
			slog.Warn("LLM_BACKEND_TYPE not set, defaulting to gemini")
		} else {
			slog.Info("Using Gemini completion backend")
		}
		return llm.NewGeminiClient()
	default:
		slog.Warn("Unknown LLM_BACKEND_TYPE, defaulting to gemini", "backend", backend)
		return llm.NewGeminiClient()
	}
}

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
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
