// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/deepagent-ai/agent-platform/internal/agent"
	"github.com/deepagent-ai/agent-platform/internal/config"
	"github.com/deepagent-ai/agent-platform/internal/export"
	"github.com/deepagent-ai/agent-platform/internal/handler"
	"github.com/deepagent-ai/agent-platform/internal/middleware"
	"github.com/deepagent-ai/agent-platform/internal/service"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
	"github.com/deepagent-ai/agent-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "agent-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Storage roots
	if err := cfg.EnsureDirs(); err != nil {
		log.Error("failed to create storage directories", zap.Error(err))
		os.Exit(1)
	}

	// Model catalog
	catalog, err := config.LoadModelCatalog(cfg.ModelsConfigPath)
	if err != nil {
		log.Error("failed to load model catalog", zap.Error(err))
		os.Exit(1)
	}

	// Stores
	conversations := store.NewConversationStore(cfg.MaxConversations)
	artifacts := store.NewArtifactStore(cfg.ArtifactsDir)

	// Agent engine
	engine := agent.NewEngine(agent.Config{
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		TavilyAPIKey:    cfg.TavilyAPIKey,
		MaxSteps:        cfg.MaxAgentSteps,
	}, artifacts, log)

	// Services
	chatSvc := service.NewChatService(engine, conversations, log)
	exportSvc := service.NewExportService(conversations, export.NewRenderer(cfg.ExportsDir), log)

	// Handlers
	healthHandler := handler.NewHealthHandler()
	modelsHandler := handler.NewModelsHandler(catalog)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	conversationHandler := handler.NewConversationHandler(conversations, log)
	uploadHandler := handler.NewUploadHandler(cfg.UploadsDir, log)
	exportHandler := handler.NewExportHandler(exportSvc, log)
	artifactHandler := handler.NewArtifactHandler(artifacts, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Get("/models", modelsHandler.List)
	r.Post("/chat", chatHandler.Chat)
	r.Post("/upload", uploadHandler.Upload)
	r.Post("/download-pdf", exportHandler.DownloadPDF)
	r.Get("/conversation/{id}", conversationHandler.Get)
	r.Delete("/conversation/{id}", conversationHandler.Delete)
	r.Get("/artifacts", artifactHandler.List)
	r.Get("/artifacts/{filename}", artifactHandler.Get)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
