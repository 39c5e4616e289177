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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/internal/classify"
	"github.com/DeepakChander/leadmaster-ai-web/internal/config"
	"github.com/DeepakChander/leadmaster-ai-web/internal/handler"
	"github.com/DeepakChander/leadmaster-ai-web/internal/ingest"
	"github.com/DeepakChander/leadmaster-ai-web/internal/middleware"
	natsclient "github.com/DeepakChander/leadmaster-ai-web/internal/nats"
	"github.com/DeepakChander/leadmaster-ai-web/internal/service"
	"github.com/DeepakChander/leadmaster-ai-web/internal/webhook"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/tracing"
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

	if cfg.WebhookURL == "" {
		log.Error("WEBHOOK_URL is required")
		os.Exit(1)
	}

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "lead-streaming-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure JetStream stream exists
	streamManager := natsclient.NewStreamManager(natsClient)
	if err := streamManager.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Initialize clarification classifier
	classifierKey := cfg.OpenAIAPIKey
	if classify.Kind(cfg.ClassifierKind) == classify.KindAnthropic {
		classifierKey = cfg.AnthropicAPIKey
	}
	classifier, err := classify.New(classify.Kind(cfg.ClassifierKind), classifierKey)
	if err != nil {
		log.Warn("failed to create classifier, falling back to keyword heuristic", zap.Error(err))
		classifier = classify.NewKeywordClassifier()
	}

	// Initialize services
	webhookClient := webhook.NewClient(webhook.Config{
		URL:     cfg.WebhookURL,
		Timeout: cfg.WebhookTimeout,
	}, log)
	ingestManager := ingest.NewManager(streamManager, log)
	dispatcher := service.NewDispatcher(webhookClient, classifier, ingestManager, log)
	defer dispatcher.Close()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	queryHandler := handler.NewQueryHandler(dispatcher, log)
	leadHandler := handler.NewLeadHandler(ingestManager, log)
	streamHandler := handler.NewStreamHandler(dispatcher, ingestManager, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID", "X-Sheet-URL", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/queries", queryHandler.Submit)
		r.Post("/queries/clarify", queryHandler.FollowUp)
		r.Get("/session", queryHandler.Session)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", leadHandler.List)
			r.Get("/export", leadHandler.Export)
			r.Get("/stream", streamHandler.Stream)
		})
	})

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
