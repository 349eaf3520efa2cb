package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examobuddy/answer-service/internal/api"
	"github.com/examobuddy/answer-service/internal/auth"
	"github.com/examobuddy/answer-service/internal/capability"
	"github.com/examobuddy/answer-service/internal/config"
	"github.com/examobuddy/answer-service/internal/history"
	"github.com/examobuddy/answer-service/internal/observability"
	"github.com/examobuddy/answer-service/internal/orchestrator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("corpus_dir", cfg.CorpusDir).
		Str("reasoner_model", cfg.OpenRouterModel).
		Bool("deep_research_enabled", cfg.DeepResearchEnabled).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Answer Service starting")

	// Open the history store
	store, err := history.NewStore(cfg.HistoryDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open history store")
	}
	defer store.Close()

	// Build the retrieval index from the corpus directory
	retriever, err := capability.NewRetrieverFromDir(cfg.CorpusDir, capability.WithTopK(cfg.RetrieverTopK))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build retrieval index")
	}
	logger.Info().Int("passages", retriever.Size()).Msg("Retrieval index built")

	// Wire the capabilities into the orchestrator. Deep research is
	// policy-selectable; when disabled the orchestrator never invokes it.
	var research capability.Capability
	if cfg.DeepResearchEnabled {
		research = capability.NewResearch(cfg)
	}
	reasoner := capability.NewReasoner(cfg)
	agent := orchestrator.New(retriever, research, reasoner)

	assembler := history.NewContextAssembler(store, cfg.HistoryContextSize)

	// Create HTTP server
	mux := http.NewServeMux()

	mux.Handle("/api/qa/ask", auth.Middleware(cfg.JWTSecret, api.NewQAHandler(agent, assembler, store)))
	mux.Handle("/api/history", auth.Middleware(cfg.JWTSecret, api.NewHistoryHandler(store)))
	mux.Handle("/api/admin/stats", auth.Middleware(cfg.JWTSecret, api.NewAdminHandler(store)))

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Readiness endpoint
	checks := map[string]observability.HealthCheckFunc{
		"history_store": func(ctx context.Context) (bool, error) {
			if err := store.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		},
		"retrieval_index": func(ctx context.Context) (bool, error) {
			// An empty index is degraded but serviceable; readiness only
			// verifies the index was built.
			if retriever == nil {
				return false, fmt.Errorf("retrieval index not built")
			}
			return true, nil
		},
		"reasoner_config": func(ctx context.Context) (bool, error) {
			// Config presence only; no probe call, to avoid API costs.
			if cfg.OpenRouterAPIKey == "" {
				return false, fmt.Errorf("reasoner API key missing")
			}
			return true, nil
		},
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(checks))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // answers wait on two upstream model calls
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/api/qa/ask", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
