// Package main provides the OmnIA chat API server entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/cache"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
)

func main() {
	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Str("model", cfg.LLM.Model).
		Msg("Starting OmnIA chat API")

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := storage.Migrate(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	resultCache, err := cache.New(cfg.Cache)
	if err != nil {
		// Search still works uncached.
		logger.Warn().Err(err).Msg("Result cache unavailable")
		resultCache = nil
	} else {
		defer resultCache.Close()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	completer := llm.NewClient(cfg.LLM, logger, llm.WithMetrics(m))
	if cfg.LLM.APIKey == "" {
		logger.Warn().Msg("No LLM API key configured, replies will use templates")
	}

	engine := chat.NewFromConfig(cfg, completer, storage.NewProductRepository(db), resultCache, logger, m)

	appCfg := &AppConfig{
		ServiceName:    cfg.Observability.ServiceName,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: []string{"*"},
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}

	router := NewRouter(logger, appCfg, Deps{
		Engine:   engine,
		DB:       db,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server error")
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
