// Package main provides the API router setup.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omnia-ai/omnia/libs/chat-engine/cmd/omnia-api/handlers"
	"github.com/omnia-ai/omnia/libs/chat-engine/cmd/omnia-api/middleware"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// AppConfig holds what the router needs beyond its handlers.
type AppConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

// DefaultAppConfig returns default router settings.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		ServiceName:    "omnia-chat",
		RequestTimeout: 60 * time.Second,
		AllowedOrigins: []string{"*"},
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	}
}

// Deps are the services the router serves.
type Deps struct {
	Engine   handlers.Chatter
	DB       Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *AppConfig, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy", "service": cfg.ServiceName})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(ctx); err != nil {
				logger.WithContext(r.Context()).Warn().Err(err).Msg("Readiness check failed")
				writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if cfg.MetricsEnabled && deps.Gatherer != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	chatHandler := handlers.NewChatHandler(logger, deps.Engine)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Scope)
		r.Post("/chat", chatHandler.Chat)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Scope)
		r.Post("/chat", chatHandler.Chat)
	})

	return r
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
