// Package metrics provides Prometheus metrics for the chat engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes.
const (
	SearchHit      = "hit"
	SearchEmpty    = "empty"
	SearchFallback = "fallback"
	SearchError    = "error"
	SearchCached   = "cached"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing, so
// library callers and tests can skip instrumentation.
type Metrics struct {
	ChatTurnsTotal      *prometheus.CounterVec
	LLMRequestsTotal    *prometheus.CounterVec
	LLMRequestDuration  *prometheus.HistogramVec
	SearchTotal         *prometheus.CounterVec
	SearchResults       prometheus.Histogram
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in binaries and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChatTurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnia_chat_turns_total",
				Help: "Chat turns handled, by classified intent and response mode",
			},
			[]string{"intent", "mode"},
		),
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnia_llm_requests_total",
				Help: "Completion requests by operation and final status",
			},
			[]string{"operation", "status"},
		),
		LLMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "omnia_llm_request_duration_seconds",
				Help:    "Completion latency including retries",
				Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"operation"},
		),
		SearchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnia_search_total",
				Help: "Catalog searches by outcome",
			},
			[]string{"outcome"},
		),
		SearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omnia_search_results",
				Help:    "Rows returned per catalog search",
				Buckets: []float64{0, 1, 3, 6, 12, 24, 36, 60},
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnia_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "omnia_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// RecordChatTurn counts one completed turn.
func (m *Metrics) RecordChatTurn(intent, mode string) {
	if m == nil {
		return
	}
	m.ChatTurnsTotal.WithLabelValues(intent, mode).Inc()
}

// RecordLLMRequest records a completion call.
func (m *Metrics) RecordLLMRequest(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(operation, status).Inc()
	m.LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSearch records a search outcome and how many rows it produced.
func (m *Metrics) RecordSearch(outcome string, rows int) {
	if m == nil {
		return
	}
	m.SearchTotal.WithLabelValues(outcome).Inc()
	m.SearchResults.Observe(float64(rows))
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
