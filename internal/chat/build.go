package chat

import (
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/cache"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/compose"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/extract"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/intent"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/ranking"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/search"
)

// NewFromConfig wires every stage from cfg. resultCache may be nil to disable
// search caching.
func NewFromConfig(
	cfg *config.Config,
	completer llm.Completer,
	repo search.Repository,
	resultCache cache.Client,
	logger *observability.Logger,
	m *metrics.Metrics,
) *Engine {
	searchOpts := []search.Option{
		search.WithLimits(cfg.Search.Limit, cfg.Search.CandidateMultiplier),
		search.WithMetrics(m),
	}
	if resultCache != nil && cfg.Search.CacheResults {
		searchOpts = append(searchOpts, search.WithCache(resultCache, cfg.Cache.TTL))
	}

	return New(Deps{
		Classifier: intent.NewClassifier(),
		Extractor:  extract.New(completer, logger),
		Searcher:   search.New(repo, logger, searchOpts...),
		Ranker:     ranking.Default(),
		Composer:   compose.New(completer, prompt.FromConfig(cfg.Assistant), logger),
	},
		WithHistoryWindow(cfg.Assistant.HistoryWindow),
		WithRankLimit(cfg.Search.RankLimit),
		WithLogger(logger),
		WithMetrics(m),
	)
}
