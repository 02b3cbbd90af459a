// Package search turns an attribute filter into catalog rows. A scoped search that
// finds nothing is retried once across the whole catalog, and database failures
// degrade to an empty result.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/cache"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// CacheNamespace prefixes every cached search result.
const CacheNamespace = "search"

// Defaults used when no limits are configured.
const (
	DefaultLimit               = 12
	DefaultCandidateMultiplier = 3
)

// Repository is the catalog query the searcher runs.
type Repository interface {
	Search(ctx context.Context, q storage.ProductQuery) ([]catalog.Product, error)
}

// Searcher runs catalog searches for attribute filters.
type Searcher struct {
	repo       Repository
	logger     *observability.Logger
	metrics    *metrics.Metrics
	cache      cache.Client
	cacheTTL   time.Duration
	limit      int
	multiplier int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCache caches non-empty results for ttl, two minutes when unset.
func WithCache(c cache.Client, ttl time.Duration) Option {
	return func(s *Searcher) {
		if ttl <= 0 {
			ttl = 2 * time.Minute
		}
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMetrics records search outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) { s.metrics = m }
}

// WithLimits sets the plain result limit and the candidate multiplier applied when a
// ranking pass follows. Non-positive values keep the defaults.
func WithLimits(limit, multiplier int) Option {
	return func(s *Searcher) {
		if limit > 0 {
			s.limit = limit
		}
		if multiplier > 0 {
			s.multiplier = multiplier
		}
	}
}

// New creates a Searcher over repo.
func New(repo Repository, logger *observability.Logger, opts ...Option) *Searcher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	s := &Searcher{
		repo:       repo,
		logger:     logger.WithOperation("search"),
		limit:      DefaultLimit,
		multiplier: DefaultCandidateMultiplier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns up to the configured limit of products matching filter.
func (s *Searcher) Search(ctx context.Context, filter catalog.AttributeFilter, scopeID string) []catalog.Product {
	return s.run(ctx, Query(filter, scopeID, s.limit))
}

// Candidates returns a wider pool, want times the candidate multiplier, for a
// ranking pass that keeps want products.
func (s *Searcher) Candidates(ctx context.Context, filter catalog.AttributeFilter, scopeID string, want int) []catalog.Product {
	if want <= 0 {
		return s.Search(ctx, filter, scopeID)
	}
	return s.run(ctx, Query(filter, scopeID, want*s.multiplier))
}

// Query builds the catalog query for filter. The type is split into terms, each also
// tried in singular form, and the attribute values are matched as substrings.
func Query(filter catalog.AttributeFilter, scopeID string, limit int) storage.ProductQuery {
	var terms []string
	seen := map[string]bool{}
	for _, t := range textnorm.Terms(filter.Type) {
		t = textnorm.Singular(t)
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	q := storage.ProductQuery{
		Terms:    terms,
		Color:    textnorm.Normalize(filter.Color),
		Material: textnorm.Normalize(filter.Material),
		Style:    textnorm.Normalize(filter.Style),
		Room:     textnorm.Normalize(filter.Room),
		ScopeID:  strings.TrimSpace(scopeID),
		Limit:    limit,
	}
	if !filter.PriceRange.IsZero() {
		q.PriceRange = filter.PriceRange
	}
	return q
}

func (s *Searcher) run(ctx context.Context, q storage.ProductQuery) []catalog.Product {
	log := s.logger.WithContext(ctx).WithScope(q.ScopeID)
	key := cacheKey(q)

	if products, ok := s.fromCache(ctx, key); ok {
		s.metrics.RecordSearch(metrics.SearchCached, len(products))
		return products
	}

	products, err := s.repo.Search(ctx, q)
	if err != nil {
		log.Warn().Err(err).Strs("terms", q.Terms).Msg("Catalog search failed, returning no products")
		s.metrics.RecordSearch(metrics.SearchError, 0)
		return []catalog.Product{}
	}

	outcome := metrics.SearchHit
	if len(products) == 0 && q.ScopeID != "" {
		log.Info().Strs("terms", q.Terms).Msg("Scoped search empty, retrying across the whole catalog")
		products, err = s.repo.Search(ctx, q.Unscoped())
		if err != nil {
			log.Warn().Err(err).Msg("Unscoped catalog search failed, returning no products")
			s.metrics.RecordSearch(metrics.SearchError, 0)
			return []catalog.Product{}
		}
		outcome = metrics.SearchFallback
	}

	if len(products) == 0 {
		s.metrics.RecordSearch(metrics.SearchEmpty, 0)
		return []catalog.Product{}
	}

	s.metrics.RecordSearch(outcome, len(products))
	s.toCache(ctx, key, products)
	log.Debug().Int("rows", len(products)).Str("outcome", outcome).Msg("Catalog search done")
	return products
}

func (s *Searcher) fromCache(ctx context.Context, key string) ([]catalog.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithContext(ctx).Warn().Err(err).Msg("Search cache read failed")
		}
		return nil, false
	}
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (s *Searcher) toCache(ctx context.Context, key string, products []catalog.Product) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.WithContext(ctx).Warn().Err(err).Msg("Search cache write failed")
	}
}

func cacheKey(q storage.ProductQuery) string {
	bound := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%g", *v)
	}
	var lo, hi string
	if q.PriceRange != nil {
		lo, hi = bound(q.PriceRange.Min), bound(q.PriceRange.Max)
	}
	return cache.HashKey(CacheNamespace,
		strings.Join(q.Terms, " "), q.Color, q.Material, q.Style, q.Room,
		lo, hi, q.ScopeID, fmt.Sprint(q.Limit),
	)
}
