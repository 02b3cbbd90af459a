// Package chat runs one conversational turn end to end.
//
// A turn is stateless apart from the history window the caller replays: the message
// is classified, then either answered as small talk or read into an attribute filter
// that drives search, ranking and composition. Only an empty message is an error;
// every downstream failure degrades to a textual reply.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/compose"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/extract"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/intent"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/ranking"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/search"
)

// ErrEmptyMessage is returned for a blank user message.
var ErrEmptyMessage = errors.New("message is required")

// Response modes.
const (
	ModeConversation = "conversation"
	ModeProductShow  = "product_show"
)

// Defaults for the history window and the number of products shown.
const (
	DefaultHistoryWindow = 6
	DefaultRankLimit     = 6
)

// Response is the reply to one user turn.
type Response struct {
	Role          string                   `json:"role"`
	Content       string                   `json:"content"`
	Intent        string                   `json:"intent"`
	Mode          string                   `json:"mode"`
	Products      []catalog.ScoredProduct  `json:"products"`
	SearchFilters *catalog.AttributeFilter `json:"searchFilters,omitempty"`
}

func conversation(content string) *Response {
	return &Response{
		Role:     dialog.RoleAssistant,
		Content:  content,
		Mode:     ModeConversation,
		Products: []catalog.ScoredProduct{},
	}
}

// Deps are the pipeline stages.
type Deps struct {
	Classifier *intent.Classifier
	Extractor  *extract.Extractor
	Searcher   *search.Searcher
	Ranker     *ranking.Ranker
	Composer   *compose.Composer
}

// Engine runs chat turns.
type Engine struct {
	classifier    *intent.Classifier
	extractor     *extract.Extractor
	searcher      *search.Searcher
	ranker        *ranking.Ranker
	composer      *compose.Composer
	historyWindow int
	rankLimit     int
	logger        *observability.Logger
	metrics       *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryWindow sets how many past messages are kept per turn.
func WithHistoryWindow(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.historyWindow = n
		}
	}
}

// WithRankLimit sets how many ranked products a reply shows.
func WithRankLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.rankLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records one sample per turn.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New assembles an Engine. Nil stages are replaced with completion-free defaults,
// except Searcher, which is required.
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		classifier:    deps.Classifier,
		extractor:     deps.Extractor,
		searcher:      deps.Searcher,
		ranker:        deps.Ranker,
		composer:      deps.Composer,
		historyWindow: DefaultHistoryWindow,
		rankLimit:     DefaultRankLimit,
		logger:        observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.classifier == nil {
		e.classifier = intent.NewClassifier()
	}
	if e.extractor == nil {
		e.extractor = extract.New(nil, e.logger)
	}
	if e.ranker == nil {
		e.ranker = ranking.Default()
	}
	if e.composer == nil {
		e.composer = compose.New(nil, prompt.DefaultSettings(), e.logger)
	}
	e.logger = e.logger.WithOperation("chat")
	return e
}

// Chat answers message given the caller's history and an optional store or seller
// scope.
func (e *Engine) Chat(ctx context.Context, message string, history []dialog.Message, scopeID string) (resp *Response, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()
	log := e.logger.WithContext(ctx).WithScope(scopeID)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Chat turn panicked, answering with technical issue")
			resp = conversation(e.composer.TechnicalIssue())
			resp.Intent = string(intent.SimpleChat)
			err = nil
		}
		if resp != nil {
			e.metrics.RecordChatTurn(resp.Intent, resp.Mode)
		}
	}()

	history = dialog.Window(history, e.historyWindow)
	classified := e.classifier.Score(message, history)

	if classified.Intent == intent.SimpleChat {
		resp = conversation(e.composer.Converse(ctx, message, history))
	} else {
		resp = e.shop(ctx, message, history, scopeID, log)
	}
	resp.Intent = string(classified.Intent)

	log.Info().
		Str("intent", resp.Intent).
		Str("mode", resp.Mode).
		Int("products", len(resp.Products)).
		Bool("resolved", classified.Resolved).
		Dur("duration", time.Since(start)).
		Msg("Chat turn completed")

	return resp, nil
}

func (e *Engine) shop(ctx context.Context, message string, history []dialog.Message, scopeID string, log *observability.Logger) *Response {
	filter := e.extractor.Extract(ctx, message, history)

	if !filter.Searchable() {
		log.Debug().Str("extraction", filter.Intent).Msg("Product type unknown, asking for qualification")
		resp := conversation(e.composer.Qualify(filter))
		resp.SearchFilters = &filter
		return resp
	}

	query := RankingQuery(filter)
	candidates := e.searcher.Candidates(ctx, filter, scopeID, e.rankLimit)
	ranked := e.ranker.Rank(candidates, query, e.rankLimit)

	resp := conversation(e.composer.Compose(ctx, ranked, message, filter))
	resp.SearchFilters = &filter
	if len(ranked) > 0 {
		resp.Mode = ModeProductShow
		resp.Products = ranked
	}
	return resp
}

// RankingQuery is the text products are ranked against: the extracted type and
// attributes. It survives pronoun resolution, where the raw message may not name
// the product at all.
func RankingQuery(filter catalog.AttributeFilter) string {
	var parts []string
	for _, v := range []string{filter.Type, filter.Style, filter.Color, filter.Material, filter.Room} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
