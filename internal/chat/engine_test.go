package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/compose"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/extract"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/metrics"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/search"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage/storagetest"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(context.Context, []dialog.Message, int) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newEngine(t *testing.T, fc *fakeCompleter, opts ...Option) *Engine {
	t.Helper()
	repo := storagetest.NewSeededRepository(t)
	return New(Deps{
		Extractor: extract.New(fc, nil),
		Searcher:  search.New(repo, nil),
		Composer:  compose.New(fc, prompt.DefaultSettings(), nil),
	}, opts...)
}

func productIDs(products []catalog.ScoredProduct) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestChat_Greeting(t *testing.T) {
	fc := &fakeCompleter{reply: "Bonjour ! Comment puis-je vous aider ?"}
	resp, err := newEngine(t, fc).Chat(context.Background(), "Bonjour", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "simple_chat", resp.Intent)
	assert.Equal(t, ModeConversation, resp.Mode)
	assert.Equal(t, dialog.RoleAssistant, resp.Role)
	assert.Equal(t, "Bonjour ! Comment puis-je vous aider ?", resp.Content)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
	assert.Nil(t, resp.SearchFilters)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"products":[]`)
	assert.NotContains(t, string(body), "searchFilters")
}

func TestChat_FastPathSearch(t *testing.T) {
	fc := &fakeCompleter{reply: "Voici deux tables scandinaves en bois."}
	resp, err := newEngine(t, fc).Chat(context.Background(), "Je cherche une table basse scandinave en bois", nil, "")
	require.NoError(t, err)

	require.NotNil(t, resp.SearchFilters)
	assert.Equal(t, catalog.AttributeFilter{
		Intent: catalog.IntentProductSearch, Type: "table basse", Style: "scandinave", Material: "bois",
	}, *resp.SearchFilters)
	assert.Equal(t, "product_show", resp.Intent)
	assert.Equal(t, ModeProductShow, resp.Mode)
	assert.Equal(t, []string{"p-001", "p-002"}, productIDs(resp.Products))
	assert.Greater(t, resp.Products[0].RelevanceScore, resp.Products[1].RelevanceScore)
	assert.Equal(t, "Voici deux tables scandinaves en bois.", resp.Content)
	// Only the compose call: extraction took the fast path.
	assert.Equal(t, 1, fc.calls)
}

func TestChat_AmbiguousTypeNeverFails(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("provider down")}
	resp, err := newEngine(t, fc).Chat(context.Background(), "table", nil, "")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Content)
	require.NotNil(t, resp.SearchFilters)
	assert.Equal(t, "table", resp.SearchFilters.Type)
	assert.Equal(t, ModeProductShow, resp.Mode)
	assert.Equal(t, "4 produits trouvés, voulez-vous plus de détails ?", resp.Content)
	assert.Equal(t, "p-001", resp.Products[0].ID)
	assert.Equal(t, "p-006", resp.Products[len(resp.Products)-1].ID)
}

func TestChat_PronounResolvedFromHistory(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("provider down")}
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "montre-moi des chaises"},
		{Role: dialog.RoleAssistant, Content: "Voici nos chaises."},
	}

	resp, err := newEngine(t, fc).Chat(context.Background(), "tu as ça en bleu ?", history, "")
	require.NoError(t, err)

	require.NotNil(t, resp.SearchFilters)
	assert.Equal(t, "chaise", resp.SearchFilters.Type)
	assert.Equal(t, "bleu", resp.SearchFilters.Color)
	assert.Equal(t, ModeProductShow, resp.Mode)
	assert.Equal(t, []string{"p-003"}, productIDs(resp.Products))
}

func TestChat_ThanksAfterSearchStaysConversational(t *testing.T) {
	fc := &fakeCompleter{reply: "Avec plaisir !"}
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "montre-moi des chaises"},
		{Role: dialog.RoleAssistant, Content: "Voici 3 chaises."},
	}

	resp, err := newEngine(t, fc).Chat(context.Background(), "merci pour ça", history, "")
	require.NoError(t, err)

	assert.Equal(t, "simple_chat", resp.Intent)
	assert.Equal(t, ModeConversation, resp.Mode)
	assert.Empty(t, resp.Products)
	assert.Nil(t, resp.SearchFilters)
}

func TestChat_HistoryWindowLimitsContext(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("provider down")}
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "montre-moi des chaises"},
		{Role: dialog.RoleAssistant, Content: "Voici nos chaises."},
	}

	resp, err := newEngine(t, fc, WithHistoryWindow(0)).Chat(context.Background(), "tu as ça en bleu ?", history, "")
	require.NoError(t, err)

	assert.Equal(t, ModeConversation, resp.Mode)
	require.NotNil(t, resp.SearchFilters)
	assert.Equal(t, catalog.IntentNeedQualification, resp.SearchFilters.Intent)
	assert.Empty(t, resp.Products)
}

func TestChat_Qualification(t *testing.T) {
	fc := &fakeCompleter{reply: `{"intent":"need_qualification","color":"bleu"}`}
	resp, err := newEngine(t, fc).Chat(context.Background(), "Je cherche quelque chose en bleu", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "product_show", resp.Intent)
	assert.Equal(t, ModeConversation, resp.Mode)
	assert.Contains(t, resp.Content, "bleu")
	assert.Contains(t, resp.Content, "Quel type de produit")
	assert.Empty(t, resp.Products)
	require.NotNil(t, resp.SearchFilters)
	assert.Equal(t, catalog.IntentNeedQualification, resp.SearchFilters.Intent)
	assert.Equal(t, 1, fc.calls)
}

func TestChat_NoResults(t *testing.T) {
	fc := &fakeCompleter{reply: "should not be used"}
	resp, err := newEngine(t, fc).Chat(context.Background(), "Je cherche une armoire", nil, "store-a")
	require.NoError(t, err)

	assert.Equal(t, ModeConversation, resp.Mode)
	assert.Empty(t, resp.Products)
	assert.Contains(t, resp.Content, "« armoire »")
	assert.Contains(t, resp.Content, "?")
	assert.Equal(t, 0, fc.calls)
}

func TestChat_ScopeFallback(t *testing.T) {
	fc := &fakeCompleter{reply: "Voici nos chaises."}
	resp, err := newEngine(t, fc).Chat(context.Background(), "montre-moi des chaises", nil, "store-a")
	require.NoError(t, err)

	assert.Equal(t, ModeProductShow, resp.Mode)
	assert.ElementsMatch(t, []string{"p-003", "p-004"}, productIDs(resp.Products))
}

func TestChat_RankLimit(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	resp, err := newEngine(t, fc, WithRankLimit(2)).Chat(context.Background(), "montre-moi des tables", nil, "")
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
}

func TestChat_EmptyMessage(t *testing.T) {
	_, err := newEngine(t, &fakeCompleter{}).Chat(context.Background(), "   ", nil, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChat_PanicBecomesTechnicalIssue(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := New(Deps{}, WithMetrics(m))

	resp, err := e.Chat(context.Background(), "montre-moi des chaises", nil, "")
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "souci technique")
	assert.Equal(t, ModeConversation, resp.Mode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("simple_chat", ModeConversation)))
}

func TestChat_RecordsTurnMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	fc := &fakeCompleter{reply: "ok"}
	e := newEngine(t, fc, WithMetrics(m))

	_, err := e.Chat(context.Background(), "Bonjour", nil, "")
	require.NoError(t, err)
	_, err = e.Chat(context.Background(), "montre-moi des chaises", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("simple_chat", ModeConversation)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("product_show", ModeProductShow)))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.RankLimit = 1
	fc := &fakeCompleter{reply: "ok"}

	e := NewFromConfig(cfg, fc, storagetest.NewSeededRepository(t), nil, nil, nil)
	resp, err := e.Chat(context.Background(), "montre-moi des chaises", nil, "")
	require.NoError(t, err)
	assert.Len(t, resp.Products, 1)
}

func TestRankingQuery(t *testing.T) {
	assert.Equal(t, "canape vert velours", RankingQuery(catalog.AttributeFilter{Type: "canape", Material: "velours", Color: "vert"}))
	assert.Equal(t, "", RankingQuery(catalog.NeedQualification()))
}
