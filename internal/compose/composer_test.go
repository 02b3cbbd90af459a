package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage/storagetest"
)

type fakeCompleter struct {
	reply     string
	err       error
	calls     int
	messages  []dialog.Message
	maxTokens int
}

func (f *fakeCompleter) Complete(_ context.Context, messages []dialog.Message, maxTokens int) (string, error) {
	f.calls++
	f.messages = messages
	f.maxTokens = maxTokens
	return f.reply, f.err
}

func scored(ids ...string) []catalog.ScoredProduct {
	var out []catalog.ScoredProduct
	for _, p := range storagetest.Fixtures() {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, catalog.ScoredProduct{Product: p})
			}
		}
	}
	return out
}

func TestCompose_ZeroResultsAsksQuestions(t *testing.T) {
	fc := &fakeCompleter{reply: "should not be used"}
	c := New(fc, prompt.DefaultSettings(), nil)

	got := c.Compose(context.Background(), nil, "canapé rouge scandinave",
		catalog.AttributeFilter{Intent: catalog.IntentProductSearch, Type: "canapé", Style: "scandinave"})

	assert.NotEmpty(t, got)
	assert.Contains(t, got, "« canapé scandinave »")
	assert.Contains(t, got, "?")
	assert.NotContains(t, got, "€")
	assert.NotContains(t, got, "Quel style")
	assert.Equal(t, 3, strings.Count(got, "\n- "))
	assert.Equal(t, 0, fc.calls)
}

func TestNoResults_QuestionCount(t *testing.T) {
	c := New(nil, prompt.DefaultSettings(), nil)
	budget := 500.0

	tests := []struct {
		name   string
		filter catalog.AttributeFilter
		want   int
		has    string
	}{
		{"nothing known", catalog.AttributeFilter{}, 4, "votre demande"},
		{"finish partly known", catalog.AttributeFilter{Type: "table", Color: "noir"}, 4, "couleur ou une matière"},
		{
			"everything known",
			catalog.AttributeFilter{
				Type: "table", Style: "moderne", Room: "salon", Color: "noir", Material: "bois",
				PriceRange: &catalog.PriceRange{Max: &budget},
			},
			1, "autres modèles de table",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.NoResults(tt.filter)
			assert.Equal(t, tt.want, strings.Count(got, "\n- "))
			assert.Contains(t, got, tt.has)
		})
	}
}

func TestCompose_SendsFactSheets(t *testing.T) {
	fc := &fakeCompleter{reply: "  Voici deux belles tables pour vous.  "}
	c := New(fc, prompt.DefaultSettings(), nil)

	got := c.Compose(context.Background(), scored("p-001", "p-007"), "table basse", catalog.AttributeFilter{Type: "table basse"})

	assert.Equal(t, "Voici deux belles tables pour vous.", got)
	require.Len(t, fc.messages, 2)
	assert.Equal(t, 300, fc.maxTokens)
	assert.Contains(t, fc.messages[0].Content, "OmnIA")
	assert.Contains(t, fc.messages[0].Content, "n'invente rien")

	user := fc.messages[1].Content
	assert.Contains(t, user, "Demande du client : table basse")
	assert.Contains(t, user, "- Table basse Oslo")
	assert.Contains(t, user, "249 € (-17%, au lieu de 299 €)")
	assert.Contains(t, user, "Dimensions: L 110 x H 40 cm")
	assert.Contains(t, user, "Matière: bois")
	assert.Contains(t, user, "rupture de stock")
}

func TestCompose_FallsBackToCountTemplate(t *testing.T) {
	tests := []struct {
		name     string
		settings prompt.Settings
		fc       *fakeCompleter
		ids      []string
		want     string
	}{
		{"error fr", prompt.DefaultSettings(), &fakeCompleter{err: errors.New("timeout")}, []string{"p-001", "p-002"}, "2 produits trouvés, voulez-vous plus de détails ?"},
		{"blank fr singular", prompt.DefaultSettings(), &fakeCompleter{reply: "  "}, []string{"p-003"}, "1 produit trouvé, voulez-vous plus de détails ?"},
		{"error en", prompt.Settings{Language: prompt.LanguageEnglish}, &fakeCompleter{err: errors.New("502")}, []string{"p-001", "p-002", "p-003"}, "3 products found, want more details?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.fc, tt.settings, nil).Compose(context.Background(), scored(tt.ids...), "q", catalog.AttributeFilter{})
			assert.Equal(t, tt.want, got)
		})
	}

	got := New(nil, prompt.DefaultSettings(), nil).Compose(context.Background(), scored("p-001"), "q", catalog.AttributeFilter{})
	assert.Equal(t, "1 produit trouvé, voulez-vous plus de détails ?", got)
}

func TestConverse(t *testing.T) {
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "Salut"},
		{Role: dialog.RoleAssistant, Content: "Bonjour !"},
	}

	fc := &fakeCompleter{reply: "Je vais très bien, merci !"}
	c := New(fc, prompt.Settings{Tone: prompt.ToneCasual, ResponseLength: prompt.LengthConcise}, nil)
	assert.Equal(t, "Je vais très bien, merci !", c.Converse(context.Background(), "ça va ?", history))
	require.Len(t, fc.messages, 4)
	assert.Equal(t, "ça va ?", fc.messages[3].Content)
	assert.Equal(t, 150, fc.maxTokens)
	assert.Contains(t, fc.messages[0].Content, "tutoyer")

	failing := New(&fakeCompleter{err: errors.New("down")}, prompt.DefaultSettings(), nil)
	assert.Contains(t, failing.Converse(context.Background(), "Bonjour", nil), "Je suis OmnIA")
}

func TestQualify(t *testing.T) {
	c := New(nil, prompt.DefaultSettings(), nil)

	assert.Contains(t, c.Qualify(catalog.NeedQualification()), "Quel type de produit")
	got := c.Qualify(catalog.AttributeFilter{Intent: catalog.IntentNeedQualification, Color: "bleu", Room: "salon"})
	assert.Contains(t, got, "bleu, salon")
	assert.Contains(t, got, "?")
}

func TestTechnicalIssue(t *testing.T) {
	assert.Contains(t, New(nil, prompt.DefaultSettings(), nil).TechnicalIssue(), "souci technique")
	assert.Contains(t, New(nil, prompt.Settings{Language: prompt.LanguageEnglish}, nil).TechnicalIssue(), "technical issue")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Un joli vase en verre.", PlainText("<p>Un <b>joli</b>\n vase  en verre.</p>", 0))
	assert.Equal(t, "abcde…", PlainText("abcdefgh", 5))
	assert.Equal(t, "", PlainText("   ", 10))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "249 €", FormatPrice(249, ""))
	assert.Equal(t, "99.90 €", FormatPrice(99.9, "EUR"))
	assert.Equal(t, "10 $", FormatPrice(10, "usd"))
	assert.Equal(t, "10 GBP", FormatPrice(10, "GBP"))
}
