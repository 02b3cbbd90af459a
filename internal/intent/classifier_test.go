package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		message string
		want    Intent
	}{
		// Small talk
		{"Bonjour", SimpleChat},
		{"Salut !", SimpleChat},
		{"Merci beaucoup, bonne journée", SimpleChat},
		{"Comment ça va ?", SimpleChat},

		// Explicit searches
		{"Je cherche une table basse scandinave en bois", ProductShow},
		{"Montre-moi des canapés", ProductShow},
		{"Show me a blue sofa", ProductShow},
		{"Vous avez des lampes ?", ProductShow},

		// Advice about products
		{"Quelle est la qualité de ce canapé ?", ProductChat},
		{"Un conseil pour l'entretien du cuir d'un fauteuil", ProductChat},

		// Bare noun: tie between the product intents goes to product_show
		{"table", ProductShow},

		// Nothing recognizable
		{"1234567890", SimpleChat},
		{"", SimpleChat},
		{"hmm", SimpleChat},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Classify(tc.message, nil))
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	classifier := NewClassifier()
	history := []dialog.Message{{Role: dialog.RoleUser, Content: "montre-moi des chaises"}}

	first := classifier.Score("tu as ça en bleu ?", history)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, classifier.Score("tu as ça en bleu ?", history))
	}
}

func TestClassifier_ShortGreetingBoost(t *testing.T) {
	classifier := NewClassifier()

	short := classifier.Score("Salut", nil)
	assert.Equal(t, WeightGreeting+shortMessageBoost, short.Scores[SimpleChat])

	long := classifier.Score("Salut, j'espère que vous passez une excellente journée", nil)
	assert.Equal(t, WeightGreeting, long.Scores[SimpleChat])

	mixed := classifier.Score("Salut, un lit ?", nil)
	assert.Equal(t, WeightGreeting, mixed.Scores[SimpleChat])
}

func TestClassifier_ResolvesPronounsFromHistory(t *testing.T) {
	classifier := NewClassifier()
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "montre-moi des chaises"},
		{Role: dialog.RoleAssistant, Content: "Voici nos chaises."},
	}

	res := classifier.Score("et celle-ci en vert ?", history)
	assert.True(t, res.Resolved)
	assert.Equal(t, ProductShow, res.Intent)

	res = classifier.Score("et celle-ci en vert ?", nil)
	assert.False(t, res.Resolved)
	assert.Equal(t, SimpleChat, res.Intent)
}

func TestClassifier_SmallTalkAfterSearch(t *testing.T) {
	classifier := NewClassifier()
	history := []dialog.Message{
		{Role: dialog.RoleUser, Content: "montre-moi des chaises"},
		{Role: dialog.RoleAssistant, Content: "Voici 3 chaises."},
	}

	tests := []struct {
		message string
		want    Intent
	}{
		{"merci pour ça", SimpleChat},
		{"merci, je la garde, au revoir", SimpleChat},
		{"merci", SimpleChat},
		{"tu as ça en bleu ?", ProductShow},
		{"c'est quoi la garantie de celle-ci ?", ProductChat},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Classify(tc.message, history))
		})
	}

	res := classifier.Score("merci pour ça", history)
	assert.False(t, res.Resolved)
	assert.Equal(t, WeightGreeting+shortMessageBoost, res.Scores[SimpleChat])
	assert.Zero(t, res.Scores[ProductShow])
}

func TestClassifier_HistoryCarriesOnlyProductNouns(t *testing.T) {
	classifier := NewClassifier()
	history := []dialog.Message{{Role: dialog.RoleUser, Content: "montre-moi des chaises"}}

	res := classifier.Score("et celle-ci en vert ?", history)
	assert.True(t, res.Resolved)
	assert.Equal(t, WeightProductNoun, res.Scores[ProductShow])
	assert.Equal(t, WeightProductNoun, res.Scores[ProductChat])
	assert.Equal(t, []string{"history:product:chaise"}, res.Matched)
}

func TestClassifier_TieBreakPriority(t *testing.T) {
	classifier := NewClassifierWithBuckets([]Bucket{
		{Name: "a", Intents: []Intent{SimpleChat}, Weight: 5, Keywords: []string{"alpha"}},
		{Name: "b", Intents: []Intent{ProductChat}, Weight: 5, Keywords: []string{"beta"}},
		{Name: "c", Intents: []Intent{ProductShow}, Weight: 5, Keywords: []string{"gamma"}},
	})

	assert.Equal(t, ProductChat, classifier.Classify("alpha beta and more words here", nil))
	assert.Equal(t, ProductShow, classifier.Classify("alpha beta gamma and more words", nil))
	assert.Equal(t, SimpleChat, classifier.Classify("alpha and more words here", nil))
}

func TestDefaultBuckets_IncludeProductTypes(t *testing.T) {
	var found bool
	for _, b := range DefaultBuckets() {
		if b.Name == "product" {
			assert.Contains(t, b.Keywords, "table basse")
			assert.Contains(t, b.Keywords, "meuble")
			found = true
		}
	}
	assert.True(t, found)
}
