package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage/storagetest"
)

func fixture(id string) catalog.Product {
	for _, p := range storagetest.Fixtures() {
		if p.ID == id {
			return p
		}
	}
	panic("unknown fixture " + id)
}

func order(scored []catalog.ScoredProduct) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("Les CHAISES et tables, chaises")
	assert.Equal(t, []string{"les", "chaise", "table"}, q.Terms)
	assert.Equal(t, []string{"chaise", "table"}, q.Nouns)
}

func TestRanker_Score(t *testing.T) {
	r := Default()

	tests := []struct {
		name    string
		product string
		query   string
		want    int
	}{
		// category exact 1000 + category 100 + 500 + sub 80 + title 2x50 + exact word 200
		{"type in category", "p-001", "table basse", 1980},
		{"sibling type", "p-002", "table basse", 1930},
		// description mentions the noun: no penalty, 2 x 10
		{"incidental description", "p-006", "table basse", 20},
		// tags 30 + style attribute 20
		{"style only", "p-001", "scandinave", 50},
		// absent noun penalty
		{"off type", "p-003", "table", -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Score(fixture(tt.product), ParseQuery(tt.query)))
		})
	}
}

func TestRanker_Rank_TypeBeatsIncidentalMatch(t *testing.T) {
	products := []catalog.Product{fixture("p-006"), fixture("p-002"), fixture("p-001")}

	got := Default().Rank(products, "table basse", 0)

	assert.Equal(t, []string{"p-001", "p-002", "p-006"}, order(got))
	assert.Equal(t, 1980, got[0].RelevanceScore)
}

func TestRanker_MissingTypeScoresStrictlyLower(t *testing.T) {
	r := Default()
	base := catalog.Product{
		Title: "Console murale", Category: "Meuble", Tags: []string{"entree"},
		Description: "Un meuble fin pour l'entree.",
	}

	for _, field := range []string{"title", "category", "sub_category", "tags", "description"} {
		t.Run(field, func(t *testing.T) {
			with := base
			switch field {
			case "title":
				with.Title = "Console table murale"
			case "category":
				with.Category = "Table console"
			case "sub_category":
				with.SubCategory = "Tables"
			case "tags":
				with.Tags = []string{"entree", "table"}
			case "description":
				with.Description = "Un meuble fin qui remplace une table."
			}
			q := ParseQuery("table")
			assert.Greater(t, r.Score(with, q), r.Score(base, q))
		})
	}
}

func TestRanker_TitleWordMatchNeverLowersScore(t *testing.T) {
	r := Default()
	queries := []string{"table ronde", "chaise velours", "canape vert", "lampe", "bois"}
	products := []catalog.Product{fixture("p-001"), fixture("p-003"), fixture("p-005"), fixture("p-006")}

	for _, raw := range queries {
		q := ParseQuery(raw)
		for _, p := range products {
			for _, term := range q.Terms {
				with := p
				with.Title = p.Title + " " + term
				assert.GreaterOrEqual(t, r.Score(with, q), r.Score(p, q), "%s / %s / %s", raw, p.ID, term)
			}
		}
	}
}

func TestRanker_Rank_StableAndTruncated(t *testing.T) {
	products := []catalog.Product{
		{ID: "a", Title: "Vase"},
		{ID: "b", Title: "Coussin"},
		{ID: "c", Title: "Plaid"},
	}

	got := Default().Rank(products, "bougie", 2)
	assert.Equal(t, []string{"a", "b"}, order(got))

	assert.Empty(t, Default().Rank(nil, "table", 6))
}

func TestRanker_Deterministic(t *testing.T) {
	products := storagetest.Fixtures()
	first := Default().Rank(products, "chaise bleue en velours", 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Default().Rank(products, "chaise bleue en velours", 4))
	}
	assert.Equal(t, "p-003", first[0].ID)
}

func TestRanker_CustomWeights(t *testing.T) {
	r := New(Weights{Tag: 7})
	assert.Equal(t, 7, r.Score(fixture("p-003"), ParseQuery("velours")))
}
