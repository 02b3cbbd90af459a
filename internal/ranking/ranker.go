// Package ranking orders candidate products by textual relevance to a query.
//
// Scores are additive integers. Matching the product type named in the query is
// worth an order of magnitude more than any incidental field, and a product that does
// not mention that type at all is pushed down.
package ranking

import (
	"sort"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// Weights are the score contributions. The relative order matters more than the
// magnitudes.
type Weights struct {
	TypeExact        int // title, category or sub-category equals the type noun
	TypeContains     int // category, sub-category or title contains the type noun
	TypeMissing      int // the type noun appears nowhere on the product (negative)
	CategoryContains int
	CategoryExact    int // on top of CategoryContains
	SubCategory      int
	TitleTerm        int // per term
	TitleWordExact   int // once
	Tag              int // per term
	Attribute        int // per attribute field
	Description      int // per term
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		TypeExact:        1000,
		TypeContains:     800,
		TypeMissing:      -500,
		CategoryContains: 100,
		CategoryExact:    500,
		SubCategory:      80,
		TitleTerm:        50,
		TitleWordExact:   200,
		Tag:              30,
		Attribute:        20,
		Description:      10,
	}
}

// Query is a parsed ranking query.
type Query struct {
	Terms []string // normalized, singular, longer than two runes
	Nouns []string // terms that name a canonical product type
}

// ParseQuery normalizes raw and extracts its terms and type nouns.
func ParseQuery(raw string) Query {
	var q Query
	seen := map[string]bool{}
	for _, t := range textnorm.Terms(raw) {
		t = textnorm.Singular(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		q.Terms = append(q.Terms, t)
		if noun, ok := catalog.CanonicalNoun(t); ok {
			q.Nouns = append(q.Nouns, noun)
		}
	}
	return q
}

// Ranker scores products with a fixed set of weights.
type Ranker struct {
	w Weights
}

// New returns a Ranker using w.
func New(w Weights) *Ranker {
	return &Ranker{w: w}
}

// Default returns a Ranker using DefaultWeights.
func Default() *Ranker {
	return New(DefaultWeights())
}

// Rank scores products against rawQuery and returns the best n, highest score first.
// Equal scores keep retrieval order. n <= 0 keeps every product.
//
// rawQuery is any free text naming what the shopper wants. It need not be the message
// as typed: the chat engine passes the text of the extracted filter (see
// chat.RankingQuery), since a follow-up like "tu as ça en bleu ?" does not name the
// product itself.
func (r *Ranker) Rank(products []catalog.Product, rawQuery string, n int) []catalog.ScoredProduct {
	q := ParseQuery(rawQuery)

	scored := make([]catalog.ScoredProduct, len(products))
	for i, p := range products {
		scored[i] = catalog.ScoredProduct{Product: p, RelevanceScore: r.Score(p, q)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if n > 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Score computes the relevance of p for q.
func (r *Ranker) Score(p catalog.Product, q Query) int {
	f := newFields(p)
	score := 0

	for _, noun := range q.Nouns {
		switch {
		case sameWord(f.title, noun) || sameWord(f.category, noun) || sameWord(f.subCategory, noun):
			score += r.w.TypeExact
		case strings.Contains(f.category, noun) || strings.Contains(f.subCategory, noun) || strings.Contains(f.title, noun):
			score += r.w.TypeContains
		case !f.mentions(noun):
			score += r.w.TypeMissing
		}
	}

	categoryHit, categoryExact, subHit, titleExact := false, false, false, false
	for _, t := range q.Terms {
		if strings.Contains(f.category, t) {
			categoryHit = true
		}
		if sameWord(f.category, t) {
			categoryExact = true
		}
		if strings.Contains(f.subCategory, t) {
			subHit = true
		}

		for _, w := range f.titleWords {
			if strings.Contains(w, t) {
				score += r.w.TitleTerm
				break
			}
		}
		for _, w := range f.titleWords {
			if sameWord(w, t) {
				titleExact = true
				break
			}
		}

		if strings.Contains(f.tags, t) {
			score += r.w.Tag
		}
		if strings.Contains(f.description, t) {
			score += r.w.Description
		}
	}

	if categoryHit {
		score += r.w.CategoryContains
	}
	if categoryExact {
		score += r.w.CategoryExact
	}
	if subHit {
		score += r.w.SubCategory
	}
	if titleExact {
		score += r.w.TitleWordExact
	}

	for _, attr := range f.attributes {
		for _, t := range q.Terms {
			if attr != "" && strings.Contains(attr, t) {
				score += r.w.Attribute
				break
			}
		}
	}

	return score
}

// fields holds the normalized product text the scorer reads.
type fields struct {
	title       string
	titleWords  []string
	category    string
	subCategory string
	tags        string
	description string
	attributes  []string
}

func newFields(p catalog.Product) fields {
	title := textnorm.Normalize(p.Title)
	return fields{
		title:       title,
		titleWords:  textnorm.Words(title),
		category:    textnorm.Normalize(p.Category),
		subCategory: textnorm.Normalize(p.SubCategory),
		tags:        textnorm.Normalize(strings.Join(p.Tags, " ")),
		description: textnorm.Normalize(p.Description),
		attributes: []string{
			textnorm.Normalize(p.EffectiveMaterial()),
			textnorm.Normalize(p.EffectiveColor()),
			textnorm.Normalize(p.AIShape),
			textnorm.Normalize(p.Style),
			textnorm.Normalize(p.Room),
		},
	}
}

// mentions reports whether any descriptive field carries noun.
func (f fields) mentions(noun string) bool {
	for _, s := range []string{f.title, f.category, f.subCategory, f.tags, f.description} {
		if strings.Contains(s, noun) {
			return true
		}
	}
	return false
}

// sameWord compares a normalized value with a singular term, ignoring a plural mark.
func sameWord(value, term string) bool {
	return value != "" && (value == term || textnorm.Singular(value) == term)
}
