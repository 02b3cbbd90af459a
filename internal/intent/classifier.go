// Package intent decides what a shopper's message is asking for.
package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// Intent is the classified purpose of a user turn.
type Intent string

const (
	SimpleChat  Intent = "simple_chat"
	ProductChat Intent = "product_chat"
	ProductShow Intent = "product_show"
)

// priority orders intents for tie-breaking, strongest first.
var priority = []Intent{ProductShow, ProductChat, SimpleChat}

const (
	shortMessageRunes = 15
	shortMessageBoost = 10
)

// Bucket is a weighted keyword table. Every keyword found in a message adds Weight to
// each of the bucket's intents.
type Bucket struct {
	Name     string
	Intents  []Intent
	Weight   int
	Keywords []string
	// Carried buckets are also matched against the earlier user turns a pronoun
	// points back to.
	Carried bool
}

// Result is a classification with its per-intent scores.
type Result struct {
	Intent   Intent         `json:"intent"`
	Scores   map[Intent]int `json:"scores"`
	Matched  []string       `json:"matched,omitempty"`
	Resolved bool           `json:"resolved"`
}

// Classifier scores messages against keyword buckets.
type Classifier struct {
	buckets []Bucket
}

// NewClassifier returns a classifier using DefaultBuckets.
func NewClassifier() *Classifier {
	return NewClassifierWithBuckets(DefaultBuckets())
}

// NewClassifierWithBuckets returns a classifier over custom tables. Keywords are
// normalized once here.
func NewClassifierWithBuckets(buckets []Bucket) *Classifier {
	normalized := make([]Bucket, len(buckets))
	for i, b := range buckets {
		kw := make([]string, 0, len(b.Keywords))
		for _, k := range b.Keywords {
			if k = textnorm.Normalize(k); k != "" {
				kw = append(kw, k)
			}
		}
		normalized[i] = Bucket{Name: b.Name, Intents: b.Intents, Weight: b.Weight, Keywords: kw, Carried: b.Carried}
	}
	return &Classifier{buckets: normalized}
}

// Classify returns the intent of message given the recent history.
func (c *Classifier) Classify(message string, history []dialog.Message) Intent {
	return c.Score(message, history).Intent
}

// Score classifies message and reports how each intent scored. Keywords are matched
// on message alone. When the message points back to an earlier product ("et celle-ci
// en vert ?") and reads as nothing but small talk, the carried buckets are also
// matched on the recent user turns.
func (c *Classifier) Score(message string, history []dialog.Message) Result {
	scores := map[Intent]int{SimpleChat: 0, ProductChat: 0, ProductShow: 0}
	matched := c.match(textnorm.Normalize(message), scores, false, "")

	if utf8.RuneCountInString(strings.TrimSpace(message)) < shortMessageRunes &&
		scores[SimpleChat] > 0 && scores[ProductChat] == 0 && scores[ProductShow] == 0 {
		scores[SimpleChat] += shortMessageBoost
	}

	resolved := false
	if scores[SimpleChat] == 0 {
		if _, ok := dialog.ResolveReferences(message, history); ok {
			earlier := strings.Join(dialog.LastUserTurns(history, dialog.ReferenceTurns), " ")
			matched = append(matched, c.match(textnorm.Normalize(earlier), scores, true, "history:")...)
			resolved = true
		}
	}

	return Result{Intent: pick(scores), Scores: scores, Matched: matched, Resolved: resolved}
}

// match adds the weight of every keyword found in normalized to scores and returns
// the matched keywords. With carriedOnly set, other buckets are skipped.
func (c *Classifier) match(normalized string, scores map[Intent]int, carriedOnly bool, prefix string) []string {
	var matched []string
	for _, b := range c.buckets {
		if carriedOnly && !b.Carried {
			continue
		}
		for _, kw := range b.Keywords {
			if !textnorm.ContainsTerm(normalized, kw) {
				continue
			}
			matched = append(matched, prefix+b.Name+":"+kw)
			for _, in := range b.Intents {
				scores[in] += b.Weight
			}
		}
	}
	return matched
}

// pick returns the strict maximum, breaking ties by priority. All-zero scores
// default to SimpleChat.
func pick(scores map[Intent]int) Intent {
	best := SimpleChat
	bestScore := 0
	for _, in := range priority {
		if scores[in] > bestScore {
			best = in
			bestScore = scores[in]
		}
	}
	return best
}
