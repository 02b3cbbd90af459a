// Package compose writes the assistant's reply for each branch of a turn: product
// presentations, zero-result recoveries, qualifying questions and small talk. Every
// method returns text; completion failures fall back to fixed templates.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
)

// MaxQuestions caps the follow-up questions of a zero-result reply.
const MaxQuestions = 4

// Composer writes replies in the configured persona.
type Composer struct {
	completer llm.Completer
	settings  prompt.Settings
	text      templates
	logger    *observability.Logger
}

// New returns a Composer. A nil completer makes every reply template-based.
func New(completer llm.Completer, settings prompt.Settings, logger *observability.Logger) *Composer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	settings = settings.Normalized()
	return &Composer{
		completer: completer,
		settings:  settings,
		text:      templatesFor(settings.Language),
		logger:    logger.WithOperation("compose"),
	}
}

// Compose presents products for rawQuery. With no products it apologises and asks
// how to refine the search.
func (c *Composer) Compose(ctx context.Context, products []catalog.ScoredProduct, rawQuery string, filter catalog.AttributeFilter) string {
	if len(products) == 0 {
		return c.NoResults(filter)
	}

	sheets := make([]string, len(products))
	for i, p := range products {
		sheets[i] = factSheet(p.Product, c.text)
	}

	system := strings.Join([]string{
		c.settings.Persona(),
		c.settings.StyleInstruction(),
		c.text.composeRules,
	}, "\n\n")
	user := fmt.Sprintf(c.text.composeUser, rawQuery, strings.Join(sheets, "\n"))

	reply, ok := c.complete(ctx, "compose", []dialog.Message{
		{Role: dialog.RoleSystem, Content: system},
		{Role: dialog.RoleUser, Content: user},
	})
	if !ok {
		return c.text.found(len(products))
	}
	return reply
}

// NoResults explains that nothing matched filter and asks up to MaxQuestions
// questions about what is still unknown.
func (c *Composer) NoResults(filter catalog.AttributeFilter) string {
	var b strings.Builder
	if desc := Describe(filter); desc != "" {
		fmt.Fprintf(&b, c.text.noResults, desc)
	} else {
		b.WriteString(c.text.noResultsAny)
	}

	b.WriteString("\n\n")
	b.WriteString(c.text.refineLead)
	for _, q := range c.questions(filter) {
		b.WriteString("\n- ")
		b.WriteString(q)
	}
	return b.String()
}

func (c *Composer) questions(filter catalog.AttributeFilter) []string {
	var qs []string
	if filter.Style == "" {
		qs = append(qs, c.text.askStyle)
	}
	if filter.Room == "" {
		qs = append(qs, c.text.askRoom)
	}
	if filter.Color == "" || filter.Material == "" {
		qs = append(qs, c.text.askFinish)
	}
	if filter.PriceRange.IsZero() {
		qs = append(qs, c.text.askBudget)
	}
	if len(qs) == 0 {
		subject := filter.Type
		if subject == "" {
			subject = c.text.anyRequest
		}
		qs = append(qs, fmt.Sprintf(c.text.askBroaden, subject))
	}
	if len(qs) > MaxQuestions {
		qs = qs[:MaxQuestions]
	}
	return qs
}

// Qualify asks for the missing product type, acknowledging any attribute already
// given. It never calls the completion service.
func (c *Composer) Qualify(filter catalog.AttributeFilter) string {
	var known []string
	for _, v := range []string{filter.Style, filter.Color, filter.Material, filter.Room} {
		if v != "" {
			known = append(known, v)
		}
	}
	if len(known) == 0 {
		return c.text.askType
	}
	return fmt.Sprintf(c.text.askTypeWith, strings.Join(known, ", "))
}

// Converse answers small talk with the recent history as context.
func (c *Composer) Converse(ctx context.Context, message string, history []dialog.Message) string {
	system := strings.Join([]string{
		c.settings.Persona(),
		c.settings.StyleInstruction(),
		c.text.conversePolicy,
	}, "\n\n")

	messages := []dialog.Message{{Role: dialog.RoleSystem, Content: system}}
	messages = append(messages, history...)
	messages = append(messages, dialog.Message{Role: dialog.RoleUser, Content: message})

	reply, ok := c.complete(ctx, "converse", messages)
	if !ok {
		return c.Greeting()
	}
	return reply
}

// Greeting is the scripted welcome.
func (c *Composer) Greeting() string {
	return fmt.Sprintf(c.text.greeting, c.settings.Name)
}

// TechnicalIssue is the worst-case reply shown to a user.
func (c *Composer) TechnicalIssue() string {
	return c.text.technical
}

func (c *Composer) complete(ctx context.Context, operation string, messages []dialog.Message) (string, bool) {
	if c.completer == nil {
		return "", false
	}
	reply, err := c.completer.Complete(llm.WithOperation(ctx, operation), messages, c.settings.MaxTokens())
	if err != nil {
		c.logger.WithContext(ctx).Warn().Err(err).Str("step", operation).Msg("Completion failed, using template reply")
		return "", false
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", false
	}
	return reply, true
}

// Describe renders the attempted filters as "type style room".
func Describe(filter catalog.AttributeFilter) string {
	var parts []string
	for _, v := range []string{filter.Type, filter.Style, filter.Room} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
