// Package extract turns a shopping message into a structured attribute filter.
//
// Extraction is two-tier. A keyword fast path reads the shared vocabulary tables and
// answers without any network call whenever a product type is recognised. Only when
// no type is found does the extractor ask the completion service for a JSON object.
// Every failure of that second tier degrades to need_qualification.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// ContextTurns is how many history messages accompany the LLM extraction prompt.
const ContextTurns = 2

// ErrNoJSON is returned when a completion holds no JSON object.
var ErrNoJSON = errors.New("extract: no json object in completion")

// Extractor reads attribute filters from messages.
type Extractor struct {
	completer llm.Completer
	logger    *observability.Logger
	schema    string
}

// New returns an Extractor. completer may be nil, in which case messages without a
// recognised product type always need qualification.
func New(completer llm.Completer, logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Extractor{
		completer: completer,
		logger:    logger.WithOperation("extract"),
		schema:    filterSchema(),
	}
}

// Extract returns the filter for message. It never fails: anything it cannot read
// becomes need_qualification.
func (e *Extractor) Extract(ctx context.Context, message string, history []dialog.Message) catalog.AttributeFilter {
	if f, ok := FastPath(message); ok {
		return f
	}

	if resolved, ok := dialog.ResolveReferences(message, history); ok {
		if f, found := FastPath(resolved); found {
			// The current message wins for anything it states itself.
			return merge(Scan(message), f)
		}
		message = resolved
	}

	return e.fromCompletion(ctx, message, history)
}

// FastPath recognises a product type and its attributes from the keyword tables.
// ok is false when no product type appears in text.
func FastPath(text string) (catalog.AttributeFilter, bool) {
	f := Scan(text)
	if f.Type == "" {
		return catalog.AttributeFilter{}, false
	}
	f.Intent = catalog.IntentProductSearch
	return f, true
}

// Scan fills every attribute it finds in text, one value per attribute, first table
// match wins. Intent is left empty.
func Scan(text string) catalog.AttributeFilter {
	normalized := textnorm.Normalize(text)
	var f catalog.AttributeFilter
	f.Type, _ = catalog.Types.Match(normalized)
	f.Style, _ = catalog.Styles.Match(normalized)
	f.Color, _ = catalog.Colors.Match(normalized)
	f.Material, _ = catalog.Materials.Match(normalized)
	f.Room, _ = catalog.Rooms.Match(normalized)
	f.PriceRange = ParseBudget(normalized)
	return f
}

// merge overlays the non-empty attributes of primary onto fallback.
func merge(primary, fallback catalog.AttributeFilter) catalog.AttributeFilter {
	out := fallback
	if primary.Type != "" {
		out.Type = primary.Type
	}
	if primary.Style != "" {
		out.Style = primary.Style
	}
	if primary.Color != "" {
		out.Color = primary.Color
	}
	if primary.Material != "" {
		out.Material = primary.Material
	}
	if primary.Room != "" {
		out.Room = primary.Room
	}
	if !primary.PriceRange.IsZero() {
		out.PriceRange = primary.PriceRange
	}
	if primary.Size != "" {
		out.Size = primary.Size
	}
	return out
}

func (e *Extractor) fromCompletion(ctx context.Context, message string, history []dialog.Message) catalog.AttributeFilter {
	log := e.logger.WithContext(ctx)

	if e.completer == nil {
		return catalog.NeedQualification()
	}

	messages := []dialog.Message{{Role: dialog.RoleSystem, Content: e.systemPrompt()}}
	messages = append(messages, dialog.Window(history, ContextTurns)...)
	messages = append(messages, dialog.Message{Role: dialog.RoleUser, Content: message})

	reply, err := e.completer.Complete(llm.WithOperation(ctx, "extract"), messages, prompt.ExtractionMaxTokens)
	if err != nil {
		log.Warn().Err(err).Msg("Attribute extraction completion failed, asking for qualification")
		return catalog.NeedQualification()
	}

	f, err := ParseFilter(reply)
	if err != nil {
		log.Warn().Err(err).Str("reply", truncate(reply, 200)).Msg("Unreadable extraction reply, asking for qualification")
		return catalog.NeedQualification()
	}

	log.Debug().Str("intent", f.Intent).Str("type", f.Type).Msg("Attributes extracted by completion")
	return f
}

// ParseFilter decodes the first {...} span of a completion into a filter. A search
// without a type is downgraded to need_qualification.
func ParseFilter(reply string) (catalog.AttributeFilter, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return catalog.AttributeFilter{}, ErrNoJSON
	}

	var f catalog.AttributeFilter
	if err := json.Unmarshal([]byte(reply[start:end+1]), &f); err != nil {
		return catalog.AttributeFilter{}, fmt.Errorf("decode extraction json: %w", err)
	}

	f.Type = textnorm.Normalize(f.Type)
	f.Style = textnorm.Normalize(f.Style)
	f.Color = textnorm.Normalize(f.Color)
	f.Material = textnorm.Normalize(f.Material)
	f.Room = textnorm.Normalize(f.Room)
	f.Size = strings.TrimSpace(f.Size)
	if f.PriceRange.IsZero() {
		f.PriceRange = nil
	}

	if f.Intent != catalog.IntentProductSearch || f.Type == "" {
		f.Intent = catalog.IntentNeedQualification
	}
	return f, nil
}

func (e *Extractor) systemPrompt() string {
	var b strings.Builder
	b.WriteString("Tu analyses des demandes de clients d'une boutique de mobilier et de décoration.\n")
	b.WriteString("Réponds UNIQUEMENT avec un objet JSON, sans texte autour, conforme à ce schéma :\n")
	b.WriteString(e.schema)
	b.WriteString("\nRègles :\n")
	b.WriteString("- intent vaut exactement \"product_search\" si un type de produit est identifiable, sinon \"need_qualification\".\n")
	b.WriteString("- type est le type de produit au singulier, en français (ex: \"table basse\", \"canapé\").\n")
	b.WriteString("- price_range est un objet {\"min\": nombre, \"max\": nombre}; omets les champs inconnus.\n")
	b.WriteString("- N'invente aucune valeur absente de la demande ou du contexte.")
	return b.String()
}

func filterSchema() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	data, err := json.Marshal(reflector.Reflect(&catalog.AttributeFilter{}))
	if err != nil {
		return `{"type":"object"}`
	}
	return string(data)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
