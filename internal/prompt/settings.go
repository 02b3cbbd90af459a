// Package prompt maps the assistant persona (tone, response length, language) to token
// budgets and the phrasing instructions placed in every system prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
)

// Tones.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneEnthusiastic = "enthusiastic"
	ToneCasual       = "casual"
)

// Response lengths.
const (
	LengthConcise  = "concise"
	LengthBalanced = "balanced"
	LengthDetailed = "detailed"
)

// Languages.
const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)

// ExtractionMaxTokens bounds the JSON extraction call regardless of persona.
const ExtractionMaxTokens = 200

var lengthBudget = map[string]struct {
	tokens int
	words  int
}{
	LengthConcise:  {150, 60},
	LengthBalanced: {300, 150},
	LengthDetailed: {500, 250},
}

var toneInstruction = map[string]string{
	ToneProfessional: "Adopte un ton professionnel, courtois et précis. Vouvoie le client.",
	ToneFriendly:     "Adopte un ton chaleureux et bienveillant, comme un conseiller de confiance.",
	ToneEnthusiastic: "Adopte un ton enthousiaste et positif, avec de l'énergie sans exagérer.",
	ToneCasual:       "Adopte un ton décontracté et simple. Tu peux tutoyer le client.",
}

// Settings is the assistant persona.
type Settings struct {
	Name           string
	Tone           string
	ResponseLength string
	Language       string
}

// DefaultSettings is a friendly, balanced French-speaking assistant.
func DefaultSettings() Settings {
	return Settings{Name: "OmnIA", Tone: ToneFriendly, ResponseLength: LengthBalanced, Language: LanguageFrench}
}

// FromConfig builds Settings from the assistant section, falling back to defaults for
// unknown values.
func FromConfig(cfg config.AssistantConfig) Settings {
	s := Settings{Name: cfg.Name, Tone: cfg.Tone, ResponseLength: cfg.ResponseLength, Language: cfg.Language}
	return s.normalized()
}

// Normalized replaces empty or unknown fields with the defaults.
func (s Settings) Normalized() Settings {
	return s.normalized()
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if strings.TrimSpace(s.Name) == "" {
		s.Name = d.Name
	}
	if _, ok := toneInstruction[s.Tone]; !ok {
		s.Tone = d.Tone
	}
	if _, ok := lengthBudget[s.ResponseLength]; !ok {
		s.ResponseLength = d.ResponseLength
	}
	if s.Language != LanguageFrench && s.Language != LanguageEnglish {
		s.Language = d.Language
	}
	return s
}

// MaxTokens is the completion budget for conversational and composed replies.
func (s Settings) MaxTokens() int {
	return lengthBudget[s.normalized().ResponseLength].tokens
}

// MaxWords is the word cap stated in the instructions.
func (s Settings) MaxWords() int {
	return lengthBudget[s.normalized().ResponseLength].words
}

// StyleInstruction returns the tone, length and language instruction.
func (s Settings) StyleInstruction() string {
	s = s.normalized()
	language := "Réponds toujours en français."
	if s.Language == LanguageEnglish {
		language = "Always answer in English."
	}
	return fmt.Sprintf("%s Limite ta réponse à %d mots environ. %s", toneInstruction[s.Tone], s.MaxWords(), language)
}

// Persona is the opening line of every system prompt.
func (s Settings) Persona() string {
	s = s.normalized()
	return fmt.Sprintf("Tu es %s, l'assistant shopping d'une boutique de mobilier et de décoration.", s.Name)
}
