// Package dialog holds the chat message type and the rolling history helpers used to
// carry context from one turn to the next.
package dialog

import (
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ReferenceTurns is how many past user turns are replayed to resolve a pronoun.
const ReferenceTurns = 3

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Window returns the last n messages of history, dropping empty and unknown-role entries.
func Window(history []Message, n int) []Message {
	clean := make([]Message, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case RoleUser, RoleAssistant, RoleSystem:
			clean = append(clean, m)
		}
	}
	if n >= 0 && len(clean) > n {
		clean = clean[len(clean)-n:]
	}
	return clean
}

// LastUserTurns returns the content of the last n user messages, oldest first.
func LastUserTurns(history []Message, n int) []string {
	var turns []string
	for i := len(history) - 1; i >= 0 && len(turns) < n; i-- {
		if history[i].Role == RoleUser && strings.TrimSpace(history[i].Content) != "" {
			turns = append(turns, history[i].Content)
		}
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}

// ResolveReferences prepends recent user turns to message when it contains an
// anaphoric pronoun and there is history to point back to. The second return value
// reports whether context was added.
func ResolveReferences(message string, history []Message) (string, bool) {
	if len(history) == 0 || !catalog.HasPronoun(textnorm.Normalize(message)) {
		return message, false
	}
	turns := LastUserTurns(history, ReferenceTurns)
	if len(turns) == 0 {
		return message, false
	}
	return strings.Join(append(turns, message), " "), true
}
