package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "1"},
		{Role: RoleAssistant, Content: "2"},
		{Role: "tool", Content: "ignored"},
		{Role: RoleUser, Content: "   "},
		{Role: RoleUser, Content: "3"},
		{Role: RoleAssistant, Content: "4"},
	}

	got := Window(history, 3)
	assert.Equal(t, []Message{
		{Role: RoleAssistant, Content: "2"},
		{Role: RoleUser, Content: "3"},
		{Role: RoleAssistant, Content: "4"},
	}, got)

	assert.Len(t, Window(history, 10), 4)
	assert.Empty(t, Window(history, 0))
	assert.Empty(t, Window(nil, 6))
}

func TestLastUserTurns(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "x"},
		{Role: RoleUser, Content: "b"},
		{Role: RoleUser, Content: "c"},
		{Role: RoleAssistant, Content: "y"},
		{Role: RoleUser, Content: "d"},
	}
	assert.Equal(t, []string{"b", "c", "d"}, LastUserTurns(history, 3))
	assert.Equal(t, []string{"d"}, LastUserTurns(history, 1))
	assert.Empty(t, LastUserTurns(nil, 3))
}

func TestResolveReferences(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "montre-moi des chaises"},
		{Role: RoleAssistant, Content: "Voici trois chaises."},
	}

	got, resolved := ResolveReferences("tu as ça en bleu ?", history)
	assert.True(t, resolved)
	assert.Equal(t, "montre-moi des chaises tu as ça en bleu ?", got)

	got, resolved = ResolveReferences("une table basse", history)
	assert.False(t, resolved)
	assert.Equal(t, "une table basse", got)

	got, resolved = ResolveReferences("tu as ça en bleu ?", nil)
	assert.False(t, resolved)
	assert.Equal(t, "tu as ça en bleu ?", got)

	_, resolved = ResolveReferences("je la veux", []Message{{Role: RoleAssistant, Content: "Bonjour"}})
	assert.False(t, resolved)
}
