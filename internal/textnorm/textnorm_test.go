package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase", "Canapé", "canape"},
		{"trim", "  Table Basse  ", "table basse"},
		{"cedilla", "Ça va", "ca va"},
		{"many accents", "Élégant fauteuil en velours côtelé", "elegant fauteuil en velours cotele"},
		{"digits untouched", "123456", "123456"},
		{"ligature kept", "cœur", "cœur"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "Bonjour", "  ÉTAGÈRE  ", "İstanbul", "naïve café", "\xff\xfe broken", "Ｆｕｌｌ width",
		"tu as ça en bleu ?", "canapé d'angle convertible",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"cherche", "une", "table", "basse", "scandinave", "bois"},
		Terms("Je cherche une table basse scandinave en bois"))
	assert.Empty(t, Terms("a le en"))
	assert.Equal(t, []string{"montre", "moi", "des", "chaises"}, Terms("montre-moi des chaises"))
}

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"je cherche une table basse", "table basse", true},
		{"je cherche une table basse", "table", true},
		{"montre-moi des chaises", "chaise", true},
		{"des bureaux", "bureau", true},
		{"la qualite est bonne", "lit", false},
		{"un lit double", "lit", true},
		{"portable", "table", false},
		{"tables", "table", true},
		{"tablesx", "table", false},
		{"", "table", false},
		{"table", "", false},
		{"canape d'angle", "canape d'angle", true},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsTerm(tt.text, tt.term))
		})
	}
}

func TestFirstMatch_HonorsOrder(t *testing.T) {
	table := []string{"table basse", "table"}
	got, ok := FirstMatch("une table basse ronde", table)
	assert.True(t, ok)
	assert.Equal(t, "table basse", got)

	_, ok = FirstMatch("un miroir", table)
	assert.False(t, ok)
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "chaise", Singular("chaises"))
	assert.Equal(t, "bureau", Singular("bureaux"))
	assert.Equal(t, "lit", Singular("lit"))
	assert.Equal(t, "bas", Singular("bas"))
}
