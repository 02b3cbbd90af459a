package catalog

import (
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// Term is one vocabulary entry: the canonical value stored in filters plus the
// other phrasings (plurals aside) that mean the same thing. All strings are normalized.
type Term struct {
	Value   string
	Aliases []string
}

// Phrases returns the value followed by its aliases.
func (t Term) Phrases() []string {
	return append([]string{t.Value}, t.Aliases...)
}

// Vocabulary is an ordered table. Order matters: more specific phrases come first so
// that "table basse" wins over "table".
type Vocabulary []Term

// Match returns the canonical value of the first entry, in table order, that appears
// in the normalized text.
func (v Vocabulary) Match(normalized string) (string, bool) {
	for _, term := range v {
		for _, phrase := range term.Phrases() {
			if textnorm.ContainsTerm(normalized, phrase) {
				return term.Value, true
			}
		}
	}
	return "", false
}

// Phrases flattens every value and alias of the table.
func (v Vocabulary) Phrases() []string {
	var out []string
	for _, term := range v {
		out = append(out, term.Phrases()...)
	}
	return out
}

// Types lists product types, most specific first.
var Types = Vocabulary{
	{"canape d'angle", []string{"canape angle", "corner sofa"}},
	{"canape convertible", []string{"canape lit", "sofa bed"}},
	{"table basse", []string{"coffee table"}},
	{"table a manger", []string{"table de salle a manger", "dining table"}},
	{"table de chevet", []string{"chevet", "nightstand", "bedside table"}},
	{"table d'appoint", []string{"bout de canape", "side table"}},
	{"chaise de bureau", []string{"fauteuil de bureau", "office chair"}},
	{"meuble tv", []string{"meuble television", "tv stand"}},
	{"tete de lit", []string{"headboard"}},
	{"canape", []string{"sofa", "couch"}},
	{"table", nil},
	{"chaise", []string{"chair"}},
	{"fauteuil", []string{"armchair"}},
	{"tabouret", []string{"stool"}},
	{"banc", []string{"bench"}},
	{"pouf", []string{"ottoman"}},
	{"lit", []string{"bed"}},
	{"matelas", []string{"mattress"}},
	{"commode", []string{"dresser"}},
	{"armoire", []string{"penderie", "wardrobe"}},
	{"bibliotheque", []string{"bookcase"}},
	{"etagere", []string{"shelf"}},
	{"buffet", []string{"bahut", "sideboard"}},
	{"console", nil},
	{"bureau", []string{"desk"}},
	{"lampadaire", []string{"floor lamp"}},
	{"suspension", []string{"pendant"}},
	{"lampe", []string{"lamp"}},
	{"miroir", []string{"mirror"}},
	{"tapis", []string{"rug"}},
	{"coussin", []string{"cushion"}},
	{"rideau", []string{"curtain"}},
	{"plaid", []string{"throw"}},
	{"vase", nil},
}

// Styles lists decor styles.
var Styles = Vocabulary{
	{"art deco", nil},
	{"mid century", []string{"mid-century"}},
	{"scandinave", []string{"scandinavian", "nordique"}},
	{"industriel", []string{"industrielle", "industrial"}},
	{"contemporain", []string{"contemporaine", "contemporary"}},
	{"moderne", []string{"modern"}},
	{"minimaliste", []string{"minimalist", "epure"}},
	{"vintage", []string{"retro"}},
	{"boheme", []string{"boho", "bohemian"}},
	{"rustique", []string{"campagne", "rustic"}},
	{"classique", []string{"classic"}},
	{"japandi", nil},
	{"baroque", nil},
}

// Colors lists colors, with feminine forms as aliases.
var Colors = Vocabulary{
	{"blanc", []string{"blanche", "white"}},
	{"noir", []string{"noire", "black"}},
	{"gris", []string{"grise", "anthracite", "grey", "gray"}},
	{"beige", []string{"creme", "ecru", "sable"}},
	{"bleu", []string{"bleue", "marine", "blue"}},
	{"vert", []string{"verte", "green"}},
	{"rouge", []string{"bordeaux", "red"}},
	{"jaune", []string{"moutarde", "yellow"}},
	{"rose", []string{"pink"}},
	{"marron", []string{"chocolat", "brown"}},
	{"orange", []string{"terracotta"}},
	{"violet", []string{"violette", "purple"}},
	{"dore", []string{"doree", "gold"}},
	{"argent", []string{"argente", "silver"}},
	{"naturel", []string{"naturelle", "natural"}},
}

// Materials lists materials, most specific first.
var Materials = Vocabulary{
	{"bois massif", []string{"solid wood"}},
	{"chene", []string{"oak"}},
	{"noyer", []string{"walnut"}},
	{"teck", []string{"teak"}},
	{"rotin", []string{"osier", "rattan", "wicker"}},
	{"bambou", []string{"bamboo"}},
	{"bois", []string{"wood", "wooden"}},
	{"fer forge", nil},
	{"metal", []string{"acier", "steel"}},
	{"laiton", []string{"brass"}},
	{"verre", []string{"glass"}},
	{"marbre", []string{"marble"}},
	{"travertin", nil},
	{"ceramique", []string{"ceramic"}},
	{"beton", []string{"concrete"}},
	{"simili cuir", []string{"faux cuir"}},
	{"cuir", []string{"leather"}},
	{"velours", []string{"velvet"}},
	{"bouclette", []string{"boucle"}},
	{"lin", []string{"linen"}},
	{"coton", []string{"cotton"}},
	{"laine", []string{"wool"}},
	{"tissu", []string{"fabric"}},
}

// Rooms lists rooms, most specific first.
var Rooms = Vocabulary{
	{"salle a manger", []string{"dining room"}},
	{"salle de bain", []string{"bathroom"}},
	{"chambre d'enfant", []string{"chambre enfant", "kids room"}},
	{"chambre", []string{"bedroom"}},
	{"salon", []string{"sejour", "living room"}},
	{"cuisine", []string{"kitchen"}},
	{"entree", []string{"hall", "hallway"}},
	{"terrasse", []string{"jardin", "exterieur", "outdoor"}},
}

// Pronouns are anaphoric words that point back to a product already discussed.
var Pronouns = []string{
	"la", "le", "les", "l'", "celle", "celui", "celles", "ceux", "ca", "cela", "ceci",
	"celle-ci", "celui-ci", "it", "them", "this one", "that one",
}

// CanonicalNouns are the single-word product nouns the ranker treats as a type anchor.
var CanonicalNouns = []string{
	"table", "chaise", "canape", "fauteuil", "tabouret", "banc", "pouf", "lit", "matelas",
	"commode", "armoire", "bibliotheque", "etagere", "buffet", "console", "bureau",
	"lampadaire", "lampe", "suspension", "miroir", "tapis", "coussin", "rideau", "vase",
	"sofa", "chair", "armchair", "bed", "desk", "lamp", "mirror", "rug", "shelf",
}

// HasPronoun reports whether the normalized text contains an anaphoric pronoun.
func HasPronoun(normalized string) bool {
	for _, p := range Pronouns {
		if p == "l'" {
			if containsElision(normalized) {
				return true
			}
			continue
		}
		if textnorm.ContainsTerm(normalized, p) {
			return true
		}
	}
	return false
}

// CanonicalNoun returns the canonical noun for a query word, tolerating plurals.
func CanonicalNoun(word string) (string, bool) {
	singular := textnorm.Singular(word)
	for _, n := range CanonicalNouns {
		if word == n || singular == n {
			return n, true
		}
	}
	return "", false
}

func containsElision(normalized string) bool {
	offset := 0
	for {
		idx := strings.Index(normalized[offset:], "l'")
		if idx < 0 {
			return false
		}
		at := offset + idx
		if at == 0 || normalized[at-1] == ' ' {
			return true
		}
		offset = at + 2
	}
}
