package intent

import "github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"

// Bucket weights.
const (
	WeightGreeting    = 10
	WeightShowVerb    = 20
	WeightAdvice      = 8
	WeightProductNoun = 5
)

// GreetingKeywords are small-talk markers.
var GreetingKeywords = []string{
	"bonjour", "bonsoir", "salut", "coucou", "hello", "hi", "hey",
	"merci", "thanks", "thank you", "comment ca va", "comment allez-vous",
	"qui es-tu", "qui etes-vous", "au revoir", "bye", "bonne journee", "bonne soiree",
}

// ShowVerbs are explicit requests to see products.
var ShowVerbs = []string{
	"montre", "montrez", "cherche", "recherche", "trouve", "trouver", "trouvez",
	"je veux", "je voudrais", "liste", "affiche", "propose", "proposez",
	"avez-vous", "vous avez", "tu as", "as-tu", "il me faut",
	"show me", "find", "search", "looking for", "i want", "i need", "do you have",
}

// AdviceKeywords signal a question about products rather than a request to list them.
var AdviceKeywords = []string{
	"conseil", "conseille", "conseiller", "avis", "qualite", "difference", "comparer",
	"compare", "recommande", "recommandation", "lequel", "laquelle", "entretien",
	"entretenir", "garantie", "livraison", "solide", "resistant", "durable", "confortable",
	"advice", "recommend", "quality", "which one", "warranty", "delivery",
}

// GenericProductNouns complement the product type table.
var GenericProductNouns = []string{
	"meuble", "mobilier", "decoration", "deco", "produit", "article", "furniture",
}

// DefaultBuckets builds the keyword tables. Product nouns come from the shared type
// vocabulary so the classifier and the extractor agree on what a product is.
func DefaultBuckets() []Bucket {
	nouns := append(catalog.Types.Phrases(), GenericProductNouns...)
	return []Bucket{
		{Name: "greeting", Intents: []Intent{SimpleChat}, Weight: WeightGreeting, Keywords: GreetingKeywords},
		{Name: "show", Intents: []Intent{ProductShow}, Weight: WeightShowVerb, Keywords: ShowVerbs},
		{Name: "advice", Intents: []Intent{ProductChat}, Weight: WeightAdvice, Keywords: AdviceKeywords},
		{Name: "product", Intents: []Intent{ProductChat, ProductShow}, Weight: WeightProductNoun, Keywords: nouns, Carried: true},
	}
}
