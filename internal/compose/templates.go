package compose

import (
	"fmt"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/prompt"
)

// templates holds the fixed replies for one language.
type templates struct {
	greeting       string // %s: assistant name
	technical      string
	foundOne       string
	foundMany      string // %d: count
	noResults      string // %s: attempted filters
	noResultsAny   string
	refineLead     string
	askStyle       string
	askRoom        string
	askFinish      string
	askBudget      string
	askBroaden     string // %s: product type
	askType        string
	askTypeWith    string // %s: known attributes
	anyRequest     string
	composeRules   string
	composeUser    string // %s: query, %s: fact sheets
	conversePolicy string
	stockIn        string
	stockOut       string
}

var byLanguage = map[string]templates{
	prompt.LanguageFrench: {
		greeting:     "Bonjour ! Je suis %s, votre assistant shopping. Que recherchez-vous aujourd'hui : canapé, table, luminaire… ?",
		technical:    "Je rencontre un petit souci technique, pouvez-vous réessayer dans un instant ?",
		foundOne:     "1 produit trouvé, voulez-vous plus de détails ?",
		foundMany:    "%d produits trouvés, voulez-vous plus de détails ?",
		noResults:    "Je n'ai trouvé aucun produit correspondant à « %s » pour le moment.",
		noResultsAny: "Je n'ai trouvé aucun produit correspondant à votre demande pour le moment.",
		refineLead:   "Pour affiner ma recherche :",
		askStyle:     "Quel style vous plairait : scandinave, moderne, industriel, bohème… ?",
		askRoom:      "Pour quelle pièce est-ce destiné (salon, chambre, salle à manger…) ?",
		askFinish:    "Avez-vous une couleur ou une matière de préférence ?",
		askBudget:    "Quel budget souhaitez-vous y consacrer ?",
		askBroaden:   "Souhaitez-vous que j'élargisse la recherche à d'autres modèles de %s ?",
		askType:      "Avec plaisir ! Quel type de produit recherchez-vous : canapé, table, chaise, luminaire, rangement… ?",
		askTypeWith:  "J'ai bien noté : %s. Quel type de produit souhaitez-vous : canapé, table, chaise, luminaire… ?",
		anyRequest:   "votre demande",
		composeRules: "Règles :\n" +
			"- Présente uniquement les produits fournis et uniquement les informations fournies, n'invente rien.\n" +
			"- Mentionne les promotions et les dimensions lorsqu'elles sont indiquées.\n" +
			"- Termine par une question ouverte pour aider le client à choisir.",
		composeUser: "Demande du client : %s\n\nProduits disponibles :\n%s",
		conversePolicy: "Tu réponds aux salutations et aux questions générales sur la décoration et l'ameublement. " +
			"Ne cite aucun produit précis ni aucun prix. Propose d'aider le client à trouver un produit.",
		stockIn:  "en stock",
		stockOut: "rupture de stock",
	},
	prompt.LanguageEnglish: {
		greeting:     "Hello! I'm %s, your shopping assistant. What are you looking for today: a sofa, a table, a lamp…?",
		technical:    "I'm having a technical issue, please try again in a moment.",
		foundOne:     "1 product found, want more details?",
		foundMany:    "%d products found, want more details?",
		noResults:    "I couldn't find any product matching \"%s\" right now.",
		noResultsAny: "I couldn't find any product matching your request right now.",
		refineLead:   "To refine the search:",
		askStyle:     "Which style do you like: Scandinavian, modern, industrial, boho…?",
		askRoom:      "Which room is it for (living room, bedroom, dining room…)?",
		askFinish:    "Do you have a preferred color or material?",
		askBudget:    "What budget do you have in mind?",
		askBroaden:   "Would you like me to widen the search to other %s models?",
		askType:      "Happy to help! What kind of product are you looking for: sofa, table, chair, lighting, storage…?",
		askTypeWith:  "Got it: %s. Which kind of product: sofa, table, chair, lamp…?",
		anyRequest:   "your request",
		composeRules: "Rules:\n" +
			"- Present only the supplied products and only the supplied facts, never invent anything.\n" +
			"- Mention promotions and dimensions when they are given.\n" +
			"- End with an open question that helps the customer choose.",
		composeUser: "Customer request: %s\n\nAvailable products:\n%s",
		conversePolicy: "You answer greetings and general questions about home decor and furniture. " +
			"Do not quote specific products or prices. Offer to help the customer find a product.",
		stockIn:  "in stock",
		stockOut: "out of stock",
	},
}

func templatesFor(language string) templates {
	if t, ok := byLanguage[language]; ok {
		return t
	}
	return byLanguage[prompt.LanguageFrench]
}

func (t templates) found(count int) string {
	if count == 1 {
		return t.foundOne
	}
	return fmt.Sprintf(t.foundMany, count)
}
