package compose

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
)

// DescriptionRunes caps the description carried in a fact sheet.
const DescriptionRunes = 200

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// factSheet renders the facts about p the model is allowed to use, one per line.
func factSheet(p catalog.Product, t templates) string {
	var b strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "  %s: %s\n", label, value)
		}
	}

	fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(p.Title))

	price := FormatPrice(p.Price, p.Currency)
	if pct, ok := p.DiscountPercent(); ok {
		price = fmt.Sprintf("%s (-%d%%, au lieu de %s)", price, pct, FormatPrice(*p.CompareAtPrice, p.Currency))
	}
	line("Prix", price)

	category := p.Category
	if p.SubCategory != "" && p.SubCategory != p.Category {
		category = strings.TrimSpace(category + " / " + p.SubCategory)
	}
	line("Catégorie", category)
	line("Style", p.Style)
	line("Couleur", p.EffectiveColor())
	line("Matière", p.EffectiveMaterial())
	line("Pièce", p.Room)
	line("Dimensions", p.Dimensions())
	line("Description", PlainText(p.Description, DescriptionRunes))
	line("Tags", strings.Join(p.Tags, ", "))

	stock := t.stockIn
	if !p.InStock() {
		stock = t.stockOut
	}
	line("Stock", stock)

	return strings.TrimRight(b.String(), "\n")
}

// PlainText strips markup from s, collapses whitespace and truncates to limit runes.
func PlainText(s string, limit int) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "…"
}

// FormatPrice prints a price with its currency, euro by default.
func FormatPrice(v float64, currency string) string {
	symbol := currency
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", "EUR", "€":
		symbol = "€"
	case "USD", "$":
		symbol = "$"
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f %s", v, symbol)
	}
	return fmt.Sprintf("%.2f %s", v, symbol)
}
