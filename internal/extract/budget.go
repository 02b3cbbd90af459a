package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
)

const (
	amount   = `(\d+(?:[.,]\d+)?)`
	currency = `(?:€|euros?\b|eur\b)`
)

var (
	betweenPattern = regexp.MustCompile(`(?:entre|between)\s+` + amount + `\s*` + currency + `?\s*(?:et|and|-)\s*` + amount)
	maxPattern     = regexp.MustCompile(`(?:moins de|max(?:imum)?|jusqu'a|pas plus de|budget(?: de)?|under|less than|below|up to)\s*:?\s*` + amount)
	minPattern     = regexp.MustCompile(`(?:plus de|minimum|a partir de|au moins|over|more than|at least)\s*:?\s*` + amount)
	currencyOnly   = regexp.MustCompile(amount + `\s*` + currency)
)

// ParseBudget reads a price range out of normalized text. It returns nil when the
// message states no budget.
func ParseBudget(normalized string) *catalog.PriceRange {
	if m := betweenPattern.FindStringSubmatch(normalized); m != nil {
		lo, hi := toAmount(m[1]), toAmount(m[2])
		if lo != nil && hi != nil {
			if *lo > *hi {
				lo, hi = hi, lo
			}
			return &catalog.PriceRange{Min: lo, Max: hi}
		}
	}

	var r catalog.PriceRange
	if m := maxPattern.FindStringSubmatch(normalized); m != nil {
		r.Max = toAmount(m[1])
	}
	// "pas plus de 300" is a maximum, not a minimum.
	if loc := minPattern.FindStringSubmatchIndex(normalized); loc != nil && !strings.HasSuffix(normalized[:loc[0]], "pas ") {
		r.Min = toAmount(normalized[loc[2]:loc[3]])
	}
	if r.IsZero() {
		if m := currencyOnly.FindStringSubmatch(normalized); m != nil {
			r.Max = toAmount(m[1])
		}
	}
	if r.IsZero() {
		return nil
	}
	return &r
}

func toAmount(number string) *float64 {
	v, err := strconv.ParseFloat(strings.Replace(number, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}
