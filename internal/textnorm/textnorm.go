// Package textnorm provides accent- and case-insensitive text normalization and
// whole-word term matching used by every keyword table in the engine.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTermLength is the minimum rune length (exclusive) of a query term.
const MinTermLength = 2

// Normalize lowercases s, strips diacritics and trims surrounding whitespace.
// It is total over any input and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain keeps state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// Terms normalizes text and splits it into words longer than MinTermLength runes.
func Terms(text string) []string {
	words := strings.FieldsFunc(Normalize(text), isSeparator)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > MinTermLength {
			terms = append(terms, w)
		}
	}
	return terms
}

// Words normalizes text and splits it on anything that is not a letter or digit.
func Words(text string) []string {
	return strings.FieldsFunc(Normalize(text), isSeparator)
}

// ContainsTerm reports whether the already-normalized text contains term as a whole
// word or phrase. A trailing plural "s" or "x" on the text side is tolerated, so
// "chaise" matches "chaises" while "lit" does not match "qualite".
func ContainsTerm(text, term string) bool {
	if term == "" || text == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

// FirstMatch returns the first entry of table found in text, honoring table order.
func FirstMatch(text string, table []string) (string, bool) {
	for _, entry := range table {
		if ContainsTerm(text, entry) {
			return entry, true
		}
	}
	return "", false
}

// Singular strips one trailing plural marker from a normalized word.
func Singular(word string) string {
	if utf8.RuneCountInString(word) > 3 && (strings.HasSuffix(word, "s") || strings.HasSuffix(word, "x")) {
		return word[:len(word)-1]
	}
	return word
}

func boundaryBefore(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return isSeparator(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, size := utf8.DecodeRuneInString(text[end:])
	if isSeparator(r) {
		return true
	}
	if r == 's' || r == 'x' {
		next := end + size
		if next >= len(text) {
			return true
		}
		r2, _ := utf8.DecodeRuneInString(text[next:])
		return isSeparator(r2)
	}
	return false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
