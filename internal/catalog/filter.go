package catalog

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Extraction intents carried in AttributeFilter.Intent.
const (
	IntentProductSearch     = "product_search"
	IntentNeedQualification = "need_qualification"
)

// AttributeFilter is the structured reading of one shopping query.
type AttributeFilter struct {
	Intent     string      `json:"intent" jsonschema:"enum=product_search,enum=need_qualification"`
	Type       string      `json:"type,omitempty" jsonschema:"description=Product type such as table basse or canape"`
	Style      string      `json:"style,omitempty"`
	Color      string      `json:"color,omitempty"`
	Material   string      `json:"material,omitempty"`
	Room       string      `json:"room,omitempty"`
	PriceRange *PriceRange `json:"price_range,omitempty"`
	Size       string      `json:"size,omitempty"`
}

// NeedQualification is the safe default returned whenever extraction cannot decide.
func NeedQualification() AttributeFilter {
	return AttributeFilter{Intent: IntentNeedQualification}
}

// Searchable reports whether the filter carries enough to run a catalog search.
func (f AttributeFilter) Searchable() bool {
	return f.Intent == IntentProductSearch && strings.TrimSpace(f.Type) != ""
}

// PriceRange bounds a search by price. Either bound may be absent.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r *PriceRange) IsZero() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// UnmarshalJSON accepts {"min":..,"max":..}, a "200-400" style string, or a bare
// number read as a maximum. Unrecognised shapes decode to an empty range.
func (r *PriceRange) UnmarshalJSON(data []byte) error {
	*r = PriceRange{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		r.Min = looseNumber(raw["min"])
		r.Max = looseNumber(raw["max"])
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*r = ParsePriceText(s)
	default:
		r.Max = looseNumber(data)
	}
	return nil
}

// ParsePriceText reads "200-400", "200 a 400" or "400" into a range. A single
// number is a maximum.
func ParsePriceText(s string) PriceRange {
	nums := numberPattern.FindAllString(s, 2)
	switch len(nums) {
	case 0:
		return PriceRange{}
	case 1:
		return PriceRange{Max: parseNumber(nums[0])}
	default:
		lo, hi := parseNumber(nums[0]), parseNumber(nums[1])
		if lo != nil && hi != nil && *lo > *hi {
			lo, hi = hi, lo
		}
		return PriceRange{Min: lo, Max: hi}
	}
}

func looseNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n := numberPattern.FindString(s); n != "" {
			return parseNumber(n)
		}
	}
	return nil
}

func parseNumber(s string) *float64 {
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &f
}
