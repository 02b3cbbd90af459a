package storage

import (
	"fmt"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

// DefaultSearchLimit caps a query that sets no limit.
const DefaultSearchLimit = 12

// termColumns are the searchable text columns a query term is matched against.
var termColumns = []string{
	"title", "description", "tags", "category", "sub_category", "product_type",
	"vendor", "ai_color", "ai_material", "style", "room", "search_text",
}

// ProductQuery is a catalog lookup. Terms and attribute values are normalized before
// matching, so "chene" and "chêne" find the same rows.
type ProductQuery struct {
	// Terms are OR-combined: a row matches when any term appears in any column.
	Terms      []string
	Color      string
	Material   string
	Style      string
	Room       string
	PriceRange *catalog.PriceRange
	ScopeID    string
	Limit      int
}

// Unscoped returns a copy of q without the store/seller restriction.
func (q ProductQuery) Unscoped() ProductQuery {
	q.ScopeID = ""
	return q
}

// build renders q as SQL with $N placeholders numbered in order of first use, which
// both lib/pq and go-sqlite3 bind positionally.
func (q ProductQuery) build() (string, []interface{}) {
	b := &queryBuilder{}
	b.where("status = " + b.arg(catalog.StatusActive))

	if q.ScopeID != "" {
		p := b.arg(q.ScopeID)
		b.where(fmt.Sprintf("(store_id = %s OR seller_id = %s)", p, p))
	}

	var anyTerm []string
	for _, term := range q.Terms {
		if term = strings.TrimSpace(term); term == "" {
			continue
		}
		anyTerm = append(anyTerm, b.likeAny(term, termColumns...))
	}
	if len(anyTerm) > 0 {
		b.where("(" + strings.Join(anyTerm, " OR ") + ")")
	}

	// Attribute columns hold normalized copies written at upsert.
	for _, attr := range []struct{ value, column string }{
		{q.Color, "color_text"},
		{q.Material, "material_text"},
		{q.Style, "style_text"},
		{q.Room, "room_text"},
	} {
		if strings.TrimSpace(attr.value) != "" {
			b.where("(" + b.likeAny(attr.value, attr.column) + ")")
		}
	}

	if q.PriceRange != nil {
		if q.PriceRange.Min != nil {
			b.where("price >= " + b.arg(*q.PriceRange.Min))
		}
		if q.PriceRange.Max != nil {
			b.where("price <= " + b.arg(*q.PriceRange.Max))
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := "SELECT " + productColumns + " FROM products WHERE " +
		strings.Join(b.conds, " AND ") + " ORDER BY id LIMIT " + b.arg(limit)
	return query, b.args
}

type queryBuilder struct {
	conds []string
	args  []interface{}
}

func (b *queryBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

// likeAny matches value as a case-insensitive substring of any of columns.
func (b *queryBuilder) likeAny(value string, columns ...string) string {
	p := b.arg(likePattern(value))
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE %s", col, p)
	}
	return strings.Join(parts, " OR ")
}

func likePattern(value string) string {
	value = strings.NewReplacer("%", "", "_", "").Replace(textnorm.Normalize(value))
	return "%" + value + "%"
}
