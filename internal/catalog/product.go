// Package catalog defines the product value objects shared by search, ranking and
// composition, along with the vocabulary tables used to read shopping queries.
package catalog

import (
	"fmt"
	"math"
	"strings"
)

// StatusActive is the only product status visible to shoppers.
const StatusActive = "active"

// Product is a read-only catalog row.
type Product struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Handle            string   `json:"handle,omitempty"`
	Description       string   `json:"description,omitempty"`
	Price             float64  `json:"price"`
	CompareAtPrice    *float64 `json:"compare_at_price,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	Category          string   `json:"category,omitempty"`
	SubCategory       string   `json:"sub_category,omitempty"`
	ProductType       string   `json:"product_type,omitempty"`
	Vendor            string   `json:"vendor,omitempty"`
	Style             string   `json:"style,omitempty"`
	Color             string   `json:"color,omitempty"`
	AIColor           string   `json:"ai_color,omitempty"`
	Material          string   `json:"material,omitempty"`
	AIMaterial        string   `json:"ai_material,omitempty"`
	AIShape           string   `json:"ai_shape,omitempty"`
	Room              string   `json:"room,omitempty"`
	Tags              []string `json:"tags"`
	ImageURL          string   `json:"image_url,omitempty"`
	InventoryQuantity *int     `json:"inventory_quantity,omitempty"`
	Width             *float64 `json:"width,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	Length            *float64 `json:"length,omitempty"`
	DimensionUnit     string   `json:"dimension_unit,omitempty"`
	ShopName          string   `json:"shop_name,omitempty"`
	StoreID           string   `json:"store_id,omitempty"`
	SellerID          string   `json:"seller_id,omitempty"`
	Status            string   `json:"status,omitempty"`
}

// ScoredProduct pairs a product with the relevance score computed for one query.
type ScoredProduct struct {
	Product
	RelevanceScore int `json:"relevanceScore"`
}

// DiscountPercent returns the rounded discount when CompareAtPrice exceeds Price.
func (p Product) DiscountPercent() (int, bool) {
	if p.CompareAtPrice == nil || *p.CompareAtPrice <= p.Price || *p.CompareAtPrice <= 0 {
		return 0, false
	}
	return int(math.Round((*p.CompareAtPrice - p.Price) / *p.CompareAtPrice * 100)), true
}

// Dimensions formats width x height x length with the unit, skipping missing values.
func (p Product) Dimensions() string {
	var parts []string
	for _, d := range []struct {
		label string
		value *float64
	}{{"L", p.Width}, {"H", p.Height}, {"P", p.Length}} {
		if d.value != nil && *d.value > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", d.label, trimFloat(*d.value)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	unit := p.DimensionUnit
	if unit == "" {
		unit = "cm"
	}
	return strings.Join(parts, " x ") + " " + unit
}

// EffectiveColor prefers the AI-derived color over the merchant one.
func (p Product) EffectiveColor() string {
	if p.AIColor != "" {
		return p.AIColor
	}
	return p.Color
}

// EffectiveMaterial prefers the AI-derived material over the merchant one.
func (p Product) EffectiveMaterial() string {
	if p.AIMaterial != "" {
		return p.AIMaterial
	}
	return p.Material
}

// InStock reports whether stock is unknown or positive.
func (p Product) InStock() bool {
	return p.InventoryQuantity == nil || *p.InventoryQuantity > 0
}

// SearchText is the searchable concatenation stored alongside each row.
func (p Product) SearchText() string {
	fields := []string{
		p.Title, p.Description, strings.Join(p.Tags, " "), p.Category, p.SubCategory,
		p.ProductType, p.Vendor, p.Color, p.AIColor, p.Material, p.AIMaterial, p.AIShape,
		p.Style, p.Room,
	}
	nonEmpty := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
