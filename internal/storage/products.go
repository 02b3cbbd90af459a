package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/textnorm"
)

const productColumns = `id, title, handle, description, price, compare_at_price, currency,
	category, sub_category, product_type, vendor, style, color, ai_color, material,
	ai_material, ai_shape, room, tags, image_url, inventory_quantity, width, height,
	length, dimension_unit, shop_name, store_id, seller_id, status`

// ProductRepository reads and seeds catalog products.
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts the product or replaces the stored row with the same id. An empty
// id is assigned a new UUID and an empty status defaults to active.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = catalog.StatusActive
	}

	query := `
		INSERT INTO products (` + productColumns + `, search_text,
			color_text, material_text, style_text, room_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, handle = excluded.handle, description = excluded.description,
			price = excluded.price, compare_at_price = excluded.compare_at_price,
			currency = excluded.currency, category = excluded.category,
			sub_category = excluded.sub_category, product_type = excluded.product_type,
			vendor = excluded.vendor, style = excluded.style, color = excluded.color,
			ai_color = excluded.ai_color, material = excluded.material,
			ai_material = excluded.ai_material, ai_shape = excluded.ai_shape, room = excluded.room,
			tags = excluded.tags, image_url = excluded.image_url,
			inventory_quantity = excluded.inventory_quantity, width = excluded.width,
			height = excluded.height, length = excluded.length,
			dimension_unit = excluded.dimension_unit, shop_name = excluded.shop_name,
			store_id = excluded.store_id, seller_id = excluded.seller_id, status = excluded.status,
			search_text = excluded.search_text, color_text = excluded.color_text,
			material_text = excluded.material_text, style_text = excluded.style_text,
			room_text = excluded.room_text, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, nullString(p.Handle), nullString(p.Description), p.Price,
		p.CompareAtPrice, nullString(p.Currency), nullString(p.Category),
		nullString(p.SubCategory), nullString(p.ProductType), nullString(p.Vendor),
		nullString(p.Style), nullString(p.Color), nullString(p.AIColor),
		nullString(p.Material), nullString(p.AIMaterial), nullString(p.AIShape),
		nullString(p.Room), strings.Join(p.Tags, ","), nullString(p.ImageURL),
		p.InventoryQuantity, p.Width, p.Height, p.Length, nullString(p.DimensionUnit),
		nullString(p.ShopName), nullString(p.StoreID), nullString(p.SellerID), p.Status,
		textnorm.Normalize(p.SearchText()),
		normalizedText(p.AIColor, p.Color, p.Title),
		normalizedText(p.AIMaterial, p.Material, p.Title),
		normalizedText(append([]string{p.Style}, p.Tags...)...),
		normalizedText(append([]string{p.Room}, p.Tags...)...),
	)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Count returns the number of active products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE status = $1`, catalog.StatusActive).Scan(&n)
	return n, err
}

// Search runs q against active products. Rows come back in id order.
func (r *ProductRepository) Search(ctx context.Context, q ProductQuery) ([]catalog.Product, error) {
	query, args := q.build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var (
		p                                                 catalog.Product
		handle, description, currency, category, subCat   sql.NullString
		productType, vendor, style, color, aiColor        sql.NullString
		material, aiMaterial, aiShape, room, tags         sql.NullString
		imageURL, unit, shopName, storeID, sellerID       sql.NullString
		compareAt, width, height, length                  sql.NullFloat64
		inventory                                         sql.NullInt64
	)

	err := row.Scan(
		&p.ID, &p.Title, &handle, &description, &p.Price, &compareAt, &currency,
		&category, &subCat, &productType, &vendor, &style, &color, &aiColor, &material,
		&aiMaterial, &aiShape, &room, &tags, &imageURL, &inventory, &width, &height,
		&length, &unit, &shopName, &storeID, &sellerID, &p.Status,
	)
	if err != nil {
		return nil, err
	}

	p.Handle = handle.String
	p.Description = description.String
	p.Currency = currency.String
	p.Category = category.String
	p.SubCategory = subCat.String
	p.ProductType = productType.String
	p.Vendor = vendor.String
	p.Style = style.String
	p.Color = color.String
	p.AIColor = aiColor.String
	p.Material = material.String
	p.AIMaterial = aiMaterial.String
	p.AIShape = aiShape.String
	p.Room = room.String
	p.Tags = splitTags(tags.String)
	p.ImageURL = imageURL.String
	p.DimensionUnit = unit.String
	p.ShopName = shopName.String
	p.StoreID = storeID.String
	p.SellerID = sellerID.String
	p.CompareAtPrice = floatPtr(compareAt)
	p.Width = floatPtr(width)
	p.Height = floatPtr(height)
	p.Length = floatPtr(length)
	if inventory.Valid {
		n := int(inventory.Int64)
		p.InventoryQuantity = &n
	}
	return &p, nil
}

// normalizedText joins the non-empty fields and normalizes the result for attribute
// matching.
func normalizedText(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return textnorm.Normalize(strings.Join(parts, " "))
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
