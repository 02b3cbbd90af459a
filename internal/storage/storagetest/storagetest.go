// Package storagetest provides a migrated SQLite catalog seeded with a small furniture
// assortment for tests across packages.
package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
)

// NewDB opens a migrated SQLite database in a temp dir, closed on cleanup.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := storage.Open(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db"), MaxOpenConns: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.Migrate(context.Background(), db))
	return db
}

// NewSeededRepository returns a repository holding Fixtures.
func NewSeededRepository(t testing.TB) *storage.ProductRepository {
	t.Helper()

	repo := storage.NewProductRepository(NewDB(t))
	for _, p := range Fixtures() {
		p := p
		require.NoError(t, repo.Upsert(context.Background(), &p))
	}
	return repo
}

// Fixtures is the seed assortment. Store store-a holds tables, a sofa and a lamp;
// store-b holds chairs; the bedside table belongs to store-c and seller-9. The desk is
// archived and never visible to searches.
func Fixtures() []catalog.Product {
	return []catalog.Product{
		{
			ID: "p-001", Title: "Table basse Oslo", Price: 249, CompareAtPrice: f(299),
			Category: "Table", SubCategory: "Table basse", Style: "scandinave",
			Material: "chêne", AIMaterial: "bois", AIColor: "naturel", Room: "salon",
			Tags: []string{"scandinave", "bois", "salon"}, Width: f(110), Height: f(40),
			Description: "Plateau en chêne massif, pieds fuselés.", StoreID: "store-a",
		},
		{
			ID: "p-002", Title: "Table à manger Nordik", Price: 599, Category: "Table",
			SubCategory: "Table à manger", Style: "scandinave", Material: "chêne",
			AIMaterial: "bois", Tags: []string{"salle a manger"}, StoreID: "store-a",
		},
		{
			ID: "p-003", Title: "Chaise Velvet bleue", Price: 89, Category: "Chaise",
			Color: "bleu", AIColor: "bleu", Material: "velours", AIMaterial: "velours",
			Tags: []string{"velours", "bleu"}, StoreID: "store-b",
		},
		{
			ID: "p-004", Title: "Chaise Oslo", Price: 79, Category: "Chaise",
			AIColor: "blanc", AIMaterial: "bois", Style: "scandinave", StoreID: "store-b",
		},
		{
			ID: "p-005", Title: "Canapé d'angle Milano", Price: 1290, Category: "Canapé",
			SubCategory: "Canapé d'angle", AIColor: "vert", Material: "velours",
			AIMaterial: "velours", Room: "salon", StoreID: "store-a",
		},
		{
			ID: "p-006", Title: "Lampe Arc", Price: 159, Category: "Luminaire",
			SubCategory: "Lampadaire", AIColor: "noir", AIMaterial: "metal",
			Description: "Idéale à côté d'une table basse.", StoreID: "store-a",
		},
		{
			ID: "p-007", Title: "Table de chevet Luna", Price: 119, Category: "Table",
			SubCategory: "Table de chevet", Room: "chambre", InventoryQuantity: i(0),
			StoreID: "store-c", SellerID: "seller-9",
		},
		{
			ID: "p-008", Title: "Bureau Atelier", Price: 350, Category: "Bureau",
			Status: "archived", StoreID: "store-a",
		},
	}
}

func f(v float64) *float64 { return &v }

func i(v int) *int { return &v }
