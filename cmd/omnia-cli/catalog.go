package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/cache"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/search"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the products table",
		Long: `Migrate applies the embedded schema to the configured database (SQLite or
Postgres). Running it again is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			logger.Info().Str("driver", cfg.Database.Driver).Msg("Running migrations")

			db, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := storage.NewProductRepository(db).Count(ctx)
			if err != nil {
				return fmt.Errorf("count products: %w", err)
			}

			ui := newUI(cmd)
			if outputJSON {
				return ui.JSON(map[string]interface{}{"driver": cfg.Database.Driver, "products": count})
			}
			ui.Success("Migrations applied on %s (%d active products)", cfg.Database.Driver, count)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert catalog products from a JSON file",
		Long: `Seed reads products from a JSON file, either an array or an object with a
"products" array, and upserts them by id. Cached search results are dropped
afterwards so the next searches see the new catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			products, err := loadProducts(file)
			if err != nil {
				return err
			}

			db, err := openCatalog(ctx)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			ui := newUI(cmd)
			ui.Step("Seeding %d products from %s", len(products), file)

			bar := ui.ProgressBar("seed", len(products))
			repo := storage.NewProductRepository(db)
			if err := seedProducts(ctx, repo, products, bar.Add); err != nil {
				return err
			}
			bar.Finish()

			invalidateSearchCache(ctx, openCache())

			total, err := repo.Count(ctx)
			if err != nil {
				return fmt.Errorf("count products: %w", err)
			}
			if outputJSON {
				return ui.JSON(map[string]int{"seeded": len(products), "active": total})
			}
			ui.Success("Seeded %d products (%d active in catalog)", len(products), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "products JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadProducts reads a JSON array of products, or an object holding one under
// "products".
func loadProducts(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	var products []catalog.Product
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Products []catalog.Product `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse products: %w", err)
		}
		products = wrapper.Products
	} else if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}

	for i, p := range products {
		if p.Title == "" {
			return nil, fmt.Errorf("product %d: title is required", i)
		}
	}
	return products, nil
}

type upserter interface {
	Upsert(ctx context.Context, p *catalog.Product) error
}

func seedProducts(ctx context.Context, repo upserter, products []catalog.Product, progress func(int)) error {
	for i := range products {
		if err := repo.Upsert(ctx, &products[i]); err != nil {
			return fmt.Errorf("upsert %q: %w", products[i].Title, err)
		}
		progress(1)
	}
	return nil
}

func invalidateSearchCache(ctx context.Context, c cache.Client) {
	if c == nil {
		return
	}
	defer c.Close()
	if err := c.DeleteByPrefix(ctx, search.CacheNamespace+":"); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate cached search results")
	}
}
