package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/compose"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/extract"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/intent"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/ranking"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/search"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Show the intent scores of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			result := intent.NewClassifier().Score(strings.Join(args, " "), nil)

			if outputJSON {
				return ui.JSON(result)
			}

			ui.Success("intent: %s", result.Intent)
			names := make([]string, 0, len(result.Scores))
			for in := range result.Scores {
				names = append(names, string(in))
			}
			sort.Strings(names)
			for _, name := range names {
				ui.KeyValue(name, result.Scores[intent.Intent(name)])
			}
			if len(result.Matched) > 0 {
				ui.KeyValue("matched", strings.Join(result.Matched, ", "))
			}
			return nil
		},
	}
}

func newExtractCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "extract <message>",
		Short: "Show the attribute filter read from a message",
		Long: `Extract runs the attribute extractor on one message. The keyword fast path
answers when a product type is recognised; otherwise the completion service is
asked, unless --offline is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var completer llm.Completer
			if !offline {
				completer = llm.NewClient(cfg.LLM, logger)
			}

			ui := newUI(cmd)
			var filter catalog.AttributeFilter
			ui.Spin("Extraction…", func() {
				filter = extract.New(completer, logger).Extract(ctx, strings.Join(args, " "), nil)
			})

			if outputJSON {
				return ui.JSON(filter)
			}
			printFilter(ui, filter)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "never call the completion service")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		store    string
		color    string
		material string
		style    string
		room     string
		minPrice float64
		maxPrice float64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search and rank catalog products",
		Long: `Search reads a product type and attributes from the query with the keyword
tables, applies any flag overrides, then runs the catalog search (with store
fallback) and the relevance ranker.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			filter := extract.Scan(strings.Join(args, " "))
			filter.Intent = catalog.IntentProductSearch
			overlay(&filter.Color, color)
			overlay(&filter.Material, material)
			overlay(&filter.Style, style)
			overlay(&filter.Room, room)
			if minPrice > 0 || maxPrice > 0 {
				filter.PriceRange = &catalog.PriceRange{}
				if minPrice > 0 {
					filter.PriceRange.Min = &minPrice
				}
				if maxPrice > 0 {
					filter.PriceRange.Max = &maxPrice
				}
			}
			if filter.Type == "" {
				// Free text still searches: use the query as the type.
				filter.Type = strings.Join(args, " ")
			}

			db, err := openCatalog(ctx)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			searcher := search.New(storage.NewProductRepository(db), logger,
				search.WithLimits(cfg.Search.Limit, cfg.Search.CandidateMultiplier))
			candidates := searcher.Candidates(ctx, filter, store, limit)
			ranked := ranking.Default().Rank(candidates, chat.RankingQuery(filter), limit)

			ui := newUI(cmd)
			if outputJSON {
				return ui.JSON(map[string]interface{}{
					"filter":   filter,
					"products": ranked,
				})
			}

			printFilter(ui, filter)
			if len(ranked) == 0 {
				ui.Warning("no product matches")
				return nil
			}
			ui.Newline()
			rows := make([][]string, len(ranked))
			for i, p := range ranked {
				rows[i] = []string{p.ID, p.Title, compose.FormatPrice(p.Price, p.Currency), p.StoreID, fmt.Sprint(p.RelevanceScore)}
			}
			ui.Table([]string{"ID", "PRODUIT", "PRIX", "BOUTIQUE", "SCORE"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "store or seller id to scope the search")
	cmd.Flags().StringVar(&color, "color", "", "color filter")
	cmd.Flags().StringVar(&material, "material", "", "material filter")
	cmd.Flags().StringVar(&style, "style", "", "style filter")
	cmd.Flags().StringVar(&room, "room", "", "room filter")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum price")
	cmd.Flags().IntVar(&limit, "limit", 6, "number of ranked products to show")

	return cmd
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func printFilter(ui *UI, f catalog.AttributeFilter) {
	ui.Section("filtre")
	ui.KeyValue("intent", f.Intent)
	for _, kv := range [][2]string{
		{"type", f.Type}, {"style", f.Style}, {"color", f.Color},
		{"material", f.Material}, {"room", f.Room}, {"size", f.Size},
	} {
		if kv[1] != "" {
			ui.KeyValue(kv[0], kv[1])
		}
	}
	if !f.PriceRange.IsZero() {
		ui.KeyValue("price", priceRangeText(f.PriceRange))
	}
}

func priceRangeText(r *catalog.PriceRange) string {
	bound := func(v *float64) string {
		if v == nil {
			return "…"
		}
		return compose.FormatPrice(*v, "")
	}
	return bound(r.Min) + " - " + bound(r.Max)
}
