// Package main provides the OmnIA CLI entrypoint.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/cache"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/config"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/llm"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/storage"
)

// Version is set at build time with -ldflags.
var Version = "0.1.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

func newRootCmd() *cobra.Command {
	cfgFile, outputJSON, verbose = "", false, false

	root := &cobra.Command{
		Use:   "omnia-cli",
		Short: "OmnIA CLI for chatting with the catalog and managing it",
		Long: `OmnIA CLI runs the conversational shopping assistant from the terminal.

Use this tool to:
- Chat with the assistant, one message or interactively
- Inspect the classifier, extractor and search stages on their own
- Create the products table and seed it from JSON

All commands support --json for automation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logFormat := "console"
			if outputJSON {
				logFormat = "json"
			}
			level := cfg.Observability.LogLevel
			if !verbose {
				level = "warn"
			}

			logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      logFormat,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "omnia-cli",
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newChatCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			ui := newUI(cmd)
			if outputJSON {
				ui.JSON(map[string]string{"version": Version})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "omnia-cli v%s\n", Version)
		},
	}
}

// openCatalog opens and migrates the configured catalog database.
func openCatalog(ctx context.Context) (*sql.DB, error) {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// openCache returns the configured result cache, or nil when it cannot be reached.
func openCache() cache.Client {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Warn().Err(err).Msg("Result cache unavailable")
		return nil
	}
	return c
}

// newEngine wires a chat engine over db the same way the API server does.
func newEngine(db *sql.DB, resultCache cache.Client) *chat.Engine {
	completer := llm.NewClient(cfg.LLM, logger)
	return chat.NewFromConfig(cfg, completer, storage.NewProductRepository(db), resultCache, logger, nil)
}
