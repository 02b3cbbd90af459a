package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/compose"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
)

func newChatCmd() *cobra.Command {
	var (
		store       string
		interactive bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the assistant",
		Long: `Chat runs one conversational turn against the configured catalog and prints
the reply with any products shown.

With --interactive, messages are read line by line from stdin and the
conversation history is carried from one turn to the next. An empty line or
"exit" ends the session.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) == 0 {
				return fmt.Errorf("a message is required unless --interactive is set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := openCatalog(ctx)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer db.Close()

			resultCache := openCache()
			if resultCache != nil {
				defer resultCache.Close()
			}

			engine := newEngine(db, resultCache)
			ui := newUI(cmd)

			if !interactive {
				_, err := runTurn(ctx, ui, engine, strings.Join(args, " "), nil, store, timeout)
				return err
			}
			return runSession(ctx, ui, engine, cmd.InOrStdin(), store, timeout)
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "store or seller id to scope the search")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read messages from stdin and keep history")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "time limit for one turn")

	return cmd
}

func runTurn(ctx context.Context, ui *UI, engine *chat.Engine, message string, history []dialog.Message, store string, timeout time.Duration) (*chat.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		resp *chat.Response
		err  error
	)
	ui.Spin("OmnIA réfléchit…", func() {
		resp, err = engine.Chat(ctx, message, history, store)
	})
	if err != nil {
		return nil, err
	}

	if ui.jsonMode {
		return resp, ui.JSON(resp)
	}
	printResponse(ui, resp)
	return resp, nil
}

func runSession(ctx context.Context, ui *UI, engine *chat.Engine, in io.Reader, store string, timeout time.Duration) error {
	session := uuid.NewString()
	logger.Info().Str("session", session).Str("store", store).Msg("Interactive session started")

	var history []dialog.Message
	scanner := bufio.NewScanner(in)
	for {
		if !ui.jsonMode {
			fmt.Fprint(ui.out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" || message == "exit" || message == "quit" {
			break
		}

		resp, err := runTurn(ctx, ui, engine, message, history, store, timeout)
		if err != nil {
			return err
		}
		history = append(history,
			dialog.Message{Role: dialog.RoleUser, Content: message},
			dialog.Message{Role: dialog.RoleAssistant, Content: resp.Content},
		)
	}

	logger.Info().Str("session", session).Int("turns", len(history)/2).Msg("Interactive session ended")
	return scanner.Err()
}

func printResponse(ui *UI, resp *chat.Response) {
	ui.Text(resp.Content)
	if verbose {
		ui.KeyValue("intent", resp.Intent)
		ui.KeyValue("mode", resp.Mode)
	}
	if len(resp.Products) == 0 {
		return
	}

	rows := make([][]string, len(resp.Products))
	for i, p := range resp.Products {
		rows[i] = []string{p.ID, p.Title, compose.FormatPrice(p.Price, p.Currency), fmt.Sprint(p.RelevanceScore)}
	}
	ui.Newline()
	ui.Table([]string{"ID", "PRODUIT", "PRIX", "SCORE"}, rows)
}
