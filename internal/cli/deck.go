package cli

import (
	"context"
	"fmt"
	"log/slog"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/config"
	"quiz-rooms/internal/infra/file"
	"quiz-rooms/internal/infra/logger"
	"quiz-rooms/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// NewDeckCmd groups question deck maintenance commands.
func NewDeckCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect and import question decks",
	}
	cmd.AddCommand(newDeckCheckCmd(configPath))
	cmd.AddCommand(newDeckImportCmd(configPath))
	return cmd
}

func newDeckCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configured deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)

			src, err := openSources(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			bank, err := app.LoadQuestionBank(cmd.Context(), src.loader, cfg.Questions.Deck)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deck %q: %d questions OK (source: %s)\n", cfg.Questions.Deck, bank.Len(), src.name)
			return nil
		},
	}
}

func newDeckImportCmd(configPath *string) *cobra.Command {
	var deckID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a YAML deck file and store it in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			return importDeck(cmd.Context(), cfg, args[0], deckID)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "deck id to store under (defaults to the id in the file)")
	return cmd
}

func importDeck(ctx context.Context, cfg config.Config, path, deckID string) error {
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	deck, err := file.ReadDeck(path)
	if err != nil {
		return err
	}
	if deckID == "" {
		deckID = deck.ID
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()
	if err := postgres.ImportDeck(ctx, db, deckID, deck.Questions); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	slog.Info("deck imported", "deck", deckID, "questions", len(deck.Questions))
	return nil
}
