package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"quiz-rooms/internal/domain"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// OpenBun opens a bun handle over pgdriver for migrations, imports and archiving.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// ImportDeck replaces a deck atomically. Questions are validated first so a bad
// file never leaves a half-written deck behind.
func ImportDeck(ctx context.Context, db *bun.DB, deckID string, questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrEmptyDeck
	}
	rows := make([]QuestionRow, 0, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		rows = append(rows, newQuestionRow(deckID, i, q))
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*QuestionRow)(nil)).Where("deck_id = ?", deckID).Exec(ctx); err != nil {
			return fmt.Errorf("clear deck: %w", err)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert deck: %w", err)
		}
		return nil
	})
}
