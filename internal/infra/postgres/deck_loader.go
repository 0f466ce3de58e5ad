package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-rooms/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// DeckLoader loads an ordered deck from the questions table.
type DeckLoader struct {
	pool *pgxpool.Pool
}

func NewDeckLoader(pool *pgxpool.Pool) *DeckLoader {
	return &DeckLoader{pool: pool}
}

func (l *DeckLoader) LoadDeck(ctx context.Context, deckID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT kind, prompt, choices, correct_indices, explanation FROM questions WHERE deck_id=$1 ORDER BY position`,
		deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	defer rows.Close()

	var deck []domain.Question
	for rows.Next() {
		var (
			q                   domain.Question
			kind                string
			rawChoices, rawKeys []byte
		)
		if err := rows.Scan(&kind, &q.Prompt, &rawChoices, &rawKeys, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Kind = domain.QuestionKind(kind)
		if err := json.Unmarshal(rawChoices, &q.Choices); err != nil {
			return nil, fmt.Errorf("unmarshal choices: %w", err)
		}
		if err := json.Unmarshal(rawKeys, &q.CorrectIndices); err != nil {
			return nil, fmt.Errorf("unmarshal correct indices: %w", err)
		}
		deck = append(deck, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	if len(deck) == 0 {
		return nil, domain.ErrDeckNotFound
	}
	return deck, nil
}
