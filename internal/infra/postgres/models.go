package postgres

import (
	"time"

	"quiz-rooms/internal/domain"

	"github.com/uptrace/bun"
)

// QuestionRow maps one deck entry onto the questions table.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions"`

	DeckID         string   `bun:"deck_id,pk"`
	Position       int      `bun:"position,pk"`
	Kind           string   `bun:"kind,notnull"`
	Prompt         string   `bun:"prompt,notnull"`
	Choices        []string `bun:"choices,type:jsonb,notnull"`
	CorrectIndices []int    `bun:"correct_indices,type:jsonb,notnull"`
	Explanation    string   `bun:"explanation,notnull"`
}

// GameResultRow maps a finished game onto the game_results table.
type GameResultRow struct {
	bun.BaseModel `bun:"table:game_results"`

	ID             string               `bun:"id,pk,type:uuid"`
	RoomCode       string               `bun:"room_code,notnull"`
	TotalQuestions int                  `bun:"total_questions,notnull"`
	Players        []domain.PlayerState `bun:"players,type:jsonb,notnull"`
	FinishedAt     time.Time            `bun:"finished_at,notnull"`
}

func newQuestionRow(deckID string, position int, q domain.Question) QuestionRow {
	return QuestionRow{
		DeckID:         deckID,
		Position:       position,
		Kind:           string(q.Kind),
		Prompt:         q.Prompt,
		Choices:        q.Choices,
		CorrectIndices: q.Correct(),
		Explanation:    q.Explanation,
	}
}

func newGameResultRow(r domain.GameResult) GameResultRow {
	return GameResultRow{
		ID:             r.ID,
		RoomCode:       r.RoomCode,
		TotalQuestions: r.TotalQuestions,
		Players:        r.Players,
		FinishedAt:     r.FinishedAt,
	}
}
