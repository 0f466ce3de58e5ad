package app

import (
	"context"
	"fmt"

	"quiz-rooms/internal/domain"
)

// DeckLoader fetches an ordered question deck from a backing store (file, Postgres, cache).
type DeckLoader interface {
	LoadDeck(ctx context.Context, deckID string) ([]domain.Question, error)
}

// QuestionBank is the immutable, ordered question sequence every room plays through.
type QuestionBank struct {
	questions []domain.Question
}

// NewQuestionBank validates and copies questions.
func NewQuestionBank(questions []domain.Question) (*QuestionBank, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyDeck
	}
	qs := make([]domain.Question, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		q.Choices = append([]string(nil), q.Choices...)
		q.CorrectIndices = q.Correct()
		qs[i] = q
	}
	return &QuestionBank{questions: qs}, nil
}

// LoadQuestionBank loads a deck once and freezes it into a bank.
func LoadQuestionBank(ctx context.Context, loader DeckLoader, deckID string) (*QuestionBank, error) {
	questions, err := loader.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck %q: %w", deckID, err)
	}
	return NewQuestionBank(questions)
}

// Len is the total question count.
func (b *QuestionBank) Len() int {
	return len(b.questions)
}

// At returns the question at index i, if any.
func (b *QuestionBank) At(i int) (domain.Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return domain.Question{}, false
	}
	return b.questions[i], true
}
