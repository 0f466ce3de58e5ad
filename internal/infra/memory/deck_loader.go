package memory

import (
	"context"

	"quiz-rooms/internal/domain"
)

// StaticDeckLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticDeckLoader struct {
	decks map[string][]domain.Question
}

func NewStaticDeckLoader(decks map[string][]domain.Question) *StaticDeckLoader {
	return &StaticDeckLoader{decks: decks}
}

func (l *StaticDeckLoader) LoadDeck(_ context.Context, deckID string) ([]domain.Question, error) {
	if deck, ok := l.decks[deckID]; ok {
		return deck, nil
	}
	return nil, domain.ErrDeckNotFound
}
