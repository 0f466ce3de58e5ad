package file

import (
	"context"
	"fmt"
	"os"

	"quiz-rooms/internal/domain"

	"gopkg.in/yaml.v3"
)

// Deck is the on-disk layout of a question file.
type Deck struct {
	ID        string            `yaml:"id"`
	Questions []domain.Question `yaml:"questions"`
}

// DeckLoader serves the single deck stored in a YAML file.
type DeckLoader struct {
	path string
}

func NewDeckLoader(path string) *DeckLoader {
	return &DeckLoader{path: path}
}

func (l *DeckLoader) LoadDeck(_ context.Context, deckID string) ([]domain.Question, error) {
	deck, err := ReadDeck(l.path)
	if err != nil {
		return nil, err
	}
	if deck.ID != deckID {
		return nil, fmt.Errorf("%w: %s holds deck %q", domain.ErrDeckNotFound, l.path, deck.ID)
	}
	return deck.Questions, nil
}

// ReadDeck parses a deck file without validating its questions.
func ReadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	var deck Deck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return Deck{}, fmt.Errorf("parse deck: %w", err)
	}
	if deck.ID == "" {
		deck.ID = "default"
	}
	return deck, nil
}
