package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-rooms/internal/domain"
)

const deckYAML = `
id: ortho
questions:
  - kind: multi
    prompt: Which findings suggest compartment syndrome?
    choices: [Pain on passive stretch, Paresthesia, Warm fingers, Increasing tightness]
    correct: [0, 1, 3]
    explanation: Classic early signs.
  - kind: single
    prompt: Best position after hip replacement?
    choices: [Adduction, Abduction wedge, Internal rotation]
    correct: [1]
`

func writeDeck(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

func TestDeckLoaderReadsYAML(t *testing.T) {
	loader := NewDeckLoader(writeDeck(t, deckYAML))

	deck, err := loader.LoadDeck(context.Background(), "ortho")
	if err != nil {
		t.Fatalf("load deck: %v", err)
	}
	if len(deck) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(deck))
	}
	if deck[0].Kind != domain.KindMulti || len(deck[0].CorrectIndices) != 3 {
		t.Fatalf("unexpected first question %+v", deck[0])
	}
	if deck[1].Explanation != "" || deck[1].CorrectIndices[0] != 1 {
		t.Fatalf("unexpected second question %+v", deck[1])
	}
}

func TestDeckLoaderRejectsOtherDeck(t *testing.T) {
	loader := NewDeckLoader(writeDeck(t, deckYAML))
	if _, err := loader.LoadDeck(context.Background(), "cardio"); !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("expected deck not found, got %v", err)
	}
}

func TestReadDeckDefaultsID(t *testing.T) {
	deck, err := ReadDeck(writeDeck(t, "questions: []\n"))
	if err != nil {
		t.Fatalf("read deck: %v", err)
	}
	if deck.ID != "default" {
		t.Fatalf("expected default id, got %q", deck.ID)
	}
	if _, err := ReadDeck(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
