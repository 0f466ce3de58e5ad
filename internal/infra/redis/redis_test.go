package redis

import (
	"context"
	"sync/atomic"
	"testing"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleDeck() []domain.Question {
	return []domain.Question{
		{
			Kind:           domain.KindMulti,
			Prompt:         "Pick the primes",
			Choices:        []string{"2", "4", "5", "9"},
			CorrectIndices: []int{0, 2},
			Explanation:    "4 and 9 are squares.",
		},
	}
}

type countingLoader struct {
	app.DeckLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadDeck(ctx context.Context, deckID string) ([]domain.Question, error) {
	l.calls.Add(1)
	return l.DeckLoader.LoadDeck(ctx, deckID)
}
