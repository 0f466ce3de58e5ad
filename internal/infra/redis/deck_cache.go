package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DeckCache caches decks in Redis as JSON and falls back to a loader on a miss.
// Decks are stored as: SET quiz:deck:{deckID} <json>
type DeckCache struct {
	client *redis.Client
	loader app.DeckLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewDeckCache(client *redis.Client, loader app.DeckLoader, ttl time.Duration) *DeckCache {
	return &DeckCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *DeckCache) LoadDeck(ctx context.Context, deckID string) ([]domain.Question, error) {
	key := c.key(deckID)
	if deck, ok := c.cached(ctx, key); ok {
		return deck, nil
	}

	result, err, _ := c.sf.Do(deckID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if deck, ok := c.cached(ctx, key); ok {
			return deck, nil
		}

		deck, err := c.loader.LoadDeck(ctx, deckID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(deck); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return deck, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *DeckCache) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var deck []domain.Question
	if err := json.Unmarshal(raw, &deck); err != nil || len(deck) == 0 {
		return nil, false
	}
	return deck, true
}

func (c *DeckCache) key(deckID string) string {
	return "quiz:deck:" + deckID
}

// ttlWithJitter spreads expiry by up to 10% so decks cached together do not expire together.
func (c *DeckCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
