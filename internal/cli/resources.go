package cli

import (
	"context"
	"fmt"
	"time"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/config"
	"quiz-rooms/internal/domain"
	"quiz-rooms/internal/infra/file"
	"quiz-rooms/internal/infra/memory"
	"quiz-rooms/internal/infra/postgres"
	infraredis "quiz-rooms/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// resources holds the optional backing services and the deck loader built on them.
type resources struct {
	redis  *redis.Client
	pool   *pgxpool.Pool
	loader app.DeckLoader
	name   string
}

// openSources connects whatever the config names. The deck comes from the YAML file
// when set, else Postgres, else the built-in sample; Redis caches it when available.
func openSources(ctx context.Context, cfg config.Config) (*resources, error) {
	res := &resources{}
	if cfg.Redis.Addr != "" {
		res.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		res.pool = pool
	}

	switch {
	case cfg.Questions.File != "":
		res.loader, res.name = file.NewDeckLoader(cfg.Questions.File), "file "+cfg.Questions.File
	case res.pool != nil:
		res.loader, res.name = postgres.NewDeckLoader(res.pool), "postgres"
	default:
		res.loader = memory.NewStaticDeckLoader(map[string][]domain.Question{cfg.Questions.Deck: builtinDeck()})
		res.name = "built-in sample"
	}
	if res.redis != nil {
		ttl := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
		res.loader = infraredis.NewDeckCache(res.redis, res.loader, ttl)
		res.name += " via redis cache"
	}
	return res, nil
}

func (r *resources) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

// builtinDeck keeps the server usable with no question file or database.
func builtinDeck() []domain.Question {
	return []domain.Question{
		{
			Kind:   domain.KindSingle,
			Prompt: "The nurse is caring for a client with a newly applied long-leg cast after a tibial fracture. Which assessment finding requires IMMEDIATE follow-up?",
			Choices: []string{
				"Mild tingling that improves after elevating the leg",
				"Warm toes with brisk capillary refill",
				"Pain that continues to increase despite IV opioids",
				"Slight swelling controlled with ice and elevation",
			},
			CorrectIndices: []int{2},
			Explanation:    "Progressively increasing pain unrelieved by opioids is a classic early sign of compartment syndrome.",
		},
		{
			Kind:   domain.KindSingle,
			Prompt: "A post-op client with ORIF of a femur suddenly develops dyspnea, confusion, and a petechial rash on the chest. What is the PRIORITY action?",
			Choices: []string{
				"Increase the IV fluid rate",
				"Apply high-flow oxygen via nonrebreather mask",
				"Elevate the legs above heart level",
				"Administer PRN morphine for pain",
			},
			CorrectIndices: []int{1},
			Explanation:    "These are signs of fat embolism syndrome. Support oxygenation first while notifying the provider.",
		},
		{
			Kind:   domain.KindMulti,
			Prompt: "The nurse assesses a client with a casted forearm for compartment syndrome. Which findings are consistent with this complication? (Select all that apply.)",
			Choices: []string{
				"Severe pain with passive finger extension",
				"Paresthesia (numbness/tingling) in the fingers",
				"Warm fingers with brisk capillary refill",
				"Increasing tightness or pressure in the forearm",
				"Pain relieved completely with opioid medication",
			},
			CorrectIndices: []int{0, 1, 3},
			Explanation:    "Severe pain with passive stretch, paresthesia, and increasing compartment pressure point to compartment syndrome.",
		},
	}
}
