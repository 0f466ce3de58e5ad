package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Publisher decorates an app.Notifier and mirrors room-wide messages to Redis pub/sub
// on quiz:room:{code}:events, so dashboards and other instances can follow a room.
// Direct messages are not mirrored.
type Publisher struct {
	app.Notifier
	client *redis.Client
	logger *slog.Logger
	events chan roomEvent
}

type roomEvent struct {
	code string
	msg  domain.Message
}

func NewPublisher(inner app.Notifier, client *redis.Client, buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		Notifier: inner,
		client:   client,
		logger:   logger,
		events:   make(chan roomEvent, buffer),
	}
}

// Channel returns the pub/sub channel for a room.
func Channel(code string) string {
	return "quiz:room:" + code + ":events"
}

func (p *Publisher) ToRoom(code string, msg domain.Message) {
	p.Notifier.ToRoom(code, msg)
	p.enqueue(code, msg)
}

func (p *Publisher) enqueue(code string, msg domain.Message) {
	select {
	case p.events <- roomEvent{code: code, msg: msg}:
	default:
		p.logger.Warn("publish queue full, dropping event", "code", code, "type", msg.Type)
	}
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-p.events:
			raw, err := json.Marshal(ev.msg)
			if err != nil {
				p.logger.Error("encode room event", "code", ev.code, "err", err)
				continue
			}
			if err := p.client.Publish(ctx, Channel(ev.code), raw).Err(); err != nil {
				p.logger.Warn("publish room event", "code", ev.code, "err", err)
			}
		}
	}
}
