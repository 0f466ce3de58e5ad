package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quiz-rooms/internal/domain"
	"quiz-rooms/internal/infra/memory"
)

func TestPublisherMirrorsRoomMessages(t *testing.T) {
	_, client := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, Channel("AB3D"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	hub := memory.NewHub(4)
	out, done := hub.Register("player")
	defer done()

	pub := NewPublisher(hub, client, 4, nil)
	go func() { _ = pub.Run(ctx) }()

	pub.Attach("AB3D", "player")
	pub.ToConn("player", domain.Message{Type: domain.MsgAnswerResult})
	pub.ToRoom("AB3D", domain.Message{Type: domain.MsgGameOver, Payload: domain.GameOver{TotalQuestions: 3}})

	if got := (<-out).Type; got != domain.MsgAnswerResult {
		t.Fatalf("expected direct message first, got %s", got)
	}
	if got := (<-out).Type; got != domain.MsgGameOver {
		t.Fatalf("expected room message delivered locally, got %s", got)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var event struct {
		Type    string          `json:"type"`
		Payload domain.GameOver `json:"payload"`
	}
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != domain.MsgGameOver || event.Payload.TotalQuestions != 3 {
		t.Fatalf("unexpected event %+v", event)
	}
}
