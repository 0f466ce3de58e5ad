package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var (
	errBadPayload  = errors.New("invalid payload")
	errUnknownType = errors.New("unsupported message type")
)

// Outboxes hands out per-connection outboxes and accepts direct messages.
// memory.Hub satisfies it.
type Outboxes interface {
	Register(conn domain.ConnID) (<-chan domain.Message, func())
	ToConn(conn domain.ConnID, msg domain.Message)
}

type WSHandler struct {
	service  *app.QuizService
	outboxes Outboxes
	upgrader websocket.Upgrader
	logger   *slog.Logger
	limit    rate.Limit
	burst    int
}

type WSOption func(*WSHandler)

// WithRateLimit caps inbound frames per connection.
func WithRateLimit(perSecond float64, burst int) WSOption {
	return func(h *WSHandler) {
		h.limit = rate.Limit(perSecond)
		h.burst = burst
	}
}

func WithWSLogger(logger *slog.Logger) WSOption {
	return func(h *WSHandler) { h.logger = logger }
}

// WithAllowedOrigins restricts websocket upgrades to the listed origins. "*" allows any.
func WithAllowedOrigins(origins []string) WSOption {
	return func(h *WSHandler) {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			if o == "*" {
				h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
				return
			}
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		}
	}
}

func NewWSHandler(service *app.QuizService, outboxes Outboxes, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		service:  service,
		outboxes: outboxes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
		limit:  10,
		burst:  20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type roomPayload struct {
	Code string `json:"code"`
}

type answerPayload struct {
	Code            string `json:"code"`
	SelectedIndices []int  `json:"selectedIndices"`
}

// ServeWS upgrades HTTP requests to websockets. Each socket is one connection identity:
// it may host rooms, join rooms, or both.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	id := domain.ConnID(uuid.NewString())
	outbox, cancel := h.outboxes.Register(id)
	logger := h.logger.With("conn", id)
	logger.Debug("connection opened", "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range outbox {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", "err", err)
				// unblock the reader
				_ = conn.Close()
				return
			}
		}
	}()

	ctx := r.Context()
	limiter := rate.NewLimiter(h.limit, h.burst)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !limiter.Allow() {
			h.sendError(id, "rate limit exceeded")
			continue
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.sendError(id, "malformed message")
			continue
		}
		if err := h.dispatch(ctx, id, inbound); err != nil {
			switch {
			case errors.Is(err, errBadPayload):
				h.sendError(id, "invalid "+inbound.Type+" payload")
			case errors.Is(err, errUnknownType):
				h.sendError(id, errUnknownType.Error())
			default:
				logger.Debug("action dropped", "type", inbound.Type, "err", err)
			}
		}
	}

	h.service.Disconnect(context.WithoutCancel(ctx), id)
	cancel()
	<-writerDone
	logger.Debug("connection closed")
}

func (h *WSHandler) dispatch(ctx context.Context, id domain.ConnID, in inboundMessage) error {
	switch in.Type {
	case "create-room":
		h.service.CreateRoom(ctx, id)
		return nil
	case "join":
		var p joinPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return h.service.Join(ctx, p.Code, p.Name, id)
	case "start-game":
		var p roomPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return h.service.StartGame(ctx, id, p.Code)
	case "submit-answer":
		var p answerPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return h.service.SubmitAnswer(ctx, id, p.Code, p.SelectedIndices)
	case "ready-next":
		var p roomPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return h.service.ReadyNext(ctx, id, p.Code)
	default:
		return errUnknownType
	}
}

// decode treats a missing payload as an empty object.
func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}

func (h *WSHandler) sendError(id domain.ConnID, message string) {
	h.outboxes.ToConn(id, domain.Message{Type: domain.MsgError, Payload: domain.ErrorPayload{Message: message}})
}
