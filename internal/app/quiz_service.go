package app

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"quiz-rooms/internal/domain"

	"github.com/google/uuid"
)

// RoomRegistry abstracts where active rooms are kept (in-memory, Redis-marked, etc).
type RoomRegistry interface {
	Exists(code string) bool
	Put(room *Room)
	Get(code string) (*Room, bool)
	Delete(code string)
	Rooms() []*Room
	// Touch marks a room as still live, for registries whose reservations expire.
	Touch(code string)
}

// Notifier addresses outbound messages. Room-wide sends reach every attached connection;
// host-only messages are direct sends to the room's host.
// Implementations must not block.
type Notifier interface {
	Attach(code string, conn domain.ConnID)
	Detach(code string, conn domain.ConnID)
	CloseRoom(code string)
	ToRoom(code string, msg domain.Message)
	ToConn(conn domain.ConnID, msg domain.Message)
}

// ResultRecorder receives final scoreboards. Record must not block.
type ResultRecorder interface {
	Record(result domain.GameResult)
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

// WithResultRecorder archives finished games.
func WithResultRecorder(r ResultRecorder) Option {
	return func(s *QuizService) { s.results = r }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithCodeAllocator overrides the room code generator.
func WithCodeAllocator(a *CodeAllocator) Option {
	return func(s *QuizService) { s.codes = a }
}

// WithBarrierRecheckOnLeave re-evaluates the ready barrier after a player leaves,
// so a room cannot stall when its last not-ready player disconnects.
func WithBarrierRecheckOnLeave(enabled bool) Option {
	return func(s *QuizService) { s.recheckOnLeave = enabled }
}

// WithScoreCap limits a player to one scoring submission per question activation.
// Without it every correct submission scores.
func WithScoreCap(enabled bool) Option {
	return func(s *QuizService) { s.scoreCap = enabled }
}

// QuizService implements the session protocol. Every handler runs to completion under
// one lock, so inbound events are applied strictly one at a time.
type QuizService struct {
	mu      sync.Mutex
	rooms   RoomRegistry
	bank    *QuestionBank
	notify  Notifier
	codes   *CodeAllocator
	results ResultRecorder
	logger  *slog.Logger
	now     func() time.Time

	recheckOnLeave bool
	scoreCap       bool
}

func NewQuizService(rooms RoomRegistry, bank *QuestionBank, notify Notifier, opts ...Option) *QuizService {
	s := &QuizService{
		rooms:          rooms,
		bank:           bank,
		notify:         notify,
		codes:          NewCodeAllocator(),
		logger:         slog.Default(),
		now:            time.Now,
		recheckOnLeave: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom allocates a fresh room hosted by conn and returns its code.
func (s *QuizService) CreateRoom(_ context.Context, host domain.ConnID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.codes.Allocate(s.rooms.Exists)
	s.rooms.Put(newRoom(code, host, s.now()))
	s.notify.Attach(code, host)
	s.notify.ToConn(host, domain.Message{Type: domain.MsgRoomCreated, Payload: domain.RoomCreated{Code: code}})

	s.logger.Info("room created", "code", code, "host", host)
	return code
}

// Join adds conn as a player. Only an unknown code is reported back to the requester.
func (s *QuizService) Join(_ context.Context, code, name string, conn domain.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = NormalizeCode(code)
	room, ok := s.rooms.Get(code)
	if !ok {
		s.notify.ToConn(conn, domain.Message{Type: domain.MsgJoinError, Payload: domain.JoinError{Message: "Room not found."}})
		return domain.ErrRoomNotFound
	}
	if room.hostID == conn {
		s.notify.ToConn(conn, domain.Message{Type: domain.MsgJoinError, Payload: domain.JoinError{Message: "The host cannot join as a player."}})
		return domain.ErrHostCannotJoin
	}
	s.touchLocked(room)

	room.addPlayer(conn, name)
	s.notify.Attach(code, conn)
	s.notify.ToConn(conn, domain.Message{Type: domain.MsgJoinSuccess, Payload: domain.JoinSuccess{Code: code, Name: name}})
	s.sendRosterLocked(room)

	s.logger.Info("player joined", "code", code, "conn", conn, "name", name)
	return nil
}

// StartGame (re)starts the room at question 0. Unlike a bare code check, only the
// room's host may start; anyone else gets ErrNotHost and nothing is broadcast.
func (s *QuizService) StartGame(_ context.Context, conn domain.ConnID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(NormalizeCode(code))
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.hostID != conn {
		return domain.ErrNotHost
	}
	s.touchLocked(room)

	room.currentQuestionIndex = 0
	s.activateLocked(room)

	s.logger.Info("game started", "code", room.code, "players", len(room.players))
	return nil
}

// SubmitAnswer scores a submission against the active question and reports the
// outcome to the sender. Stale rooms and finished games are dropped silently.
func (s *QuizService) SubmitAnswer(_ context.Context, conn domain.ConnID, code string, selected []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(NormalizeCode(code))
	if !ok {
		return domain.ErrRoomNotFound
	}
	question, ok := s.bank.At(room.currentQuestionIndex)
	if !ok {
		return domain.ErrUnknownQuestion
	}
	s.touchLocked(room)

	correct := question.Matches(selected)
	if p := room.player(conn); p != nil && correct {
		if !s.scoreCap || p.scoredActivation != room.activation {
			p.Score++
			p.scoredActivation = room.activation
		}
	}

	s.notify.ToConn(conn, domain.Message{Type: domain.MsgAnswerResult, Payload: domain.AnswerResult{
		IsCorrect:      correct,
		CorrectIndices: question.Correct(),
		Explanation:    question.Explanation,
	}})
	s.sendRosterLocked(room)
	return nil
}

// ReadyNext marks conn ready and advances the room once every player is ready.
func (s *QuizService) ReadyNext(_ context.Context, conn domain.ConnID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(NormalizeCode(code))
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.gameOver(s.bank.Len()) {
		return domain.ErrGameOver
	}
	p := room.player(conn)
	if p == nil {
		return domain.ErrNotPlayer
	}
	s.touchLocked(room)

	p.ReadyForNext = true
	s.advanceIfReadyLocked(room)
	return nil
}

// Disconnect cleans up after a lost connection: rooms it hosts are closed,
// rooms it plays in lose that player. Every room is checked.
func (s *QuizService) Disconnect(_ context.Context, conn domain.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.sortedRoomsLocked() {
		if room.hostID == conn {
			s.closeRoomLocked(room, "host disconnected")
			continue
		}
		if !room.removePlayer(conn) {
			continue
		}
		s.notify.Detach(room.code, conn)
		s.sendRosterLocked(room)
		s.logger.Info("player left", "code", room.code, "conn", conn)

		if s.recheckOnLeave && !room.gameOver(s.bank.Len()) {
			s.advanceIfReadyLocked(room)
		}
	}
}

// ExpireIdle closes rooms with no activity for longer than maxIdle and returns how many.
// Surviving rooms have their registry reservation refreshed. maxIdle <= 0 only refreshes.
func (s *QuizService) ExpireIdle(_ context.Context, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	expired := 0
	for _, room := range s.sortedRoomsLocked() {
		if maxIdle > 0 && room.lastActivity.Before(cutoff) {
			s.closeRoomLocked(room, "idle")
			expired++
			continue
		}
		s.rooms.Touch(room.code)
	}
	return expired
}

// RunJanitor expires idle rooms every interval until ctx is done.
func (s *QuizService) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.ExpireIdle(ctx, maxIdle); n > 0 {
				s.logger.Info("expired idle rooms", "count", n)
			}
		}
	}
}

// Snapshot returns a read-only view of a room.
func (s *QuizService) Snapshot(code string) (domain.RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(NormalizeCode(code))
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	total := s.bank.Len()
	return domain.RoomSnapshot{
		Code:                 room.code,
		CurrentQuestionIndex: room.currentQuestionIndex,
		TotalQuestions:       total,
		GameOver:             room.gameOver(total),
		Players:              room.roster(),
		CreatedAt:            room.createdAt,
	}, true
}

// activateLocked resets ready flags and broadcasts the question at the current index.
// Start and every barrier advance go through here.
func (s *QuizService) activateLocked(room *Room) {
	room.resetReady()
	room.activation++
	question, _ := s.bank.At(room.currentQuestionIndex)
	s.notify.ToRoom(room.code, domain.Message{Type: domain.MsgNewQuestion, Payload: domain.NewQuestion{
		Index:    room.currentQuestionIndex,
		Total:    s.bank.Len(),
		Question: question.View(),
	}})
}

func (s *QuizService) advanceIfReadyLocked(room *Room) {
	if !room.allReady() {
		return
	}
	room.currentQuestionIndex++

	total := s.bank.Len()
	if !room.gameOver(total) {
		s.activateLocked(room)
		return
	}

	room.resetReady()
	players := room.roster()
	s.notify.ToRoom(room.code, domain.Message{Type: domain.MsgGameOver, Payload: domain.GameOver{
		TotalQuestions: total,
		Players:        players,
	}})
	s.logger.Info("game over", "code", room.code, "players", len(players))

	if s.results != nil {
		s.results.Record(domain.GameResult{
			ID:             uuid.NewString(),
			RoomCode:       room.code,
			TotalQuestions: total,
			Players:        players,
			FinishedAt:     s.now(),
		})
	}
}

func (s *QuizService) touchLocked(room *Room) {
	room.touch(s.now())
	s.rooms.Touch(room.code)
}

func (s *QuizService) closeRoomLocked(room *Room, reason string) {
	s.notify.ToRoom(room.code, domain.Message{Type: domain.MsgRoomClosed, Payload: domain.RoomClosed{}})
	s.notify.CloseRoom(room.code)
	s.rooms.Delete(room.code)
	s.logger.Info("room closed", "code", room.code, "reason", reason)
}

func (s *QuizService) sendRosterLocked(room *Room) {
	s.notify.ToConn(room.hostID, domain.Message{Type: domain.MsgPlayersUpdated, Payload: domain.PlayersUpdated{
		Players: room.roster(),
	}})
}

func (s *QuizService) sortedRoomsLocked() []*Room {
	rooms := s.rooms.Rooms()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].code < rooms[j].code })
	return rooms
}
