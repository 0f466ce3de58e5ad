package app

import (
	"time"

	"quiz-rooms/internal/domain"
)

// Room is the authoritative state of one quiz session.
// Only QuizService mutates it, always while holding the service lock.
type Room struct {
	code         string
	hostID       domain.ConnID
	createdAt    time.Time
	lastActivity time.Time

	currentQuestionIndex int
	// activation counts question activations so a score can be capped per activation.
	activation int

	players map[domain.ConnID]*player
	order   []domain.ConnID
}

type player struct {
	domain.PlayerState
	scoredActivation int
}

// NewRoom is exported for registry implementations and their tests.
func NewRoom(code string, hostID domain.ConnID, now time.Time) *Room {
	return newRoom(code, hostID, now)
}

func newRoom(code string, hostID domain.ConnID, now time.Time) *Room {
	return &Room{
		code:         code,
		hostID:       hostID,
		createdAt:    now,
		lastActivity: now,
		players:      make(map[domain.ConnID]*player),
	}
}

// Code returns the room's identifier.
func (r *Room) Code() string { return r.code }

// HostID returns the connection that created the room.
func (r *Room) HostID() domain.ConnID { return r.hostID }

// addPlayer inserts a fresh player. A repeat join from the same connection resets
// its state and keeps its roster position.
func (r *Room) addPlayer(id domain.ConnID, name string) {
	if _, ok := r.players[id]; !ok {
		r.order = append(r.order, id)
	}
	r.players[id] = &player{
		PlayerState:      domain.PlayerState{Name: name},
		scoredActivation: -1,
	}
}

func (r *Room) removePlayer(id domain.ConnID) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Room) player(id domain.ConnID) *player {
	return r.players[id]
}

func (r *Room) resetReady() {
	for _, p := range r.players {
		p.ReadyForNext = false
	}
}

// allReady is the barrier predicate: at least one player and every player ready.
func (r *Room) allReady() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.ReadyForNext {
			return false
		}
	}
	return true
}

// roster lists players in join order.
func (r *Room) roster() []domain.PlayerState {
	out := make([]domain.PlayerState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id].PlayerState)
	}
	return out
}

func (r *Room) gameOver(total int) bool {
	return r.currentQuestionIndex >= total
}

func (r *Room) touch(now time.Time) {
	r.lastActivity = now
}
