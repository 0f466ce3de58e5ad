package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a code does not match any active room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrHostCannotJoin is returned when a room's host tries to join it as a player.
	ErrHostCannotJoin = errors.New("host cannot join own room as a player")
	// ErrNotHost indicates a host-only action sent by another connection.
	ErrNotHost = errors.New("only the host can do that")
	// ErrNotPlayer indicates a player-only action sent by a connection that never joined.
	ErrNotPlayer = errors.New("connection is not a player in this room")
	// ErrGameOver indicates an action that only makes sense while a question is active.
	ErrGameOver = errors.New("game is over")
	// ErrUnknownQuestion is returned when the current index has no question.
	ErrUnknownQuestion = errors.New("no question at current index")
	// ErrInvalidQuestion wraps question bank validation failures.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrEmptyDeck indicates a deck without questions.
	ErrEmptyDeck = errors.New("question deck is empty")
	// ErrDeckNotFound indicates the requested deck could not be loaded.
	ErrDeckNotFound = errors.New("question deck not found")
)
