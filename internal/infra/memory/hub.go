package memory

import (
	"sync"

	"quiz-rooms/internal/domain"
)

// Hub is the in-process app.Notifier. Each registered connection owns a buffered outbox;
// rooms are sets of attached connections.
type Hub struct {
	mu     sync.Mutex
	buffer int
	conns  map[domain.ConnID]chan domain.Message
	rooms  map[string]map[domain.ConnID]struct{}
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		buffer: buffer,
		conns:  make(map[domain.ConnID]chan domain.Message),
		rooms:  make(map[string]map[domain.ConnID]struct{}),
	}
}

// Register returns the outbox for conn. The caller must invoke the returned cancel
// function when the connection goes away; it closes the outbox.
func (h *Hub) Register(conn domain.ConnID) (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, h.buffer)

	h.mu.Lock()
	if old, ok := h.conns[conn]; ok {
		close(old)
	}
	h.conns[conn] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if current, ok := h.conns[conn]; ok && current == ch {
			delete(h.conns, conn)
			close(ch)
		}
		for code, members := range h.rooms {
			delete(members, conn)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	return ch, cancel
}

func (h *Hub) Attach(code string, conn domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		h.rooms[code] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) Detach(code string, conn domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[code]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// CloseRoom forgets the room audience. Connections stay registered.
func (h *Hub) CloseRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}

func (h *Hub) ToRoom(code string, msg domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[code] {
		if ch, ok := h.conns[conn]; ok {
			deliver(ch, msg)
		}
	}
}

func (h *Hub) ToConn(conn domain.ConnID, msg domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.conns[conn]; ok {
		deliver(ch, msg)
	}
}

// Members reports how many connections are attached to a room.
func (h *Hub) Members(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[code])
}

// deliver never blocks: a full outbox drops its oldest message to make room.
// Callers hold h.mu, so no other sender races for the freed slot.
func deliver(ch chan domain.Message, msg domain.Message) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}
