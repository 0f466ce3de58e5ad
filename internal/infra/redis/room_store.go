package redis

import (
	"context"
	"sync"
	"time"

	"quiz-rooms/internal/app"

	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of app.RoomRegistry.
// Room state stays in a local map; Redis holds a liveness marker per code so
// instances sharing one Redis never hand out the same code twice.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) Exists(code string) bool {
	s.mu.RLock()
	_, ok := s.rooms[code]
	s.mu.RUnlock()
	if ok {
		return true
	}
	n, err := s.client.Exists(context.Background(), s.key(code)).Result()
	return err == nil && n > 0
}

func (s *RoomStore) Put(room *app.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code()] = room
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(room.Code()), string(room.HostID()), s.ttl).Err()
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return
	}
	delete(s.rooms, code)
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

// Touch extends the marker of a locally held room.
func (s *RoomStore) Touch(code string) {
	s.mu.RLock()
	_, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok || s.ttl <= 0 {
		return
	}
	_ = s.client.Expire(context.Background(), s.key(code), s.ttl).Err()
}

func (s *RoomStore) Rooms() []*app.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}

func (s *RoomStore) key(code string) string {
	return "quiz:room:" + code
}
