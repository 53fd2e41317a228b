// internal/game/room_store.go
package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jason-s-yu/highcard/internal/models"
)

// RoomStore manages active rooms in memory. It provides thread-safe
// access to create, retrieve, and delete rooms; it is the only structure
// shared across room-handling paths, and rooms are never referenced
// outside it and the gateway.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	clock clockwork.Clock
}

// NewRoomStore initializes an empty RoomStore. Rooms created through it
// share the given clock (a fake one in tests).
func NewRoomStore(clock clockwork.Clock) *RoomStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomStore{
		rooms: make(map[string]*Room),
		clock: clock,
	}
}

// CreateRoom generates a fresh room id, seeds the room with its creator,
// and stores it. It always succeeds; id collisions are retried.
func (s *RoomStore) CreateRoom(creatorID uuid.UUID, creatorName string) (*Room, *models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewRoomID()
	for {
		if _, taken := s.rooms[id]; !taken {
			break
		}
		id = NewRoomID()
	}

	room := NewRoom(id, s.clock)
	creator := &models.Player{ID: creatorID, Name: creatorName}
	room.Players = append(room.Players, creator)

	s.rooms[id] = room
	return room, creator
}

// GetRoom retrieves a room by id.
func (s *RoomStore) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// DeleteRoom removes a room and cancels its pending cooldown, if any.
// Deleting an unknown id is a no-op.
func (s *RoomStore) DeleteRoom(id string) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	s.mu.Unlock()

	// Stop acquires the room lock; do it outside ours.
	if ok {
		room.Stop()
	}
}

// Rooms returns a copy of the id->room map, for listing endpoints.
func (s *RoomStore) Rooms() map[string]*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Room, len(s.rooms))
	for k, v := range s.rooms {
		out[k] = v
	}
	return out
}
