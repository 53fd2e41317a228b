package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomSeedsCreator(t *testing.T) {
	store := NewRoomStore(clockwork.NewFakeClock())
	creatorID := uuid.New()

	room, creator := store.CreateRoom(creatorID, "alice")

	require.NotNil(t, room)
	assert.GreaterOrEqual(t, len(room.ID), 6)
	require.Len(t, room.Players, 1)
	assert.Equal(t, creatorID, creator.ID)
	assert.Equal(t, "alice", creator.Name)
	assert.False(t, creator.Ready)
	assert.Equal(t, 0, creator.Score)
	assert.Nil(t, creator.Card)

	got, ok := store.GetRoom(room.ID)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestGetRoomUnknown(t *testing.T) {
	store := NewRoomStore(clockwork.NewFakeClock())

	_, ok := store.GetRoom("NOSUCH")

	assert.False(t, ok)
}

func TestDeleteRoom(t *testing.T) {
	store := NewRoomStore(clockwork.NewFakeClock())
	room, _ := store.CreateRoom(uuid.New(), "alice")

	store.DeleteRoom(room.ID)

	_, ok := store.GetRoom(room.ID)
	assert.False(t, ok)

	// Deleting again is a no-op.
	store.DeleteRoom(room.ID)
}

func TestRoomsSnapshot(t *testing.T) {
	store := NewRoomStore(clockwork.NewFakeClock())
	a, _ := store.CreateRoom(uuid.New(), "alice")
	b, _ := store.CreateRoom(uuid.New(), "bob")

	rooms := store.Rooms()

	require.Len(t, rooms, 2)
	assert.Same(t, a, rooms[a.ID])
	assert.Same(t, b, rooms[b.ID])

	// The snapshot is a copy; mutating it leaves the store intact.
	delete(rooms, a.ID)
	_, ok := store.GetRoom(a.ID)
	assert.True(t, ok)
}

func TestNewRoomIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRoomID()
		assert.Len(t, id, 6)
		for _, c := range id {
			assert.Contains(t, roomIDAlphabet, string(c))
		}
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90, "ids should be overwhelmingly unique")
}
