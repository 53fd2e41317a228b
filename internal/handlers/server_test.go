package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/highcard/internal/config"
	"github.com/jason-s-yu/highcard/internal/game"
)

func newTestServer() *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		RoundCooldown: 2 * time.Second,
		WinScore:      3,
		CardMax:       10,
	}
	return NewServer(cfg, logger, clockwork.NewFakeClock())
}

func newTestSession(logger *logrus.Logger) *session {
	return &session{
		id:     uuid.New(),
		out:    make(chan game.GameEvent, 32),
		logger: logger,
	}
}

// drain empties a session's out channel without blocking.
func drain(sess *session) []game.GameEvent {
	var out []game.GameEvent
	for {
		select {
		case ev := <-sess.out:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func lastEvent(evs []game.GameEvent, t game.GameEventType) *game.GameEvent {
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == t {
			return &evs[i]
		}
	}
	return nil
}

// createTestRoom drives a createRoom packet through the gateway and
// returns the ack.
func createTestRoom(t *testing.T, srv *Server, sess *session, name string) game.GameEvent {
	t.Helper()
	srv.handleMessage(sess, ClientMessage{Type: "createRoom", PlayerName: name})
	evs := drain(sess)
	created := lastEvent(evs, game.EventRoomCreated)
	require.NotNil(t, created)
	return *created
}

func TestCreateRoomAck(t *testing.T) {
	srv := newTestServer()
	sess := newTestSession(srv.Logger)

	created := createTestRoom(t, srv, sess, "alice")

	assert.Equal(t, sess.id.String(), created.PlayerID)
	assert.NotEmpty(t, created.RoomID)
	assert.Equal(t, created.RoomID, sess.roomID)

	room, ok := srv.Rooms.GetRoom(created.RoomID)
	require.True(t, ok)
	assert.Len(t, room.Players, 1)
	assert.Equal(t, 2*time.Second, room.Cooldown)
}

func TestCreateRoomTwiceRejected(t *testing.T) {
	srv := newTestServer()
	sess := newTestSession(srv.Logger)
	createTestRoom(t, srv, sess, "alice")

	srv.handleMessage(sess, ClientMessage{Type: "createRoom", PlayerName: "alice"})

	errEv := lastEvent(drain(sess), game.EventError)
	require.NotNil(t, errEv)
	assert.Len(t, srv.Rooms.Rooms(), 1)
}

func TestJoinRoomNotFound(t *testing.T) {
	srv := newTestServer()
	sess := newTestSession(srv.Logger)

	srv.handleMessage(sess, ClientMessage{Type: "joinRoom", RoomID: "NOSUCH", PlayerName: "bob"})

	errEv := lastEvent(drain(sess), game.EventError)
	require.NotNil(t, errEv)
	assert.Equal(t, "room not found", errEv.Message)
	assert.Empty(t, sess.roomID)
}

func TestJoinRoomBroadcastsPlayers(t *testing.T) {
	srv := newTestServer()
	creator := newTestSession(srv.Logger)
	joiner := newTestSession(srv.Logger)
	created := createTestRoom(t, srv, creator, "alice")

	srv.handleMessage(joiner, ClientMessage{Type: "joinRoom", RoomID: created.RoomID, PlayerName: "bob"})

	joinerEvs := drain(joiner)
	require.Len(t, joinerEvs, 2)
	assert.Equal(t, game.EventRoomJoined, joinerEvs[0].Type)
	assert.Equal(t, game.EventPlayersUpdate, joinerEvs[1].Type)
	require.Len(t, joinerEvs[1].Players, 2)

	creatorEvs := drain(creator)
	update := lastEvent(creatorEvs, game.EventPlayersUpdate)
	require.NotNil(t, update)
	assert.Equal(t, "alice", update.Players[0].Name)
	assert.Equal(t, "bob", update.Players[1].Name)
}

func TestJoinRoomFull(t *testing.T) {
	srv := newTestServer()
	creator := newTestSession(srv.Logger)
	created := createTestRoom(t, srv, creator, "alice")

	for i := 0; i < game.MaxPlayers-1; i++ {
		s := newTestSession(srv.Logger)
		srv.handleMessage(s, ClientMessage{Type: "joinRoom", RoomID: created.RoomID, PlayerName: "p"})
		require.NotNil(t, lastEvent(drain(s), game.EventRoomJoined))
	}

	late := newTestSession(srv.Logger)
	srv.handleMessage(late, ClientMessage{Type: "joinRoom", RoomID: created.RoomID, PlayerName: "late"})

	errEv := lastEvent(drain(late), game.EventError)
	require.NotNil(t, errEv)
	assert.Equal(t, "room is full", errEv.Message)
	assert.Empty(t, late.roomID)

	room, _ := srv.Rooms.GetRoom(created.RoomID)
	assert.Len(t, room.Players, game.MaxPlayers)
}

func TestPlayCardOutOfTurnViaGateway(t *testing.T) {
	srv := newTestServer()
	creator := newTestSession(srv.Logger)
	joiner := newTestSession(srv.Logger)
	created := createTestRoom(t, srv, creator, "alice")
	srv.handleMessage(joiner, ClientMessage{Type: "joinRoom", RoomID: created.RoomID, PlayerName: "bob"})

	srv.handleMessage(creator, ClientMessage{Type: "toggleReady", RoomID: created.RoomID})
	srv.handleMessage(joiner, ClientMessage{Type: "toggleReady", RoomID: created.RoomID})

	creatorEvs := drain(creator)
	require.NotNil(t, lastEvent(creatorEvs, game.EventGameStarted))
	drain(joiner)

	// Second seat tries to jump the queue.
	srv.handleMessage(joiner, ClientMessage{Type: "playCard", RoomID: created.RoomID})

	errEv := lastEvent(drain(joiner), game.EventError)
	require.NotNil(t, errEv)
	assert.Equal(t, "it's not your turn", errEv.Message)
	assert.Empty(t, drain(creator), "errors go only to the initiator")
}

func TestUnknownActionIgnored(t *testing.T) {
	srv := newTestServer()
	sess := newTestSession(srv.Logger)

	srv.handleMessage(sess, ClientMessage{Type: "shuffleHands"})

	assert.Empty(t, drain(sess))
}

func TestDisconnectRemovesPlayerAndRoom(t *testing.T) {
	srv := newTestServer()
	creator := newTestSession(srv.Logger)
	joiner := newTestSession(srv.Logger)
	created := createTestRoom(t, srv, creator, "alice")
	srv.handleMessage(joiner, ClientMessage{Type: "joinRoom", RoomID: created.RoomID, PlayerName: "bob"})
	drain(creator)
	drain(joiner)

	srv.handleDisconnect(joiner)

	creatorEvs := drain(creator)
	left := lastEvent(creatorEvs, game.EventPlayerLeft)
	require.NotNil(t, left)
	assert.Equal(t, joiner.id.String(), left.PlayerID)
	update := lastEvent(creatorEvs, game.EventPlayersUpdate)
	require.NotNil(t, update)
	assert.Len(t, update.Players, 1)
	assert.Empty(t, drain(joiner), "the leaver gets no farewell broadcast")

	// Last player out deletes the room from the registry.
	srv.handleDisconnect(creator)
	_, ok := srv.Rooms.GetRoom(created.RoomID)
	assert.False(t, ok)
}

func TestListRoomsHandler(t *testing.T) {
	srv := newTestServer()
	creator := newTestSession(srv.Logger)
	created := createTestRoom(t, srv, creator, "alice")

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()
	ListRoomsHandler(srv).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rooms []roomSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, created.RoomID, rooms[0].RoomID)
	assert.Equal(t, 1, rooms[0].Players)
	assert.False(t, rooms[0].Started)
}
