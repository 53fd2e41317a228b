// internal/handlers/server.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/highcard/internal/config"
	"github.com/jason-s-yu/highcard/internal/game"
)

// Server is the connection gateway. It owns the room registry and the
// per-room broadcast groups that map player ids back to live sessions.
// Rooms mutate their own state under their own lock; the server only
// routes events between connections and rooms.
type Server struct {
	Rooms  *game.RoomStore
	Logger *logrus.Logger

	cfg    *config.Config
	mu     sync.Mutex
	groups map[string]map[uuid.UUID]*session
}

// NewServer builds a gateway with a fresh registry. The clock is shared
// by every room it creates (a fake clock in tests).
func NewServer(cfg *config.Config, logger *logrus.Logger, clock clockwork.Clock) *Server {
	return &Server{
		Rooms:  game.NewRoomStore(clock),
		Logger: logger,
		cfg:    cfg,
		groups: make(map[string]map[uuid.UUID]*session),
	}
}

// handleMessage dispatches one inbound packet from a session. Errors are
// reported only to the initiating connection; unrecognized packets are
// logged and otherwise ignored.
func (srv *Server) handleMessage(sess *session, msg ClientMessage) {
	switch msg.Type {
	case "createRoom":
		srv.handleCreateRoom(sess, msg)
	case "joinRoom":
		srv.handleJoinRoom(sess, msg)
	case "toggleReady":
		room, ok := srv.Rooms.GetRoom(msg.RoomID)
		if !ok {
			return // room vanished; the action is moot
		}
		room.ToggleReady(sess.id)
	case "playCard":
		room, ok := srv.Rooms.GetRoom(msg.RoomID)
		if !ok {
			return
		}
		if err := room.PlayCard(sess.id); err != nil {
			sess.WriteError(err.Error())
		}
	default:
		srv.Logger.Warnf("Session %s: unknown action %q. Ignoring.", sess.id, msg.Type)
	}
}

func (srv *Server) handleCreateRoom(sess *session, msg ClientMessage) {
	if sess.roomID != "" {
		sess.WriteError("already in a room")
		return
	}

	room, creator := srv.Rooms.CreateRoom(sess.id, msg.PlayerName)
	room.WinScore = srv.cfg.WinScore
	room.CardMax = srv.cfg.CardMax
	room.Cooldown = srv.cfg.RoundCooldown
	srv.wireRoom(room)

	srv.subscribe(room.ID, sess)
	sess.roomID = room.ID

	sess.Write(game.GameEvent{
		Type:     game.EventRoomCreated,
		RoomID:   room.ID,
		PlayerID: creator.ID.String(),
	})
	srv.Logger.Infof("Room %s created by %s (%s)", room.ID, msg.PlayerName, sess.id)
}

func (srv *Server) handleJoinRoom(sess *session, msg ClientMessage) {
	if sess.roomID != "" {
		sess.WriteError("already in a room")
		return
	}

	room, ok := srv.Rooms.GetRoom(msg.RoomID)
	if !ok {
		sess.WriteError(game.ErrRoomNotFound.Error())
		return
	}

	player, err := room.AddPlayer(sess.id, msg.PlayerName)
	if err != nil {
		sess.WriteError(err.Error())
		return
	}

	srv.subscribe(room.ID, sess)
	sess.roomID = room.ID

	sess.Write(game.GameEvent{
		Type:     game.EventRoomJoined,
		RoomID:   room.ID,
		PlayerID: player.ID.String(),
	})
	room.BroadcastPlayers()
	srv.Logger.Infof("Player %s (%s) joined room %s", msg.PlayerName, sess.id, room.ID)
}

// handleDisconnect runs after a session's read pump exits. Membership
// cleanup happens in the room; the server just drops the subscription.
func (srv *Server) handleDisconnect(sess *session) {
	if sess.roomID == "" {
		return
	}
	srv.unsubscribe(sess.roomID, sess)
	if room, ok := srv.Rooms.GetRoom(sess.roomID); ok {
		room.HandleDisconnect(sess.id)
	}
	sess.roomID = ""
}

// wireRoom connects a freshly created room to its broadcast group and
// to registry cleanup.
func (srv *Server) wireRoom(room *game.Room) {
	roomID := room.ID
	room.BroadcastFn = func(ev game.GameEvent) {
		srv.broadcastRoom(roomID, ev)
	}
	room.OnEmpty = func(id string) {
		srv.Rooms.DeleteRoom(id)
		srv.dropGroup(id)
		srv.Logger.Infof("Room %s deleted (empty)", id)
	}
}

func (srv *Server) subscribe(roomID string, sess *session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	group, ok := srv.groups[roomID]
	if !ok {
		group = make(map[uuid.UUID]*session)
		srv.groups[roomID] = group
	}
	group[sess.id] = sess
}

func (srv *Server) unsubscribe(roomID string, sess *session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if group, ok := srv.groups[roomID]; ok {
		delete(group, sess.id)
		if len(group) == 0 {
			delete(srv.groups, roomID)
		}
	}
}

func (srv *Server) dropGroup(roomID string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	delete(srv.groups, roomID)
}

// broadcastRoom fans an event out to every session in the room's group.
// Session writes are non-blocking, so holding the group lock here is fine.
func (srv *Server) broadcastRoom(roomID string, ev game.GameEvent) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, sess := range srv.groups[roomID] {
		sess.Write(ev)
	}
}
