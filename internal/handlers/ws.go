// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/highcard/internal/game"
	"github.com/jason-s-yu/highcard/internal/middleware"
)

// ClientMessage is the inbound packet shape for all room actions.
type ClientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
}

// session is one live WebSocket connection. Its id doubles as the
// player id for whichever room the connection creates or joins.
type session struct {
	id     uuid.UUID
	out    chan game.GameEvent
	logger *logrus.Logger

	// roomID is set once the session creates or joins a room. It is only
	// touched from the session's own read pump goroutine.
	roomID string
}

// Write pushes an event onto the session's out channel non-blockingly.
// Logs if the channel is closed or full and the event is dropped.
func (s *session) Write(ev game.GameEvent) {
	select {
	case s.out <- ev:
	default:
		s.logger.Warnf("Session %s: out channel closed or full. Dropped event type %q.", s.id, ev.Type)
	}
}

// WriteError is a convenience to send an error event to this session only.
func (s *session) WriteError(msg string) {
	s.Write(game.GameEvent{Type: game.EventError, Message: msg})
}

// WSHandler upgrades the HTTP connection and runs the session until the
// client goes away. All room actions arrive as JSON packets on this one
// connection; the read pump dispatches them through the server, and the
// write pump drains the session's out channel back to the client.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must speak the game subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := &session{
			id:     uuid.New(),
			out:    make(chan game.GameEvent, 16),
			logger: logger,
		}
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)
		logger.Infof("Session %s connected from %s", sess.id, remoteAddr)

		go writePump(ctx, c, sess, logger)

		// Blocks until the connection closes or errors.
		readErr := readPump(ctx, c, sess, srv, logger)

		// The connection-level disconnect is an implicit event: remove the
		// player from their room and clean up per the reconciler rules.
		srv.handleDisconnect(sess)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, readErr)
	}
}

// readPump handles incoming packets for one session. Returns the error
// that ended the loop, nil for a normal closure.
func readPump(ctx context.Context, c *websocket.Conn, sess *session, srv *Server, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("Session %s: WebSocket closed normally.", sess.id)
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			logger.Warnf("Session %s: read error: %v (CloseStatus: %d)", sess.id, err, closeStatus)
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("Session %s: received non-text message type %d. Ignoring.", sess.id, typ)
			continue
		}

		var packet ClientMessage
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("Session %s: invalid json: %v", sess.id, err)
			sess.WriteError("invalid JSON format")
			continue
		}

		srv.handleMessage(sess, packet)
	}
}

// writePump drains the session's out channel onto the wire and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, sess *session, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sess.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("Session %s: failed to marshal outgoing event: %v", sess.id, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Session %s: failed to write to websocket: %v", sess.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Session %s: ping failed: %v. Assuming disconnect.", sess.id, err)
				return
			}
		}
	}
}
