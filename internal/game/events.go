// internal/game/events.go
package game

import (
	"github.com/jason-s-yu/highcard/internal/models"
)

// GameEventType is an enum-like type for the named events sent to clients.
type GameEventType string

const (
	EventRoomCreated   GameEventType = "roomCreated"   // Ack to the creator with roomId/playerId
	EventRoomJoined    GameEventType = "roomJoined"    // Ack to the joiner with roomId/playerId
	EventError         GameEventType = "error"         // Recoverable error, sent only to the initiator
	EventPlayersUpdate GameEventType = "playersUpdate" // Full player list after any membership/ready change
	EventGameStarted   GameEventType = "gameStarted"   // Game begins; includes the first player to act
	EventCardPlayed    GameEventType = "cardPlayed"    // Public notification of a drawn card
	EventNextTurn      GameEventType = "nextTurn"      // Whose turn it is now
	EventRoundResult   GameEventType = "roundResult"   // Round winners plus the full player list
	EventGameOver      GameEventType = "gameOver"      // Overall winner, by score or by forfeit
	EventNextRound     GameEventType = "nextRound"     // Cooldown elapsed; next round begins
	EventPlayerLeft    GameEventType = "playerLeft"    // A player disconnected mid-session
)

// GameEvent holds data about an event broadcast to clients in a consistent format.
// Fields are populated per event type; everything else is omitted on the wire.
type GameEvent struct {
	Type GameEventType `json:"type"`

	RoomID     string `json:"roomId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Card       int    `json:"card,omitempty"`
	Message    string `json:"message,omitempty"`

	Players       []*models.Player `json:"players,omitempty"`
	Winners       []*models.Player `json:"winners,omitempty"`
	Winner        *models.Player   `json:"winner,omitempty"`
	CurrentPlayer *models.Player   `json:"currentPlayer,omitempty"`
}
