// internal/game/utils.go
package game

import (
	"math/rand"
)

const (
	roomIDAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789" // skips lookalikes (I/L/O/0/1)
	roomIDLength   = 6
)

// NewRoomID returns a short random token used to address a room.
// Uniqueness is probabilistic; the store retries on the rare collision.
func NewRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b)
}
