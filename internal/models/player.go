package models

import (
	"github.com/google/uuid"
)

// Player is one seat in a room. The ID is minted when the connection is
// accepted and stays stable for the lifetime of that connection.
type Player struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Ready bool      `json:"ready"`
	Score int       `json:"score"`

	// Card holds the value drawn this round. Nil until the player has
	// acted; cleared again when the round resets.
	Card *int `json:"card"`
}
